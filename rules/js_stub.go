//go:build !js_eval

package rules

func newJSEvaluator(config) Evaluator {
	return nil
}

// JSAvailable reports whether the js engine is compiled in.
func JSAvailable() bool {
	return false
}
