// Package rules evaluates small user-supplied expressions against a set of
// variables. The feed uses it to filter workout posts
// (`type == "gym" && duration >= 45`).
//
// Three engines sit behind one Evaluator interface: expr (default), CEL, and
// JavaScript via goja. The JavaScript engine is only compiled in with the
// js_eval build tag.
package rules
