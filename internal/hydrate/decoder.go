// Package hydrate turns backend JSON bodies into typed values, with hooks
// for normalising payloads before decoding and validating results after.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the request a payload answers.
type Context struct {
	Method   string
	Endpoint string
}

func (c Context) String() string {
	if c.Method == "" {
		return c.Endpoint
	}
	return c.Method + " " + c.Endpoint
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts response payloads into T.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode parses body as a JSON object and decodes it into T.
func (d *Decoder[T]) Decode(ctx Context, body []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, fmt.Errorf("hydrate: empty body for %s", ctx)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return zero, fmt.Errorf("hydrate: parse body for %s: %w", ctx, err)
	}
	return d.DecodeMap(ctx, payload)
}

// DecodeMap applies the hooks to an already parsed payload. payload is not
// modified.
func (d *Decoder[T]) DecodeMap(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx)
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for %s: %w", ctx, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}
	return result, nil
}

// Unwrap returns a PreHook that replaces the payload with the first object
// found under one of keys, for responses wrapped in an envelope such as
// {"data": {...}}. Payloads without any of the keys pass through.
func Unwrap(keys ...string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for _, key := range keys {
			if inner, ok := payload[key].(map[string]any); ok {
				return inner, nil
			}
		}
		return payload, nil
	}
}

// Rename returns a PreHook moving legacy field names to their current ones
// when the current name is absent.
func Rename(legacy map[string]string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for from, to := range legacy {
			value, ok := payload[from]
			if !ok {
				continue
			}
			if _, exists := payload[to]; !exists {
				payload[to] = value
			}
			delete(payload, from)
		}
		return payload, nil
	}
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(buffer))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
