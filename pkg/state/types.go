package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	KeySchemePreference = "@app:schemePref"
	KeyToken            = "token"
	KeyUser             = "user"
)

var ErrKeyRequired = errors.New("state: key is required")

// Store loads, saves and removes one string value per key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// GetJSON loads key from store and decodes it into T. A missing key returns
// ok=false with a nil error.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var zero T
	if store == nil {
		return zero, false, fmt.Errorf("state: store is required")
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes value and saves it under key.
func SetJSON[T any](ctx context.Context, store Store, key string, value T) error {
	if store == nil {
		return fmt.Errorf("state: store is required")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return store.Set(ctx, key, string(raw))
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrKeyRequired
	}
	return nil
}
