package appearance

import (
	"context"
	"errors"

	"github.com/goliatone/go-fitspire/theme"
)

var (
	ErrNotReady          = errors.New("appearance: resolver is not ready")
	ErrAlreadyStarted    = errors.New("appearance: resolver already started")
	ErrClosed            = errors.New("appearance: resolver is closed")
	ErrInvalidPreference = errors.New("appearance: invalid scheme preference")
	ErrStoreRequired     = errors.New("appearance: store is required")
)

// State is the resolver lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Source names the layer that produced the active scheme.
type Source string

const (
	SourceLocal        Source = "local"
	SourceRemote       Source = "remote"
	SourceSystem       Source = "system"
	SourceDefault      Source = "default"
	SourceExplicit     Source = "explicit"
	SourceSystemChange Source = "system-change"
)

// Snapshot is an immutable view of the resolved appearance.
type Snapshot struct {
	Scheme theme.Scheme
	// Preference is the user's intent as known to the resolver; empty when
	// nothing explicit was ever stored.
	Preference theme.Preference
	Source     Source
	Version    uint64
	Theme      theme.Theme
	Tokens     theme.Tokens
}

// Remote is the backend preference record, reduced to the dark-mode flag.
type Remote interface {
	FetchDarkMode(ctx context.Context) (bool, error)
	PushDarkMode(ctx context.Context, dark bool) error
}

// System reports the OS appearance. ok=false means indeterminate.
type System interface {
	Current() (scheme theme.Scheme, ok bool)
	// Subscribe registers fn for appearance changes and returns a function
	// releasing the subscription.
	Subscribe(fn func(scheme theme.Scheme, ok bool)) (cancel func())
}
