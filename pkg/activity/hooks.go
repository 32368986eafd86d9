package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event is a client-side occurrence such as a scheme change, a sign-in or a
// profile edit. Verbs are dotted, with the owning domain first
// ("appearance.scheme.changed").
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Domain is the verb segment before the first dot.
func (e Event) Domain() string {
	verb := strings.TrimSpace(e.Verb)
	if i := strings.IndexByte(verb, '.'); i >= 0 {
		return verb[:i]
	}
	return verb
}

// Complete reports whether the event names a verb and an object.
func (e Event) Complete() bool {
	return strings.TrimSpace(e.Verb) != "" &&
		strings.TrimSpace(e.ObjectType) != "" &&
		strings.TrimSpace(e.ObjectID) != ""
}

type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook. A nil HookFunc ignores events.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers each event to every hook in order.
type Hooks []ActivityHook

func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event once and hands the same copy to each hook. Incomplete
// events are dropped. Hook failures do not stop delivery; they come back
// joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || !event.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	normalized := NormalizeEvent(event)

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FilterVerbs forwards only events whose verb equals one of prefixes or
// starts with it followed by a dot: "auth" admits "auth.session.started".
// No prefixes admits everything.
func FilterVerbs(next ActivityHook, prefixes ...string) ActivityHook {
	cleaned := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		if prefix = strings.Trim(strings.TrimSpace(prefix), "."); prefix != "" {
			cleaned = append(cleaned, prefix)
		}
	}
	if len(cleaned) == 0 || next == nil {
		return next
	}
	return HookFunc(func(ctx context.Context, event Event) error {
		verb := strings.TrimSpace(event.Verb)
		for _, prefix := range cleaned {
			if verb == prefix || strings.HasPrefix(verb, prefix+".") {
				return next.Notify(ctx, event)
			}
		}
		return nil
	})
}

// NormalizeEvent trims the string fields, copies Metadata and defaults
// OccurredAt to now.
func NormalizeEvent(event Event) Event {
	out := Event{
		Verb:       strings.TrimSpace(event.Verb),
		ActorID:    strings.TrimSpace(event.ActorID),
		UserID:     strings.TrimSpace(event.UserID),
		ObjectType: strings.TrimSpace(event.ObjectType),
		ObjectID:   strings.TrimSpace(event.ObjectID),
		Channel:    strings.TrimSpace(event.Channel),
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: event.OccurredAt,
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
