package activity

import (
	"context"
	"strings"
)

const defaultChannel = "fitspire"

// Config mirrors the activity section of the client configuration.
type Config struct {
	Enabled bool
	// Channel is stamped on events that do not carry one.
	Channel string
	// Verbs limits emission to these verb prefixes (see FilterVerbs).
	Verbs []string
}

// Emitter is what components hold to report activity. A nil *Emitter is
// valid and never emits.
type Emitter struct {
	sink    ActivityHook
	enabled bool
	channel string
}

func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	live := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			live = append(live, hook)
		}
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = defaultChannel
	}
	return &Emitter{
		sink:    FilterVerbs(live, cfg.Verbs...),
		enabled: cfg.Enabled && len(live) > 0,
		channel: channel,
	}
}

func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit stamps the default channel and delivers event to every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.sink.Notify(ctx, event)
}
