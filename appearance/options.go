package appearance

import (
	"time"

	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/state"
	"go.uber.org/zap"
)

const (
	DefaultBootstrapTimeout = 3 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
)

// Option configures a Resolver.
type Option func(*config)

type config struct {
	remote           Remote
	system           System
	logger           *zap.Logger
	emitter          *activity.Emitter
	actor            func() string
	key              string
	bootstrapTimeout time.Duration
	writeTimeout     time.Duration
	syncRemote       bool
}

func defaultConfig() config {
	return config{
		logger:           zap.NewNop(),
		key:              state.KeySchemePreference,
		bootstrapTimeout: DefaultBootstrapTimeout,
		writeTimeout:     DefaultWriteTimeout,
	}
}

// WithRemote configures the backend preference source and sink.
func WithRemote(remote Remote) Option {
	return func(cfg *config) {
		cfg.remote = remote
	}
}

// WithSystem configures the OS appearance source.
func WithSystem(system System) Option {
	return func(cfg *config) {
		cfg.system = system
	}
}

// WithLogger sets the logger used for swallowed failures and transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithEmitter emits an activity event whenever the rendered scheme changes.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithActor supplies the user id stamped on activity events.
func WithActor(actor func() string) Option {
	return func(cfg *config) {
		cfg.actor = actor
	}
}

// WithStorageKey overrides the key holding the persisted preference.
func WithStorageKey(key string) Option {
	return func(cfg *config) {
		if key != "" {
			cfg.key = key
		}
	}
}

// WithBootstrapTimeout bounds the remote fetch during bootstrap.
func WithBootstrapTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.bootstrapTimeout = d
		}
	}
}

// WithWriteTimeout bounds each background persistence and sync write.
func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.writeTimeout = d
		}
	}
}

// WithRemoteSyncDefault sets the SyncRemote default for SetScheme calls.
func WithRemoteSyncDefault(sync bool) Option {
	return func(cfg *config) {
		cfg.syncRemote = sync
	}
}
