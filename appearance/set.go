package appearance

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-fitspire/theme"
	"go.uber.org/zap"
)

// SetOption tunes a single SetScheme call.
type SetOption func(*setConfig)

type setConfig struct {
	persist    bool
	syncRemote bool
}

// WithPersist controls whether the preference is written to the local store.
// Defaults to true.
func WithPersist(persist bool) SetOption {
	return func(cfg *setConfig) {
		cfg.persist = persist
	}
}

// WithSyncRemote controls whether the dark-mode projection is pushed to the
// backend. Defaults to the resolver's WithRemoteSyncDefault value.
func WithSyncRemote(sync bool) SetOption {
	return func(cfg *setConfig) {
		cfg.syncRemote = sync
	}
}

// Pending tracks the background writes started by SetScheme. Write failures
// are logged by the resolver and never reported here.
type Pending struct {
	done chan struct{}
	err  error
}

func settled(err error) *Pending {
	p := &Pending{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Done is closed once every background write has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err reports why the call was rejected (ErrNotReady, ErrClosed,
// ErrInvalidPreference). It is nil for accepted calls.
func (p *Pending) Err() error {
	return p.err
}

// Wait blocks until the writes finish or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetScheme applies pref immediately and returns before any I/O completes.
// PreferenceSystem resolves against the current OS appearance and re-enables
// OS tracking.
func (r *Resolver) SetScheme(pref theme.Preference, opts ...SetOption) *Pending {
	if _, ok := theme.ParsePreference(string(pref)); !ok {
		r.logger.Warn("rejecting scheme preference", zap.String("preference", string(pref)))
		return settled(fmt.Errorf("%w: %q", ErrInvalidPreference, pref))
	}
	if r.State() != StateReady {
		return settled(ErrNotReady)
	}

	cfg := setConfig{persist: true, syncRemote: r.cfg.syncRemote}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	scheme := pref.Resolve(r.systemScheme())

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return settled(ErrClosed)
	}
	from := r.current.Load().Scheme
	snap, changed, schemeChanged := r.applyLocked(scheme, pref, SourceExplicit)
	// Registered under mu so Close cannot miss writes of an accepted call.
	var wg sync.WaitGroup
	if cfg.persist {
		wg.Add(1)
	}
	if cfg.syncRemote && r.cfg.remote != nil {
		wg.Add(1)
	}
	r.writes.Add(1)
	r.mu.Unlock()

	r.logger.Debug("scheme set",
		zap.String("preference", string(pref)),
		zap.String("scheme", string(scheme)),
		zap.Bool("persist", cfg.persist),
		zap.Bool("sync_remote", cfg.syncRemote),
	)
	if changed {
		r.publish(snap)
	}
	if schemeChanged {
		r.emitChange(context.Background(), from, snap)
	}

	pending := &Pending{done: make(chan struct{})}
	if cfg.persist {
		go func() {
			defer wg.Done()
			r.persist(pref)
		}()
	}
	if cfg.syncRemote && r.cfg.remote != nil {
		go func() {
			defer wg.Done()
			r.pushRemote(scheme)
		}()
	}
	go func() {
		wg.Wait()
		close(pending.done)
		r.writes.Done()
	}()
	return pending
}

func (r *Resolver) persist(pref theme.Preference) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.writeTimeout)
	defer cancel()
	if err := r.store.Set(ctx, r.cfg.key, string(pref)); err != nil {
		r.logger.Warn("persisting scheme preference failed", zap.Error(err))
	}
}

func (r *Resolver) pushRemote(scheme theme.Scheme) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.writeTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("remote scheme sync panicked", zap.Any("panic", rec))
		}
	}()
	if err := r.cfg.remote.PushDarkMode(ctx, scheme.IsDark()); err != nil {
		r.logger.Warn("syncing scheme preference failed", zap.Error(err))
	}
}

func (r *Resolver) systemScheme() theme.Scheme {
	if r.cfg.system == nil {
		return theme.SchemeLight
	}
	if scheme, ok := r.cfg.system.Current(); ok && scheme.Valid() {
		return scheme
	}
	return theme.SchemeLight
}
