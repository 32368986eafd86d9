package appearance

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/state"
	"github.com/goliatone/go-fitspire/theme"
	"go.uber.org/zap"
)

// Resolver is the single owner of the active Scheme.
type Resolver struct {
	store  state.Store
	cfg    config
	logger *zap.Logger

	lifecycle atomic.Int32
	ready     chan struct{}
	current   atomic.Pointer[Snapshot]

	// mu serialises transitions so versions are assigned in apply order.
	mu            sync.Mutex
	version       uint64
	trace         Trace
	pendingSystem *systemReading
	cancelSystem  func()
	closed        bool

	subMu   sync.Mutex
	subs    map[uint64]*subscriber
	nextSub uint64

	writes sync.WaitGroup
}

type systemReading struct {
	scheme theme.Scheme
	ok     bool
}

// New constructs a Resolver over store. The resolver does nothing until
// Start is called.
func New(store state.Store, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Resolver{
		store:  store,
		cfg:    cfg,
		logger: cfg.logger.Named("appearance"),
		ready:  make(chan struct{}),
		subs:   make(map[uint64]*subscriber),
	}, nil
}

// Start runs the bootstrap chain once and then begins tracking the OS
// appearance. It always reaches StateReady; source failures degrade to the
// next layer instead of returning an error. If Close runs while bootstrap is
// in progress, Start releases the OS subscription and returns ErrClosed.
func (r *Resolver) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !r.lifecycle.CompareAndSwap(int32(StateUninitialized), int32(StateBootstrapping)) {
		return ErrAlreadyStarted
	}

	// Subscribe before reading the OS so a change during bootstrap is not lost.
	var cancel func()
	if r.cfg.system != nil {
		cancel = r.cfg.system.Subscribe(r.onSystemChange)
	}

	result, trace := r.bootstrap(ctx)

	r.mu.Lock()
	r.trace = trace
	snap, _, _ := r.applyLocked(result.scheme, result.preference, result.source)
	r.lifecycle.Store(int32(StateReady))
	close(r.ready)
	pending := r.pendingSystem
	r.pendingSystem = nil
	if r.closed {
		// Close ran during bootstrap and had no subscription to release.
		r.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return ErrClosed
	}
	r.cancelSystem = cancel
	r.mu.Unlock()

	r.logger.Info("appearance ready",
		zap.String("scheme", string(snap.Scheme)),
		zap.String("source", string(snap.Source)),
		zap.String("preference", string(snap.Preference)),
	)
	r.emitChange(ctx, "", snap)

	if pending != nil {
		r.handleSystemChange(*pending)
	}
	return nil
}

// State reports the lifecycle state.
func (r *Resolver) State() State {
	return State(r.lifecycle.Load())
}

// Ready is closed once bootstrap has produced the first scheme.
func (r *Resolver) Ready() <-chan struct{} {
	return r.ready
}

// Snapshot returns the current appearance. It fails with ErrNotReady until
// bootstrap completes.
func (r *Resolver) Snapshot() (Snapshot, error) {
	snap := r.current.Load()
	if snap == nil {
		return Snapshot{}, ErrNotReady
	}
	return *snap, nil
}

// MustSnapshot is Snapshot for callers that only render after Ready.
func (r *Resolver) MustSnapshot() Snapshot {
	snap, err := r.Snapshot()
	if err != nil {
		panic(err)
	}
	return snap
}

// Trace returns the provenance of the bootstrap resolution.
func (r *Resolver) Trace() Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.trace
	out.Layers = append([]Provenance(nil), r.trace.Layers...)
	return out
}

// Subscribe registers fn for every applied transition. Deliveries to one
// subscriber are serialised and strictly increasing in Version.
func (r *Resolver) Subscribe(fn func(Snapshot)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	r.subMu.Lock()
	r.nextSub++
	id := r.nextSub
	r.subs[id] = &subscriber{fn: fn}
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
		})
	}
}

// Close stops OS tracking and waits for in-flight background writes.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	cancel := r.cancelSystem
	r.cancelSystem = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.writes.Wait()
	return nil
}

// applyLocked installs a new snapshot. It reports whether anything visible
// changed and whether the rendered scheme changed. Callers hold r.mu.
func (r *Resolver) applyLocked(scheme theme.Scheme, pref theme.Preference, source Source) (Snapshot, bool, bool) {
	prev := r.current.Load()
	if prev != nil && prev.Scheme == scheme && prev.Preference == pref {
		return *prev, false, false
	}
	r.version++
	th, tk := theme.Resolve(scheme)
	next := &Snapshot{
		Scheme:     th.Scheme,
		Preference: pref,
		Source:     source,
		Version:    r.version,
		Theme:      th,
		Tokens:     tk,
	}
	r.current.Store(next)
	return *next, true, prev == nil || prev.Scheme != next.Scheme
}

func (r *Resolver) publish(snap Snapshot) {
	r.subMu.Lock()
	targets := make([]*subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		targets = append(targets, sub)
	}
	r.subMu.Unlock()

	for _, sub := range targets {
		sub.offer(snap)
	}
}

func (r *Resolver) emitChange(ctx context.Context, from theme.Scheme, snap Snapshot) {
	if !r.cfg.emitter.Enabled() {
		return
	}
	change := activity.SchemeChange{
		From:       string(from),
		To:         string(snap.Scheme),
		Preference: string(snap.Preference),
		Source:     string(snap.Source),
		Version:    snap.Version,
		OccurredAt: time.Now(),
	}
	if r.cfg.actor != nil {
		change.UserID = r.cfg.actor()
	}
	if err := r.cfg.emitter.Emit(ctx, activity.BuildSchemeChangedEvent(change)); err != nil {
		r.logger.Warn("scheme change activity failed", zap.Error(err))
	}
}

type subscriber struct {
	fn func(Snapshot)

	mu       sync.Mutex
	offered  uint64
	pending  *Snapshot
	draining bool
}

// offer queues snap and drains the queue unless another goroutine (or a
// reentrant call from fn) is already draining. Older versions are dropped.
func (s *subscriber) offer(snap Snapshot) {
	s.mu.Lock()
	if snap.Version <= s.offered {
		s.mu.Unlock()
		return
	}
	s.offered = snap.Version
	s.pending = &snap
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for s.pending != nil {
		next := *s.pending
		s.pending = nil
		s.mu.Unlock()
		s.fn(next)
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}
