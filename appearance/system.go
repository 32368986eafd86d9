package appearance

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/goliatone/go-fitspire/theme"
)

// EnvAppearance overrides terminal background detection.
const EnvAppearance = "FITSPIRE_APPEARANCE"

// DefaultPollInterval is used by PollingSystem when no interval is given.
const DefaultPollInterval = 2 * time.Second

type systemListeners struct {
	mu   sync.Mutex
	next uint64
	fns  map[uint64]func(theme.Scheme, bool)
}

func (l *systemListeners) add(fn func(theme.Scheme, bool)) (id uint64, first bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(theme.Scheme, bool))
	}
	l.next++
	l.fns[l.next] = fn
	return l.next, len(l.fns) == 1
}

func (l *systemListeners) remove(id uint64) (empty bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
	return len(l.fns) == 0
}

func (l *systemListeners) notify(scheme theme.Scheme, ok bool) {
	l.mu.Lock()
	fns := make([]func(theme.Scheme, bool), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(scheme, ok)
	}
}

// ManualSystem is a System whose appearance is pushed in by the host, for
// example from a platform appearance callback.
type ManualSystem struct {
	mu        sync.RWMutex
	scheme    theme.Scheme
	ok        bool
	listeners systemListeners
}

// NewManualSystem starts at scheme; an invalid scheme starts indeterminate.
func NewManualSystem(scheme theme.Scheme) *ManualSystem {
	return &ManualSystem{scheme: scheme, ok: scheme.Valid()}
}

func (s *ManualSystem) Current() (theme.Scheme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheme, s.ok
}

func (s *ManualSystem) Subscribe(fn func(theme.Scheme, bool)) func() {
	if fn == nil {
		return func() {}
	}
	id, _ := s.listeners.add(fn)
	var once sync.Once
	return func() {
		once.Do(func() { s.listeners.remove(id) })
	}
}

// Set reports a new appearance and notifies subscribers when it differs.
func (s *ManualSystem) Set(scheme theme.Scheme) {
	s.update(scheme, scheme.Valid())
}

// SetUnknown reports that the appearance can no longer be determined.
func (s *ManualSystem) SetUnknown() {
	s.update("", false)
}

func (s *ManualSystem) update(scheme theme.Scheme, ok bool) {
	s.mu.Lock()
	if s.scheme == scheme && s.ok == ok {
		s.mu.Unlock()
		return
	}
	s.scheme, s.ok = scheme, ok
	s.mu.Unlock()
	s.listeners.notify(scheme, ok)
}

// Detector reads the current OS appearance.
type Detector func() (theme.Scheme, bool)

// PollingSystem turns a Detector into a System by polling it while at least
// one subscriber is registered.
type PollingSystem struct {
	detect   Detector
	interval time.Duration

	mu        sync.Mutex
	last      theme.Scheme
	lastOK    bool
	stop      chan struct{}
	listeners systemListeners
}

// NewPollingSystem wraps detect. A non-positive interval uses
// DefaultPollInterval.
func NewPollingSystem(detect Detector, interval time.Duration) *PollingSystem {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingSystem{detect: detect, interval: interval}
}

func (s *PollingSystem) Current() (theme.Scheme, bool) {
	if s.detect == nil {
		return "", false
	}
	scheme, ok := s.detect()
	if !scheme.Valid() {
		ok = false
	}
	return scheme, ok
}

// Subscribe starts polling for the first subscriber and the returned cancel
// stops it after the last one leaves. Both happen under s.mu so a
// concurrent subscribe cannot observe a loop that is about to halt.
func (s *PollingSystem) Subscribe(fn func(theme.Scheme, bool)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id, first := s.listeners.add(fn)
	if first {
		s.startLocked()
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.listeners.remove(id) {
				s.haltLocked()
			}
		})
	}
}

// Polling reports whether the poll loop is running.
func (s *PollingSystem) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *PollingSystem) startLocked() {
	if s.stop != nil {
		return
	}
	s.last, s.lastOK = s.Current()
	stop := make(chan struct{})
	s.stop = stop
	go s.loop(stop)
}

func (s *PollingSystem) haltLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *PollingSystem) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *PollingSystem) poll() {
	scheme, ok := s.Current()
	s.mu.Lock()
	if scheme == s.last && ok == s.lastOK {
		s.mu.Unlock()
		return
	}
	s.last, s.lastOK = scheme, ok
	s.mu.Unlock()
	s.listeners.notify(scheme, ok)
}

// DetectTerminal honours FITSPIRE_APPEARANCE ("light" or "dark") and
// otherwise asks the terminal for its background color.
func DetectTerminal() (theme.Scheme, bool) {
	if value := strings.TrimSpace(os.Getenv(EnvAppearance)); value != "" {
		return theme.ParseScheme(strings.ToLower(value))
	}
	if lipgloss.HasDarkBackground() {
		return theme.SchemeDark, true
	}
	return theme.SchemeLight, true
}

// NewTerminalSystem polls the terminal background for CLI hosts.
func NewTerminalSystem(interval time.Duration) *PollingSystem {
	return NewPollingSystem(DetectTerminal, interval)
}
