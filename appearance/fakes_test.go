package appearance_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-fitspire/appearance"
	"github.com/goliatone/go-fitspire/pkg/state"
	"github.com/goliatone/go-fitspire/theme"
)

var errBackendDown = errors.New("backend down")

type fakeRemote struct {
	mu        sync.Mutex
	dark      bool
	fetchErr  error
	pushErr   error
	fetches   int
	pushes    []bool
	block     chan struct{}
	pushBlock chan struct{}
}

func (f *fakeRemote) FetchDarkMode(ctx context.Context) (bool, error) {
	f.mu.Lock()
	f.fetches++
	block := f.block
	dark, err := f.dark, f.fetchErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return dark, err
}

func (f *fakeRemote) PushDarkMode(ctx context.Context, dark bool) error {
	f.mu.Lock()
	block := f.pushBlock
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, dark)
	return f.pushErr
}

// countingSystem tracks how many OS subscriptions are still held.
type countingSystem struct {
	*appearance.ManualSystem
	mu   sync.Mutex
	held int
}

func newCountingSystem(scheme theme.Scheme) *countingSystem {
	return &countingSystem{ManualSystem: appearance.NewManualSystem(scheme)}
}

func (s *countingSystem) Subscribe(fn func(theme.Scheme, bool)) func() {
	cancel := s.ManualSystem.Subscribe(fn)
	s.mu.Lock()
	s.held++
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			s.mu.Lock()
			s.held--
			s.mu.Unlock()
		})
	}
}

func (s *countingSystem) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeRemote) pushed() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.pushes...)
}

// faultyStore wraps a MemoryStore with injectable failures.
type faultyStore struct {
	*state.MemoryStore
	mu       sync.Mutex
	getErr   error
	setErr   error
	setBlock chan struct{}
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: state.NewMemoryStore()}
}

func (s *faultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	err, block := s.setErr, s.setBlock
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *faultyStore) failGets(err error) {
	s.mu.Lock()
	s.getErr = err
	s.mu.Unlock()
}

func (s *faultyStore) failSets(err error) {
	s.mu.Lock()
	s.setErr = err
	s.mu.Unlock()
}

func stored(t *testing.T, store state.Store) string {
	t.Helper()
	value, _, err := store.Get(context.Background(), state.KeySchemePreference)
	if err != nil {
		t.Fatalf("read stored preference: %v", err)
	}
	return value
}

func waitPending(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background writes did not settle")
	}
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}
