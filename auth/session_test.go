package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-fitspire/auth"
	"github.com/goliatone/go-fitspire/internal/backendtest"
	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/api"
	"github.com/goliatone/go-fitspire/pkg/state"
)

type fixture struct {
	backend *backendtest.Server
	store   *state.MemoryStore
	session *auth.Session
	capture *activity.CaptureHook
}

func newFixture(t *testing.T, opts ...auth.Option) fixture {
	t.Helper()
	backend := backendtest.New()
	base := backend.Start(t)
	store := state.NewMemoryStore()
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})

	var session *auth.Session
	client, err := api.New(base, api.WithTokenSource(api.TokenFunc(func(ctx context.Context) (string, error) {
		return session.Token(ctx)
	})))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	session = auth.NewSession(client, store, append([]auth.Option{auth.WithEmitter(emitter)}, opts...)...)
	return fixture{backend: backend, store: store, session: session, capture: capture}
}

func TestRestoreEmptyStore(t *testing.T) {
	fx := newFixture(t)
	if !fx.session.State().Loading {
		t.Fatal("session should start loading")
	}
	if err := fx.session.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st := fx.session.State()
	if st.Loading || st.Authenticated() {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestLoginPersistsAndRestores(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_ = fx.session.Restore(ctx)
	if _, _, err := fx.backend.SeedUser("ana@example.com", "ana", "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := fx.session.Login(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	st := fx.session.State()
	if !st.Authenticated() || st.User == nil || st.User.UserName != "ana" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if token, _, _ := fx.store.Get(ctx, state.KeyToken); token != st.Token {
		t.Fatalf("stored token %q, want %q", token, st.Token)
	}

	restored := auth.NewSession(nil, fx.store)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := restored.State(); got.Token != st.Token || got.User == nil || got.User.ID != st.User.ID {
		t.Fatalf("restored %+v, want %+v", got, st)
	}

	events := fx.capture.Events()
	if len(events) != 1 || events[0].Verb != activity.VerbSessionStarted || events[0].Metadata["method"] != auth.MethodPassword {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestAuthenticatedRequestsUseSessionToken(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_ = fx.session.Restore(ctx)
	if err := fx.session.Register(ctx, "sam@example.com", "sam", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	client, _ := api.New(fx.backend.Start(t), api.WithTokenSource(fx.session))
	if _, err := client.GetProfile(ctx); err != nil {
		t.Fatalf("profile with session token: %v", err)
	}
}

func TestLoginFailureLeavesSessionSignedOut(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_ = fx.session.Restore(ctx)

	err := fx.session.Login(ctx, "nobody", "nope")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	st := fx.session.State()
	if st.Authenticated() || st.Loading {
		t.Fatalf("unexpected state after failure %+v", st)
	}
	if _, ok, _ := fx.store.Get(ctx, state.KeyToken); ok {
		t.Fatal("failed login must not persist a token")
	}
	if err := fx.session.Login(ctx, " ", "x"); !errors.Is(err, auth.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if err := fx.session.Register(ctx, "", "sam", "x"); !errors.Is(err, auth.ErrInvalidRegistration) {
		t.Fatalf("expected ErrInvalidRegistration, got %v", err)
	}
}

func TestLoginWithGoogle(t *testing.T) {
	idToken := ""
	fx := newFixture(t, auth.WithGoogle(auth.IDTokenFunc(func(context.Context) (string, error) {
		return idToken, nil
	})))
	ctx := context.Background()
	fx.backend.RegisterGoogleToken("id-123", "lee@example.com")

	if err := fx.session.LoginWithGoogle(ctx); !errors.Is(err, auth.ErrMissingIDToken) {
		t.Fatalf("expected ErrMissingIDToken, got %v", err)
	}
	idToken = "id-123"
	if err := fx.session.LoginWithGoogle(ctx); err != nil {
		t.Fatalf("google login: %v", err)
	}
	if st := fx.session.State(); st.User == nil || st.User.UserName != "lee" {
		t.Fatalf("unexpected user %+v", st.User)
	}

	plain := newFixture(t)
	if err := plain.session.LoginWithGoogle(ctx); !errors.Is(err, auth.ErrNoIDTokenProvider) {
		t.Fatalf("expected ErrNoIDTokenProvider, got %v", err)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_ = fx.session.Restore(ctx)
	_ = fx.session.Register(ctx, "sam@example.com", "sam", "secret1")

	var mu sync.Mutex
	var seen []auth.State
	cancel := fx.session.Subscribe(func(s auth.State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer cancel()

	if err := fx.session.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if fx.session.State().Authenticated() || fx.session.UserID() != "" {
		t.Fatal("session still authenticated")
	}
	for _, key := range []string{state.KeyToken, state.KeyUser} {
		if _, ok, _ := fx.store.Get(ctx, key); ok {
			t.Fatalf("key %q still stored", key)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0].Authenticated() {
		t.Fatalf("unexpected notifications %+v", seen)
	}
	verbs := fx.capture.Verbs()
	if verbs[len(verbs)-1] != activity.VerbSessionEnded {
		t.Fatalf("expected session ended event, got %v", verbs)
	}
}

func TestRestoreToleratesCorruptUser(t *testing.T) {
	store := state.NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, state.KeyToken, "tok")
	_ = store.Set(ctx, state.KeyUser, "{not json")

	session := auth.NewSession(nil, store)
	if err := session.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st := session.State()
	if st.Token != "tok" || st.User != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}
