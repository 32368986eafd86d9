// Package auth owns the signed-in session: the bearer token and the user
// summary, persisted under the "token" and "user" keys.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/api"
	"github.com/goliatone/go-fitspire/pkg/state"
	"go.uber.org/zap"
)

var (
	ErrMissingIDToken      = errors.New("auth: Google ID token is missing")
	ErrNoIDTokenProvider   = errors.New("auth: no Google sign-in provider configured")
	ErrMissingCredentials  = errors.New("auth: login and password are required")
	ErrInvalidRegistration = errors.New("auth: email, user name and password are required")
)

// Method names recorded on session activity events.
const (
	MethodPassword = "password"
	MethodRegister = "register"
	MethodGoogle   = "google"
)

// Authenticator is the subset of the API client used for sign-in.
type Authenticator interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResult, error)
	Login(ctx context.Context, req api.LoginRequest) (api.AuthResult, error)
	ExternalLogin(ctx context.Context, req api.ExternalLoginRequest) (api.AuthResult, error)
}

// IDTokenProvider runs the platform Google sign-in flow and returns its ID
// token.
type IDTokenProvider interface {
	IDToken(ctx context.Context) (string, error)
}

// IDTokenFunc adapts a function to IDTokenProvider.
type IDTokenFunc func(ctx context.Context) (string, error)

func (f IDTokenFunc) IDToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// State is an immutable view of the session.
type State struct {
	Token   string
	User    *api.AccountUser
	Loading bool
}

// Authenticated reports whether a token is present.
func (s State) Authenticated() bool {
	return s.Token != ""
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithEmitter(emitter *activity.Emitter) Option {
	return func(s *Session) {
		s.emitter = emitter
	}
}

func WithGoogle(provider IDTokenProvider) Option {
	return func(s *Session) {
		s.google = provider
	}
}

// Session is safe for concurrent use. It starts in the loading state until
// Restore completes.
type Session struct {
	client  Authenticator
	store   state.Store
	google  IDTokenProvider
	logger  *zap.Logger
	emitter *activity.Emitter

	mu      sync.RWMutex
	token   string
	user    *api.AccountUser
	loading bool

	subMu   sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64
}

func NewSession(client Authenticator, store state.Store, opts ...Option) *Session {
	s := &Session{
		client:  client,
		store:   store,
		logger:  zap.NewNop(),
		loading: true,
		subs:    make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.Named("auth")
	return s
}

// State returns the current session view.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	var user *api.AccountUser
	if s.user != nil {
		copied := *s.user
		user = &copied
	}
	return State{Token: s.token, User: user, Loading: s.loading}
}

// Token implements api.TokenSource.
func (s *Session) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// UserID returns the signed-in user id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Subscribe registers fn for every session change.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.subMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) notify() {
	current := s.State()
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(current)
	}
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	changed := s.loading != loading
	s.loading = loading
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Restore loads a persisted session. Unreadable entries are logged and
// treated as signed out; Restore only fails when ctx is done.
func (s *Session) Restore(ctx context.Context) error {
	defer s.setLoading(false)

	token, ok, err := s.store.Get(ctx, state.KeyToken)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("restoring token failed", zap.Error(err))
		return nil
	}
	if !ok || token == "" {
		return nil
	}
	user, _, err := state.GetJSON[*api.AccountUser](ctx, s.store, state.KeyUser)
	if err != nil {
		s.logger.Warn("restoring user failed", zap.Error(err))
		user = nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	s.logger.Info("session restored", zap.Bool("has_user", user != nil))
	return nil
}

// Login signs in with an email or user name.
func (s *Session) Login(ctx context.Context, login, password string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return ErrMissingCredentials
	}
	return s.signIn(ctx, MethodPassword, func() (api.AuthResult, error) {
		return s.client.Login(ctx, api.LoginRequest{Login: login, Password: password})
	})
}

// Register creates an account and signs in.
func (s *Session) Register(ctx context.Context, email, userName, password string) error {
	email, userName = strings.TrimSpace(email), strings.TrimSpace(userName)
	if email == "" || userName == "" || password == "" {
		return ErrInvalidRegistration
	}
	return s.signIn(ctx, MethodRegister, func() (api.AuthResult, error) {
		return s.client.Register(ctx, api.RegisterRequest{Email: email, UserName: userName, Password: password})
	})
}

// LoginWithGoogle runs the configured sign-in flow and exchanges its ID
// token with the backend.
func (s *Session) LoginWithGoogle(ctx context.Context) error {
	if s.google == nil {
		return ErrNoIDTokenProvider
	}
	return s.signIn(ctx, MethodGoogle, func() (api.AuthResult, error) {
		idToken, err := s.google.IDToken(ctx)
		if err != nil {
			return api.AuthResult{}, fmt.Errorf("auth: google sign-in: %w", err)
		}
		if strings.TrimSpace(idToken) == "" {
			return api.AuthResult{}, ErrMissingIDToken
		}
		return s.client.ExternalLogin(ctx, api.ExternalLoginRequest{Provider: api.ProviderGoogle, IDToken: idToken})
	})
}

func (s *Session) signIn(ctx context.Context, method string, call func() (api.AuthResult, error)) error {
	s.setLoading(true)
	defer s.setLoading(false)

	result, err := call()
	if err != nil {
		s.logger.Warn("sign-in failed", zap.String("method", method), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.token = result.Token
	s.user = result.User
	s.mu.Unlock()

	if err := s.store.Set(ctx, state.KeyToken, result.Token); err != nil {
		s.logger.Warn("persisting token failed", zap.Error(err))
	}
	if err := state.SetJSON(ctx, s.store, state.KeyUser, result.User); err != nil {
		s.logger.Warn("persisting user failed", zap.Error(err))
	}

	input := activity.SessionInput{Method: method, OccurredAt: time.Now()}
	if result.User != nil {
		input.UserID = result.User.ID
		input.UserName = result.User.UserName
	}
	s.logger.Info("signed in", zap.String("method", method), zap.String("user_id", input.UserID))
	s.emit(ctx, activity.BuildSessionStartedEvent(input))
	return nil
}

// Logout clears the session in memory and in the store. Store failures are
// logged; the in-memory session is cleared regardless.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{state.KeyToken, state.KeyUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("clearing session key failed", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
		}
	}

	input := activity.SessionInput{OccurredAt: time.Now()}
	if user != nil {
		input.UserID = user.ID
		input.UserName = user.UserName
	}
	s.emit(ctx, activity.BuildSessionEndedEvent(input))
	s.notify()
	return errors.Join(errs...)
}

func (s *Session) emit(ctx context.Context, event activity.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("session activity failed", zap.Error(err))
	}
}
