package fitspire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-fitspire/appearance"
	"github.com/goliatone/go-fitspire/auth"
	"github.com/goliatone/go-fitspire/feed"
	"github.com/goliatone/go-fitspire/internal/config"
	"github.com/goliatone/go-fitspire/internal/logging"
	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/activity/usersink"
	"github.com/goliatone/go-fitspire/pkg/api"
	"github.com/goliatone/go-fitspire/pkg/state"
	"github.com/goliatone/go-fitspire/profile"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"go.uber.org/zap"
)

// Route is the navigation stack the client should render.
type Route string

const (
	RouteLoading Route = "loading"
	RouteAuth    Route = "auth"
	RouteMain    Route = "main"
)

var errSignedOut = errors.New("fitspire: not signed in")

type Option func(*options)

type options struct {
	logger     *zap.Logger
	store      state.Store
	system     appearance.System
	httpClient *http.Client
	google     auth.IDTokenProvider
	hooks      activity.Hooks
	sink       usertypes.ActivitySink
	posts      []feed.Post
	now        func() time.Time
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore replaces the file store at the configured storage path.
func WithStore(store state.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithSystem replaces terminal background detection as the OS appearance
// source.
func WithSystem(system appearance.System) Option {
	return func(o *options) {
		o.system = system
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithGoogle enables LoginWithGoogle.
func WithGoogle(provider auth.IDTokenProvider) Option {
	return func(o *options) {
		o.google = provider
	}
}

// WithActivityHooks adds hooks that receive client activity events.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithActivitySink forwards activity events to a go-users sink.
func WithActivitySink(sink usertypes.ActivitySink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithPosts seeds the feed instead of the sample posts.
func WithPosts(posts []feed.Post) Option {
	return func(o *options) {
		o.posts = posts
	}
}

// App owns every client component. Build it with New.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	ownLog  bool
	store   state.Store
	emitter *activity.Emitter

	client     *api.Client
	session    *auth.Session
	appearance *appearance.Resolver
	profile    *profile.Service
	feed       *feed.Feed
}

// New validates cfg and wires the components. Nothing touches the network or
// the store until Start.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	app := &App{cfg: cfg, logger: o.logger}
	if app.logger == nil {
		logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
		if err != nil {
			return nil, err
		}
		app.logger = logger
		app.ownLog = true
	}

	app.store = o.store
	if app.store == nil {
		app.store = state.NewFileStore(cfg.Storage.Path)
	}

	hooks := append(activity.Hooks(nil), o.hooks...)
	if o.sink != nil {
		hooks = append(hooks, usersink.Hook{Sink: o.sink})
	}
	app.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: cfg.Activity.Enabled,
		Channel: cfg.Activity.Channel,
		Verbs:   cfg.Activity.Verbs,
	})

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logging.Named(app.logger, logging.API)),
		api.WithTokenSource(api.TokenFunc(func(ctx context.Context) (string, error) {
			return app.session.Token(ctx)
		})),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	client, err := api.New(cfg.API.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}
	app.client = client

	sessionOpts := []auth.Option{auth.WithLogger(app.logger), auth.WithEmitter(app.emitter)}
	if o.google != nil {
		sessionOpts = append(sessionOpts, auth.WithGoogle(o.google))
	}
	app.session = auth.NewSession(client, app.store, sessionOpts...)

	app.profile = profile.NewService(client,
		profile.WithLogger(app.logger),
		profile.WithEmitter(app.emitter),
		profile.WithActor(app.session.UserID),
	)

	system := o.system
	if system == nil {
		system = appearance.NewTerminalSystem(appearance.DefaultPollInterval)
	}
	resolver, err := appearance.New(app.store,
		appearance.WithRemote(signedInRemote{session: app.session, remote: app.profile}),
		appearance.WithSystem(system),
		appearance.WithLogger(app.logger),
		appearance.WithEmitter(app.emitter),
		appearance.WithActor(app.session.UserID),
		appearance.WithStorageKey(cfg.Appearance.StorageKey),
		appearance.WithBootstrapTimeout(cfg.Appearance.BootstrapTimeout),
		appearance.WithRemoteSyncDefault(cfg.Appearance.SyncRemote),
	)
	if err != nil {
		return nil, err
	}
	app.appearance = resolver

	posts := o.posts
	if posts == nil {
		posts = feed.MockPosts(o.now())
	}
	app.feed, err = feed.New(posts, feed.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Start restores the saved session, then bootstraps the color scheme. A
// session restore failure is logged and leaves the user signed out.
func (a *App) Start(ctx context.Context) error {
	log := logging.Named(a.logger, logging.App)
	if err := a.session.Restore(ctx); err != nil {
		log.Warn("session restore failed", zap.Error(err))
	}
	if err := a.appearance.Start(ctx); err != nil {
		return fmt.Errorf("fitspire: start appearance: %w", err)
	}
	snap := a.appearance.MustSnapshot()
	log.Info("client ready",
		zap.String("route", string(a.Route())),
		zap.String("scheme", string(snap.Scheme)),
		zap.String("source", string(snap.Source)),
	)
	return nil
}

// Route reports loading until both the session and the scheme are settled.
func (a *App) Route() Route {
	st := a.session.State()
	if st.Loading || a.appearance.State() != appearance.StateReady {
		return RouteLoading
	}
	if st.Authenticated() {
		return RouteMain
	}
	return RouteAuth
}

// Close stops the resolver after its pending writes finish.
func (a *App) Close() error {
	err := a.appearance.Close()
	if a.ownLog {
		_ = a.logger.Sync()
	}
	return err
}

func (a *App) Config() config.Config            { return a.cfg }
func (a *App) Logger() *zap.Logger              { return a.logger }
func (a *App) Store() state.Store               { return a.store }
func (a *App) Client() *api.Client              { return a.client }
func (a *App) Session() *auth.Session           { return a.session }
func (a *App) Appearance() *appearance.Resolver { return a.appearance }
func (a *App) Profile() *profile.Service        { return a.profile }
func (a *App) Feed() *feed.Feed                 { return a.feed }
func (a *App) Activity() *activity.Emitter      { return a.emitter }

// signedInRemote skips the backend while nobody is signed in.
type signedInRemote struct {
	session *auth.Session
	remote  appearance.Remote
}

func (r signedInRemote) FetchDarkMode(ctx context.Context) (bool, error) {
	if !r.session.State().Authenticated() {
		return false, errSignedOut
	}
	return r.remote.FetchDarkMode(ctx)
}

func (r signedInRemote) PushDarkMode(ctx context.Context, dark bool) error {
	if !r.session.State().Authenticated() {
		return errSignedOut
	}
	return r.remote.PushDarkMode(ctx, dark)
}
