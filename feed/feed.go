package feed

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-fitspire/rules"
	"go.uber.org/zap"
)

type Option func(*Feed)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Feed) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFunctionRegistry replaces the functions available to filters.
func WithFunctionRegistry(registry *rules.FunctionRegistry) Option {
	return func(f *Feed) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// Feed is an in-memory, concurrency-safe list of posts.
type Feed struct {
	mu    sync.RWMutex
	posts []Post
	index map[string]int

	logger   *zap.Logger
	registry *rules.FunctionRegistry
	cache    *rules.MemoryCache

	evalMu     sync.Mutex
	evaluators map[rules.Engine]rules.Evaluator
}

// New builds a feed over posts. Posts without an id are rejected.
func New(posts []Post, opts ...Option) (*Feed, error) {
	f := &Feed{
		index:      make(map[string]int, len(posts)),
		logger:     zap.NewNop(),
		registry:   rules.DefaultFunctions(),
		cache:      rules.NewMemoryCache(),
		evaluators: map[rules.Engine]rules.Evaluator{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.logger = f.logger.Named("feed")
	for _, post := range posts {
		if err := f.add(post); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Feed) add(post Post) error {
	if strings.TrimSpace(post.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPost)
	}
	if err := post.validate(); err != nil {
		return err
	}
	if _, exists := f.index[post.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidPost, post.ID)
	}
	f.index[post.ID] = len(f.posts)
	f.posts = append(f.posts, post)
	return nil
}

// Posts returns a copy of the feed in display order.
func (f *Feed) Posts() []Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Post(nil), f.posts...)
}

func (f *Feed) Post(id string) (Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i, ok := f.index[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	return f.posts[i], nil
}

// ToggleLike flips the viewer's like on a post and adjusts the count.
func (f *Feed) ToggleLike(id string) (Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.index[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	post := &f.posts[i]
	if post.Liked {
		post.Likes--
	} else {
		post.Likes++
	}
	post.Liked = !post.Liked
	f.logger.Debug("like toggled", zap.String("post", id), zap.Bool("liked", post.Liked), zap.Int("likes", post.Likes))
	return *post, nil
}

// Filter returns the posts for which expr evaluates to true. The expression
// sees workoutType, title, durationMin, calories, sets, reps, likes, comments,
// liked, user and id. An empty expression matches everything.
func (f *Feed) Filter(expr string, engine rules.Engine) ([]Post, error) {
	posts := f.Posts()
	if strings.TrimSpace(expr) == "" {
		return posts, nil
	}
	evaluator, err := f.evaluator(engine)
	if err != nil {
		return nil, err
	}
	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, err
	}
	out := make([]Post, 0, len(posts))
	for _, post := range posts {
		ok, err := rules.MatchCompiled(rule, rules.Context{Vars: post.vars(), Label: post.ID})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, post)
		}
	}
	return out, nil
}

func (f *Feed) evaluator(engine rules.Engine) (rules.Evaluator, error) {
	if engine == "" {
		engine = rules.EngineExpr
	}
	f.evalMu.Lock()
	defer f.evalMu.Unlock()
	if evaluator, ok := f.evaluators[engine]; ok {
		return evaluator, nil
	}
	evaluator, err := rules.New(engine,
		rules.WithProgramCache(f.cache),
		rules.WithFunctionRegistry(f.registry),
		rules.WithLogger(rules.ZapLogger(f.logger)),
	)
	if err != nil {
		return nil, err
	}
	f.evaluators[engine] = evaluator
	return evaluator, nil
}
