package feed_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-fitspire/feed"
	"github.com/goliatone/go-fitspire/rules"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFeed(t *testing.T) *feed.Feed {
	t.Helper()
	f, err := feed.New(feed.MockPosts(now))
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}
	return f
}

func TestMockPostsCoverEveryWorkoutType(t *testing.T) {
	seen := map[feed.WorkoutType]bool{}
	ids := map[string]bool{}
	for _, post := range feed.MockPosts(now) {
		seen[post.WorkoutType] = true
		if ids[post.ID] {
			t.Fatalf("duplicate id %s", post.ID)
		}
		ids[post.ID] = true
		if post.WorkoutType.Icon() == "" {
			t.Fatalf("missing icon for %s", post.WorkoutType)
		}
	}
	for _, kind := range feed.WorkoutTypes() {
		if !seen[kind] {
			t.Fatalf("no post for %s", kind)
		}
	}
	if feed.Running.Icon() != "🏃" || feed.Yoga.Icon() != "🧘" {
		t.Fatal("unexpected icons")
	}
}

func TestToggleLike(t *testing.T) {
	f := newFeed(t)
	original := f.Posts()[0]

	liked, err := f.ToggleLike(original.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !liked.Liked || liked.Likes != original.Likes+1 {
		t.Fatalf("after like: %+v", liked)
	}
	unliked, _ := f.ToggleLike(original.ID)
	if unliked.Liked || unliked.Likes != original.Likes {
		t.Fatalf("after unlike: %+v", unliked)
	}

	if _, err := f.ToggleLike("missing"); !errors.Is(err, feed.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestToggleLikeConcurrent(t *testing.T) {
	f := newFeed(t)
	post := f.Posts()[1]
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.ToggleLike(post.ID)
		}()
	}
	wg.Wait()
	got, _ := f.Post(post.ID)
	if got.Liked || got.Likes != post.Likes {
		t.Fatalf("even number of toggles should restore the post, got %+v", got)
	}
}

func TestFilter(t *testing.T) {
	f := newFeed(t)
	cases := []struct {
		name   string
		engine rules.Engine
		expr   string
		want   []string
	}{
		{"empty matches all", rules.EngineExpr, "", []string{"Leg Day", "Morning 10K", "Open Water Session", "Hill Repeats", "Sunset Vinyasa"}},
		{"expr type and minutes", rules.EngineExpr, `workoutType == "running" && durationMin >= 30`, []string{"Morning 10K"}},
		{"expr likes", rules.EngineExpr, `likes > 20`, []string{"Leg Day", "Morning 10K", "Hill Repeats"}},
		{"expr function", rules.EngineExpr, `icontains(title, "day")`, []string{"Leg Day"}},
		{"cel type and minutes", rules.EngineCEL, `workoutType == "cycling" && durationMin > 60`, []string{"Hill Repeats"}},
		{"cel function", rules.EngineCEL, `fold(user) == "leo_flow"`, []string{"Sunset Vinyasa"}},
		{"default engine", "", `comments == 2`, []string{"Open Water Session"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.Filter(tc.expr, tc.engine)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d posts, want %v", len(got), tc.want)
			}
			for i, post := range got {
				if post.Title != tc.want[i] {
					t.Fatalf("post %d = %q, want %q", i, post.Title, tc.want[i])
				}
			}
		})
	}
}

func TestFilterSeesLikeState(t *testing.T) {
	f := newFeed(t)
	target := f.Posts()[4]
	if _, err := f.ToggleLike(target.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, err := f.Filter("liked", rules.EngineExpr)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].ID != target.ID {
		t.Fatalf("unexpected liked posts %+v", got)
	}
}

func TestFilterErrors(t *testing.T) {
	f := newFeed(t)
	if _, err := f.Filter(`title`, rules.EngineExpr); err == nil {
		t.Fatal("non-bool rule should fail")
	} else {
		var evalErr *rules.EvaluationError
		if !errors.As(err, &evalErr) {
			t.Fatalf("expected EvaluationError, got %T", err)
		}
	}
	if _, err := f.Filter(`likes >`, rules.EngineExpr); err == nil {
		t.Fatal("syntax error should fail")
	}
	if _, err := f.Filter(`likes > 1`, rules.Engine("lua")); !errors.Is(err, rules.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestNewRejectsInvalidPosts(t *testing.T) {
	posts := feed.MockPosts(now)
	posts[1].ID = posts[0].ID
	if _, err := feed.New(posts); !errors.Is(err, feed.ErrInvalidPost) {
		t.Fatalf("duplicate ids: %v", err)
	}
	bad := feed.MockPosts(now)[:1]
	bad[0].WorkoutType = "pilates"
	if _, err := feed.New(bad); !errors.Is(err, feed.ErrInvalidPost) {
		t.Fatalf("unknown type: %v", err)
	}
}

func TestAgo(t *testing.T) {
	posts := feed.MockPosts(now)
	want := []string{"2h ago", "4h ago", "9h ago", "1d ago", "2d ago"}
	for i, post := range posts {
		if got := post.Ago(now); got != want[i] {
			t.Errorf("%s: %q, want %q", post.Title, got, want[i])
		}
	}
	if got := (feed.Post{PostedAt: now.Add(-30 * time.Second)}).Ago(now); got != "just now" {
		t.Errorf("got %q", got)
	}
}

func TestMockUser(t *testing.T) {
	user := feed.MockUser()
	if user.UserName != "johnny" || len(user.Workouts) != 3 || user.TotalMinutes() != 135 {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestMockPostIDsAreStable(t *testing.T) {
	first, second := feed.MockPosts(now), feed.MockPosts(now.Add(time.Hour))
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("post %d id changed: %s != %s", i, first[i].ID, second[i].ID)
		}
	}
}
