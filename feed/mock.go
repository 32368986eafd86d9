package feed

import (
	"time"

	"github.com/google/uuid"
)

// MockPosts returns the sample feed, timestamped relative to now. Ids are
// stable across calls.
func MockPosts(now time.Time) []Post {
	ptr := func(v int) *int { return &v }
	return []Post{
		{
			ID: postID("alex_lifts", "Leg Day"), UserName: "alex_lifts", WorkoutType: Gym,
			Title: "Leg Day", PostedAt: now.Add(-2 * time.Hour),
			Duration: 60, Sets: ptr(16), Reps: ptr(120), Likes: 24, Comments: 5,
		},
		{
			ID: postID("maria_runs", "Morning 10K"), UserName: "maria_runs", WorkoutType: Running,
			Title: "Morning 10K", PostedAt: now.Add(-4 * time.Hour),
			Duration: 52, Calories: ptr(610), Likes: 41, Comments: 8,
		},
		{
			ID: postID("tom_swims", "Open Water Session"), UserName: "tom_swims", WorkoutType: Swimming,
			Title: "Open Water Session", PostedAt: now.Add(-9 * time.Hour),
			Duration: 40, Calories: ptr(420), Likes: 12, Comments: 2,
		},
		{
			ID: postID("kasia_rides", "Hill Repeats"), UserName: "kasia_rides", WorkoutType: Cycling,
			Title: "Hill Repeats", PostedAt: now.Add(-26 * time.Hour),
			Duration: 95, Calories: ptr(980), Likes: 33, Comments: 6,
		},
		{
			ID: postID("leo_flow", "Sunset Vinyasa"), UserName: "leo_flow", WorkoutType: Yoga,
			Title: "Sunset Vinyasa", PostedAt: now.Add(-50 * time.Hour),
			Duration: 30, Likes: 17, Comments: 1,
		},
	}
}

// postID derives a stable id so sample posts can be addressed across runs.
func postID(user, title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("fitspire:post:"+user+"/"+title)).String()
}

// MockUser is the sample profile opened from the home screen.
func MockUser() UserCard {
	return UserCard{
		DisplayName: "John Doe",
		UserName:    "johnny",
		Bio:         "Fitness enthusiast and runner. Love sharing workout tips.",
		Workouts: []Workout{
			{ID: "1", Title: "Back Day", DurationMinutes: 45, AvgBpm: 23},
			{ID: "2", Title: "Chest Day", DurationMinutes: 60, AvgBpm: 41},
			{ID: "3", Title: "HIIT Circuit", DurationMinutes: 30, AvgBpm: 18},
		},
	}
}
