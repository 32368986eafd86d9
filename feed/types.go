// Package feed holds the workout feed: posts from other users, likes and
// rule-based filtering.
package feed

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPostNotFound = errors.New("feed: post not found")
	ErrInvalidPost  = errors.New("feed: invalid post")
)

type WorkoutType string

const (
	Gym      WorkoutType = "gym"
	Running  WorkoutType = "running"
	Swimming WorkoutType = "swimming"
	Cycling  WorkoutType = "cycling"
	Yoga     WorkoutType = "yoga"
)

var workoutIcons = map[WorkoutType]string{
	Gym:      "🏋️",
	Running:  "🏃",
	Swimming: "🏊",
	Cycling:  "🚴",
	Yoga:     "🧘",
}

// WorkoutTypes lists the known workout types in display order.
func WorkoutTypes() []WorkoutType {
	return []WorkoutType{Gym, Running, Swimming, Cycling, Yoga}
}

func (w WorkoutType) Valid() bool {
	_, ok := workoutIcons[w]
	return ok
}

// Icon returns the emoji shown on a post card.
func (w WorkoutType) Icon() string {
	return workoutIcons[w]
}

// Post is one workout shared to the feed. Calories, Sets and Reps are
// optional.
type Post struct {
	ID          string      `json:"id"`
	UserName    string      `json:"userName"`
	UserAvatar  string      `json:"userAvatar,omitempty"`
	WorkoutType WorkoutType `json:"workoutType"`
	Title       string      `json:"workoutTitle"`
	PostedAt    time.Time   `json:"postedAt"`
	Duration    int         `json:"duration"`
	Calories    *int        `json:"calories,omitempty"`
	Sets        *int        `json:"sets,omitempty"`
	Reps        *int        `json:"reps,omitempty"`
	Likes       int         `json:"likes"`
	Comments    int         `json:"comments"`
	Liked       bool        `json:"liked"`
}

func (p Post) validate() error {
	switch {
	case !p.WorkoutType.Valid():
		return fmt.Errorf("%w: unknown workout type %q", ErrInvalidPost, p.WorkoutType)
	case p.Title == "":
		return fmt.Errorf("%w: missing title", ErrInvalidPost)
	case p.Duration < 0 || p.Likes < 0 || p.Comments < 0:
		return fmt.Errorf("%w: negative counter", ErrInvalidPost)
	}
	return nil
}

// vars exposes the post to filter expressions.
func (p Post) vars() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"user":        p.UserName,
		"workoutType": string(p.WorkoutType),
		"title":       p.Title,
		"durationMin": p.Duration,
		"calories":    derefOr(p.Calories, 0),
		"sets":        derefOr(p.Sets, 0),
		"reps":        derefOr(p.Reps, 0),
		"likes":       p.Likes,
		"comments":    p.Comments,
		"liked":       p.Liked,
	}
}

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// Ago renders PostedAt relative to now ("just now", "5m ago", "2h ago",
// "3d ago").
func (p Post) Ago(now time.Time) string {
	d := now.Sub(p.PostedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// Workout is a summary row on a user card.
type Workout struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	AvgBpm          int    `json:"avgBpm"`
}

// UserCard is another user's public profile.
type UserCard struct {
	DisplayName string    `json:"displayName"`
	UserName    string    `json:"userName"`
	Bio         string    `json:"bio"`
	ImageURL    *string   `json:"imageUrl"`
	Workouts    []Workout `json:"workouts"`
}

// TotalMinutes sums the durations of the card's workouts.
func (c UserCard) TotalMinutes() int {
	total := 0
	for _, w := range c.Workouts {
		total += w.DurationMinutes
	}
	return total
}
