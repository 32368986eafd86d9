package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-fitspire"
	"github.com/goliatone/go-fitspire/feed"
	"github.com/goliatone/go-fitspire/rules"
	"github.com/spf13/cobra"
)

func newFeedCommand(flags *rootFlags) *cobra.Command {
	var filter, engine, like string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List workout posts",
		Long: "List workout posts. --filter takes a rule over workoutType, title, durationMin,\n" +
			"calories, sets, reps, likes, comments, liked, user and id, for example\n" +
			`  fitspire feed --filter 'workoutType == "running" && durationMin >= 30'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := rules.ParseEngine(engine)
			if err != nil {
				return err
			}
			return flags.run(cmd, func(_ context.Context, app *fitspire.App) error {
				if like != "" {
					if _, err := app.Feed().ToggleLike(like); err != nil {
						return err
					}
				}
				posts, err := app.Feed().Filter(filter, eng)
				if err != nil {
					return err
				}
				now := time.Now()
				for _, post := range posts {
					printPost(cmd, post, now)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "rule expression selecting posts")
	cmd.Flags().StringVar(&engine, "engine", string(rules.EngineExpr), "rule engine: expr, cel or js")
	cmd.Flags().StringVar(&like, "like", "", "toggle the like on a post id before listing")
	return cmd
}

func printPost(cmd *cobra.Command, post feed.Post, now time.Time) {
	heart := "♡"
	if post.Liked {
		heart = "♥"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %-14s %3d min  %s %d  💬 %d  %s  %s\n",
		post.WorkoutType.Icon(), post.Title, post.UserName, post.Duration,
		heart, post.Likes, post.Comments, post.Ago(now), post.ID)
}

func newUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the sample user card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			card := feed.MockUser()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (@%s)\n%s\n\n", card.DisplayName, card.UserName, card.Bio)
			for _, w := range card.Workouts {
				fmt.Fprintf(out, "  %-14s %3d min  %3d bpm\n", w.Title, w.DurationMinutes, w.AvgBpm)
			}
			fmt.Fprintf(out, "\n  total %d min\n", card.TotalMinutes())
			return nil
		},
	}
}
