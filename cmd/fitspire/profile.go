package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goliatone/go-fitspire"
	"github.com/goliatone/go-fitspire/pkg/api"
	"github.com/goliatone/go-fitspire/profile"
	"github.com/spf13/cobra"
)

func newProfileCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := requireSignedIn(app); err != nil {
					return err
				}
				loaded, err := app.Profile().Load(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), loaded)
			})
		},
	}

	var displayName, bio string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Update display name or bio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := api.ProfilePatch{}
			if cmd.Flags().Changed("display-name") {
				patch.DisplayName = api.Ptr(displayName)
			}
			if cmd.Flags().Changed("bio") {
				patch.Bio = api.Ptr(bio)
			}
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := requireSignedIn(app); err != nil {
					return err
				}
				user, err := app.Profile().UpdateProfile(ctx, patch)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			})
		},
	}
	edit.Flags().StringVar(&displayName, "display-name", "", "new display name")
	edit.Flags().StringVar(&bio, "bio", "", "new bio")

	photo := &cobra.Command{
		Use:   "photo <image-file>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := requireSignedIn(app); err != nil {
					return err
				}
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				name := filepath.Base(args[0])
				user, err := app.Profile().UploadPhoto(ctx, name, mime.TypeByExtension(filepath.Ext(name)), f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			})
		},
	}

	cmd.AddCommand(edit, photo)
	return cmd
}

func newPrefsCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := requireSignedIn(app); err != nil {
					return err
				}
				loaded, err := app.Profile().Load(ctx)
				if err != nil {
					return err
				}
				printPreferences(cmd, loaded.Preferences)
				return nil
			})
		},
	}

	var language, units, dark, emails string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := api.PreferencesPatch{}
			if cmd.Flags().Changed("language") {
				patch.PreferredLanguage = api.Ptr(language)
			}
			if cmd.Flags().Changed("units") {
				patch.UnitSystem = api.Ptr(units)
			}
			if cmd.Flags().Changed("dark") {
				v, err := strconv.ParseBool(dark)
				if err != nil {
					return fmt.Errorf("--dark: %w", err)
				}
				patch.IsDarkModeEnabled = api.Ptr(v)
			}
			if cmd.Flags().Changed("emails") {
				v, err := strconv.ParseBool(emails)
				if err != nil {
					return fmt.Errorf("--emails: %w", err)
				}
				patch.ReceiveEmailNotifications = api.Ptr(v)
			}
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := requireSignedIn(app); err != nil {
					return err
				}
				prefs, err := app.Profile().UpdatePreferences(ctx, patch)
				if err != nil {
					return err
				}
				printPreferences(cmd, prefs)
				return nil
			})
		},
	}
	set.Flags().StringVar(&language, "language", "", "en, pl or es")
	set.Flags().StringVar(&units, "units", "", "metric or imperial")
	set.Flags().StringVar(&dark, "dark", "", "true or false")
	set.Flags().StringVar(&emails, "emails", "", "true or false")

	cmd.AddCommand(set)
	return cmd
}

func printPreferences(cmd *cobra.Command, prefs api.Preferences) {
	values := map[string]string{
		"preferredLanguage":         prefs.PreferredLanguage,
		"unitSystem":                prefs.UnitSystem,
		"isDarkModeEnabled":         strconv.FormatBool(prefs.IsDarkModeEnabled),
		"receiveEmailNotifications": strconv.FormatBool(prefs.ReceiveEmailNotifications),
	}
	out := cmd.OutOrStdout()
	for _, field := range profile.Descriptors() {
		fmt.Fprintf(out, "%-20s %-20s %s\n", field.Title, field.Label(values[field.Path]), field.Description)
	}
}
