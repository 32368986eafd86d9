package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-fitspire"
	"github.com/goliatone/go-fitspire/appearance"
	"github.com/goliatone/go-fitspire/theme"
	"github.com/spf13/cobra"
)

func newThemeCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Inspect or change the color scheme",
	}

	var showTrace bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective scheme and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, func(_ context.Context, app *fitspire.App) error {
				snap := app.Appearance().MustSnapshot()
				fmt.Fprintf(cmd.OutOrStdout(), "scheme=%s preference=%s source=%s\n", snap.Scheme, displayPreference(snap.Preference), snap.Source)
				if !showTrace {
					return nil
				}
				return printJSON(cmd.OutOrStdout(), app.Appearance().Trace())
			})
		},
	}
	show.Flags().BoolVar(&showTrace, "trace", false, "print every consulted source")

	var sync, noPersist bool
	set := &cobra.Command{
		Use:       "set <light|dark|system>",
		Short:     "Choose a scheme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark", "system"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, ok := theme.ParsePreference(args[0])
			if !ok {
				return fmt.Errorf("unknown scheme %q", args[0])
			}
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				opts := []appearance.SetOption{appearance.WithPersist(!noPersist)}
				if cmd.Flags().Changed("sync") {
					opts = append(opts, appearance.WithSyncRemote(sync))
				}
				if err := app.Appearance().SetScheme(pref, opts...).Wait(ctx); err != nil {
					return err
				}
				snap := app.Appearance().MustSnapshot()
				fmt.Fprintf(cmd.OutOrStdout(), "scheme=%s preference=%s\n", snap.Scheme, displayPreference(snap.Preference))
				return nil
			})
		},
	}
	set.Flags().BoolVar(&sync, "sync", false, "also update the account's dark mode setting")
	set.Flags().BoolVar(&noPersist, "no-persist", false, "apply for this run only")

	var scheme string
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Render the palette and tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scheme != "" {
				s, ok := theme.ParseScheme(scheme)
				if !ok {
					return fmt.Errorf("unknown scheme %q", scheme)
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme.Preview(theme.Resolve(s)))
				return nil
			}
			return flags.run(cmd, func(_ context.Context, app *fitspire.App) error {
				snap := app.Appearance().MustSnapshot()
				fmt.Fprintln(cmd.OutOrStdout(), theme.Preview(snap.Theme, snap.Tokens))
				return nil
			})
		},
	}
	preview.Flags().StringVar(&scheme, "scheme", "", "preview light or dark without starting the client")

	cmd.AddCommand(show, set, preview)
	return cmd
}

func displayPreference(pref theme.Preference) string {
	if pref == "" {
		return "unset"
	}
	return string(pref)
}
