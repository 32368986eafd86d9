package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-fitspire"
	"github.com/spf13/cobra"
)

const envPassword = "FITSPIRE_PASSWORD"

func passwordFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "password", "", "account password (or "+envPassword+")")
}

func password(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envPassword)
}

func newLoginCommand(flags *rootFlags) *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "login <email-or-username>",
		Short: "Sign in with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := app.Session().Login(ctx, args[0], password(pw)); err != nil {
					return err
				}
				return printSignedIn(cmd, app)
			})
		},
	}
	passwordFlag(cmd, &pw)
	return cmd
}

func newRegisterCommand(flags *rootFlags) *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "register <email> <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := app.Session().Register(ctx, args[0], args[1], password(pw)); err != nil {
					return err
				}
				return printSignedIn(cmd, app)
			})
		},
	}
	passwordFlag(cmd, &pw)
	return cmd
}

func newLogoutCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, func(ctx context.Context, app *fitspire.App) error {
				if err := app.Session().Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, func(_ context.Context, app *fitspire.App) error {
				if app.Route() != fitspire.RouteMain {
					fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
					return nil
				}
				return printSignedIn(cmd, app)
			})
		},
	}
}

func printSignedIn(cmd *cobra.Command, app *fitspire.App) error {
	st := app.Session().State()
	if st.User == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "signed in")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", st.User.UserName, st.User.ID)
	return nil
}
