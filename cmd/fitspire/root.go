package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-fitspire"
	"github.com/goliatone/go-fitspire/internal/config"
	"github.com/spf13/cobra"
)

const envConfig = "FITSPIRE_CONFIG"

type rootFlags struct {
	configPath string
	baseURL    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "fitspire",
		Short:         "Fitness-social client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv(envConfig), "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.baseURL, "api-url", "", "override the backend base URL")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the log level")

	cmd.AddCommand(
		newLoginCommand(flags),
		newRegisterCommand(flags),
		newLogoutCommand(flags),
		newWhoamiCommand(flags),
		newProfileCommand(flags),
		newPrefsCommand(flags),
		newThemeCommand(flags),
		newFeedCommand(flags),
		newUserCommand(),
	)
	return cmd
}

func (f *rootFlags) config() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.baseURL != "" {
		cfg.API.BaseURL = f.baseURL
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	return cfg, cfg.Validate()
}

// run starts an app for the duration of fn. Close waits for background
// writes, so changes made by fn are flushed before the process exits.
func (f *rootFlags) run(cmd *cobra.Command, fn func(ctx context.Context, app *fitspire.App) error) (err error) {
	cfg, err := f.config()
	if err != nil {
		return err
	}
	app, err := fitspire.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
	}()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, app)
}

func requireSignedIn(app *fitspire.App) error {
	if app.Route() != fitspire.RouteMain {
		return fmt.Errorf("not signed in; run `fitspire login` first")
	}
	return nil
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
