// Package config loads client settings from an optional YAML file with
// FITSPIRE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL          = "http://10.0.2.2:5016/api"
	DefaultRequestTimeout   = 10 * time.Second
	DefaultBootstrapTimeout = 3 * time.Second
	DefaultStorageKey       = "@app:schemePref"
	DefaultActivityChannel  = "fitspire"
	DefaultLogLevel         = "info"
	defaultStorageFile      = "fitspire/state.json"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	API        API        `yaml:"api"`
	Appearance Appearance `yaml:"appearance"`
	Auth       Auth       `yaml:"auth"`
	Storage    Storage    `yaml:"storage"`
	Log        Log        `yaml:"log"`
	Activity   Activity   `yaml:"activity"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Appearance struct {
	BootstrapTimeout time.Duration `yaml:"bootstrap_timeout"`
	StorageKey       string        `yaml:"storage_key"`
	// SyncRemote is the default for pushing scheme changes to the backend.
	SyncRemote bool `yaml:"sync_remote"`
}

type Auth struct {
	GoogleWebClientID string `yaml:"google_web_client_id"`
}

type Storage struct {
	Path string `yaml:"path"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Activity struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
	// Verbs limits emission to these verb prefixes, e.g. ["auth", "appearance"].
	Verbs []string `yaml:"verbs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: API{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultRequestTimeout,
		},
		Appearance: Appearance{
			BootstrapTimeout: DefaultBootstrapTimeout,
			StorageKey:       DefaultStorageKey,
		},
		Storage: Storage{Path: defaultStoragePath()},
		Log:     Log{Level: DefaultLogLevel},
		Activity: Activity{
			Channel: DefaultActivityChannel,
		},
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.FromSlash(".fitspire/state.json")
	}
	return filepath.Join(dir, filepath.FromSlash(defaultStorageFile))
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url must not be empty")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be greater than 0")
	}
	if c.Appearance.BootstrapTimeout <= 0 {
		problems = append(problems, "appearance.bootstrap_timeout must be greater than 0")
	}
	if strings.TrimSpace(c.Appearance.StorageKey) == "" {
		problems = append(problems, "appearance.storage_key must not be empty")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		problems = append(problems, "storage.path must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	if c.API.BaseURL, err = readString("FITSPIRE_API_BASE_URL", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.Timeout, err = readDuration("FITSPIRE_API_TIMEOUT", c.API.Timeout); err != nil {
		return err
	}
	if c.Appearance.BootstrapTimeout, err = readDuration("FITSPIRE_BOOTSTRAP_TIMEOUT", c.Appearance.BootstrapTimeout); err != nil {
		return err
	}
	if c.Appearance.SyncRemote, err = readBool("FITSPIRE_SYNC_REMOTE", c.Appearance.SyncRemote); err != nil {
		return err
	}
	if c.Auth.GoogleWebClientID, err = readString("FITSPIRE_GOOGLE_WEB_CLIENT_ID", c.Auth.GoogleWebClientID); err != nil {
		return err
	}
	if c.Storage.Path, err = readString("FITSPIRE_STORAGE_PATH", c.Storage.Path); err != nil {
		return err
	}
	if c.Log.Level, err = readString("FITSPIRE_LOG_LEVEL", c.Log.Level); err != nil {
		return err
	}
	if c.Log.Development, err = readBool("FITSPIRE_LOG_DEVELOPMENT", c.Log.Development); err != nil {
		return err
	}
	if c.Activity.Enabled, err = readBool("FITSPIRE_ACTIVITY_ENABLED", c.Activity.Enabled); err != nil {
		return err
	}
	if c.Activity.Verbs, err = readList("FITSPIRE_ACTIVITY_VERBS", c.Activity.Verbs); err != nil {
		return err
	}
	return nil
}

func readString(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	if raw == "" {
		return "", fmt.Errorf("config: %s must not be empty", key)
	}
	return raw, nil
}

// readList splits a comma-separated variable, dropping blank entries.
func readList(key string, fallback []string) ([]string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("config: %s must list at least one verb", key)
	}
	return out, nil
}

func readBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("config: %s must be greater than 0", key)
	}
	return parsed, nil
}
