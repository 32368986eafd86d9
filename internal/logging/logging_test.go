package logging_test

import (
	"testing"

	"github.com/goliatone/go-fitspire/internal/logging"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	logger, err := logging.New(logging.Options{Level: "WARN"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn should be enabled")
	}
}

func TestNewDevelopmentDefaultsToInfo(t *testing.T) {
	logger, err := logging.New(logging.Options{Development: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled without an explicit level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNamedToleratesNil(t *testing.T) {
	if logging.Named(nil, logging.API) == nil {
		t.Fatal("expected a no-op logger")
	}
}
