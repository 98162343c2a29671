package observability

import (
	"testing"

	"go.uber.org/zap"
)

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() { Logger = oldLogger })

	t.Setenv("LOG_LEVEL", "loud")
	if err := InitLogger(); err == nil {
		t.Fatal("expected an error for an unknown level")
	}

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	if err := InitLogger(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}
