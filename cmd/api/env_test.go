package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Setenv("CALC_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	if err := loadDotEnv(); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "CALC_FRACTION_DIGITS=3\nCALC_MAX_SESSIONS=7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	t.Setenv("CALC_ENV_FILE", path)
	t.Setenv("CALC_MAX_SESSIONS", "2")
	t.Setenv("CALC_FRACTION_DIGITS", "")
	os.Unsetenv("CALC_FRACTION_DIGITS")

	if err := loadDotEnv(); err != nil {
		t.Fatalf("loading env file: %v", err)
	}

	if got := os.Getenv("CALC_FRACTION_DIGITS"); got != "3" {
		t.Fatalf("expected CALC_FRACTION_DIGITS=3, got %q", got)
	}
	if got := os.Getenv("CALC_MAX_SESSIONS"); got != "2" {
		t.Fatalf("expected CALC_MAX_SESSIONS to stay 2, got %q", got)
	}
}
