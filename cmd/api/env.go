package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads environment variables from CALC_ENV_FILE, or .env when
// that is unset. A missing file is not an error. Existing process environment
// variables are not overridden.
func loadDotEnv() error {
	path := envOr("CALC_ENV_FILE", ".env")

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
