package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"calculator-brain/internal/calculator"
)

type config struct {
	Addr          string
	SweepInterval time.Duration
	Calculator    calculator.Config
}

// loadConfig reads the server configuration from the environment, falling
// back to calculator.DefaultConfig for anything unset.
func loadConfig() (config, error) {
	cfg := config{
		Addr:          envOr("ADDR", ":8080"),
		SweepInterval: time.Minute,
		Calculator:    calculator.DefaultConfig(),
	}

	var err error
	if cfg.Calculator.MaxSessions, err = envInt("CALC_MAX_SESSIONS", cfg.Calculator.MaxSessions); err != nil {
		return config{}, err
	}
	if cfg.Calculator.SessionTTL, err = envDuration("CALC_SESSION_TTL", cfg.Calculator.SessionTTL); err != nil {
		return config{}, err
	}
	if cfg.Calculator.ClearOnError, err = envBool("CALC_CLEAR_ON_ERROR", cfg.Calculator.ClearOnError); err != nil {
		return config{}, err
	}
	if cfg.Calculator.NumberFormat.MaxFractionDigits, err = envInt("CALC_FRACTION_DIGITS", cfg.Calculator.NumberFormat.MaxFractionDigits); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
