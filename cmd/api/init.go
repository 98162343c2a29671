package main

import (
	"context"

	"calculator-brain/internal/calculator"
	"calculator-brain/internal/observability"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. The session gauge is registered separately on the
// Prometheus registry in main.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
