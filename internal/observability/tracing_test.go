package observability

import (
	"context"
	"testing"
)

func TestServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	if got := ServiceName(); got != "calculator-brain" {
		t.Fatalf("expected default service name, got %q", got)
	}

	t.Setenv("OTEL_SERVICE_NAME", "calc-staging")
	if got := ServiceName(); got != "calc-staging" {
		t.Fatalf("expected %q, got %q", "calc-staging", got)
	}
}

func TestInitWhenDisabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	ctx := context.Background()

	inits := map[string]func(context.Context) (func(context.Context) error, error){
		"tracing": InitTracing,
		"metrics": InitMetrics,
		"logging": InitLogging,
	}
	for name, init := range inits {
		shutdown, err := init(ctx)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if err := shutdown(ctx); err != nil {
			t.Fatalf("%s: unexpected shutdown error: %v", name, err)
		}
	}
}
