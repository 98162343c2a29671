package calculator

import (
	"fmt"
	"net/http"
	"time"

	"calculator-brain/internal/engine"
	"calculator-brain/internal/handlers"
	"calculator-brain/internal/observability"
	"calculator-brain/internal/program"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Handler: one-shot evaluation (nested spans per token)
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It runs a token program on a fresh
// engine without creating a session, with a child span for every token.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// Parent span for the whole program
	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// Decode
	var req EvaluateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Tokens) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "no tokens provided", fmt.Errorf("tokens array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("evaluate.tokens_count", len(req.Tokens)))

	logger.Info("starting evaluation",
		zap.Int("tokens", len(req.Tokens)),
		zap.String("request_id", requestID),
	)

	e := engine.New(
		engine.WithNumberFormat(h.cfg.NumberFormat),
		engine.WithVariables(req.Variables),
	)
	steps := make([]EvaluateStep, 0, len(req.Tokens))

	for i, tok := range req.Tokens {
		if !tok.IsOperand() {
			tok = engine.Symbol(program.Canonical(tok.Name()))
		}

		// --- Child span per token ---
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.evaluate.step.%d", i),
			trace.WithAttributes(
				attribute.Int("evaluate.step.index", i),
				attribute.String("evaluate.step.token", tok.String()),
				attribute.Float64("evaluate.step.input", e.Result()),
			),
		)

		stepStart := time.Now()
		var err error
		if tok.IsOperand() {
			e.SetOperand(tok.Value())
		} else {
			err = e.PerformOperation(tok.Name())
		}
		stepElapsed := float64(time.Since(stepStart).Microseconds()) / 1000.0

		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("failed at step %d", i))

			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))

			logger.Error("evaluation step failed",
				zap.Int("step", i),
				zap.String("token", tok.String()),
				zap.Error(err),
				zap.String("request_id", requestID),
			)

			handlers.WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s at step %d", engine.ErrorMessage(err), i))
			return
		}

		attrs := metric.WithAttributes(attribute.String("operation", "evaluate"))
		opsCounter.Add(ctx, 1, attrs)
		opsHistogram.Record(ctx, stepElapsed, attrs)

		stepSpan.AddEvent("step.complete", trace.WithAttributes(
			attribute.String("description", e.Description()),
		))
		stepSpan.SetAttributes(attribute.Float64("evaluate.step.result", e.Result()))
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		logger.Debug("evaluation step completed",
			zap.Int("step", i),
			zap.String("token", tok.String()),
			zap.Float64("result", e.Result()),
			zap.String("description", e.Description()),
			zap.Float64("duration_ms", stepElapsed),
		)

		steps = append(steps, EvaluateStep{
			Token:       tok,
			Result:      finite(e.Result()),
			Description: e.Description(),
		})
	}

	result := e.Result()
	if f := finite(result); f != nil {
		resultGauge.Record(ctx, *f, metric.WithAttributes(attribute.String("operation", "evaluate")))
	}

	span.AddEvent("evaluate.complete", trace.WithAttributes(
		attribute.Float64("final_result", result),
		attribute.Int("total_steps", len(req.Tokens)),
	))
	span.SetAttributes(attribute.String("evaluate.description", e.Description()))
	span.SetStatus(codes.Ok, "")

	logger.Info("evaluation completed",
		zap.Float64("result", result),
		zap.String("description", e.Description()),
		zap.Int("steps", len(req.Tokens)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Steps:       steps,
		Result:      finite(result),
		Display:     h.cfg.NumberFormat.Format(result),
		Description: e.Description(),
		Pending:     e.IsOperationPending(),
		RequestID:   requestID,
	})
}

// ListOperations handles GET /calculator/operations
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := engine.DefaultOperations(nil)

	out := make([]OperationInfo, 0, len(ops))
	for _, symbol := range engine.Symbols(ops) {
		info := OperationInfo{Symbol: symbol, Kind: ops[symbol].Kind()}
		switch op := ops[symbol].(type) {
		case engine.Unary:
			info.Guarded = op.Guard != nil
		case engine.Binary:
			p := op.Precedence
			info.Precedence = &p
			info.Guarded = op.Guard != nil
		}
		out = append(out, info)
	}

	handlers.WriteJSON(w, http.StatusOK, out)
}
