package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calculator-brain/internal/engine"
	"calculator-brain/internal/handlers"
	"calculator-brain/internal/observability"
	"calculator-brain/internal/program"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var errInvalidRequest = errors.New("invalid request")

// Handler serves the calculator session API.
type Handler struct {
	store *Store
	cfg   Config
}

func NewHandler(store *Store, cfg Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// ---------------------------------------------------------------------------
// Handlers: session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	sess, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create_session", "too many sessions", err, http.StatusServiceUnavailable, w)
		return
	}

	sessionsGauge.Add(ctx, 1)
	span.SetAttributes(attribute.String("session.id", sess.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sess.ID),
		zap.Int("sessions", h.store.Len()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusCreated, sess.State())
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "get_session", func(_ context.Context, _ *http.Request, s *Session) (State, error) {
		return s.State(), nil
	})
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("session.id", id),
		),
	)
	defer span.End()

	if !h.store.Delete(id) {
		observability.RecordError(ctx, span, logger, errorCounter, "delete_session", "session not found", fmt.Errorf("session %q", id), http.StatusNotFound, w)
		return
	}

	sessionsGauge.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", requestID),
	)

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers: engine input
// ---------------------------------------------------------------------------

// SetOperand handles POST /calculator/sessions/{id}/operand with either
// {"value": 4} or {"variable": "M"}.
func (h *Handler) SetOperand(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "operand", func(ctx context.Context, r *http.Request, s *Session) (State, error) {
		var req OperandRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			return State{}, err
		}

		span := trace.SpanFromContext(ctx)
		switch {
		case req.Value != nil && req.Variable == "":
			span.SetAttributes(attribute.Float64("calculator.operand", *req.Value))
			return s.SetOperand(*req.Value), nil
		case req.Value == nil && req.Variable != "":
			span.SetAttributes(attribute.String("calculator.variable", req.Variable))
			return s.SetVariableOperand(req.Variable)
		default:
			return State{}, fmt.Errorf("%w: exactly one of value or variable is required", errInvalidRequest)
		}
	})
}

// PerformOperation handles POST /calculator/sessions/{id}/operation
func (h *Handler) PerformOperation(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "operation", func(ctx context.Context, r *http.Request, s *Session) (State, error) {
		var req OperationRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			return State{}, err
		}
		if req.Symbol == "" {
			return State{}, fmt.Errorf("%w: symbol is required", errInvalidRequest)
		}

		symbol := program.Canonical(req.Symbol)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("calculator.symbol", symbol))
		return s.PerformOperation(symbol)
	})
}

// Undo handles POST /calculator/sessions/{id}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "undo", func(_ context.Context, _ *http.Request, s *Session) (State, error) {
		return s.Undo(), nil
	})
}

// Clear handles POST /calculator/sessions/{id}/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "clear", func(_ context.Context, _ *http.Request, s *Session) (State, error) {
		return s.Clear(), nil
	})
}

// SetVariable handles PUT /calculator/sessions/{id}/variables/{name}
func (h *Handler) SetVariable(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "set_variable", func(ctx context.Context, r *http.Request, s *Session) (State, error) {
		var req VariableRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			return State{}, err
		}

		name := chi.URLParam(r, "name")
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("calculator.variable", name),
			attribute.Float64("calculator.variable.value", req.Value),
		)
		return s.SetVariable(name, req.Value), nil
	})
}

// ---------------------------------------------------------------------------
// Handlers: programs
// ---------------------------------------------------------------------------

// GetProgram handles GET /calculator/sessions/{id}/program. Clients that
// accept application/yaml get a YAML program file, everyone else JSON.
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := h.startSessionSpan(ctx, "get_program", r)
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "get_program", w, r)
	if !ok {
		return
	}

	f := sess.Program()
	span.SetAttributes(attribute.Int("calculator.program.length", len(f.Program)))

	if !acceptsYAML(r) {
		body := ProgramBody{Program: f.Program, Variables: f.Variables}
		if _, err := json.Marshal(body); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "get_program", "program is not representable as JSON, request application/yaml", err, http.StatusNotAcceptable, w)
			return
		}
		span.SetStatus(codes.Ok, "")
		handlers.WriteJSON(w, http.StatusOK, body)
		return
	}

	data, err := program.Encode(f)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get_program", "encoding program failed", err, http.StatusInternalServerError, w)
		return
	}
	span.SetStatus(codes.Ok, "")
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// PutProgram handles PUT /calculator/sessions/{id}/program: the session is
// cleared and the supplied program replayed.
func (h *Handler) PutProgram(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "put_program", func(ctx context.Context, r *http.Request, s *Session) (State, error) {
		f, err := readProgram(r)
		if err != nil {
			return State{}, err
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("calculator.program.length", len(f.Program)))
		return s.LoadProgram(f), nil
	})
}

func readProgram(r *http.Request) (program.File, error) {
	if !isYAML(r.Header.Get("Content-Type")) {
		var body ProgramBody
		if err := decodeJSON(r.Body, &body); err != nil {
			return program.File{}, err
		}
		return program.File{Variables: body.Variables, Program: body.Program}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return program.File{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	f, err := program.Decode(data)
	if err != nil {
		return program.File{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

// handleSessionOp is the shared implementation for every call against an
// existing session: child span, session lookup, timing, error mapping,
// metrics, trace-correlated logging and the JSON state response.
func (h *Handler) handleSessionOp(w http.ResponseWriter, r *http.Request, opName string, apply func(context.Context, *http.Request, *Session) (State, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := h.startSessionSpan(ctx, opName, r)
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, opName, w, r)
	if !ok {
		return
	}

	start := time.Now()
	state, err := apply(ctx, r, sess)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		switch {
		case errors.Is(err, errInvalidRequest):
			observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		case errors.Is(err, engine.ErrInvalidMath):
			observability.RecordError(ctx, span, logger, errorCounter, opName, engine.ErrorMessage(err), err, http.StatusUnprocessableEntity, w)
		default:
			observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
		}
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	if state.Result != nil {
		resultGauge.Record(ctx, *state.Result, attrs)
	}

	span.AddEvent("operation.complete", trace.WithAttributes(
		attribute.String("description", state.Description),
		attribute.Bool("pending", state.Pending),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.display", state.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.String("session_id", sess.ID),
		zap.String("display", state.Display),
		zap.String("description", state.Description),
		zap.Bool("pending", state.Pending),
		zap.Int("history_length", state.HistoryLength),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) startSessionSpan(ctx context.Context, opName string, r *http.Request) (context.Context, trace.Span) {
	return tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
			attribute.String("session.id", chi.URLParam(r, "id")),
		),
	)
}

func (h *Handler) lookup(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := h.store.Get(id)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", fmt.Errorf("session %q", id), http.StatusNotFound, w)
		return nil, false
	}
	return sess, true
}

func decodeJSON(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

func isYAML(mediaType string) bool {
	return strings.Contains(mediaType, "yaml")
}

func acceptsYAML(r *http.Request) bool {
	return isYAML(r.Header.Get("Accept"))
}
