package calculator

import (
	"math"

	"calculator-brain/internal/engine"
)

// State is the JSON response for every session endpoint.
type State struct {
	SessionID     string             `json:"session_id"`
	Result        *float64           `json:"result"`  // null when the accumulator is NaN or infinite
	Display       string             `json:"display"` // formatted accumulator
	Description   string             `json:"description"`
	Expression    string             `json:"expression"` // description with "..." / "=" markers
	Pending       bool               `json:"pending"`
	HistoryLength int                `json:"history_length"`
	Variables     map[string]float64 `json:"variables"`
}

// OperandRequest is the JSON body for POST /calculator/sessions/{id}/operand.
// Exactly one of Value or Variable is set.
type OperandRequest struct {
	Value    *float64 `json:"value,omitempty"`
	Variable string   `json:"variable,omitempty"`
}

// OperationRequest is the JSON body for POST /calculator/sessions/{id}/operation.
type OperationRequest struct {
	Symbol string `json:"symbol"`
}

// VariableRequest is the JSON body for PUT /calculator/sessions/{id}/variables/{name}.
type VariableRequest struct {
	Value float64 `json:"value"`
}

// ProgramBody is the JSON shape of GET and PUT /calculator/sessions/{id}/program.
type ProgramBody struct {
	Program   []engine.Token     `json:"program"`
	Variables map[string]float64 `json:"variables,omitempty"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Variables map[string]float64 `json:"variables,omitempty"`
	Tokens    []engine.Token     `json:"tokens"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Steps       []EvaluateStep `json:"steps"`
	Result      *float64       `json:"result"`
	Display     string         `json:"display"`
	Description string         `json:"description"`
	Pending     bool           `json:"pending"`
	RequestID   string         `json:"request_id"`
}

// EvaluateStep records the engine state after one token.
type EvaluateStep struct {
	Token       engine.Token `json:"token"`
	Result      *float64     `json:"result"`
	Description string       `json:"description"`
}

// OperationInfo describes one operator table entry for GET /calculator/operations.
type OperationInfo struct {
	Symbol     string `json:"symbol"`
	Kind       string `json:"kind"`
	Precedence *int   `json:"precedence,omitempty"`
	Guarded    bool   `json:"guarded"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
