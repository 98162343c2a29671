// Package engine implements an interactive arithmetic evaluation engine.
//
// An Engine consumes operand and symbol tokens one at a time and keeps a
// numeric accumulator, a human-readable description of the expression and an
// undoable token history. Binary operators are evaluated strictly in the
// order they are entered; precedence only drives description grouping.
//
// An Engine is not safe for concurrent use. Callers serialize access.
package engine

import (
	"maps"
	"math"
)

const blankDescription = " "

// precedenceNone is tracked while the description is a single atom and needs
// no grouping before the next binary operator.
const precedenceNone = math.MaxInt

type pendingBinary struct {
	compute     func(a, b float64) float64
	first       float64
	render      func(a, b string) string
	description string
	guard       func(a, b float64) error
	precedence  int
	hasSecond   bool
}

// Engine holds the running state of one calculator session.
type Engine struct {
	ops       map[string]Operation
	variables map[string]float64
	format    NumberFormat

	accumulator float64
	description string
	precedence  int
	pending     *pendingBinary
	history     []Token
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithOperations replaces the default operator table.
func WithOperations(ops map[string]Operation) Option {
	return func(e *Engine) {
		e.ops = maps.Clone(ops)
	}
}

// WithVariables seeds the variable bindings.
func WithVariables(vars map[string]float64) Option {
	return func(e *Engine) {
		maps.Copy(e.variables, vars)
	}
}

// WithRandom sets the source used by the default "rand" operator. It has no
// effect when combined with WithOperations.
func WithRandom(random func() float64) Option {
	return func(e *Engine) {
		e.ops = DefaultOperations(random)
	}
}

// WithNumberFormat sets how operands are rendered into the description.
func WithNumberFormat(f NumberFormat) Option {
	return func(e *Engine) {
		e.format = f
	}
}

// New returns an engine with accumulator 0, empty history and nothing pending.
func New(opts ...Option) *Engine {
	e := &Engine{
		variables: make(map[string]float64),
		format:    DefaultNumberFormat,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ops == nil {
		e.ops = DefaultOperations(nil)
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.accumulator = 0
	e.description = blankDescription
	e.precedence = precedenceNone
	e.pending = nil
	e.history = nil
}

// Clear resets the numeric state, description and history. The operator table
// and variable bindings are kept.
func (e *Engine) Clear() {
	e.reset()
}

// SetOperand loads v into the accumulator.
func (e *Engine) SetOperand(v float64) {
	e.history = append(e.history, Operand(v))
	e.load(v, e.format.Format(v))
}

// load replaces the accumulator and description with an atom.
func (e *Engine) load(v float64, description string) {
	e.accumulator = v
	e.description = description
	e.precedence = precedenceNone
	if e.pending != nil {
		e.pending.hasSecond = true
	}
}

// SetVariableOperand loads a variable reference such as "M". It behaves
// exactly like PerformOperation(name).
func (e *Engine) SetVariableOperand(name string) error {
	return e.PerformOperation(name)
}

// PerformOperation records symbol in the history and applies it. Symbols that
// are not in the operator table load the variable of that name, or 0.
//
// A guard failure returns an error wrapping ErrInvalidMath and leaves the
// accumulator and description unchanged. The symbol stays in the history.
func (e *Engine) PerformOperation(symbol string) error {
	e.history = append(e.history, Symbol(symbol))
	return e.apply(symbol)
}

func (e *Engine) apply(symbol string) error {
	op, ok := e.ops[symbol]
	if !ok {
		e.load(e.variables[symbol], symbol)
		return nil
	}

	switch op := op.(type) {
	case Constant:
		e.load(op.Value, symbol)

	case Nullary:
		e.load(op.Compute(), op.Display)

	case Unary:
		if op.Guard != nil {
			if err := op.Guard(e.accumulator); err != nil {
				return err
			}
		}
		e.load(op.Compute(e.accumulator), op.Render(e.description))

	case Binary:
		if err := e.resolvePending(); err != nil {
			return err
		}
		if e.precedence < op.Precedence {
			e.description = "(" + e.description + ")"
		}
		e.precedence = op.Precedence
		e.pending = &pendingBinary{
			compute:     op.Compute,
			first:       e.accumulator,
			render:      op.Render,
			description: e.description,
			guard:       op.Guard,
			precedence:  op.Precedence,
		}

	case Equals:
		return e.resolvePending()
	}

	return nil
}

func (e *Engine) resolvePending() error {
	p := e.pending
	if p == nil {
		return nil
	}
	if p.guard != nil {
		if err := p.guard(p.first, e.accumulator); err != nil {
			return err
		}
	}
	e.accumulator = p.compute(p.first, e.accumulator)
	e.description = p.render(p.description, e.description)
	e.precedence = p.precedence
	e.pending = nil
	return nil
}

// Result returns the accumulator.
func (e *Engine) Result() float64 {
	return e.accumulator
}

// Description renders the expression entered so far. While a binary
// operation is pending the second operand is shown only once one has been
// entered since the operator. Entry is tracked explicitly rather than by
// comparing the current description with the first operand's, so "2 + 2"
// previews as "2 + 2" and not "2 + ".
func (e *Engine) Description() string {
	p := e.pending
	if p == nil {
		return e.description
	}
	second := ""
	if p.hasSecond {
		second = e.description
	}
	return p.render(p.description, second)
}

// IsOperationPending reports whether a binary operator awaits its second operand.
func (e *Engine) IsOperationPending() bool {
	return e.pending != nil
}

// Undo removes the most recent token and rebuilds the state from the rest of
// the history. It is a no-op on an empty history.
func (e *Engine) Undo() {
	if len(e.history) == 0 {
		return
	}
	e.replay(e.history[:len(e.history)-1])
}

// Program returns a copy of the token history.
func (e *Engine) Program() []Token {
	out := make([]Token, len(e.history))
	copy(out, e.history)
	return out
}

// SetProgram clears the engine and replays program. Guard failures during the
// replay leave the state where the failing token found it and the replay
// continues, exactly as if the tokens had been entered one by one.
func (e *Engine) SetProgram(program []Token) {
	e.replay(program)
}

// SetVariable binds name to v and recomputes the state from the history.
func (e *Engine) SetVariable(name string, v float64) {
	e.variables[name] = v
	e.replay(e.history)
}

// Variable returns the value bound to name, or 0.
func (e *Engine) Variable(name string) float64 {
	return e.variables[name]
}

// Variables returns a copy of the variable bindings.
func (e *Engine) Variables() map[string]float64 {
	return maps.Clone(e.variables)
}

// Operations returns the operator table.
func (e *Engine) Operations() map[string]Operation {
	return maps.Clone(e.ops)
}

func (e *Engine) replay(program []Token) {
	tokens := make([]Token, len(program))
	copy(tokens, program)

	e.reset()
	for _, t := range tokens {
		if t.IsOperand() {
			e.SetOperand(t.Value())
			continue
		}
		_ = e.PerformOperation(t.Name())
	}
}
