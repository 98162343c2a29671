package calculator

import (
	"errors"
	"sync"
	"time"

	"calculator-brain/internal/engine"
	"calculator-brain/internal/program"
)

// Session is one calculator session: an engine plus the presentation state a
// keypad would keep next to it. All methods are safe for concurrent use; calls
// on the same session are serialized.
type Session struct {
	ID string

	mu             sync.Mutex
	engine         *engine.Engine
	format         engine.NumberFormat
	clearOnError   bool
	equalsJustUsed bool
	lastUsed       time.Time
}

func newSession(id string, cfg Config, now time.Time) *Session {
	return &Session{
		ID:           id,
		engine:       engine.New(engine.WithNumberFormat(cfg.NumberFormat)),
		format:       cfg.NumberFormat,
		clearOnError: cfg.ClearOnError,
		lastUsed:     now,
	}
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SetOperand loads a literal value.
func (s *Session) SetOperand(v float64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.engine.SetOperand(v)
	s.equalsJustUsed = false
	return s.state()
}

// SetVariableOperand loads a variable reference.
func (s *Session) SetVariableOperand(name string) (State, error) {
	return s.perform(name)
}

// PerformOperation applies symbol. On a guard failure the engine is cleared
// when the session is configured to do so, and the error is returned.
func (s *Session) PerformOperation(symbol string) (State, error) {
	return s.perform(symbol)
}

func (s *Session) perform(symbol string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.equalsJustUsed = false
	if err := s.engine.PerformOperation(symbol); err != nil {
		if s.clearOnError && errors.Is(err, engine.ErrInvalidMath) {
			s.engine.Clear()
		}
		return s.state(), err
	}
	s.equalsJustUsed = symbol == "="
	return s.state(), nil
}

// Undo removes the last token.
func (s *Session) Undo() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.engine.Undo()
	s.equalsJustUsed = lastSymbol(s.engine.Program()) == "="
	return s.state()
}

// Clear resets the engine and zeroes every bound variable.
func (s *Session) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.engine.Clear()
	for name := range s.engine.Variables() {
		s.engine.SetVariable(name, 0)
	}
	s.equalsJustUsed = false
	return s.state()
}

// SetVariable rebinds name and recomputes the session.
func (s *Session) SetVariable(name string, v float64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.engine.SetVariable(name, v)
	return s.state()
}

// Program returns the session history and variable bindings.
func (s *Session) Program() program.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return program.File{
		Variables: s.engine.Variables(),
		Program:   s.engine.Program(),
	}
}

// LoadProgram binds f's variables and replays its tokens.
func (s *Session) LoadProgram(f program.File) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	f.Apply(s.engine)
	s.equalsJustUsed = lastSymbol(f.Program) == "="
	return s.state()
}

// State returns what a display shows for the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	desc := s.engine.Description()
	pending := s.engine.IsOperationPending()
	result := s.engine.Result()

	return State{
		SessionID:     s.ID,
		Result:        finite(result),
		Display:       s.format.Format(result),
		Description:   desc,
		Expression:    engine.Decorate(desc, pending, s.equalsJustUsed),
		Pending:       pending,
		HistoryLength: len(s.engine.Program()),
		Variables:     s.engine.Variables(),
	}
}

func lastSymbol(tokens []engine.Token) string {
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1].Name()
}
