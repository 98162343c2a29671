// Package keypad is a terminal keypad for the calculator engine. It owns the
// digit-entry state a pocket calculator keeps outside its arithmetic core and
// feeds the engine whole operands and operator symbols.
package keypad

import (
	"strconv"
	"strings"

	"calculator-brain/internal/engine"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// memory is the variable the M keys store to and recall.
const memory = "M"

// Config holds keypad configuration.
type Config struct {
	NumberFormat engine.NumberFormat
	Logger       *zap.Logger

	// Operations replaces the default operator table when set.
	Operations map[string]engine.Operation
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		NumberFormat: engine.DefaultNumberFormat,
		Logger:       zap.NewNop(),
	}
}

// Model is the Bubbletea model for the keypad.
type Model struct {
	engine *engine.Engine
	format engine.NumberFormat
	logger *zap.Logger

	keys keyMap
	help help.Model

	input          string
	typing         bool
	equalsJustUsed bool
	message        string
	width          int
}

// New creates a keypad with a fresh engine.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []engine.Option{engine.WithNumberFormat(cfg.NumberFormat)}
	if cfg.Operations != nil {
		opts = append(opts, engine.WithOperations(cfg.Operations))
	}

	return Model{
		engine: engine.New(opts...),
		format: cfg.NumberFormat,
		logger: logger,
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  40,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Digits):
		m.touchDigit(msg.String())

	case key.Matches(msg, m.keys.Backspace):
		m.backspace()

	case key.Matches(msg, m.keys.SetMemory):
		m.setMemory()

	case key.Matches(msg, m.keys.Memory):
		m.recallMemory()

	case key.Matches(msg, m.keys.Clear):
		m.clear()

	default:
		if symbol, ok := symbolKeys[msg.String()]; ok {
			m.performOperation(symbol)
		}
	}
	return m, nil
}

func (m *Model) touchDigit(digit string) {
	m.message = ""
	if !m.typing {
		m.input = ""
		m.typing = true
	}
	if digit == "." && strings.Contains(m.input, ".") {
		return
	}
	if digit == "." && m.input == "" {
		m.input = "0"
	}
	m.input += digit
}

// commitInput hands a half-typed number to the engine.
func (m *Model) commitInput() {
	if !m.typing {
		return
	}
	m.typing = false
	if v, err := strconv.ParseFloat(m.input, 64); err == nil {
		m.engine.SetOperand(v)
	}
	m.input = ""
}

func (m *Model) performOperation(symbol string) {
	m.commitInput()
	m.equalsJustUsed = false
	m.message = ""

	if err := m.engine.PerformOperation(symbol); err != nil {
		m.logger.Warn("operation rejected", zap.String("symbol", symbol), zap.Error(err))
		m.message = engine.ErrorMessage(err)
		m.engine.Clear()
		return
	}
	m.equalsJustUsed = symbol == "="

	m.logger.Debug("operation performed",
		zap.String("symbol", symbol),
		zap.Float64("result", m.engine.Result()),
		zap.String("description", m.engine.Description()),
	)
}

func (m *Model) backspace() {
	if m.typing {
		m.input = m.input[:len(m.input)-1]
		if m.input == "" {
			m.typing = false
		}
		return
	}
	m.engine.Undo()
	m.message = ""
	program := m.engine.Program()
	m.equalsJustUsed = len(program) > 0 && program[len(program)-1].Name() == "="
}

func (m *Model) setMemory() {
	v := m.engine.Result()
	if m.typing {
		if typed, err := strconv.ParseFloat(m.input, 64); err == nil {
			v = typed
		}
		m.typing = false
		m.input = ""
	}
	m.engine.SetVariable(memory, v)
}

func (m *Model) recallMemory() {
	m.typing = false
	m.input = ""
	m.performOperation(memory)
}

func (m *Model) clear() {
	m.engine.Clear()
	m.engine.SetVariable(memory, 0)
	m.typing = false
	m.input = ""
	m.equalsJustUsed = false
	m.message = ""
}

// Display returns the main display text: the number being typed, an error
// message, or the formatted result.
func (m Model) Display() string {
	switch {
	case m.typing:
		return m.input
	case m.message != "":
		return m.message
	default:
		return m.format.Format(m.engine.Result())
	}
}

// Expression returns the description line.
func (m Model) Expression() string {
	return engine.Decorate(m.engine.Description(), m.engine.IsOperationPending(), m.equalsJustUsed)
}

// View implements tea.Model.
func (m Model) View() string {
	inner := max(m.width-4, 20)

	display := DisplayStyle.Width(inner).Render(m.Display())
	if m.message != "" && !m.typing {
		display = ErrorStyle.Width(inner).Align(lipgloss.Right).Render(m.message)
	}

	panel := PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Right,
		DescriptionStyle.Width(inner).Render(m.Expression()),
		display,
	))

	return lipgloss.JoinVertical(lipgloss.Left, panel, m.help.View(m.keys)) + "\n"
}
