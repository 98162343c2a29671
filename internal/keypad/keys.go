package keypad

import "github.com/charmbracelet/bubbles/key"

// symbolKeys maps single keystrokes onto operator symbols.
var symbolKeys = map[string]string{
	"+":     "+",
	"-":     "−",
	"*":     "×",
	"/":     "÷",
	"^":     "xʸ",
	"=":     "=",
	"enter": "=",
	"n":     "±",
	"%":     "%",
	"r":     "√",
	"x":     "x²",
	"i":     "x⁻¹",
	"!":     "x!",
	"s":     "sin",
	"o":     "cos",
	"t":     "tan",
	"l":     "ln",
	"g":     "log₁₀",
	"p":     "π",
	"e":     "e",
	"R":     "rand",
}

type keyMap struct {
	Digits    key.Binding
	Operators key.Binding
	Functions key.Binding
	Equals    key.Binding
	Backspace key.Binding
	SetMemory key.Binding
	Memory    key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Digits: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "."),
			key.WithHelp("0-9 .", "digits"),
		),
		Operators: key.NewBinding(
			key.WithKeys("+", "-", "*", "/", "^"),
			key.WithHelp("+ - * / ^", "operators"),
		),
		Functions: key.NewBinding(
			key.WithKeys("n", "%", "r", "x", "i", "!", "s", "o", "t", "l", "g", "p", "e", "R"),
			key.WithHelp("n % r x i ! s o t l g p e R", "± % √ x² x⁻¹ x! sin cos tan ln log π e rand"),
		),
		Equals: key.NewBinding(
			key.WithKeys("=", "enter"),
			key.WithHelp("=/enter", "equals"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete / undo"),
		),
		SetMemory: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "→M"),
		),
		Memory: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "recall M"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c", "esc"),
			key.WithHelp("c/esc", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Operators, k.Equals, k.Backspace, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Digits, k.Operators, k.Equals},
		{k.Functions},
		{k.Backspace, k.SetMemory, k.Memory, k.Clear, k.Quit},
	}
}
