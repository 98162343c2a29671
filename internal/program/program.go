// Package program reads and writes engine programs in YAML and parses token
// strings typed on a command line.
package program

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"calculator-brain/internal/engine"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a program:
//
//	variables:
//	  M: 3
//	program: [4, "+", M, "="]
type File struct {
	Variables map[string]float64
	Program   []engine.Token
}

type fileYAML struct {
	Variables map[string]float64 `yaml:"variables,omitempty"`
	Program   []yaml.Node        `yaml:"program"`
}

// Decode parses a YAML program document.
func Decode(data []byte) (File, error) {
	var raw fileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return File{}, fmt.Errorf("parse program: %w", err)
	}

	f := File{Variables: raw.Variables}
	for i, node := range raw.Program {
		tok, err := tokenFromNode(&node)
		if err != nil {
			return File{}, fmt.Errorf("program token %d: %w", i, err)
		}
		f.Program = append(f.Program, tok)
	}
	return f, nil
}

func tokenFromNode(node *yaml.Node) (engine.Token, error) {
	if node.Kind != yaml.ScalarNode {
		return engine.Token{}, fmt.Errorf("line %d: expected a scalar", node.Line)
	}

	switch node.ShortTag() {
	case "!!int", "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return engine.Token{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return engine.Operand(v), nil
	default:
		return engine.Symbol(node.Value), nil
	}
}

// Encode renders f as a YAML document that Decode reads back unchanged.
func Encode(f File) ([]byte, error) {
	raw := fileYAML{Variables: f.Variables}
	for _, tok := range f.Program {
		node := yaml.Node{Kind: yaml.ScalarNode}
		if tok.IsOperand() {
			node.Value = formatScalar(tok.Value())
		} else {
			node.Tag = "!!str"
			node.Value = tok.Name()
			node.Style = yaml.DoubleQuotedStyle
		}
		raw.Program = append(raw.Program, node)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	return buf.Bytes(), nil
}

func formatScalar(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Load reads a YAML program file from path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read program: %w", err)
	}
	return Decode(data)
}

// Apply binds f's variables on e and replays f's program.
func (f File) Apply(e *engine.Engine) {
	for name, v := range f.Variables {
		e.SetVariable(name, v)
	}
	e.SetProgram(f.Program)
}

// aliases maps keyboard-friendly spellings onto operator symbols.
var aliases = map[string]string{
	"*":     "×",
	"/":     "÷",
	"-":     "−",
	"^":     "xʸ",
	"pow":   "xʸ",
	"sqrt":  "√",
	"cbrt":  "³√",
	"pi":    "π",
	"neg":   "±",
	"!":     "x!",
	"fact":  "x!",
	"sq":    "x²",
	"cube":  "x³",
	"inv":   "x⁻¹",
	"log":   "log₁₀",
	"log10": "log₁₀",
	"exp":   "eˣ",
}

// Canonical returns the operator symbol for s, folding ASCII aliases. Aliases
// match exactly, so "PI" or "Log" stay variable names.
func Canonical(s string) string {
	if sym, ok := aliases[s]; ok {
		return sym
	}
	return s
}

// ParseTokens turns command-line words into tokens. Words that parse as
// finite numbers become operands; "-" alone is subtraction, "-3" is an
// operand, and "inf" or "nan" are variable names.
func ParseTokens(words []string) []engine.Token {
	tokens := make([]engine.Token, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if v, err := strconv.ParseFloat(w, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			tokens = append(tokens, engine.Operand(v))
			continue
		}
		tokens = append(tokens, engine.Symbol(Canonical(w)))
	}
	return tokens
}
