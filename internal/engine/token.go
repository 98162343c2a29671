package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Token is one entry of an engine program: either a numeric operand or a symbol.
// The zero value is the operand 0.
type Token struct {
	symbol  string
	operand float64
	isSym   bool
}

// Operand returns a token that loads v into the accumulator.
func Operand(v float64) Token {
	return Token{operand: v}
}

// Symbol returns a token that performs the named operation or variable lookup.
func Symbol(s string) Token {
	return Token{symbol: s, isSym: true}
}

func (t Token) IsOperand() bool { return !t.isSym }

// Value returns the operand value. It is 0 for symbols.
func (t Token) Value() float64 { return t.operand }

// Name returns the symbol string. It is empty for operands.
func (t Token) Name() string { return t.symbol }

func (t Token) String() string {
	if t.isSym {
		return t.symbol
	}
	return strconv.FormatFloat(t.operand, 'g', -1, 64)
}

// MarshalJSON encodes operands as JSON numbers and symbols as JSON strings.
func (t Token) MarshalJSON() ([]byte, error) {
	if t.isSym {
		return json.Marshal(t.symbol)
	}
	return json.Marshal(t.operand)
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*t = Operand(v)
	case string:
		*t = Symbol(v)
	default:
		return fmt.Errorf("token must be a number or a string, got %s", data)
	}
	return nil
}
