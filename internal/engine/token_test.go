package engine

import (
	"encoding/json"
	"testing"
)

func TestTokenJSONProgram(t *testing.T) {
	var program []Token
	if err := json.Unmarshal([]byte(`[4, "+", 0.5, "M", "="]`), &program); err != nil {
		t.Fatalf("decoding program: %v", err)
	}

	if len(program) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(program))
	}
	if !program[0].IsOperand() || program[0].Value() != 4 {
		t.Fatalf("expected operand 4, got %v", program[0])
	}
	if program[1].IsOperand() || program[1].Name() != "+" {
		t.Fatalf("expected symbol +, got %v", program[1])
	}

	out, err := json.Marshal(program)
	if err != nil {
		t.Fatalf("encoding program: %v", err)
	}
	if got := string(out); got != `[4,"+",0.5,"M","="]` {
		t.Fatalf("unexpected encoding %s", got)
	}
}

func TestTokenJSONRejectsOtherTypes(t *testing.T) {
	var tok Token
	if err := json.Unmarshal([]byte(`{"op":"+"}`), &tok); err == nil {
		t.Fatal("expected an error for an object token")
	}
}
