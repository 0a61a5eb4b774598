package lex_test

import (
	"testing"

	"github.com/pdaxrom/microasm11/lex"
	"github.com/pdaxrom/microasm11/symtab"
)

func eval(t *testing.T, expr string) (int32, string) {
	t.Helper()
	env := symtab.NewEnv(false)
	env.SetPass(2)
	sc := lex.NewScanner(expr)
	ev := lex.NewEvaluator(sc, env, 1)
	v, err := ev.Eval()
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", expr, err)
	}
	return v, sc.Rest()
}

func TestCharLiteralConsumesClosingQuote(t *testing.T) {
	v, rest := eval(t, "'A'")
	if v != 'A' {
		t.Errorf("Eval('A') = %d, want %d", v, 'A')
	}
	if rest != "" {
		t.Errorf("scanner left at %q after char literal, want empty (closing quote consumed)", rest)
	}
}

func TestCharLiteralFollowedByMoreOperands(t *testing.T) {
	// The kind of source this previously broke: a char-literal immediate
	// followed by a second operand. If the closing quote isn't consumed,
	// the comma below is never found by the caller.
	v, rest := eval(t, "'A',r0")
	if v != 'A' {
		t.Errorf("Eval = %d, want %d", v, 'A')
	}
	if rest != ",r0" {
		t.Errorf("scanner left at %q, want %q", rest, ",r0")
	}
}

func TestCharLiteralAtEndOfLine(t *testing.T) {
	// Without consuming the closing quote, this would leave the scanner
	// parked on `'` and trip a trailing-token check in the caller.
	_, rest := eval(t, "'Z'")
	if rest != "" {
		t.Errorf("scanner left at %q after trailing char literal, want empty", rest)
	}
}
