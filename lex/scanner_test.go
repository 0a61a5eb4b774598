package lex

import "testing"

func TestReadTokenStopsAtNonIdent(t *testing.T) {
	sc := NewScanner("label: mov")
	tok := sc.ReadToken()
	if tok != "label" {
		t.Errorf("ReadToken() = %q, want %q", tok, "label")
	}
	if sc.Peek() != ':' {
		t.Errorf("Peek() after ReadToken = %q, want ':'", sc.Peek())
	}
}

func TestReadTokenEmptyOnNonIdentStart(t *testing.T) {
	sc := NewScanner("  123")
	sc.SkipBlank()
	if tok := sc.ReadToken(); tok != "" {
		t.Errorf("ReadToken() = %q, want empty", tok)
	}
}

func TestMatchSkipsBlanksRegardlessOfOutcome(t *testing.T) {
	sc := NewScanner("   , next")
	if !sc.Match(',') {
		t.Fatal("Match(',') should succeed after skipping blanks")
	}
	if sc.Peek() != ' ' {
		t.Errorf("Peek() after Match = %q, want ' '", sc.Peek())
	}

	sc2 := NewScanner("   x")
	if sc2.Match(',') {
		t.Fatal("Match(',') should fail when the next non-blank byte is 'x'")
	}
	if sc2.Peek() != 'x' {
		t.Errorf("Peek() after failed Match = %q, want 'x'", sc2.Peek())
	}
}

func TestAtEndIgnoresTrailingBlanks(t *testing.T) {
	sc := NewScanner("mov r0,r1")
	sc.SetPos(sc.Len())
	if !sc.AtEnd() {
		t.Error("AtEnd() should be true once the cursor reaches the end")
	}

	sc2 := NewScanner("   ")
	if !sc2.AtEnd() {
		t.Error("AtEnd() should be true for a blank-only remainder")
	}
}

func TestIsIdentStartAcceptsLabelPrefixChars(t *testing.T) {
	for _, c := range []byte{'a', 'Z', '_', ':', '.'} {
		if !IsIdentStart(c) {
			t.Errorf("IsIdentStart(%q) = false, want true", c)
		}
	}
	if IsIdentStart('1') {
		t.Error("IsIdentStart('1') = true, want false")
	}
}
