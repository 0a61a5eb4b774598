package asmerr

import "testing"

func TestErrorStringWithoutText(t *testing.T) {
	err := New(SyntaxError, 5)
	if got, want := err.Error(), "Syntax error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorStringWithText(t *testing.T) {
	err := Newf(CannotOpenFile, 5, "%s", "missing.asm")
	if got, want := err.Error(), "Cannot open file: missing.asm"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestReportFormat(t *testing.T) {
	err := New(LabelAlreadyDefined, 12)
	want := "Line 12: Label name already used\nCompilation failed: Label name already used\n"
	if got := err.Report(); got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}
}

func TestUnknownKindFallsBackToNoError(t *testing.T) {
	var k Kind = 9999
	if got, want := k.String(), "No error"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
