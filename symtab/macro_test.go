package symtab

import "testing"

func TestSubstitutePositional(t *testing.T) {
	got := SubstitutePositional("mov #1,#2", []string{"r0", "r1"})
	want := "mov r0,r1"
	if got != want {
		t.Errorf("SubstitutePositional() = %q, want %q", got, want)
	}
}

func TestSubstitutePositionalMissingArgIsDeleted(t *testing.T) {
	got := SubstitutePositional("mov #1,#2", []string{"r0"})
	want := "mov r0,"
	if got != want {
		t.Errorf("SubstitutePositional() = %q, want %q", got, want)
	}
}

func TestSubstituteNamedWholeIdentifierOnly(t *testing.T) {
	got := SubstituteNamed("mov dst,dstword", []string{"dst"}, []string{"r0"})
	want := "mov r0,dstword"
	if got != want {
		t.Errorf("SubstituteNamed() = %q, want %q", got, want)
	}
}

func TestSubstituteNamedMatchesThroughLabelColon(t *testing.T) {
	// "name:" must tokenize as "name" followed by ":", not as one opaque
	// token that can never match the parameter -- otherwise the common
	// "macro defines a label from its argument" idiom silently breaks.
	got := SubstituteNamed("name: dw 0", []string{"name"}, []string{"foo"})
	want := "foo: dw 0"
	if got != want {
		t.Errorf("SubstituteNamed() = %q, want %q", got, want)
	}
}

func TestExpandLineOrderPositionalThenNamed(t *testing.T) {
	m := &Macro{Name: "push2", Params: []string{"a", "b"}}
	// the named argument's own text contains "#1"; since positional
	// substitution already ran by the time named substitution happens,
	// it must not be re-expanded.
	got := m.ExpandLine("mov a,b", []string{"#1", "r1"})
	want := "mov #1,r1"
	if got != want {
		t.Errorf("ExpandLine() = %q, want %q", got, want)
	}
}

func TestMacroTableAddDuplicate(t *testing.T) {
	tab := NewMacroTable(false)
	if !tab.Add(&Macro{Name: "Push"}) {
		t.Fatal("first Add() should succeed")
	}
	if tab.Add(&Macro{Name: "push"}) {
		t.Error("second Add() with a case-insensitively equal name should fail")
	}
	if !tab.Has("PUSH") {
		t.Error("Has() should be case-insensitive")
	}
}
