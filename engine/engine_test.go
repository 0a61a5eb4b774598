package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdaxrom/microasm11/asmerr"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", path, err)
	}
	return path
}

func assemble(t *testing.T, body string) (*Result, *Context) {
	t.Helper()
	dir := t.TempDir()
	path := writeSource(t, dir, "in.asm", body)
	ctx := NewContext(Options{})
	result, err := ctx.Assemble(path)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return result, ctx
}

func TestAssembleLabelsAndBranch(t *testing.T) {
	src := "" +
		"\torg 1000\n" +
		"start:\tclr r0\n" +
		"loop:\tinc r0\n" +
		"\tcmp r0,#5\n" +
		"\tbne loop\n" +
		"\thalt\n"

	result, ctx := assemble(t, src)

	startAddr, ok := ctx.Env.Labels.Get("start")
	if !ok || startAddr != 01000 {
		t.Errorf("label start = %o, ok=%v, want 01000", startAddr, ok)
	}
	loopAddr, ok := ctx.Env.Labels.Get("loop")
	if !ok || loopAddr != 01000+2 {
		t.Errorf("label loop = %o, ok=%v, want %o", loopAddr, ok, 01000+2)
	}

	if result.Img.OutputAddr <= result.Img.StartAddr {
		t.Error("expected some bytes to have been emitted")
	}
}

func TestAssembleEquResolvesInPass2(t *testing.T) {
	src := "" +
		"limit: equ 12\n" +
		"\tmov #limit,r0\n"

	_, ctx := assemble(t, src)

	v, ok := ctx.Env.Equs.Get("limit")
	if !ok || v != 012 {
		t.Errorf("equ limit = %o, ok=%v, want 012", v, ok)
	}
}

func TestAssembleMacroExpansion(t *testing.T) {
	src := "" +
		"\tmacro clearboth a,b\n" +
		"\tclr a\n" +
		"\tclr b\n" +
		"\tendm\n" +
		"\tclearboth r0,r1\n"

	result, _ := assemble(t, src)
	// clr r0 + clr r1, two words, four bytes
	if got, want := result.Img.OutputAddr-result.Img.StartAddr, uint32(4); got != want {
		t.Errorf("emitted %d bytes, want %d", got, want)
	}
}

func TestAssembleMacroParamSubstitutesIntoLabel(t *testing.T) {
	src := "" +
		"\tmacro mkvar name\n" +
		"name:\tdw 0\n" +
		"\tendm\n" +
		"\tmkvar foo\n" +
		"\tmkvar bar\n"

	_, ctx := assemble(t, src)

	if _, ok := ctx.Env.Labels.Get("foo"); !ok {
		t.Error("expected the macro argument to become a label named foo")
	}
	if _, ok := ctx.Env.Labels.Get("bar"); !ok {
		t.Error("expected the macro argument to become a label named bar")
	}
	if _, ok := ctx.Env.Labels.Get("name"); ok {
		t.Error("the literal parameter name should not itself become a label")
	}
}

func TestAssembleConditionalSkipsInactiveBranch(t *testing.T) {
	src := "" +
		"flag: equ 0\n" +
		"\tif flag\n" +
		"\tclr r0\n" +
		"\telse\n" +
		"\tclr r1\n" +
		"\tendif\n"

	result, _ := assemble(t, src)
	if got, want := result.Img.OutputAddr-result.Img.StartAddr, uint32(2); got != want {
		t.Errorf("emitted %d bytes, want %d (only the else branch)", got, want)
	}
}

func TestAssembleDuplicateLabelIsError(t *testing.T) {
	src := "" +
		"dup:\tclr r0\n" +
		"dup:\tclr r1\n"

	dir := t.TempDir()
	path := writeSource(t, dir, "in.asm", src)
	ctx := NewContext(Options{})
	_, err := ctx.Assemble(path)

	asmErr, ok := err.(*asmerr.Error)
	if !ok || asmErr.Kind != asmerr.LabelAlreadyDefined {
		t.Fatalf("Assemble() error = %v, want LabelAlreadyDefined", err)
	}
}

func TestAssembleIncludeFollowsIntoOtherFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "inc.asm", "included:\tclr r0\n")
	main := "\tinclude \"inc.asm\"\n\tclr r1\n"
	path := writeSource(t, dir, "main.asm", main)

	ctx := NewContext(Options{})
	_, err := ctx.Assemble(path)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if _, ok := ctx.Env.Labels.Get("included"); !ok {
		t.Error("expected label from included file to be defined")
	}
}

func TestAssembleChecksumPatchesPlaceholder(t *testing.T) {
	src := "" +
		"\tclr r0\n" +
		"\tchksum\n"

	result, _ := assemble(t, src)
	if !result.UsedChecksum {
		t.Fatal("expected UsedChecksum to be true")
	}
	if got := result.Img.Checksum(); got != 0 {
		// Checksum() recomputes over the now-patched buffer, so summing
		// again including the patched word should cancel to zero.
		t.Errorf("Checksum() after patching = %#04x, want 0", got)
	}
}
