package engine

import (
	"strings"

	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/encode"
	"github.com/pdaxrom/microasm11/lex"
	"github.com/pdaxrom/microasm11/symtab"
)

// readTokenAndBoundary reads one name token at sc's current position and
// reports the single character immediately following it (0 at end of
// line), consuming that boundary character too. This mirrors the
// SKIP_TOKEN-then-peek-then-advance-past-it pattern the original line
// processor repeats for every token it pulls off a line.
func readTokenAndBoundary(sc *lex.Scanner) (string, byte) {
	start := sc.Pos()
	sc.SkipToken()
	tok := sc.Slice(start, sc.Pos())
	b := sc.Peek()
	if b != 0 {
		sc.Advance()
	}
	return tok, b
}

// AssembleLine processes one top-level or macro-body source line: strip
// its comment, handle a conditional-assembly directive if that's what it
// is, skip it entirely if a conditional block above it is inactive,
// otherwise tokenize and dispatch it. It recurses once per macro-body
// line during expansion, exactly as the original line processor calls
// itself back for each captured line.
func (ctx *Context) AssembleLine(raw string) error {
	stripped := lex.StripComment(raw)
	sc := lex.NewScanner(stripped)
	sc.SkipBlank()

	if handled, err := ctx.tryConditional(sc); handled {
		if err == nil && ctx.MacroDepth == 0 {
			ctx.SrcLine++
		}
		return err
	}

	if ctx.Cond.Skipping() {
		if ctx.MacroDepth == 0 {
			ctx.SrcLine++
		}
		return nil
	}

	return ctx.assembleActive(sc, stripped)
}

// tryConditional recognizes if/ifdef/ifndef/else/endif without consuming
// the scanner unless the line actually is one -- the check runs even
// inside a skipped block, and the condition expression of a nested `if`
// is only evaluated when the enclosing block is active (mirroring the
// original, which never even looks up a possibly-undefined symbol while
// skipping).
func (ctx *Context) tryConditional(sc *lex.Scanner) (bool, error) {
	save := sc.Pos()
	tok := sc.ReadToken()
	name := strings.TrimPrefix(strings.ToLower(tok), ".")

	switch name {
	case "if":
		parentActive := !ctx.Cond.Skipping()
		sc.SkipBlank()
		cond := false
		if parentActive {
			ev := ctx.newEvaluator(sc)
			v, err := ev.Eval()
			if err != nil {
				return true, err
			}
			cond = v != 0
		}
		if err := ctx.Cond.Push(cond); err != nil {
			return true, ctx.err(asmerr.SyntaxError)
		}
		return true, nil

	case "ifdef", "ifndef":
		parentActive := !ctx.Cond.Skipping()
		sc.SkipBlank()
		sym := sc.ReadToken()
		defined := ctx.symbolDefined(sym)
		cond := false
		if parentActive {
			if name == "ifdef" {
				cond = defined
			} else {
				cond = !defined
			}
		}
		if err := ctx.Cond.Push(cond); err != nil {
			return true, ctx.err(asmerr.SyntaxError)
		}
		return true, nil

	case "else":
		if err := ctx.Cond.Else(); err != nil {
			return true, ctx.err(asmerr.SyntaxError)
		}
		return true, nil

	case "endif":
		if err := ctx.Cond.Endif(); err != nil {
			return true, ctx.err(asmerr.SyntaxError)
		}
		return true, nil
	}

	sc.SetPos(save)
	return false, nil
}

// symbolDefined answers `ifdef`/`ifndef`: a name is defined if it
// resolves as a label or equ in the current scope, or if it's been
// declared `global` inside the active proc (the original treats the
// global escape-list itself as a defined symbol, independent of whether
// anything has actually assigned it a value yet).
func (ctx *Context) symbolDefined(name string) bool {
	if _, ok := ctx.Env.Lookup(name); ok {
		return true
	}
	if ctx.Env.Proc != nil && ctx.Env.Proc.IsGlobal(name, ctx.Opts.CaseSensitiveSymbols) {
		return true
	}
	return false
}

// assembleActive runs the label/macro/opcode disambiguation and the
// directive/instruction dispatch chain for a line that passed the
// skipping check.
func (ctx *Context) assembleActive(sc *lex.Scanner, stripped string) error {
	firstTok, boundary := readTokenAndBoundary(sc)

	if firstTok == "" {
		// Nothing identifier-like at the start of the line at all (a
		// blank line, or stray punctuation after comment-stripping):
		// the original lists it and moves on without even checking for
		// leftover text in this case.
		ctx.listLine(ctx.Img.OutputAddr, nil)
		if ctx.MacroDepth == 0 {
			ctx.SrcLine++
		}
		return nil
	}

	var label string
	var mac *symtab.Macro
	var opcode *encode.Opcode
	var isByte bool
	var unmatched string

	lookup := func(tok string) bool {
		if tok == "" {
			return false
		}
		if m, ok := ctx.Macros.Get(tok); ok {
			mac = m
			return true
		}
		if op, byteForm, ok := encode.Find(tok); ok {
			opcode = op
			isByte = byteForm
			return true
		}
		return false
	}

	if boundary == ':' {
		label = firstTok
		sc.SkipBlank()
		tok2, b2 := readTokenAndBoundary(sc)
		boundary = b2
		if tok2 != "" && !lookup(tok2) {
			unmatched = tok2
		}
	} else {
		if !lookup(firstTok) {
			label = firstTok
			if boundary != 0 {
				sc.SkipBlank()
				tok2, b2 := readTokenAndBoundary(sc)
				boundary = b2
				if tok2 != "" && !lookup(tok2) {
					unmatched = tok2
				}
			}
		}
	}

	if opcode != nil && !encode.Supported(opcode, ctx.CPU) && opcode.Type < encode.PseudoDB {
		return ctx.err(asmerr.UnsupportedInstruction)
	}

	if label != "" && ctx.Pass == 1 && (mac != nil || !(opcode != nil && opcode.Name == "equ")) {
		ctx.Env.SetLocationCounter(int32(ctx.Img.OutputAddr))
		if !ctx.Env.DefineLabel(label) {
			return ctx.err(asmerr.LabelAlreadyDefined)
		}
	}

	if mac != nil {
		ctx.listLine(ctx.Img.OutputAddr, nil)
		sc.SkipBlank()
		hasArgs := boundary != 0
		var args string
		if hasArgs {
			args = sc.Rest()
		}
		return ctx.expandMacro(mac, args, hasArgs)
	}

	if opcode != nil && opcode.Name == "include" {
		if label != "" {
			return ctx.err(asmerr.SyntaxError)
		}
		return ctx.doInclude(sc, label, ctx.currentDir())
	}

	var dispatchErr error
	switch {
	case opcode != nil && opcode.Name == "equ":
		dispatchErr = ctx.doEqu(label, sc)
	case opcode != nil && opcode.Name == "proc":
		if label == "" {
			sc.SkipBlank()
			label = sc.ReadToken()
		}
		dispatchErr = ctx.doProc(label)
	case opcode != nil && opcode.Name == "endp":
		dispatchErr = ctx.doEndp()
	case opcode != nil && opcode.Name == "global":
		dispatchErr = ctx.doGlobal(sc)
	case opcode != nil && opcode.Name == "macro":
		return ctx.doMacroDef(sc)
	case opcode != nil && opcode.Name == "org":
		dispatchErr = ctx.doOrg(sc)
	case opcode != nil && opcode.Type == encode.PseudoCPU:
		dispatchErr = ctx.doCPU(sc, label)
	case opcode != nil && opcode.Type == encode.PseudoChksum:
		dispatchErr = ctx.doChksum()
	case opcode != nil:
		oldAddr := ctx.Img.OutputAddr
		if err := ctx.dispatchOpcode(opcode, isByte, sc); err != nil {
			return err
		}
		if opcode.Type < encode.PseudoDB {
			sc.SkipBlank()
			if !sc.AtEnd() {
				return ctx.err(asmerr.ExtraSymbols)
			}
		}
		ctx.listGeneric(oldAddr, stripped)
	default:
		if unmatched != "" {
			return ctx.err(asmerr.SyntaxError)
		}
		ctx.listLine(ctx.Img.OutputAddr, nil)
	}

	if dispatchErr != nil {
		return dispatchErr
	}

	if ctx.MacroDepth == 0 {
		ctx.SrcLine++
	}
	return nil
}

// dispatchOpcode routes db/dw/ds/dsb/dsw/even to the data-directive
// handlers and everything below PseudoDB to the instruction encoder. A
// pseudo-op with no handler here (a stray `endm` outside any macro body
// is the only one in practice) is silently ignored, matching the
// original falling through every type-specific branch without matching
// one.
func (ctx *Context) dispatchOpcode(op *encode.Opcode, isByte bool, sc *lex.Scanner) error {
	switch op.Type {
	case encode.PseudoDB:
		return ctx.doData(sc)
	case encode.PseudoDW:
		return ctx.doWords(sc)
	case encode.PseudoDS, encode.PseudoDSW, encode.PseudoAlign:
		return ctx.doFill(sc, op)
	default:
		if op.Type >= encode.PseudoDB {
			return nil
		}
		oldAddr := ctx.Img.OutputAddr
		ev := ctx.newEvaluator(sc)
		insn := encode.Instruction{Op: op, IsByte: isByte, JmpLabelIndirect: ctx.Opts.JmpLabelIndirect}
		return encode.Encode(insn, ev, ctx.Img, oldAddr, ctx.Pass)
	}
}

// listGeneric records the listing row for a data directive or machine
// instruction: the bytes produced between oldAddr and the current output
// cursor, against the original (comment-stripped) line text. The
// original groups db/dw/dsw columns differently from plain instruction
// words; this keeps a single byte-oriented row instead; the information
// content is the same.
func (ctx *Context) listGeneric(oldAddr uint32, src string) {
	if ctx.Pass != 2 || ctx.listing == nil {
		return
	}
	end := ctx.Img.OutputAddr
	if end < oldAddr {
		return
	}
	ctx.listing.line(oldAddr, ctx.Img.Buf[oldAddr:end], src)
}

// doMacroDef captures a `macro NAME params...` body up to `endm`. Body
// lines are read and discarded (to keep the include stack's file cursor
// in sync) on both passes but only stored on pass 1, matching the
// original: a macro body is pure text, re-parsed fresh at every call
// site on every pass. Every body line consumed still advances SrcLine by
// one; after `endm` two more are added to account for the `macro` line
// itself and the `endm` line, neither of which went through the normal
// per-line increment.
func (ctx *Context) doMacroDef(sc *lex.Scanner) error {
	sc.SkipBlank()
	name, afterName := readTokenAndBoundary(sc)
	var params []string
	if afterName != 0 {
		psc := lex.NewScanner(sc.Rest())
		for {
			psc.SkipBlank()
			if psc.Done() {
				break
			}
			start := psc.Pos()
			psc.SkipToken()
			p := psc.Slice(start, psc.Pos())
			if p != "" {
				params = append(params, p)
			}
			if !psc.Match(',') {
				break
			}
		}
	}

	mac := &symtab.Macro{Name: name, Params: params}
	if ctx.Pass == 1 {
		if ctx.Macros.Has(name) {
			return ctx.err(asmerr.MacroAlreadyDefined)
		}
	}

	ctx.listLine(ctx.Img.OutputAddr, nil)

	for {
		raw, err := ctx.nextLine()
		if err != nil {
			// Original falls out of its capture loop the same way on
			// EOF as on finding `endm`: an unterminated macro body is
			// not itself an error here.
			break
		}
		tsc := lex.NewScanner(raw)
		tsc.SkipBlank()
		tok := tsc.ReadToken()
		if strings.EqualFold(tok, "endm") {
			break
		}
		if ctx.Pass == 1 {
			mac.Body = append(mac.Body, raw)
		}
		ctx.SrcLine++
	}
	ctx.SrcLine += 2

	if ctx.Pass == 1 {
		ctx.Macros.Add(mac)
	}
	return nil
}

// expandMacro splits args naively on commas (the original's own
// splitting is just as naive -- no quote or paren awareness), applies
// positional-then-named substitution to every captured body line, and
// re-enters the line processor for each expanded line, recursively.
// MacroDepth tracks nesting so the per-line SrcLine increment inside the
// recursive calls is suppressed; the outermost invocation advances
// SrcLine once, after its body has been assembled, regardless of how many
// lines the body (or any macro it calls) has. An error raised inside the
// body therefore carries the invoking line's number.
func (ctx *Context) expandMacro(mac *symtab.Macro, args string, hasArgs bool) error {
	ctx.MacroDepth++
	defer func() { ctx.MacroDepth-- }()

	var argv []string
	if hasArgs {
		for _, a := range strings.Split(args, ",") {
			argv = append(argv, strings.TrimLeft(a, " \t"))
		}
	}

	for _, bodyLine := range mac.Body {
		expanded := mac.ExpandLine(bodyLine, argv)
		if err := ctx.AssembleLine(expanded); err != nil {
			return err
		}
	}
	if ctx.MacroDepth == 1 {
		ctx.SrcLine++
	}
	return nil
}
