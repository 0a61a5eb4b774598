package engine

import (
	"strings"

	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/encode"
	"github.com/pdaxrom/microasm11/lex"
	"github.com/pdaxrom/microasm11/symtab"
)

// getProc returns the proc scope named name, creating it the first time
// it's opened with `proc` and reusing it (same labels/equs/globals) if
// it is reopened later in the file.
func (ctx *Context) getProc(name string) *symtab.Proc {
	key := name
	if !ctx.Opts.CaseSensitiveSymbols {
		key = strings.ToLower(name)
	}
	if p, ok := ctx.Procs[key]; ok {
		return p
	}
	p := symtab.NewProc(name, ctx.Opts.CaseSensitiveSymbols)
	ctx.Procs[key] = p
	return p
}

// doEqu handles `label: equ expr`. The original only records the value
// during pass 2, so forward references to an equ from earlier in pass 1
// always fall back to the symbol-not-yet-resolved path; this quirk is
// kept rather than smoothed over.
func (ctx *Context) doEqu(label string, sc *lex.Scanner) error {
	if label == "" {
		return ctx.err(asmerr.MissedNameForEqu)
	}
	ev := ctx.newEvaluator(sc)
	val, err := ev.Eval()
	if err != nil {
		return err
	}
	if ctx.Pass == 2 {
		if !ctx.Env.DefineEqu(label, val) {
			return ctx.err(asmerr.LabelAlreadyDefined)
		}
		ctx.listLine(ctx.Img.OutputAddr, []uint16{uint16(val)})
	}
	return nil
}

func (ctx *Context) doProc(label string) error {
	if label == "" {
		return ctx.err(asmerr.MissedNameForProc)
	}
	if ctx.Env.Proc != nil {
		return ctx.err(asmerr.NestedProcUnsupported)
	}
	ctx.Env.Proc = ctx.getProc(label)
	ctx.listLine(ctx.Img.OutputAddr, nil)
	return nil
}

func (ctx *Context) doEndp() error {
	ctx.Env.Proc = nil
	ctx.listLine(ctx.Img.OutputAddr, nil)
	return nil
}

func (ctx *Context) doGlobal(sc *lex.Scanner) error {
	if ctx.Env.Proc == nil {
		return ctx.err(asmerr.OnlyInsideProc)
	}
	if ctx.Pass != 1 {
		return nil
	}
	for {
		sc.SkipBlank()
		name := sc.ReadToken()
		if name == "" {
			break
		}
		ctx.Env.Proc.DeclareGlobal(name, ctx.Opts.CaseSensitiveSymbols)
		if !sc.Match(',') {
			break
		}
	}
	return nil
}

func (ctx *Context) doOrg(sc *lex.Scanner) error {
	ev := ctx.newEvaluator(sc)
	addr, err := ev.Eval()
	if err != nil {
		return err
	}
	ctx.Img.Org(uint32(addr) & 0xFFFF)
	ctx.Env.SetLocationCounter(int32(ctx.Img.OutputAddr))
	ctx.listLine(ctx.Img.OutputAddr, nil)
	return nil
}

func (ctx *Context) doCPU(sc *lex.Scanner, label string) error {
	if label != "" {
		return ctx.err(asmerr.SyntaxError)
	}
	sc.SkipBlank()
	if sc.AtEnd() {
		return ctx.err(asmerr.SyntaxError)
	}
	var name string
	if sc.Peek() == '"' || sc.Peek() == '\'' {
		q := sc.Advance()
		start := sc.Pos()
		for !sc.Done() && sc.Peek() != q {
			sc.Advance()
		}
		if sc.Done() {
			return ctx.err(asmerr.ExpectedCloseQuote)
		}
		name = sc.Slice(start, sc.Pos())
		sc.Advance()
	} else {
		start := sc.Pos()
		for !sc.Done() && sc.Peek() != ' ' && sc.Peek() != '\t' && sc.Peek() != ',' {
			sc.Advance()
		}
		name = sc.Slice(start, sc.Pos())
	}
	cpu, ok := encode.ParseCPU(name)
	if !ok {
		return ctx.err(asmerr.SyntaxError)
	}
	ctx.CPU = cpu
	ctx.listLine(ctx.Img.OutputAddr, nil)
	return nil
}

func (ctx *Context) doChksum() error {
	ctx.UseChksum = true
	ctx.ChksumAddr = ctx.Img.OutputAddr
	if err := ctx.Img.EmitWord(0); err != nil {
		return ctx.err(asmerr.OutputBufferOverflow)
	}
	ctx.listLine(ctx.ChksumAddr, []uint16{0})
	return nil
}

func (ctx *Context) doInclude(sc *lex.Scanner, label string, dir string) error {
	if label != "" {
		return ctx.err(asmerr.SyntaxError)
	}
	sc.SkipBlank()
	path := strings.TrimSpace(sc.Rest())
	if len(path) >= 2 && (path[0] == '"' || path[0] == '\'') && path[len(path)-1] == path[0] {
		path = path[1 : len(path)-1]
	}
	full := path
	if dir != "" && !strings.HasPrefix(path, "/") {
		full = dir + "/" + path
	}
	return ctx.pushFile(full)
}

// doData handles `db`: emits a comma-separated list of byte
// expressions and quoted literals. Inside single quotes every character
// is emitted followed by a NUL byte. Inside double quotes the usual
// backslash escapes are honored.
func (ctx *Context) doData(sc *lex.Scanner) error {
	ev := ctx.newEvaluator(sc)
	sc.SkipBlank()
	var delim byte
	for !sc.Done() {
		if delim != 0 {
			c := sc.Peek()
			if c == 0 {
				break
			}
			if c != delim {
				switch {
				case delim == '\'':
					if err := ctx.Img.EmitByte(c); err != nil {
						return ctx.err(asmerr.OutputBufferOverflow)
					}
					if err := ctx.Img.EmitByte(0); err != nil {
						return ctx.err(asmerr.OutputBufferOverflow)
					}
					sc.Advance()
				case c == '\\':
					sc.Advance()
					e := sc.Peek()
					var b byte
					switch e {
					case 'n':
						b = '\n'
					case 'r':
						b = '\r'
					case 't':
						b = '\t'
					case '0':
						b = 0
					case '\\':
						b = '\\'
					case '"':
						b = '"'
					case '\'':
						b = '\''
					default:
						b = e
					}
					if e != 0 {
						if err := ctx.Img.EmitByte(b); err != nil {
							return ctx.err(asmerr.OutputBufferOverflow)
						}
						sc.Advance()
					}
				default:
					if err := ctx.Img.EmitByte(c); err != nil {
						return ctx.err(asmerr.OutputBufferOverflow)
					}
					sc.Advance()
				}
				continue
			}
			delim = 0
			sc.Advance()
		} else if sc.Peek() == '"' || sc.Peek() == '\'' {
			delim = sc.Advance()
			continue
		} else {
			v, err := ev.Eval()
			if err != nil {
				return err
			}
			if err := ctx.Img.EmitByte(byte(v & 0xFF)); err != nil {
				return ctx.err(asmerr.OutputBufferOverflow)
			}
		}
		if !sc.Match(',') {
			break
		}
		sc.SkipBlank()
	}
	if delim != 0 {
		return ctx.err(asmerr.ExpectedCloseQuote)
	}
	return nil
}

// doWords handles `dw`: a comma-separated list of word expressions.
// Bit-exact quirk preserved from the original: once pass 2 sees an
// expression whose raw text contains both a `-` and a symbol-like
// character, PadTailWords latches for the rest of assembly, causing two
// extra zero words to be appended at the very end of output. The
// motivation for this isn't stated in the source; it is reproduced
// as-is rather than guessed at.
func (ctx *Context) doWords(sc *lex.Scanner) error {
	ev := ctx.newEvaluator(sc)
	for !sc.Done() {
		start := sc.Pos()
		v, err := ev.Eval()
		if err != nil {
			return err
		}
		if ctx.Pass == 2 && !ctx.PadTailWords {
			text := sc.Slice(start, sc.Pos())
			if strings.ContainsRune(text, '-') && hasSymChar(text) {
				ctx.PadTailWords = true
			}
		}
		if err := ctx.Img.EmitWord(uint16(v) & 0xFFFF); err != nil {
			return ctx.err(asmerr.OutputBufferOverflow)
		}
		if !sc.Match(',') {
			break
		}
		sc.SkipBlank()
	}
	return nil
}

func hasSymChar(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			c == '_' || c == '.' || c == '$' || c == ':' {
			return true
		}
	}
	return false
}

// doFill handles `ds`/`dsb` (byte fill), `dsw` (word fill) and `even`
// (align to a power-of-two boundary, expressed the same way as a count
// directive with count==1 meaning "align to 2").
func (ctx *Context) doFill(sc *lex.Scanner, op *encode.Opcode) error {
	ev := ctx.newEvaluator(sc)
	var count int32
	if op.Type == encode.PseudoAlign && op.Name == "even" {
		sc.SkipBlank()
		if !sc.AtEnd() {
			return ctx.err(asmerr.ExtraSymbols)
		}
		count = 1
	} else {
		v, err := ev.Eval()
		if err != nil {
			return err
		}
		count = v
	}

	var fill int32
	if sc.Match(',') {
		v, err := ev.Eval()
		if err != nil {
			return err
		}
		if op.Type == encode.PseudoDSW {
			fill = v & 0xFFFF
		} else {
			fill = v & 0xFF
		}
	}

	if op.Type == encode.PseudoAlign {
		n := int32(1) << uint(count)
		if n > 1 {
			n--
		}
		addr := int32(ctx.Img.OutputAddr)
		count = ((addr + n) &^ n) - addr
	}

	if op.Type == encode.PseudoDSW {
		for ; count > 0; count-- {
			if err := ctx.Img.EmitFillWord(uint16(fill)); err != nil {
				return ctx.err(asmerr.OutputBufferOverflow)
			}
		}
	} else {
		for ; count > 0; count-- {
			if err := ctx.Img.EmitFillByte(byte(fill)); err != nil {
				return ctx.err(asmerr.OutputBufferOverflow)
			}
		}
	}
	return nil
}
