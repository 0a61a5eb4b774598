package encode

import (
	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/lex"
)

// Operand is a decoded PDP-11 addressing-mode specifier: a 3-bit mode,
// a 3-bit register, and (for modes 2/3/6/7 with reg==7, or any indexed
// mode) an extension word that follows the instruction word.
type Operand struct {
	Mode       int
	Reg        int
	HasExt     bool
	Ext        int32
	PCRelative bool
}

// Spec packs mode and register into the 6-bit field instructions embed
// for a source or destination operand.
func (o Operand) Spec() int {
	return ((o.Mode & 7) << 3) | (o.Reg & 7)
}

func parseRegister(sc *lex.Scanner) (int, bool) {
	tok := sc.ReadAlnumToken()
	if tok == "" {
		return 0, false
	}
	n, ok := FindRegister(tok)
	if !ok {
		return 0, false
	}
	sc.ConsumeAlnumToken(len(tok))
	return n, true
}

func hasSymbolChar(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			c == '_' || c == '.' || c == ':' || c == '$' {
			return true
		}
	}
	return false
}

// ParseOperand decodes one addressing-mode expression, trying each
// syntax in the original's exact priority order: `#imm`, `-(Rn)`,
// `(Rn)`/`(Rn)+`, a deferred bare register (`@Rn`), a bare register,
// and finally a general expression optionally followed by `(Rn)` for
// indexed mode. A bare expression with no trailing `(Rn)` is always
// mode 6/7 register 7 (PC-relative), matching the original even when
// the expression is a plain numeric constant with no symbol in it.
func ParseOperand(ev *lex.Evaluator) (Operand, error) {
	sc := ev.Scanner()
	var op Operand
	sc.SkipBlank()

	deferred := sc.Match('@')

	if sc.Match('#') {
		if deferred {
			op.Mode = 3
		} else {
			op.Mode = 2
		}
		op.Reg = 7
		op.HasExt = true
		v, err := ev.Eval()
		if err != nil {
			return op, err
		}
		op.Ext = v
		return op, nil
	}

	if sc.Match('-') {
		if !sc.Match('(') {
			return op, asmerr.New(asmerr.SyntaxError, ev.Line())
		}
		reg, ok := parseRegister(sc)
		if !ok {
			return op, asmerr.New(asmerr.MissedRegisterArg2, ev.Line())
		}
		if !sc.Match(')') {
			return op, asmerr.New(asmerr.MissedBracket, ev.Line())
		}
		if deferred {
			op.Mode = 5
		} else {
			op.Mode = 4
		}
		op.Reg = reg
		return op, nil
	}

	if sc.Match('(') {
		reg, ok := parseRegister(sc)
		if !ok {
			return op, asmerr.New(asmerr.MissedRegisterArg2, ev.Line())
		}
		if !sc.Match(')') {
			return op, asmerr.New(asmerr.MissedBracket, ev.Line())
		}
		if sc.Match('+') {
			if deferred {
				op.Mode = 3
			} else {
				op.Mode = 2
			}
		} else {
			op.Mode = 1
		}
		op.Reg = reg
		return op, nil
	}

	if deferred {
		save := sc.Pos()
		if reg, ok := parseRegister(sc); ok {
			op.Mode = 1
			op.Reg = reg
			return op, nil
		}
		sc.SetPos(save)
	}

	{
		save := sc.Pos()
		if reg, ok := parseRegister(sc); ok {
			op.Mode = 0
			op.Reg = reg
			return op, nil
		}
		sc.SetPos(save)
	}

	start := sc.Pos()
	val, err := ev.Eval()
	if err != nil {
		return op, err
	}
	hasSymbol := hasSymbolChar(sc.Slice(start, sc.Pos()))
	sc.SkipBlank()

	if sc.Match('(') {
		reg, ok := parseRegister(sc)
		if !ok {
			return op, asmerr.New(asmerr.MissedRegisterArg2, ev.Line())
		}
		if !sc.Match(')') {
			return op, asmerr.New(asmerr.MissedBracket, ev.Line())
		}
		if deferred {
			op.Mode = 7
		} else {
			op.Mode = 6
		}
		op.Reg = reg
		op.HasExt = true
		op.Ext = val
		op.PCRelative = op.Reg == 7 && hasSymbol
		return op, nil
	}

	if deferred {
		op.Mode = 7
	} else {
		op.Mode = 6
	}
	op.Reg = 7
	op.HasExt = true
	op.Ext = val
	op.PCRelative = true
	return op, nil
}
