package lex

import (
	"strconv"

	"github.com/pdaxrom/microasm11/asmerr"
)

// Resolver supplies everything the expression evaluator needs from the
// surrounding assembly context: symbol values, the current location
// counter, and the forward-reference bookkeeping that distinguishes an
// undefined symbol in pass 1 (tentative, resolved later) from one in
// pass 2 (fatal).
type Resolver interface {
	// Lookup resolves name following the scope order: proc-local
	// labels, proc-local equs, global labels, global equs.
	Lookup(name string) (int32, bool)
	// LocationCounter is the value of `*`.
	LocationCounter() int32
	// Pass returns 1 or 2.
	Pass() int
	// NeedsSecondPass records that a symbol could not be resolved
	// during pass 1; assembly continues using a placeholder value.
	NeedsSecondPass()
}

// Evaluator implements the 8-level recursive-descent arithmetic grammar:
// top (leading `/` means >>8) -> or -> xor -> and -> add/sub ->
// mul/div/mod -> unary (~ and unary -) -> primary (parens or operand).
type Evaluator struct {
	sc   *Scanner
	res  Resolver
	line int
}

func NewEvaluator(sc *Scanner, res Resolver, line int) *Evaluator {
	return &Evaluator{sc: sc, res: res, line: line}
}

func (e *Evaluator) Scanner() *Scanner { return e.sc }
func (e *Evaluator) Pass() int         { return e.res.Pass() }
func (e *Evaluator) Line() int         { return e.line }

func (e *Evaluator) err(kind asmerr.Kind) error {
	return asmerr.New(kind, e.line)
}

// Eval parses and evaluates one expression starting at the scanner's
// current position, advancing past the consumed text.
func (e *Evaluator) Eval() (int32, error) {
	return e.top()
}

func (e *Evaluator) top() (int32, error) {
	shift := e.sc.Match('/')
	v, err := e.bitOr()
	if err != nil {
		return 0, err
	}
	if shift {
		v >>= 8
	}
	return v, nil
}

func (e *Evaluator) bitOr() (int32, error) {
	v, err := e.bitXor()
	if err != nil {
		return 0, err
	}
	for {
		if e.sc.Match('|') {
			r, err := e.bitXor()
			if err != nil {
				return 0, err
			}
			v |= r
			continue
		}
		return v, nil
	}
}

func (e *Evaluator) bitXor() (int32, error) {
	v, err := e.bitAnd()
	if err != nil {
		return 0, err
	}
	for {
		if e.sc.Match('^') {
			r, err := e.bitAnd()
			if err != nil {
				return 0, err
			}
			v ^= r
			continue
		}
		return v, nil
	}
}

func (e *Evaluator) bitAnd() (int32, error) {
	v, err := e.addSub()
	if err != nil {
		return 0, err
	}
	for {
		if e.sc.Match('&') {
			r, err := e.addSub()
			if err != nil {
				return 0, err
			}
			v &= r
			continue
		}
		return v, nil
	}
}

func (e *Evaluator) addSub() (int32, error) {
	v, err := e.mulDiv()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case e.sc.Match('+'):
			r, err := e.mulDiv()
			if err != nil {
				return 0, err
			}
			v += r
		case e.sc.Match('-'):
			r, err := e.mulDiv()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (e *Evaluator) mulDiv() (int32, error) {
	v, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case e.sc.Match('*'):
			r, err := e.unary()
			if err != nil {
				return 0, err
			}
			v *= r
		case e.sc.Match('/'):
			r, err := e.unary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, e.err(asmerr.SyntaxError)
			}
			v /= r
		case e.sc.Match('%'):
			r, err := e.unary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, e.err(asmerr.SyntaxError)
			}
			v %= r
		default:
			return v, nil
		}
	}
}

func (e *Evaluator) unary() (int32, error) {
	if e.sc.Match('~') {
		v, err := e.unary()
		if err != nil {
			return 0, err
		}
		return 0xFFFF ^ v, nil
	}
	if e.sc.Match('-') {
		v, err := e.unary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return e.primary()
}

func (e *Evaluator) primary() (int32, error) {
	if e.sc.Match('(') {
		v, err := e.bitOr()
		if err != nil {
			return 0, err
		}
		if !e.sc.Match(')') {
			return 0, e.err(asmerr.MissedBracket)
		}
		return v, nil
	}
	return e.operand()
}

// operand implements the primary-term dispatch: a speculative symbol
// scan first (covering labels, equs, and the "looks numeric" case),
// then prefix operators ($ hex, @ octal, % binary, ' char, * location
// counter), then plain numeric literals, and finally an unresolved
// reference.
func (e *Evaluator) operand() (int32, error) {
	start := e.sc.Pos()
	for !e.sc.Done() && isSymChar(e.sc.Peek()) {
		e.sc.Advance()
	}
	tok := e.sc.Slice(start, e.sc.Pos())

	if tok != "" {
		if v, ok := e.res.Lookup(tok); ok {
			return v, nil
		}
	}

	// No label/equ matched (or nothing symbol-like was there at all);
	// rewind and try the prefix operators and numeric literal forms
	// from the original position.
	e.sc.SetPos(start)

	switch {
	case e.sc.Match('$'):
		return e.hexDigits(asmerr.InvalidHexNumber)
	case e.sc.Match('@'):
		return e.octalDigits(asmerr.InvalidOctalNumber)
	case e.sc.Match('%'):
		return e.binaryDigits(asmerr.InvalidBinaryNumber)
	case e.sc.Match('\''):
		return e.charLiteral()
	case e.sc.Match('*'):
		return e.res.LocationCounter(), nil
	}

	if isDigit(e.sc.Peek()) {
		return e.number()
	}

	// Unresolved symbolic reference: consume what looked like a name
	// (possibly nothing) and flag it.
	e.sc.SetPos(start + len(tok))
	if e.res.Pass() == 2 {
		return 0, e.err(asmerr.CannotResolveRef)
	}
	e.res.NeedsSecondPass()
	return 0, nil
}

func (e *Evaluator) number() (int32, error) {
	if e.sc.Peek() == '0' {
		switch e.sc.PeekAt(1) {
		case 'x', 'X':
			e.sc.Skip(2)
			return e.hexDigits(asmerr.InvalidHexNumber)
		case 'b', 'B':
			e.sc.Skip(2)
			return e.binaryDigits(asmerr.InvalidBinaryNumber)
		case 'd', 'D':
			e.sc.Skip(2)
			return e.decimalWithDot()
		}
	}
	save := e.sc.Pos()
	for isDigit(e.sc.Peek()) {
		e.sc.Advance()
	}
	hasDot := e.sc.Peek() == '.'
	e.sc.SetPos(save)
	if hasDot {
		return e.decimalWithDot()
	}
	return e.octalDigits(asmerr.InvalidNumber)
}

func (e *Evaluator) hexDigits(kind asmerr.Kind) (int32, error) {
	start := e.sc.Pos()
	for isHex(e.sc.Peek()) {
		e.sc.Advance()
	}
	text := e.sc.Slice(start, e.sc.Pos())
	if text == "" {
		return 0, e.err(kind)
	}
	v, err := strconv.ParseInt(text, 16, 64)
	if err != nil {
		return 0, e.err(kind)
	}
	return int32(v), nil
}

func (e *Evaluator) octalDigits(kind asmerr.Kind) (int32, error) {
	start := e.sc.Pos()
	for e.sc.Peek() >= '0' && e.sc.Peek() <= '7' {
		e.sc.Advance()
	}
	text := e.sc.Slice(start, e.sc.Pos())
	if text == "" {
		return 0, e.err(kind)
	}
	v, err := strconv.ParseInt(text, 8, 64)
	if err != nil {
		return 0, e.err(kind)
	}
	return int32(v), nil
}

func (e *Evaluator) binaryDigits(kind asmerr.Kind) (int32, error) {
	start := e.sc.Pos()
	for e.sc.Peek() == '0' || e.sc.Peek() == '1' {
		e.sc.Advance()
	}
	text := e.sc.Slice(start, e.sc.Pos())
	if text == "" {
		return 0, e.err(kind)
	}
	v, err := strconv.ParseInt(text, 2, 64)
	if err != nil {
		return 0, e.err(kind)
	}
	return int32(v), nil
}

// decimalWithDot parses a decimal literal which may carry an optional
// trailing `.` (a convention borrowed from PDP-11 assembler syntax where
// decimal constants are marked with a trailing dot; the 0d/0D prefix
// form makes the dot optional).
func (e *Evaluator) decimalWithDot() (int32, error) {
	start := e.sc.Pos()
	for isDigit(e.sc.Peek()) {
		e.sc.Advance()
	}
	text := e.sc.Slice(start, e.sc.Pos())
	if text == "" {
		return 0, e.err(asmerr.InvalidDecimalNumber)
	}
	e.sc.Match('.')
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, e.err(asmerr.InvalidDecimalNumber)
	}
	return int32(v), nil
}

func (e *Evaluator) charLiteral() (int32, error) {
	c := e.sc.Advance()
	if c == 0 {
		return 0, e.err(asmerr.ExpectedCloseQuote)
	}
	e.sc.Match('\'')
	return int32(c), nil
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
