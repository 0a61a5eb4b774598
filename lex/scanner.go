// Package lex provides the character-cursor scanning primitives and the
// arithmetic expression evaluator shared by the operand parser and the
// directive processor.
package lex

// Scanner is a cursor over a single source line. Unlike a token stream,
// most of the grammar here needs to backtrack (try a register, fail,
// try an expression instead) so a raw byte offset into the line is kept
// instead of pre-tokenizing.
type Scanner struct {
	s   string
	pos int
}

func NewScanner(s string) *Scanner {
	return &Scanner{s: s}
}

func (sc *Scanner) Peek() byte {
	if sc.pos >= len(sc.s) {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *Scanner) PeekAt(off int) byte {
	p := sc.pos + off
	if p < 0 || p >= len(sc.s) {
		return 0
	}
	return sc.s[p]
}

func (sc *Scanner) Advance() byte {
	if sc.pos >= len(sc.s) {
		return 0
	}
	b := sc.s[sc.pos]
	sc.pos++
	return b
}

func (sc *Scanner) Skip(n int) { sc.pos += n }

func (sc *Scanner) Pos() int       { return sc.pos }
func (sc *Scanner) SetPos(p int)   { sc.pos = p }
func (sc *Scanner) Rest() string   { return sc.s[sc.pos:] }
func (sc *Scanner) Done() bool     { return sc.pos >= len(sc.s) }
func (sc *Scanner) Len() int       { return len(sc.s) }
func (sc *Scanner) Source() string { return sc.s }

func (sc *Scanner) Slice(a, b int) string {
	if a < 0 {
		a = 0
	}
	if b > len(sc.s) {
		b = len(sc.s)
	}
	if a > b {
		return ""
	}
	return sc.s[a:b]
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func (sc *Scanner) SkipBlank() {
	for !sc.Done() && isBlank(sc.Peek()) {
		sc.pos++
	}
}

// Match skips leading blanks and, if the next byte is c, consumes it.
func (sc *Scanner) Match(c byte) bool {
	sc.SkipBlank()
	if sc.Peek() == c {
		sc.pos++
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

// IsIdentStart matches the character classes the directive/label scanner
// accepts as the first character of a name.
func IsIdentStart(b byte) bool {
	return isAlpha(b) || b == '_' || b == ':' || b == '.'
}

// IsIdentCont matches subsequent characters of a name.
func IsIdentCont(b byte) bool {
	return isAlnum(b) || b == '_' || b == '$'
}

// isSymChar is the (wider) character class the expression evaluator uses
// when it speculatively scans a symbol reference: it also accepts a
// leading digit, since the same scan is reused to recognize numeric
// literals before falling back to re-parsing them from scratch.
func isSymChar(b byte) bool {
	return isAlnum(b) || b == '_' || b == ':' || b == '.' || b == '$'
}

func (sc *Scanner) SkipToken() {
	if !sc.Done() && IsIdentStart(sc.Peek()) {
		sc.pos++
		for !sc.Done() && IsIdentCont(sc.Peek()) {
			sc.pos++
		}
	}
}

// ReadToken reads a name (label, directive, mnemonic, register) at the
// current position and advances past it. Returns "" without moving the
// cursor if the current character cannot start a name.
func (sc *Scanner) ReadToken() string {
	start := sc.pos
	sc.SkipToken()
	return sc.s[start:sc.pos]
}

// ReadAlnumToken peeks at a run of alphanumeric characters after
// skipping blanks, without moving the cursor. Used for register lookup,
// which must not consume input on a failed match.
func (sc *Scanner) ReadAlnumToken() string {
	save := sc.pos
	defer func() { sc.pos = save }()
	sc.SkipBlank()
	start := sc.pos
	for !sc.Done() && isAlnum(sc.Peek()) {
		sc.pos++
	}
	return sc.s[start:sc.pos]
}

// ConsumeAlnumToken skips blanks and then advances past n bytes of
// alphanumeric token text (the length of a name already matched by
// ReadAlnumToken).
func (sc *Scanner) ConsumeAlnumToken(n int) {
	sc.SkipBlank()
	sc.pos += n
}

// AtEnd reports whether only blanks remain.
func (sc *Scanner) AtEnd() bool {
	save := sc.pos
	sc.SkipBlank()
	done := sc.Done()
	sc.pos = save
	return done
}
