package symtab

import (
	"strings"
)

// Macro is a macro definition: its declared named parameters and the
// raw body lines captured verbatim during pass 1 (comments and all --
// expansion re-feeds these lines through the same line processor that
// handles top-level source, so stripping happens at expansion time, not
// capture time).
type Macro struct {
	Name   string
	Params []string
	Body   []string
}

type MacroTable struct {
	caseSensitive bool
	m             map[string]*Macro
}

func NewMacroTable(caseSensitive bool) *MacroTable {
	return &MacroTable{caseSensitive: caseSensitive, m: make(map[string]*Macro)}
}

func (t *MacroTable) key(name string) string {
	if t.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (t *MacroTable) Get(name string) (*Macro, bool) {
	m, ok := t.m[t.key(name)]
	return m, ok
}

func (t *MacroTable) Has(name string) bool {
	_, ok := t.m[t.key(name)]
	return ok
}

// Add registers m, returning false if a macro with that name already
// exists.
func (t *MacroTable) Add(m *Macro) bool {
	k := t.key(m.Name)
	if _, ok := t.m[k]; ok {
		return false
	}
	t.m[k] = m
	return true
}

// ExpandLine applies the two-stage substitution the original expander
// performs, in order: positional `#1`..`#9` parameters are spliced in
// textually first, then whole-identifier-token named parameters are
// substituted (case-insensitively) into what's left. The order matters:
// a named argument value that happens to contain `#1` must not be
// re-expanded by the positional pass, since positional substitution
// already ran.
func (m *Macro) ExpandLine(line string, args []string) string {
	line = SubstitutePositional(line, args)
	line = SubstituteNamed(line, m.Params, args)
	return line
}

// SubstitutePositional replaces every #k (k in 1..9) occurring in line
// with the text of args[k-1]; references beyond the supplied argument
// count are deleted.
func SubstitutePositional(line string, args []string) string {
	var b strings.Builder
	for i := 0; i < len(line); {
		if line[i] == '#' && i+1 < len(line) && line[i+1] >= '1' && line[i+1] <= '9' {
			k := int(line[i+1]-'0') - 1
			if k < len(args) {
				b.WriteString(args[k])
			}
			i += 2
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String()
}

// isParamIdentChar is the character class the original's named-parameter
// tokenizer uses when scanning a macro body for substitution candidates:
// alnum, `_` or `$`. Unlike the label/opcode scanner (lex.IsIdentStart),
// it does not accept `:` or `.` even as a first character, so a label
// like `name:` tokenizes as `name` followed by `:` and can match a
// parameter.
func isParamIdentChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') || b == '_' || b == '$'
}

// SubstituteNamed scans line token by token and replaces any whole
// identifier that matches one of params (case-insensitively) with the
// corresponding entry of args.
func SubstituteNamed(line string, params, args []string) string {
	var b strings.Builder
	for i := 0; i < len(line); {
		c := line[i]
		if isParamIdentChar(c) {
			start := i
			i++
			for i < len(line) && isParamIdentChar(line[i]) {
				i++
			}
			tok := line[start:i]
			matched := false
			for pi, p := range params {
				if strings.EqualFold(tok, p) {
					if pi < len(args) {
						b.WriteString(args[pi])
					}
					matched = true
					break
				}
			}
			if !matched {
				b.WriteString(tok)
			}
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}
