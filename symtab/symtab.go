// Package symtab holds the symbol environment: global and proc-local
// labels and equs, the macro table, and the conditional-assembly stack.
package symtab

import "strings"

// Table is a flat, case-foldable name -> value map used for both labels
// and equs, at global scope and inside a proc.
type Table struct {
	caseSensitive bool
	m             map[string]int32
}

func NewTable(caseSensitive bool) *Table {
	return &Table{caseSensitive: caseSensitive, m: make(map[string]int32)}
}

func (t *Table) key(name string) string {
	if t.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (t *Table) Get(name string) (int32, bool) {
	v, ok := t.m[t.key(name)]
	return v, ok
}

func (t *Table) Has(name string) bool {
	_, ok := t.m[t.key(name)]
	return ok
}

func (t *Table) Set(name string, v int32) {
	t.m[t.key(name)] = v
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.m))
	for k := range t.m {
		names = append(names, k)
	}
	return names
}

func (t *Table) Values() map[string]int32 {
	return t.m
}

// Proc is an active procedure scope: its own labels and equs, plus the
// names declared with `global`, which are defined in the global tables
// rather than the proc's own even when defined inside the proc.
type Proc struct {
	Name    string
	Labels  *Table
	Equs    *Table
	Globals map[string]bool
}

func NewProc(name string, caseSensitive bool) *Proc {
	return &Proc{
		Name:    name,
		Labels:  NewTable(caseSensitive),
		Equs:    NewTable(caseSensitive),
		Globals: make(map[string]bool),
	}
}

func (p *Proc) foldGlobal(name string, caseSensitive bool) string {
	if caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (p *Proc) DeclareGlobal(name string, caseSensitive bool) {
	p.Globals[p.foldGlobal(name, caseSensitive)] = true
}

func (p *Proc) IsGlobal(name string, caseSensitive bool) bool {
	return p.Globals[p.foldGlobal(name, caseSensitive)]
}

// Env bundles the global tables with the (possibly nil) active proc and
// implements lex.Resolver's lookup order: proc-local labels, proc-local
// equs, global labels, global equs.
type Env struct {
	CaseSensitive bool
	Labels        *Table
	Equs          *Table
	Proc          *Proc
	addr          int32
	pass          int
	needSecond    bool
}

func NewEnv(caseSensitive bool) *Env {
	return &Env{
		CaseSensitive: caseSensitive,
		Labels:        NewTable(caseSensitive),
		Equs:          NewTable(caseSensitive),
	}
}

func (e *Env) SetLocationCounter(addr int32) { e.addr = addr }
func (e *Env) LocationCounter() int32        { return e.addr }
func (e *Env) SetPass(p int)                 { e.pass = p; e.needSecond = false }
func (e *Env) Pass() int                     { return e.pass }
func (e *Env) NeedsSecondPass()              { e.needSecond = true }
func (e *Env) HadUnresolved() bool           { return e.needSecond }

func (e *Env) Lookup(name string) (int32, bool) {
	if e.Proc != nil {
		if v, ok := e.Proc.Labels.Get(name); ok {
			return v, true
		}
		if v, ok := e.Proc.Equs.Get(name); ok {
			return v, true
		}
	}
	if v, ok := e.Labels.Get(name); ok {
		return v, true
	}
	if v, ok := e.Equs.Get(name); ok {
		return v, true
	}
	return 0, false
}

// DefineLabel records a label at the current location counter, routing
// to the proc-local table unless the proc has declared it global.
func (e *Env) DefineLabel(name string) bool {
	if e.Proc != nil && !e.Proc.IsGlobal(name, e.CaseSensitive) {
		if e.Proc.Labels.Has(name) {
			return false
		}
		e.Proc.Labels.Set(name, e.addr)
		return true
	}
	if e.Labels.Has(name) {
		return false
	}
	e.Labels.Set(name, e.addr)
	return true
}

// DefineEqu records name = value, following the same proc-local routing
// as labels.
func (e *Env) DefineEqu(name string, value int32) bool {
	if e.Proc != nil && !e.Proc.IsGlobal(name, e.CaseSensitive) {
		if e.Proc.Equs.Has(name) {
			return false
		}
		e.Proc.Equs.Set(name, value)
		return true
	}
	if e.Equs.Has(name) {
		return false
	}
	e.Equs.Set(name, value)
	return true
}
