// Package encode parses addressing-mode operands and packs PDP-11
// instructions into their binary encoding.
package encode

import "strings"

// OpType classifies how an opcode's operands are parsed and encoded.
// The boundary between machine instructions and pseudo-ops is
// PseudoDB: anything below it is a real CPU instruction subject to the
// `cpu` directive's gating and to the trailing-token check; anything at
// or above it is a directive handled by the engine package.
type OpType int

const (
	OpNone OpType = iota
	OpSingle
	OpDouble
	OpBranch
	OpJmp
	OpJsr
	OpRts
	OpSob
	OpMark
	OpEis
	OpXor
	OpTrap
	OpEmt
	OpSpl
	OpCcode
	OpFis

	PseudoDB
	PseudoDW
	PseudoDS
	PseudoDSW
	PseudoAlign
	PseudoMacro
	PseudoEqu
	PseudoProc
	PseudoOrg
	PseudoInclude
	PseudoChksum
	PseudoCPU
)

// CPU is a bitmask of the PDP-11 implementations an instruction is
// available on.
type CPU uint32

const (
	CPUDefault CPU = 1 << iota
	CPUDCJ11
	CPUVM1
	CPUVM1G
	CPUVM2
)

const CPUAll = CPUDefault | CPUDCJ11 | CPUVM1 | CPUVM1G | CPUVM2

// ParseCPU maps a `cpu` directive argument to its mask, returning false
// for an unrecognized name.
func ParseCPU(name string) (CPU, bool) {
	switch strings.ToLower(name) {
	case "default":
		return CPUDefault, true
	case "dcj-11", "dcj11":
		return CPUDCJ11, true
	case "vm1":
		return CPUVM1, true
	case "vm1g":
		return CPUVM1G, true
	case "vm2":
		return CPUVM2, true
	}
	return 0, false
}

// Opcode is one entry of the mnemonic table: its encoding family, base
// opcode bits, whether a `b`/`B` suffix selects the byte form (adding
// 0100000 to Base), and which CPU variants implement it.
type Opcode struct {
	Name      string
	Type      OpType
	Base      uint16
	AllowByte bool
	CPUMask   CPU
}

// ByteFlag is the bit a `b` mnemonic suffix sets in the base opcode.
const ByteFlag uint16 = 0100000

var Table = []Opcode{
	// double operand
	{"mov", OpDouble, 0010000, true, CPUAll},
	{"cmp", OpDouble, 0020000, true, CPUAll},
	{"bit", OpDouble, 0030000, true, CPUAll},
	{"bic", OpDouble, 0040000, true, CPUAll},
	{"bis", OpDouble, 0050000, true, CPUAll},
	{"add", OpDouble, 0060000, false, CPUAll},
	{"sub", OpDouble, 0160000, false, CPUAll},

	// single operand
	{"clr", OpSingle, 0005000, true, CPUAll},
	{"com", OpSingle, 0005100, true, CPUAll},
	{"inc", OpSingle, 0005200, true, CPUAll},
	{"dec", OpSingle, 0005300, true, CPUAll},
	{"neg", OpSingle, 0005400, true, CPUAll},
	{"adc", OpSingle, 0005500, true, CPUAll},
	{"sbc", OpSingle, 0005600, true, CPUAll},
	{"tst", OpSingle, 0005700, true, CPUAll},
	{"ror", OpSingle, 0006000, true, CPUAll},
	{"rol", OpSingle, 0006100, true, CPUAll},
	{"asr", OpSingle, 0006200, true, CPUAll},
	{"asl", OpSingle, 0006300, true, CPUAll},
	{"swab", OpSingle, 0000300, false, CPUAll},
	{"sxt", OpSingle, 0006700, false, CPUAll},
	{"csm", OpSingle, 0007000, false, CPUDefault | CPUDCJ11},
	{"tstset", OpSingle, 0007200, false, CPUDefault | CPUDCJ11},
	{"wrtlck", OpSingle, 0007300, false, CPUDefault | CPUDCJ11},

	// branches
	{"br", OpBranch, 0000400, false, CPUAll},
	{"bne", OpBranch, 0001000, false, CPUAll},
	{"beq", OpBranch, 0001400, false, CPUAll},
	{"bpl", OpBranch, 0100000, false, CPUAll},
	{"bmi", OpBranch, 0100400, false, CPUAll},
	{"bvc", OpBranch, 0102000, false, CPUAll},
	{"bvs", OpBranch, 0102400, false, CPUAll},
	{"bcc", OpBranch, 0103000, false, CPUAll},
	{"bcs", OpBranch, 0103400, false, CPUAll},
	{"bge", OpBranch, 0002000, false, CPUAll},
	{"blt", OpBranch, 0002400, false, CPUAll},
	{"bgt", OpBranch, 0003000, false, CPUAll},
	{"ble", OpBranch, 0003400, false, CPUAll},
	{"bhi", OpBranch, 0101000, false, CPUAll},
	{"blos", OpBranch, 0101400, false, CPUAll},

	// program control
	{"jmp", OpJmp, 0000100, false, CPUAll},
	{"jsr", OpJsr, 0004000, false, CPUAll},
	{"rts", OpRts, 0000200, false, CPUAll},
	{"sob", OpSob, 0077000, false, CPUAll},
	{"mark", OpMark, 0006400, false, CPUAll},

	// EIS
	{"mul", OpEis, 0070000, false, CPUDefault | CPUDCJ11 | CPUVM1G | CPUVM2},
	{"div", OpEis, 0071000, false, CPUDefault | CPUDCJ11 | CPUVM1G | CPUVM2},
	{"ash", OpEis, 0072000, false, CPUDefault | CPUDCJ11 | CPUVM1G | CPUVM2},
	{"ashc", OpEis, 0073000, false, CPUDefault | CPUDCJ11 | CPUVM1G | CPUVM2},
	{"xor", OpXor, 0074000, false, CPUDefault | CPUDCJ11 | CPUVM1 | CPUVM1G | CPUVM2},

	// FIS (KE11-F)
	{"fadd", OpFis, 0075000, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"fsub", OpFis, 0075010, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"fmul", OpFis, 0075020, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"fdiv", OpFis, 0075030, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"cfcc", OpNone, 0075004, false, CPUDefault | CPUDCJ11 | CPUVM2},

	// system & trap
	{"halt", OpNone, 0000000, false, CPUAll},
	{"wait", OpNone, 0000001, false, CPUAll},
	{"rti", OpNone, 0000002, false, CPUAll},
	{"bpt", OpNone, 0000003, false, CPUAll},
	{"iot", OpNone, 0000004, false, CPUAll},
	{"reset", OpNone, 0000005, false, CPUAll},
	{"rtt", OpNone, 0000006, false, CPUAll},
	{"mfpt", OpNone, 0000007, false, CPUAll},
	{"trap", OpTrap, 0104400, false, CPUAll},
	{"emt", OpEmt, 0104000, false, CPUAll},

	// VM2 system
	{"go", OpNone, 0000012, false, CPUDefault | CPUVM2},
	{"step", OpNone, 0000016, false, CPUDefault | CPUVM2},
	{"rsel", OpNone, 0000020, false, CPUDefault | CPUVM2},
	{"mfus", OpNone, 0000021, false, CPUDefault | CPUVM2},
	{"rcpc", OpNone, 0000022, false, CPUDefault | CPUVM2},
	{"rcps", OpNone, 0000024, false, CPUDefault | CPUVM2},
	{"mtus", OpNone, 0000031, false, CPUDefault | CPUVM2},
	{"wcpc", OpNone, 0000032, false, CPUDefault | CPUVM2},
	{"wcps", OpNone, 0000034, false, CPUDefault | CPUVM2},

	// memory management
	{"mfpi", OpSingle, 0006500, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"mtpi", OpSingle, 0006600, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"mfpd", OpSingle, 0106500, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"mtpd", OpSingle, 0106600, false, CPUDefault | CPUDCJ11 | CPUVM2},
	{"mtps", OpSingle, 0106400, false, CPUAll},
	{"mfps", OpSingle, 0106700, false, CPUAll},

	// spl
	{"spl", OpSpl, 0000230, false, CPUAll},

	// condition codes
	{"clc", OpCcode, 0000241, false, CPUAll},
	{"clv", OpCcode, 0000242, false, CPUAll},
	{"clz", OpCcode, 0000244, false, CPUAll},
	{"cln", OpCcode, 0000250, false, CPUAll},
	{"sec", OpCcode, 0000261, false, CPUAll},
	{"sev", OpCcode, 0000262, false, CPUAll},
	{"sez", OpCcode, 0000264, false, CPUAll},
	{"sen", OpCcode, 0000270, false, CPUAll},
	{"ccc", OpCcode, 0000257, false, CPUAll},
	{"scc", OpCcode, 0000277, false, CPUAll},
	{"nop", OpCcode, 0000240, false, CPUAll},

	// pseudo ops
	{"db", PseudoDB, 0, false, CPUAll},
	{"dw", PseudoDW, 0, false, CPUAll},
	{"ds", PseudoDS, 0, false, CPUAll},
	{"dsb", PseudoDS, 0, false, CPUAll},
	{"dsw", PseudoDSW, 0, false, CPUAll},
	{"even", PseudoAlign, 0, false, CPUAll},
	{"macro", PseudoMacro, 0, false, CPUAll},
	{"endm", PseudoMacro, 0, false, CPUAll},
	{"equ", PseudoEqu, 0, false, CPUAll},
	{"proc", PseudoProc, 0, false, CPUAll},
	{"endp", PseudoProc, 0, false, CPUAll},
	{"global", PseudoProc, 0, false, CPUAll},
	{"org", PseudoOrg, 0, false, CPUAll},
	{"include", PseudoInclude, 0, false, CPUAll},
	{"chksum", PseudoChksum, 0, false, CPUAll},
	{"cpu", PseudoCPU, 0, false, CPUAll},
}

var byName map[string]*Opcode

func init() {
	byName = make(map[string]*Opcode, len(Table))
	for i := range Table {
		byName[Table[i].Name] = &Table[i]
	}
}

// Find looks up a mnemonic (ignoring one leading `.`), first as written
// and then, if it ends in `b`/`B` and allows a byte form, with the suffix
// stripped. Returns the opcode, whether the byte form was selected, and
// whether anything matched.
func Find(name string) (*Opcode, bool, bool) {
	name = strings.TrimPrefix(name, ".")
	if op, ok := byName[strings.ToLower(name)]; ok {
		return op, false, true
	}
	if len(name) > 1 && (name[len(name)-1] == 'b' || name[len(name)-1] == 'B') {
		base := strings.ToLower(name[:len(name)-1])
		if op, ok := byName[base]; ok && op.AllowByte {
			return op, true, true
		}
	}
	return nil, false, false
}

// Supported reports whether op runs on the given CPU variant. Pseudo-ops
// are exempt from this check by the caller, not here: the boundary is
// `op.Type < PseudoDB`.
func Supported(op *Opcode, cpu CPU) bool {
	return op.CPUMask&cpu != 0
}

// Register is one entry of the register name table; sp and pc alias r6
// and r7.
type Register struct {
	Name string
	N    int
}

var Registers = []Register{
	{"r0", 0},
	{"r1", 1},
	{"r2", 2},
	{"r3", 3},
	{"r4", 4},
	{"r5", 5},
	{"r6", 6},
	{"r7", 7},
	{"sp", 6},
	{"pc", 7},
}

func FindRegister(name string) (int, bool) {
	for _, r := range Registers {
		if strings.EqualFold(r.Name, name) {
			return r.N, true
		}
	}
	return 0, false
}
