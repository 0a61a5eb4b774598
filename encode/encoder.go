package encode

import (
	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/image"
	"github.com/pdaxrom/microasm11/lex"
)

// Instruction bundles everything EncodeInstruction needs beyond the
// opcode table entry itself.
type Instruction struct {
	Op              *Opcode
	IsByte          bool
	JmpLabelIndirect bool
}

func emitExtension(img *image.Image, hasExt bool, pcRelative bool, ext int32) error {
	if !hasExt {
		return nil
	}
	extAddr := img.OutputAddr
	val := ext
	if pcRelative {
		val = ext - int32(extAddr+2)
	}
	return img.EmitWord(uint16(val) & 0xFFFF)
}

// Encode parses operands from sc (via ev) and emits the instruction's
// words into img. oldAddr is the address of the instruction word itself
// (before anything in this instruction was emitted), needed for branch
// and sob offset calculations.
func Encode(insn Instruction, ev *lex.Evaluator, img *image.Image, oldAddr uint32, pass int) error {
	op := insn.Op
	sc := ev.Scanner()
	line := ev.Line()

	switch op.Type {
	case OpBranch:
		sc.SkipBlank()
		val, err := ev.Eval()
		if err != nil {
			return err
		}
		offset := (val - int32(oldAddr+2)) / 2
		if pass == 2 && (offset < -128 || offset > 127) {
			return asmerr.New(asmerr.LongRelatedOffset, line)
		}
		return img.EmitWord(op.Base | uint16(offset)&0xFF)

	case OpJmp:
		dst, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		if dst.Mode == 0 {
			return asmerr.New(asmerr.SyntaxError, line)
		}
		if insn.JmpLabelIndirect && dst.PCRelative && dst.Reg == 7 && dst.Mode == 6 {
			dst.Mode = 7
		}
		if err := img.EmitWord(op.Base | uint16(dst.Spec())); err != nil {
			return err
		}
		return emitExtension(img, dst.HasExt, dst.PCRelative, dst.Ext)

	case OpJsr:
		sc.SkipBlank()
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedOpcodeArg1, line)
		}
		if !sc.Match(',') {
			return asmerr.New(asmerr.ExpectedArg2, line)
		}
		dst, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		if err := img.EmitWord(op.Base | uint16(reg&7)<<6 | uint16(dst.Spec())); err != nil {
			return err
		}
		return emitExtension(img, dst.HasExt, dst.PCRelative, dst.Ext)

	case OpRts:
		sc.SkipBlank()
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedOpcodeArg1, line)
		}
		return img.EmitWord(op.Base | uint16(reg&7))

	case OpSob:
		sc.SkipBlank()
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedOpcodeArg1, line)
		}
		if !sc.Match(',') {
			return asmerr.New(asmerr.ExpectedArg2, line)
		}
		val, err := ev.Eval()
		if err != nil {
			return err
		}
		offset := (int32(oldAddr+2) - val) / 2
		if pass == 2 && (offset < 0 || offset > 63) {
			return asmerr.New(asmerr.LongRelatedOffset, line)
		}
		return img.EmitWord(op.Base | uint16(reg&7)<<6 | uint16(offset)&0x3F)

	case OpMark:
		sc.SkipBlank()
		val, err := ev.Eval()
		if err != nil {
			return err
		}
		if val < 0 || val > 63 {
			return asmerr.New(asmerr.SyntaxError, line)
		}
		return img.EmitWord(op.Base | uint16(val)&0x3F)

	case OpEis:
		sc.SkipBlank()
		src, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		if !sc.Match(',') {
			return asmerr.New(asmerr.ExpectedArg2, line)
		}
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedRegisterArg2, line)
		}
		if err := img.EmitWord(op.Base | uint16(reg&7)<<6 | uint16(src.Spec())); err != nil {
			return err
		}
		return emitExtension(img, src.HasExt, src.PCRelative, src.Ext)

	case OpXor:
		sc.SkipBlank()
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedOpcodeArg1, line)
		}
		if !sc.Match(',') {
			return asmerr.New(asmerr.ExpectedArg2, line)
		}
		dst, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		if err := img.EmitWord(op.Base | uint16(reg&7)<<6 | uint16(dst.Spec())); err != nil {
			return err
		}
		return emitExtension(img, dst.HasExt, dst.PCRelative, dst.Ext)

	case OpFis:
		sc.SkipBlank()
		reg, ok := parseRegister(sc)
		if !ok {
			return asmerr.New(asmerr.MissedOpcodeArg1, line)
		}
		return img.EmitWord(op.Base | uint16(reg&7))

	case OpTrap, OpEmt:
		sc.SkipBlank()
		val, err := ev.Eval()
		if err != nil {
			return err
		}
		return img.EmitWord(op.Base | uint16(val)&0xFF)

	case OpSpl:
		sc.SkipBlank()
		val, err := ev.Eval()
		if err != nil {
			return err
		}
		return img.EmitWord(op.Base | uint16(val)&0x07)

	case OpSingle:
		dst, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		word := op.Base | uint16(dst.Spec())
		if insn.IsByte {
			word |= ByteFlag
		}
		if err := img.EmitWord(word); err != nil {
			return err
		}
		return emitExtension(img, dst.HasExt, dst.PCRelative, dst.Ext)

	case OpDouble:
		src, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		if !sc.Match(',') {
			return asmerr.New(asmerr.ExpectedArg2, line)
		}
		dst, err := ParseOperand(ev)
		if err != nil {
			return err
		}
		word := op.Base | uint16(src.Spec())<<6 | uint16(dst.Spec())
		if insn.IsByte {
			word |= ByteFlag
		}
		if err := img.EmitWord(word); err != nil {
			return err
		}
		if err := emitExtension(img, src.HasExt, src.PCRelative, src.Ext); err != nil {
			return err
		}
		return emitExtension(img, dst.HasExt, dst.PCRelative, dst.Ext)

	case OpNone, OpCcode:
		sc.SkipBlank()
		if !sc.AtEnd() {
			return asmerr.New(asmerr.ExtraSymbols, line)
		}
		return img.EmitWord(op.Base)

	default:
		return asmerr.New(asmerr.SyntaxError, line)
	}
}
