package image

import "testing"

func TestEmitWordLittleEndian(t *testing.T) {
	im := New()
	if err := im.EmitWord(0x1234); err != nil {
		t.Fatalf("EmitWord failed: %v", err)
	}
	if im.Buf[0] != 0x34 || im.Buf[1] != 0x12 {
		t.Errorf("EmitWord wrote %02x %02x, want 34 12", im.Buf[0], im.Buf[1])
	}
}

func TestResetKeepsStartAddr(t *testing.T) {
	im := New()
	im.Org(0x1000)
	_ = im.EmitByte(1)
	im.Reset()
	if im.OutputAddr != 0x1000 {
		t.Errorf("Reset() left OutputAddr=%#x, want StartAddr %#x", im.OutputAddr, im.StartAddr)
	}
}

func TestTailZeroTrimming(t *testing.T) {
	im := New()
	_ = im.EmitByte(0xAA)
	_ = im.EmitFillByte(0)
	_ = im.EmitFillByte(0)
	if got, want := im.End(), uint32(1); got != want {
		t.Errorf("End() = %d, want %d (trailing fill zeros trimmed)", got, want)
	}
}

func TestTailZeroNotTrimmedAfterNonFillByte(t *testing.T) {
	im := New()
	_ = im.EmitFillByte(0)
	_ = im.EmitByte(0)
	if got, want := im.End(), uint32(2); got != want {
		t.Errorf("End() = %d, want %d (an explicit zero byte is not a fill run)", got, want)
	}
}

func TestChecksumComplement(t *testing.T) {
	im := New()
	_ = im.EmitWord(0)
	_ = im.EmitWord(0)
	if got, want := im.Checksum(), uint16(0xFFFF); got != want {
		t.Errorf("Checksum() of all zero words = %#04x, want %#04x", got, want)
	}
}

func TestPatchWordDoesNotDisturbTailZeroTracking(t *testing.T) {
	im := New()
	_ = im.EmitWord(0)
	start := im.TailZeroStart()
	im.PatchWord(0, 0x1234)
	if im.TailZeroStart() != start {
		t.Error("PatchWord should not affect tail-zero tracking")
	}
	if im.Buf[0] != 0x34 || im.Buf[1] != 0x12 {
		t.Errorf("PatchWord wrote %02x %02x, want 34 12", im.Buf[0], im.Buf[1])
	}
}
