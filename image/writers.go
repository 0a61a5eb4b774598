package image

import (
	"fmt"
	"io"
)

// WriteHex writes the classic `ADDR: b0 b1 ... b15` listing-style hex
// dump, 16 bytes per row.
func WriteHex(w io.Writer, im *Image) error {
	end := im.End()
	i := im.StartAddr
	for ; i < end; i++ {
		if i%16 == 0 || i == im.StartAddr {
			if _, err := fmt.Fprintf(w, "%04X:", i); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, " %02X", im.Buf[i]); err != nil {
			return err
		}
		if i%16 == 15 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	if i%16 != 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteVerilog emits a synthesizable single-port SRAM module with the
// image preloaded via `initial` assignments, for dropping straight into
// a simulation or FPGA build.
func WriteVerilog(w io.Writer, im *Image) error {
	const header = "module sram(\n" +
		"    input  [7:0] ADDR,\n" +
		"    input  [7:0] DI,\n" +
		"    output [7:0] DO,\n" +
		"    input        RW,\n" +
		"    input        CS\n" +
		");\n" +
		"    parameter  AddressSize = 8;\n" +
		"    reg        [7:0]    Mem[(1 << AddressSize) - 1:0];\n" +
		"\n" +
		"    initial begin\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	end := im.End()
	for i := im.StartAddr; i < end; i++ {
		if _, err := fmt.Fprintf(w, "        Mem[%d] = 8'h%02x;\n", i, im.Buf[i]); err != nil {
			return err
		}
	}
	const footer = "    end\n" +
		"\n" +
		"    assign DO = RW ? Mem[ADDR] : 8'hFF;\n" +
		"\n" +
		"    always @(CS || RW) begin\n" +
		"        if (~CS && ~RW) begin\n" +
		"            Mem[ADDR] <= DI;\n" +
		"        end\n" +
		"    end\n" +
		"\n" +
		"endmodule\n"
	_, err := io.WriteString(w, footer)
	return err
}

// WriteBinary writes the raw assembled bytes.
func WriteBinary(w io.Writer, im *Image) error {
	end := im.End()
	_, err := w.Write(im.Buf[im.StartAddr:end])
	return err
}
