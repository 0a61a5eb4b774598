package engine

import (
	"io"

	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/image"
)

// Result is what a successful Assemble call produces.
type Result struct {
	Img          *image.Image
	UsedChecksum bool
}

// Assemble runs pass 1 (tentative symbols, labels only) then pass 2
// (equs, strict resolution, byte emission) over entryPath, then applies
// the two end-of-assembly fixups the original does after its own pass 2
// loop: patching the `chksum` placeholder and, if a `dw` expression
// triggered the pad-tail-words quirk, appending two zero words.
func (ctx *Context) Assemble(entryPath string) (*Result, error) {
	if err := ctx.runPass(1, entryPath); err != nil {
		return nil, err
	}
	if err := ctx.runPass(2, entryPath); err != nil {
		return nil, err
	}

	if ctx.UseChksum {
		ctx.Img.PatchWord(ctx.ChksumAddr, ctx.Img.Checksum())
	}
	if ctx.PadTailWords {
		if err := ctx.Img.EmitWord(0); err != nil {
			return nil, asmerr.New(asmerr.OutputBufferOverflow, ctx.SrcLine)
		}
		if err := ctx.Img.EmitWord(0); err != nil {
			return nil, asmerr.New(asmerr.OutputBufferOverflow, ctx.SrcLine)
		}
	}

	if ctx.listing != nil {
		ctx.listing.flushLines()
		ctx.listing.summary(ctx.Env.Equs.Values(), ctx.Env.Labels.Values(), "none")
	}

	return &Result{Img: ctx.Img, UsedChecksum: ctx.UseChksum}, nil
}

// runPass resets per-pass state, opens entryPath fresh and walks it
// (following `include`) to EOF, stopping at the first error exactly as
// the original top-level driver loop does.
func (ctx *Context) runPass(pass int, entryPath string) error {
	ctx.resetPass(pass)
	if err := ctx.pushFile(entryPath); err != nil {
		return err
	}
	defer ctx.closeFiles()

	for {
		raw, err := ctx.nextLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return asmerr.Newf(asmerr.CannotOpenFile, ctx.SrcLine, "%s", err)
		}
		if err := ctx.AssembleLine(raw); err != nil {
			return err
		}
	}
}
