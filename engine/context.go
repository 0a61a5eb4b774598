// Package engine drives the two-pass assembly: it walks source lines
// (following `include`), dispatches directives and machine instructions,
// and produces an output image plus a listing.
package engine

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pdaxrom/microasm11/asmerr"
	"github.com/pdaxrom/microasm11/encode"
	"github.com/pdaxrom/microasm11/image"
	"github.com/pdaxrom/microasm11/lex"
	"github.com/pdaxrom/microasm11/symtab"
)

// Options configures a run independently of any one source file.
type Options struct {
	CaseSensitiveSymbols bool
	JmpLabelIndirect     bool
	DefaultCPU           encode.CPU
	Listing              io.Writer // nil disables the listing dump
}

// Context is the single mutable home for everything a two-pass assembly
// needs: the symbol environment, macro table, conditional stack, output
// image and the include-file stack. Earlier versions of this assembler
// kept all of this in package-level globals; bundling it here makes two
// concurrent or repeated assemblies (as the test suite needs) possible
// without one run's leftover state bleeding into the next.
type Context struct {
	Opts Options

	Env    *symtab.Env
	Macros *symtab.MacroTable
	Cond   symtab.CondStack
	Img    *image.Image

	CPU encode.CPU

	Pass       int
	SrcLine    int
	MacroDepth int

	Procs map[string]*symtab.Proc

	UseChksum    bool
	ChksumAddr   uint32
	PadTailWords bool

	files *fileFrame

	listing *listingWriter
}

func NewContext(opts Options) *Context {
	ctx := &Context{
		Opts:   opts,
		Env:    symtab.NewEnv(opts.CaseSensitiveSymbols),
		Macros: symtab.NewMacroTable(opts.CaseSensitiveSymbols),
		Img:    image.New(),
		CPU:    opts.DefaultCPU,
		Procs:  make(map[string]*symtab.Proc),
	}
	if ctx.CPU == 0 {
		ctx.CPU = encode.CPUDefault
	}
	if opts.Listing != nil {
		ctx.listing = newListingWriter(opts.Listing)
	}
	return ctx
}

// resetPass restores all the per-pass cursor state the way the original
// driver did immediately before running pass 1 and again before pass 2.
func (ctx *Context) resetPass(pass int) {
	ctx.Img.Reset()
	ctx.Pass = pass
	ctx.Env.SetPass(pass)
	ctx.SrcLine = 1
	ctx.MacroDepth = 0
	ctx.Env.Proc = nil
	ctx.Cond = symtab.CondStack{}
	ctx.CPU = ctx.Opts.DefaultCPU
	if ctx.CPU == 0 {
		ctx.CPU = encode.CPUDefault
	}
}

// fileFrame is one entry of the include stack: a file plus the line
// it's positioned at, so popping back to the includer resumes exactly
// where `include` left off rather than needing to reopen and refast-
// forward the file.
type fileFrame struct {
	path string
	dir  string
	f    *os.File
	sc   *bufio.Scanner
	prev *fileFrame
	// resumeLine is the line number the parent frame resumes at once
	// this file is exhausted -- the original stashes src_line+1 on its
	// include stack for the same reason.
	resumeLine int
}

// pushFile opens path as the new current source and sets SrcLine to 1,
// remembering where the includer (if any) should resume once path is
// exhausted.
func (ctx *Context) pushFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return asmerr.Newf(asmerr.CannotOpenFile, ctx.SrcLine, "%s", path)
	}
	ctx.files = &fileFrame{
		path:       path,
		dir:        filepath.Dir(path),
		f:          f,
		sc:         bufio.NewScanner(f),
		prev:       ctx.files,
		resumeLine: ctx.SrcLine + 1,
	}
	ctx.SrcLine = 1
	return nil
}

// currentDir is the directory of the file currently being read, used to
// resolve a relative `include` path the way the original does by joining
// it onto the includer's own directory rather than the process cwd.
func (ctx *Context) currentDir() string {
	if ctx.files == nil {
		return "."
	}
	return ctx.files.dir
}

// nextLine returns the next raw source line across the include stack,
// popping exhausted files and restoring the includer's line number.
// io.EOF is returned once the outermost file is exhausted.
func (ctx *Context) nextLine() (string, error) {
	for ctx.files != nil {
		if ctx.files.sc.Scan() {
			return ctx.files.sc.Text(), nil
		}
		if err := ctx.files.sc.Err(); err != nil {
			return "", err
		}
		resume := ctx.files.resumeLine
		ctx.files.f.Close()
		ctx.files = ctx.files.prev
		ctx.SrcLine = resume
	}
	return "", io.EOF
}

func (ctx *Context) closeFiles() {
	for ctx.files != nil {
		ctx.files.f.Close()
		ctx.files = ctx.files.prev
	}
}

func (ctx *Context) errf(kind asmerr.Kind, format string, args ...interface{}) *asmerr.Error {
	return asmerr.Newf(kind, ctx.SrcLine, format, args...)
}

func (ctx *Context) err(kind asmerr.Kind) *asmerr.Error {
	return asmerr.New(kind, ctx.SrcLine)
}

// newEvaluator syncs the location counter (the value `*` resolves to)
// with the image cursor and returns an evaluator over sc.
func (ctx *Context) newEvaluator(sc *lex.Scanner) *lex.Evaluator {
	ctx.Env.SetLocationCounter(int32(ctx.Img.OutputAddr))
	return lex.NewEvaluator(sc, ctx.Env, ctx.SrcLine)
}
