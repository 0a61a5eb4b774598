package engine

import (
	"fmt"
	"io"
	"sort"
)

// listingWriter accumulates one row per assembled line during pass 2
// and, at the end of assembly, the constants/labels/error summary that
// follows the original's listing format.
type listingWriter struct {
	w    io.Writer
	rows []string
}

func newListingWriter(w io.Writer) *listingWriter {
	return &listingWriter{w: w}
}

// line records one source line's listing row: its address, the bytes it
// produced, and the source text itself.
func (lw *listingWriter) line(addr uint32, bytes []byte, src string) {
	row := fmt.Sprintf("%06o  ", addr)
	for i, b := range bytes {
		if i > 0 && i%8 == 0 {
			row += "\n        "
		}
		row += fmt.Sprintf("%03o ", b)
	}
	row += "\t" + src
	lw.rows = append(lw.rows, row)
}

func (lw *listingWriter) flushLines() {
	for _, r := range lw.rows {
		fmt.Fprintln(lw.w, r)
	}
	lw.rows = lw.rows[:0]
}

// summary dumps the `Constants:`/`Labels:`/`Errors:` trailer printed
// once at the very end of assembly.
func (lw *listingWriter) summary(equs, labels map[string]int32, errText string) {
	fmt.Fprintln(lw.w, "Constants:")
	for _, name := range sortedKeys(equs) {
		fmt.Fprintf(lw.w, "  %-24s %06o\n", name, uint16(equs[name]))
	}
	fmt.Fprintln(lw.w, "Labels:")
	for _, name := range sortedKeys(labels) {
		fmt.Fprintf(lw.w, "  %-24s %06o\n", name, uint16(labels[name]))
	}
	fmt.Fprintf(lw.w, "Errors: %s\n", errText)
}

// listLine records a listing row for a directive that doesn't go
// through the generic instruction path (equ, proc, org, chksum, ...).
// No-op outside pass 2 or when no listing was requested.
func (ctx *Context) listLine(addr uint32, words []uint16) {
	if ctx.Pass != 2 || ctx.listing == nil {
		return
	}
	bytes := make([]byte, 0, len(words)*2)
	for _, w := range words {
		bytes = append(bytes, byte(w&0xFF), byte(w>>8))
	}
	ctx.listing.line(addr, bytes, "")
}

func sortedKeys(m map[string]int32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
