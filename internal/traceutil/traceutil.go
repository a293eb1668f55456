// Package traceutil formats the verbose (-V) and very-verbose (-VV)
// trace output cmd/mechc writes to stderr: per-stage timing and — at
// -VV — a full pretty-printed dump of the lowered Module for a reader
// who wants to see every synthesised I/O binding. Tracer.Flops also
// formats a flop count (internal/passes.FlopCount, after
// original_source's PerfVisitor); cmd/mechc does not call it. Grounded
// on the general pattern of a tracer writing to an io.Writer rather than hardcoding os.Stderr (so tests can assert on the
// output), using the two teacher-carried formatting libraries
// (dustin/go-humanize, kr/pretty) that the rest of this compiler has no
// other obvious home for.
package traceutil

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"

	"mechc/internal/passes"
)

// Level is the trace verbosity requested on the CLI.
type Level int

const (
	Silent Level = iota
	Verbose   // -V
	VeryVerbose // -VV
)

// Tracer writes trace lines to an underlying writer at a fixed
// verbosity level.
type Tracer struct {
	w     io.Writer
	level Level
}

// New creates a Tracer writing to w at the given level.
func New(w io.Writer, level Level) *Tracer {
	return &Tracer{w: w, level: level}
}

// Stage records that a compile stage (parse, semantic, lowering,
// optimize) finished, with its wall-clock duration.
func (t *Tracer) Stage(name string, d time.Duration) {
	if t.level < Verbose {
		return
	}
	fmt.Fprintf(t.w, "[mechc] %-10s %s\n", name, d)
}

// Flops reports a FlopCount in human-scale terms, e.g. for a mechanism
// with a large BREAKPOINT this keeps a six-digit op count legible.
func (t *Tracer) Flops(label string, f passes.FlopCount) {
	if t.level < Verbose {
		return
	}
	fmt.Fprintf(t.w, "[mechc] %s: %s flops (+%s -%s *%s /%s ^%s, %s transcendental)\n",
		label,
		humanize.Comma(int64(f.Total())),
		humanize.Comma(int64(f.Add)),
		humanize.Comma(int64(f.Sub)),
		humanize.Comma(int64(f.Mul)),
		humanize.Comma(int64(f.Div)),
		humanize.Comma(int64(f.Pow)),
		humanize.Comma(int64(f.Transcendental)),
	)
}

// Dump pretty-prints v (typically a *module.Module or an *ast.APIMethod)
// under label. Only emitted at -VV: a full Module dump is verbose enough
// that -V alone should not pay for it.
func (t *Tracer) Dump(label string, v any) {
	if t.level < VeryVerbose {
		return
	}
	fmt.Fprintf(t.w, "[mechc] %s:\n", label)
	fmt.Fprintln(t.w, pretty.Sprint(v))
}
