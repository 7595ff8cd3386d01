package ferr

import (
	"strings"

	"github.com/fusabi-lang/fusabi/internal/token"
)

// Frame is one line of a formatted stack trace: the function name active at
// that call level and the span of the instruction executing there.
type Frame struct {
	FuncName string
	Span     token.Span
}

// Trace wraps a RuntimeError (or any ferr type) with a full call-frame
// listing rather than just the innermost span (supplements spec.md §4.1,
// which mandates a span but not a full trace). The VM does not build a
// Trace: the errors it returns carry only the innermost span.
type Trace struct {
	Err    error
	Frames []Frame
}

func (t *Trace) Error() string { return t.Err.Error() }
func (t *Trace) Unwrap() error { return t.Err }

// Format renders the trace the way a CLI's error path prints it: the error
// message, followed by one "at <func> (<span>)" line per frame, innermost
// first.
func (t *Trace) Format() string {
	var b strings.Builder
	b.WriteString(t.Err.Error())
	for _, f := range t.Frames {
		b.WriteString("\n  at ")
		b.WriteString(f.FuncName)
		b.WriteString(" (")
		b.WriteString(f.Span.String())
		b.WriteString(")")
	}
	return b.String()
}
