// Package ferr defines Fusabi's typed error taxonomy (spec.md §4.1/§10).
// Every error the engine can surface to a host carries a source Span (zero
// when no span applies, e.g. a host-side FormatError) and implements error,
// so callers can either match on the concrete type or treat it as an opaque
// error.
package ferr

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/token"
)

// LexError reports a lexical scan failure. Lexing itself is out of scope,
// but the taxonomy is defined here for any front end to return.
type LexError struct {
	Span token.Span
	Msg  string
}

func (e *LexError) Error() string { return fmt.Sprintf("%s: lex error: %s", e.Span, e.Msg) }

// ParseError reports a syntactic failure.
type ParseError struct {
	Span token.Span
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse error: %s", e.Span, e.Msg) }

// TypeError reports a static or dynamic type mismatch.
type TypeError struct {
	Span token.Span
	Msg  string
}

func (e *TypeError) Error() string { return fmt.Sprintf("%s: type error: %s", e.Span, e.Msg) }

// NameError reports a reference to an undeclared identifier.
type NameError struct {
	Span token.Span
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: name error: %q is not defined", e.Span, e.Name)
}

// ArityError reports a call whose final argument count does not fit the
// callee's arity. The VM's curried-call protocol (spec.md §4.4) absorbs
// under- and over-application, so no VM call path raises it.
type ArityError struct {
	Span     token.Span
	Name     string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: arity error: %s expects %d argument(s), got %d", e.Span, e.Name, e.Want, e.Got)
}

// RuntimeError is the catch-all for runtime faults that don't fit a more
// specific category (e.g. division by zero, index out of bounds).
type RuntimeError struct {
	Span token.Span
	Msg  string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: runtime error: %s", e.Span, e.Msg) }

// MatchFailure reports that a scrutinee fell through every arm of a match
// expression (spec.md §4.6: "fallthrough past the last arm raises
// MatchFailure").
type MatchFailure struct {
	Span    token.Span
	Subject string
}

func (e *MatchFailure) Error() string {
	return fmt.Sprintf("%s: match failure: no arm matched %s", e.Span, e.Subject)
}

// StackOverflow reports the call-frame depth exceeding the configured
// limit (spec.md §4.4: default 1024, hard cap 4096).
type StackOverflow struct {
	Span  token.Span
	Depth int
	Limit int
}

func (e *StackOverflow) Error() string {
	return fmt.Sprintf("%s: stack overflow: depth %d exceeds limit %d", e.Span, e.Depth, e.Limit)
}

// FormatError reports a malformed .fzb payload (spec.md §4.7). Defined here
// too (in addition to bytecode.FormatError) so callers working purely at
// the ferr level can type-switch on it. bytecode.Deserialize returns
// bytecode.FormatError, and nothing in this module converts it into this
// type.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("fzb format error: %s", e.Reason) }

// CircularLoad reports a #load cycle detected while resolving file
// dependencies (spec.md §4.9).
type CircularLoad struct {
	Cycle []string
}

func (e *CircularLoad) Error() string {
	msg := "circular load: "
	for i, f := range e.Cycle {
		if i > 0 {
			msg += " -> "
		}
		msg += f
	}
	return msg
}

// HostError wraps an error returned by a host-registered native function,
// or a re-entrancy boundary-invariant violation detected on return from one
// (spec.md §4.6).
type HostError struct {
	Span token.Span
	Name string
	Err  error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s: host error in %s: %v", e.Span, e.Name, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }
