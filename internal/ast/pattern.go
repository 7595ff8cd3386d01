package ast

import "github.com/fusabi-lang/fusabi/internal/token"

// Pattern is a node appearing on the left of a match arm or a destructuring
// let. The supported shapes are exactly those spec.md §4.6 lists: wildcard,
// variable bind, literal, tuple destructure, list cons/nil, record (exhaustive
// or open), variant with tag + optional payload pattern.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPat is `_`.
type WildcardPat struct{ TSpan token.Span }

func (p *WildcardPat) Span() token.Span { return p.TSpan }
func (*WildcardPat) patternNode()       {}

// BindPat binds the scrutinee (or sub-fragment) to a fresh local.
type BindPat struct {
	Name  string
	TSpan token.Span
}

func (p *BindPat) Span() token.Span { return p.TSpan }
func (*BindPat) patternNode()       {}

// LiteralPat matches against a constant.
type LiteralPat struct {
	Value interface{} // int64, float64, bool, string, or nil for unit
	TSpan token.Span
}

func (p *LiteralPat) Span() token.Span { return p.TSpan }
func (*LiteralPat) patternNode()       {}

// TuplePat is `(p1, p2, ...)`.
type TuplePat struct {
	Elements []Pattern
	TSpan    token.Span
}

func (p *TuplePat) Span() token.Span { return p.TSpan }
func (*TuplePat) patternNode()       {}

// ListPat matches list shape. Elements are fixed-position sub-patterns;
// Rest, if non-nil, binds the remaining tail (cons pattern `x :: xs`, or
// `[]` when both Elements and Rest are empty/nil).
type ListPat struct {
	Elements []Pattern
	Rest     Pattern
	TSpan    token.Span
}

func (p *ListPat) Span() token.Span { return p.TSpan }
func (*ListPat) patternNode()       {}

// RecordPat matches a record's fields. Open is true when the pattern omits
// some fields (F# trailing-field-elision semantics). The compiled match test
// checks only the listed fields and does not consult Open, so a pattern with
// Open false also matches a record that carries extra fields.
type RecordPat struct {
	Fields map[string]Pattern
	Open   bool
	TSpan  token.Span
}

func (p *RecordPat) Span() token.Span { return p.TSpan }
func (*RecordPat) patternNode()       {}

// VariantPat matches a discriminated-union constructor tag, with an
// optional sub-pattern for the payload.
type VariantPat struct {
	Ctor    string
	Payload Pattern // nil if the constructor is nullary or the payload is ignored
	TSpan   token.Span
}

func (p *VariantPat) Span() token.Span { return p.TSpan }
func (*VariantPat) patternNode()       {}
