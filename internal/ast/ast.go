// Package ast defines the typed AST that the compiler consumes. Lexing,
// parsing, and type inference are external collaborators (spec.md §1): this
// package only fixes the node shapes those collaborators are expected to
// produce. Every node carries a token.Span for error reporting and a Type
// field populated by the inferencer; the compiler itself never inspects
// Type — arithmetic and comparison dispatch on runtime value tags, not
// static types (spec.md §4.3 "Arithmetic").
package ast

import "github.com/fusabi-lang/fusabi/internal/token"

// Node is the base interface for every AST node.
type Node interface {
	Span() token.Span
}

// Expr is a Node that yields a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a compiled unit: a top-level sequence of let
// bindings and a trailing expression (the value `eval`/`run_chunk` return).
type Program struct {
	File  string
	Lets  []*LetDecl
	Tail  Expr // may be nil for an empty program
	TSpan token.Span
}

func (p *Program) Span() token.Span { return p.TSpan }

// --- declarations -----------------------------------------------------

// LetDecl is `let name = value` or, with Rec set, `let rec name = value`
// (which may itself be a FunctionLit enabling self-recursion).
type LetDecl struct {
	Name    string
	Rec     bool
	Pattern Pattern // non-nil for destructuring lets: let (a, b) = pair
	Value   Expr
	TSpan   token.Span
}

func (l *LetDecl) Span() token.Span { return l.TSpan }

// TypeDecl declares a discriminated union: type Name = Ctor1 of T | Ctor2 | ...
type TypeDecl struct {
	Name         string
	Constructors []DUConstructor
	TSpan        token.Span
}

func (t *TypeDecl) Span() token.Span { return t.TSpan }

// DUConstructor is one arm of a discriminated union declaration.
type DUConstructor struct {
	Name       string
	HasPayload bool
}

// --- expressions --------------------------------------------------------

type Ident struct {
	Name  string
	TSpan token.Span
}

func (i *Ident) Span() token.Span { return i.TSpan }
func (*Ident) exprNode()          {}

type UnitLit struct{ TSpan token.Span }

func (u *UnitLit) Span() token.Span { return u.TSpan }
func (*UnitLit) exprNode()          {}

type BoolLit struct {
	Value bool
	TSpan token.Span
}

func (b *BoolLit) Span() token.Span { return b.TSpan }
func (*BoolLit) exprNode()          {}

type IntLit struct {
	Value int64
	TSpan token.Span
}

func (i *IntLit) Span() token.Span { return i.TSpan }
func (*IntLit) exprNode()          {}

type FloatLit struct {
	Value float64
	TSpan token.Span
}

func (f *FloatLit) Span() token.Span { return f.TSpan }
func (*FloatLit) exprNode()          {}

type StringLit struct {
	Value string
	TSpan token.Span
}

func (s *StringLit) Span() token.Span { return s.TSpan }
func (*StringLit) exprNode()          {}

// TupleLit is `(a, b, c)`.
type TupleLit struct {
	Elements []Expr
	TSpan    token.Span
}

func (t *TupleLit) Span() token.Span { return t.TSpan }
func (*TupleLit) exprNode()          {}

// ListLit is `[a; b]` or `[a, b]` (both separators accepted per spec.md §6).
type ListLit struct {
	Elements []Expr
	TSpan    token.Span
}

func (l *ListLit) Span() token.Span { return l.TSpan }
func (*ListLit) exprNode()          {}

// ArrayLit is `[| a; b |]`.
type ArrayLit struct {
	Elements []Expr
	TSpan    token.Span
}

func (a *ArrayLit) Span() token.Span { return a.TSpan }
func (*ArrayLit) exprNode()          {}

// RecordLit is `{ f1 = e1; f2 = e2 }`. Base is non-nil for a functional
// update `{ r with f = e }`, and Fields then lists only the overridden
// fields.
type RecordLit struct {
	Base   Expr
	Fields []RecordField
	TSpan  token.Span
}

type RecordField struct {
	Name  string
	Value Expr
}

func (r *RecordLit) Span() token.Span { return r.TSpan }
func (*RecordLit) exprNode()          {}

// VariantLit constructs a discriminated union value: `Ctor` or `Ctor payload`.
type VariantLit struct {
	Ctor    string
	Payload Expr // nil for a nullary constructor
	TSpan   token.Span
}

func (v *VariantLit) Span() token.Span { return v.TSpan }
func (*VariantLit) exprNode()          {}

// FieldAccess is `e.field`.
type FieldAccess struct {
	Target Expr
	Field  string
	TSpan  token.Span
}

func (f *FieldAccess) Span() token.Span { return f.TSpan }
func (*FieldAccess) exprNode()          {}

// IndexExpr is `arr.[i]` (array element access).
type IndexExpr struct {
	Target Expr
	Index  Expr
	TSpan  token.Span
}

func (i *IndexExpr) Span() token.Span { return i.TSpan }
func (*IndexExpr) exprNode()          {}

// SetIndexExpr is `arr.[i] <- v` — the only in-place mutation in the
// language (spec.md §3: "Arrays are the only in-place mutable aggregate").
type SetIndexExpr struct {
	Target Expr
	Index  Expr
	Value  Expr
	TSpan  token.Span
}

func (s *SetIndexExpr) Span() token.Span { return s.TSpan }
func (*SetIndexExpr) exprNode()          {}

// BinOp covers arithmetic, comparison, logical, `++`, and `::`.
type BinOp struct {
	Op    string // "+","-","*","/","%","++","::","==","!=","<","<=",">",">=","&&","||"
	Left  Expr
	Right Expr
	TSpan token.Span
}

func (b *BinOp) Span() token.Span { return b.TSpan }
func (*BinOp) exprNode()          {}

// UnaryOp covers unary minus and boolean not.
type UnaryOp struct {
	Op    string // "-", "!"
	Value Expr
	TSpan token.Span
}

func (u *UnaryOp) Span() token.Span { return u.TSpan }
func (*UnaryOp) exprNode()          {}

// Lambda is `fun p1 p2 ... -> body`. Parameters are always simple names;
// pattern-matching parameters are expressed by the parser desugaring to
// `fun x -> match x with | pat -> body`, so the compiler only ever sees
// plain binders here.
type Lambda struct {
	Params []string
	Body   Expr
	TSpan  token.Span
}

func (l *Lambda) Span() token.Span { return l.TSpan }
func (*Lambda) exprNode()          {}

// App is function application `f a1 a2 ...` (curried per spec.md §4.4).
type App struct {
	Fn    Expr
	Args  []Expr
	TSpan token.Span
}

func (a *App) Span() token.Span { return a.TSpan }
func (*App) exprNode()          {}

// Pipe is `a |> f`, desugared by the compiler to `f a` (spec.md §4.6) with
// no dedicated opcode. Kept as its own node so the compiler can special-case
// chained pipelines without re-parsing application order.
type Pipe struct {
	Value Expr
	Fn    Expr
	TSpan token.Span
}

func (p *Pipe) Span() token.Span { return p.TSpan }
func (*Pipe) exprNode()          {}

// Let is a local `let name = value in body` (or `let rec` for self/mutual
// recursion — Lambda bodies referencing Name resolve as an upvalue/local
// exactly like any other closure capture).
type Let struct {
	Name    string
	Rec     bool
	Pattern Pattern // non-nil for `let (a, b) = value in body`
	Value   Expr
	Body    Expr
	TSpan   token.Span
}

func (l *Let) Span() token.Span { return l.TSpan }
func (*Let) exprNode()          {}

// If is `if cond then conseq else alt`.
type If struct {
	Cond   Expr
	Then   Expr
	Else   Expr // nil means the else branch is `()`
	TSpan  token.Span
}

func (i *If) Span() token.Span { return i.TSpan }
func (*If) exprNode()          {}

// Match is `match scrutinee with | arm1 | arm2 ...`.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	TSpan     token.Span
}

type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if the arm has no `when` clause
	Body    Expr
}

func (m *Match) Span() token.Span { return m.TSpan }
func (*Match) exprNode()          {}

// CEBlock is a computation-expression block `builder { ... }`, desugared
// by internal/compiler/ce.go before bytecode emission (spec.md §4.6).
type CEBlock struct {
	Builder Expr
	Stmts   []CEStmt
	TSpan   token.Span
}

func (c *CEBlock) Span() token.Span { return c.TSpan }
func (*CEBlock) exprNode()          {}

// CEStmt is one statement inside a computation-expression block.
type CEStmt struct {
	Kind  CEStmtKind
	Name  string // bound name for Let!/Bind; empty for Do!/Return/ReturnFrom/Yield/Expr
	Value Expr
}

type CEStmtKind int

const (
	CELet    CEStmtKind = iota // let! x = e
	CEDo                       // do! e
	CEReturn                   // return e
	CEReturnFrom                // return! e
	CEYield                    // yield e
	CEExpr                     // plain expression statement, combined via Combine
)

func (s CEStmtKind) String() string {
	switch s {
	case CELet:
		return "let!"
	case CEDo:
		return "do!"
	case CEReturn:
		return "return"
	case CEReturnFrom:
		return "return!"
	case CEYield:
		return "yield"
	default:
		return "expr"
	}
}
