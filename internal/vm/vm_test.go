package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/compiler"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
	"github.com/fusabi-lang/fusabi/internal/vm"
)

func sp() token.Span { return token.Span{} }

func ident(n string) *ast.Ident { return &ast.Ident{Name: n, TSpan: sp()} }
func intLit(v int64) *ast.IntLit { return &ast.IntLit{Value: v, TSpan: sp()} }

func newVM() *vm.VM {
	return vm.New(heap.New(), hostfn.NewRegistry())
}

func runProgram(t *testing.T, prog *ast.Program) value.Value {
	t.Helper()
	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := newVM()
	result, err := m.Run(chunk)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

// TestArithmeticAndIf covers basic expression evaluation end to end: an
// if/then/else guarding a comparison over literal arithmetic.
func TestArithmeticAndIf(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: &ast.If{
			Cond: &ast.BinOp{Op: ">", Left: &ast.BinOp{Op: "+", Left: intLit(2), Right: intLit(3), TSpan: sp()}, Right: intLit(4), TSpan: sp()},
			Then: intLit(100),
			Else: intLit(200),
			TSpan: sp(),
		},
	}
	got := runProgram(t, prog)
	if got.AsInt() != 100 {
		t.Fatalf("got %d, want 100", got.AsInt())
	}
}

// TestMixedIntFloatPromotesToFloat resolves spec.md §9's Open Question:
// mixed Int/Float arithmetic promotes to Float.
func TestMixedIntFloatPromotesToFloat(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: &ast.BinOp{
			Op:    "+",
			Left:  intLit(1),
			Right: &ast.FloatLit{Value: 0.5, TSpan: sp()},
			TSpan: sp(),
		},
	}
	got := runProgram(t, prog)
	if !got.IsFloat() {
		t.Fatalf("mixed Int+Float should promote to Float, got tag %s", got.Tag())
	}
	if got.AsFloat() != 1.5 {
		t.Fatalf("got %v, want 1.5", got.AsFloat())
	}
}

// TestRecursiveFib exercises let rec, self-recursion through an upvalue,
// and curried single-argument calls: fib 10 == 55.
func TestRecursiveFib(t *testing.T) {
	// let rec fib = fun n ->
	//   if n < 2 then n else (fib (n - 1)) + (fib (n - 2))
	fibBody := &ast.If{
		Cond: &ast.BinOp{Op: "<", Left: ident("n"), Right: intLit(2), TSpan: sp()},
		Then: ident("n"),
		Else: &ast.BinOp{
			Op: "+",
			Left: &ast.App{
				Fn:   ident("fib"),
				Args: []ast.Expr{&ast.BinOp{Op: "-", Left: ident("n"), Right: intLit(1), TSpan: sp()}},
				TSpan: sp(),
			},
			Right: &ast.App{
				Fn:   ident("fib"),
				Args: []ast.Expr{&ast.BinOp{Op: "-", Left: ident("n"), Right: intLit(2), TSpan: sp()}},
				TSpan: sp(),
			},
			TSpan: sp(),
		},
		TSpan: sp(),
	}
	fibLambda := &ast.Lambda{Params: []string{"n"}, Body: fibBody, TSpan: sp()}

	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "fib", Rec: true, Value: fibLambda, TSpan: sp()},
		},
		Tail: &ast.App{Fn: ident("fib"), Args: []ast.Expr{intLit(10)}, TSpan: sp()},
	}

	got := runProgram(t, prog)
	if got.AsInt() != 55 {
		t.Fatalf("fib(10) = %d, want 55", got.AsInt())
	}
}

// TestClosureCapturesUpvalue: a lambda returned from another lambda closes
// over its parameter, confirming upvalue capture across frame boundaries.
func TestClosureCapturesUpvalue(t *testing.T) {
	// let make_adder = fun x -> fun y -> x + y
	// let add5 = make_adder 5
	// add5 10
	inner := &ast.Lambda{
		Params: []string{"y"},
		Body:   &ast.BinOp{Op: "+", Left: ident("x"), Right: ident("y"), TSpan: sp()},
		TSpan:  sp(),
	}
	outer := &ast.Lambda{Params: []string{"x"}, Body: inner, TSpan: sp()}

	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "make_adder", Value: outer, TSpan: sp()},
			{Name: "add5", Value: &ast.App{Fn: ident("make_adder"), Args: []ast.Expr{intLit(5)}, TSpan: sp()}, TSpan: sp()},
		},
		Tail: &ast.App{Fn: ident("add5"), Args: []ast.Expr{intLit(10)}, TSpan: sp()},
	}

	got := runProgram(t, prog)
	if got.AsInt() != 15 {
		t.Fatalf("add5(10) = %d, want 15", got.AsInt())
	}
}

// TestCurriedPartialApplication: calling a two-arg function with one
// argument returns a callable partial application, not an error (spec.md
// §4.4).
func TestCurriedPartialApplication(t *testing.T) {
	// let add = fun a b -> a + b
	// let add10 = add 10
	// add10 7
	addLambda := &ast.Lambda{
		Params: []string{"a", "b"},
		Body:   &ast.BinOp{Op: "+", Left: ident("a"), Right: ident("b"), TSpan: sp()},
		TSpan:  sp(),
	}
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "add", Value: addLambda, TSpan: sp()},
			{Name: "add10", Value: &ast.App{Fn: ident("add"), Args: []ast.Expr{intLit(10)}, TSpan: sp()}, TSpan: sp()},
		},
		Tail: &ast.App{Fn: ident("add10"), Args: []ast.Expr{intLit(7)}, TSpan: sp()},
	}

	got := runProgram(t, prog)
	if got.AsInt() != 17 {
		t.Fatalf("add10(7) = %d, want 17", got.AsInt())
	}
}

// TestDeepRecursionHitsFrameLimit confirms StackOverflow fires at a bounded
// depth rather than crashing the host process (spec.md §8 scenario 7).
func TestDeepRecursionHitsFrameLimit(t *testing.T) {
	// let rec loop = fun n -> loop (n + 1)
	loopBody := &ast.App{
		Fn:   ident("loop"),
		Args: []ast.Expr{&ast.BinOp{Op: "+", Left: ident("n"), Right: intLit(1), TSpan: sp()}},
		TSpan: sp(),
	}
	loopLambda := &ast.Lambda{Params: []string{"n"}, Body: loopBody, TSpan: sp()}

	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "loop", Rec: true, Value: loopLambda, TSpan: sp()},
		},
		Tail: &ast.App{Fn: ident("loop"), Args: []ast.Expr{intLit(0)}, TSpan: sp()},
	}

	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := newVM()
	_, err = m.Run(chunk)
	if err == nil {
		t.Fatalf("expected unbounded recursion to fail with a stack overflow")
	}
	if !strings.Contains(err.Error(), "stack overflow") {
		t.Fatalf("expected a stack overflow error, got: %v", err)
	}
}

// TestPrintWritesToConfiguredStdout confirms VM.Stdout redirection (used by
// pkg/fusabi.Config.StdoutWriter) actually reaches OP_PRINT's output. No
// front end emits OP_PRINT yet (spec.md §1 keeps lexing/parsing out of
// scope), so the chunk is hand-assembled directly rather than compiled.
func TestPrintWritesToConfiguredStdout(t *testing.T) {
	chunk := bytecode.NewChunk("", "t.fsx")
	idx := chunk.AddConstant(bytecode.ConstOfString("hello"))
	chunk.Emit(bytecode.OpLoadConst, sp())
	chunk.EmitU16(uint16(idx))
	chunk.Emit(bytecode.OpPrint, sp())
	chunk.Emit(bytecode.OpReturn, sp())

	m := newVM()
	var buf bytes.Buffer
	m.Stdout = &buf

	if _, err := m.Run(chunk); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", got, "hello\n")
	}
}

// TestCallEntersEmbeddingAPI exercises the exported VM.Call path used by
// pkg/fusabi.Engine.Call: calling a closure fetched from Globals after Run
// has already completed.
func TestCallEntersEmbeddingAPI(t *testing.T) {
	doubleLambda := &ast.Lambda{
		Params: []string{"n"},
		Body:   &ast.BinOp{Op: "*", Left: ident("n"), Right: intLit(2), TSpan: sp()},
		TSpan:  sp(),
	}
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "double", Value: doubleLambda, TSpan: sp()},
		},
		Tail: &ast.UnitLit{TSpan: sp()},
	}
	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := newVM()
	if _, err := m.Run(chunk); err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	double, ok := m.Globals["double"]
	if !ok {
		t.Fatalf("expected global \"double\" to be bound after Run")
	}
	result, err := m.Call(double, []value.Value{value.IntVal(21)})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.AsInt() != 42 {
		t.Fatalf("double(21) = %d, want 42", result.AsInt())
	}
}

// TestPipeMatchGuard exercises the pipe desugaring ("a |> f" == "f a"),
// match-with-guard compilation, and list-cons patterns together: classify
// the head of a list as "big" only past a threshold, "small" otherwise.
func TestPipeMatchGuard(t *testing.T) {
	// let classify = fun xs ->
	//   match xs with
	//   | head :: _ when head > 10 -> "big"
	//   | head :: _ -> "small"
	//   | [] -> "empty"
	// [12; 1; 2] |> classify
	classifyBody := &ast.Match{
		Scrutinee: ident("xs"),
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.ListPat{Elements: []ast.Pattern{&ast.BindPat{Name: "head", TSpan: sp()}}, Rest: &ast.WildcardPat{TSpan: sp()}, TSpan: sp()},
				Guard:   &ast.BinOp{Op: ">", Left: ident("head"), Right: intLit(10), TSpan: sp()},
				Body:    &ast.StringLit{Value: "big", TSpan: sp()},
			},
			{
				Pattern: &ast.ListPat{Elements: []ast.Pattern{&ast.BindPat{Name: "head", TSpan: sp()}}, Rest: &ast.WildcardPat{TSpan: sp()}, TSpan: sp()},
				Body:    &ast.StringLit{Value: "small", TSpan: sp()},
			},
			{
				Pattern: &ast.ListPat{TSpan: sp()},
				Body:    &ast.StringLit{Value: "empty", TSpan: sp()},
			},
		},
		TSpan: sp(),
	}
	classifyLambda := &ast.Lambda{Params: []string{"xs"}, Body: classifyBody, TSpan: sp()}

	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "classify", Value: classifyLambda, TSpan: sp()},
		},
		Tail: &ast.Pipe{
			Value: &ast.ListLit{Elements: []ast.Expr{intLit(12), intLit(1), intLit(2)}, TSpan: sp()},
			Fn:    ident("classify"),
			TSpan: sp(),
		},
	}

	got := runProgram(t, prog)
	if !got.IsObj() {
		t.Fatalf("expected a String result, got tag %s", got.Tag())
	}
	if display := got.Display(); display != "big" {
		t.Fatalf("classify([12;1;2]) = %q, want %q", display, "big")
	}
}
