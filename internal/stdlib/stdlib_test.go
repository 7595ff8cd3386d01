package stdlib_test

import (
	"fmt"
	"testing"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/compiler"
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
	"github.com/fusabi-lang/fusabi/pkg/fusabi"
)

func sp() token.Span { return token.Span{} }

func ident(n string) *ast.Ident       { return &ast.Ident{Name: n, TSpan: sp()} }
func intLit(v int64) *ast.IntLit      { return &ast.IntLit{Value: v, TSpan: sp()} }
func strLit(s string) *ast.StringLit  { return &ast.StringLit{Value: s, TSpan: sp()} }
func field(t ast.Expr, f string) *ast.FieldAccess {
	return &ast.FieldAccess{Target: t, Field: f, TSpan: sp()}
}
func app(fn ast.Expr, args ...ast.Expr) *ast.App {
	return &ast.App{Fn: fn, Args: args, TSpan: sp()}
}

func run(t *testing.T, prog *ast.Program) value.Value {
	t.Helper()
	chunk, err := compiler.CompileProgram(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	engine := fusabi.New(fusabi.DefaultConfig())
	result, err := engine.RunChunk(chunk)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

func toIntSlice(v value.Value) ([]int64, error) {
	if !v.IsObj() {
		return nil, fmt.Errorf("not a List: %v", v)
	}
	lst, ok := v.AsObj().(*heap.ListObj)
	if !ok {
		return nil, fmt.Errorf("not a List: %T", v.AsObj())
	}
	elems := lst.ToSlice()
	out := make([]int64, len(elems))
	for i, e := range elems {
		if !e.IsInt() {
			return nil, fmt.Errorf("element %d is not an Int: %v", i, e)
		}
		out[i] = e.AsInt()
	}
	return out, nil
}

// TestListMapReentersClosure exercises spec.md §8 scenario 2: List.map
// drives its callback argument back through the VM via CallClosure once per
// element rather than evaluating it natively.
func TestListMapReentersClosure(t *testing.T) {
	// List.map (fun x -> x * 2) [1; 2; 3]
	doubler := &ast.Lambda{
		Params: []string{"x"},
		Body:   &ast.BinOp{Op: "*", Left: ident("x"), Right: intLit(2), TSpan: sp()},
		TSpan:  sp(),
	}
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("List"), "map"), doubler, &ast.ListLit{
			Elements: []ast.Expr{intLit(1), intLit(2), intLit(3)},
			TSpan:    sp(),
		}),
	}
	got := run(t, prog)
	lst, err := toIntSlice(got)
	if err != nil {
		t.Fatalf("result is not a List of Int: %v", err)
	}
	want := []int64{2, 4, 6}
	if len(lst) != len(want) {
		t.Fatalf("List.map result length = %d, want %d", len(lst), len(want))
	}
	for i := range want {
		if lst[i] != want[i] {
			t.Errorf("element %d = %d, want %d", i, lst[i], want[i])
		}
	}
}

func TestListFoldSum(t *testing.T) {
	// List.fold (fun acc x -> acc + x) 0 [1; 2; 3; 4]
	adder := &ast.Lambda{
		Params: []string{"acc", "x"},
		Body:   &ast.BinOp{Op: "+", Left: ident("acc"), Right: ident("x"), TSpan: sp()},
		TSpan:  sp(),
	}
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("List"), "fold"), adder, intLit(0), &ast.ListLit{
			Elements: []ast.Expr{intLit(1), intLit(2), intLit(3), intLit(4)},
			TSpan:    sp(),
		}),
	}
	got := run(t, prog)
	if !got.IsInt() || got.AsInt() != 10 {
		t.Fatalf("List.fold sum = %v, want 10", got)
	}
}

func TestOptionMapAndWithDefault(t *testing.T) {
	// Option.withDefault 0 (Option.map (fun x -> x + 1) (Option.some 41))
	incr := &ast.Lambda{
		Params: []string{"x"},
		Body:   &ast.BinOp{Op: "+", Left: ident("x"), Right: intLit(1), TSpan: sp()},
		TSpan:  sp(),
	}
	some := app(field(ident("Option"), "some"), intLit(41))
	mapped := app(field(ident("Option"), "map"), incr, some)
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Option"), "withDefault"), intLit(0), mapped),
	}
	got := run(t, prog)
	if !got.IsInt() || got.AsInt() != 42 {
		t.Fatalf("Option.map/withDefault result = %v, want 42", got)
	}
}

func TestResultMapPropagatesErr(t *testing.T) {
	// Result.isOk (Result.map (fun x -> x + 1) (Result.err "boom"))
	incr := &ast.Lambda{
		Params: []string{"x"},
		Body:   &ast.BinOp{Op: "+", Left: ident("x"), Right: intLit(1), TSpan: sp()},
		TSpan:  sp(),
	}
	failed := app(field(ident("Result"), "err"), strLit("boom"))
	mapped := app(field(ident("Result"), "map"), incr, failed)
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Result"), "isOk"), mapped),
	}
	got := run(t, prog)
	if !got.IsBool() || got.AsBool() {
		t.Fatalf("Result.map over an Err should stay an Err, got %v", got)
	}
}

func TestArrayMakeGetSet(t *testing.T) {
	// let a = Array.make 3 0 in
	// Array.set a 1 9;
	// Array.get a 1
	arr := app(field(ident("Array"), "make"), intLit(3), intLit(0))
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "a", Value: arr, TSpan: sp()},
		},
		Tail: &ast.Let{
			Name:  "_",
			Value: app(field(ident("Array"), "set"), ident("a"), intLit(1), intLit(9)),
			Body:  app(field(ident("Array"), "get"), ident("a"), intLit(1)),
			TSpan: sp(),
		},
	}
	got := run(t, prog)
	if !got.IsInt() || got.AsInt() != 9 {
		t.Fatalf("Array.get after Array.set = %v, want 9", got)
	}
}

func TestDictSetGetIsPersistent(t *testing.T) {
	// let d0 = Dict.empty () in
	// let d1 = Dict.set d0 "k" 1 in
	// Dict.containsKey d0 "k"  (should be false: d0 untouched)
	empty := app(field(ident("Dict"), "empty"))
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "d0", Value: empty, TSpan: sp()},
			{Name: "d1", Value: app(field(ident("Dict"), "set"), ident("d0"), strLit("k"), intLit(1)), TSpan: sp()},
		},
		Tail: app(field(ident("Dict"), "containsKey"), ident("d0"), strLit("k")),
	}
	got := run(t, prog)
	if !got.IsBool() || got.AsBool() {
		t.Fatalf("Dict.set must not mutate the original dict, got containsKey = %v", got)
	}
}

func TestJsonStringifyList(t *testing.T) {
	// Json.stringify [1; 2; 3]
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Json"), "stringify"), &ast.ListLit{
			Elements: []ast.Expr{intLit(1), intLit(2), intLit(3)},
			TSpan:    sp(),
		}),
	}
	got := run(t, prog)
	if got.Display() != "[1,2,3]" {
		t.Fatalf("Json.stringify result = %q, want [1,2,3]", got.Display())
	}
}

func TestStringSplitJoin(t *testing.T) {
	// String.join "-" (String.split "a,b,c" ",")
	split := app(field(ident("String"), "split"), strLit("a,b,c"), strLit(","))
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("String"), "join"), strLit("-"), split),
	}
	got := run(t, prog)
	if got.Display() != "a-b-c" {
		t.Fatalf("String.join/split round trip = %q, want a-b-c", got.Display())
	}
}
