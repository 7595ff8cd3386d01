package fusabi_test

import (
	"fmt"
	"testing"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/ferr"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/token"
	"github.com/fusabi-lang/fusabi/internal/value"
	"github.com/fusabi-lang/fusabi/pkg/fusabi"
)

func sp() token.Span { return token.Span{} }

func ident(n string) *ast.Ident  { return &ast.Ident{Name: n, TSpan: sp()} }
func intLit(v int64) *ast.IntLit { return &ast.IntLit{Value: v, TSpan: sp()} }

// stubFront is a minimal FrontEnd standing in for the lexer/parser this
// module deliberately omits (spec.md §1's Out of scope): it maps a small
// fixed set of source strings directly to pre-built ASTs, enough to drive
// Engine.Eval/LoadSource end to end without ever parsing real text.
func stubFront(programs map[string]*ast.Program) fusabi.FrontEnd {
	return func(source string) (*ast.Program, error) {
		prog, ok := programs[source]
		if !ok {
			return nil, fmt.Errorf("stubFront: no program registered for %q", source)
		}
		return prog, nil
	}
}

func TestEvalReturnsResult(t *testing.T) {
	front := stubFront(map[string]*ast.Program{
		"one": {File: "one.fsx", Tail: intLit(1)},
	})
	engine := fusabi.New(fusabi.DefaultConfig())

	got, err := engine.Eval("one", front)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 1 {
		t.Fatalf("Eval result = %v, want 1", got)
	}
}

func TestEvalSharesEngineGlobals(t *testing.T) {
	// Two separate Eval calls against the same Engine: the second can see a
	// global the first one defined, since Script.eval shares the calling
	// Engine's own globals (spec.md §9 Open Question, resolved in DESIGN.md).
	front := stubFront(map[string]*ast.Program{
		"define": {
			File: "define.fsx",
			Lets: []*ast.LetDecl{
				{Name: "favorite", Value: intLit(7), TSpan: sp()},
			},
			Tail: ident("favorite"),
		},
		"use": {File: "use.fsx", Tail: ident("favorite")},
	})
	engine := fusabi.New(fusabi.DefaultConfig())

	if _, err := engine.Eval("define", front); err != nil {
		t.Fatalf("first Eval failed: %v", err)
	}
	got, err := engine.Eval("use", front)
	if err != nil {
		t.Fatalf("second Eval failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 7 {
		t.Fatalf("second Eval result = %v, want 7 (globals not shared across Eval calls)", got)
	}
}

func TestRegisterHostAndBind(t *testing.T) {
	engine := fusabi.New(fusabi.DefaultConfig())
	engine.RegisterHost("host.double", 1, func(_ hostfn.Caller, args []value.Value) (value.Value, error) {
		return value.IntVal(args[0].AsInt() * 2), nil
	})
	engine.Bind("double", "host.double", 1)

	front := stubFront(map[string]*ast.Program{
		"call": {File: "call.fsx", Tail: &ast.App{Fn: ident("double"), Args: []ast.Expr{intLit(21)}, TSpan: sp()}},
	})

	got, err := engine.Eval("call", front)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 42 {
		t.Fatalf("bound host function result = %v, want 42", got)
	}
}

func TestSetGlobalGetGlobal(t *testing.T) {
	engine := fusabi.New(fusabi.DefaultConfig())
	engine.SetGlobal("answer", value.IntVal(42))

	got, ok := engine.GetGlobal("answer")
	if !ok {
		t.Fatalf("GetGlobal did not find a value set via SetGlobal")
	}
	if !got.IsInt() || got.AsInt() != 42 {
		t.Fatalf("GetGlobal = %v, want 42", got)
	}

	if _, ok := engine.GetGlobal("missing"); ok {
		t.Fatalf("GetGlobal reported a value for a name that was never set")
	}
}

func TestCallReentersClosureGlobal(t *testing.T) {
	front := stubFront(map[string]*ast.Program{
		"define": {
			File: "define.fsx",
			Lets: []*ast.LetDecl{
				{Name: "triple", Value: &ast.Lambda{
					Params: []string{"x"},
					Body:   &ast.BinOp{Op: "*", Left: ident("x"), Right: intLit(3), TSpan: sp()},
					TSpan:  sp(),
				}, TSpan: sp()},
			},
			Tail: ident("triple"),
		},
	})
	engine := fusabi.New(fusabi.DefaultConfig())

	if _, err := engine.Eval("define", front); err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	triple, ok := engine.GetGlobal("triple")
	if !ok {
		t.Fatalf("GetGlobal did not find the defined closure")
	}

	got, err := engine.Call(triple, value.IntVal(14))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 42 {
		t.Fatalf("Call result = %v, want 42", got)
	}
}

// fakeLoader resolves a fixed in-memory set of "files" keyed by their own
// contents, standing in for OSFileLoader in tests that never touch a disk.
type fakeLoader struct {
	files map[string]string
}

func (f *fakeLoader) Resolve(path string) (string, string, error) {
	src, ok := f.files[path]
	if !ok {
		return "", "", fmt.Errorf("fakeLoader: no such path %q", path)
	}
	return path, src, nil
}

func TestLoadSourceResolvesAndEvaluatesIntoSharedGlobals(t *testing.T) {
	engine := fusabi.New(fusabi.DefaultConfig())
	engine.SetLoader(&fakeLoader{files: map[string]string{
		"lib": "lib-source",
	}})

	front := stubFront(map[string]*ast.Program{
		"lib-source": {
			File: "lib.fsx",
			Lets: []*ast.LetDecl{
				{Name: "fromLib", Value: intLit(99), TSpan: sp()},
			},
		},
	})

	canonical, err := engine.LoadSource("lib", front)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if canonical != "lib" {
		t.Fatalf("LoadSource canonical path = %q, want %q", canonical, "lib")
	}

	got, ok := engine.GetGlobal("fromLib")
	if !ok || !got.IsInt() || got.AsInt() != 99 {
		t.Fatalf("loaded file's top-level let did not land in the Engine's globals: %v, %v", got, ok)
	}
}

func TestLoadSourceDetectsCycle(t *testing.T) {
	engine := fusabi.New(fusabi.DefaultConfig())
	engine.SetLoader(&fakeLoader{files: map[string]string{
		"a": "a",
		"b": "b",
	}})

	var front fusabi.FrontEnd
	front = func(source string) (*ast.Program, error) {
		switch source {
		case "a":
			if _, err := engine.LoadSource("b", front); err != nil {
				return nil, err
			}
			return &ast.Program{File: "a.fsx", Tail: intLit(1)}, nil
		case "b":
			if _, err := engine.LoadSource("a", front); err != nil {
				return nil, err
			}
			return &ast.Program{File: "b.fsx", Tail: intLit(2)}, nil
		default:
			return nil, fmt.Errorf("unexpected source %q", source)
		}
	}

	_, err := engine.LoadSource("a", front)
	if err == nil {
		t.Fatalf("expected a cycle error loading a -> b -> a")
	}
	if _, ok := err.(*ferr.CircularLoad); !ok {
		t.Fatalf("expected *ferr.CircularLoad, got %T: %v", err, err)
	}
}
