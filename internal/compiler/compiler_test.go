package compiler

import (
	"testing"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/token"
)

func span() token.Span { return token.Span{} }

func ident(name string) *ast.Ident { return &ast.Ident{Name: name, TSpan: span()} }
func intLit(v int64) *ast.IntLit   { return &ast.IntLit{Value: v, TSpan: span()} }

func TestCompileProgramEmitsReturn(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: intLit(1),
	}
	chunk, err := CompileProgram(prog)
	if err != nil {
		t.Fatalf("CompileProgram failed: %v", err)
	}
	if len(chunk.Code) == 0 {
		t.Fatalf("expected non-empty bytecode")
	}
	if len(chunk.Constants) != 1 || chunk.Constants[0].I != 1 {
		t.Fatalf("expected constant pool [1], got %+v", chunk.Constants)
	}
}

func TestCompileProgramEmptyTailLoadsUnit(t *testing.T) {
	prog := &ast.Program{File: "t.fsx"}
	chunk, err := CompileProgram(prog)
	if err != nil {
		t.Fatalf("CompileProgram failed: %v", err)
	}
	if len(chunk.Code) < 2 {
		t.Fatalf("expected at least LOAD_UNIT + RETURN, got %d bytes", len(chunk.Code))
	}
}

func TestCompileTopLevelLetRegistersGlobal(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "x", Value: intLit(5), TSpan: span()},
		},
		Tail: ident("x"),
	}
	chunk, err := CompileProgram(prog)
	if err != nil {
		t.Fatalf("CompileProgram failed: %v", err)
	}
	if len(chunk.Constants) < 2 {
		t.Fatalf("expected constants for the literal 5 and the global name \"x\", got %+v", chunk.Constants)
	}
}

func TestCompileLambdaProducesNestedChunk(t *testing.T) {
	lambda := &ast.Lambda{
		Params: []string{"n"},
		Body:   ident("n"),
		TSpan:  span(),
	}
	prog := &ast.Program{
		File: "t.fsx",
		Lets: []*ast.LetDecl{
			{Name: "identity", Value: lambda, TSpan: span()},
		},
		Tail: &ast.App{Fn: ident("identity"), Args: []ast.Expr{intLit(9)}, TSpan: span()},
	}
	chunk, err := CompileProgram(prog)
	if err != nil {
		t.Fatalf("CompileProgram failed: %v", err)
	}
	if len(chunk.NestedChunks) != 1 {
		t.Fatalf("expected one nested chunk for the lambda, got %d", len(chunk.NestedChunks))
	}
	if chunk.NestedChunks[0].Arity != 1 {
		t.Fatalf("nested chunk arity = %d, want 1", chunk.NestedChunks[0].Arity)
	}
}
