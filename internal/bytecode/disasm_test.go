package bytecode

import (
	"strings"
	"testing"

	"github.com/fusabi-lang/fusabi/internal/token"
)

func TestDisassembleListsEachInstruction(t *testing.T) {
	c := sampleChunk()
	out := Disassemble(c)

	if !strings.Contains(out, "LOAD_CONST") {
		t.Fatalf("disassembly missing LOAD_CONST mnemonic:\n%s", out)
	}
	if !strings.Contains(out, "RETURN") {
		t.Fatalf("disassembly missing RETURN mnemonic:\n%s", out)
	}
}

func TestDisassembleHandlesNestedChunks(t *testing.T) {
	child := NewChunk("lambda$0", "sample.fsx")
	child.Emit(OpLoadUnit, token.Span{})
	child.Emit(OpReturn, token.Span{})

	parent := NewChunk("main", "sample.fsx")
	parent.AddNestedChunk(child)
	parent.Emit(OpReturn, token.Span{})

	out := Disassemble(parent)
	if !strings.Contains(out, "main") {
		t.Fatalf("disassembly should label the parent chunk:\n%s", out)
	}
}
