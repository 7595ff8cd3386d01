// Package compiler lowers the typed AST (internal/ast) into bytecode
// (internal/bytecode). Scope resolution — the three-tier local/upvalue/
// global lookup and the beginScope/endScope/addLocal/resolveUpvalue
// machinery — is grounded on the teacher's compiler scope-resolution
// design (internal/vm/compiler_scope.go in the teacher tree), adapted from
// its statement-oriented AST to Fusabi's expression-oriented one: every
// compile call here pushes exactly one value and every scope exit emits
// the matching POP/CLOSE_UPVALUE cleanup.
package compiler

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/token"
)

type localVar struct {
	name     string
	depth    int
	captured bool
}

// Compiler compiles one function body (the top-level script, or one
// Lambda) into a bytecode.Chunk. Nested lambdas get their own Compiler
// chained via enclosing, mirroring the teacher's nested-scope compiler
// chain used to resolve upvalues across lambda boundaries.
type Compiler struct {
	enclosing *Compiler
	chunk     *bytecode.Chunk

	locals     []localVar
	scopeDepth int

	anonCounter *int // shared across the whole compiler chain, for unique nested-chunk names
}

// New creates the root compiler for a whole program (script-level chunk,
// arity 0).
func New(file string) *Compiler {
	counter := 0
	return &Compiler{
		chunk:       bytecode.NewChunk("", file),
		anonCounter: &counter,
	}
}

// CompileProgram compiles a full program: each top-level let becomes a
// global binding (so the embedding host can read it back via
// Engine.GetGlobal), and the trailing expression becomes the script's
// result.
func CompileProgram(prog *ast.Program) (*bytecode.Chunk, error) {
	c := New(prog.File)

	for _, decl := range prog.Lets {
		if err := c.compileTopLevelLet(decl); err != nil {
			return nil, err
		}
	}

	if prog.Tail != nil {
		if err := c.compileExpr(prog.Tail); err != nil {
			return nil, err
		}
	} else {
		c.chunk.Emit(bytecode.OpLoadUnit, prog.TSpan)
	}
	c.chunk.Emit(bytecode.OpReturn, prog.TSpan)

	return c.chunk, nil
}

func (c *Compiler) compileTopLevelLet(decl *ast.LetDecl) error {
	if err := c.compileExpr(decl.Value); err != nil {
		return err
	}

	if decl.Pattern != nil {
		// Destructuring top-level let: bind every name the pattern
		// introduces as its own global, reading back out of the value
		// already on the stack via the same field/tuple-get opcodes the
		// match compiler uses.
		return c.destructureIntoGlobals(decl.Pattern, decl.TSpan)
	}

	nameIdx := c.chunk.AddConstant(bytecode.ConstOfString(decl.Name))
	c.emitU16(bytecode.OpStoreGlobal, uint16(nameIdx), decl.TSpan)
	c.chunk.Emit(bytecode.OpPop, decl.TSpan)
	return nil
}

// --- scope management ---------------------------------------------------

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope pops every local declared in the scope being exited, first
// closing upvalues for locals a nested lambda captured (spec.md §4.5: a
// closed-over slot must survive its frame's return).
func (c *Compiler) endScope(span token.Span) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		idx := len(c.locals) - 1
		if last.captured {
			c.emitU16(bytecode.OpCloseUpvalue, uint16(idx), span)
		}
		c.chunk.Emit(bytecode.OpPop, span)
		c.locals = c.locals[:idx]
	}
}

// endScopeKeepTop is endScope's counterpart for scopes whose last pushed
// value (the Let body's result, or a matched arm's body result) must
// survive the cleanup: it stashes that value below the locals being
// discarded via POP_BELOW instead of plain-popping them off the top.
func (c *Compiler) endScopeKeepTop(span token.Span) {
	firstIdx, nLocals, anyCaptured := -1, 0, false
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth == c.scopeDepth; i-- {
		nLocals++
		firstIdx = i
		if c.locals[i].captured {
			anyCaptured = true
		}
	}
	c.scopeDepth--
	if nLocals == 0 {
		return
	}
	if anyCaptured {
		c.emitU16(bytecode.OpCloseUpvalue, uint16(firstIdx), span)
	}
	c.emitU16(bytecode.OpPopBelow, uint16(nLocals), span)
	c.locals = c.locals[:len(c.locals)-nLocals]
}

func (c *Compiler) addLocal(name string) int {
	c.locals = append(c.locals, localVar{name: name, depth: c.scopeDepth})
	return len(c.locals) - 1
}

// resolveLocal searches this compiler's own locals only, most-recently
// declared first so shadowing resolves correctly.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue walks the enclosing compiler chain looking for name as a
// local or an already-resolved upvalue, adding an UpvalueDesc to this
// compiler's chunk and deduplicating by (IsLocal, Index).
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if idx := c.enclosing.resolveLocal(name); idx != -1 {
		c.enclosing.locals[idx].captured = true
		return c.addUpvalue(bytecode.UpvalueDesc{IsLocal: true, Index: idx})
	}
	if idx := c.enclosing.resolveUpvalue(name); idx != -1 {
		return c.addUpvalue(bytecode.UpvalueDesc{IsLocal: false, Index: idx})
	}
	return -1
}

func (c *Compiler) addUpvalue(desc bytecode.UpvalueDesc) int {
	for i, existing := range c.chunk.Upvalues {
		if existing == desc {
			return i
		}
	}
	c.chunk.Upvalues = append(c.chunk.Upvalues, desc)
	return len(c.chunk.Upvalues) - 1
}

func (c *Compiler) nextAnonName(prefix string) string {
	*c.anonCounter++
	return fmt.Sprintf("%s$%d", prefix, *c.anonCounter)
}

// newChild creates a Compiler for a nested Lambda body.
func (c *Compiler) newChild(name string) *Compiler {
	return &Compiler{
		enclosing:   c,
		chunk:       bytecode.NewChunk(name, c.chunk.File),
		anonCounter: c.anonCounter,
	}
}

// emitU16 emits op followed by a two-byte big-endian operand.
func (c *Compiler) emitU16(op bytecode.Op, operand uint16, span token.Span) {
	c.chunk.Emit(op, span)
	c.chunk.EmitU16(operand)
}

// emitJump emits a jump opcode with a placeholder operand and returns the
// operand's byte offset, to be back-patched once the target is known.
func (c *Compiler) emitJump(op bytecode.Op, span token.Span) int {
	c.chunk.Emit(op, span)
	offset := len(c.chunk.Code)
	c.chunk.EmitU16(0)
	return offset
}

// patchJumpToHere back-patches the jump operand at offset to target the
// current end of the instruction stream.
func (c *Compiler) patchJumpToHere(offset int) {
	c.chunk.PatchU16(offset, uint16(len(c.chunk.Code)))
}
