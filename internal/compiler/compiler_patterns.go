package compiler

import (
	"fmt"
	"sort"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/bytecode"
	"github.com/fusabi-lang/fusabi/internal/token"
)

// loader emits code that pushes the value a pattern (or sub-pattern) tests
// or binds against. Every call re-derives the value from scratch — via a
// fresh OP_LOAD_LOCAL plus whatever chain of consuming accessor opcodes
// reaches the sub-fragment in question — rather than threading a value
// already sitting on the stack through to a second use. This lets the test
// pass (compileTest) and the bind pass (bindPattern) walk the same pattern
// tree independently, each issuing however many loads it needs, without the
// two passes having to agree on a shared stack layout.
type loader func()

// compileMatch lowers a match expression to a left-to-right decision tree:
// each arm's pattern compiles to a structural test (compileTest) guarding a
// jump to the next arm, followed — once matched — by binding extraction
// (bindPattern), an optional guard re-test, and the arm body. An arm whose
// guard fails falls through to the next arm exactly like a failed
// structural test. Falling off the last arm emits OP_MATCH_FAIL.
func (c *Compiler) compileMatch(n *ast.Match) error {
	if err := c.compileExpr(n.Scrutinee); err != nil {
		return err
	}

	c.beginScope()
	scrutineeIdx := c.addLocal(c.nextAnonName("$match"))
	load := func() { c.emitU16(bytecode.OpLoadLocal, uint16(scrutineeIdx), n.TSpan) }

	var endJumps []int
	for _, arm := range n.Arms {
		armSpan := arm.Pattern.Span()

		if err := c.compileTest(arm.Pattern, load, armSpan); err != nil {
			return err
		}
		nextArm := c.emitJump(bytecode.OpJumpIfFalse, armSpan)

		c.beginScope()
		c.bindPattern(arm.Pattern, load, armSpan)

		if arm.Guard != nil {
			if err := c.compileExpr(arm.Guard); err != nil {
				return err
			}
			guardFail := c.emitJump(bytecode.OpJumpIfFalse, arm.Guard.Span())

			if err := c.compileExpr(arm.Body); err != nil {
				return err
			}
			armLocals, armDepth := append([]localVar(nil), c.locals...), c.scopeDepth
			c.endScopeKeepTop(arm.Body.Span())
			endJumps = append(endJumps, c.emitJump(bytecode.OpJump, arm.Body.Span()))

			c.patchJumpToHere(guardFail)
			c.locals, c.scopeDepth = armLocals, armDepth
			c.endScope(arm.Guard.Span()) // guard failed: nothing to keep, unwind the bound names
			c.patchJumpToHere(nextArm)
			continue
		}

		if err := c.compileExpr(arm.Body); err != nil {
			return err
		}
		c.endScopeKeepTop(arm.Body.Span())
		endJumps = append(endJumps, c.emitJump(bytecode.OpJump, arm.Body.Span()))
		c.patchJumpToHere(nextArm)
	}

	load()
	c.chunk.Emit(bytecode.OpMatchFail, n.TSpan)

	for _, j := range endJumps {
		c.patchJumpToHere(j)
	}
	c.endScopeKeepTop(n.TSpan)
	return nil
}

// compileTest emits code that leaves a single Bool on the stack: whether
// the value load() produces has the shape pat describes. It never binds
// names — BindPat and WildcardPat always test true, deferring to
// bindPattern for extraction.
func (c *Compiler) compileTest(pat ast.Pattern, load loader, span token.Span) error {
	switch p := pat.(type) {
	case *ast.WildcardPat, *ast.BindPat:
		c.chunk.Emit(bytecode.OpLoadTrue, span)
		return nil

	case *ast.LiteralPat:
		load()
		if err := c.emitLiteralConst(p.Value, span); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpEq, span)
		return nil

	case *ast.TuplePat:
		if len(p.Elements) == 0 {
			c.chunk.Emit(bytecode.OpLoadTrue, span)
			return nil
		}
		for i, sub := range p.Elements {
			elemLoad := tupleElemLoader(load, i, span, c)
			if err := c.compileTest(sub, elemLoad, span); err != nil {
				return err
			}
			if i > 0 {
				c.chunk.Emit(bytecode.OpAnd, span)
			}
		}
		return nil

	case *ast.ListPat:
		return c.compileListTest(p.Elements, p.Rest, load, span)

	case *ast.RecordPat:
		names := sortedFieldNames(p.Fields)
		if len(names) == 0 {
			c.chunk.Emit(bytecode.OpLoadTrue, span)
			return nil
		}
		for i, name := range names {
			fieldLoad := fieldLoader(load, name, span, c)
			if err := c.compileTest(p.Fields[name], fieldLoad, span); err != nil {
				return err
			}
			if i > 0 {
				c.chunk.Emit(bytecode.OpAnd, span)
			}
		}
		return nil

	case *ast.VariantPat:
		load()
		idx := c.chunk.AddConstant(bytecode.ConstOfString(p.Ctor))
		c.emitU16(bytecode.OpTagEq, uint16(idx), span)
		if p.Payload != nil {
			payloadLoad := variantPayloadLoader(load, span, c)
			if err := c.compileTest(p.Payload, payloadLoad, span); err != nil {
				return err
			}
			c.chunk.Emit(bytecode.OpAnd, span)
		}
		return nil

	default:
		return fmt.Errorf("compiler: unhandled pattern node %T", pat)
	}
}

// compileListTest walks a ListPat's fixed prefix one cons cell at a time:
// at each element it tests the scrutinee isn't nil, tests the head against
// that element's sub-pattern, and recurses into the tail for the rest.
// Reaching the end of the fixed prefix either tests the remaining tail
// against Rest (cons pattern) or requires it be nil (closed list pattern).
func (c *Compiler) compileListTest(elements []ast.Pattern, rest ast.Pattern, load loader, span token.Span) error {
	if len(elements) == 0 {
		if rest == nil {
			load()
			c.chunk.Emit(bytecode.OpListIsNil, span)
			return nil
		}
		return c.compileTest(rest, load, span)
	}

	load()
	c.chunk.Emit(bytecode.OpListIsNil, span)
	c.chunk.Emit(bytecode.OpNot, span)

	headLoad := listHeadLoader(load, span, c)
	if err := c.compileTest(elements[0], headLoad, span); err != nil {
		return err
	}
	c.chunk.Emit(bytecode.OpAnd, span)

	tailLoad := listTailLoader(load, span, c)
	if err := c.compileListTest(elements[1:], rest, tailLoad, span); err != nil {
		return err
	}
	c.chunk.Emit(bytecode.OpAnd, span)
	return nil
}

// bindPattern walks pat a second time, this time extracting every BindPat
// leaf into a fresh local (claimed in place, the way a lambda parameter or
// a plain `let` claims the value already sitting on the stack — see
// addLocal's callers elsewhere in this package). Called only after
// compileTest has already confirmed pat matches.
func (c *Compiler) bindPattern(pat ast.Pattern, load loader, span token.Span) {
	switch p := pat.(type) {
	case *ast.WildcardPat, *ast.LiteralPat:
		// nothing to bind

	case *ast.BindPat:
		load()
		c.addLocal(p.Name)

	case *ast.TuplePat:
		for i, sub := range p.Elements {
			c.bindPattern(sub, tupleElemLoader(load, i, span, c), span)
		}

	case *ast.ListPat:
		c.bindListPattern(p.Elements, p.Rest, load, span)

	case *ast.RecordPat:
		for _, name := range sortedFieldNames(p.Fields) {
			c.bindPattern(p.Fields[name], fieldLoader(load, name, span, c), span)
		}

	case *ast.VariantPat:
		if p.Payload != nil {
			c.bindPattern(p.Payload, variantPayloadLoader(load, span, c), span)
		}
	}
}

func (c *Compiler) bindListPattern(elements []ast.Pattern, rest ast.Pattern, load loader, span token.Span) {
	if len(elements) == 0 {
		if rest != nil {
			c.bindPattern(rest, load, span)
		}
		return
	}
	c.bindPattern(elements[0], listHeadLoader(load, span, c), span)
	c.bindListPattern(elements[1:], rest, listTailLoader(load, span, c), span)
}

// destructureIntoLocals binds an irrefutable let-pattern (`let (a, b) = v
// in ...`) to fresh locals in the enclosing scope. The value is already on
// the stack from compiling v; it's claimed as a scratch local the same way
// the match scrutinee is, so every leaf's loader can reload it.
func (c *Compiler) destructureIntoLocals(pattern ast.Pattern, span token.Span) error {
	tempIdx := c.addLocal(c.nextAnonName("$let"))
	load := func() { c.emitU16(bytecode.OpLoadLocal, uint16(tempIdx), span) }
	c.bindPattern(pattern, load, span)
	return nil
}

// destructureIntoGlobals is destructureIntoLocals' top-level-let
// counterpart: every BindPat leaf becomes a global rather than a local, so
// the embedding host can read it back by name via Engine.GetGlobal.
func (c *Compiler) destructureIntoGlobals(pattern ast.Pattern, span token.Span) error {
	tempIdx := c.addLocal(c.nextAnonName("$let"))
	load := func() { c.emitU16(bytecode.OpLoadLocal, uint16(tempIdx), span) }
	c.bindPatternGlobal(pattern, load, span)
	return nil
}

func (c *Compiler) bindPatternGlobal(pat ast.Pattern, load loader, span token.Span) {
	switch p := pat.(type) {
	case *ast.WildcardPat, *ast.LiteralPat:
		// nothing to bind

	case *ast.BindPat:
		load()
		nameIdx := c.chunk.AddConstant(bytecode.ConstOfString(p.Name))
		c.emitU16(bytecode.OpStoreGlobal, uint16(nameIdx), span)
		c.chunk.Emit(bytecode.OpPop, span)

	case *ast.TuplePat:
		for i, sub := range p.Elements {
			c.bindPatternGlobal(sub, tupleElemLoader(load, i, span, c), span)
		}

	case *ast.ListPat:
		c.bindListPatternGlobal(p.Elements, p.Rest, load, span)

	case *ast.RecordPat:
		for _, name := range sortedFieldNames(p.Fields) {
			c.bindPatternGlobal(p.Fields[name], fieldLoader(load, name, span, c), span)
		}

	case *ast.VariantPat:
		if p.Payload != nil {
			c.bindPatternGlobal(p.Payload, variantPayloadLoader(load, span, c), span)
		}
	}
}

func (c *Compiler) bindListPatternGlobal(elements []ast.Pattern, rest ast.Pattern, load loader, span token.Span) {
	if len(elements) == 0 {
		if rest != nil {
			c.bindPatternGlobal(rest, load, span)
		}
		return
	}
	c.bindPatternGlobal(elements[0], listHeadLoader(load, span, c), span)
	c.bindListPatternGlobal(elements[1:], rest, listTailLoader(load, span, c), span)
}

// --- loader constructors --------------------------------------------------
//
// Each of these wraps a parent loader with one more consuming accessor
// opcode. They're free functions (not Compiler methods) so they can take c
// explicitly and stay simple closures over (load, span, c) without capturing
// a stale receiver.

func tupleElemLoader(load loader, i int, span token.Span, c *Compiler) loader {
	return func() {
		load()
		c.emitU16(bytecode.OpTupleGet, uint16(i), span)
	}
}

func fieldLoader(load loader, name string, span token.Span, c *Compiler) loader {
	return func() {
		load()
		idx := c.chunk.AddConstant(bytecode.ConstOfString(name))
		c.emitU16(bytecode.OpFieldMatch, uint16(idx), span)
	}
}

func listHeadLoader(load loader, span token.Span, c *Compiler) loader {
	return func() {
		load()
		c.chunk.Emit(bytecode.OpListHead, span)
	}
}

func listTailLoader(load loader, span token.Span, c *Compiler) loader {
	return func() {
		load()
		c.chunk.Emit(bytecode.OpListTail, span)
	}
}

func variantPayloadLoader(load loader, span token.Span, c *Compiler) loader {
	return func() {
		load()
		c.chunk.Emit(bytecode.OpVariantPayload, span)
	}
}

func sortedFieldNames(fields map[string]ast.Pattern) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emitLiteralConst pushes a LiteralPat's value as a constant-pool load,
// mirroring compileExpr's literal cases.
func (c *Compiler) emitLiteralConst(v interface{}, span token.Span) error {
	switch lit := v.(type) {
	case nil:
		c.chunk.Emit(bytecode.OpLoadUnit, span)
	case bool:
		if lit {
			c.chunk.Emit(bytecode.OpLoadTrue, span)
		} else {
			c.chunk.Emit(bytecode.OpLoadFalse, span)
		}
	case int64:
		idx := c.chunk.AddConstant(bytecode.ConstOfInt(lit))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), span)
	case float64:
		idx := c.chunk.AddConstant(bytecode.ConstOfFloat(lit))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), span)
	case string:
		idx := c.chunk.AddConstant(bytecode.ConstOfString(lit))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), span)
	default:
		return fmt.Errorf("compiler: unsupported literal pattern value %T", v)
	}
	return nil
}
