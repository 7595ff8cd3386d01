package compiler

import (
	"fmt"

	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/bytecode"
)

// compileExpr lowers e, leaving exactly one Value on the stack net effect.
func (c *Compiler) compileExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.UnitLit:
		c.chunk.Emit(bytecode.OpLoadUnit, n.TSpan)
	case *ast.BoolLit:
		if n.Value {
			c.chunk.Emit(bytecode.OpLoadTrue, n.TSpan)
		} else {
			c.chunk.Emit(bytecode.OpLoadFalse, n.TSpan)
		}
	case *ast.IntLit:
		idx := c.chunk.AddConstant(bytecode.ConstOfInt(n.Value))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), n.TSpan)
	case *ast.FloatLit:
		idx := c.chunk.AddConstant(bytecode.ConstOfFloat(n.Value))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), n.TSpan)
	case *ast.StringLit:
		idx := c.chunk.AddConstant(bytecode.ConstOfString(n.Value))
		c.emitU16(bytecode.OpLoadConst, uint16(idx), n.TSpan)

	case *ast.Ident:
		c.compileIdent(n)

	case *ast.TupleLit:
		for _, el := range n.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emitU16(bytecode.OpMakeTuple, uint16(len(n.Elements)), n.TSpan)

	case *ast.ListLit:
		for _, el := range n.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emitU16(bytecode.OpMakeList, uint16(len(n.Elements)), n.TSpan)

	case *ast.ArrayLit:
		for _, el := range n.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emitU16(bytecode.OpMakeArray, uint16(len(n.Elements)), n.TSpan)

	case *ast.RecordLit:
		return c.compileRecordLit(n)

	case *ast.VariantLit:
		if n.Payload != nil {
			if err := c.compileExpr(n.Payload); err != nil {
				return err
			}
			c.chunk.Emit(bytecode.OpLoadTrue, n.TSpan)
		} else {
			c.chunk.Emit(bytecode.OpLoadFalse, n.TSpan)
		}
		idx := c.chunk.AddConstant(bytecode.ConstOfString(n.Ctor))
		c.emitU16(bytecode.OpMakeVariant, uint16(idx), n.TSpan)

	case *ast.FieldAccess:
		if err := c.compileExpr(n.Target); err != nil {
			return err
		}
		idx := c.chunk.AddConstant(bytecode.ConstOfString(n.Field))
		c.emitU16(bytecode.OpGetField, uint16(idx), n.TSpan)

	case *ast.IndexExpr:
		if err := c.compileExpr(n.Target); err != nil {
			return err
		}
		if err := c.compileExpr(n.Index); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpGetIndex, n.TSpan)

	case *ast.SetIndexExpr:
		if err := c.compileExpr(n.Target); err != nil {
			return err
		}
		if err := c.compileExpr(n.Index); err != nil {
			return err
		}
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpSetIndex, n.TSpan)

	case *ast.BinOp:
		return c.compileBinOp(n)

	case *ast.UnaryOp:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		switch n.Op {
		case "-":
			c.chunk.Emit(bytecode.OpNeg, n.TSpan)
		case "!":
			c.chunk.Emit(bytecode.OpNot, n.TSpan)
		default:
			return fmt.Errorf("compiler: unknown unary operator %q", n.Op)
		}

	case *ast.Lambda:
		return c.compileLambda(n, "")

	case *ast.App:
		return c.compileApp(n)

	case *ast.Pipe:
		// `a |> f` desugars to `f a` with no dedicated opcode (spec.md §4.6).
		return c.compileApp(&ast.App{Fn: n.Fn, Args: []ast.Expr{n.Value}, TSpan: n.TSpan})

	case *ast.Let:
		return c.compileLet(n)

	case *ast.If:
		return c.compileIf(n)

	case *ast.Match:
		return c.compileMatch(n)

	case *ast.CEBlock:
		desugared, err := desugarCE(n)
		if err != nil {
			return err
		}
		return c.compileExpr(desugared)

	default:
		return fmt.Errorf("compiler: unhandled expression node %T", e)
	}
	return nil
}

func (c *Compiler) compileIdent(n *ast.Ident) {
	if idx := c.resolveLocal(n.Name); idx != -1 {
		c.emitU16(bytecode.OpLoadLocal, uint16(idx), n.TSpan)
		return
	}
	if idx := c.resolveUpvalue(n.Name); idx != -1 {
		c.emitU16(bytecode.OpLoadUpvalue, uint16(idx), n.TSpan)
		return
	}
	nameIdx := c.chunk.AddConstant(bytecode.ConstOfString(n.Name))
	c.emitU16(bytecode.OpLoadGlobal, uint16(nameIdx), n.TSpan)
}

func (c *Compiler) compileRecordLit(n *ast.RecordLit) error {
	if n.Base != nil {
		if err := c.compileExpr(n.Base); err != nil {
			return err
		}
		for _, f := range n.Fields {
			if err := c.compileExpr(f.Value); err != nil {
				return err
			}
			idx := c.chunk.AddConstant(bytecode.ConstOfString(f.Name))
			c.emitU16(bytecode.OpExtendRecord, uint16(idx), n.TSpan)
		}
		return nil
	}

	for _, f := range n.Fields {
		if err := c.compileExpr(f.Value); err != nil {
			return err
		}
	}
	c.chunk.Emit(bytecode.OpMakeRecord, n.TSpan)
	c.chunk.EmitU16(uint16(len(n.Fields)))
	for _, f := range n.Fields {
		idx := c.chunk.AddConstant(bytecode.ConstOfString(f.Name))
		c.chunk.EmitU16(uint16(idx))
	}
	return nil
}

func (c *Compiler) compileBinOp(n *ast.BinOp) error {
	switch n.Op {
	case "::":
		// x :: xs  ==  [x] ++ xs
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		c.emitU16(bytecode.OpMakeList, 1, n.TSpan)
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpConcat, n.TSpan)
		return nil

	case "&&":
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpDup, n.TSpan)
		shortCircuit := c.emitJump(bytecode.OpJumpIfFalse, n.TSpan)
		c.chunk.Emit(bytecode.OpPop, n.TSpan)
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.patchJumpToHere(shortCircuit)
		return nil

	case "||":
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		c.chunk.Emit(bytecode.OpDup, n.TSpan)
		shortCircuit := c.emitJump(bytecode.OpJumpIfTrue, n.TSpan)
		c.chunk.Emit(bytecode.OpPop, n.TSpan)
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.patchJumpToHere(shortCircuit)
		return nil
	}

	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	switch n.Op {
	case "+":
		c.chunk.Emit(bytecode.OpAdd, n.TSpan)
	case "-":
		c.chunk.Emit(bytecode.OpSub, n.TSpan)
	case "*":
		c.chunk.Emit(bytecode.OpMul, n.TSpan)
	case "/":
		c.chunk.Emit(bytecode.OpDiv, n.TSpan)
	case "%":
		c.chunk.Emit(bytecode.OpMod, n.TSpan)
	case "++":
		c.chunk.Emit(bytecode.OpConcat, n.TSpan)
	case "==":
		c.chunk.Emit(bytecode.OpEq, n.TSpan)
	case "!=":
		c.chunk.Emit(bytecode.OpNe, n.TSpan)
	case "<":
		c.chunk.Emit(bytecode.OpLt, n.TSpan)
	case "<=":
		c.chunk.Emit(bytecode.OpLe, n.TSpan)
	case ">":
		c.chunk.Emit(bytecode.OpGt, n.TSpan)
	case ">=":
		c.chunk.Emit(bytecode.OpGe, n.TSpan)
	default:
		return fmt.Errorf("compiler: unknown binary operator %q", n.Op)
	}
	return nil
}

// compileLambda compiles n into a fresh nested chunk and emits
// OP_MAKE_CLOSURE in the enclosing chunk. name, if non-empty, is used as
// the emitted chunk's debug name (e.g. for a `let rec f = fun x -> ...`
// binding); otherwise an anonymous name is generated.
func (c *Compiler) compileLambda(n *ast.Lambda, name string) error {
	if name == "" {
		name = c.nextAnonName("lambda")
	} else {
		name = c.nextAnonName(name)
	}

	child := c.newChild(name)
	child.beginScope()
	for _, p := range n.Params {
		child.addLocal(p)
	}
	child.chunk.Arity = len(n.Params)

	if err := child.compileExpr(n.Body); err != nil {
		return err
	}
	child.chunk.Emit(bytecode.OpReturn, n.Body.Span())
	child.chunk.LocalCount = len(child.locals)
	if child.chunk.LocalCount < child.chunk.Arity {
		child.chunk.LocalCount = child.chunk.Arity
	}

	childName := c.chunk.AddNestedChunk(child.chunk)
	idx := c.chunk.AddConstant(bytecode.ConstOfString(childName))
	c.emitU16(bytecode.OpMakeClosure, uint16(idx), n.TSpan)
	return nil
}

func (c *Compiler) compileApp(n *ast.App) error {
	if err := c.compileExpr(n.Fn); err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	c.emitU16(bytecode.OpCall, uint16(len(n.Args)), n.TSpan)
	return nil
}

func (c *Compiler) compileLet(n *ast.Let) error {
	// `let rec f = fun ... -> ...` needs f's own local slot reserved before
	// compiling its value so self-recursive calls inside the lambda body
	// resolve as an upvalue back to this slot.
	c.beginScope()

	if n.Rec && n.Pattern == nil {
		idx := c.addLocal(n.Name)
		c.chunk.Emit(bytecode.OpLoadUnit, n.TSpan)
		if lam, ok := n.Value.(*ast.Lambda); ok {
			if err := c.compileLambda(lam, n.Name); err != nil {
				return err
			}
		} else if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.emitU16(bytecode.OpStoreLocal, uint16(idx), n.TSpan)
		c.chunk.Emit(bytecode.OpPop, n.TSpan)
	} else if n.Pattern != nil {
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		if err := c.destructureIntoLocals(n.Pattern, n.TSpan); err != nil {
			return err
		}
	} else {
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.addLocal(n.Name)
	}

	if err := c.compileExpr(n.Body); err != nil {
		return err
	}

	// The body's result must survive the scope-exit cleanup: stash it below
	// the locals being discarded, close any that were captured by a nested
	// lambda, then discard the rest via POP_BELOW.
	c.endScopeKeepTop(n.TSpan)
	return nil
}

func (c *Compiler) compileIf(n *ast.If) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	elseJump := c.emitJump(bytecode.OpJumpIfFalse, n.TSpan)
	if err := c.compileExpr(n.Then); err != nil {
		return err
	}
	endJump := c.emitJump(bytecode.OpJump, n.TSpan)
	c.patchJumpToHere(elseJump)
	if n.Else != nil {
		if err := c.compileExpr(n.Else); err != nil {
			return err
		}
	} else {
		c.chunk.Emit(bytecode.OpLoadUnit, n.TSpan)
	}
	c.patchJumpToHere(endJump)
	return nil
}
