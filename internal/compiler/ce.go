package compiler

import (
	"github.com/fusabi-lang/fusabi/internal/ast"
	"github.com/fusabi-lang/fusabi/internal/token"
)

// desugarCE rewrites a computation-expression block into plain application
// expressions over its builder's Bind/Return/ReturnFrom/Yield/Combine/Zero
// methods (spec.md §4.6), so the compiler never needs a dedicated opcode
// for do-notation: the rewritten tree reaches compileExpr as ordinary
// FieldAccess + App nodes, the builder being just a record of closures.
func desugarCE(block *ast.CEBlock) (ast.Expr, error) {
	return desugarCEStmts(block.Stmts, block.Builder, block.TSpan)
}

// desugarCEStmts turns one CE statement into a call on the matching builder
// method, recursing into the remaining statements for the continuation.
// builderMethod(e, "Bind", fun x -> rest) for `let! x = e`, `Combine(e,
// rest)` for a plain expression statement followed by more, and so on,
// following the standard F# computation-expression translation rules.
func desugarCEStmts(stmts []ast.CEStmt, builder ast.Expr, span token.Span) (ast.Expr, error) {
	if len(stmts) == 0 {
		return builderCall(builder, "Zero", nil, span), nil
	}

	stmt := stmts[0]
	rest := stmts[1:]

	switch stmt.Kind {
	case ast.CELet:
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		lambda := &ast.Lambda{Params: []string{stmt.Name}, Body: cont, TSpan: stmt.Value.Span()}
		return builderCall(builder, "Bind", []ast.Expr{stmt.Value, lambda}, span), nil

	case ast.CEDo:
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		lambda := &ast.Lambda{Params: []string{"_"}, Body: cont, TSpan: stmt.Value.Span()}
		return builderCall(builder, "Bind", []ast.Expr{stmt.Value, lambda}, span), nil

	case ast.CEReturn:
		returned := builderCall(builder, "Return", []ast.Expr{stmt.Value}, span)
		if len(rest) == 0 {
			return returned, nil
		}
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		return builderCall(builder, "Combine", []ast.Expr{returned, cont}, span), nil

	case ast.CEReturnFrom:
		returned := builderCall(builder, "ReturnFrom", []ast.Expr{stmt.Value}, span)
		if len(rest) == 0 {
			return returned, nil
		}
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		return builderCall(builder, "Combine", []ast.Expr{returned, cont}, span), nil

	case ast.CEYield:
		yielded := builderCall(builder, "Yield", []ast.Expr{stmt.Value}, span)
		if len(rest) == 0 {
			return yielded, nil
		}
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		return builderCall(builder, "Combine", []ast.Expr{yielded, cont}, span), nil

	default: // ast.CEExpr
		if len(rest) == 0 {
			// Tail expression: the block's value, no builder wrapping.
			return stmt.Value, nil
		}
		cont, err := desugarCEStmts(rest, builder, span)
		if err != nil {
			return nil, err
		}
		return builderCall(builder, "Combine", []ast.Expr{stmt.Value, cont}, span), nil
	}
}

func builderCall(builder ast.Expr, method string, args []ast.Expr, span token.Span) ast.Expr {
	fn := &ast.FieldAccess{Target: builder, Field: method, TSpan: span}
	return &ast.App{Fn: fn, Args: args, TSpan: span}
}
