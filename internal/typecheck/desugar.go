// internal/typecheck/desugar.go
package typecheck

import (
	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

// desugar rewrites surface sugar into the smaller node set the type
// checker and interpreter actually dispatch on:
//   - `a.b(...)` (a Call whose Called is a Member) becomes a direct call
//     to the namespace procedure, with the receiver spliced in as the
//     first argument.
//   - a bare `a.b` Member stays a Member; it only collapses into a call
//     when actually invoked.
//   - each operand of `&&`/`||` is wrapped in an `@ bool` cast (an
//     operand that already is one is left as is, so a second pass changes
//     nothing).
//
// `&&`/`||` and `@` themselves stay BinaryOpr nodes — they are not method
// calls and the interpreter/checker special-case their Ty strings directly.
func desugar(n ast.Node) ast.Node {
	switch x := n.(type) {
	case nil:
		return nil
	case *ast.Call:
		x.Called = desugar(x.Called)
		for i, a := range x.Args {
			x.Args[i] = desugar(a)
		}
		for k, a := range x.Kwargs {
			x.Kwargs[k] = desugar(a)
		}
		if m, ok := x.Called.(*ast.Member); ok {
			recv := desugar(m.Parent)
			args := append([]ast.Node{recv}, x.Args...)
			var nameSpan zerrors.Span
			if m.NameSpan != nil {
				nameSpan = *m.NameSpan
			}
			return &ast.Call{Called: &ast.Ident{Name: m.Name, NameSpan: nameSpan}, Args: args, Kwargs: x.Kwargs, ParenSpans: x.ParenSpans}
		}
		return x
	case *ast.Member:
		x.Parent = desugar(x.Parent)
		return x
	case *ast.BinaryOpr:
		x.Op1 = desugar(x.Op1)
		x.Op2 = desugar(x.Op2)
		if x.Ty == "&&" || x.Ty == "||" {
			for _, op := range []*ast.Node{&x.Op1, &x.Op2} {
				if c, ok := (*op).(*ast.BinaryOpr); ok && c.Ty == "@" {
					if id, ok := c.Op2.(*ast.Ident); ok && id.Name == "bool" {
						continue
					}
				}
				*op = &ast.BinaryOpr{Ty: "@", Op1: *op, Op2: &ast.Ident{Name: "bool"}}
			}
		}
		return x
	case *ast.UnaryOpr:
		x.Operand = desugar(x.Operand)
		return x
	case *ast.Declare:
		x.Content = desugar(x.Content)
		if x.Ty != nil {
			x.Ty = desugar(x.Ty)
		}
		return x
	case *ast.Set:
		x.Content = desugar(x.Content)
		return x
	case *ast.If:
		for i := range x.Conditions {
			x.Conditions[i].Condition = desugar(x.Conditions[i].Condition)
			if x.Conditions[i].IfTrue != nil {
				desugarBlock(x.Conditions[i].IfTrue)
			}
		}
		return x
	case *ast.Block:
		desugarBlock(x)
		return x
	case *ast.Delete:
		return x
	case *ast.Return:
		x.Value = desugar(x.Value)
		return x
	case *ast.Procedure:
		for i := range x.Args {
			x.Args[i].Default = desugar(x.Args[i].Default)
			if x.Args[i].Ty != nil {
				x.Args[i].Ty = desugar(x.Args[i].Ty)
			}
		}
		if x.ReturnType != nil {
			x.ReturnType = desugar(x.ReturnType)
		}
		if x.Content != nil {
			desugarBlock(x.Content)
		}
		return x
	case *ast.Preprocess:
		x.Content = desugar(x.Content)
		return x
	case *ast.Defer:
		x.Content = desugar(x.Content)
		return x
	case *ast.Class:
		if x.Content != nil {
			desugarBlock(x.Content)
		}
		for i := range x.Args {
			x.Args[i].Default = desugar(x.Args[i].Default)
		}
		return x
	default:
		return n
	}
}

func desugarBlock(b *ast.Block) {
	for i, c := range b.Content {
		b.Content[i] = desugar(c)
	}
}
