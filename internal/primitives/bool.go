// internal/primitives/bool.go
package primitives

import (
	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

func registerBool() {
	ns := map[string]ast.NamespaceEntry{}

	ns["_default"] = ast.NamespaceEntry{Value: &ast.BoolValue{V: false}}

	ns["_not"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: !args[0].(*ast.BoolValue).V}, nil
	})
	ns["_eq"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: args[0].(*ast.BoolValue).V == args[1].(*ast.BoolValue).V}, nil
	})
	ns["_ne"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: args[0].(*ast.BoolValue).V != args[1].(*ast.BoolValue).V}, nil
	})
	ns["_concat"] = method(concatMethod)

	ns["_typecast"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		dst, zerr := destType(args)
		if zerr != nil {
			return nil, zerr
		}
		b := args[0].(*ast.BoolValue)
		if v, ok := commonCast(b, dst); ok {
			return v, nil
		}
		if isIntType(dst) {
			return castIntTo(dst, b)
		}
		if isFloatType(dst) {
			n := 0.0
			if b.V {
				n = 1.0
			}
			return castFloatTo(dst, n), nil
		}
		return nil, zerrors.I001("bool typecast")
	})

	registry["bool"] = &ast.DefType{Name: "bool", NamespaceM: ns}
}
