// internal/primitives/common.go
package primitives

import (
	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

// destType extracts the requested destination type out of a `_typecast`
// call's second argument, which type-checking guarantees is a TypeValue.
func destType(args []ast.Value) (ast.Type, *zerrors.ZError) {
	tv, ok := args[1].(*ast.TypeValue)
	if !ok {
		return nil, zerrors.Internal(nil, "_typecast called with a non-type argument")
	}
	return tv.T, nil
}

// commonCast implements the destination rules shared by every primitive:
// casting to the value's own type is identity, casting to `type` yields
// the value's runtime type, and casting to `str` stringifies. Returns
// (result, true) when one of these generic rules applied.
func commonCast(v ast.Value, dst ast.Type) (ast.Value, bool) {
	if ast.TypeEqual(dst, v.ValueType()) {
		return v, true
	}
	if ast.TypeEqual(dst, Lookup("type")) {
		return &ast.TypeValue{T: v.ValueType()}, true
	}
	if ast.TypeEqual(dst, Lookup("str")) {
		return &ast.StrValue{V: v.String()}, true
	}
	return nil, false
}

// concatMethod implements `_concat` uniformly: stringify both operands
// and join them, matching `"ab" ~ "cd" == "abcd"`.
func concatMethod(args []ast.Value) (ast.Value, *zerrors.ZError) {
	return &ast.StrValue{V: args[0].String() + args[1].String()}, nil
}

// registerType builds the `type` primitive — the type every type
// definition is itself a value of. Its typecast-to-bool is always true.
func registerType() {
	ns := map[string]ast.NamespaceEntry{}

	ns["_eq"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		a, aok := args[0].(*ast.TypeValue)
		b, bok := args[1].(*ast.TypeValue)
		return &ast.BoolValue{V: aok && bok && ast.TypeEqual(a.T, b.T)}, nil
	})
	ns["_ne"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		a, aok := args[0].(*ast.TypeValue)
		b, bok := args[1].(*ast.TypeValue)
		return &ast.BoolValue{V: !(aok && bok && ast.TypeEqual(a.T, b.T))}, nil
	})
	ns["_not"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: false}, nil
	})
	ns["_concat"] = method(concatMethod)
	ns["_typecast"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		dst, zerr := destType(args)
		if zerr != nil {
			return nil, zerr
		}
		if v, ok := commonCast(args[0], dst); ok {
			return v, nil
		}
		if ast.TypeEqual(dst, Lookup("bool")) {
			return &ast.BoolValue{V: true}, nil
		}
		return nil, zerrors.I001("type typecast")
	})

	registry["type"] = &ast.DefType{Name: "type", NamespaceM: ns}
}

// registerUnit builds the `unit` primitive. Unit is falsy and every unit
// equals every other unit.
func registerUnit() {
	ns := map[string]ast.NamespaceEntry{}

	ns["_default"] = ast.NamespaceEntry{Value: ast.UnitValue{}}
	ns["_eq"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		_, aok := args[0].(ast.UnitValue)
		_, bok := args[1].(ast.UnitValue)
		return &ast.BoolValue{V: aok && bok}, nil
	})
	ns["_ne"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		_, aok := args[0].(ast.UnitValue)
		_, bok := args[1].(ast.UnitValue)
		return &ast.BoolValue{V: !(aok && bok)}, nil
	})
	ns["_not"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: true}, nil
	})
	ns["_concat"] = method(concatMethod)
	ns["_typecast"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		dst, zerr := destType(args)
		if zerr != nil {
			return nil, zerr
		}
		if v, ok := commonCast(args[0], dst); ok {
			return v, nil
		}
		if ast.TypeEqual(dst, Lookup("bool")) {
			return &ast.BoolValue{V: false}, nil
		}
		return nil, zerrors.I001("unit typecast")
	})

	registry["unit"] = &ast.DefType{Name: "unit", NamespaceM: ns}
}
