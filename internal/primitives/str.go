// internal/primitives/str.go
package primitives

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

func registerStr() {
	ns := map[string]ast.NamespaceEntry{}
	get := func(v ast.Value) string { return v.(*ast.StrValue).V }

	ns["_default"] = ast.NamespaceEntry{Value: &ast.StrValue{V: ""}}

	ns["_eq"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) == get(args[1])}, nil
	})
	ns["_ne"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) != get(args[1])}, nil
	})
	ns["_lt"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) < get(args[1])}, nil
	})
	ns["_le"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) <= get(args[1])}, nil
	})
	ns["_gt"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) > get(args[1])}, nil
	})
	ns["_ge"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) >= get(args[1])}, nil
	})
	ns["_not"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.BoolValue{V: get(args[0]) == ""}, nil
	})
	ns["_concat"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.StrValue{V: get(args[0]) + args[1].String()}, nil
	})

	// len is exposed as an ordinary namespace member (not a `_`-prefixed
	// operator) the way the checker resolves `.len` on a string receiver
	// after desugaring a method call into a namespace lookup.
	ns["len"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return ast.NewInt(ast.Usize, int64(len(get(args[0])))), nil
	})
	// human_bytes formats a string's length the way a CLI reports source or
	// program size, reusing dustin/go-humanize for the suffix.
	ns["human_bytes"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.StrValue{V: humanize.Bytes(uint64(len(get(args[0]))))}, nil
	})
	ns["upper"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.StrValue{V: strings.ToUpper(get(args[0]))}, nil
	})
	ns["lower"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		return &ast.StrValue{V: strings.ToLower(get(args[0]))}, nil
	})

	ns["_typecast"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		dst, zerr := destType(args)
		if zerr != nil {
			return nil, zerr
		}
		s := get(args[0])
		if v, ok := commonCast(args[0], dst); ok {
			return v, nil
		}
		if ast.TypeEqual(dst, Lookup("bool")) {
			return &ast.BoolValue{V: s != ""}, nil
		}
		if isIntType(dst) {
			n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
			if !ok {
				return nil, zerrors.I001("str to int typecast")
			}
			return castIntTo(dst, &ast.BigIntValue{Signed: true, V: n})
		}
		if isFloatType(dst) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, zerrors.I001("str to float typecast")
			}
			return castFloatTo(dst, f), nil
		}
		return nil, zerrors.I001("str typecast")
	})

	registry["str"] = &ast.DefType{Name: "str", NamespaceM: ns}
}
