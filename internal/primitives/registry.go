// internal/primitives/registry.go
package primitives

import (
	"sync"

	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

var (
	once     sync.Once
	registry map[string]*ast.DefType
	procBase *ast.DefType
)

func init() {
	ast.SetPrimitiveLookup(Lookup)
}

// Lookup resolves a builtin type by surface name, building the registry on
// first use. The registry is process-wide and immutable thereafter — two
// primitives are equal iff they are the same *ast.DefType.
func Lookup(name string) ast.Type {
	once.Do(build)
	if t, ok := registry[name]; ok {
		return t
	}
	return ast.AnyType{}
}

// ProcBase returns the shared base type every proc value's Generic
// instantiation wraps.
func ProcBase() *ast.DefType {
	once.Do(build)
	return procBase
}

// procType builds the Generic{base: proc} signature type for a proc with
// the given argument types and return type. Reaches straight into the
// package-level procBase rather than through the Once-guarded ProcBase
// accessor, since every call happens from within build() itself, before
// the primitive registry is otherwise usable.
func procType(params []ast.Type, ret ast.Type) ast.Type {
	return &ast.GenericType{
		Base: procBase,
		TypeArgs: []ast.GenericArg{{
			Name: "_call",
			Sig:  &ast.Signature{Params: params, Return: ret},
		}},
	}
}

// method wraps a Go closure as a builtin Proc value. Builtins are not
// given a precise argument/return Signature — their arity and result type
// are fixed by the type checker's per-operator rules (see internal/typecheck),
// not discovered generically — so Sig carries a nil parameter list, the
// marker the checker reads as "arity unchecked", and an Any return.
func method(f func(args []ast.Value) (ast.Value, *zerrors.ZError)) ast.NamespaceEntry {
	return ast.NamespaceEntry{Value: &ast.Proc{
		Builtin: f,
		Sig:     procType(nil, ast.AnyType{}),
	}}
}

var allIntKinds = []ast.IntKind{
	ast.I8, ast.I16, ast.I32, ast.I64, ast.I128, ast.Isize,
	ast.U8, ast.U16, ast.U32, ast.U64, ast.U128, ast.Usize,
}

var allFloatKinds = []ast.FloatKind{ast.F16, ast.F32, ast.F64}

func build() {
	registry = map[string]*ast.DefType{}

	procBase = &ast.DefType{Name: "proc", NamespaceM: map[string]ast.NamespaceEntry{}}
	registry["proc"] = procBase

	registerType()
	registerUnit()
	registerBool()
	registerStr()
	for _, k := range allIntKinds {
		registerInt(k)
	}
	registerBigInt(true)
	registerBigInt(false)
	for _, k := range allFloatKinds {
		registerFloat(k)
	}
	registerTerminal()
}

// BuiltinTypeNames returns the complete set of primitive names, used to
// preload the type-check symbol table's Constants frame with `name: type`
// bindings (so `i32`, `str`, etc. resolve as identifiers).
func BuiltinTypeNames() []string {
	once.Do(build)
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	return names
}

// BuiltinConstantTypes returns the name->Type bindings for the type-check
// Constants frame: every primitive name is bound to `type`, except `ter`,
// which is a singleton instance rather than a type name — it binds
// directly to its own DefType, so `ter.out(...)` resolves as an ordinary
// namespace member lookup on the identifier's type.
func BuiltinConstantTypes() map[string]ast.Type {
	names := BuiltinTypeNames()
	out := make(map[string]ast.Type, len(names))
	typeT := registry["type"]
	for _, n := range names {
		if n == "ter" {
			out[n] = registry["ter"]
			continue
		}
		out[n] = typeT
	}
	return out
}

// BuiltinConstantValues returns the name->Value bindings for the interpret
// Constants frame: every primitive name is bound to its TypeValue, except
// `ter`, which binds to a singleton instance of its own type so
// `ter.out(...)` dispatches through the ordinary namespace-method path.
func BuiltinConstantValues() map[string]ast.Value {
	names := BuiltinTypeNames()
	out := make(map[string]ast.Value, len(names))
	for _, n := range names {
		if n == "ter" {
			out[n] = &ast.ClassInstance{Ty: registry["ter"], Attrs: map[string]ast.Value{}}
			continue
		}
		out[n] = &ast.TypeValue{T: registry[n]}
	}
	return out
}
