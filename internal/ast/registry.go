// internal/ast/registry.go
package ast

// primitiveLookup is installed by internal/primitives at package init time.
// ast cannot import primitives directly (primitives needs Type/Value from
// ast), so the registry itself lives in internal/primitives and is wired
// in through this indirection — the only place the dependency direction
// would otherwise invert.
var primitiveLookup func(name string) Type

// SetPrimitiveLookup installs the accessor into the global primitive type
// registry. Called exactly once, from internal/primitives's init().
func SetPrimitiveLookup(f func(name string) Type) { primitiveLookup = f }

// PrimitiveType resolves a builtin type by its surface name ("i32",
// "str", "bool", ...). Panics if asked for before the primitives package
// has been linked in — every entry point does so transitively.
func PrimitiveType(name string) Type {
	if primitiveLookup == nil {
		panic("ast: primitive registry not initialised — internal/primitives must be imported")
	}
	return primitiveLookup(name)
}
