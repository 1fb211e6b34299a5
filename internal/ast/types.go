// internal/ast/types.go
package ast

// Type is the compile-time type model. It lives in the same package as
// Node because Defined procedures close over AST bodies (Value.Proc) while
// nodes carry resolved Types (Node.ResolvedType) — the two are mutually
// recursive and Go has no cross-package cycles, so AST, Type and Value
// share one package rather than three that would need to import each other.
type Type interface {
	// TypeName is the human-readable name used in diagnostics ("i32",
	// "proc(i32,i32):i32", "{builtin class}").
	TypeName() string
	// Namespace is the dispatch table consulted for member access and
	// operator desugaring. Entries are either a Value (method/constant)
	// or a Type (nested type member).
	Namespace() map[string]NamespaceEntry
}

// NamespaceEntry is the union a namespace maps names to: a runtime value
// (methods, constants) or a nested type.
type NamespaceEntry struct {
	Value Value
	Type  Type
}

// AnyType is the top type, accepted anywhere type-checking compares types.
type AnyType struct{}

func (AnyType) TypeName() string                  { return "any" }
func (AnyType) Namespace() map[string]NamespaceEntry { return nil }

// Signature is the Either<[]Type, Type> half of a Generic's proc type
// argument: a full (params, return) proc shape rather than a single type.
// Params is nil (not merely empty) for builtins, whose arity the checker
// does not verify generically; Required counts the leading parameters a
// call site cannot omit (the rest carry defaults).
type Signature struct {
	Params   []Type
	Required int
	Return   Type
}

// GenericArg is one entry of a Generic instantiation's type_args list —
// either a single type parameter or a proc signature parameter.
type GenericArg struct {
	Name string
	// Exactly one of Single or Sig is non-nil.
	Single Type
	Sig    *Signature
}

// GenericType is a parameterised instantiation of a base type, e.g.
// proc<(i32,i32):i32> or array<i32>.
type GenericType struct {
	Base     Type
	TypeArgs []GenericArg
}

func (g *GenericType) TypeName() string {
	name := "any"
	if g.Base != nil {
		name = g.Base.TypeName()
	}
	out := name + "<"
	for i, a := range g.TypeArgs {
		if i > 0 {
			out += ","
		}
		if a.Sig != nil {
			out += "proc"
		} else if a.Single != nil {
			out += a.Single.TypeName()
		}
	}
	return out + ">"
}

func (g *GenericType) Namespace() map[string]NamespaceEntry {
	if g.Base == nil {
		return nil
	}
	return g.Base.Namespace()
}

// DefType is a type definition — a named, namespaced, field-carrying type
// such as a primitive or a user class/struct. It is itself a value of
// type `type` (wrapped in a TypeValue).
type DefType struct {
	Name       string
	NamespaceM map[string]NamespaceEntry
	Fields     map[string]Type
	// FieldOrder preserves field declaration order, which Fields (a map)
	// cannot; the implicit constructor matches positional arguments
	// against it.
	FieldOrder []string
	// FieldDefaults carries the evaluated per-field default values a
	// class/struct body declared, consulted by construction before the
	// field type's own _default entry.
	FieldDefaults map[string]Value
	// TypeParams names this definition's generic parameters, if any.
	// Kept separate from ast.Argument to avoid pulling default-value
	// expressions into the type model; a definition's type parameters
	// never carry defaults.
	TypeParams []string
}

func (d *DefType) TypeName() string {
	if d.Name != "" {
		return d.Name
	}
	return "{anonymous type}"
}

func (d *DefType) Namespace() map[string]NamespaceEntry { return d.NamespaceM }

// ReturnType wraps T during block analysis to propagate "this path
// returns T" through expression composition without it being mistaken
// for an ordinary value of type T.
type ReturnType struct {
	Inner Type
}

func (r *ReturnType) TypeName() string                  { return "ret<" + r.Inner.TypeName() + ">" }
func (r *ReturnType) Namespace() map[string]NamespaceEntry { return r.Inner.Namespace() }

// TypeEqual is structural equality, except built-in definitions compare by
// pointer identity since the primitive registry hands out one *DefType per
// primitive and two primitives are equal iff they are the same instance.
func TypeEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if _, ok := a.(AnyType); ok {
		return true
	}
	if _, ok := b.(AnyType); ok {
		return true
	}
	switch at := a.(type) {
	case *DefType:
		bt, ok := b.(*DefType)
		return ok && at == bt
	case *ReturnType:
		bt, ok := b.(*ReturnType)
		return ok && TypeEqual(at.Inner, bt.Inner)
	case *GenericType:
		bt, ok := b.(*GenericType)
		if !ok || !TypeEqual(at.Base, bt.Base) || len(at.TypeArgs) != len(bt.TypeArgs) {
			return false
		}
		for i := range at.TypeArgs {
			x, y := at.TypeArgs[i], bt.TypeArgs[i]
			if (x.Sig == nil) != (y.Sig == nil) {
				return false
			}
			if x.Sig != nil {
				if len(x.Sig.Params) != len(y.Sig.Params) || !TypeEqual(x.Sig.Return, y.Sig.Return) {
					return false
				}
				for j := range x.Sig.Params {
					if !TypeEqual(x.Sig.Params[j], y.Sig.Params[j]) {
						return false
					}
				}
			} else if !TypeEqual(x.Single, y.Single) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ProcSignature extracts a (params, return) signature from a callable
// type — either a Generic{base: proc} instantiation or a DefType whose
// namespace exposes a `_call` method.
func ProcSignature(t Type) (*Signature, bool) {
	if g, ok := t.(*GenericType); ok {
		if len(g.TypeArgs) == 1 && g.TypeArgs[0].Sig != nil {
			return g.TypeArgs[0].Sig, true
		}
	}
	if ns := t.Namespace(); ns != nil {
		if entry, ok := ns["_call"]; ok && entry.Type != nil {
			return ProcSignature(entry.Type)
		}
	}
	return nil, false
}
