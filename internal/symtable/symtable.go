// internal/symtable/symtable.go
package symtable

import "zyxt/internal/ast"

// FrameKind determines a frame's visibility rules when an inner scope
// looks outward for a binding.
type FrameKind int

const (
	// Normal is a plain lexical block: if, while-less block, top level.
	Normal FrameKind = iota
	// Function is a procedure body: once a lookup walks past this kind of
	// frame, only Constants entries remain visible — closures do not
	// capture enclosing bindings.
	Function
	// Constants is the bottom frame, preloaded with the primitive
	// registry, visible from anywhere regardless of nesting.
	Constants
)

// TypeFrame is one entry of the type-check symbol table stack.
type TypeFrame struct {
	Kind        FrameKind
	BlockReturn ast.Type // nil until the first `ret`/tail expression sets it
	Table       map[string]ast.Type
	Types       map[string]ast.Type
	Defer       []ast.Node
}

func newTypeFrame(kind FrameKind) *TypeFrame {
	return &TypeFrame{Kind: kind, Table: map[string]ast.Type{}, Types: map[string]ast.Type{}}
}

// TypeCheckSymTable is the type checker's stack of lexical frames.
type TypeCheckSymTable struct {
	Frames []*TypeFrame
}

// NewTypeCheckSymTable builds a table with a bottom Constants frame
// preloaded from preload (the primitive registry's name->Type bindings).
func NewTypeCheckSymTable(preload map[string]ast.Type) *TypeCheckSymTable {
	bottom := newTypeFrame(Constants)
	for k, v := range preload {
		bottom.Table[k] = v
	}
	return &TypeCheckSymTable{Frames: []*TypeFrame{bottom}}
}

func (t *TypeCheckSymTable) Push(kind FrameKind) *TypeFrame {
	f := newTypeFrame(kind)
	t.Frames = append(t.Frames, f)
	return f
}

func (t *TypeCheckSymTable) Pop() *TypeFrame {
	if len(t.Frames) == 0 {
		return nil
	}
	f := t.Frames[len(t.Frames)-1]
	t.Frames = t.Frames[:len(t.Frames)-1]
	return f
}

func (t *TypeCheckSymTable) Top() *TypeFrame { return t.Frames[len(t.Frames)-1] }

// Get resolves name outward from the innermost frame. Once the walk has
// passed a Function frame, only Constants frames are still consulted.
func (t *TypeCheckSymTable) Get(name string) (ast.Type, bool) {
	crossedFunction := false
	for i := len(t.Frames) - 1; i >= 0; i-- {
		f := t.Frames[i]
		if crossedFunction && f.Kind != Constants {
			continue
		}
		if v, ok := f.Table[name]; ok {
			return v, true
		}
		if f.Kind == Function {
			crossedFunction = true
		}
	}
	return nil, false
}

// GetTypeName resolves a local type-name binding the same way Get does.
func (t *TypeCheckSymTable) GetTypeName(name string) (ast.Type, bool) {
	crossedFunction := false
	for i := len(t.Frames) - 1; i >= 0; i-- {
		f := t.Frames[i]
		if crossedFunction && f.Kind != Constants {
			continue
		}
		if v, ok := f.Types[name]; ok {
			return v, true
		}
		if f.Kind == Function {
			crossedFunction = true
		}
	}
	return nil, false
}

// Declare binds name in the current (innermost) frame.
func (t *TypeCheckSymTable) Declare(name string, ty ast.Type) { t.Top().Table[name] = ty }

// DeclareType binds a local type name in the current frame.
func (t *TypeCheckSymTable) DeclareType(name string, ty ast.Type) { t.Top().Types[name] = ty }

// SetBlockReturn records T in the nearest enclosing Function or Normal
// frame with a return slot. Returns the frame's prior return type (nil if
// this is the first time it's been set) so the caller can unify.
func (t *TypeCheckSymTable) SetBlockReturn(ty ast.Type) (prior ast.Type, frame *TypeFrame) {
	for i := len(t.Frames) - 1; i >= 0; i-- {
		f := t.Frames[i]
		if f.Kind == Constants {
			continue
		}
		prior = f.BlockReturn
		f.BlockReturn = ty
		return prior, f
	}
	return nil, nil
}

// --- Interpret-time symbol table ---

// ValueFrame is one entry of the interpret symbol table stack.
type ValueFrame struct {
	Kind  FrameKind
	Table map[string]ast.Value
	Defer []ast.Node
}

func newValueFrame(kind FrameKind) *ValueFrame {
	return &ValueFrame{Kind: kind, Table: map[string]ast.Value{}}
}

// InterpretSymTable is the interpreter's stack of lexical frames.
type InterpretSymTable struct {
	Frames []*ValueFrame
}

func NewInterpretSymTable(preload map[string]ast.Value) *InterpretSymTable {
	bottom := newValueFrame(Constants)
	for k, v := range preload {
		bottom.Table[k] = v
	}
	return &InterpretSymTable{Frames: []*ValueFrame{bottom}}
}

func (t *InterpretSymTable) Push(kind FrameKind) *ValueFrame {
	f := newValueFrame(kind)
	t.Frames = append(t.Frames, f)
	return f
}

func (t *InterpretSymTable) Pop() *ValueFrame {
	if len(t.Frames) == 0 {
		return nil
	}
	f := t.Frames[len(t.Frames)-1]
	t.Frames = t.Frames[:len(t.Frames)-1]
	return f
}

func (t *InterpretSymTable) Top() *ValueFrame { return t.Frames[len(t.Frames)-1] }

func (t *InterpretSymTable) Get(name string) (ast.Value, bool) {
	crossedFunction := false
	for i := len(t.Frames) - 1; i >= 0; i-- {
		f := t.Frames[i]
		if crossedFunction && f.Kind != Constants {
			continue
		}
		if v, ok := f.Table[name]; ok {
			return v, true
		}
		if f.Kind == Function {
			crossedFunction = true
		}
	}
	return nil, false
}

func (t *InterpretSymTable) Declare(name string, v ast.Value) { t.Top().Table[name] = v }

// Set reassigns name in the first frame (outward from innermost,
// respecting the function-crossing rule) that already binds it. Returns
// (found, isConstants) — the caller raises T001 when isConstants is true.
func (t *InterpretSymTable) Set(name string, v ast.Value) (found, isConstants bool) {
	crossedFunction := false
	for i := len(t.Frames) - 1; i >= 0; i-- {
		f := t.Frames[i]
		if crossedFunction && f.Kind != Constants {
			continue
		}
		if _, ok := f.Table[name]; ok {
			if f.Kind == Constants {
				return true, true
			}
			f.Table[name] = v
			return true, false
		}
		if f.Kind == Function {
			crossedFunction = true
		}
	}
	return false, false
}

// Delete removes name from the current frame only.
func (t *InterpretSymTable) Delete(name string) { delete(t.Top().Table, name) }

// AddDefer appends content to the current frame's deferred list.
func (t *InterpretSymTable) AddDefer(content ast.Node) {
	f := t.Top()
	f.Defer = append(f.Defer, content)
}
