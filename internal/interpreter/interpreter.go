// internal/interpreter/interpreter.go
package interpreter

import (
	"math/big"

	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
	"zyxt/internal/primitives"
	"zyxt/internal/symtable"
)

// Interp is a tree-walking evaluator over a type-checked program. It
// carries no call stack of its own beyond Go's — recursive procedure
// calls recurse through evalNode/callProc directly, the same shape as
// the symbol table's lexical nesting.
type Interp struct {
	sym *symtable.InterpretSymTable
}

// Run evaluates a fully type-checked, Returnable top-level block against
// sym (a fresh table preloaded with the primitive registry, if nil) and
// returns its result.
func Run(program *ast.Block, sym *symtable.InterpretSymTable) (ast.Value, *zerrors.ZError) {
	if sym == nil {
		sym = symtable.NewInterpretSymTable(primitives.BuiltinConstantValues())
	}
	interp := &Interp{sym: sym}
	return interp.evalBlock(program)
}

// NewSymTable builds an interpret symbol table preloaded with the
// primitive registry, for callers (the REPL) that need to hold one open
// across several Run calls.
func NewSymTable() *symtable.InterpretSymTable {
	return symtable.NewInterpretSymTable(primitives.BuiltinConstantValues())
}

// EvalStatements evaluates stmts directly against sym's current top
// frame, without pushing a new one of its own — unlike Run/evalBlock,
// which isolate and discard a frame per call. A REPL session pushes one
// Normal frame with StartSession and reuses it across every line, so a
// declaration on one line stays visible (and reassignable) on the next;
// EndSession pops that frame and runs any accumulated top-level defers.
func EvalStatements(sym *symtable.InterpretSymTable, stmts []ast.Node) (ast.Value, *zerrors.ZError) {
	interp := &Interp{sym: sym}
	var result ast.Value = ast.UnitValue{}
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.Comment); ok {
			continue
		}
		v, err := interp.evalNode(stmt)
		if err != nil {
			return nil, err
		}
		result = v
		if rv, ok := v.(*ast.ReturnValue); ok {
			return rv.V, nil
		}
	}
	return result, nil
}

// StartSession opens the persistent Normal frame a REPL evaluates
// successive lines against via EvalStatements.
func StartSession(sym *symtable.InterpretSymTable) {
	sym.Push(symtable.Normal)
}

// EndSession closes the frame StartSession opened and runs its defers,
// the same cleanup evalBlock performs for an ordinary block on exit.
func EndSession(sym *symtable.InterpretSymTable) {
	interp := &Interp{sym: sym}
	interp.runDefers(sym.Top())
	sym.Pop()
}

func (in *Interp) evalBlock(b *ast.Block) (ast.Value, *zerrors.ZError) {
	in.sym.Push(symtable.Normal)
	var result ast.Value = ast.UnitValue{}
	var runErr *zerrors.ZError
	for _, stmt := range b.Content {
		if _, ok := stmt.(*ast.Comment); ok {
			continue
		}
		v, err := in.evalNode(stmt)
		if err != nil {
			runErr = err
			break
		}
		result = v
		if _, isReturn := v.(*ast.ReturnValue); isReturn {
			break
		}
	}
	// Defers run while the frame is still on the stack — a deferred
	// expression must still see the block's own bindings — and only then
	// is the frame discarded.
	deferRet, deferErr := in.runDefers(in.sym.Top())
	in.sym.Pop()
	if runErr == nil {
		runErr = deferErr
	}
	if runErr != nil {
		return nil, runErr
	}
	// A `ret` inside a deferred expression surfaces from the frame being
	// popped, overriding whatever the block body produced.
	if deferRet != nil {
		result = deferRet
	}
	if rv, ok := result.(*ast.ReturnValue); ok && b.Returnable {
		return rv.V, nil
	}
	return result, nil
}

// runDefers evaluates a popped frame's deferred expressions in the order
// they were registered, not reverse — unlike Go's own defer. Every
// deferred expression runs exactly once; the first error and the first
// return value encountered are reported back to the caller.
func (in *Interp) runDefers(frame *symtable.ValueFrame) (*ast.ReturnValue, *zerrors.ZError) {
	if frame == nil {
		return nil, nil
	}
	var ret *ast.ReturnValue
	var firstErr *zerrors.ZError
	for _, d := range frame.Defer {
		v, err := in.evalNode(d)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if rv, ok := v.(*ast.ReturnValue); ok && ret == nil {
			ret = rv
		}
	}
	return ret, firstErr
}

func (in *Interp) evalNode(n ast.Node) (ast.Value, *zerrors.ZError) {
	switch x := n.(type) {
	case *ast.Literal:
		return x.Value, nil
	case *ast.Ident:
		v, ok := in.sym.Get(x.Name)
		if !ok {
			return nil, zerrors.Internal(nil, "name not found at interpret time: "+x.Name)
		}
		return v, nil
	case *ast.BinaryOpr:
		return in.evalBinary(x)
	case *ast.UnaryOpr:
		return in.evalUnary(x)
	case *ast.Call:
		return in.evalCall(x)
	case *ast.Member:
		return in.evalMember(x)
	case *ast.Declare:
		v, err := in.evalNode(x.Content)
		if err != nil {
			return nil, err
		}
		in.sym.Declare(x.Variable.Name, v)
		return v, nil
	case *ast.Set:
		v, err := in.evalNode(x.Content)
		if err != nil {
			return nil, err
		}
		found, isConst := in.sym.Set(x.Variable.Name, v)
		if isConst {
			return nil, zerrors.T001()
		}
		if !found {
			return nil, zerrors.Internal(nil, "assignment to undeclared name: "+x.Variable.Name)
		}
		return v, nil
	case *ast.If:
		return in.evalIf(x)
	case *ast.Block:
		return in.evalBlock(x)
	case *ast.Delete:
		for _, id := range x.Names {
			in.sym.Delete(id.Name)
		}
		return ast.UnitValue{}, nil
	case *ast.Return:
		var v ast.Value = ast.UnitValue{}
		if x.Value != nil {
			val, err := in.evalNode(x.Value)
			if err != nil {
				return nil, err
			}
			v = val
		}
		return &ast.ReturnValue{V: v}, nil
	case *ast.Procedure:
		return in.evalProcedure(x)
	case *ast.Preprocess:
		return in.evalNode(x.Content)
	case *ast.Defer:
		in.sym.AddDefer(x.Content)
		return ast.UnitValue{}, nil
	case *ast.Class:
		return in.evalClass(x)
	case *ast.Comment:
		return ast.UnitValue{}, nil
	default:
		return nil, zerrors.Internal(nil, "evalNode: unhandled node type")
	}
}

func (in *Interp) evalProcedure(x *ast.Procedure) (ast.Value, *zerrors.ZError) {
	var retType ast.Type
	if sig, ok := ast.ProcSignature(x.ResolvedType()); ok {
		retType = sig.Return
	}
	return &ast.Proc{
		IsFn:       x.IsFn,
		Args:       x.Args,
		Content:    x.Content,
		ReturnType: retType,
		Sig:        x.ResolvedType(),
	}, nil
}

func (in *Interp) evalClass(x *ast.Class) (ast.Value, *zerrors.ZError) {
	def, ok := x.ResolvedType().(*ast.DefType)
	if !ok {
		def = &ast.DefType{NamespaceM: map[string]ast.NamespaceEntry{}}
	}
	if def.NamespaceM == nil {
		def.NamespaceM = map[string]ast.NamespaceEntry{}
	}
	for name, node := range x.Namespace {
		decl, ok := node.(*ast.Declare)
		if !ok {
			continue
		}
		v, err := in.evalNode(decl.Content)
		if err != nil {
			return nil, err
		}
		entry := def.NamespaceM[name]
		entry.Value = v
		def.NamespaceM[name] = entry
	}
	// Field default values: a struct argument's default expression, or an
	// `inst` declaration's initialiser, evaluated once at definition time.
	if def.FieldDefaults == nil {
		def.FieldDefaults = map[string]ast.Value{}
	}
	for _, a := range x.Args {
		if a.Default == nil {
			continue
		}
		v, err := in.evalNode(a.Default)
		if err != nil {
			return nil, err
		}
		def.FieldDefaults[a.Name.Name] = v
	}
	if x.Content != nil {
		for _, stmt := range x.Content.Content {
			decl, ok := stmt.(*ast.Declare)
			if !ok || !instFlagged(decl.Flags) {
				continue
			}
			v, err := in.evalNode(decl.Content)
			if err != nil {
				return nil, err
			}
			def.FieldDefaults[decl.Variable.Name] = v
		}
	}
	return &ast.TypeValue{T: def}, nil
}

func instFlagged(flags []ast.FlaggedSpan) bool {
	for _, f := range flags {
		if f.Flag == ast.FlagInst {
			return true
		}
	}
	return false
}

func (in *Interp) evalIf(x *ast.If) (ast.Value, *zerrors.ZError) {
	for i := range x.Conditions {
		branch := &x.Conditions[i]
		if branch.Condition == nil {
			return in.evalBlock(branch.IfTrue)
		}
		cv, err := in.evalNode(branch.Condition)
		if err != nil {
			return nil, err
		}
		if cv.(*ast.BoolValue).V {
			return in.evalBlock(branch.IfTrue)
		}
	}
	return ast.UnitValue{}, nil
}

func (in *Interp) evalMember(x *ast.Member) (ast.Value, *zerrors.ZError) {
	parentV, err := in.evalNode(x.Parent)
	if err != nil {
		return nil, err
	}
	if ci, ok := parentV.(*ast.ClassInstance); ok {
		if v, ok := ci.Attrs[x.Name]; ok {
			return v, nil
		}
	}
	// Namespace access on a type value (`C.constant`) consults the named
	// type's own namespace, not the namespace of `type` itself.
	if tv, ok := parentV.(*ast.TypeValue); ok {
		if ns := tv.T.Namespace(); ns != nil {
			if entry, ok := ns[x.Name]; ok && entry.Value != nil {
				return entry.Value, nil
			}
		}
	}
	ns := parentV.ValueType().Namespace()
	if ns != nil {
		if entry, ok := ns[x.Name]; ok && entry.Value != nil {
			return entry.Value, nil
		}
	}
	return nil, zerrors.T005(x.Name)
}

// evalCall resolves the callee the same way the checker does: a plain
// bound name, a desugared method name dispatched through the first
// argument's namespace, or direct construction when the callee is a
// class or struct type with fields.
func (in *Interp) evalCall(x *ast.Call) (ast.Value, *zerrors.ZError) {
	var calleeVal ast.Value
	if id, ok := x.Called.(*ast.Ident); ok {
		if v, found := in.sym.Get(id.Name); found {
			calleeVal = v
		} else if len(x.Args) > 0 {
			recvVal, err := in.evalNode(x.Args[0])
			if err != nil {
				return nil, err
			}
			// A type-valued receiver (`C.meth(...)` desugared to
			// `meth(C, ...)`) dispatches through the named type's own
			// namespace, mirroring the checker's resolution.
			ns := recvVal.ValueType().Namespace()
			if tv, ok := recvVal.(*ast.TypeValue); ok {
				if tns := tv.T.Namespace(); tns != nil {
					if _, found := tns[id.Name]; found {
						ns = tns
					}
				}
			}
			entry, ok := ns[id.Name]
			if !ok || entry.Value == nil {
				return nil, zerrors.T005(id.Name)
			}
			calleeVal = entry.Value
		} else {
			return nil, zerrors.T002(id.Name)
		}
	} else {
		v, err := in.evalNode(x.Called)
		if err != nil {
			return nil, err
		}
		calleeVal = v
	}

	args := make([]ast.Value, 0, len(x.Args))
	for _, a := range x.Args {
		v, err := in.evalNode(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	kwargs := map[string]ast.Value{}
	for name, n := range x.Kwargs {
		v, err := in.evalNode(n)
		if err != nil {
			return nil, err
		}
		kwargs[name] = v
	}

	if tv, ok := calleeVal.(*ast.TypeValue); ok {
		if d, ok := tv.T.(*ast.DefType); ok && d.Fields != nil {
			return in.construct(d, args, kwargs)
		}
	}
	proc, ok := calleeVal.(*ast.Proc)
	if !ok {
		return nil, zerrors.T007("<call target>")
	}
	return in.callProc(proc, args, kwargs)
}

// construct assembles a class/struct instance: positional arguments fill
// fields in declaration order, keyword arguments fill by name, and every
// remaining field falls back to its declared default value, then to the
// field type's own `_default` namespace entry.
func (in *Interp) construct(d *ast.DefType, args []ast.Value, kwargs map[string]ast.Value) (ast.Value, *zerrors.ZError) {
	attrs := map[string]ast.Value{}
	if len(args) > len(d.FieldOrder) {
		return nil, zerrors.T008(len(d.FieldOrder), len(args))
	}
	for i, v := range args {
		attrs[d.FieldOrder[i]] = v
	}
	for name, v := range kwargs {
		if _, ok := d.Fields[name]; !ok {
			return nil, zerrors.T005(name)
		}
		attrs[name] = v
	}
	for name, ft := range d.Fields {
		if _, ok := attrs[name]; ok {
			continue
		}
		if dv, ok := d.FieldDefaults[name]; ok {
			attrs[name] = dv
			continue
		}
		if entry, ok := ft.Namespace()["_default"]; ok && entry.Value != nil {
			attrs[name] = entry.Value
		} else {
			attrs[name] = ast.UnitValue{}
		}
	}
	return &ast.ClassInstance{Ty: d, Attrs: attrs}, nil
}

func (in *Interp) callProc(proc *ast.Proc, args []ast.Value, kwargs map[string]ast.Value) (ast.Value, *zerrors.ZError) {
	if proc.Builtin != nil {
		return proc.Builtin(args)
	}
	in.sym.Push(symtable.Function)
	for i, arg := range proc.Args {
		var v ast.Value
		switch {
		case i < len(args):
			v = args[i]
		case kwargs != nil && kwargs[arg.Name.Name] != nil:
			v = kwargs[arg.Name.Name]
		case arg.Default != nil:
			dv, err := in.evalNode(arg.Default)
			if err != nil {
				in.sym.Pop()
				return nil, err
			}
			v = dv
		default:
			v = ast.UnitValue{}
		}
		in.sym.Declare(arg.Name.Name, v)
	}
	result, err := in.evalBlock(proc.Content)
	in.sym.Pop()
	return result, err
}

func (in *Interp) evalBinary(x *ast.BinaryOpr) (ast.Value, *zerrors.ZError) {
	if x.Ty == "@" {
		v, err := in.evalNode(x.Op1)
		if err != nil {
			return nil, err
		}
		tv, err := in.evalNode(x.Op2)
		if err != nil {
			return nil, err
		}
		dst, ok := tv.(*ast.TypeValue)
		if !ok {
			return nil, zerrors.Internal(nil, "typecast target did not evaluate to a type")
		}
		return in.dispatch(v, "_typecast", []ast.Value{v, dst})
	}
	if x.Ty == "&&" || x.Ty == "||" {
		lv, err := in.evalNode(x.Op1)
		if err != nil {
			return nil, err
		}
		lb := lv.(*ast.BoolValue).V
		if x.Ty == "&&" && !lb {
			return &ast.BoolValue{V: false}, nil
		}
		if x.Ty == "||" && lb {
			return &ast.BoolValue{V: true}, nil
		}
		rv, err := in.evalNode(x.Op2)
		if err != nil {
			return nil, err
		}
		return &ast.BoolValue{V: rv.(*ast.BoolValue).V}, nil
	}
	lv, err := in.evalNode(x.Op1)
	if err != nil {
		return nil, err
	}
	rv, err := in.evalNode(x.Op2)
	if err != nil {
		return nil, err
	}
	return in.dispatch(lv, x.Ty, []ast.Value{lv, rv})
}

func (in *Interp) dispatch(receiver ast.Value, method string, args []ast.Value) (ast.Value, *zerrors.ZError) {
	ns := receiver.ValueType().Namespace()
	if ns == nil {
		return nil, zerrors.T005(method)
	}
	entry, ok := ns[method]
	if !ok || entry.Value == nil {
		return nil, zerrors.T005(method)
	}
	proc, ok := entry.Value.(*ast.Proc)
	if !ok {
		return nil, zerrors.T007(method)
	}
	return in.callProc(proc, args, nil)
}

func (in *Interp) evalUnary(x *ast.UnaryOpr) (ast.Value, *zerrors.ZError) {
	operand, err := in.evalNode(x.Operand)
	if err != nil {
		return nil, err
	}
	switch x.Ty {
	case "++", "--":
		method := "_add"
		if x.Ty == "--" {
			method = "_sub"
		}
		one := oneLike(operand)
		newVal, err := in.dispatch(operand, method, []ast.Value{operand, one})
		if err != nil {
			return nil, err
		}
		if id, ok := x.Operand.(*ast.Ident); ok {
			in.sym.Set(id.Name, newVal)
		}
		return newVal, nil
	default:
		return in.dispatch(operand, x.Ty, []ast.Value{operand})
	}
}

// oneLike builds the step value `1` in the same representation as v, for desugaring `x++`/`x--` into
// `x = x._add(1)` / `x = x._sub(1)`.
func oneLike(v ast.Value) ast.Value {
	switch x := v.(type) {
	case *ast.IntValue:
		return ast.NewInt(x.Kind, 1)
	case *ast.BigIntValue:
		return &ast.BigIntValue{Signed: x.Signed, V: big.NewInt(1)}
	case *ast.FloatValue:
		return &ast.FloatValue{Kind: x.Kind, V: 1}
	default:
		return ast.NewInt(ast.I32, 1)
	}
}
