// internal/typecheck/check.go
package typecheck

import (
	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
	"zyxt/internal/interpreter"
	"zyxt/internal/primitives"
	"zyxt/internal/symtable"
)

// Checker runs the desugar and type_check passes over a parsed program,
// decorating every node with its resolved Type via ast.SetType.
type Checker struct {
	sym *symtable.TypeCheckSymTable
}

// Check desugars and type-checks program in place, returning the same
// block (now fully decorated) or the first error encountered.
//
// sym carries the type-check frame stack across calls — a REPL driver
// passes the same table into every line so earlier declarations stay
// visible; a one-shot compile passes nil and gets a fresh table seeded
// with the primitive registry.
func Check(program *ast.Block, sym *symtable.TypeCheckSymTable) (*ast.Block, *zerrors.ZError) {
	if sym == nil {
		sym = symtable.NewTypeCheckSymTable(primitives.BuiltinConstantTypes())
	}
	desugarBlock(program)
	c := &Checker{sym: sym}
	program.Returnable = true
	sym.Push(symtable.Normal)
	t, err := c.checkStatements(program.Content)
	sym.Pop()
	if err != nil {
		return nil, err
	}
	// The top-level block is returnable: a `ret` at file scope exits the
	// program, so its Return wrapper unwraps here rather than propagating.
	// Whether the final value maps to an integer exit code is the driver's
	// call (ExitCode, T009), not the checker's — `x ~ "cd"` as a last
	// statement compiles and runs; only the exit mapping rejects it.
	if rw, ok := t.(*ast.ReturnType); ok {
		t = rw.Inner
	}
	ast.SetType(program, t)
	return program, nil
}

// NewSymTable builds a type-check symbol table preloaded with the
// primitive registry, for callers (the REPL) that need to hold one open
// across several Check calls.
func NewSymTable() *symtable.TypeCheckSymTable {
	return symtable.NewTypeCheckSymTable(primitives.BuiltinConstantTypes())
}

// StartSession opens the persistent Normal frame a REPL's successive
// CheckStatements calls accumulate top-level declarations into, the same
// way interpreter.StartSession's frame does for values — without it, a
// REPL's top-level bindings would land directly in the Constants bottom
// frame and stay wrongly visible across a Function frame (see
// internal/typecheck's grounding notes for the one-shot-compile version
// of this bug).
func StartSession(sym *symtable.TypeCheckSymTable) {
	sym.Push(symtable.Normal)
}

// EndSession closes the frame StartSession opened.
func EndSession(sym *symtable.TypeCheckSymTable) {
	sym.Pop()
}

// CheckStatements desugars and type-checks a single REPL line against
// sym's current frame stack, returning the line's resulting type.
func CheckStatements(sym *symtable.TypeCheckSymTable, stmts []ast.Node) (ast.Type, *zerrors.ZError) {
	for i, s := range stmts {
		stmts[i] = desugar(s)
	}
	c := &Checker{sym: sym}
	t, err := c.checkStatements(stmts)
	if err != nil {
		return nil, err
	}
	if rw, ok := t.(*ast.ReturnType); ok {
		t = rw.Inner
	}
	return t, nil
}

func (c *Checker) boolT() ast.Type { return primitives.Lookup("bool") }
func (c *Checker) strT() ast.Type  { return primitives.Lookup("str") }
func (c *Checker) unitT() ast.Type { return primitives.Lookup("unit") }

// resolveTypeIdent resolves a type annotation's name to its Type, checking
// the local frame stack first (for a locally-declared class/struct) and
// falling back to the primitive registry.
func (c *Checker) resolveTypeIdent(name string) (ast.Type, bool) {
	if t, ok := c.sym.GetTypeName(name); ok {
		return t, true
	}
	t := primitives.Lookup(name)
	if _, isAny := t.(ast.AnyType); isAny {
		return nil, false
	}
	return t, true
}

// typeExprType evaluates an expression used in type-annotation position.
// Only a bare identifier naming a known type is supported — arbitrary
// type-level expressions are out of scope for this checker.
func (c *Checker) typeExprType(n ast.Node) (ast.Type, *zerrors.ZError) {
	id, ok := n.(*ast.Ident)
	if !ok {
		return nil, zerrors.P020()
	}
	t, ok := c.resolveTypeIdent(id.Name)
	if !ok {
		return nil, zerrors.T010(id.Name)
	}
	return t, nil
}

func (c *Checker) checkStatements(stmts []ast.Node) (ast.Type, *zerrors.ZError) {
	last := c.unitT()
	for _, s := range stmts {
		if _, ok := s.(*ast.Comment); ok {
			continue
		}
		t, err := c.checkNode(s)
		if err != nil {
			return nil, err
		}
		last = t
	}
	return last, nil
}

func (c *Checker) checkBlock(b *ast.Block) (ast.Type, *zerrors.ZError) {
	c.sym.Push(symtable.Normal)
	t, err := c.checkStatements(b.Content)
	c.sym.Pop()
	if err != nil {
		return nil, err
	}
	ast.SetType(b, t)
	return t, nil
}

func (c *Checker) checkNode(n ast.Node) (ast.Type, *zerrors.ZError) {
	switch x := n.(type) {
	case *ast.Literal:
		t := x.Value.ValueType()
		ast.SetType(x, t)
		return t, nil
	case *ast.Ident:
		t, ok := c.sym.Get(x.Name)
		if !ok {
			return nil, zerrors.T002(x.Name)
		}
		ast.SetType(x, t)
		return t, nil
	case *ast.BinaryOpr:
		return c.checkBinaryOpr(x)
	case *ast.UnaryOpr:
		return c.checkUnaryOpr(x)
	case *ast.Call:
		return c.checkCall(x)
	case *ast.Member:
		return c.checkMember(x)
	case *ast.Declare:
		return c.checkDeclare(x)
	case *ast.Set:
		return c.checkSet(x)
	case *ast.If:
		return c.checkIf(x)
	case *ast.Block:
		return c.checkBlock(x)
	case *ast.Delete:
		for _, id := range x.Names {
			if _, ok := c.sym.Get(id.Name); !ok {
				return nil, zerrors.T002(id.Name)
			}
		}
		ast.SetType(x, c.unitT())
		return c.unitT(), nil
	case *ast.Return:
		var rt ast.Type = c.unitT()
		if x.Value != nil {
			t, err := c.checkNode(x.Value)
			if err != nil {
				return nil, err
			}
			rt = t
		}
		if prior, _ := c.sym.SetBlockReturn(rt); prior != nil && !ast.TypeEqual(prior, rt) {
			return nil, zerrors.T003(prior.TypeName(), rt.TypeName())
		}
		// The wrapper marks "this path returns rt" as the statement's own
		// type, so it propagates through block composition until a
		// returnable boundary (a procedure or the top level) unwraps it.
		wrapped := &ast.ReturnType{Inner: rt}
		ast.SetType(x, wrapped)
		return wrapped, nil
	case *ast.Procedure:
		return c.checkProcedure(x)
	case *ast.Preprocess:
		return c.checkPreprocess(x)
	case *ast.Defer:
		if _, err := c.checkNode(x.Content); err != nil {
			return nil, err
		}
		ast.SetType(x, c.unitT())
		return c.unitT(), nil
	case *ast.Class:
		return c.checkClass(x)
	case *ast.Comment:
		return c.unitT(), nil
	default:
		return nil, zerrors.Internal(nil, "checkNode: unhandled node type")
	}
}

func (c *Checker) checkBinaryOpr(x *ast.BinaryOpr) (ast.Type, *zerrors.ZError) {
	if x.Ty == "@" {
		if _, err := c.checkNode(x.Op1); err != nil {
			return nil, err
		}
		dst, err := c.typeExprType(x.Op2)
		if err != nil {
			return nil, err
		}
		ast.SetType(x, dst)
		return dst, nil
	}
	t1, err := c.checkNode(x.Op1)
	if err != nil {
		return nil, err
	}
	t2, err := c.checkNode(x.Op2)
	if err != nil {
		return nil, err
	}
	if x.Ty == "&&" || x.Ty == "||" {
		if !ast.TypeEqual(t1, c.boolT()) || !ast.TypeEqual(t2, c.boolT()) {
			return nil, zerrors.T004("bool", t1.TypeName()+", "+t2.TypeName())
		}
		ast.SetType(x, c.boolT())
		return c.boolT(), nil
	}
	ns := t1.Namespace()
	if ns == nil {
		return nil, zerrors.T005(x.Ty)
	}
	if _, ok := ns[x.Ty]; !ok {
		return nil, zerrors.T005(x.Ty)
	}
	if !ast.TypeEqual(t1, t2) {
		return nil, zerrors.T004(t1.TypeName(), t2.TypeName())
	}
	var result ast.Type
	switch x.Ty {
	case "_eq", "_ne", "_lt", "_le", "_gt", "_ge":
		result = c.boolT()
	case "_concat":
		result = c.strT()
	default:
		result = t1
	}
	ast.SetType(x, result)
	return result, nil
}

func (c *Checker) checkUnaryOpr(x *ast.UnaryOpr) (ast.Type, *zerrors.ZError) {
	t, err := c.checkNode(x.Operand)
	if err != nil {
		return nil, err
	}
	switch x.Ty {
	case "_not":
		ns := t.Namespace()
		if ns == nil {
			return nil, zerrors.T005(x.Ty)
		}
		if _, ok := ns["_not"]; !ok {
			return nil, zerrors.T005("_not")
		}
		ast.SetType(x, c.boolT())
		return c.boolT(), nil
	default: // _un_add, _un_sub, ++, --
		ns := t.Namespace()
		method := x.Ty
		if method == "++" || method == "--" {
			method = "_add"
		}
		if ns == nil {
			return nil, zerrors.T005(x.Ty)
		}
		if _, ok := ns[method]; !ok {
			return nil, zerrors.T005(x.Ty)
		}
		ast.SetType(x, t)
		return t, nil
	}
}

// checkCall resolves the callee's type. A desugared method call (its
// Called is a bare Ident that isn't itself a bound name, e.g. `len` from
// `s.len()`) falls back to looking the name up in the receiver's (first
// argument's) namespace, mirroring what the member-call desugar rewrote.
func (c *Checker) checkCall(x *ast.Call) (ast.Type, *zerrors.ZError) {
	var calleeT ast.Type
	if id, ok := x.Called.(*ast.Ident); ok {
		if t, found := c.sym.Get(id.Name); found {
			calleeT = t
			if _, err := c.checkNode(id); err != nil {
				return nil, err
			}
		} else if len(x.Args) > 0 {
			recvT, rerr := c.checkNode(x.Args[0])
			if rerr != nil {
				return nil, rerr
			}
			if ns := recvT.Namespace(); ns != nil {
				if entry, ok := ns[id.Name]; ok {
					if entry.Type != nil {
						calleeT = entry.Type
					} else {
						calleeT = entry.Value.ValueType()
					}
				}
			}
			if calleeT == nil {
				return nil, zerrors.T002(id.Name)
			}
		} else {
			return nil, zerrors.T002(id.Name)
		}
	} else {
		t, err := c.checkNode(x.Called)
		if err != nil {
			return nil, err
		}
		calleeT = t
	}
	argTypes := make([]ast.Type, len(x.Args))
	for i, a := range x.Args {
		t, err := c.checkNode(a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}
	for _, a := range x.Kwargs {
		if _, err := c.checkNode(a); err != nil {
			return nil, err
		}
	}
	// Calling a field-carrying type directly constructs an instance; the
	// interpreter performs the actual field assembly. Positional arguments
	// match fields in declaration order.
	if tv, ok := calleeT.(*ast.DefType); ok && tv.Fields != nil {
		if len(x.Args) > len(tv.FieldOrder) {
			return nil, zerrors.T008(len(tv.FieldOrder), len(x.Args))
		}
		for i, at := range argTypes {
			ft := tv.Fields[tv.FieldOrder[i]]
			if !ast.TypeEqual(ft, at) {
				return nil, zerrors.T004(ft.TypeName(), at.TypeName())
			}
		}
		for name := range x.Kwargs {
			if _, ok := tv.Fields[name]; !ok {
				return nil, zerrors.T005(name)
			}
		}
		ast.SetType(x, tv)
		return tv, nil
	}
	sig, ok := ast.ProcSignature(calleeT)
	if !ok {
		return nil, zerrors.T007(calleeName(x.Called))
	}
	// A nil parameter list marks a builtin whose arity the checker does
	// not verify; everything else gets arity and element-wise matching.
	if sig.Params != nil {
		if len(x.Args) > len(sig.Params) {
			return nil, zerrors.T008(len(sig.Params), len(x.Args))
		}
		if len(x.Args)+len(x.Kwargs) < sig.Required {
			return nil, zerrors.T008(sig.Required, len(x.Args)+len(x.Kwargs))
		}
		for i, at := range argTypes {
			if !ast.TypeEqual(sig.Params[i], at) {
				return nil, zerrors.T004(sig.Params[i].TypeName(), at.TypeName())
			}
		}
	}
	ret := sig.Return
	if ret == nil {
		ret = ast.AnyType{}
	}
	ast.SetType(x, ret)
	return ret, nil
}

func calleeName(n ast.Node) string {
	if id, ok := n.(*ast.Ident); ok {
		return id.Name
	}
	return "<expr>"
}

func (c *Checker) checkMember(x *ast.Member) (ast.Type, *zerrors.ZError) {
	pt, err := c.checkNode(x.Parent)
	if err != nil {
		return nil, err
	}
	ns := pt.Namespace()
	if ns == nil {
		return nil, zerrors.T005(x.Name)
	}
	entry, ok := ns[x.Name]
	if !ok {
		if d, ok := pt.(*ast.DefType); ok && d.Fields != nil {
			if ft, ok := d.Fields[x.Name]; ok {
				x.Ty = ast.MemberField
				ast.SetType(x, ft)
				return ft, nil
			}
		}
		return nil, zerrors.T005(x.Name)
	}
	var result ast.Type
	if entry.Type != nil {
		x.Ty = ast.MemberNamespace
		result = entry.Type
	} else {
		x.Ty = ast.MemberMethod
		result = entry.Value.ValueType()
	}
	ast.SetType(x, result)
	return result, nil
}

func (c *Checker) checkDeclare(x *ast.Declare) (ast.Type, *zerrors.ZError) {
	var declaredTy ast.Type
	if x.Ty != nil {
		t, err := c.typeExprType(x.Ty)
		if err != nil {
			return nil, err
		}
		declaredTy = t
	}
	contentTy, err := c.checkNode(x.Content)
	if err != nil {
		return nil, err
	}
	final := contentTy
	if declaredTy != nil {
		if !ast.TypeEqual(declaredTy, contentTy) {
			// The annotation doesn't match the content's type outright; an
			// implicit `@`-cast to the annotated type is inserted and the
			// rewritten content re-checked. Only types whose namespace can
			// actually cast get the implicit rewrite.
			ns := contentTy.Namespace()
			if ns == nil {
				return nil, zerrors.T004(declaredTy.TypeName(), contentTy.TypeName())
			}
			if _, ok := ns["_typecast"]; !ok {
				return nil, zerrors.T004(declaredTy.TypeName(), contentTy.TypeName())
			}
			cast := &ast.BinaryOpr{Ty: "@", Op1: x.Content, Op2: x.Ty}
			if _, err := c.checkNode(cast); err != nil {
				return nil, err
			}
			x.Content = cast
		}
		final = declaredTy
	}
	if _, isClass := x.Content.(*ast.Class); isClass {
		if d, ok := final.(*ast.DefType); ok && d.Name == "" {
			d.Name = x.Variable.Name
		}
	}
	if _, exists := c.sym.Top().Table[x.Variable.Name]; exists {
		return nil, zerrors.T011()
	}
	c.sym.Declare(x.Variable.Name, final)
	if d, ok := final.(*ast.DefType); ok && d.Fields != nil {
		c.sym.DeclareType(x.Variable.Name, final)
	}
	ast.SetType(x.Variable, final)
	ast.SetType(x, final)
	return final, nil
}

func (c *Checker) checkSet(x *ast.Set) (ast.Type, *zerrors.ZError) {
	t, ok := c.sym.Get(x.Variable.Name)
	if !ok {
		return nil, zerrors.T002(x.Variable.Name)
	}
	contentTy, err := c.checkNode(x.Content)
	if err != nil {
		return nil, err
	}
	if !ast.TypeEqual(t, contentTy) {
		return nil, zerrors.T004(t.TypeName(), contentTy.TypeName())
	}
	ast.SetType(x.Variable, t)
	ast.SetType(x, t)
	return t, nil
}

func (c *Checker) checkIf(x *ast.If) (ast.Type, *zerrors.ZError) {
	var results []ast.Type
	hasElse := false
	for i := range x.Conditions {
		branch := &x.Conditions[i]
		if branch.Condition != nil {
			ct, err := c.checkNode(branch.Condition)
			if err != nil {
				return nil, err
			}
			if !ast.TypeEqual(ct, c.boolT()) {
				return nil, zerrors.T004("bool", ct.TypeName())
			}
		} else {
			hasElse = true
		}
		bt, err := c.checkBlock(branch.IfTrue)
		if err != nil {
			return nil, err
		}
		results = append(results, bt)
	}
	result := ast.Type(c.unitT())
	if hasElse && len(results) > 0 {
		// Branches ending in `ret` don't yield a value to the if-expression
		// itself; only the branches that fall through participate in
		// unification. An if whose every branch returns is itself a return.
		var values []ast.Type
		for _, r := range results {
			if _, returns := r.(*ast.ReturnType); !returns {
				values = append(values, r)
			}
		}
		switch {
		case len(values) == 0:
			result = results[0]
		default:
			result = values[0]
			for _, r := range values[1:] {
				if !ast.TypeEqual(result, r) {
					result = ast.AnyType{}
					break
				}
			}
		}
	}
	ast.SetType(x, result)
	return result, nil
}

func (c *Checker) checkProcedure(x *ast.Procedure) (ast.Type, *zerrors.ZError) {
	c.sym.Push(symtable.Function)
	paramTypes := make([]ast.Type, len(x.Args))
	for i, a := range x.Args {
		var at ast.Type = ast.AnyType{}
		if a.Ty != nil {
			t, err := c.typeExprType(a.Ty)
			if err != nil {
				c.sym.Pop()
				return nil, err
			}
			at = t
		}
		if a.Default != nil {
			if _, err := c.checkNode(a.Default); err != nil {
				c.sym.Pop()
				return nil, err
			}
		}
		paramTypes[i] = at
		c.sym.Declare(a.Name.Name, at)
		ast.SetType(a.Name, at)
	}
	var declaredRet ast.Type
	if x.ReturnType != nil {
		t, err := c.typeExprType(x.ReturnType)
		if err != nil {
			c.sym.Pop()
			return nil, err
		}
		declaredRet = t
	}
	bodyTy, err := c.checkBlock(x.Content)
	if err != nil {
		c.sym.Pop()
		return nil, err
	}
	top := c.sym.Pop()
	ret := bodyTy
	if rw, ok := ret.(*ast.ReturnType); ok {
		// The body ends on an explicit `ret`; a procedure boundary is
		// returnable, so the wrapper unwraps here.
		ret = rw.Inner
	}
	if top != nil && top.BlockReturn != nil {
		ret = top.BlockReturn
	}
	if declaredRet != nil {
		if _, retIsAny := ret.(ast.AnyType); !ast.TypeEqual(declaredRet, ret) && !retIsAny {
			return nil, zerrors.T003(declaredRet.TypeName(), ret.TypeName())
		}
		ret = declaredRet
	}
	required := 0
	for _, a := range x.Args {
		if a.Default == nil {
			required++
		}
	}
	sig := &ast.Signature{Params: paramTypes, Required: required, Return: ret}
	t := &ast.GenericType{Base: primitives.ProcBase(), TypeArgs: []ast.GenericArg{{Name: "_call", Sig: sig}}}
	ast.SetType(x, t)
	return t, nil
}

// checkPreprocess evaluates a `pre` block's content at compile time,
// in a fresh type-check/interpret symbol-table pair isolated from the
// enclosing scope, then inlines the result as a Literal — `pre` is
// observable only at compile time and never sees the surrounding
// program's bindings.
func (c *Checker) checkPreprocess(x *ast.Preprocess) (ast.Type, *zerrors.ZError) {
	fresh := &Checker{sym: symtable.NewTypeCheckSymTable(primitives.BuiltinConstantTypes())}
	if _, err := fresh.checkNode(x.Content); err != nil {
		return nil, err
	}
	v, err := interpreter.EvalStatements(interpreter.NewSymTable(), []ast.Node{x.Content})
	if err != nil {
		return nil, err
	}
	span, _ := x.Span()
	lit := ast.NewLiteral(v, span)
	ast.SetType(lit, v.ValueType())
	x.Content = lit
	ast.SetType(x, v.ValueType())
	return v.ValueType(), nil
}

func (c *Checker) checkClass(x *ast.Class) (ast.Type, *zerrors.ZError) {
	fields := map[string]ast.Type{}
	var fieldOrder []string
	for _, a := range x.Args {
		var ft ast.Type = ast.AnyType{}
		if a.Ty != nil {
			t, err := c.typeExprType(a.Ty)
			if err != nil {
				return nil, err
			}
			ft = t
		}
		fields[a.Name.Name] = ft
		fieldOrder = append(fieldOrder, a.Name.Name)
		if a.Default != nil {
			if _, err := c.checkNode(a.Default); err != nil {
				return nil, err
			}
		}
	}
	if x.Content != nil {
		x.Namespace = map[string]ast.Node{}
		c.sym.Push(symtable.Function)
		for _, stmt := range x.Content.Content {
			if _, ok := stmt.(*ast.Comment); ok {
				continue
			}
			decl, ok := stmt.(*ast.Declare)
			if !ok {
				c.sym.Pop()
				return nil, zerrors.T013()
			}
			if x.IsStruct && decl.Variable.Name == "_new" {
				c.sym.Pop()
				return nil, zerrors.T014()
			}
			if _, err := c.checkNode(decl); err != nil {
				c.sym.Pop()
				return nil, err
			}
			// Declarations flagged `inst` are per-instance fields, not
			// namespace entries; the implicit constructor fills them in
			// declaration order.
			if hasFlag(decl.Flags, ast.FlagInst) {
				fields[decl.Variable.Name] = decl.ResolvedType()
				fieldOrder = append(fieldOrder, decl.Variable.Name)
				continue
			}
			x.Namespace[decl.Variable.Name] = decl
		}
		c.sym.Pop()
	}
	x.Fields = fields
	def := &ast.DefType{NamespaceM: map[string]ast.NamespaceEntry{}}
	if len(fieldOrder) > 0 || x.IsStruct {
		def.Fields = fields
		def.FieldOrder = fieldOrder
	}
	for name, node := range x.Namespace {
		if decl, ok := node.(*ast.Declare); ok {
			def.NamespaceM[name] = ast.NamespaceEntry{Type: decl.ResolvedType()}
		}
	}
	ast.SetType(x, def)
	return def, nil
}

func hasFlag(flags []ast.FlaggedSpan, want ast.Flag) bool {
	for _, f := range flags {
		if f.Flag == want {
			return true
		}
	}
	return false
}
