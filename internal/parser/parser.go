// internal/parser/parser.go
package parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
	"zyxt/internal/lexer"
	"zyxt/internal/token"
)

// parser walks a flat token stream with one token of lookahead, building
// AST nodes bottom-up by recursive descent. Parenthesisation is handled by
// recursive calls rather than a flattened bracket-matching pre-pass, and
// keyword-led constructs (if/proc/class/del/ret/pre/defer) are dispatched
// on their leading token before falling through to the binary-operator
// precedence climb.
type parser struct {
	toks     []token.Token
	pos      int
	filename string
}

// Parse lexes nothing itself — it consumes an already-tokenized stream —
// and returns the top-level block, marked Returnable so a bare `ret` at
// file scope exits the program rather than propagating further.
func Parse(toks []token.Token, filename string) (*ast.Block, *zerrors.ZError) {
	p := &parser{toks: toks, filename: filename}
	stmts, err := p.parseStatements(func(k token.Kind) bool { return false })
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, zerrors.P002().WithSpan(p.peek().Span)
	}
	return &ast.Block{Content: stmts, Returnable: true}, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.Unknown}
	}
	return p.toks[p.pos]
}

func (p *parser) peekKind() token.Kind { return p.peek().Kind }

func (p *parser) advance() token.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) check(k token.Kind) bool { return p.peekKind() == k }

func (p *parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *parser) expect(k token.Kind, onMissing *zerrors.ZError) (token.Token, *zerrors.ZError) {
	if t, ok := p.match(k); ok {
		return t, nil
	}
	return token.Token{}, onMissing.WithSpan(p.peek().Span)
}

// collectComments consumes any run of comment tokens, preserving them as
// standalone nodes the caller can splice into the surrounding statement
// list (comments never participate in expressions).
func (p *parser) collectComments() []ast.Node {
	var out []ast.Node
	for p.check(token.CommentLine) || p.check(token.CommentBlock) {
		t := p.advance()
		out = append(out, &ast.Comment{RawSpan: t.Span, Text: t.Value})
	}
	return out
}

// --- Statements ---

func (p *parser) parseStatements(stop func(token.Kind) bool) ([]ast.Node, *zerrors.ZError) {
	var out []ast.Node
	for {
		out = append(out, p.collectComments()...)
		if p.atEnd() || stop(p.peekKind()) {
			return out, nil
		}
		if _, ok := p.match(token.StatementEnd); ok {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		// A nil statement with no error means the current token couldn't
		// start anything parseable (e.g. a stray closing bracket) — the
		// token is still unconsumed, so treating this as success would
		// spin forever re-parsing the same position.
		if stmt == nil {
			switch p.peekKind() {
			case token.CloseParen, token.CloseBrace, token.CloseSquare:
				return nil, zerrors.P023().WithSpan(p.peek().Span)
			default:
				return nil, zerrors.P002().WithSpan(p.peek().Span)
			}
		}
		out = append(out, stmt)
	}
}

func (p *parser) parseStatement() (ast.Node, *zerrors.ZError) {
	if token.IsFlag(p.peekKind()) || (p.check(token.Ident) && p.identStartsDeclare()) {
		return p.parseDeclare()
	}
	switch p.peekKind() {
	case token.KwDel:
		return p.parseDelete()
	case token.KwRet:
		return p.parseReturn()
	case token.KwDefer:
		return p.parseDefer()
	case token.KwPre:
		return p.parsePreprocess()
	case token.KwIf:
		return p.parseIf()
	case token.KwClass, token.KwStruct:
		return p.parseClass()
	default:
		return p.parseAssignOrExpr()
	}
}

// identStartsDeclare looks one ident ahead (optionally past a `: Type`
// annotation) for `:=`, distinguishing `x := 1` from a plain expression
// statement starting with an identifier.
func (p *parser) identStartsDeclare() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.check(token.Ident) {
		return false
	}
	p.advance()
	if p.check(token.Colon) {
		p.advance()
		depth := 0
		for !p.atEnd() {
			switch p.peekKind() {
			case token.OpenParen, token.OpenSquare, token.OpenBrace:
				depth++
			case token.CloseParen, token.CloseSquare, token.CloseBrace:
				if depth == 0 {
					return false
				}
				depth--
			case token.Declare:
				if depth == 0 {
					return true
				}
			case token.StatementEnd, token.Comma:
				if depth == 0 {
					return false
				}
			}
			p.advance()
		}
		return false
	}
	return p.check(token.Declare)
}

func (p *parser) parseDeclare() (ast.Node, *zerrors.ZError) {
	var flags []ast.FlaggedSpan
	for token.IsFlag(p.peekKind()) {
		t := p.advance()
		f, _ := ast.FlagFromKind(t.Kind)
		flags = append(flags, ast.FlaggedSpan{Flag: f, Span: t.Span})
	}
	if !p.check(token.Ident) {
		return nil, zerrors.P013().WithSpan(p.peek().Span)
	}
	nameTok := p.advance()
	variable := &ast.Ident{Name: nameTok.Value, NameSpan: nameTok.Span}

	var ty ast.Node
	if _, ok := p.match(token.Colon); ok {
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		ty = t
	}
	eq, err := p.expect(token.Declare, zerrors.P004())
	if err != nil {
		return nil, err
	}
	content, err := p.parseExprStatement()
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, zerrors.P005().WithSpan(p.peek().Span)
	}
	eqSpan := eq.Span
	return &ast.Declare{Variable: variable, Content: content, Flags: flags, Ty: ty, EqSpan: &eqSpan}, nil
}

func (p *parser) parseDelete() (ast.Node, *zerrors.ZError) {
	kwd := p.advance().Span
	var names []*ast.Ident
	for {
		if !p.check(token.Ident) {
			return nil, zerrors.P015().WithSpan(p.peek().Span)
		}
		t := p.advance()
		id := &ast.Ident{Name: t.Value, NameSpan: t.Span}
		if p.check(token.Dot) {
			return nil, zerrors.P014().WithSpan(p.peek().Span)
		}
		names = append(names, id)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	return &ast.Delete{KwdSpan: &kwd, Names: names}, nil
}

func (p *parser) parseReturn() (ast.Node, *zerrors.ZError) {
	kwd := p.advance().Span
	if p.atStatementBoundary() {
		return &ast.Return{KwdSpan: &kwd}, nil
	}
	val, err := p.parseExprStatement()
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, zerrors.P005().WithSpan(p.peek().Span)
	}
	return &ast.Return{KwdSpan: &kwd, Value: val}, nil
}

func (p *parser) atStatementBoundary() bool {
	switch p.peekKind() {
	case token.StatementEnd, token.CloseBrace, token.Unknown:
		return true
	default:
		return p.atEnd()
	}
}

func (p *parser) parseDefer() (ast.Node, *zerrors.ZError) {
	kwd := p.advance().Span
	content, err := p.parseBlockOrExpr()
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, zerrors.P005().WithSpan(p.peek().Span)
	}
	return &ast.Defer{KwdSpan: kwd, Content: content}, nil
}

func (p *parser) parsePreprocess() (ast.Node, *zerrors.ZError) {
	kwd := p.advance().Span
	content, err := p.parseBlockOrExpr()
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, zerrors.P005().WithSpan(p.peek().Span)
	}
	return &ast.Preprocess{KwdSpan: kwd, Content: content}, nil
}

func (p *parser) parseBlockOrExpr() (ast.Node, *zerrors.ZError) {
	if p.check(token.OpenBrace) {
		return p.parseBlock()
	}
	return p.parseExprStatement()
}

func (p *parser) parseIf() (ast.Node, *zerrors.ZError) {
	branches, err := p.parseIfChain()
	if err != nil {
		return nil, err
	}
	return &ast.If{Conditions: branches}, nil
}

func (p *parser) parseIfChain() ([]ast.IfBranch, *zerrors.ZError) {
	kwd := p.advance().Span // `if` or `elif`
	cond, err := p.parseBinary(lowestPrec)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, zerrors.P007().WithSpan(kwd)
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	branches := []ast.IfBranch{{KwdSpan: &kwd, Condition: cond, IfTrue: block}}
	for {
		switch p.peekKind() {
		case token.KwElif:
			more, err := p.parseIfChain()
			if err != nil {
				return nil, err
			}
			return append(branches, more...), nil
		case token.KwElse:
			elseSpan := p.advance().Span
			if !p.check(token.OpenBrace) {
				return nil, zerrors.P017(p.peek().Value).WithSpan(p.peek().Span)
			}
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			branches = append(branches, ast.IfBranch{KwdSpan: &elseSpan, IfTrue: elseBlock})
			return branches, nil
		default:
			return branches, nil
		}
	}
}

func (p *parser) parseBlock() (*ast.Block, *zerrors.ZError) {
	open, err := p.expect(token.OpenBrace, zerrors.P018())
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements(func(k token.Kind) bool { return k == token.CloseBrace })
	if err != nil {
		return nil, err
	}
	close, err := p.expect(token.CloseBrace, zerrors.P009("}"))
	if err != nil {
		return nil, err
	}
	span, _ := zerrors.MergeSpan(open.Span, close.Span)
	return &ast.Block{Content: stmts, BraceSpans: &span}, nil
}

func (p *parser) parseClass() (ast.Node, *zerrors.ZError) {
	isStruct := p.peekKind() == token.KwStruct
	kwd := p.advance().Span

	if !isStruct {
		if p.check(token.Bar) || p.check(token.OpOr) {
			return nil, zerrors.P010().WithSpan(p.peek().Span)
		}
		if !p.check(token.OpenBrace) {
			return nil, zerrors.P011().WithSpan(p.peek().Span)
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Class{IsStruct: false, KwdSpan: &kwd, Content: body}, nil
	}

	var args []ast.Argument
	if p.check(token.Bar) || p.check(token.OpOr) {
		a, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		args = a
	}
	var body *ast.Block
	if p.check(token.OpenBrace) {
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		body = b
	}
	return &ast.Class{IsStruct: true, KwdSpan: &kwd, Content: body, Args: args}, nil
}

// parseArgList parses a `|name: Type: default, ...|` argument list, the
// delimiter a `proc`/`fn`/`struct` uses instead of the parentheses a call
// site uses for its argument list. An empty list can arrive as a single
// OpOr token (`||`) rather than two adjacent Bars, since the lexer has no
// way to tell them apart without parser context.
func (p *parser) parseArgList() ([]ast.Argument, *zerrors.ZError) {
	if _, ok := p.match(token.OpOr); ok {
		return nil, nil
	}
	if _, err := p.expect(token.Bar, zerrors.P007()); err != nil {
		return nil, err
	}
	var args []ast.Argument
	for !p.check(token.Bar) {
		if !p.check(token.Ident) {
			return nil, zerrors.P019().WithSpan(p.peek().Span)
		}
		t := p.advance()
		arg := ast.Argument{Name: &ast.Ident{Name: t.Value, NameSpan: t.Span}}
		// An argument is `name`, `name: Type`, or `name: Type: default` —
		// the second colon (not `=`) introduces the default expression.
		if _, ok := p.match(token.Colon); ok {
			ty, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			arg.Ty = ty
			if _, ok := p.match(token.Colon); ok {
				def, err := p.parseBinary(lowestPrec)
				if err != nil {
					return nil, err
				}
				if def == nil {
					return nil, zerrors.P005().WithSpan(p.peek().Span)
				}
				arg.Default = def
			}
		}
		args = append(args, arg)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(token.Bar, zerrors.P009("|")); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseTypeExpr() (ast.Node, *zerrors.ZError) {
	n, err := p.parseBinary(lowestPrec)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, zerrors.P020().WithSpan(p.peek().Span)
	}
	return n, nil
}

// parseExprStatement parses one expression; a trailing `;` is left for
// parseStatements to consume (separators are optional before `}`).
func (p *parser) parseExprStatement() (ast.Node, *zerrors.ZError) {
	n, err := p.parseAssignOrExpr()
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseAssignOrExpr() (ast.Node, *zerrors.ZError) {
	left, err := p.parseBinary(lowestPrec)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	if eq, ok := p.match(token.Assign); ok {
		ident, ok := left.(*ast.Ident)
		if !ok {
			return nil, zerrors.P004().WithSpan(eq.Span)
		}
		rhs, err := p.parseAssignOrExpr()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, zerrors.P005().WithSpan(p.peek().Span)
		}
		eqSpan := eq.Span
		return &ast.Set{Variable: ident, Content: rhs, EqSpan: &eqSpan}, nil
	}
	if p.check(token.CompoundOp) {
		ident, ok := left.(*ast.Ident)
		if !ok {
			return nil, zerrors.P004().WithSpan(p.peek().Span)
		}
		t := p.advance()
		binKind, _ := token.CompoundBinaryKind(t.Value)
		rhs, err := p.parseAssignOrExpr()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, zerrors.P005().WithSpan(p.peek().Span)
		}
		method, _ := binKind.MethodName()
		opSpan := t.Span
		combined := &ast.BinaryOpr{Ty: method, OprSpan: &opSpan, Op1: ident, Op2: rhs}
		eqSpan := t.Span
		return &ast.Set{Variable: ident, Content: combined, EqSpan: &eqSpan}, nil
	}
	// An unparenthesised argument list: a simple identifier immediately
	// followed by comma-separated expressions with no intervening operator
	// is a call, `f 1, 2` == `f(1, 2)`. Anything other than an identifier
	// in called position is an error rather than two adjacent statements.
	if startsUnparenthesisedArg(p.peekKind()) {
		id, ok := left.(*ast.Ident)
		if !ok {
			return nil, zerrors.P021().WithSpan(p.peek().Span)
		}
		var args []ast.Node
		for {
			a, err := p.parseBinary(lowestPrec)
			if err != nil {
				return nil, err
			}
			if a == nil {
				return nil, zerrors.P003().WithSpan(p.peek().Span)
			}
			args = append(args, a)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		return &ast.Call{Called: id, Args: args, Kwargs: map[string]ast.Node{}}, nil
	}
	return left, nil
}

// startsUnparenthesisedArg limits unparenthesised call arguments to tokens
// that can only begin a value — brackets stay out so a block or grouping
// statement following an identifier isn't swallowed as an argument.
func startsUnparenthesisedArg(k token.Kind) bool {
	switch k {
	case token.LiteralNumber, token.LiteralString, token.LiteralMisc, token.Ident:
		return true
	default:
		return false
	}
}

// --- Binary operator precedence climbing ---

const lowestPrec = 0

func (p *parser) parseBinary(minPrec int) (ast.Node, *zerrors.ZError) {
	left, err := p.parseTypecastChain()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	for {
		prec, ok := p.peekKind().Precedence()
		// A smaller order binds tighter, so climb on the inverted value.
		power := 100 - prec
		if !ok || power < minPrec {
			return left, nil
		}
		opTok := p.advance()
		nextMin := power + 1
		if opTok.Kind == token.OpPow {
			nextMin = power // right-associative
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, zerrors.P006().WithSpan(opTok.Span)
		}
		ty := surfaceOrMethod(opTok.Kind)
		opSpan := opTok.Span
		left = &ast.BinaryOpr{Ty: ty, OprSpan: &opSpan, Op1: left, Op2: right}
	}
}

// surfaceOrMethod returns the desugared method name for operators that
// rewrite to one, and the raw surface symbol for `&&`/`||`, whose
// operands the desugar pass casts to bool rather than dispatching
// through a namespace method.
func surfaceOrMethod(k token.Kind) string {
	if m, ok := k.MethodName(); ok {
		return m
	}
	switch k {
	case token.OpAnd:
		return "&&"
	case token.OpOr:
		return "||"
	default:
		return "?"
	}
}

func (p *parser) parseTypecastChain() (ast.Node, *zerrors.ZError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	for {
		t, ok := p.match(token.OpTypecast)
		if !ok {
			return left, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, zerrors.P006().WithSpan(t.Span)
		}
		span := t.Span
		left = &ast.BinaryOpr{Ty: "@", OprSpan: &span, Op1: left, Op2: rhs}
	}
}

func (p *parser) parseUnary() (ast.Node, *zerrors.ZError) {
	switch p.peekKind() {
	case token.Not, token.OpSub, token.OpAdd, token.UnaryPlusPlus, token.UnaryMinusMinus:
		t := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if operand == nil {
			return nil, zerrors.P007().WithSpan(t.Span)
		}
		ty := unaryMethodName(t.Kind)
		span := t.Span
		return &ast.UnaryOpr{Ty: ty, OprSpan: &span, Operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

func unaryMethodName(k token.Kind) string {
	switch k {
	case token.Not:
		return "_not"
	case token.OpSub:
		return "_un_sub"
	case token.OpAdd:
		return "_un_add"
	case token.UnaryPlusPlus:
		return "++"
	case token.UnaryMinusMinus:
		return "--"
	default:
		return "?"
	}
}

func (p *parser) parsePostfix() (ast.Node, *zerrors.ZError) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	for {
		switch p.peekKind() {
		case token.Dot:
			dot := p.advance().Span
			if !p.check(token.Ident) {
				return nil, zerrors.P022().WithSpan(p.peek().Span)
			}
			nameTok := p.advance()
			nameSpan := nameTok.Span
			left = &ast.Member{Ty: ast.MemberField, Name: nameTok.Value, Parent: left, NameSpan: &nameSpan, DotSpan: &dot}
		case token.OpenParen:
			call, err := p.parseCallSuffix(left)
			if err != nil {
				return nil, err
			}
			left = call
		case token.UnaryPlusPlus, token.UnaryMinusMinus:
			t := p.advance()
			span := t.Span
			left = &ast.UnaryOpr{Ty: unaryMethodName(t.Kind), OprSpan: &span, Operand: left, Postfix: true}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseCallSuffix(called ast.Node) (ast.Node, *zerrors.ZError) {
	open := p.advance().Span // '('
	var args []ast.Node
	kwargs := map[string]ast.Node{}
	for !p.check(token.CloseParen) {
		if p.check(token.Ident) {
			save := p.pos
			nameTok := p.advance()
			if _, ok := p.match(token.Colon); ok {
				val, err := p.parseBinary(lowestPrec)
				if err != nil {
					return nil, err
				}
				if val == nil {
					return nil, zerrors.P003().WithSpan(p.peek().Span)
				}
				kwargs[nameTok.Value] = val
				if _, ok := p.match(token.Comma); !ok {
					break
				}
				continue
			}
			p.pos = save
		}
		val, err := p.parseBinary(lowestPrec)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, zerrors.P003().WithSpan(p.peek().Span)
		}
		args = append(args, val)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	close, err := p.expect(token.CloseParen, zerrors.P024())
	if err != nil {
		return nil, err
	}
	span, _ := zerrors.MergeSpan(open, close.Span)
	return &ast.Call{Called: called, ParenSpans: &span, Args: args, Kwargs: kwargs}, nil
}

func (p *parser) parsePrimary() (ast.Node, *zerrors.ZError) {
	switch p.peekKind() {
	case token.LiteralNumber:
		t := p.advance()
		return parseNumberLiteral(t), nil
	case token.LiteralString:
		t := p.advance()
		raw := t.Value[1 : len(t.Value)-1]
		return ast.NewLiteral(&ast.StrValue{V: lexer.Unescape(raw)}, t.Span), nil
	case token.LiteralMisc:
		t := p.advance()
		return ast.NewLiteral(miscLiteralValue(t.Value), t.Span), nil
	case token.Ident:
		t := p.advance()
		return &ast.Ident{Name: t.Value, NameSpan: t.Span}, nil
	case token.OpenParen:
		open := p.advance().Span
		inner, err := p.parseBinary(lowestPrec)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, zerrors.P003().WithSpan(open)
		}
		if _, err := p.expect(token.CloseParen, zerrors.P024()); err != nil {
			return nil, err
		}
		return inner, nil
	case token.OpenBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwProc, token.KwFn:
		return p.parseProcedure()
	// A bare `|args| body` with no leading `proc`/`fn` keyword is itself a
	// procedure literal; `||` is the zero-argument spelling and arrives as
	// one OpOr token rather than two adjacent Bars.
	case token.Bar, token.OpOr:
		return p.parseProcedureTail(false, nil)
	case token.KwClass, token.KwStruct:
		return p.parseClass()
	case token.KwPre:
		return p.parsePreprocess()
	case token.KwDefer:
		return p.parseDefer()
	default:
		return nil, nil
	}
}

func (p *parser) parseProcedure() (ast.Node, *zerrors.ZError) {
	isFn := p.peekKind() == token.KwFn
	kwd := p.advance().Span
	return p.parseProcedureTail(isFn, &kwd)
}

func (p *parser) parseProcedureTail(isFn bool, kwd *zerrors.Span) (ast.Node, *zerrors.ZError) {
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	var retType ast.Node
	if _, ok := p.match(token.Colon); ok {
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		retType = t
	}
	// The body is either a braced block or a single expression used as one.
	var body *ast.Block
	if p.check(token.OpenBrace) {
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		body = b
	} else {
		expr, err := p.parseBinary(lowestPrec)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, zerrors.P018().WithSpan(p.peek().Span)
		}
		body = &ast.Block{Content: []ast.Node{expr}}
	}
	body.Returnable = true
	return &ast.Procedure{IsFn: isFn, KwdSpan: kwd, Args: args, ReturnType: retType, Content: body}, nil
}

// parseNumberLiteral picks the narrowest representation a bare integer
// literal fits in, trying i32, i64, i128 and u128 in turn before falling
// back to an arbitrary-precision ibig. Float literals are always f64 — a
// narrower Kind is only ever reached via an explicit typecast.
func parseNumberLiteral(t token.Token) ast.Node {
	if strings.Contains(t.Value, ".") {
		f, _ := strconv.ParseFloat(t.Value, 64)
		return ast.NewLiteral(&ast.FloatValue{Kind: ast.F64, V: f}, t.Span)
	}
	n := new(big.Int)
	n.SetString(t.Value, 10)
	if n.IsInt64() && n.Int64() >= math.MinInt32 && n.Int64() <= math.MaxInt32 {
		return ast.NewLiteral(ast.NewInt(ast.I32, n.Int64()), t.Span)
	}
	if n.IsInt64() {
		return ast.NewLiteral(ast.NewInt(ast.I64, n.Int64()), t.Span)
	}
	for _, kind := range []ast.IntKind{ast.I128, ast.U128} {
		min, max := kind.Bounds()
		if n.Cmp(min) >= 0 && n.Cmp(max) <= 0 {
			return ast.NewLiteral(&ast.IntValue{Kind: kind, V: n}, t.Span)
		}
	}
	return ast.NewLiteral(&ast.BigIntValue{Signed: true, V: n}, t.Span)
}

func miscLiteralValue(word string) ast.Value {
	switch word {
	case "true":
		return &ast.BoolValue{V: true}
	case "false":
		return &ast.BoolValue{V: false}
	case "inf":
		return &ast.FloatValue{Kind: ast.F64, V: math.Inf(1)}
	case "null", "undef":
		return ast.UnitValue{}
	default:
		return ast.UnitValue{}
	}
}
