// internal/token/token.go
package token

import zerrors "zyxt/internal/errors"

// Kind identifies the lexical class of a token.
type Kind int

const (
	Unknown Kind = iota

	// comments
	CommentLine
	CommentBlock

	// flag keywords
	FlagPub
	FlagPriv
	FlagProt
	FlagConst
	FlagHoi
	FlagInst

	// keywords
	KwIf
	KwElif
	KwElse
	KwDo
	KwWhile
	KwFor
	KwDel
	KwRet
	KwProc
	KwFn
	KwPre
	KwDefer
	KwClass
	KwStruct

	// literals
	LiteralNumber
	LiteralString
	LiteralMisc // true, false, null, inf, undef

	// identifier
	Ident

	// punctuation
	StatementEnd // ;
	Comma
	Colon
	Bar // |

	// brackets
	OpenParen
	CloseParen
	OpenSquare
	CloseSquare
	OpenBrace
	CloseBrace

	// dot / declaration
	Dot
	Declare // :=

	// unary-only
	UnaryPlusPlus  // ++
	UnaryMinusMinus // --
	Not            // !

	// assignment
	Assign // =

	// compound-assignment carries the underlying binary kind alongside it;
	// represented via CompoundOp below rather than one constant per operator.
	CompoundOp

	// binary operators
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpConcat
	OpTypecast // @

	Whitespace
)

// Category is a trait token kinds can expose, consulted by the parser for
// adjacency rules (e.g. "can a call's '(' immediately follow this token?").
type Category int

const (
	CatOperator Category = iota
	CatLiteral
	CatParenthesis
	CatOpenParen
	CatCloseParen
	CatLiteralStringStart
	CatLiteralStringEnd
	CatValueStart
	CatValueEnd
)

var categories = map[Kind][]Category{
	LiteralNumber: {CatLiteral, CatValueStart, CatValueEnd},
	LiteralString: {CatLiteral, CatValueStart, CatValueEnd, CatLiteralStringStart, CatLiteralStringEnd},
	LiteralMisc:   {CatLiteral, CatValueStart, CatValueEnd},
	Ident:         {CatValueStart, CatValueEnd},
	CloseParen:    {CatParenthesis, CatCloseParen, CatValueEnd},
	CloseSquare:   {CatParenthesis, CatCloseParen, CatValueEnd},
	CloseBrace:    {CatParenthesis, CatCloseParen, CatValueEnd},
	OpenParen:     {CatParenthesis, CatOpenParen, CatValueStart},
	OpenSquare:    {CatParenthesis, CatOpenParen, CatValueStart},
	OpenBrace:     {CatParenthesis, CatOpenParen, CatValueStart},

	OpAdd: {CatOperator}, OpSub: {CatOperator}, OpMul: {CatOperator}, OpDiv: {CatOperator},
	OpRem: {CatOperator}, OpPow: {CatOperator}, OpEq: {CatOperator}, OpNe: {CatOperator},
	OpLt: {CatOperator}, OpLe: {CatOperator}, OpGt: {CatOperator}, OpGe: {CatOperator},
	OpAnd: {CatOperator}, OpOr: {CatOperator}, OpConcat: {CatOperator}, OpTypecast: {CatOperator},
	Not: {CatOperator}, UnaryPlusPlus: {CatOperator}, UnaryMinusMinus: {CatOperator},
}

// Categories reports the category set a kind belongs to.
func (k Kind) Categories() map[Category]bool {
	out := map[Category]bool{}
	for _, c := range categories[k] {
		out[c] = true
	}
	return out
}

func (k Kind) Is(c Category) bool { return k.Categories()[c] }

// Precedence: smaller binds tighter. Zero means "not a binary operator".
var precedence = map[Kind]int{
	OpPow:      3,
	OpMul:      6,
	OpDiv:      6,
	OpRem:      6,
	OpAdd:      8,
	OpSub:      8,
	OpEq:       10,
	OpNe:       10,
	OpLt:       10,
	OpLe:       10,
	OpGt:       10,
	OpGe:       10,
	OpAnd:      14,
	OpOr:       16,
	OpConcat:   18,
}

const (
	UnaryPrefixPrecedence = 1
	TypecastPrecedence    = 2
)

// Precedence returns (order, true) for binary operator kinds, order 0
// otherwise. Smaller order binds tighter.
func (k Kind) Precedence() (int, bool) {
	p, ok := precedence[k]
	return p, ok
}

// MethodName is the desugared method name a binary operator rewrites to,
// e.g. OpAdd -> "_add". Operators that survive past desugaring
// (OpAnd, OpOr, OpTypecast) and OpPow, which has no method, return false.
func (k Kind) MethodName() (string, bool) {
	switch k {
	case OpAdd:
		return "_add", true
	case OpSub:
		return "_sub", true
	case OpMul:
		return "_mul", true
	case OpDiv:
		return "_div", true
	case OpRem:
		return "_rem", true
	case OpEq:
		return "_eq", true
	case OpNe:
		return "_ne", true
	case OpLt:
		return "_lt", true
	case OpLe:
		return "_le", true
	case OpGt:
		return "_gt", true
	case OpGe:
		return "_ge", true
	case OpConcat:
		return "_concat", true
	default:
		return "", false
	}
}

// Token is a single lexed unit: its literal text, its kind (nil only
// transiently during lexing), its source span and the run of whitespace
// that preceded it (folded in so the parser can reconstruct raw text).
type Token struct {
	Value      string
	Kind       Kind
	Span       zerrors.Span
	Whitespace string
}

func (t Token) Raw() string { return t.Whitespace + t.Value }

// compoundOps maps compound-assignment operator text to the binary kind
// whose method the parser rewrites `x += y` into (`x = x + y`).
var compoundOps = map[string]Kind{
	"+=": OpAdd, "-=": OpSub, "*=": OpMul, "/=": OpDiv, "%=": OpRem,
	"~=": OpConcat,
}

// CompoundBinaryKind reports the underlying binary operator kind for a
// compound-assignment token value such as "+=".
func CompoundBinaryKind(value string) (Kind, bool) {
	k, ok := compoundOps[value]
	return k, ok
}

var keywords = map[string]Kind{
	"if": KwIf, "elif": KwElif, "else": KwElse, "do": KwDo, "while": KwWhile,
	"for": KwFor, "del": KwDel, "ret": KwRet, "proc": KwProc, "fn": KwFn,
	"pre": KwPre, "defer": KwDefer, "class": KwClass, "struct": KwStruct,
}

var flags = map[string]Kind{
	"pub": FlagPub, "priv": FlagPriv, "prot": FlagProt,
	"const": FlagConst, "hoi": FlagHoi, "inst": FlagInst,
}

var miscLiterals = map[string]bool{
	"true": true, "false": true, "null": true, "inf": true, "undef": true,
}

// ClassifyWord remaps a scanned [A-Za-z_][A-Za-z0-9_]* run to its keyword,
// flag or literal-misc kind, defaulting to Ident.
func ClassifyWord(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}
	if k, ok := flags[word]; ok {
		return k
	}
	if miscLiterals[word] {
		return LiteralMisc
	}
	return Ident
}

// IsFlag reports whether k is one of the six declaration-modifier flags.
func IsFlag(k Kind) bool {
	switch k {
	case FlagPub, FlagPriv, FlagProt, FlagConst, FlagHoi, FlagInst:
		return true
	default:
		return false
	}
}
