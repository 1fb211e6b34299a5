// internal/ast/ast.go
package ast

import (
	zerrors "zyxt/internal/errors"
	"zyxt/internal/token"
)

// Node is implemented by every AST variant. Dispatch over variants is done
// with a type switch in the type checker and interpreter rather than
// double-dispatch visitors — the node set is closed and small enough that
// a switch reads more plainly than a visitor interface.
type Node interface {
	Span() (zerrors.Span, bool)
	// ResolvedType returns the type decorated onto this node by the type
	// checker. Valid only after type_check has run.
	ResolvedType() Type
	setResolvedType(Type)
}

// SetType records the type checker's verdict for a node. It is exported
// as a function (not a Node method) because only the type checker package
// should call it.
func SetType(n Node, t Type) { n.setResolvedType(t) }

// base is embedded by every concrete node to carry its resolved type.
type base struct {
	Typ Type
}

func (b *base) ResolvedType() Type     { return b.Typ }
func (b *base) setResolvedType(t Type) { b.Typ = t }

func mergeAll(spans ...zerrors.Span) (zerrors.Span, bool) {
	var acc zerrors.Span
	found := false
	for _, s := range spans {
		if !found {
			acc, found = s, true
			continue
		}
		merged, ok := zerrors.MergeSpan(acc, s)
		if !ok {
			return zerrors.Span{}, false
		}
		acc = merged
	}
	return acc, found
}

func spanOf(n Node) (zerrors.Span, bool) {
	if n == nil {
		return zerrors.Span{}, false
	}
	return n.Span()
}

// Flag is one of the six declaration modifiers (pub, priv, prot, const,
// hoi, inst).
type Flag int

const (
	FlagPub Flag = iota
	FlagPriv
	FlagProt
	FlagConst
	FlagHoi
	FlagInst
)

func FlagFromKind(k token.Kind) (Flag, bool) {
	switch k {
	case token.FlagPub:
		return FlagPub, true
	case token.FlagPriv:
		return FlagPriv, true
	case token.FlagProt:
		return FlagProt, true
	case token.FlagConst:
		return FlagConst, true
	case token.FlagHoi:
		return FlagHoi, true
	case token.FlagInst:
		return FlagInst, true
	default:
		return 0, false
	}
}

// FlaggedSpan pairs a flag with the span of the token it came from.
type FlaggedSpan struct {
	Flag Flag
	Span zerrors.Span
}

// --- Literal ---

type Literal struct {
	base
	Value    Value
	RawSpan  zerrors.Span
}

func NewLiteral(v Value, span zerrors.Span) *Literal { return &Literal{Value: v, RawSpan: span} }
func (l *Literal) Span() (zerrors.Span, bool)               { return l.RawSpan, true }

// --- Ident ---

type Ident struct {
	base
	Name     string
	NameSpan zerrors.Span
	DotSpan  *zerrors.Span
	Parent   Node // non-nil when this ident followed a `.`, pre-desugar only
}

func (i *Ident) IsPattern() bool { return true }

func (i *Ident) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{i.NameSpan}
	if i.DotSpan != nil {
		spans = append(spans, *i.DotSpan)
	}
	if i.Parent != nil {
		if s, ok := i.Parent.Span(); ok {
			spans = append(spans, s)
		}
	}
	return mergeAll(spans...)
}

// --- BinaryOpr ---

type BinaryOpr struct {
	base
	Ty      string // operator method name or surface symbol pre-desugar
	OprSpan *zerrors.Span
	Op1     Node
	Op2     Node
}

func (b *BinaryOpr) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if s, ok := spanOf(b.Op1); ok {
		spans = append(spans, s)
	}
	if b.OprSpan != nil {
		spans = append(spans, *b.OprSpan)
	}
	if s, ok := spanOf(b.Op2); ok {
		spans = append(spans, s)
	}
	return mergeAll(spans...)
}

// --- UnaryOpr ---

type UnaryOpr struct {
	base
	Ty      string
	OprSpan *zerrors.Span
	Operand Node
	Postfix bool
}

func (u *UnaryOpr) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if u.OprSpan != nil && !u.Postfix {
		spans = append(spans, *u.OprSpan)
	}
	if s, ok := spanOf(u.Operand); ok {
		spans = append(spans, s)
	}
	if u.OprSpan != nil && u.Postfix {
		spans = append(spans, *u.OprSpan)
	}
	return mergeAll(spans...)
}

// --- Call ---

type Call struct {
	base
	Called     Node
	ParenSpans *zerrors.Span
	Args       []Node
	Kwargs     map[string]Node
}

func (c *Call) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if s, ok := spanOf(c.Called); ok {
		spans = append(spans, s)
	}
	if c.ParenSpans != nil {
		spans = append(spans, *c.ParenSpans)
	}
	return mergeAll(spans...)
}

// --- Member ---

type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberNamespace
)

type Member struct {
	base
	Ty       MemberKind
	Name     string
	Parent   Node
	NameSpan *zerrors.Span
	DotSpan  *zerrors.Span
}

func (m *Member) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if s, ok := spanOf(m.Parent); ok {
		spans = append(spans, s)
	}
	if m.DotSpan != nil {
		spans = append(spans, *m.DotSpan)
	}
	if m.NameSpan != nil {
		spans = append(spans, *m.NameSpan)
	}
	return mergeAll(spans...)
}

// --- Declare ---

type Declare struct {
	base
	Variable *Ident
	Content  Node
	Flags    []FlaggedSpan
	Ty       Node
	EqSpan   *zerrors.Span
}

func (d *Declare) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	for _, f := range d.Flags {
		spans = append(spans, f.Span)
	}
	if s, ok := spanOf(d.Variable); ok {
		spans = append(spans, s)
	}
	if s, ok := spanOf(d.Content); ok {
		spans = append(spans, s)
	}
	return mergeAll(spans...)
}

// --- Set ---

type Set struct {
	base
	Variable *Ident
	Content  Node
	EqSpan   *zerrors.Span
}

func (s *Set) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if sp, ok := spanOf(s.Variable); ok {
		spans = append(spans, sp)
	}
	if sp, ok := spanOf(s.Content); ok {
		spans = append(spans, sp)
	}
	return mergeAll(spans...)
}

// --- If ---

type IfBranch struct {
	KwdSpan   *zerrors.Span
	Condition Node // nil for a trailing `else`
	IfTrue    *Block
}

type If struct {
	base
	Conditions []IfBranch
}

func (i *If) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	for _, c := range i.Conditions {
		if c.KwdSpan != nil {
			spans = append(spans, *c.KwdSpan)
		}
		if c.IfTrue != nil {
			if s, ok := c.IfTrue.Span(); ok {
				spans = append(spans, s)
			}
		}
	}
	return mergeAll(spans...)
}

// --- Block ---

type Block struct {
	base
	BraceSpans *zerrors.Span
	Content    []Node
	// Returnable marks blocks whose Value::Return should be unwrapped
	// rather than propagated (procedure and top-level bodies).
	Returnable bool
}

func (b *Block) Span() (zerrors.Span, bool) {
	if b.BraceSpans != nil {
		return *b.BraceSpans, true
	}
	spans := []zerrors.Span{}
	for _, n := range b.Content {
		if s, ok := spanOf(n); ok {
			spans = append(spans, s)
		}
	}
	return mergeAll(spans...)
}

// --- Delete ---

type Delete struct {
	base
	KwdSpan *zerrors.Span
	Names   []*Ident
}

func (d *Delete) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if d.KwdSpan != nil {
		spans = append(spans, *d.KwdSpan)
	}
	for _, n := range d.Names {
		if s, ok := n.Span(); ok {
			spans = append(spans, s)
		}
	}
	return mergeAll(spans...)
}

// --- Return ---

type Return struct {
	base
	KwdSpan *zerrors.Span
	Value   Node // nil for a bare `ret`
}

func (r *Return) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if r.KwdSpan != nil {
		spans = append(spans, *r.KwdSpan)
	}
	if s, ok := spanOf(r.Value); ok {
		spans = append(spans, s)
	}
	return mergeAll(spans...)
}

// --- Argument ---

type Argument struct {
	Name    *Ident
	Ty      Node
	Default Node // nil if no default
}

// --- Procedure ---

type Procedure struct {
	base
	IsFn       bool
	KwdSpan    *zerrors.Span
	Args       []Argument
	ReturnType Node
	Content    *Block
}

func (p *Procedure) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if p.KwdSpan != nil {
		spans = append(spans, *p.KwdSpan)
	}
	if p.Content != nil {
		if s, ok := p.Content.Span(); ok {
			spans = append(spans, s)
		}
	}
	return mergeAll(spans...)
}

// --- Preprocess ---

type Preprocess struct {
	base
	KwdSpan zerrors.Span
	Content Node
}

func (p *Preprocess) Span() (zerrors.Span, bool) {
	if s, ok := spanOf(p.Content); ok {
		merged, ok := zerrors.MergeSpan(p.KwdSpan, s)
		if ok {
			return merged, true
		}
	}
	return p.KwdSpan, true
}

// --- Defer ---

type Defer struct {
	base
	KwdSpan zerrors.Span
	Content Node
}

func (d *Defer) Span() (zerrors.Span, bool) {
	if s, ok := spanOf(d.Content); ok {
		merged, ok := zerrors.MergeSpan(d.KwdSpan, s)
		if ok {
			return merged, true
		}
	}
	return d.KwdSpan, true
}

// --- Class ---

// Class represents both the pre-typecheck surface form (Content/Args) and
// the post-typecheck decorated form (Namespace/Fields); Content and Args
// are kept after Namespace/Fields have been populated.
type Class struct {
	base
	IsStruct  bool
	KwdSpan   *zerrors.Span
	Content   *Block      // raw body, pre-typecheck
	Args      []Argument  // struct parameter list, pre-typecheck
	Namespace map[string]Node
	Fields    map[string]Type
}

func (c *Class) Span() (zerrors.Span, bool) {
	spans := []zerrors.Span{}
	if c.KwdSpan != nil {
		spans = append(spans, *c.KwdSpan)
	}
	if c.Content != nil {
		if s, ok := c.Content.Span(); ok {
			spans = append(spans, s)
		}
	}
	return mergeAll(spans...)
}

// --- Comment ---

type Comment struct {
	base
	RawSpan zerrors.Span
	Text    string
}

func (c *Comment) Span() (zerrors.Span, bool) { return c.RawSpan, true }
