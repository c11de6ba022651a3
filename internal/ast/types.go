package ast

// TypeNode is a type expression. The set of implementations is closed; the
// resolver dispatches on it with a type switch.
type TypeNode interface {
	Pos() Pos
	typeNode()
}

// Keyword names of KeywordType.
const (
	KeywordString    = "string"
	KeywordNumber    = "number"
	KeywordBoolean   = "boolean"
	KeywordBigInt    = "bigint"
	KeywordSymbol    = "symbol"
	KeywordAny       = "any"
	KeywordUnknown   = "unknown"
	KeywordVoid      = "void"
	KeywordUndefined = "undefined"
	KeywordNull      = "null"
	KeywordNever     = "never"
	KeywordObject    = "object"
)

// KeywordType is a predefined type such as string or never.
type KeywordType struct {
	Node
	Keyword string
}

// LiteralKind classifies a LiteralType.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
	LiteralUndefined
)

// LiteralType is a literal used as a type: "a", 1, true, null.
// Value holds string, float64, bool or nil.
type LiteralType struct {
	Node
	Kind  LiteralKind
	Text  string
	Value any
}

// ArrayType is T[].
type ArrayType struct {
	Node
	Elem TypeNode
}

// TupleType is [A, B].
type TupleType struct {
	Node
	Elems []TypeNode
}

// UnionType is A | B.
type UnionType struct {
	Node
	Types []TypeNode
}

// IntersectionType is A & B.
type IntersectionType struct {
	Node
	Types []TypeNode
}

// ParenthesizedType is (T).
type ParenthesizedType struct {
	Node
	Type TypeNode
}

// TypeReference is a named type with optional arguments. Name may be dotted.
type TypeReference struct {
	Node
	Name string
	Args []TypeNode
}

// TypeLiteral is an inline object type.
type TypeLiteral struct {
	Node
	Members []*Property
	Index   *IndexSignature
}

// Modifier is a mapped-type modifier: none, `+` (or bare) or `-`.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierAdd
	ModifierRemove
)

// MappedType is { [Param in Constraint as NameType]?: Type }.
type MappedType struct {
	Node
	Param      string
	Constraint TypeNode
	NameType   TypeNode
	Type       TypeNode
	Optional   Modifier
	Readonly   Modifier
}

// TypeOperator is keyof T, readonly T or unique T.
type TypeOperator struct {
	Node
	Operator string
	Type     TypeNode
}

// IndexedAccessType is Object[Index].
type IndexedAccessType struct {
	Node
	Object TypeNode
	Index  TypeNode
}

// TemplateLiteralType is a backtick template type.
type TemplateLiteralType struct {
	Node
	Text string
}

// UnsupportedType carries any construct the model does not represent
// (conditional types, function types, typeof queries, ...). Kind is the
// binding's name for the construct.
type UnsupportedType struct {
	Node
	Kind string
	Text string
}

func (*KeywordType) typeNode()         {}
func (*LiteralType) typeNode()         {}
func (*ArrayType) typeNode()           {}
func (*TupleType) typeNode()           {}
func (*UnionType) typeNode()           {}
func (*IntersectionType) typeNode()    {}
func (*ParenthesizedType) typeNode()   {}
func (*TypeReference) typeNode()       {}
func (*TypeLiteral) typeNode()         {}
func (*MappedType) typeNode()          {}
func (*TypeOperator) typeNode()        {}
func (*IndexedAccessType) typeNode()   {}
func (*TemplateLiteralType) typeNode() {}
func (*UnsupportedType) typeNode()     {}

// Unparen strips any number of enclosing parentheses.
func Unparen(t TypeNode) TypeNode {
	for {
		p, ok := t.(*ParenthesizedType)
		if !ok {
			return t
		}
		t = p.Type
	}
}
