package compiler

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tsgonest/tsmeta/internal/ast"
)

func (b *binder) typeArguments(n *sitter.Node) []ast.TypeNode {
	var out []ast.TypeNode
	for _, c := range namedChildren(n) {
		if c.Type() == "comment" {
			continue
		}
		out = append(out, b.convertType(c))
	}
	return out
}

// annotation unwraps `: T` style wrappers. Type predicates bind as boolean.
func (b *binder) annotation(n *sitter.Node) ast.TypeNode {
	switch n.Type() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation":
		return b.innerType(n)
	case "asserts_annotation", "type_predicate_annotation":
		return &ast.KeywordType{Node: b.node(n), Keyword: ast.KeywordBoolean}
	}
	return b.convertType(n)
}

func (b *binder) innerType(n *sitter.Node) ast.TypeNode {
	for _, c := range namedChildren(n) {
		if c.Type() != "comment" {
			return b.convertType(c)
		}
	}
	return &ast.UnsupportedType{Node: b.node(n), Kind: n.Type(), Text: b.text(n)}
}

func (b *binder) convertType(n *sitter.Node) ast.TypeNode {
	if n == nil {
		return nil
	}
	node := b.node(n)
	switch n.Type() {
	case "predefined_type":
		return &ast.KeywordType{Node: node, Keyword: strings.TrimSpace(b.text(n))}
	case "type_identifier", "identifier", "nested_type_identifier":
		return &ast.TypeReference{Node: node, Name: compact(b.text(n))}
	case "generic_type":
		ref := &ast.TypeReference{Node: node, Name: compact(b.text(n.ChildByFieldName("name")))}
		if ta := n.ChildByFieldName("type_arguments"); ta != nil {
			ref.Args = b.typeArguments(ta)
		}
		return ref
	case "array_type":
		return &ast.ArrayType{Node: node, Elem: b.innerType(n)}
	case "readonly_type":
		return &ast.TypeOperator{Node: node, Operator: "readonly", Type: b.innerType(n)}
	case "index_type_query":
		return &ast.TypeOperator{Node: node, Operator: "keyof", Type: b.innerType(n)}
	case "tuple_type":
		t := &ast.TupleType{Node: node}
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "comment":
			case "named_tuple_member":
				if ty := c.ChildByFieldName("type"); ty != nil {
					t.Elems = append(t.Elems, b.convertType(ty))
				}
			case "optional_type", "rest_type":
				t.Elems = append(t.Elems, b.innerType(c))
			default:
				t.Elems = append(t.Elems, b.convertType(c))
			}
		}
		return t
	case "optional_type", "rest_type":
		return b.innerType(n)
	case "union_type":
		u := &ast.UnionType{Node: node}
		for _, c := range namedChildren(n) {
			t := b.convertType(c)
			if inner, ok := t.(*ast.UnionType); ok {
				u.Types = append(u.Types, inner.Types...)
			} else {
				u.Types = append(u.Types, t)
			}
		}
		if len(u.Types) == 1 {
			return u.Types[0]
		}
		return u
	case "intersection_type":
		it := &ast.IntersectionType{Node: node}
		for _, c := range namedChildren(n) {
			t := b.convertType(c)
			if inner, ok := t.(*ast.IntersectionType); ok {
				it.Types = append(it.Types, inner.Types...)
			} else {
				it.Types = append(it.Types, t)
			}
		}
		if len(it.Types) == 1 {
			return it.Types[0]
		}
		return it
	case "parenthesized_type":
		return &ast.ParenthesizedType{Node: node, Type: b.innerType(n)}
	case "literal_type":
		return b.literalType(n)
	case "lookup_type":
		children := namedChildren(n)
		if len(children) == 2 {
			return &ast.IndexedAccessType{Node: node, Object: b.convertType(children[0]), Index: b.convertType(children[1])}
		}
	case "object_type", "interface_body":
		members, index, mapped := b.objectMembers(n)
		if mapped != nil && len(members) == 0 && index == nil {
			return mapped
		}
		if mapped != nil {
			break
		}
		return &ast.TypeLiteral{Node: node, Members: members, Index: index}
	case "template_literal_type":
		return &ast.TemplateLiteralType{Node: node, Text: b.text(n)}
	case "string", "number", "true", "false", "null", "undefined":
		return b.literal(n)
	}
	return &ast.UnsupportedType{Node: node, Kind: n.Type(), Text: b.text(n)}
}

func (b *binder) literalType(n *sitter.Node) ast.TypeNode {
	c := n.NamedChild(0)
	if c == nil {
		// `null` and `undefined` may be anonymous tokens under literal_type.
		switch strings.TrimSpace(b.text(n)) {
		case "null":
			return &ast.LiteralType{Node: b.node(n), Kind: ast.LiteralNull, Text: "null"}
		case "undefined":
			return &ast.LiteralType{Node: b.node(n), Kind: ast.LiteralUndefined, Text: "undefined"}
		}
		return &ast.UnsupportedType{Node: b.node(n), Kind: n.Type(), Text: b.text(n)}
	}
	return b.literal(c)
}

func (b *binder) literal(n *sitter.Node) ast.TypeNode {
	lit := &ast.LiteralType{Node: b.node(n), Text: b.text(n)}
	switch n.Type() {
	case "string":
		lit.Kind = ast.LiteralString
		lit.Value = unquote(lit.Text)
	case "number":
		lit.Kind = ast.LiteralNumber
		lit.Value = parseNumber(lit.Text)
	case "unary_expression":
		lit.Kind = ast.LiteralNumber
		v := parseNumber(strings.TrimLeft(compact(lit.Text), "-+"))
		if strings.HasPrefix(strings.TrimSpace(lit.Text), "-") {
			v = -v
		}
		lit.Value = v
	case "true", "false":
		lit.Kind = ast.LiteralBoolean
		lit.Value = n.Type() == "true"
	case "null":
		lit.Kind = ast.LiteralNull
	case "undefined":
		lit.Kind = ast.LiteralUndefined
	default:
		return &ast.UnsupportedType{Node: b.node(n), Kind: n.Type(), Text: lit.Text}
	}
	return lit
}

func parseNumber(s string) float64 {
	s = strings.ReplaceAll(s, "_", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i)
	}
	return 0
}
