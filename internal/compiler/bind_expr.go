package compiler

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tsgonest/tsmeta/internal/ast"
)

func (b *binder) expr(n *sitter.Node) *ast.Expr {
	if n == nil {
		return nil
	}
	e := &ast.Expr{Node: b.node(n), Text: b.text(n)}
	switch n.Type() {
	case "string":
		e.Kind = ast.ExprString
		e.Str = unquote(e.Text)
	case "template_string":
		if n.NamedChildCount() == 0 || childOfType(n, "template_substitution") == nil {
			e.Kind = ast.ExprString
			e.Str = unquote(e.Text)
		}
	case "number":
		e.Kind = ast.ExprNumber
		e.Num = parseNumber(e.Text)
	case "unary_expression":
		arg := n.ChildByFieldName("argument")
		op := n.ChildByFieldName("operator")
		if arg != nil && arg.Type() == "number" {
			e.Kind = ast.ExprNumber
			e.Num = parseNumber(b.text(arg))
			if op != nil && b.text(op) == "-" {
				e.Num = -e.Num
			}
		}
	case "true", "false":
		e.Kind = ast.ExprBoolean
		e.Bool = n.Type() == "true"
	case "null":
		e.Kind = ast.ExprNull
	case "undefined":
		e.Kind = ast.ExprUndefined
	case "identifier":
		e.Kind = ast.ExprIdentifier
		if e.Text == "undefined" {
			e.Kind = ast.ExprUndefined
		}
	case "member_expression":
		e.Kind = ast.ExprIdentifier
		e.Text = compact(e.Text)
	case "array":
		e.Kind = ast.ExprArray
		for _, c := range namedChildren(n) {
			if c.Type() != "comment" {
				e.Elements = append(e.Elements, b.expr(c))
			}
		}
	case "object":
		e.Kind = ast.ExprObject
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "pair":
				e.Fields = append(e.Fields, &ast.ObjectField{
					Key:   b.propertyName(c.ChildByFieldName("key")),
					Value: b.expr(c.ChildByFieldName("value")),
				})
			case "shorthand_property_identifier":
				e.Fields = append(e.Fields, &ast.ObjectField{
					Key:   b.text(c),
					Value: &ast.Expr{Node: b.node(c), Kind: ast.ExprIdentifier, Text: b.text(c)},
				})
			}
		}
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		if inner := n.NamedChild(0); inner != nil {
			return b.expr(inner)
		}
	}
	return e
}

// unquote strips the quotes of a string or template literal and resolves
// escape sequences. Malformed escapes fall back to the raw inner text.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'' && q != '`') || s[len(s)-1] != q {
		return s
	}
	inner := s[1 : len(s)-1]
	if q == '`' || !strings.Contains(inner, `\`) {
		return inner
	}
	if q == '\'' {
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
	}
	if v, err := strconv.Unquote(`"` + inner + `"`); err == nil {
		return v
	}
	return inner
}
