package checker

import (
	"strconv"

	"github.com/tsgonest/tsmeta/internal/ast"
)

// Keys computes the key set denoted by t: a literal union, keyof of an
// object shape, never, or Exclude/Extract over those. literal is false when
// the set is not a finite list of names (string, number, keyof a shape with
// an index signature); keys then holds whatever names are known.
func (c *Checker) Keys(t ast.TypeNode, scope *Scope) (keys []string, literal bool, err error) {
	return c.keys(t, scope, 0)
}

func (c *Checker) keys(t ast.TypeNode, scope *Scope, depth int) ([]string, bool, error) {
	if depth > maxDepth {
		return nil, false, errorf(t.Pos(), "type %s is too deeply nested", ast.Print(t))
	}
	t, scope = Deref(t, scope)

	switch t := t.(type) {
	case *ast.LiteralType:
		switch t.Kind {
		case ast.LiteralString:
			s, _ := t.Value.(string)
			return []string{s}, true, nil
		case ast.LiteralNumber:
			f, _ := t.Value.(float64)
			return []string{strconv.FormatFloat(f, 'f', -1, 64)}, true, nil
		case ast.LiteralBoolean:
			return []string{t.Text}, true, nil
		}
		return nil, true, nil
	case *ast.UnionType:
		var out []string
		literal := true
		for _, part := range t.Types {
			ks, lit, err := c.keys(part, scope, depth+1)
			if err != nil {
				return nil, false, err
			}
			out = append(out, ks...)
			literal = literal && lit
		}
		return dedupe(out), literal, nil
	case *ast.KeywordType:
		switch t.Keyword {
		case ast.KeywordNever:
			return nil, true, nil
		case ast.KeywordString, ast.KeywordNumber, ast.KeywordSymbol, ast.KeywordAny:
			return nil, false, nil
		}
	case *ast.TemplateLiteralType:
		return nil, false, nil
	case *ast.TypeOperator:
		if t.Operator != "keyof" {
			break
		}
		shape, err := c.members(t.Type, scope, depth+1)
		if err != nil {
			return nil, false, err
		}
		return shape.Names(), shape.Index == nil, nil
	case *ast.IndexedAccessType:
		parts, err := c.indexedAccess(t.Object, t.Index, scope, depth+1)
		if err != nil {
			return nil, false, err
		}
		var out []string
		literal := true
		for _, p := range parts {
			ks, lit, err := c.keys(p.Type, p.Scope, depth+1)
			if err != nil {
				return nil, false, err
			}
			out = append(out, ks...)
			literal = literal && lit
		}
		return dedupe(out), literal, nil
	case *ast.TypeReference:
		return c.referenceKeys(t, scope, depth)
	}
	return nil, false, errorf(t.Pos(), "Unable to compute the keys of type %s", ast.Print(t))
}

func (c *Checker) referenceKeys(ref *ast.TypeReference, scope *Scope, depth int) ([]string, bool, error) {
	switch ref.Name {
	case "Exclude", "Extract":
		if len(ref.Args) != 2 {
			break
		}
		a, litA, err := c.keys(ref.Args[0], scope, depth+1)
		if err != nil {
			return nil, false, err
		}
		b, _, err := c.keys(ref.Args[1], scope, depth+1)
		if err != nil {
			return nil, false, err
		}
		drop := make(map[string]bool, len(b))
		for _, k := range b {
			drop[k] = true
		}
		var out []string
		for _, k := range a {
			if drop[k] == (ref.Name == "Extract") {
				out = append(out, k)
			}
		}
		return out, litA, nil
	case "NonNullable":
		if len(ref.Args) == 1 {
			return c.keys(ref.Args[0], scope, depth+1)
		}
	}

	decl, err := c.Lookup(ref.Name, ref.Pos())
	if err != nil {
		return nil, false, err
	}
	switch d := decl.(type) {
	case *ast.TypeAliasDecl:
		return c.keys(d.Type, Instantiate(d.TypeParams, ref.Args, scope), depth+1)
	case *ast.EnumDecl:
		out := make([]string, 0, len(d.Members))
		for _, m := range d.Members {
			switch v := m.Value.(type) {
			case string:
				out = append(out, v)
			case float64:
				out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		return out, true, nil
	}
	return nil, false, errorf(ref.Pos(), "Type %s is not a key type", ref.Name)
}

// IndexedAccess resolves Object[Index] to the bindings of the selected
// member types. A literal union index selects several members.
func (c *Checker) IndexedAccess(object, index ast.TypeNode, scope *Scope) ([]Binding, error) {
	return c.indexedAccess(object, index, scope, 0)
}

func (c *Checker) indexedAccess(object, index ast.TypeNode, scope *Scope, depth int) ([]Binding, error) {
	if depth > maxDepth {
		return nil, errorf(object.Pos(), "type %s is too deeply nested", ast.Print(object))
	}
	idx, idxScope := Deref(index, scope)
	if kw, ok := idx.(*ast.KeywordType); ok && kw.Keyword == ast.KeywordNumber {
		if elems, ok := c.elements(object, scope, depth+1); ok {
			return elems, nil
		}
	}

	shape, err := c.members(object, scope, depth+1)
	if err != nil {
		return nil, err
	}
	keys, literal, err := c.keys(idx, idxScope, depth+1)
	if err != nil {
		return nil, err
	}
	if !literal {
		if shape.Index != nil {
			return []Binding{{Type: shape.Index.Type, Scope: shape.Index.Scope}}, nil
		}
		if op, ok := idx.(*ast.TypeOperator); !ok || op.Operator != "keyof" {
			return nil, errorf(index.Pos(), "Unable to resolve indexed access %s[%s]", ast.Print(object), ast.Print(index))
		}
	}
	out := make([]Binding, 0, len(keys))
	for _, k := range keys {
		m := shape.Member(k)
		if m == nil {
			if shape.Index != nil {
				out = append(out, Binding{Type: shape.Index.Type, Scope: shape.Index.Scope})
				continue
			}
			return nil, errorf(index.Pos(), "Property '%s' does not exist on type %s", k, ast.Print(object))
		}
		out = append(out, Binding{Type: m.Type, Scope: m.Scope})
	}
	return out, nil
}

// elements returns the element bindings of an array or tuple type.
func (c *Checker) elements(t ast.TypeNode, scope *Scope, depth int) ([]Binding, bool) {
	if depth > maxDepth {
		return nil, false
	}
	t, scope = Deref(t, scope)
	switch t := t.(type) {
	case *ast.ArrayType:
		return []Binding{{Type: t.Elem, Scope: scope}}, true
	case *ast.TupleType:
		out := make([]Binding, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = Binding{Type: e, Scope: scope}
		}
		return out, true
	case *ast.TypeOperator:
		if t.Operator == "readonly" {
			return c.elements(t.Type, scope, depth+1)
		}
	case *ast.TypeReference:
		if (t.Name == "Array" || t.Name == "ReadonlyArray") && len(t.Args) == 1 {
			return []Binding{{Type: t.Args[0], Scope: scope}}, true
		}
		decl, err := c.Lookup(t.Name, t.Pos())
		if err != nil {
			return nil, false
		}
		if alias, ok := decl.(*ast.TypeAliasDecl); ok {
			return c.elements(alias.Type, Instantiate(alias.TypeParams, t.Args, scope), depth+1)
		}
	}
	return nil, false
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
