package checker

import (
	"github.com/tsgonest/tsmeta/internal/ast"
)

// Member is one property of a computed object shape. Type resolves in Scope;
// a nil Type means the property had no annotation. Decl is nil for members
// synthesized by a mapped type over literal keys.
type Member struct {
	Name     string
	Type     ast.TypeNode
	Scope    *Scope
	Optional bool
	Readonly bool
	Decl     *ast.Property
}

// IndexInfo is the string or number index signature of a shape.
type IndexInfo struct {
	KeyType ast.TypeNode
	Type    ast.TypeNode
	Scope   *Scope
}

// Shape is the expanded member list of an object-like type.
type Shape struct {
	Members []*Member
	Index   *IndexInfo
}

// Member returns the member with the given name, or nil.
func (s *Shape) Member(name string) *Member {
	for _, m := range s.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Names returns member names in declaration order.
func (s *Shape) Names() []string {
	out := make([]string, len(s.Members))
	for i, m := range s.Members {
		out[i] = m.Name
	}
	return out
}

// set adds m, replacing an inherited member of the same name in place.
func (s *Shape) set(m *Member) {
	for i, cur := range s.Members {
		if cur.Name == m.Name {
			s.Members[i] = m
			return
		}
	}
	s.Members = append(s.Members, m)
}

func (s *Shape) merge(o *Shape) {
	for _, m := range o.Members {
		s.set(m)
	}
	if o.Index != nil {
		s.Index = o.Index
	}
}

func memberOf(p *ast.Property, scope *Scope) *Member {
	return &Member{
		Name:     p.Name,
		Type:     p.Type,
		Scope:    scope,
		Optional: p.Optional || p.Initializer != nil,
		Readonly: p.Readonly,
		Decl:     p,
	}
}

func indexOf(sig *ast.IndexSignature, scope *Scope) *IndexInfo {
	if sig == nil {
		return nil
	}
	return &IndexInfo{KeyType: sig.KeyType, Type: sig.Type, Scope: scope}
}

// IsMappedUtility reports whether name is one of the built-in derived shapes
// Members understands.
func IsMappedUtility(name string) bool {
	switch name {
	case "Partial", "Required", "Readonly", "Pick", "Omit", "Record":
		return true
	}
	return false
}

// Members expands t into its member list. It understands object literals,
// intersections, interfaces and classes with inheritance, aliases, mapped
// types and the Partial/Required/Readonly/Pick/Omit/Record utilities.
func (c *Checker) Members(t ast.TypeNode, scope *Scope) (*Shape, error) {
	return c.members(t, scope, 0)
}

func (c *Checker) members(t ast.TypeNode, scope *Scope, depth int) (*Shape, error) {
	if depth > maxDepth {
		return nil, errorf(t.Pos(), "type %s is too deeply nested", ast.Print(t))
	}
	t, scope = Deref(t, scope)

	switch t := t.(type) {
	case *ast.TypeLiteral:
		shape := &Shape{Index: indexOf(t.Index, scope)}
		for _, p := range t.Members {
			shape.set(memberOf(p, scope))
		}
		return shape, nil
	case *ast.IntersectionType:
		shape := &Shape{}
		for _, part := range t.Types {
			sub, err := c.members(part, scope, depth+1)
			if err != nil {
				return nil, err
			}
			shape.merge(sub)
		}
		return shape, nil
	case *ast.MappedType:
		return c.mapped(t, scope, depth)
	case *ast.TypeOperator:
		if t.Operator == "readonly" {
			return c.members(t.Type, scope, depth+1)
		}
	case *ast.KeywordType:
		if t.Keyword == ast.KeywordObject {
			return &Shape{}, nil
		}
	case *ast.TypeReference:
		return c.referenceMembers(t, scope, depth)
	}
	return nil, errorf(t.Pos(), "Unable to compute the members of type %s", ast.Print(t))
}

func (c *Checker) referenceMembers(ref *ast.TypeReference, scope *Scope, depth int) (*Shape, error) {
	switch ref.Name {
	case "Partial", "Required", "Readonly", "NonNullable":
		if len(ref.Args) != 1 {
			break
		}
		src, err := c.members(ref.Args[0], scope, depth+1)
		if err != nil {
			return nil, err
		}
		shape := &Shape{Index: src.Index}
		for _, m := range src.Members {
			cp := *m
			switch ref.Name {
			case "Partial":
				cp.Optional = true
			case "Required":
				cp.Optional = false
			case "Readonly":
				cp.Readonly = true
			}
			shape.Members = append(shape.Members, &cp)
		}
		return shape, nil
	case "Pick", "Omit":
		if len(ref.Args) != 2 {
			break
		}
		src, err := c.members(ref.Args[0], scope, depth+1)
		if err != nil {
			return nil, err
		}
		keys, literal, err := c.keys(ref.Args[1], scope, depth+1)
		if err != nil {
			return nil, err
		}
		if !literal {
			return nil, errorf(ref.Pos(), "%s requires literal keys in %s", ref.Name, ast.Print(ref))
		}
		want := make(map[string]bool, len(keys))
		for _, k := range keys {
			want[k] = true
		}
		shape := &Shape{}
		if ref.Name == "Omit" {
			shape.Index = src.Index
		}
		for _, m := range src.Members {
			if want[m.Name] == (ref.Name == "Pick") {
				cp := *m
				shape.Members = append(shape.Members, &cp)
			}
		}
		return shape, nil
	case "Record":
		if len(ref.Args) != 2 {
			break
		}
		keys, literal, err := c.keys(ref.Args[0], scope, depth+1)
		if err != nil {
			return nil, err
		}
		if !literal {
			return &Shape{Index: &IndexInfo{KeyType: ref.Args[0], Type: ref.Args[1], Scope: scope}}, nil
		}
		shape := &Shape{}
		for _, k := range keys {
			shape.Members = append(shape.Members, &Member{Name: k, Type: ref.Args[1], Scope: scope})
		}
		return shape, nil
	}

	decl, err := c.Lookup(ref.Name, ref.Pos())
	if err != nil {
		return nil, err
	}
	inner := Instantiate(ast.TypeParameters(decl), ref.Args, scope)
	switch d := decl.(type) {
	case *ast.InterfaceDecl:
		shape := &Shape{}
		for _, ext := range d.Extends {
			sub, err := c.members(ext, inner, depth+1)
			if err != nil {
				return nil, err
			}
			shape.merge(sub)
		}
		for _, p := range d.Members {
			shape.set(memberOf(p, inner))
		}
		if d.Index != nil {
			shape.Index = indexOf(d.Index, inner)
		}
		return shape, nil
	case *ast.ClassDecl:
		shape := &Shape{}
		if d.Extends != nil {
			sub, err := c.members(d.Extends, inner, depth+1)
			if err != nil {
				return nil, err
			}
			shape.merge(sub)
		}
		for _, p := range d.Properties {
			if p.Static || p.Accessibility == "private" || p.Accessibility == "protected" {
				continue
			}
			shape.set(memberOf(p, inner))
		}
		if d.Index != nil {
			shape.Index = indexOf(d.Index, inner)
		}
		return shape, nil
	case *ast.TypeAliasDecl:
		return c.members(d.Type, inner, depth+1)
	}
	return nil, errorf(ref.Pos(), "Type %s is not an object type", ref.Name)
}

func (c *Checker) mapped(t *ast.MappedType, scope *Scope, depth int) (*Shape, error) {
	optional := func(was bool) bool {
		switch t.Optional {
		case ast.ModifierAdd:
			return true
		case ast.ModifierRemove:
			return false
		}
		return was
	}
	readonly := func(was bool) bool {
		switch t.Readonly {
		case ast.ModifierAdd:
			return true
		case ast.ModifierRemove:
			return false
		}
		return was
	}

	con, conScope := Deref(t.Constraint, scope)
	if op, ok := con.(*ast.TypeOperator); ok && op.Operator == "keyof" {
		src, err := c.members(op.Type, conScope, depth+1)
		if err != nil {
			return nil, err
		}
		shape := &Shape{}
		selfIndex := isSelfIndex(t.Type, op.Type, t.Param)
		for _, m := range src.Members {
			cp := *m
			cp.Optional = optional(m.Optional)
			cp.Readonly = readonly(m.Readonly)
			if !selfIndex {
				cp.Type = t.Type
				cp.Scope = scope.Extend(t.Param, Binding{Type: keyLiteral(t.Constraint.Pos(), m.Name)})
			}
			names, err := c.remap(t, scope, m.Name, depth)
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				nm := cp
				nm.Name = n
				shape.set(&nm)
			}
		}
		if src.Index != nil {
			idx := *src.Index
			if !selfIndex {
				idx.Type = t.Type
				idx.Scope = scope.Extend(t.Param, Binding{Type: &ast.KeywordType{Keyword: ast.KeywordString}})
			}
			shape.Index = &idx
		}
		return shape, nil
	}

	keys, literal, err := c.keys(t.Constraint, scope, depth+1)
	if err != nil {
		return nil, err
	}
	if !literal {
		return &Shape{Index: &IndexInfo{
			KeyType: t.Constraint,
			Type:    t.Type,
			Scope:   scope.Extend(t.Param, Binding{Type: &ast.KeywordType{Keyword: ast.KeywordString}}),
		}}, nil
	}
	shape := &Shape{}
	for _, k := range keys {
		names, err := c.remap(t, scope, k, depth)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			shape.set(&Member{
				Name:     n,
				Type:     t.Type,
				Scope:    scope.Extend(t.Param, Binding{Type: keyLiteral(t.Pos(), k)}),
				Optional: optional(false),
				Readonly: readonly(false),
			})
		}
	}
	return shape, nil
}

// remap applies an `as` clause to one key. Keys remapped to never vanish.
func (c *Checker) remap(t *ast.MappedType, scope *Scope, key string, depth int) ([]string, error) {
	if t.NameType == nil {
		return []string{key}, nil
	}
	names, literal, err := c.keys(t.NameType, scope.Extend(t.Param, Binding{Type: keyLiteral(t.Pos(), key)}), depth+1)
	if err != nil {
		return nil, err
	}
	if !literal {
		return nil, errorf(t.NameType.Pos(), "Unsupported key remapping %s", ast.Print(t.NameType))
	}
	return names, nil
}

// isSelfIndex reports whether value is Obj[Param] for the mapped object.
func isSelfIndex(value, obj ast.TypeNode, param string) bool {
	ia, ok := ast.Unparen(value).(*ast.IndexedAccessType)
	if !ok {
		return false
	}
	idx, ok := ast.Unparen(ia.Index).(*ast.TypeReference)
	if !ok || idx.Name != param || len(idx.Args) > 0 {
		return false
	}
	return ast.Print(ia.Object) == ast.Print(obj)
}

func keyLiteral(pos ast.Pos, key string) *ast.LiteralType {
	return &ast.LiteralType{
		Node:  ast.Node{Position: pos},
		Kind:  ast.LiteralString,
		Text:  `"` + key + `"`,
		Value: key,
	}
}
