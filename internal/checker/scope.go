package checker

import "github.com/tsgonest/tsmeta/internal/ast"

// Binding is a type expression together with the scope its names resolve in.
type Binding struct {
	Type  ast.TypeNode
	Scope *Scope
}

// Scope maps generic parameter names to their bindings. The nil Scope is
// empty and valid.
type Scope struct {
	parent *Scope
	names  map[string]Binding
}

// Lookup finds the binding of a type parameter name.
func (s *Scope) Lookup(name string) (Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Extend returns a child scope with one more binding.
func (s *Scope) Extend(name string, b Binding) *Scope {
	return &Scope{parent: s, names: map[string]Binding{name: b}}
}

// Len returns the number of distinct names visible in the scope.
func (s *Scope) Len() int {
	seen := make(map[string]bool)
	for cur := s; cur != nil; cur = cur.parent {
		for n := range cur.names {
			seen[n] = true
		}
	}
	return len(seen)
}

// Instantiate binds a declaration's type parameters. Arguments are bound in
// argScope; missing arguments take the parameter default (which may refer to
// earlier parameters) or any. The result has no parent: declaration bodies
// only see their own parameters.
func Instantiate(params []*ast.TypeParameter, args []ast.TypeNode, argScope *Scope) *Scope {
	s := &Scope{names: make(map[string]Binding, len(params))}
	for i, p := range params {
		switch {
		case i < len(args):
			s.names[p.Name] = Binding{Type: args[i], Scope: argScope}
		case p.Default != nil:
			s.names[p.Name] = Binding{Type: p.Default, Scope: s}
		default:
			s.names[p.Name] = Binding{Type: &ast.KeywordType{Node: p.Node, Keyword: ast.KeywordAny}}
		}
	}
	return s
}

// Deref strips parentheses and follows type parameter bindings until it
// reaches an expression that is not a bare bound name.
func Deref(t ast.TypeNode, scope *Scope) (ast.TypeNode, *Scope) {
	for i := 0; i < maxDepth; i++ {
		t = ast.Unparen(t)
		ref, ok := t.(*ast.TypeReference)
		if !ok || len(ref.Args) > 0 {
			return t, scope
		}
		b, ok := scope.Lookup(ref.Name)
		if !ok {
			return t, scope
		}
		t, scope = b.Type, b.Scope
	}
	return t, scope
}
