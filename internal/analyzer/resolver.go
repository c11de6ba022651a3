package analyzer

import (
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/checker"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// resolve converts a type expression into a metadata.Type. scope binds the
// generic parameters visible at t; parent is the JSDoc of the declaration
// that owns t and drives number and Date narrowing.
func (s *Session) resolve(t ast.TypeNode, scope *checker.Scope, parent *ast.JSDoc) (metadata.Type, error) {
	if t == nil {
		return metadata.Any(), nil
	}
	switch t := t.(type) {
	case *ast.KeywordType:
		return s.keyword(t, parent)
	case *ast.LiteralType:
		switch t.Kind {
		case ast.LiteralUndefined:
			return metadata.Primitive(metadata.DataTypeUndef), nil
		case ast.LiteralNull:
			return &metadata.EnumType{Values: []any{nil}}, nil
		}
		return &metadata.EnumType{Values: []any{t.Value}}, nil
	case *ast.TemplateLiteralType:
		return metadata.Primitive(metadata.DataTypeString), nil
	case *ast.ParenthesizedType:
		return s.resolve(t.Type, scope, parent)
	case *ast.ArrayType:
		elem, err := s.resolve(t.Elem, scope, parent)
		if err != nil {
			return nil, err
		}
		return &metadata.ArrayType{ElementType: elem}, nil
	case *ast.TupleType:
		return s.tuple(t, scope, parent)
	case *ast.UnionType:
		types, err := s.resolveAll(t.Types, scope, parent)
		if err != nil {
			return nil, err
		}
		return &metadata.UnionType{Types: types}, nil
	case *ast.IntersectionType:
		types, err := s.resolveAll(t.Types, scope, parent)
		if err != nil {
			return nil, err
		}
		return &metadata.IntersectionType{Types: types}, nil
	case *ast.TypeLiteral, *ast.MappedType:
		shape, err := s.checker.Members(t, scope)
		if err != nil {
			return nil, s.typeError(err, t.Pos())
		}
		return s.objectLiteral(shape, t.Pos())
	case *ast.TypeOperator:
		switch t.Operator {
		case "keyof":
			return s.keyof(t, scope)
		case "readonly":
			return s.resolve(t.Type, scope, parent)
		}
		return nil, s.errorf(CategoryType, t.Pos(), "Unsupported type operator: %s", t.Operator)
	case *ast.IndexedAccessType:
		bindings, err := s.checker.IndexedAccess(t.Object, t.Index, scope)
		if err != nil {
			return nil, s.typeError(err, t.Pos())
		}
		types := make([]metadata.Type, 0, len(bindings))
		for _, b := range bindings {
			rt, err := s.resolve(b.Type, b.Scope, parent)
			if err != nil {
				return nil, err
			}
			types = append(types, rt)
		}
		if len(types) == 1 {
			return types[0], nil
		}
		return &metadata.UnionType{Types: types}, nil
	case *ast.TypeReference:
		return s.reference(t, scope, parent)
	case *ast.UnsupportedType:
		return nil, s.errorf(CategoryType, t.Pos(), "Unknown type: %s (%s)", t.Kind, t.Text)
	}
	return nil, s.errorf(CategoryType, t.Pos(), "Unknown type: %s", ast.Print(t))
}

func (s *Session) resolveAll(ts []ast.TypeNode, scope *checker.Scope, parent *ast.JSDoc) ([]metadata.Type, error) {
	out := make([]metadata.Type, 0, len(ts))
	for _, t := range ts {
		rt, err := s.resolve(t, scope, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}

func (s *Session) keyword(t *ast.KeywordType, parent *ast.JSDoc) (metadata.Type, error) {
	switch t.Keyword {
	case ast.KeywordString:
		return metadata.Primitive(metadata.DataTypeString), nil
	case ast.KeywordNumber:
		return metadata.Primitive(numberKind(parent)), nil
	case ast.KeywordBigInt:
		return metadata.Primitive(metadata.DataTypeLong), nil
	case ast.KeywordBoolean:
		return metadata.Primitive(metadata.DataTypeBoolean), nil
	case ast.KeywordAny, ast.KeywordUnknown:
		return metadata.Any(), nil
	case ast.KeywordVoid:
		return metadata.Void(), nil
	case ast.KeywordUndefined:
		return metadata.Primitive(metadata.DataTypeUndef), nil
	case ast.KeywordNull:
		return &metadata.EnumType{Values: []any{nil}}, nil
	case ast.KeywordNever:
		return never(), nil
	case ast.KeywordObject:
		return &metadata.ObjectLiteralType{Properties: []*metadata.Property{}, AdditionalProperties: metadata.Any()}, nil
	}
	return nil, s.errorf(CategoryType, t.Pos(), "Unknown type: %s", t.Keyword)
}

// tuple resolves [A, B] to an array of the union of its distinct element types.
func (s *Session) tuple(t *ast.TupleType, scope *checker.Scope, parent *ast.JSDoc) (metadata.Type, error) {
	types, err := s.resolveAll(t.Elems, scope, parent)
	if err != nil {
		return nil, err
	}
	var distinct []metadata.Type
	seen := make(map[string]bool)
	for _, rt := range types {
		key := typeKey(rt)
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, rt)
	}
	switch len(distinct) {
	case 0:
		return &metadata.ArrayType{ElementType: metadata.Any()}, nil
	case 1:
		return &metadata.ArrayType{ElementType: distinct[0]}, nil
	}
	return &metadata.ArrayType{ElementType: &metadata.UnionType{Types: distinct}}, nil
}

// typeKey is a structural identity for deduplicating simple element types.
func typeKey(t metadata.Type) string {
	switch t := t.(type) {
	case *metadata.PrimitiveType:
		return string(t.Kind)
	case *metadata.ReferenceType:
		return "ref:" + t.Name
	case *metadata.ArrayType:
		return typeKey(t.ElementType) + "[]"
	}
	return ""
}

func (s *Session) keyof(t *ast.TypeOperator, scope *checker.Scope) (metadata.Type, error) {
	keys, literal, err := s.checker.Keys(t, scope)
	if err != nil {
		return nil, s.typeError(err, t.Pos())
	}
	if !literal {
		s.warnWithHint(diagnostic.CategoryKeyof, t.Pos(),
			"declare the key union explicitly to get an enum",
			"%s does not resolve to literal keys; using string", ast.Print(t))
		return metadata.Primitive(metadata.DataTypeString), nil
	}
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return &metadata.EnumType{Values: values}, nil
}

// objectLiteral resolves an expanded shape as an inline object.
func (s *Session) objectLiteral(shape *checker.Shape, pos ast.Pos) (metadata.Type, error) {
	props, err := s.properties(shape)
	if err != nil {
		return nil, err
	}
	additional, err := s.additionalProperties(shape, pos)
	if err != nil {
		return nil, err
	}
	return &metadata.ObjectLiteralType{Properties: props, AdditionalProperties: additional}, nil
}

func (s *Session) properties(shape *checker.Shape) ([]*metadata.Property, error) {
	props := make([]*metadata.Property, 0, len(shape.Members))
	for _, m := range shape.Members {
		if m.Decl != nil && isIgnored(m.Decl.Doc) {
			continue
		}
		p, err := s.property(m)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

// additionalProperties resolves the index signature of shape. Only string
// keys are representable.
func (s *Session) additionalProperties(shape *checker.Shape, pos ast.Pos) (metadata.Type, error) {
	if shape.Index == nil {
		return nil, nil
	}
	key, _ := checker.Deref(shape.Index.KeyType, shape.Index.Scope)
	if kw, ok := key.(*ast.KeywordType); !ok || kw.Keyword != ast.KeywordString {
		at := pos
		if key != nil && key.Pos().IsValid() {
			at = key.Pos()
		}
		return nil, s.errorf(CategoryType, at, "Only string indexers are supported, found %s", printType(key))
	}
	return s.resolve(shape.Index.Type, shape.Index.Scope, nil)
}

// property resolves one member. Members synthesized by a mapped type over
// literal keys have no declaration and carry no documentation.
func (s *Session) property(m *checker.Member) (*metadata.Property, error) {
	var doc *ast.JSDoc
	if m.Decl != nil {
		doc = m.Decl.Doc
	}
	t, err := s.memberType(m, doc)
	if err != nil {
		return nil, err
	}
	p := &metadata.Property{
		Name:       m.Name,
		Type:       t,
		Required:   !m.Optional,
		Validators: metadata.Validators{},
	}
	if m.Decl == nil {
		return p, nil
	}
	d := m.Decl
	p.Description = description(doc)
	p.Deprecated = isDeprecated(doc, d.Decorators)
	p.Format = tagText(doc, "format")
	p.Title = tagText(doc, "title")
	p.Validators = s.validators(doc, d.Pos())
	p.Extensions = extensions(doc, d.Decorators)
	if ex := examples(doc); len(ex) > 0 {
		p.Example = ex[0]
	}
	if d.Initializer != nil {
		p.Default = d.Initializer.Value()
	} else if def := tagText(doc, "default"); def != "" {
		p.Default = literalValue(def)
	}
	return p, nil
}

// memberType resolves a member's annotation, inferring unannotated members
// from their initializer.
func (s *Session) memberType(m *checker.Member, doc *ast.JSDoc) (metadata.Type, error) {
	if m.Type != nil {
		return s.resolve(m.Type, m.Scope, doc)
	}
	if m.Decl != nil && m.Decl.Initializer != nil {
		switch m.Decl.Initializer.Kind {
		case ast.ExprString:
			return metadata.Primitive(metadata.DataTypeString), nil
		case ast.ExprNumber:
			return metadata.Primitive(numberKind(doc)), nil
		case ast.ExprBoolean:
			return metadata.Primitive(metadata.DataTypeBoolean), nil
		}
	}
	s.logger.Debug("unannotated member resolved to any", zap.String("member", m.Name))
	return metadata.Any(), nil
}

func printType(t ast.TypeNode) string {
	if t == nil {
		return "<none>"
	}
	return ast.Print(t)
}

// never is the empty enum that no value satisfies.
func never() metadata.Type { return &metadata.EnumType{Values: []any{}} }
