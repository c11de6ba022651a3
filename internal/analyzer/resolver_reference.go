package analyzer

import (
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/checker"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// maxNameDepth bounds canonical name printing on self-referential defaults.
const maxNameDepth = 32

// reference resolves a named type: a generic parameter, a built-in, an
// enum member, or a declaration registered in the reference map.
func (s *Session) reference(ref *ast.TypeReference, scope *checker.Scope, parent *ast.JSDoc) (metadata.Type, error) {
	if len(ref.Args) == 0 {
		if b, ok := scope.Lookup(ref.Name); ok {
			return s.resolve(b.Type, b.Scope, parent)
		}
	}

	switch ref.Name {
	case "Date":
		return metadata.Primitive(dateKind(parent)), nil
	case "Buffer", "Readable", "ReadableStream", "NodeJS.ReadableStream":
		return metadata.Primitive(metadata.DataTypeBuffer), nil
	case "File", "Express.Multer.File":
		return metadata.Primitive(metadata.DataTypeFile), nil
	case "String":
		return metadata.Primitive(metadata.DataTypeString), nil
	case "Number":
		return metadata.Primitive(numberKind(parent)), nil
	case "Boolean":
		return metadata.Primitive(metadata.DataTypeBoolean), nil
	case "bigint", "BigInt":
		return metadata.Primitive(metadata.DataTypeLong), nil
	case "Object":
		return &metadata.ObjectLiteralType{Properties: []*metadata.Property{}, AdditionalProperties: metadata.Any()}, nil
	case "Promise":
		if len(ref.Args) == 0 {
			return metadata.Any(), nil
		}
		return s.resolve(ref.Args[0], scope, parent)
	case "Array", "ReadonlyArray", "Set", "ReadonlySet":
		if len(ref.Args) == 0 {
			return &metadata.ArrayType{ElementType: metadata.Any()}, nil
		}
		elem, err := s.resolve(ref.Args[0], scope, parent)
		if err != nil {
			return nil, err
		}
		return &metadata.ArrayType{ElementType: elem}, nil
	case "NonNullable":
		if len(ref.Args) == 1 {
			return s.nonNullable(ref.Args[0], scope, parent)
		}
	case "Exclude", "Extract":
		return s.keySet(ref, scope)
	}

	if checker.IsMappedUtility(ref.Name) && !s.checker.Has(ref.Name) {
		return s.utility(ref, scope)
	}
	if t, ok := s.enumMember(ref); ok {
		return t, nil
	}
	return s.declaration(ref, scope)
}

// nonNullable drops null and undefined members of a resolved union.
func (s *Session) nonNullable(arg ast.TypeNode, scope *checker.Scope, parent *ast.JSDoc) (metadata.Type, error) {
	t, err := s.resolve(arg, scope, parent)
	if err != nil {
		return nil, err
	}
	if isNullish(t) {
		return never(), nil
	}
	u, ok := t.(*metadata.UnionType)
	if !ok {
		return t, nil
	}
	var kept []metadata.Type
	for _, m := range u.Types {
		if isNullish(m) {
			continue
		}
		kept = append(kept, m)
	}
	switch len(kept) {
	case 0:
		return never(), nil
	case 1:
		return kept[0], nil
	}
	return &metadata.UnionType{Types: kept}, nil
}

func isNullish(t metadata.Type) bool {
	switch t := t.(type) {
	case *metadata.PrimitiveType:
		return t.Kind == metadata.DataTypeUndef
	case *metadata.EnumType:
		return len(t.Values) == 1 && t.Values[0] == nil
	}
	return false
}

// keySet resolves Exclude/Extract over literal keys to an enum.
func (s *Session) keySet(ref *ast.TypeReference, scope *checker.Scope) (metadata.Type, error) {
	keys, literal, err := s.checker.Keys(ref, scope)
	if err != nil {
		return nil, s.typeError(err, ref.Pos())
	}
	if !literal {
		return nil, s.errorf(CategoryType, ref.Pos(), "%s is only supported over literal types", ast.Print(ref))
	}
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return &metadata.EnumType{Values: values}, nil
}

// enumMember resolves `Enum.Member` to a single-value enum.
func (s *Session) enumMember(ref *ast.TypeReference) (metadata.Type, bool) {
	i := strings.LastIndexByte(ref.Name, '.')
	if i <= 0 || len(ref.Args) > 0 {
		return nil, false
	}
	head, member := ref.Name[:i], ref.Name[i+1:]
	if !s.checker.Has(head) {
		return nil, false
	}
	decl, err := s.checker.Lookup(head, ref.Pos())
	if err != nil {
		return nil, false
	}
	e, ok := decl.(*ast.EnumDecl)
	if !ok {
		return nil, false
	}
	for _, m := range e.Members {
		if m.Name == member {
			return &metadata.EnumType{Values: []any{m.Value}}, true
		}
	}
	return nil, false
}

// utility registers a derived shape (Partial<User>, Pick<User, "id">, ...)
// as an alias named after its canonical text.
func (s *Session) utility(ref *ast.TypeReference, scope *checker.Scope) (metadata.Type, error) {
	name := s.canonicalName(ref, scope)
	return s.named(name, ref.Pos(), func() (metadata.ReferenceDefinition, error) {
		shape, err := s.checker.Members(ref, scope)
		if err != nil {
			return metadata.ReferenceDefinition{}, s.typeError(err, ref.Pos())
		}
		t, err := s.objectLiteral(shape, ref.Pos())
		if err != nil {
			return metadata.ReferenceDefinition{}, err
		}
		return metadata.ReferenceDefinition{Kind: metadata.RefAlias, Type: t, Validators: metadata.Validators{}}, nil
	})
}

// declaration resolves a reference to a user declaration.
func (s *Session) declaration(ref *ast.TypeReference, scope *checker.Scope) (metadata.Type, error) {
	decl, err := s.checker.Lookup(ref.Name, ref.Pos())
	if err != nil {
		return nil, s.typeError(err, ref.Pos())
	}
	name := s.canonicalName(ref, scope)
	return s.named(name, ref.Pos(), func() (metadata.ReferenceDefinition, error) {
		inner := checker.Instantiate(ast.TypeParameters(decl), ref.Args, scope)
		switch d := decl.(type) {
		case *ast.EnumDecl:
			return enumDefinition(d), nil
		case *ast.TypeAliasDecl:
			return s.aliasDefinition(d, inner)
		case *ast.ClassDecl:
			if m := d.Method("toJSON"); m != nil && !m.Static {
				return s.serializedDefinition(d, m, inner)
			}
		}
		return s.objectDefinition(ref, decl, scope)
	})
}

func enumDefinition(d *ast.EnumDecl) metadata.ReferenceDefinition {
	def := metadata.ReferenceDefinition{
		Kind:        metadata.RefEnum,
		Description: description(d.Doc),
		Deprecated:  d.Doc.HasTag("deprecated"),
		Values:      make([]any, 0, len(d.Members)),
		VarNames:    make([]string, 0, len(d.Members)),
	}
	for _, m := range d.Members {
		def.Values = append(def.Values, m.Value)
		def.VarNames = append(def.VarNames, m.Name)
	}
	if ex := examples(d.Doc); len(ex) > 0 {
		def.Example = ex[0]
	}
	return def
}

func (s *Session) aliasDefinition(d *ast.TypeAliasDecl, inner *checker.Scope) (metadata.ReferenceDefinition, error) {
	t, err := s.resolve(d.Type, inner, d.Doc)
	if err != nil {
		return metadata.ReferenceDefinition{}, err
	}
	def := metadata.ReferenceDefinition{
		Kind:        metadata.RefAlias,
		Type:        t,
		Description: description(d.Doc),
		Deprecated:  d.Doc.HasTag("deprecated"),
		Format:      tagText(d.Doc, "format"),
		Title:       tagText(d.Doc, "title"),
		Validators:  s.validators(d.Doc, d.Pos()),
	}
	if v := tagText(d.Doc, "default"); v != "" {
		def.Default = literalValue(v)
	}
	if ex := examples(d.Doc); len(ex) > 0 {
		def.Example = ex[0]
	}
	return def, nil
}

// serializedDefinition models a class with toJSON() as an alias of what
// toJSON returns.
func (s *Session) serializedDefinition(d *ast.ClassDecl, m *ast.MethodDecl, inner *checker.Scope) (metadata.ReferenceDefinition, error) {
	if m.ReturnType == nil {
		return metadata.ReferenceDefinition{}, s.errorf(CategoryType, m.Pos(),
			"%s.toJSON must declare a return type", d.Name)
	}
	t, err := s.resolve(m.ReturnType, inner, m.Doc)
	if err != nil {
		return metadata.ReferenceDefinition{}, err
	}
	return metadata.ReferenceDefinition{
		Kind:        metadata.RefAlias,
		Type:        t,
		Description: description(d.Doc),
		Deprecated:  isDeprecated(d.Doc, d.Decorators),
		Validators:  metadata.Validators{},
	}, nil
}

func (s *Session) objectDefinition(ref *ast.TypeReference, decl ast.Declaration, scope *checker.Scope) (metadata.ReferenceDefinition, error) {
	shape, err := s.checker.Members(ref, scope)
	if err != nil {
		return metadata.ReferenceDefinition{}, s.typeError(err, ref.Pos())
	}
	props, err := s.properties(shape)
	if err != nil {
		return metadata.ReferenceDefinition{}, err
	}
	additional, err := s.additionalProperties(shape, decl.Pos())
	if err != nil {
		return metadata.ReferenceDefinition{}, err
	}
	doc := ast.DocOf(decl)
	var decorators []*ast.Decorator
	if c, ok := decl.(*ast.ClassDecl); ok {
		decorators = c.Decorators
	}
	def := metadata.ReferenceDefinition{
		Kind:                 metadata.RefObject,
		Description:          description(doc),
		Deprecated:           isDeprecated(doc, decorators),
		Title:                tagText(doc, "title"),
		Properties:           props,
		AdditionalProperties: additional,
	}
	if ex := examples(doc); len(ex) > 0 {
		def.Example = ex[0]
	}
	return def, nil
}

// canonicalName prints ref with every generic binding substituted and every
// omitted type argument filled from its default, then sanitizes the text
// into a reference name. Equal instantiations always print the same name.
func (s *Session) canonicalName(ref *ast.TypeReference, scope *checker.Scope) string {
	return sanitizeRefName(s.canonicalText(ref, scope, 0))
}

func (s *Session) canonicalText(t ast.TypeNode, scope *checker.Scope, depth int) string {
	if depth > maxNameDepth {
		return ast.Print(t)
	}
	p := &ast.Printer{}
	p.Ref = func(r *ast.TypeReference) (string, bool) {
		if len(r.Args) == 0 {
			if b, ok := scope.Lookup(r.Name); ok {
				return s.canonicalText(b.Type, b.Scope, depth+1), true
			}
		}
		name := r.Name
		args := make([]string, 0, len(r.Args))
		for _, a := range r.Args {
			args = append(args, s.canonicalText(a, scope, depth+1))
		}
		if (r.Name == "Array" || r.Name == "ReadonlyArray") && len(args) == 1 {
			if strings.ContainsAny(args[0], " |&") {
				return "(" + args[0] + ")[]", true
			}
			return args[0] + "[]", true
		}
		if decl, err := s.checker.Lookup(r.Name, r.Pos()); err == nil {
			name = decl.DeclName()
			params := ast.TypeParameters(decl)
			if len(args) < len(params) {
				inst := checker.Instantiate(params, r.Args, scope)
				for _, prm := range params[len(args):] {
					b, _ := inst.Lookup(prm.Name)
					args = append(args, s.canonicalText(b.Type, b.Scope, depth+1))
				}
			}
		}
		if len(args) == 0 {
			return name, true
		}
		return name + "<" + strings.Join(args, ", ") + ">", true
	}
	return p.Print(t)
}

var refNameReplacer = strings.NewReplacer(
	"[]", "-Array",
	"<", "_",
	">", "_",
	"{", "_",
	"}", "_",
	"(", "_",
	")", "_",
	",", ".",
	"&", "-and-",
	"|", "-or-",
	";", "--",
	":", "-",
	"'", "",
	`"`, "",
	"`", "",
	"?", "",
)

// sanitizeRefName turns printed type text into a reference name:
// Page<User[]> becomes Page_User-Array_.
func sanitizeRefName(text string) string {
	return refNameReplacer.Replace(strings.Join(strings.Fields(text), ""))
}
