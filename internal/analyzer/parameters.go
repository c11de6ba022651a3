package analyzer

import (
	"strconv"
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/checker"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// bindingDecorators are the parameter decorators that choose a source. The
// first one present on a parameter wins.
var bindingDecorators = []string{
	"Path", "Query", "Queries", "Header", "Body", "BodyProp",
	"UploadedFile", "UploadedFiles", "FormField",
	"Request", "RequestProp", "Res", "Inject",
}

// narrowingTags are method JSDoc tags that, followed by a parameter name,
// narrow that parameter's number or Date type.
var narrowingTags = map[string]bool{
	"isInt": true, "isLong": true, "isFloat": true, "isDouble": true,
	"isDate": true, "isDateTime": true,
}

// bindingOf returns the binding decorator of p, or nil for an unannotated
// parameter.
func bindingOf(p *ast.Parameter) *ast.Decorator {
	for _, d := range p.Decorators {
		for _, name := range bindingDecorators {
			if d.Name == name {
				return d
			}
		}
	}
	return nil
}

// methodParameters analyzes every parameter of a method and enforces the
// cross-parameter rules. Responses declared through @Res are returned
// alongside.
func (s *Session) methodParameters(m *ast.MethodDecl, verb, path string) ([]*metadata.Parameter, []*metadata.Response, error) {
	var (
		params    []*metadata.Parameter
		responses []*metadata.Response
	)
	for _, p := range m.Params {
		ps, rs, err := s.parameter(p, m, verb, path)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, ps...)
		responses = append(responses, rs...)
	}
	if err := s.checkParameterSet(m, params); err != nil {
		return nil, nil, err
	}
	return params, responses, nil
}

func (s *Session) checkParameterSet(m *ast.MethodDecl, params []*metadata.Parameter) error {
	count := make(map[metadata.ParameterSource]int)
	for _, p := range params {
		count[p.In]++
	}
	switch {
	case count[metadata.InBody] > 1:
		return s.errorf(CategoryAnnotation, m.Pos(), "Only one body parameter allowed in %s", s.methodName)
	case count[metadata.InBody] > 0 && count[metadata.InBodyProp] > 0:
		return s.errorf(CategoryAnnotation, m.Pos(), "Choose either during @Body or @BodyProp in %s", s.methodName)
	case count[metadata.InBody]+count[metadata.InBodyProp] > 0 && count[metadata.InFormData] > 0:
		return s.errorf(CategoryAnnotation, m.Pos(), "@Body or @BodyProp cannot be used with form fields or uploaded files in %s", s.methodName)
	case count[metadata.InQueries] > 1:
		return s.errorf(CategoryAnnotation, m.Pos(), "Only one queries parameter allowed in %s", s.methodName)
	case count[metadata.InQueries] > 0 && count[metadata.InQuery] > 0:
		return s.errorf(CategoryAnnotation, m.Pos(), "Choose either during @Query or @Queries in %s", s.methodName)
	}
	return nil
}

// parameter analyzes one parameter. @Res parameters expand to one
// parameter and one response per status code; @Inject yields nothing.
func (s *Session) parameter(p *ast.Parameter, m *ast.MethodDecl, verb, path string) ([]*metadata.Parameter, []*metadata.Response, error) {
	binding := bindingOf(p)
	name := "Path"
	if binding != nil {
		name = binding.Name
	}
	if name == "Inject" {
		return nil, nil, nil
	}
	if name == "Res" {
		return s.resParameter(p, m)
	}

	doc := paramDoc(m.Doc, p.Name)
	param := &metadata.Parameter{
		Name:          p.Name,
		ParameterName: p.Name,
		Required:      !p.Optional && p.Initializer == nil,
		Description:   paramDescription(m.Doc, p.Name),
		Validators:    s.paramValidators(m.Doc, p.Name, p.Pos()),
		Deprecated:    ast.FindDecorator(p.Decorators, "Deprecated") != nil || doc.HasTag("deprecated"),
		Examples:      examples(doc),
	}
	if p.Initializer != nil {
		param.Default = p.Initializer.Value()
	}
	if binding != nil {
		if wire := decoratorString(binding, 0); wire != "" {
			param.Name = wire
		}
	}
	hidden := ast.FindDecorator(p.Decorators, "Hidden") != nil

	switch name {
	case "Request":
		param.In = metadata.InRequest
		param.Name = p.Name
		param.Required = true
		param.Type = metadata.Any()
		return one(param), nil, nil
	case "UploadedFile":
		param.In = metadata.InFormData
		param.Type = metadata.Primitive(metadata.DataTypeFile)
		return one(param), nil, nil
	case "UploadedFiles":
		param.In = metadata.InFormData
		param.Type = &metadata.ArrayType{ElementType: metadata.Primitive(metadata.DataTypeFile)}
		return one(param), nil, nil
	}

	t, err := s.parameterType(p, doc)
	if err != nil {
		return nil, nil, err
	}
	param.Type = t

	switch name {
	case "Path":
		param.In = metadata.InPath
		if !s.pathLike(t) {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Path('%s') can't support '%s' type", param.Name, t.DataType())
		}
		if !pathHasParam(path, param.Name) {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Path('%s') Can't match in URL: '%s'", param.Name, path)
		}
	case "Query":
		param.In = metadata.InQuery
		if arr, ok := t.(*metadata.ArrayType); ok {
			if !s.pathLike(arr.ElementType) {
				return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
					"@Query('%s') can't support array of '%s' type", param.Name, arr.ElementType.DataType())
			}
			param.CollectionFormat = "multi"
		} else if !s.pathLike(t) {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Query('%s') can't support '%s' type", param.Name, t.DataType())
		}
		if hidden {
			if param.Required && param.Default == nil {
				return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
					"@Query('%s') Can't support @Hidden because it is required (does not allow undefined and does not have a default value)", param.Name)
			}
			return nil, nil, nil
		}
	case "Queries":
		param.In = metadata.InQueries
		param.Name = p.Name
		if err := s.checkQueries(p, t); err != nil {
			return nil, nil, err
		}
	case "Header":
		param.In = metadata.InHeader
		if !s.pathLike(t) {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Header('%s') can't support '%s' type", param.Name, t.DataType())
		}
	case "Body":
		param.In = metadata.InBody
		param.Name = p.Name
		if !bodyVerbs[verb] {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Body('%s') Can't support in %s method", p.Name, strings.ToUpper(verb))
		}
	case "BodyProp":
		param.In = metadata.InBodyProp
		if !bodyVerbs[verb] {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@BodyProp('%s') Can't support in %s method", param.Name, strings.ToUpper(verb))
		}
	case "FormField":
		param.In = metadata.InFormData
	case "RequestProp":
		param.In = metadata.InRequestProp
	}
	return one(param), nil, nil
}

func one(p *metadata.Parameter) []*metadata.Parameter { return []*metadata.Parameter{p} }

func (s *Session) parameterType(p *ast.Parameter, doc *ast.JSDoc) (metadata.Type, error) {
	if p.Type == nil {
		if p.Initializer != nil {
			switch p.Initializer.Kind {
			case ast.ExprString:
				return metadata.Primitive(metadata.DataTypeString), nil
			case ast.ExprNumber:
				return metadata.Primitive(numberKind(doc)), nil
			case ast.ExprBoolean:
				return metadata.Primitive(metadata.DataTypeBoolean), nil
			}
		}
		return metadata.Any(), nil
	}
	return s.resolve(p.Type, nil, doc)
}

// paramDoc collects the method JSDoc tags addressed to one parameter
// (`@isInt limit`, `@example limit 10`), with the name stripped, so they can
// drive narrowing like a declaration's own JSDoc.
func paramDoc(methodDoc *ast.JSDoc, name string) *ast.JSDoc {
	if methodDoc == nil {
		return nil
	}
	doc := &ast.JSDoc{}
	for _, t := range methodDoc.Tags {
		if !narrowingTags[t.Name] && t.Name != "example" && t.Name != "deprecated" {
			continue
		}
		head, rest, _ := strings.Cut(strings.TrimSpace(t.Text), " ")
		if head != name {
			continue
		}
		doc.Tags = append(doc.Tags, &ast.JSDocTag{Name: t.Name, Text: strings.TrimSpace(rest)})
	}
	return doc
}

// pathLike reports whether t can be carried in a path segment, header or
// query value: primitives, enums and unions or aliases of them.
func (s *Session) pathLike(t metadata.Type) bool {
	switch t := t.(type) {
	case *metadata.PrimitiveType:
		return t.Kind != metadata.DataTypeVoid && t.Kind != metadata.DataTypeUndef
	case *metadata.EnumType:
		return true
	case *metadata.UnionType:
		for _, m := range t.Types {
			if isNullish(m) {
				continue
			}
			if !s.pathLike(m) {
				return false
			}
		}
		return true
	case *metadata.ReferenceType:
		def := s.refs.Deref(t)
		if def == nil {
			return false
		}
		switch def.Kind {
		case metadata.RefEnum:
			return true
		case metadata.RefAlias:
			return def.Type != nil && s.pathLike(def.Type)
		}
	}
	return false
}

// checkQueries enforces that @Queries binds an object whose properties are
// each valid query values.
func (s *Session) checkQueries(p *ast.Parameter, t metadata.Type) error {
	var props []*metadata.Property
	switch t := t.(type) {
	case *metadata.ObjectLiteralType:
		props = t.Properties
	case *metadata.ReferenceType:
		def := s.refs.Deref(t)
		if def == nil || def.Kind != metadata.RefObject {
			return s.errorf(CategoryAnnotation, p.Pos(),
				"@Queries('%s') only support 'refObject' or 'nestedObjectLiteral' types", p.Name)
		}
		props = def.Properties
	default:
		return s.errorf(CategoryAnnotation, p.Pos(),
			"@Queries('%s') only support 'refObject' or 'nestedObjectLiteral' types", p.Name)
	}
	for _, prop := range props {
		pt := prop.Type
		if arr, ok := pt.(*metadata.ArrayType); ok {
			pt = arr.ElementType
		}
		if !s.pathLike(pt) {
			return s.errorf(CategoryAnnotation, p.Pos(),
				"@Queries('%s') nested property '%s' can't support '%s' type", p.Name, prop.Name, pt.DataType())
		}
	}
	return nil
}

// resParameter expands `@Res() r: TsoaResponse<Codes, Body, Headers?>`
// into one parameter and one response per literal status code.
func (s *Session) resParameter(p *ast.Parameter, m *ast.MethodDecl) ([]*metadata.Parameter, []*metadata.Response, error) {
	t, scope := checker.Deref(p.Type, nil)
	ref, ok := t.(*ast.TypeReference)
	if !ok || len(ref.Args) < 2 {
		return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
			"@Res('%s') requires a TsoaResponse<Status, Body, Headers?> type", p.Name)
	}
	codes, literal, err := s.checker.Keys(ref.Args[0], scope)
	if err != nil {
		return nil, nil, s.typeError(err, ref.Pos())
	}
	if !literal || len(codes) == 0 {
		return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
			"@Res('%s') status codes must be numeric literals", p.Name)
	}
	doc := paramDoc(m.Doc, p.Name)
	body, err := s.resolve(ref.Args[1], scope, doc)
	if err != nil {
		return nil, nil, err
	}
	var headers metadata.Type
	if len(ref.Args) > 2 {
		if headers, err = s.resolve(ref.Args[2], scope, nil); err != nil {
			return nil, nil, err
		}
	}
	desc := paramDescription(m.Doc, p.Name)
	ex := examples(doc)

	var (
		params    []*metadata.Parameter
		responses []*metadata.Response
	)
	for _, code := range codes {
		if _, err := strconv.Atoi(code); err != nil {
			return nil, nil, s.errorf(CategoryAnnotation, p.Pos(),
				"@Res('%s') status code %q is not numeric", p.Name, code)
		}
		params = append(params, &metadata.Parameter{
			In:            metadata.InRes,
			Name:          code,
			ParameterName: p.Name,
			Required:      true,
			Type:          body,
			Headers:       headers,
			Status:        code,
			Description:   desc,
			Validators:    metadata.Validators{},
			Examples:      ex,
		})
		responses = append(responses, &metadata.Response{
			Status:      code,
			Description: desc,
			Schema:      body,
			Headers:     headers,
			Examples:    ex,
		})
	}
	return params, responses, nil
}
