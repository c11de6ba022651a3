package analyzer

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

var operationIDCase = cases.Title(language.Und, cases.NoLower)

// method analyzes one class method. It returns nil for methods without a
// verb decorator.
func (s *Session) method(ctl *controllerContext, m *ast.MethodDecl) (*metadata.Method, error) {
	decs := verbDecorators(m.Decorators)
	if len(decs) == 0 {
		return nil, nil
	}
	s.enterMethod(ctl.name, m.Name)
	defer s.leaveMethod()

	if len(decs) > 1 {
		names := make([]string, len(decs))
		for i, d := range decs {
			names[i] = "@" + d.Name
		}
		return nil, s.errorf(CategoryAnnotation, m.Pos(),
			"Only one HTTP Method decorator in '%s' method is acceptable, Found: %s", m.Name, strings.Join(names, ", "))
	}
	verb := verbs[decs[0].Name]
	path := cleanPath(decoratorString(decs[0], 0))

	returnType, err := s.returnType(m)
	if err != nil {
		return nil, err
	}

	params, resResponses, err := s.methodParameters(m, verb, CombinePaths(ctl.path, path))
	if err != nil {
		return nil, err
	}

	out := &metadata.Method{
		Name:        m.Name,
		Verb:        verb,
		Path:        path,
		OperationID: operationID(m),
		Parameters:  nonNilParams(params),
		ReturnType:  returnType,
		Deprecated:  ctl.deprecated || isDeprecated(m.Doc, m.Decorators),
		Hidden:      ctl.hidden || ast.FindDecorator(m.Decorators, "Hidden") != nil,
		Tags:        append(append([]string{}, ctl.tags...), tagsFrom(m.Decorators)...),
		Security:    s.methodSecurity(ctl, m),
		Summary:     tagText(m.Doc, "summary"),
		Description: description(m.Doc),
		Produces:    producesFrom(m.Decorators),
		Extensions:  extensions(m.Doc, m.Decorators),
	}
	if len(out.Produces) == 0 {
		out.Produces = ctl.produces
	}
	if d := ast.FindDecorator(m.Decorators, "Consumes"); d != nil {
		out.Consumes = decoratorString(d, 0)
	}

	success := successResponse(m, returnType, out.Produces)
	if d := ast.FindDecorator(m.Decorators, "SuccessResponse"); d != nil {
		out.SuccessStatus = success.Status
	}
	declared, err := s.responses(m.Decorators)
	if err != nil {
		return nil, err
	}
	out.Responses = []*metadata.Response{success}
	for _, r := range mergeResponses(mergeResponses(ctl.responses, declared), resResponses) {
		if r.Status != success.Status {
			out.Responses = append(out.Responses, r)
		}
	}
	return out, nil
}

func (s *Session) returnType(m *ast.MethodDecl) (metadata.Type, error) {
	if m.ReturnType == nil {
		s.warnWithHint(diagnostic.CategoryMissingReturnType, m.Pos(),
			"add an explicit return type annotation",
			"method %s has no return type; using any", m.Name)
		return metadata.Any(), nil
	}
	return s.resolve(m.ReturnType, nil, m.Doc)
}

// operationID is @OperationId('x') or the method name with its first letter
// upper-cased.
func operationID(m *ast.MethodDecl) string {
	if d := ast.FindDecorator(m.Decorators, "OperationId"); d != nil {
		if id := decoratorString(d, 0); id != "" {
			return id
		}
	}
	return operationIDCase.String(m.Name)
}

// methodSecurity applies precedence: method @Security, then @NoSecurity,
// then the controller's, then the root security.
func (s *Session) methodSecurity(ctl *controllerContext, m *ast.MethodDecl) []metadata.Security {
	if sec := securityFrom(m.Decorators); len(sec) > 0 {
		return toSecurity(sec)
	}
	if ast.FindDecorator(m.Decorators, "NoSecurity") != nil {
		return []metadata.Security{}
	}
	if ctl.security != nil {
		return ctl.security
	}
	if ctl.rootSecurity != nil {
		return ctl.rootSecurity
	}
	return []metadata.Security{}
}

func toSecurity(reqs []map[string][]string) []metadata.Security {
	out := make([]metadata.Security, len(reqs))
	for i, r := range reqs {
		out[i] = metadata.Security(r)
	}
	return out
}

// successResponse builds the 2xx response from @SuccessResponse and
// @Example, defaulting to 200, or 204 for a void method.
func successResponse(m *ast.MethodDecl, returnType metadata.Type, produces []string) *metadata.Response {
	r := &metadata.Response{Status: "200", Description: "Ok", Schema: returnType, Produces: produces}
	if metadata.IsVoid(returnType) {
		r.Status, r.Description = "204", "No content"
	}
	if d := ast.FindDecorator(m.Decorators, "SuccessResponse"); d != nil {
		if status := statusOf(d.Arg(0)); status != "" {
			r.Status = status
		}
		if desc := decoratorString(d, 1); desc != "" {
			r.Description = desc
		}
		if p := d.Arg(2).Strings(); len(p) > 0 {
			r.Produces = p
		}
	}
	for _, d := range ast.DecoratorsNamed(m.Decorators, "Example") {
		if v := d.Arg(0); v != nil {
			r.Examples = append(r.Examples, v.Value())
			r.ExampleLabels = append(r.ExampleLabels, decoratorString(d, 1))
		}
	}
	return r
}

// responses reads @Response<T>(status, description?, example?, produces?)
// decorators.
func (s *Session) responses(decorators []*ast.Decorator) ([]*metadata.Response, error) {
	var out []*metadata.Response
	for _, d := range ast.DecoratorsNamed(decorators, "Response") {
		status := statusOf(d.Arg(0))
		if status == "" {
			return nil, s.errorf(CategoryAnnotation, d.Pos(), "@Response requires a status code")
		}
		r := &metadata.Response{Status: status, Description: decoratorString(d, 1)}
		if t := d.TypeArg(0); t != nil {
			schema, err := s.resolve(t, nil, nil)
			if err != nil {
				return nil, err
			}
			r.Schema = schema
		}
		if ex := d.Arg(2); ex != nil && ex.Kind != ast.ExprUndefined {
			r.Examples = []any{ex.Value()}
		}
		if p := d.Arg(3).Strings(); len(p) > 0 {
			r.Produces = p
		}
		out = append(out, r)
	}
	return out, nil
}

// statusOf renders a status argument written as a number or a string.
func statusOf(e *ast.Expr) string {
	if s, ok := e.StringValue(); ok {
		return s
	}
	if n, ok := e.NumberValue(); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// mergeResponses overlays override onto base; an override with the same
// status replaces the base entry in place.
func mergeResponses(base, override []*metadata.Response) []*metadata.Response {
	out := append([]*metadata.Response{}, base...)
	for _, r := range override {
		replaced := false
		for i, cur := range out {
			if cur.Status == r.Status {
				out[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, r)
		}
	}
	return out
}

func nonNilParams(p []*metadata.Parameter) []*metadata.Parameter {
	if p == nil {
		return []*metadata.Parameter{}
	}
	return p
}
