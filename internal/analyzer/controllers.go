package analyzer

import (
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// controllerContext is what a controller class contributes to each of its
// methods.
type controllerContext struct {
	name string
	path string
	tags []string
	// security is nil when the controller declares none.
	security     []metadata.Security
	rootSecurity []metadata.Security
	responses    []*metadata.Response
	produces     []string
	hidden       bool
	deprecated   bool
}

// controller analyzes a class carrying @Route.
func (s *Session) controller(loc locatedController, rootSecurity []metadata.Security) (*metadata.Controller, error) {
	c := loc.decl
	ctx := &controllerContext{
		name:         c.Name,
		path:         routePath(ast.FindDecorator(c.Decorators, "Route")),
		tags:         tagsFrom(c.Decorators),
		rootSecurity: rootSecurity,
		produces:     producesFrom(c.Decorators),
		hidden:       ast.FindDecorator(c.Decorators, "Hidden") != nil,
		deprecated:   isDeprecated(c.Doc, c.Decorators),
	}
	switch {
	case ast.FindDecorator(c.Decorators, "NoSecurity") != nil:
		ctx.security = []metadata.Security{}
	default:
		if sec := securityFrom(c.Decorators); len(sec) > 0 {
			ctx.security = toSecurity(sec)
		}
	}
	responses, err := s.responses(c.Decorators)
	if err != nil {
		return nil, err
	}
	ctx.responses = responses

	out := &metadata.Controller{
		Location:    loc.file,
		Name:        c.Name,
		Path:        ctx.path,
		Methods:     []*metadata.Method{},
		Produces:    ctx.produces,
		Description: description(c.Doc),
	}
	for _, m := range c.Methods {
		if m.Static {
			continue
		}
		method, err := s.method(ctx, m)
		if err != nil {
			return nil, err
		}
		if method == nil {
			continue
		}
		out.Methods = append(out.Methods, method)
	}
	s.logger.Debug("analyzed controller",
		zap.String("controller", c.Name),
		zap.String("path", ctx.path),
		zap.Int("methods", len(out.Methods)))
	return out, nil
}
