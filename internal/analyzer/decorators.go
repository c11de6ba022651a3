package analyzer

import (
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
)

// verbs maps method decorators to the HTTP verb they declare.
var verbs = map[string]string{
	"Get":     "get",
	"Post":    "post",
	"Put":     "put",
	"Patch":   "patch",
	"Delete":  "delete",
	"Head":    "head",
	"Options": "options",
}

// bodyVerbs are the verbs that accept a request body.
var bodyVerbs = map[string]bool{"post": true, "put": true, "patch": true, "delete": true}

// verbDecorators returns the method's verb decorators in source order.
func verbDecorators(decorators []*ast.Decorator) []*ast.Decorator {
	var out []*ast.Decorator
	for _, d := range decorators {
		if _, ok := verbs[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// decoratorString returns the i-th string argument of d, or "".
func decoratorString(d *ast.Decorator, i int) string {
	s, _ := d.Arg(i).StringValue()
	return s
}

// routePath extracts the path from @Route('path').
func routePath(d *ast.Decorator) string {
	if d == nil {
		return ""
	}
	return cleanPath(decoratorString(d, 0))
}

// CombinePaths joins a controller prefix and method sub-path into a full route path.
func CombinePaths(prefix, subPath string) string {
	prefix = cleanPath(prefix)
	subPath = cleanPath(subPath)

	if prefix == "" && subPath == "" {
		return "/"
	}
	if prefix == "" {
		return "/" + subPath
	}
	if subPath == "" {
		return "/" + prefix
	}
	return "/" + prefix + "/" + subPath
}

// cleanPath removes leading and trailing slashes.
func cleanPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

// pathHasParam reports whether path declares {name} or :name.
func pathHasParam(path, name string) bool {
	if strings.Contains(path, "{"+name+"}") {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ":"+name {
			return true
		}
	}
	return false
}

// securityFrom reads @Security decorators. Both forms are accepted:
// @Security('name', ['scope']) and @Security({ name: ['scope'] }).
func securityFrom(decorators []*ast.Decorator) []map[string][]string {
	var out []map[string][]string
	for _, d := range ast.DecoratorsNamed(decorators, "Security") {
		arg := d.Arg(0)
		if arg == nil {
			continue
		}
		if arg.Kind == ast.ExprObject {
			req := make(map[string][]string, len(arg.Fields))
			for _, f := range arg.Fields {
				req[f.Key] = nonNil(f.Value.Strings())
			}
			out = append(out, req)
			continue
		}
		name, ok := arg.StringValue()
		if !ok {
			continue
		}
		out = append(out, map[string][]string{name: nonNil(d.Arg(1).Strings())})
	}
	return out
}

// tagsFrom reads @Tags('a', 'b') decorators.
func tagsFrom(decorators []*ast.Decorator) []string {
	var out []string
	for _, d := range ast.DecoratorsNamed(decorators, "Tags") {
		for _, a := range d.Args {
			out = append(out, a.Strings()...)
		}
	}
	return out
}

// producesFrom reads @Produces('application/json', ...) decorators.
func producesFrom(decorators []*ast.Decorator) []string {
	var out []string
	for _, d := range ast.DecoratorsNamed(decorators, "Produces") {
		for _, a := range d.Args {
			out = append(out, a.Strings()...)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
