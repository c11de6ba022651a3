package analyzer

import (
	"regexp"
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// checkDuplicateSignatures fails when two methods anywhere in the program
// share a verb and a verbatim full path.
func checkDuplicateSignatures(controllers []*metadata.Controller) error {
	var order []string
	owners := make(map[string][]string)
	for _, c := range controllers {
		for _, m := range c.Methods {
			sig := "@" + m.Verb + "(" + cleanPath(c.Path) + "/" + cleanPath(m.Path) + ")"
			if _, ok := owners[sig]; !ok {
				order = append(order, sig)
			}
			owners[sig] = append(owners[sig], c.Name+"#"+m.Name)
		}
	}
	for _, sig := range order {
		if names := owners[sig]; len(names) > 1 {
			return &GenerateMetadataError{
				Category: CategoryAnnotation,
				Message:  "Duplicate method signature " + sig + " found in controllers: " + strings.Join(names, ", "),
			}
		}
	}
	return nil
}

// qualifyOperationIDs prefixes derived operation ids shared by several
// methods with their controller name, so that UsersController.list and
// OrdersController.list become UsersList and OrdersList. Ids set with
// @OperationId are left alone.
func qualifyOperationIDs(controllers []*metadata.Controller) {
	count := make(map[string]int)
	for _, c := range controllers {
		for _, m := range c.Methods {
			count[m.OperationID]++
		}
	}
	for _, c := range controllers {
		prefix := strings.TrimSuffix(c.Name, "Controller")
		if prefix == "" {
			prefix = c.Name
		}
		for _, m := range c.Methods {
			if count[m.OperationID] > 1 && m.OperationID == operationIDCase.String(m.Name) {
				m.OperationID = prefix + m.OperationID
			}
		}
	}
}

var (
	braceParam = regexp.MustCompile(`\{[^}/]*\}`)
	colonParam = regexp.MustCompile(`(^|/):[^/]+`)
)

// normalizeRoute replaces every path parameter with {} and roots the path.
func normalizeRoute(p string) string {
	p = "/" + cleanPath(p)
	p = braceParam.ReplaceAllString(p, "{}")
	return colonParam.ReplaceAllString(p, "$1{}")
}

// routeOverlap classifies how an earlier route can shadow a later one.
func routeOverlap(earlier, later string) string {
	a, b := normalizeRoute(earlier), normalizeRoute(later)
	if a == b {
		return "full"
	}
	if strings.Count(a, "/") != strings.Count(b, "/") || !strings.HasSuffix(a, "/{}") {
		return ""
	}
	if a[:strings.LastIndexByte(a, '/')] == b[:strings.LastIndexByte(b, '/')] {
		return "partial"
	}
	return ""
}

// checkRouteOverlaps warns, per controller and verb, about methods whose
// paths match the same requests once parameter names are ignored.
func (s *Session) checkRouteOverlaps(controllers []*metadata.Controller) {
	for _, c := range controllers {
		byVerb := make(map[string][]*metadata.Method)
		var verbsInOrder []string
		for _, m := range c.Methods {
			if _, ok := byVerb[m.Verb]; !ok {
				verbsInOrder = append(verbsInOrder, m.Verb)
			}
			byVerb[m.Verb] = append(byVerb[m.Verb], m)
		}
		for _, verb := range verbsInOrder {
			methods := byVerb[verb]
			for i := 0; i < len(methods); i++ {
				for j := i + 1; j < len(methods); j++ {
					kind := routeOverlap(methods[i].Path, methods[j].Path)
					if kind == "" {
						continue
					}
					s.warnWithHint(diagnostic.CategoryRouteOverlap, ast.Pos{File: c.Location},
						"declare the more specific route first",
						"%s overlap in %s: %s %s (%s) and %s %s (%s)",
						kind, c.Name,
						strings.ToUpper(verb), CombinePaths(c.Path, methods[i].Path), methods[i].Name,
						strings.ToUpper(verb), CombinePaths(c.Path, methods[j].Path), methods[j].Name)
				}
			}
		}
	}
}
