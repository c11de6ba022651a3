package analyzer

import (
	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/compiler"
)

// locatedController is a @Route class and the file declaring it.
type locatedController struct {
	file string
	decl *ast.ClassDecl
}

// locateControllers finds every class carrying @Route in files, skipping
// files that match an ignore pattern. Order follows files, then source order.
func locateControllers(files []*ast.SourceFile, ignore []string) []locatedController {
	var out []locatedController
	for _, f := range files {
		if compiler.IsDeclarationFile(f.Path) || matchesAny(f.Path, ignore) {
			continue
		}
		for _, c := range f.Classes() {
			if ast.FindDecorator(c.Decorators, "Route") == nil {
				continue
			}
			out = append(out, locatedController{file: f.Path, decl: c})
		}
	}
	return out
}
