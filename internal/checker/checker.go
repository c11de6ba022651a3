// Package checker answers the type queries the resolver needs over a parsed
// program: declaration lookup, generic scopes, member expansion of object
// shapes (including utility and mapped types), keyof and indexed access.
package checker

import (
	"fmt"
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/compiler"
)

// maxDepth bounds recursive shape computations on malformed input such as
// an interface extending itself.
const maxDepth = 64

// Error is a failed type query at a source position.
type Error struct {
	Pos     ast.Pos
	Message string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

func errorf(pos ast.Pos, format string, args ...any) error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Checker indexes the declarations of a program by name.
type Checker struct {
	program *compiler.Program
	decls   map[string][]ast.Declaration
	merged  map[string]ast.Declaration
}

// New indexes every declaration in the program.
func New(program *compiler.Program) *Checker {
	c := &Checker{
		program: program,
		decls:   make(map[string][]ast.Declaration),
		merged:  make(map[string]ast.Declaration),
	}
	for _, f := range program.SourceFiles() {
		for _, d := range f.Declarations {
			c.decls[d.DeclName()] = append(c.decls[d.DeclName()], d)
		}
	}
	return c
}

// Program returns the program the checker was built from.
func (c *Checker) Program() *compiler.Program { return c.program }

// Lookup resolves a type name to its declaration. Interfaces declared more
// than once are merged; any other repeated name is ambiguous. Dotted names
// fall back to their last segment.
func (c *Checker) Lookup(name string, pos ast.Pos) (ast.Declaration, error) {
	if d, ok := c.merged[name]; ok {
		return d, nil
	}
	decls := c.decls[name]
	if len(decls) == 0 {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			return c.Lookup(name[i+1:], pos)
		}
		return nil, errorf(pos, "No matching model found for referenced type %s.", name)
	}
	if len(decls) == 1 {
		return decls[0], nil
	}

	merged := &ast.InterfaceDecl{}
	for i, d := range decls {
		iface, ok := d.(*ast.InterfaceDecl)
		if !ok {
			return nil, errorf(pos, "Multiple matching models found for referenced type %s; please make model names unique.", name)
		}
		if i == 0 {
			merged.Node = iface.Node
			merged.Name = iface.Name
			merged.TypeParams = iface.TypeParams
			merged.Doc = iface.Doc
		}
		if merged.Doc == nil {
			merged.Doc = iface.Doc
		}
		merged.Extends = append(merged.Extends, iface.Extends...)
		merged.Members = append(merged.Members, iface.Members...)
		if iface.Index != nil {
			merged.Index = iface.Index
		}
	}
	c.merged[name] = merged
	return merged, nil
}

// Has reports whether any declaration carries the name.
func (c *Checker) Has(name string) bool {
	_, ok := c.decls[name]
	return ok
}
