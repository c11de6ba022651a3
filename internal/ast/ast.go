// Package ast is the abstract declaration model the analysis core is written
// against. The source-language binding (internal/compiler) produces it; nothing
// in this package knows how the source was parsed.
package ast

import (
	"fmt"
	"strings"
)

// Pos locates a node in its source file. Line and Column are 1-based.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position points into a file.
func (p Pos) IsValid() bool { return p.File != "" && p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Node is embedded by every positioned element of the model.
type Node struct {
	Position Pos
}

// Pos returns the node's source position.
func (n *Node) Pos() Pos { return n.Position }

// SourceFile is one parsed source file.
type SourceFile struct {
	Path         string
	Text         string
	Declarations []Declaration
	Imports      []*Import
}

// Line returns the 1-based line n of the file's text, or "" when out of range.
func (f *SourceFile) Line(n int) string {
	if f == nil || n <= 0 {
		return ""
	}
	lines := strings.Split(f.Text, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// Classes returns the class declarations of the file in source order.
func (f *SourceFile) Classes() []*ClassDecl {
	var out []*ClassDecl
	for _, d := range f.Declarations {
		if c, ok := d.(*ClassDecl); ok {
			out = append(out, c)
		}
	}
	return out
}

// Import is an import statement. Only the module specifier is kept.
type Import struct {
	Node
	Specifier string
}

// Declaration is a named top-level declaration: *InterfaceDecl, *ClassDecl,
// *TypeAliasDecl or *EnumDecl.
type Declaration interface {
	DeclName() string
	Pos() Pos
	declaration()
}

// TypeParameter is a generic parameter with optional constraint and default.
type TypeParameter struct {
	Node
	Name       string
	Constraint TypeNode
	Default    TypeNode
}

// InterfaceDecl is an interface declaration. Interfaces declared more than once
// under the same name are merged by the checker.
type InterfaceDecl struct {
	Node
	Name       string
	TypeParams []*TypeParameter
	Extends    []*TypeReference
	Members    []*Property
	Index      *IndexSignature
	Doc        *JSDoc
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	Node
	Name       string
	TypeParams []*TypeParameter
	Extends    *TypeReference
	Decorators []*Decorator
	Properties []*Property
	Methods    []*MethodDecl
	Index      *IndexSignature
	Doc        *JSDoc
	Abstract   bool
}

// Method returns the instance method with the given name, or nil.
func (c *ClassDecl) Method(name string) *MethodDecl {
	for _, m := range c.Methods {
		if m.Name == name && !m.Static {
			return m
		}
	}
	return nil
}

// TypeAliasDecl is a `type X<T> = ...` declaration.
type TypeAliasDecl struct {
	Node
	Name       string
	TypeParams []*TypeParameter
	Type       TypeNode
	Doc        *JSDoc
}

// EnumDecl is an enum declaration. Members without an initializer have
// already been numbered by the binding.
type EnumDecl struct {
	Node
	Name    string
	Members []*EnumMember
	Doc     *JSDoc
	Const   bool
}

// EnumMember is one enum member with its computed value (string or float64).
type EnumMember struct {
	Node
	Name  string
	Value any
	Doc   *JSDoc
}

func (d *InterfaceDecl) DeclName() string { return d.Name }
func (d *ClassDecl) DeclName() string     { return d.Name }
func (d *TypeAliasDecl) DeclName() string { return d.Name }
func (d *EnumDecl) DeclName() string      { return d.Name }

func (*InterfaceDecl) declaration() {}
func (*ClassDecl) declaration()     {}
func (*TypeAliasDecl) declaration() {}
func (*EnumDecl) declaration()      {}

// TypeParameters returns the generic parameters of a declaration, if any.
func TypeParameters(d Declaration) []*TypeParameter {
	switch d := d.(type) {
	case *InterfaceDecl:
		return d.TypeParams
	case *ClassDecl:
		return d.TypeParams
	case *TypeAliasDecl:
		return d.TypeParams
	}
	return nil
}

// DocOf returns the JSDoc block attached to a declaration, or nil.
func DocOf(d Declaration) *JSDoc {
	switch d := d.(type) {
	case *InterfaceDecl:
		return d.Doc
	case *ClassDecl:
		return d.Doc
	case *TypeAliasDecl:
		return d.Doc
	case *EnumDecl:
		return d.Doc
	}
	return nil
}

// MethodDecl is a class method.
type MethodDecl struct {
	Node
	Name          string
	TypeParams    []*TypeParameter
	Decorators    []*Decorator
	Params        []*Parameter
	ReturnType    TypeNode
	Doc           *JSDoc
	Static        bool
	Accessibility string
}

// Parameter is a method or constructor parameter.
type Parameter struct {
	Node
	Name          string
	Type          TypeNode
	Optional      bool
	Initializer   *Expr
	Decorators    []*Decorator
	Accessibility string
	Readonly      bool
}

// Property is an interface member, object literal member or class property.
// A nil Type means the member was written without an annotation.
type Property struct {
	Node
	Name          string
	Type          TypeNode
	Optional      bool
	Readonly      bool
	Static        bool
	Accessibility string
	Initializer   *Expr
	Decorators    []*Decorator
	Doc           *JSDoc
}

// IndexSignature is `[key: KeyType]: Type`.
type IndexSignature struct {
	Node
	KeyName string
	KeyType TypeNode
	Type    TypeNode
}

// Decorator is an `@Name<TypeArgs>(Args)` annotation. Bare `@Name` has no
// arguments. Name is the callee text, possibly dotted.
type Decorator struct {
	Node
	Name     string
	Args     []*Expr
	TypeArgs []TypeNode
	Called   bool
}

// Arg returns the i-th argument or nil.
func (d *Decorator) Arg(i int) *Expr {
	if d == nil || i < 0 || i >= len(d.Args) {
		return nil
	}
	return d.Args[i]
}

// TypeArg returns the i-th type argument or nil.
func (d *Decorator) TypeArg(i int) TypeNode {
	if d == nil || i < 0 || i >= len(d.TypeArgs) {
		return nil
	}
	return d.TypeArgs[i]
}

// FindDecorator returns the first decorator whose name is one of names.
func FindDecorator(decorators []*Decorator, names ...string) *Decorator {
	for _, d := range decorators {
		for _, n := range names {
			if d.Name == n {
				return d
			}
		}
	}
	return nil
}

// DecoratorsNamed returns every decorator whose name is one of names, in order.
func DecoratorsNamed(decorators []*Decorator, names ...string) []*Decorator {
	var out []*Decorator
	for _, d := range decorators {
		for _, n := range names {
			if d.Name == n {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
