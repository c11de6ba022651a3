package compiler

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/tsgonest/tsmeta/internal/ast"
)

// Parser turns TypeScript source text into the abstract declaration model.
// A Parser is not safe for concurrent use.
type Parser struct {
	ts *sitter.Parser
}

// NewParser creates a parser for the TypeScript grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &Parser{ts: p}
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// ParseFile parses src as the file at path. Syntax errors do not fail the
// parse: the recovered tree is bound and the errors come back as diagnostics.
func (p *Parser) ParseFile(ctx context.Context, path string, src []byte) (*ast.SourceFile, []Diagnostic, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &binder{src: src, file: path}
	f := b.bindFile(root)
	if root.HasError() {
		b.syntaxErrors(root)
	}
	return f, b.diags, nil
}

type binder struct {
	src   []byte
	file  string
	diags []Diagnostic
}

func (b *binder) pos(n *sitter.Node) ast.Pos {
	p := n.StartPoint()
	return ast.Pos{File: b.file, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (b *binder) node(n *sitter.Node) ast.Node {
	return ast.Node{Position: b.pos(n)}
}

func (b *binder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *binder) syntaxErrors(n *sitter.Node) {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := b.pos(n)
		msg := "syntax error"
		if n.IsMissing() {
			msg = fmt.Sprintf("missing %s", n.Type())
		}
		b.diags = append(b.diags, Diagnostic{
			FilePath: b.file,
			Line:     p.Line,
			Column:   p.Column,
			Category: CategoryWarning,
			Message:  msg,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && (c.HasError() || c.IsMissing()) {
			b.syntaxErrors(c)
		}
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// hasToken reports whether n has an anonymous child token tok.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func (b *binder) bindFile(root *sitter.Node) *ast.SourceFile {
	f := &ast.SourceFile{Path: b.file, Text: string(b.src)}
	b.bindStatements(f, root)
	return f
}

func (b *binder) bindStatements(f *ast.SourceFile, parent *sitter.Node) {
	var doc *ast.JSDoc
	for _, stmt := range namedChildren(parent) {
		switch stmt.Type() {
		case "comment":
			if d := ast.ParseJSDoc(b.text(stmt)); d != nil {
				doc = d
			}
			continue
		case "import_statement":
			if src := stmt.ChildByFieldName("source"); src != nil {
				f.Imports = append(f.Imports, &ast.Import{Node: b.node(stmt), Specifier: unquote(b.text(src))})
			}
		case "export_statement":
			decorators := b.ownDecorators(stmt)
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				b.bindDeclaration(f, decl, decorators, doc)
			} else if v := stmt.ChildByFieldName("value"); v != nil && v.Type() == "class" {
				b.bindDeclaration(f, v, decorators, doc)
			}
			if src := stmt.ChildByFieldName("source"); src != nil {
				f.Imports = append(f.Imports, &ast.Import{Node: b.node(stmt), Specifier: unquote(b.text(src))})
			}
		default:
			b.bindDeclaration(f, stmt, nil, doc)
		}
		doc = nil
	}
}

func (b *binder) bindDeclaration(f *ast.SourceFile, n *sitter.Node, decorators []*ast.Decorator, doc *ast.JSDoc) {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		f.Declarations = append(f.Declarations, b.bindClass(n, decorators, doc))
	case "interface_declaration":
		f.Declarations = append(f.Declarations, b.bindInterface(n, doc))
	case "type_alias_declaration":
		f.Declarations = append(f.Declarations, b.bindTypeAlias(n, doc))
	case "enum_declaration":
		f.Declarations = append(f.Declarations, b.bindEnum(n, doc))
	case "ambient_declaration":
		for _, c := range namedChildren(n) {
			b.bindDeclaration(f, c, decorators, doc)
		}
	case "internal_module", "module":
		if body := n.ChildByFieldName("body"); body != nil {
			b.bindStatements(f, body)
		}
	case "expression_statement":
		// `namespace X {}` parses as an expression statement in some grammar versions.
		if c := childOfType(n, "internal_module"); c != nil {
			b.bindDeclaration(f, c, decorators, doc)
		}
	}
}

func (b *binder) ownDecorators(n *sitter.Node) []*ast.Decorator {
	var out []*ast.Decorator
	for _, c := range namedChildren(n) {
		if c.Type() == "decorator" {
			out = append(out, b.decorator(c))
		}
	}
	return out
}

func (b *binder) decorator(n *sitter.Node) *ast.Decorator {
	d := &ast.Decorator{Node: b.node(n)}
	expr := n.NamedChild(0)
	for expr != nil && expr.Type() == "parenthesized_expression" {
		expr = expr.NamedChild(0)
	}
	if expr == nil {
		return d
	}
	if expr.Type() != "call_expression" {
		d.Name = compact(b.text(expr))
		return d
	}
	d.Called = true
	d.Name = compact(b.text(expr.ChildByFieldName("function")))
	if ta := expr.ChildByFieldName("type_arguments"); ta != nil {
		d.TypeArgs = b.typeArguments(ta)
	}
	if args := expr.ChildByFieldName("arguments"); args != nil {
		for _, a := range namedChildren(args) {
			if a.Type() == "comment" {
				continue
			}
			d.Args = append(d.Args, b.expr(a))
		}
	}
	return d
}

func (b *binder) accessibility(n *sitter.Node) string {
	if m := childOfType(n, "accessibility_modifier"); m != nil {
		return b.text(m)
	}
	return ""
}

func (b *binder) typeParams(n *sitter.Node) []*ast.TypeParameter {
	if n == nil {
		return nil
	}
	var out []*ast.TypeParameter
	for _, c := range namedChildren(n) {
		if c.Type() != "type_parameter" {
			continue
		}
		tp := &ast.TypeParameter{Node: b.node(c), Name: b.text(c.ChildByFieldName("name"))}
		if con := c.ChildByFieldName("constraint"); con != nil {
			tp.Constraint = b.innerType(con)
		}
		if def := c.ChildByFieldName("value"); def != nil {
			tp.Default = b.innerType(def)
		}
		out = append(out, tp)
	}
	return out
}

func (b *binder) bindClass(n *sitter.Node, decorators []*ast.Decorator, doc *ast.JSDoc) *ast.ClassDecl {
	c := &ast.ClassDecl{
		Node:       b.node(n),
		Name:       b.text(n.ChildByFieldName("name")),
		Doc:        doc,
		Abstract:   n.Type() == "abstract_class_declaration",
		TypeParams: b.typeParams(n.ChildByFieldName("type_parameters")),
	}
	c.Decorators = append(decorators, b.ownDecorators(n)...)
	if h := childOfType(n, "class_heritage"); h != nil {
		if ext := childOfType(h, "extends_clause"); ext != nil {
			c.Extends = b.heritage(ext)
		}
	}
	b.bindClassBody(c, n.ChildByFieldName("body"))
	return c
}

func (b *binder) heritage(n *sitter.Node) *ast.TypeReference {
	value := n.ChildByFieldName("value")
	if value == nil {
		value = n.NamedChild(0)
	}
	if value == nil {
		return nil
	}
	ref := &ast.TypeReference{Node: b.node(value), Name: compact(b.text(value))}
	ta := n.ChildByFieldName("type_arguments")
	if ta == nil {
		ta = childOfType(n, "type_arguments")
	}
	if ta != nil {
		ref.Args = b.typeArguments(ta)
	}
	return ref
}

func (b *binder) bindClassBody(c *ast.ClassDecl, body *sitter.Node) {
	var decorators []*ast.Decorator
	var doc *ast.JSDoc
	for _, m := range namedChildren(body) {
		switch m.Type() {
		case "comment":
			if d := ast.ParseJSDoc(b.text(m)); d != nil {
				doc = d
			}
			continue
		case "decorator":
			decorators = append(decorators, b.decorator(m))
			continue
		case "method_definition", "method_signature", "abstract_method_signature":
			md := b.method(m, decorators, doc)
			if md.Name == "constructor" {
				for _, p := range md.Params {
					if p.Accessibility != "" || p.Readonly {
						c.Properties = append(c.Properties, &ast.Property{
							Node:          p.Node,
							Name:          p.Name,
							Type:          p.Type,
							Optional:      p.Optional,
							Readonly:      p.Readonly,
							Accessibility: p.Accessibility,
							Initializer:   p.Initializer,
							Decorators:    p.Decorators,
						})
					}
				}
			} else {
				c.Methods = append(c.Methods, md)
			}
		case "public_field_definition", "field_definition", "property_signature":
			c.Properties = append(c.Properties, b.field(m, decorators, doc))
		case "index_signature":
			if sig, _ := b.indexSignature(m); sig != nil {
				c.Index = sig
			}
		}
		decorators, doc = nil, nil
	}
}

func (b *binder) method(n *sitter.Node, decorators []*ast.Decorator, doc *ast.JSDoc) *ast.MethodDecl {
	md := &ast.MethodDecl{
		Node:          b.node(n),
		Name:          b.propertyName(n.ChildByFieldName("name")),
		Doc:           doc,
		Static:        hasToken(n, "static"),
		Accessibility: b.accessibility(n),
		TypeParams:    b.typeParams(n.ChildByFieldName("type_parameters")),
	}
	md.Decorators = append(decorators, b.ownDecorators(n)...)
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		for _, p := range namedChildren(ps) {
			switch p.Type() {
			case "required_parameter", "optional_parameter":
				md.Params = append(md.Params, b.parameter(p))
			}
		}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		md.ReturnType = b.annotation(rt)
	}
	return md
}

func (b *binder) parameter(n *sitter.Node) *ast.Parameter {
	p := &ast.Parameter{
		Node:          b.node(n),
		Optional:      n.Type() == "optional_parameter",
		Decorators:    b.ownDecorators(n),
		Accessibility: b.accessibility(n),
		Readonly:      hasToken(n, "readonly"),
	}
	if pat := n.ChildByFieldName("pattern"); pat != nil {
		p.Name = b.text(pat)
		p.Node = b.node(pat)
	}
	if t := n.ChildByFieldName("type"); t != nil {
		p.Type = b.annotation(t)
	}
	if v := n.ChildByFieldName("value"); v != nil {
		p.Initializer = b.expr(v)
	}
	return p
}

func (b *binder) field(n *sitter.Node, decorators []*ast.Decorator, doc *ast.JSDoc) *ast.Property {
	p := &ast.Property{
		Node:          b.node(n),
		Name:          b.propertyName(n.ChildByFieldName("name")),
		Doc:           doc,
		Optional:      hasToken(n, "?"),
		Readonly:      hasToken(n, "readonly"),
		Static:        hasToken(n, "static"),
		Accessibility: b.accessibility(n),
	}
	p.Decorators = append(decorators, b.ownDecorators(n)...)
	if t := n.ChildByFieldName("type"); t != nil {
		p.Type = b.annotation(t)
	}
	if v := n.ChildByFieldName("value"); v != nil {
		p.Initializer = b.expr(v)
	}
	return p
}

func (b *binder) propertyName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "string":
		return unquote(b.text(n))
	case "computed_property_name":
		inner := n.NamedChild(0)
		if inner != nil && inner.Type() == "string" {
			return unquote(b.text(inner))
		}
	}
	return b.text(n)
}

func (b *binder) bindInterface(n *sitter.Node, doc *ast.JSDoc) *ast.InterfaceDecl {
	d := &ast.InterfaceDecl{
		Node:       b.node(n),
		Name:       b.text(n.ChildByFieldName("name")),
		Doc:        doc,
		TypeParams: b.typeParams(n.ChildByFieldName("type_parameters")),
	}
	if ext := childOfType(n, "extends_type_clause", "extends_clause"); ext != nil {
		for _, t := range namedChildren(ext) {
			if ref, ok := b.convertType(t).(*ast.TypeReference); ok {
				d.Extends = append(d.Extends, ref)
			}
		}
	}
	d.Members, d.Index, _ = b.objectMembers(n.ChildByFieldName("body"))
	return d
}

// objectMembers binds the members of an object_type or interface_body. A
// body consisting of a single mapped clause comes back as the mapped type.
func (b *binder) objectMembers(body *sitter.Node) ([]*ast.Property, *ast.IndexSignature, *ast.MappedType) {
	var (
		members []*ast.Property
		index   *ast.IndexSignature
		mapped  *ast.MappedType
		doc     *ast.JSDoc
	)
	for _, m := range namedChildren(body) {
		switch m.Type() {
		case "comment":
			if d := ast.ParseJSDoc(b.text(m)); d != nil {
				doc = d
			}
			continue
		case "property_signature", "public_field_definition":
			members = append(members, b.field(m, nil, doc))
		case "index_signature":
			sig, mt := b.indexSignature(m)
			if sig != nil {
				index = sig
			}
			if mt != nil {
				mapped = mt
			}
		}
		doc = nil
	}
	return members, index, mapped
}

func (b *binder) indexSignature(n *sitter.Node) (*ast.IndexSignature, *ast.MappedType) {
	annotation := n.ChildByFieldName("type")
	if clause := childOfType(n, "mapped_type_clause"); clause != nil {
		m := &ast.MappedType{
			Node:       b.node(n),
			Param:      b.text(clause.ChildByFieldName("name")),
			Constraint: b.convertType(clause.ChildByFieldName("type")),
		}
		if as := clause.ChildByFieldName("alias"); as != nil {
			m.NameType = b.convertType(as)
		}
		if annotation != nil {
			switch annotation.Type() {
			case "opting_type_annotation", "adding_type_annotation":
				m.Optional = ast.ModifierAdd
			case "omitting_type_annotation":
				m.Optional = ast.ModifierRemove
			}
			m.Type = b.annotation(annotation)
		}
		if hasToken(n, "readonly") {
			m.Readonly = ast.ModifierAdd
			if hasToken(n, "-") {
				m.Readonly = ast.ModifierRemove
			}
		}
		return nil, m
	}

	sig := &ast.IndexSignature{Node: b.node(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		sig.KeyName = b.text(name)
	}
	if kt := n.ChildByFieldName("index_type"); kt != nil {
		sig.KeyType = b.convertType(kt)
	}
	for _, c := range namedChildren(n) {
		switch {
		case c.Type() == "identifier" && sig.KeyName == "":
			sig.KeyName = b.text(c)
		case sig.KeyType == nil && c.Type() != "identifier" && !isAnnotation(c.Type()):
			sig.KeyType = b.convertType(c)
		}
	}
	if annotation != nil {
		sig.Type = b.annotation(annotation)
	}
	return sig, nil
}

func isAnnotation(t string) bool {
	switch t {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation":
		return true
	}
	return false
}

func (b *binder) bindTypeAlias(n *sitter.Node, doc *ast.JSDoc) *ast.TypeAliasDecl {
	return &ast.TypeAliasDecl{
		Node:       b.node(n),
		Name:       b.text(n.ChildByFieldName("name")),
		Doc:        doc,
		TypeParams: b.typeParams(n.ChildByFieldName("type_parameters")),
		Type:       b.convertType(n.ChildByFieldName("value")),
	}
}

func (b *binder) bindEnum(n *sitter.Node, doc *ast.JSDoc) *ast.EnumDecl {
	d := &ast.EnumDecl{
		Node:  b.node(n),
		Name:  b.text(n.ChildByFieldName("name")),
		Doc:   doc,
		Const: hasToken(n, "const"),
	}
	next := 0.0
	var memberDoc *ast.JSDoc
	for _, m := range namedChildren(n.ChildByFieldName("body")) {
		member := &ast.EnumMember{Node: b.node(m), Doc: memberDoc}
		switch m.Type() {
		case "comment":
			if jd := ast.ParseJSDoc(b.text(m)); jd != nil {
				memberDoc = jd
			}
			continue
		case "enum_assignment":
			member.Name = b.propertyName(m.ChildByFieldName("name"))
			init := b.expr(m.ChildByFieldName("value"))
			switch init.Kind {
			case ast.ExprNumber:
				member.Value = init.Num
				next = init.Num + 1
			case ast.ExprString:
				member.Value = init.Str
			default:
				member.Value = init.Text
			}
		default:
			member.Name = b.propertyName(m)
			member.Value = next
			next++
		}
		d.Members = append(d.Members, member)
		memberDoc = nil
	}
	return d
}
