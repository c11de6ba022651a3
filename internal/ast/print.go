package ast

import (
	"strconv"
	"strings"
)

// Printer renders type expressions back to TypeScript-like text.
// Ref, when set, may replace the rendering of a type reference; the resolver
// uses it to substitute generic bindings.
type Printer struct {
	Ref func(r *TypeReference) (string, bool)
}

// Print renders t with the zero Printer.
func Print(t TypeNode) string {
	var p Printer
	return p.Print(t)
}

// Print renders t. Array<T> and T[] render identically.
func (p *Printer) Print(t TypeNode) string {
	var b strings.Builder
	p.write(&b, t)
	return b.String()
}

func (p *Printer) write(b *strings.Builder, t TypeNode) {
	switch t := t.(type) {
	case nil:
		b.WriteString(KeywordAny)
	case *KeywordType:
		b.WriteString(t.Keyword)
	case *LiteralType:
		switch t.Kind {
		case LiteralString:
			s, _ := t.Value.(string)
			b.WriteString(strconv.Quote(s))
		default:
			b.WriteString(t.Text)
		}
	case *ArrayType:
		p.writeElem(b, t.Elem)
		b.WriteString("[]")
	case *TupleType:
		b.WriteByte('[')
		p.join(b, t.Elems, ", ")
		b.WriteByte(']')
	case *UnionType:
		p.join(b, t.Types, " | ")
	case *IntersectionType:
		p.join(b, t.Types, " & ")
	case *ParenthesizedType:
		b.WriteByte('(')
		p.write(b, t.Type)
		b.WriteByte(')')
	case *TypeReference:
		if p.Ref != nil {
			if s, ok := p.Ref(t); ok {
				b.WriteString(s)
				return
			}
		}
		if t.Name == "Array" && len(t.Args) == 1 {
			p.writeElem(b, t.Args[0])
			b.WriteString("[]")
			return
		}
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('<')
			p.join(b, t.Args, ", ")
			b.WriteByte('>')
		}
	case *TypeLiteral:
		b.WriteString("{ ")
		for _, m := range t.Members {
			b.WriteString(m.Name)
			if m.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			p.write(b, m.Type)
			b.WriteString("; ")
		}
		if t.Index != nil {
			b.WriteString("[" + t.Index.KeyName + ": ")
			p.write(b, t.Index.KeyType)
			b.WriteString("]: ")
			p.write(b, t.Index.Type)
			b.WriteString("; ")
		}
		b.WriteByte('}')
	case *MappedType:
		b.WriteString("{ [" + t.Param + " in ")
		p.write(b, t.Constraint)
		if t.NameType != nil {
			b.WriteString(" as ")
			p.write(b, t.NameType)
		}
		b.WriteByte(']')
		switch t.Optional {
		case ModifierAdd:
			b.WriteByte('?')
		case ModifierRemove:
			b.WriteString("-?")
		}
		b.WriteString(": ")
		p.write(b, t.Type)
		b.WriteString(" }")
	case *TypeOperator:
		b.WriteString(t.Operator + " ")
		p.writeElem(b, t.Type)
	case *IndexedAccessType:
		p.writeElem(b, t.Object)
		b.WriteByte('[')
		p.write(b, t.Index)
		b.WriteByte(']')
	case *TemplateLiteralType:
		b.WriteString(t.Text)
	case *UnsupportedType:
		b.WriteString(t.Text)
	}
}

// writeElem parenthesizes compound operands of postfix and prefix operators.
func (p *Printer) writeElem(b *strings.Builder, t TypeNode) {
	switch t.(type) {
	case *UnionType, *IntersectionType, *TypeOperator:
		b.WriteByte('(')
		p.write(b, t)
		b.WriteByte(')')
	default:
		p.write(b, t)
	}
}

func (p *Printer) join(b *strings.Builder, ts []TypeNode, sep string) {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(sep)
		}
		p.write(b, t)
	}
}
