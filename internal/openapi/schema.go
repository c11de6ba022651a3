package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/tsgonest/tsmeta/internal/metadata"
)

const componentPrefix = "#/components/schemas/"

// SchemaGenerator converts resolved types into OpenAPI schemas. Every
// reference definition becomes a component schema the first time it is
// used; later uses share the same component.
type SchemaGenerator struct {
	refs       *metadata.ReferenceTypeMap
	components openapi3.Schemas
}

// NewSchemaGenerator creates a generator over the reference map of one run.
func NewSchemaGenerator(refs *metadata.ReferenceTypeMap) *SchemaGenerator {
	return &SchemaGenerator{refs: refs, components: openapi3.Schemas{}}
}

// Components returns every component schema produced so far.
func (g *SchemaGenerator) Components() openapi3.Schemas {
	return g.components
}

// SchemaRef converts t. It returns nil for void and undefined, which have
// no body.
func (g *SchemaGenerator) SchemaRef(t metadata.Type) *openapi3.SchemaRef {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *metadata.PrimitiveType:
		s := primitive(t.Kind)
		if s == nil {
			return nil
		}
		return openapi3.NewSchemaRef("", s)
	case *metadata.ArrayType:
		items := g.SchemaRef(t.ElementType)
		if items == nil {
			items = openapi3.NewSchemaRef("", &openapi3.Schema{})
		}
		return openapi3.NewSchemaRef("", &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeArray}, Items: items})
	case *metadata.UnionType:
		return g.union(t)
	case *metadata.IntersectionType:
		s := &openapi3.Schema{}
		for _, m := range t.Types {
			if r := g.SchemaRef(m); r != nil {
				s.AllOf = append(s.AllOf, r)
			}
		}
		return openapi3.NewSchemaRef("", s)
	case *metadata.EnumType:
		return openapi3.NewSchemaRef("", enumSchema(t.Values))
	case *metadata.ObjectLiteralType:
		return openapi3.NewSchemaRef("", g.object(t.Properties, t.AdditionalProperties))
	case *metadata.ReferenceType:
		return g.reference(t)
	}
	return openapi3.NewSchemaRef("", &openapi3.Schema{})
}

func primitive(kind metadata.DataType) *openapi3.Schema {
	typed := func(typ, format string) *openapi3.Schema {
		return &openapi3.Schema{Type: &openapi3.Types{typ}, Format: format}
	}
	switch kind {
	case metadata.DataTypeString:
		return typed(openapi3.TypeString, "")
	case metadata.DataTypeBoolean:
		return typed(openapi3.TypeBoolean, "")
	case metadata.DataTypeInteger:
		return typed(openapi3.TypeInteger, "int32")
	case metadata.DataTypeLong:
		return typed(openapi3.TypeInteger, "int64")
	case metadata.DataTypeFloat:
		return typed(openapi3.TypeNumber, "float")
	case metadata.DataTypeDouble:
		return typed(openapi3.TypeNumber, "double")
	case metadata.DataTypeDate:
		return typed(openapi3.TypeString, "date")
	case metadata.DataTypeDateTime:
		return typed(openapi3.TypeString, "date-time")
	case metadata.DataTypeBuffer:
		return typed(openapi3.TypeString, "byte")
	case metadata.DataTypeFile:
		return typed(openapi3.TypeString, "binary")
	case metadata.DataTypeVoid, metadata.DataTypeUndef:
		return nil
	}
	return &openapi3.Schema{}
}

// union maps null members to nullable and collapses literal-only unions
// into a single enum.
func (g *SchemaGenerator) union(u *metadata.UnionType) *openapi3.SchemaRef {
	var (
		members  []metadata.Type
		nullable bool
		literals = true
	)
	for _, m := range u.Types {
		if e, ok := m.(*metadata.EnumType); ok && len(e.Values) == 1 && e.Values[0] == nil {
			nullable = true
			continue
		}
		if p, ok := m.(*metadata.PrimitiveType); ok && p.Kind == metadata.DataTypeUndef {
			continue
		}
		if _, ok := m.(*metadata.EnumType); !ok {
			literals = false
		}
		members = append(members, m)
	}

	switch {
	case len(members) == 0:
		if nullable {
			return openapi3.NewSchemaRef("", enumSchema([]any{nil}))
		}
		return nil
	case literals:
		var values []any
		for _, m := range members {
			values = append(values, m.(*metadata.EnumType).Values...)
		}
		if nullable {
			values = append(values, nil)
		}
		return openapi3.NewSchemaRef("", enumSchema(values))
	case len(members) == 1:
		return withNullable(g.SchemaRef(members[0]), nullable)
	}

	s := &openapi3.Schema{Nullable: nullable}
	for _, m := range members {
		if r := g.SchemaRef(m); r != nil {
			s.AnyOf = append(s.AnyOf, r)
		}
	}
	return openapi3.NewSchemaRef("", s)
}

func withNullable(r *openapi3.SchemaRef, nullable bool) *openapi3.SchemaRef {
	if !nullable || r == nil {
		return r
	}
	if r.Ref != "" {
		return openapi3.NewSchemaRef("", &openapi3.Schema{AllOf: openapi3.SchemaRefs{r}, Nullable: true})
	}
	r.Value.Nullable = true
	return r
}

// enumSchema types the enum when every value has the same JSON type. A nil
// value makes it nullable; an empty list matches nothing.
func enumSchema(values []any) *openapi3.Schema {
	if len(values) == 0 {
		return &openapi3.Schema{Not: openapi3.NewSchemaRef("", &openapi3.Schema{})}
	}
	s := &openapi3.Schema{Enum: values}
	typ := ""
	for _, v := range values {
		var vt string
		switch v.(type) {
		case nil:
			s.Nullable = true
			continue
		case string:
			vt = openapi3.TypeString
		case float64:
			vt = openapi3.TypeNumber
		case bool:
			vt = openapi3.TypeBoolean
		}
		if typ == "" {
			typ = vt
		} else if typ != vt {
			typ = "mixed"
		}
	}
	if typ != "" && typ != "mixed" {
		s.Type = &openapi3.Types{typ}
	}
	return s
}

func (g *SchemaGenerator) object(props []*metadata.Property, additional metadata.Type) *openapi3.Schema {
	s := &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
	for _, p := range props {
		s.Properties[p.Name] = g.property(p)
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	if additional != nil {
		r := g.SchemaRef(additional)
		if r == nil {
			r = openapi3.NewSchemaRef("", &openapi3.Schema{})
		}
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: r}
	}
	return s
}

func (g *SchemaGenerator) property(p *metadata.Property) *openapi3.SchemaRef {
	r := g.SchemaRef(p.Type)
	if r == nil {
		r = openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	if p.Description == "" && !p.Deprecated && p.Default == nil && p.Example == nil &&
		p.Format == "" && p.Title == "" && len(p.Validators) == 0 && len(p.Extensions) == 0 {
		return r
	}
	s := annotatable(r)
	s.Description = p.Description
	s.Deprecated = p.Deprecated
	s.Title = p.Title
	s.Default = p.Default
	s.Example = p.Example
	if p.Format != "" {
		s.Format = p.Format
	}
	applyValidators(s, p.Validators)
	applyExtensions(s, p.Extensions)
	return openapi3.NewSchemaRef("", s)
}

// annotatable returns a schema that may carry keywords next to r. A $ref
// cannot have siblings in OpenAPI 3.0, so it is wrapped in allOf.
func annotatable(r *openapi3.SchemaRef) *openapi3.Schema {
	if r.Ref != "" {
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{r}}
	}
	return r.Value
}

func (g *SchemaGenerator) reference(t *metadata.ReferenceType) *openapi3.SchemaRef {
	def := g.refs.Deref(t)
	if def == nil {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	return openapi3.NewSchemaRef(componentPrefix+def.Name, g.component(def))
}

// component returns the schema registered for def, building it on first
// use. The slot is registered before building so that cycles terminate.
func (g *SchemaGenerator) component(def *metadata.ReferenceDefinition) *openapi3.Schema {
	if existing, ok := g.components[def.Name]; ok {
		return existing.Value
	}
	s := &openapi3.Schema{}
	g.components[def.Name] = openapi3.NewSchemaRef("", s)
	*s = *g.definition(def)
	return s
}

func (g *SchemaGenerator) definition(def *metadata.ReferenceDefinition) *openapi3.Schema {
	var s *openapi3.Schema
	switch def.Kind {
	case metadata.RefObject:
		s = g.object(def.Properties, def.AdditionalProperties)
	case metadata.RefEnum:
		s = enumSchema(def.Values)
		if len(def.VarNames) > 0 {
			s.Extensions = map[string]any{"x-enum-varnames": def.VarNames}
		}
	default:
		r := g.SchemaRef(def.Type)
		if r == nil {
			s = &openapi3.Schema{}
		} else {
			s = annotatable(r)
		}
		if def.Format != "" {
			s.Format = def.Format
		}
		s.Default = def.Default
		applyValidators(s, def.Validators)
	}
	s.Description = def.Description
	s.Deprecated = def.Deprecated
	s.Title = def.Title
	s.Example = def.Example
	return s
}

func applyValidators(s *openapi3.Schema, v metadata.Validators) {
	num := func(name string) (float64, bool) {
		f, ok := v[name].Value.(float64)
		return f, ok
	}
	if f, ok := num("minimum"); ok {
		s.Min = &f
	}
	if f, ok := num("maximum"); ok {
		s.Max = &f
	}
	if f, ok := num("minLength"); ok && f >= 0 {
		s.MinLength = uint64(f)
	}
	if f, ok := num("maxLength"); ok && f >= 0 {
		n := uint64(f)
		s.MaxLength = &n
	}
	if f, ok := num("minItems"); ok && f >= 0 {
		s.MinItems = uint64(f)
	}
	if f, ok := num("maxItems"); ok && f >= 0 {
		n := uint64(f)
		s.MaxItems = &n
	}
	if p, ok := v["pattern"].Value.(string); ok {
		s.Pattern = p
	}
	if _, ok := v["uniqueItems"]; ok {
		s.UniqueItems = true
	}
}

func applyExtensions(s *openapi3.Schema, exts []metadata.Extension) {
	for _, e := range exts {
		if !strings.HasPrefix(e.Key, "x-") {
			continue
		}
		if s.Extensions == nil {
			s.Extensions = map[string]any{}
		}
		s.Extensions[e.Key] = e.Value
	}
}
