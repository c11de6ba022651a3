package metadata

// Schema is the flattened, reference-by-name view of a Type used by route
// code consumers.
type Schema struct {
	DataType             DataType           `json:"dataType"`
	Ref                  string             `json:"ref,omitempty"`
	Required             bool               `json:"required,omitempty"`
	Array                *Schema            `json:"array,omitempty"`
	Enums                []any              `json:"enums,omitempty"`
	SubSchemas           []*Schema          `json:"subSchemas,omitempty"`
	NestedProperties     map[string]*Schema `json:"nestedProperties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Validators           Validators         `json:"validators,omitempty"`
	Default              any                `json:"default,omitempty"`
}

// Model is the projection of one ReferenceDefinition.
type Model struct {
	DataType             RefKind            `json:"dataType"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Enums                []any              `json:"enums,omitempty"`
	Type                 *Schema            `json:"type,omitempty"`
}

// Models projects the reference map into name → Model.
func (m *Metadata) Models() map[string]*Model {
	out := make(map[string]*Model)
	if m.ReferenceTypeMap == nil {
		return out
	}
	for _, d := range m.ReferenceTypeMap.All() {
		model := &Model{DataType: d.Kind}
		switch d.Kind {
		case RefObject:
			model.Properties = propertySchemas(d.Properties)
			model.AdditionalProperties = SchemaOf(d.AdditionalProperties)
		case RefEnum:
			model.Enums = d.Values
		case RefAlias:
			model.Type = SchemaOf(d.Type)
			if model.Type != nil {
				model.Type.Validators = d.Validators
				model.Type.Default = d.Default
			}
		}
		out[d.Name] = model
	}
	return out
}

func propertySchemas(props []*Property) map[string]*Schema {
	out := make(map[string]*Schema, len(props))
	for _, p := range props {
		s := SchemaOf(p.Type)
		if s == nil {
			s = &Schema{DataType: DataTypeAny}
		}
		s.Required = p.Required
		s.Default = p.Default
		if len(p.Validators) > 0 {
			s.Validators = p.Validators
		}
		out[p.Name] = s
	}
	return out
}

// SchemaOf flattens t. References become their name; nil stays nil.
func SchemaOf(t Type) *Schema {
	switch t := t.(type) {
	case nil:
		return nil
	case *PrimitiveType:
		return &Schema{DataType: t.Kind}
	case *ArrayType:
		return &Schema{DataType: DataTypeArray, Array: SchemaOf(t.ElementType)}
	case *UnionType:
		return &Schema{DataType: DataTypeUnion, SubSchemas: schemasOf(t.Types)}
	case *IntersectionType:
		return &Schema{DataType: DataTypeIntersection, SubSchemas: schemasOf(t.Types)}
	case *EnumType:
		return &Schema{DataType: DataTypeEnum, Enums: t.Values}
	case *ObjectLiteralType:
		return &Schema{
			DataType:             DataTypeObjectLiteral,
			NestedProperties:     propertySchemas(t.Properties),
			AdditionalProperties: SchemaOf(t.AdditionalProperties),
		}
	case *ReferenceType:
		return &Schema{Ref: t.Name}
	}
	return nil
}

func schemasOf(ts []Type) []*Schema {
	out := make([]*Schema, len(ts))
	for i, t := range ts {
		out[i] = SchemaOf(t)
	}
	return out
}
