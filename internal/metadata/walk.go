package metadata

// WalkType calls fn for t and every type nested in it, depth first. It does
// not follow references. Returning false from fn prunes the subtree.
func WalkType(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t := t.(type) {
	case *ArrayType:
		WalkType(t.ElementType, fn)
	case *UnionType:
		for _, m := range t.Types {
			WalkType(m, fn)
		}
	case *IntersectionType:
		for _, m := range t.Types {
			WalkType(m, fn)
		}
	case *ObjectLiteralType:
		for _, p := range t.Properties {
			WalkType(p.Type, fn)
		}
		WalkType(t.AdditionalProperties, fn)
	}
}

// Walk visits the types a definition is made of.
func Walk(d *ReferenceDefinition, fn func(Type) bool) {
	for _, p := range d.Properties {
		WalkType(p.Type, fn)
	}
	WalkType(d.AdditionalProperties, fn)
	WalkType(d.Type, fn)
}

// WalkMetadata visits every type held by controllers and the reference map.
func WalkMetadata(m *Metadata, fn func(Type) bool) {
	for _, c := range m.Controllers {
		for _, meth := range c.Methods {
			WalkType(meth.ReturnType, fn)
			for _, p := range meth.Parameters {
				WalkType(p.Type, fn)
				WalkType(p.Headers, fn)
			}
			for _, r := range meth.Responses {
				WalkType(r.Schema, fn)
				WalkType(r.Headers, fn)
			}
		}
	}
	if m.ReferenceTypeMap != nil {
		for _, d := range m.ReferenceTypeMap.All() {
			Walk(d, fn)
		}
	}
}
