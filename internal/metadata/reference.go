package metadata

import (
	"fmt"
	"sort"

	json "github.com/go-json-experiment/json"
)

// ReferenceID indexes a slot of the ReferenceTypeMap arena.
type ReferenceID int

// RefKind is the kind of a named reference type.
type RefKind string

const (
	RefObject RefKind = "refObject"
	RefEnum   RefKind = "refEnum"
	RefAlias  RefKind = "refAlias"
)

// ReferenceDefinition is one named type. Which fields are meaningful
// depends on Kind.
type ReferenceDefinition struct {
	ID   ReferenceID
	Name string
	Kind RefKind

	Description string
	Deprecated  bool
	Example     any
	Title       string

	// Properties and AdditionalProperties are set for RefObject.
	Properties           []*Property
	AdditionalProperties Type

	// Values and VarNames are set for RefEnum.
	Values   []any
	VarNames []string

	// Type, Format, Validators and Default are set for RefAlias.
	Type       Type
	Format     string
	Validators Validators
	Default    any

	// Placeholder is true while the slot is reserved but not yet resolved.
	Placeholder bool
}

// ReferenceTypeMap is an arena of named types. Slots are reserved before
// resolution so that circular references can point at them, then patched
// in place once the definition is known.
type ReferenceTypeMap struct {
	defs   []*ReferenceDefinition
	byName map[string]ReferenceID
}

// NewReferenceTypeMap creates an empty map.
func NewReferenceTypeMap() *ReferenceTypeMap {
	return &ReferenceTypeMap{byName: make(map[string]ReferenceID)}
}

// Reserve allocates a placeholder slot for name, or returns the existing
// slot when the name is already known.
func (m *ReferenceTypeMap) Reserve(name string) ReferenceID {
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := ReferenceID(len(m.defs))
	m.defs = append(m.defs, &ReferenceDefinition{ID: id, Name: name, Kind: RefObject, Placeholder: true})
	m.byName[name] = id
	return id
}

// Define fills the slot id. The stored definition keeps the slot's ID and name.
func (m *ReferenceTypeMap) Define(id ReferenceID, def ReferenceDefinition) {
	slot := m.defs[id]
	def.ID = slot.ID
	def.Name = slot.Name
	def.Placeholder = false
	*slot = def
}

// Get returns the definition in slot id.
func (m *ReferenceTypeMap) Get(id ReferenceID) *ReferenceDefinition {
	if id < 0 || int(id) >= len(m.defs) {
		return nil
	}
	return m.defs[id]
}

// Lookup finds a definition by name.
func (m *ReferenceTypeMap) Lookup(name string) (*ReferenceDefinition, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.defs[id], true
}

// Ref returns a ReferenceType pointing at slot id.
func (m *ReferenceTypeMap) Ref(id ReferenceID) *ReferenceType {
	return &ReferenceType{ID: id, Name: m.defs[id].Name}
}

// Deref returns the definition a reference points at.
func (m *ReferenceTypeMap) Deref(t *ReferenceType) *ReferenceDefinition {
	return m.Get(t.ID)
}

// Len returns the number of slots.
func (m *ReferenceTypeMap) Len() int { return len(m.defs) }

// All returns the definitions in allocation order.
func (m *ReferenceTypeMap) All() []*ReferenceDefinition {
	return m.defs
}

// Names returns the defined names in sorted order.
func (m *ReferenceTypeMap) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Placeholders returns the names of slots that were never defined.
func (m *ReferenceTypeMap) Placeholders() []string {
	var out []string
	for _, d := range m.defs {
		if d.Placeholder {
			out = append(out, d.Name)
		}
	}
	return out
}

// Validate checks that every slot is defined and every reference reachable
// from a definition points at a valid slot.
func (m *ReferenceTypeMap) Validate() error {
	if ph := m.Placeholders(); len(ph) > 0 {
		return fmt.Errorf("unresolved reference types: %v", ph)
	}
	for _, d := range m.defs {
		var err error
		Walk(d, func(t Type) bool {
			if r, ok := t.(*ReferenceType); ok && m.Get(r.ID) == nil {
				err = fmt.Errorf("reference %q in %s points at missing slot %d", r.Name, d.Name, r.ID)
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *ReferenceDefinition) MarshalJSON() ([]byte, error) {
	out := struct {
		DataType             RefKind     `json:"dataType"`
		RefName              string      `json:"refName"`
		Description          string      `json:"description,omitempty"`
		Deprecated           bool        `json:"deprecated,omitempty"`
		Example              any         `json:"example,omitempty"`
		Title                string      `json:"title,omitempty"`
		Properties           []*Property `json:"properties,omitempty"`
		AdditionalProperties Type        `json:"additionalProperties,omitempty"`
		Enums                []any       `json:"enums,omitempty"`
		EnumVarnames         []string    `json:"enumVarnames,omitempty"`
		Type                 Type        `json:"type,omitempty"`
		Format               string      `json:"format,omitempty"`
		Validators           Validators  `json:"validators,omitempty"`
		Default              any         `json:"default,omitempty"`
	}{
		DataType:     d.Kind,
		RefName:      d.Name,
		Description:  d.Description,
		Deprecated:   d.Deprecated,
		Example:      d.Example,
		Title:        d.Title,
		Enums:        d.Values,
		EnumVarnames: d.VarNames,
		Type:         d.Type,
		Format:       d.Format,
		Validators:   d.Validators,
		Default:      d.Default,
	}
	if d.Kind == RefObject {
		out.Properties = d.Properties
		if out.Properties == nil {
			out.Properties = []*Property{}
		}
		out.AdditionalProperties = d.AdditionalProperties
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the map as a name-keyed object.
func (m *ReferenceTypeMap) MarshalJSON() ([]byte, error) {
	byName := make(map[string]*ReferenceDefinition, len(m.defs))
	for _, d := range m.defs {
		byName[d.Name] = d
	}
	return json.Marshal(byName, json.Deterministic(true))
}
