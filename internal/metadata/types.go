package metadata

import (
	json "github.com/go-json-experiment/json"
)

// DataType names the variant of a Type, and the primitive kind of a
// PrimitiveType.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeBoolean  DataType = "boolean"
	DataTypeInteger  DataType = "integer"
	DataTypeLong     DataType = "long"
	DataTypeFloat    DataType = "float"
	DataTypeDouble   DataType = "double"
	DataTypeDate     DataType = "date"
	DataTypeDateTime DataType = "datetime"
	DataTypeBuffer   DataType = "buffer"
	DataTypeFile     DataType = "file"
	DataTypeAny      DataType = "any"
	DataTypeVoid     DataType = "void"
	DataTypeUndef    DataType = "undefined"

	DataTypeArray         DataType = "array"
	DataTypeUnion         DataType = "union"
	DataTypeIntersection  DataType = "intersection"
	DataTypeEnum          DataType = "enum"
	DataTypeObjectLiteral DataType = "nestedObjectLiteral"
	DataTypeReference     DataType = "reference"
)

// IsPrimitive reports whether d is one of the primitive kinds.
func (d DataType) IsPrimitive() bool {
	switch d {
	case DataTypeString, DataTypeBoolean, DataTypeInteger, DataTypeLong, DataTypeFloat,
		DataTypeDouble, DataTypeDate, DataTypeDateTime, DataTypeBuffer, DataTypeFile,
		DataTypeAny, DataTypeVoid, DataTypeUndef:
		return true
	}
	return false
}

// Type is a resolved type. The implementations are exactly the types in
// this file.
type Type interface {
	DataType() DataType
	isType()
}

// PrimitiveType is a scalar.
type PrimitiveType struct {
	Kind DataType
}

// ArrayType is a homogeneous list.
type ArrayType struct {
	ElementType Type
}

// UnionType is one of several types.
type UnionType struct {
	Types []Type
}

// IntersectionType is all of several types.
type IntersectionType struct {
	Types []Type
}

// EnumType is a finite set of literal values (string, float64, bool or nil).
type EnumType struct {
	Values []any
}

// ObjectLiteralType is an inline object shape. A nil AdditionalProperties
// means no index signature was declared.
type ObjectLiteralType struct {
	Properties           []*Property
	AdditionalProperties Type
}

// ReferenceType points at an entry of the ReferenceTypeMap.
type ReferenceType struct {
	ID   ReferenceID
	Name string
}

func (t *PrimitiveType) DataType() DataType   { return t.Kind }
func (*ArrayType) DataType() DataType         { return DataTypeArray }
func (*UnionType) DataType() DataType         { return DataTypeUnion }
func (*IntersectionType) DataType() DataType  { return DataTypeIntersection }
func (*EnumType) DataType() DataType          { return DataTypeEnum }
func (*ObjectLiteralType) DataType() DataType { return DataTypeObjectLiteral }
func (*ReferenceType) DataType() DataType     { return DataTypeReference }

func (*PrimitiveType) isType()     {}
func (*ArrayType) isType()         {}
func (*UnionType) isType()         {}
func (*IntersectionType) isType()  {}
func (*EnumType) isType()          {}
func (*ObjectLiteralType) isType() {}
func (*ReferenceType) isType()     {}

// Primitive returns the primitive type of the given kind.
func Primitive(kind DataType) *PrimitiveType {
	return &PrimitiveType{Kind: kind}
}

// Any is the unconstrained type.
func Any() *PrimitiveType { return Primitive(DataTypeAny) }

// Void is the absent result of a method.
func Void() *PrimitiveType { return Primitive(DataTypeVoid) }

// IsVoid reports whether t is void, undefined, or a union of only those.
func IsVoid(t Type) bool {
	switch t := t.(type) {
	case *PrimitiveType:
		return t.Kind == DataTypeVoid || t.Kind == DataTypeUndef
	case *UnionType:
		for _, m := range t.Types {
			if !IsVoid(m) {
				return false
			}
		}
		return len(t.Types) > 0
	}
	return false
}

func (t *PrimitiveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType DataType `json:"dataType"`
	}{t.Kind})
}

func (t *ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType    DataType `json:"dataType"`
		ElementType Type     `json:"elementType"`
	}{DataTypeArray, t.ElementType})
}

func (t *UnionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType DataType `json:"dataType"`
		Types    []Type   `json:"types"`
	}{DataTypeUnion, t.Types})
}

func (t *IntersectionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType DataType `json:"dataType"`
		Types    []Type   `json:"types"`
	}{DataTypeIntersection, t.Types})
}

func (t *EnumType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType DataType `json:"dataType"`
		Enums    []any    `json:"enums"`
	}{DataTypeEnum, t.Values})
}

func (t *ObjectLiteralType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType             DataType    `json:"dataType"`
		Properties           []*Property `json:"properties"`
		AdditionalProperties Type        `json:"additionalProperties,omitempty"`
	}{DataTypeObjectLiteral, t.Properties, t.AdditionalProperties})
}

func (t *ReferenceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DataType DataType `json:"dataType"`
		RefName  string   `json:"refName"`
	}{DataTypeReference, t.Name})
}
