package ast

// ExprKind classifies an Expr.
type ExprKind int

const (
	ExprOther ExprKind = iota
	ExprString
	ExprNumber
	ExprBoolean
	ExprNull
	ExprUndefined
	ExprArray
	ExprObject
	ExprIdentifier
)

// Expr is a value expression as far as the analysis needs one: decorator
// arguments and initializers. Anything that is not a literal, array, object
// or (dotted) identifier is ExprOther with its source text.
type Expr struct {
	Node
	Kind     ExprKind
	Text     string
	Str      string
	Num      float64
	Bool     bool
	Elements []*Expr
	Fields   []*ObjectField
}

// ObjectField is one `key: value` pair of an object expression.
type ObjectField struct {
	Key   string
	Value *Expr
}

// StringValue returns the string literal value.
func (e *Expr) StringValue() (string, bool) {
	if e == nil || e.Kind != ExprString {
		return "", false
	}
	return e.Str, true
}

// NumberValue returns the numeric literal value.
func (e *Expr) NumberValue() (float64, bool) {
	if e == nil || e.Kind != ExprNumber {
		return 0, false
	}
	return e.Num, true
}

// Field returns the value of an object field, or nil.
func (e *Expr) Field(key string) *Expr {
	if e == nil || e.Kind != ExprObject {
		return nil
	}
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Value converts the expression to a plain Go value: string, float64, bool,
// nil, []any or map[string]any. Identifiers and other expressions yield
// their source text.
func (e *Expr) Value() any {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprString:
		return e.Str
	case ExprNumber:
		return e.Num
	case ExprBoolean:
		return e.Bool
	case ExprNull, ExprUndefined:
		return nil
	case ExprArray:
		out := make([]any, 0, len(e.Elements))
		for _, el := range e.Elements {
			out = append(out, el.Value())
		}
		return out
	case ExprObject:
		out := make(map[string]any, len(e.Fields))
		for _, f := range e.Fields {
			out[f.Key] = f.Value.Value()
		}
		return out
	}
	return e.Text
}

// Strings returns the string elements of an array expression, or the single
// string of a string expression.
func (e *Expr) Strings() []string {
	if e == nil {
		return nil
	}
	if s, ok := e.StringValue(); ok {
		return []string{s}
	}
	var out []string
	if e.Kind == ExprArray {
		for _, el := range e.Elements {
			if s, ok := el.StringValue(); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
