package analyzer

import (
	"strconv"
	"strings"

	json "github.com/go-json-experiment/json"

	"github.com/tsgonest/tsmeta/internal/ast"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// Validator tags, grouped by the kind of value their first word carries.
var (
	numericValidators = map[string]bool{
		"minimum": true, "maximum": true,
		"minLength": true, "maxLength": true,
		"minItems": true, "maxItems": true,
	}
	textValidators = map[string]bool{
		"pattern": true, "minDate": true, "maxDate": true,
	}
	flagValidators = map[string]bool{
		"isInt": true, "isLong": true, "isFloat": true, "isDouble": true,
		"isDate": true, "isDateTime": true, "isString": true, "isBoolean": true,
		"isNumber": true, "isArray": true, "uniqueItems": true,
	}
)

func isValidatorTag(name string) bool {
	return numericValidators[name] || textValidators[name] || flagValidators[name]
}

// numberKind narrows `number` from the narrowing tags on doc.
func numberKind(doc *ast.JSDoc) metadata.DataType {
	switch {
	case doc.HasTag("isInt"):
		return metadata.DataTypeInteger
	case doc.HasTag("isLong"):
		return metadata.DataTypeLong
	case doc.HasTag("isFloat"):
		return metadata.DataTypeFloat
	}
	return metadata.DataTypeDouble
}

// dateKind narrows Date from the narrowing tags on doc.
func dateKind(doc *ast.JSDoc) metadata.DataType {
	if doc.HasTag("isDate") {
		return metadata.DataTypeDate
	}
	return metadata.DataTypeDateTime
}

func description(doc *ast.JSDoc) string {
	if doc == nil {
		return ""
	}
	if t := doc.Tag("description"); t != nil && t.Text != "" {
		return t.Text
	}
	return doc.Description
}

func tagText(doc *ast.JSDoc, name string) string {
	if t := doc.Tag(name); t != nil {
		return strings.TrimSpace(t.Text)
	}
	return ""
}

func isDeprecated(doc *ast.JSDoc, decorators []*ast.Decorator) bool {
	return doc.HasTag("deprecated") || ast.FindDecorator(decorators, "Deprecated") != nil
}

func isIgnored(doc *ast.JSDoc) bool {
	return doc.HasTag("ignore")
}

// literalValue decodes a JSDoc value as JSON, falling back to the raw text.
func literalValue(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}
	return text
}

// examples collects every @example tag of doc.
func examples(doc *ast.JSDoc) []any {
	if doc == nil {
		return nil
	}
	var out []any
	for _, t := range doc.TagsNamed("example") {
		if v := literalValue(t.Text); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// extensions reads `@extension x-key value` tags and @Extension decorators.
func extensions(doc *ast.JSDoc, decorators []*ast.Decorator) []metadata.Extension {
	var out []metadata.Extension
	if doc != nil {
		for _, t := range doc.TagsNamed("extension") {
			key, rest, _ := strings.Cut(strings.TrimSpace(t.Text), " ")
			if !strings.HasPrefix(key, "x-") {
				continue
			}
			out = append(out, metadata.Extension{Key: key, Value: literalValue(rest)})
		}
	}
	for _, d := range ast.DecoratorsNamed(decorators, "Extension") {
		key, ok := d.Arg(0).StringValue()
		if !ok {
			continue
		}
		var value any
		if v := d.Arg(1); v != nil {
			value = v.Value()
		}
		out = append(out, metadata.Extension{Key: key, Value: value})
	}
	return out
}

// paramDescription finds the @param description for name. The
// `@param {type} name text` form is accepted.
func paramDescription(doc *ast.JSDoc, name string) string {
	if doc == nil {
		return ""
	}
	for _, t := range doc.TagsNamed("param") {
		text := strings.TrimSpace(t.Text)
		if strings.HasPrefix(text, "{") {
			if i := strings.IndexByte(text, '}'); i >= 0 {
				text = strings.TrimSpace(text[i+1:])
			}
		}
		head, rest, _ := strings.Cut(text, " ")
		if strings.Trim(head, "[]") == name {
			return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "- "))
		}
	}
	return ""
}

// validators reads the validator tags of a declaration's JSDoc.
func (s *Session) validators(doc *ast.JSDoc, pos ast.Pos) metadata.Validators {
	out := metadata.Validators{}
	if doc == nil {
		return out
	}
	for _, t := range doc.Tags {
		if !isValidatorTag(t.Name) {
			continue
		}
		if v, ok := s.validator(t.Name, t.Text, pos); ok {
			out[t.Name] = v
		}
	}
	return out
}

// paramValidators reads method JSDoc validator tags whose first word names
// the parameter, as in `@minimum limit 1 limit must be positive`.
func (s *Session) paramValidators(doc *ast.JSDoc, param string, pos ast.Pos) metadata.Validators {
	out := metadata.Validators{}
	if doc == nil {
		return out
	}
	for _, t := range doc.Tags {
		if !isValidatorTag(t.Name) {
			continue
		}
		head, rest, _ := strings.Cut(strings.TrimSpace(t.Text), " ")
		if head != param {
			continue
		}
		if v, ok := s.validator(t.Name, rest, pos); ok {
			out[t.Name] = v
		}
	}
	return out
}

func (s *Session) validator(name, text string, pos ast.Pos) (metadata.Validator, bool) {
	text = strings.TrimSpace(text)
	if flagValidators[name] {
		return metadata.Validator{ErrorMessage: text}, true
	}
	value, msg, _ := strings.Cut(text, " ")
	if value == "" {
		s.warn(diagnostic.CategoryConstraintInvalid, pos, "@%s requires a value", name)
		return metadata.Validator{}, false
	}
	v := metadata.Validator{ErrorMessage: strings.TrimSpace(msg)}
	if textValidators[name] {
		v.Value = value
		return v, true
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		s.warn(diagnostic.CategoryConstraintInvalid, pos, "@%s expects a number, got %q", name, value)
		return metadata.Validator{}, false
	}
	v.Value = n
	return v, true
}
