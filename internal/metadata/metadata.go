// Package metadata defines the normalized, language-neutral model produced
// by the analyzer: controllers, methods, parameters, responses, and the
// named reference types they point at.
package metadata

// Metadata is the result of one analysis run.
type Metadata struct {
	Controllers []*Controller `json:"controllers"`

	// ReferenceTypeMap holds every named type the controllers refer to.
	ReferenceTypeMap *ReferenceTypeMap `json:"referenceTypeMap"`
}

// Controller is a class annotated as an API controller.
type Controller struct {
	// Location is the source file path the controller was declared in.
	Location    string    `json:"location"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Methods     []*Method `json:"methods"`
	Produces    []string  `json:"produces,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Method is one endpoint.
type Method struct {
	Name        string       `json:"name"`
	Verb        string       `json:"method"`
	Path        string       `json:"path"`
	OperationID string       `json:"operationId,omitempty"`
	Parameters  []*Parameter `json:"parameters"`
	Responses   []*Response  `json:"responses"`
	// SuccessStatus is set by @SuccessResponse; empty means the default.
	SuccessStatus string `json:"successStatus,omitempty"`
	// ReturnType is the resolved return type with Promise unwrapped.
	ReturnType  Type        `json:"type"`
	Deprecated  bool        `json:"deprecated,omitempty"`
	Hidden      bool        `json:"isHidden,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Security    []Security  `json:"security"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Consumes    string      `json:"consumes,omitempty"`
	Produces    []string    `json:"produces,omitempty"`
	Extensions  []Extension `json:"extensions,omitempty"`
}

// QualifiedName returns Controller.method style naming for errors.
func QualifiedName(controller, method string) string {
	return controller + "." + method
}

// ParameterSource is where a parameter's value is bound from.
type ParameterSource string

const (
	InPath        ParameterSource = "path"
	InQuery       ParameterSource = "query"
	InQueries     ParameterSource = "queries"
	InHeader      ParameterSource = "header"
	InBody        ParameterSource = "body"
	InBodyProp    ParameterSource = "body-prop"
	InFormData    ParameterSource = "formData"
	InRequest     ParameterSource = "request"
	InRequestProp ParameterSource = "request-prop"
	InRes         ParameterSource = "res"
)

// Parameter is one bound input of a method.
type Parameter struct {
	In ParameterSource `json:"in"`
	// Name is the wire name; ParameterName the local identifier.
	Name          string     `json:"name"`
	ParameterName string     `json:"parameterName"`
	Required      bool       `json:"required"`
	Default       any        `json:"default,omitempty"`
	Type          Type       `json:"type"`
	Validators    Validators `json:"validators"`
	Examples      []any      `json:"example,omitempty"`
	ExampleLabels []string   `json:"exampleLabels,omitempty"`
	Description   string     `json:"description,omitempty"`
	Deprecated    bool       `json:"deprecated,omitempty"`
	// CollectionFormat is "multi" for query arrays.
	CollectionFormat string `json:"collectionFormat,omitempty"`
	// Headers is the header shape of a res parameter.
	Headers Type `json:"headers,omitempty"`
	// Status is the response status code of a res parameter.
	Status string `json:"status,omitempty"`
}

// Response documents one status code of a method.
type Response struct {
	Status        string   `json:"name"`
	Description   string   `json:"description"`
	Schema        Type     `json:"schema,omitempty"`
	Examples      []any    `json:"examples,omitempty"`
	ExampleLabels []string `json:"exampleLabels,omitempty"`
	Produces      []string `json:"produces,omitempty"`
	Headers       Type     `json:"headers,omitempty"`
}

// Property is a member of an object type.
type Property struct {
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Required    bool        `json:"required"`
	Default     any         `json:"default,omitempty"`
	Example     any         `json:"example,omitempty"`
	Format      string      `json:"format,omitempty"`
	Description string      `json:"description,omitempty"`
	Deprecated  bool        `json:"deprecated,omitempty"`
	Title       string      `json:"title,omitempty"`
	Validators  Validators  `json:"validators"`
	Extensions  []Extension `json:"extensions,omitempty"`
}

// Validator is a constraint value with an optional custom error message.
type Validator struct {
	Value        any    `json:"value,omitempty"`
	ErrorMessage string `json:"errorMsg,omitempty"`
}

// Validators maps a validator name (minLength, isInt, ...) to its setting.
type Validators map[string]Validator

// Extension is an `x-` vendor extension.
type Extension struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Security is one security requirement: scheme name → scopes.
type Security map[string][]string
