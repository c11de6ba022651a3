// Package openapi projects analyzer metadata into an OpenAPI 3 document.
package openapi

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// DocumentConfig holds document-level settings.
type DocumentConfig struct {
	Title           string
	Description     string
	Version         string
	BasePath        string
	License         string
	SecuritySchemes map[string]*openapi3.SecurityScheme
}

// Generator creates OpenAPI documents from analysis results.
type Generator struct {
	cfg DocumentConfig
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(cfg DocumentConfig) *Generator {
	if cfg.Title == "" {
		cfg.Title = "API"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return &Generator{cfg: cfg}
}

// Generate builds the document for md. Hidden methods are left out.
func (g *Generator) Generate(md *metadata.Metadata) *openapi3.T {
	schemas := NewSchemaGenerator(md.ReferenceTypeMap)
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       g.cfg.Title,
			Description: g.cfg.Description,
			Version:     g.cfg.Version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{},
	}
	if g.cfg.License != "" {
		doc.Info.License = &openapi3.License{Name: g.cfg.License}
	}
	if base := g.cfg.BasePath; base != "" {
		doc.Servers = openapi3.Servers{{URL: base}}
	}

	tagSet := make(map[string]bool)
	for _, c := range md.Controllers {
		for _, m := range c.Methods {
			if m.Hidden {
				continue
			}
			path := openapiPath(analyzer.CombinePaths(c.Path, m.Path))
			item := doc.Paths.Value(path)
			if item == nil {
				item = &openapi3.PathItem{}
				doc.Paths.Set(path, item)
			}
			item.SetOperation(strings.ToUpper(m.Verb), g.operation(schemas, m))
			for _, tag := range m.Tags {
				tagSet[tag] = true
			}
		}
	}

	for _, def := range md.ReferenceTypeMap.All() {
		if !def.Placeholder {
			schemas.component(def)
		}
	}
	if len(schemas.Components()) > 0 {
		doc.Components.Schemas = schemas.Components()
	}
	if len(g.cfg.SecuritySchemes) > 0 {
		doc.Components.SecuritySchemes = openapi3.SecuritySchemes{}
		for name, s := range g.cfg.SecuritySchemes {
			doc.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{Value: s}
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: tag})
	}
	return doc
}

var colonSegment = regexp.MustCompile(`/:([^/]+)`)

// openapiPath converts :name segments to {name}.
func openapiPath(p string) string {
	return colonSegment.ReplaceAllString(p, "/{$1}")
}

func (g *Generator) operation(schemas *SchemaGenerator, m *metadata.Method) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: m.OperationID,
		Summary:     m.Summary,
		Description: m.Description,
		Tags:        m.Tags,
		Deprecated:  m.Deprecated,
		Responses:   openapi3.NewResponsesWithCapacity(len(m.Responses)),
	}

	reqs := make(openapi3.SecurityRequirements, 0, len(m.Security))
	for _, sec := range m.Security {
		req := openapi3.SecurityRequirement{}
		for name, scopes := range sec {
			if scopes == nil {
				scopes = []string{}
			}
			req[g.schemeName(name)] = scopes
		}
		reqs = append(reqs, req)
	}
	op.Security = &reqs

	for _, e := range m.Extensions {
		if op.Extensions == nil {
			op.Extensions = map[string]any{}
		}
		op.Extensions[e.Key] = e.Value
	}

	g.parameters(schemas, op, m)
	for _, r := range m.Responses {
		op.Responses.Set(r.Status, &openapi3.ResponseRef{Value: g.response(schemas, m, r)})
	}
	return op
}

// schemeName maps a requirement onto the configured scheme of the same
// name, ignoring case.
func (g *Generator) schemeName(name string) string {
	if _, ok := g.cfg.SecuritySchemes[name]; ok {
		return name
	}
	for key := range g.cfg.SecuritySchemes {
		if strings.EqualFold(key, name) {
			return key
		}
	}
	return name
}

func (g *Generator) parameters(schemas *SchemaGenerator, op *openapi3.Operation, m *metadata.Method) {
	var (
		bodyProps *openapi3.Schema
		formProps *openapi3.Schema
	)
	for _, p := range m.Parameters {
		switch p.In {
		case metadata.InPath, metadata.InQuery, metadata.InHeader:
			op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: g.parameter(schemas, p)})
		case metadata.InQueries:
			for _, prop := range g.queryProperties(schemas, p.Type) {
				op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: g.parameter(schemas, &metadata.Parameter{
					In:          metadata.InQuery,
					Name:        prop.Name,
					Required:    prop.Required,
					Type:        prop.Type,
					Default:     prop.Default,
					Validators:  prop.Validators,
					Description: prop.Description,
					Deprecated:  prop.Deprecated,
				})})
			}
		case metadata.InBody:
			op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
				Description: p.Description,
				Required:    p.Required,
				Content:     g.content(consumes(m, "application/json"), schemas.SchemaRef(p.Type), p.Examples, p.ExampleLabels),
			}}
		case metadata.InBodyProp:
			if bodyProps == nil {
				bodyProps = &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
			}
			addField(schemas, bodyProps, p)
		case metadata.InFormData:
			if formProps == nil {
				formProps = &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
			}
			addField(schemas, formProps, p)
		}
	}
	if bodyProps != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
			Required: len(bodyProps.Required) > 0,
			Content:  g.content(consumes(m, "application/json"), openapi3.NewSchemaRef("", bodyProps), nil, nil),
		}}
	}
	if formProps != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
			Required: len(formProps.Required) > 0,
			Content:  g.content(consumes(m, "multipart/form-data"), openapi3.NewSchemaRef("", formProps), nil, nil),
		}}
	}
}

func consumes(m *metadata.Method, fallback string) []string {
	if m.Consumes != "" {
		return []string{m.Consumes}
	}
	return []string{fallback}
}

func addField(schemas *SchemaGenerator, obj *openapi3.Schema, p *metadata.Parameter) {
	obj.Properties[p.Name] = schemas.property(&metadata.Property{
		Name:        p.Name,
		Type:        p.Type,
		Required:    p.Required,
		Default:     p.Default,
		Description: p.Description,
		Deprecated:  p.Deprecated,
		Validators:  p.Validators,
	})
	if p.Required {
		obj.Required = append(obj.Required, p.Name)
	}
}

func (g *Generator) parameter(schemas *SchemaGenerator, p *metadata.Parameter) *openapi3.Parameter {
	out := &openapi3.Parameter{
		Name:        p.Name,
		In:          string(p.In),
		Description: p.Description,
		Required:    p.Required || p.In == metadata.InPath,
		Deprecated:  p.Deprecated,
		Schema: schemas.property(&metadata.Property{
			Name:       p.Name,
			Type:       p.Type,
			Default:    p.Default,
			Validators: p.Validators,
		}),
	}
	if len(p.Examples) > 0 {
		out.Example = p.Examples[0]
	}
	if _, ok := p.Type.(*metadata.ArrayType); ok && p.In == metadata.InQuery {
		explode := true
		out.Style = openapi3.SerializationForm
		out.Explode = &explode
	}
	return out
}

// queryProperties lists the properties of a @Queries object.
func (g *Generator) queryProperties(schemas *SchemaGenerator, t metadata.Type) []*metadata.Property {
	switch t := t.(type) {
	case *metadata.ObjectLiteralType:
		return t.Properties
	case *metadata.ReferenceType:
		if def := schemas.refs.Deref(t); def != nil {
			if def.Kind == metadata.RefAlias {
				return g.queryProperties(schemas, def.Type)
			}
			return def.Properties
		}
	}
	return nil
}

func (g *Generator) response(schemas *SchemaGenerator, m *metadata.Method, r *metadata.Response) *openapi3.Response {
	resp := openapi3.NewResponse().WithDescription(r.Description)
	if schema := schemas.SchemaRef(r.Schema); schema != nil {
		produces := r.Produces
		if len(produces) == 0 {
			produces = m.Produces
		}
		if len(produces) == 0 {
			produces = []string{"application/json"}
		}
		resp.Content = g.content(produces, schema, r.Examples, r.ExampleLabels)
	}
	if r.Headers != nil {
		resp.Headers = openapi3.Headers{}
		for _, prop := range g.queryProperties(schemas, r.Headers) {
			resp.Headers[prop.Name] = &openapi3.HeaderRef{Value: &openapi3.Header{Parameter: openapi3.Parameter{
				Description: prop.Description,
				Required:    prop.Required,
				Schema:      schemas.SchemaRef(prop.Type),
			}}}
		}
	}
	return resp
}

// content renders schema under every media type. A single unlabeled
// example becomes `example`; otherwise examples are keyed by label.
func (g *Generator) content(mediaTypes []string, schema *openapi3.SchemaRef, examples []any, labels []string) openapi3.Content {
	content := openapi3.Content{}
	for _, mt := range mediaTypes {
		media := &openapi3.MediaType{Schema: schema}
		switch {
		case len(examples) == 1 && (len(labels) == 0 || labels[0] == ""):
			media.Example = examples[0]
		case len(examples) > 0:
			media.Examples = openapi3.Examples{}
			for i, ex := range examples {
				label := "Example " + strconv.Itoa(i+1)
				if i < len(labels) && labels[i] != "" {
					label = labels[i]
				}
				media.Examples[label] = &openapi3.ExampleRef{Value: openapi3.NewExample(ex)}
			}
		}
		content[mt] = media
	}
	return content
}

// Encode renders doc as indented JSON or as YAML.
func Encode(doc *openapi3.T, format metadata.Format) ([]byte, error) {
	data, err := json.Marshal(doc, jsontext.WithIndent("  "))
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	switch format {
	case metadata.FormatJSON, "":
		return append(data, '\n'), nil
	case metadata.FormatYAML:
		return metadata.JSONToYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
