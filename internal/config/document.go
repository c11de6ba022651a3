package config

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/tsgonest/tsmeta/internal/openapi"
)

// DocumentConfig maps the `spec` config block onto OpenAPI document settings.
func (s SpecConfig) DocumentConfig() openapi.DocumentConfig {
	out := openapi.DocumentConfig{
		Title:       s.Title,
		Description: s.Description,
		Version:     s.Version,
		BasePath:    s.BasePath,
		License:     s.License,
	}
	if len(s.SecurityDefinitions) == 0 {
		return out
	}
	out.SecuritySchemes = make(map[string]*openapi3.SecurityScheme, len(s.SecurityDefinitions))
	for name, def := range s.SecurityDefinitions {
		out.SecuritySchemes[name] = def.securityScheme()
	}
	return out
}

func (d SecurityScheme) securityScheme() *openapi3.SecurityScheme {
	out := &openapi3.SecurityScheme{
		Type:         d.Type,
		Description:  d.Description,
		Name:         d.Name,
		In:           d.In,
		Scheme:       d.Scheme,
		BearerFormat: d.BearerFormat,
	}
	if len(d.Flows) == 0 {
		return out
	}
	out.Flows = &openapi3.OAuthFlows{}
	for kind, f := range d.Flows {
		flow := &openapi3.OAuthFlow{
			AuthorizationURL: f.AuthorizationURL,
			TokenURL:         f.TokenURL,
			Scopes:           f.Scopes,
		}
		if flow.Scopes == nil {
			flow.Scopes = map[string]string{}
		}
		switch strings.ToLower(kind) {
		case "implicit":
			out.Flows.Implicit = flow
		case "password":
			out.Flows.Password = flow
		case "clientcredentials":
			out.Flows.ClientCredentials = flow
		case "authorizationcode":
			out.Flows.AuthorizationCode = flow
		}
	}
	return out
}
