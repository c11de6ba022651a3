package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/tsgonest/tsmeta/internal/metadata"
)

func validConfig() *Config {
	return &Config{
		ControllerPathGlobs: []string{"src/**/*.controller.ts"},
		OutputDirectory:     "dist",
		SpecFormat:          "json",
		Spec: SpecConfig{
			Title:    "API",
			BasePath: "/",
			SecurityDefinitions: map[string]SecurityScheme{
				"bearer": {Type: "http", Scheme: "bearer"},
			},
		},
		RootSecurity: []metadata.Security{{"bearer": {}}},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Warnings())
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{
		SpecFormat: "xml",
		Spec: SpecConfig{
			BasePath: "v1",
			SecurityDefinitions: map[string]SecurityScheme{
				"key":    {Type: "apiKey"},
				"broken": {Type: "magic"},
			},
		},
		RootSecurity: []metadata.Security{{"missing": {}}},
	}
	errs := multierr.Errors(cfg.Validate())
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	assert.Equal(t, []string{
		"either entryFile or controllerPathGlobs must be set",
		`specFormat: invalid value "xml", must be json or yaml`,
		"outputDirectory must not be empty",
		`spec.basePath must start with '/', got "v1"`,
		`spec.securityDefinitions.broken.type: invalid value "magic", must be apiKey, http, oauth2 or openIdConnect`,
		"spec.securityDefinitions.key.name is required for apiKey",
		`spec.securityDefinitions.key.in: invalid value "", must be query, header or cookie`,
		`rootSecurity[0]: undefined security scheme "missing"`,
	}, msgs)
}

func TestValidateCompilerPaths(t *testing.T) {
	cfg := validConfig()
	cfg.CompilerOptions.Paths = map[string][]string{
		"@app/*/*": {"src/*"},
		"@empty":   {},
	}
	errs := multierr.Errors(cfg.Validate())
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], `compilerOptions.paths: pattern "@app/*/*" can have at most one '*'`)
	assert.EqualError(t, errs[1], "compilerOptions.paths.@empty: at least one target is required")
}

func TestSchemeIgnoresCase(t *testing.T) {
	spec := SpecConfig{SecurityDefinitions: map[string]SecurityScheme{"bearerauth": {Type: "http", Scheme: "bearer"}}}
	name, ok := spec.Scheme("bearerAuth")
	require.True(t, ok)
	assert.Equal(t, "bearerauth", name)

	_, ok = spec.Scheme("other")
	assert.False(t, ok)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.EntryFile = "src/index.ts"
	cfg.ControllerPathGlobs = []string{"src/controllers"}
	cfg.Spec.Title = ""

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], `did you mean "src/controllers/**/*.controller.ts"?`)
	assert.Contains(t, warnings[1], "controllerPathGlobs is ignored")
	assert.Contains(t, warnings[2], "spec.title is empty")
}

func TestDocumentConfig(t *testing.T) {
	spec := SpecConfig{
		Title:    "Widgets",
		Version:  "2.0.0",
		BasePath: "/v2",
		License:  "MIT",
		SecurityDefinitions: map[string]SecurityScheme{
			"key": {Type: "apiKey", Name: "x-key", In: "header"},
			"oauth": {Type: "oauth2", Flows: map[string]OAuth2{
				"clientCredentials": {TokenURL: "https://auth.example.com/token", Scopes: map[string]string{"read": "Read access"}},
			}},
		},
	}
	doc := spec.DocumentConfig()
	assert.Equal(t, "Widgets", doc.Title)
	assert.Equal(t, "/v2", doc.BasePath)
	assert.Equal(t, "MIT", doc.License)
	require.Len(t, doc.SecuritySchemes, 2)
	assert.Equal(t, "x-key", doc.SecuritySchemes["key"].Name)

	flows := doc.SecuritySchemes["oauth"].Flows
	require.NotNil(t, flows)
	require.NotNil(t, flows.ClientCredentials)
	assert.Equal(t, "https://auth.example.com/token", flows.ClientCredentials.TokenURL)
	assert.Equal(t, map[string]string{"read": "Read access"}, flows.ClientCredentials.Scopes)
}
