package config

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var schemeTypes = map[string]bool{"apiKey": true, "http": true, "oauth2": true, "openIdConnect": true}

// Validate checks the config for logical errors and reports all of them.
func (c *Config) Validate() error {
	var err error
	if c.EntryFile == "" && len(c.ControllerPathGlobs) == 0 {
		err = multierr.Append(err, fmt.Errorf("either entryFile or controllerPathGlobs must be set"))
	}
	for _, g := range c.ControllerPathGlobs {
		if strings.TrimSpace(g) == "" {
			err = multierr.Append(err, fmt.Errorf("controllerPathGlobs: empty pattern"))
		}
	}
	switch c.SpecFormat {
	case "json", "yaml":
	default:
		err = multierr.Append(err, fmt.Errorf("specFormat: invalid value %q, must be json or yaml", c.SpecFormat))
	}
	if c.OutputDirectory == "" {
		err = multierr.Append(err, fmt.Errorf("outputDirectory must not be empty"))
	}
	if c.Spec.BasePath != "" && !strings.HasPrefix(c.Spec.BasePath, "/") {
		err = multierr.Append(err, fmt.Errorf("spec.basePath must start with '/', got %q", c.Spec.BasePath))
	}

	names := make([]string, 0, len(c.Spec.SecurityDefinitions))
	for name := range c.Spec.SecurityDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		err = multierr.Append(err, c.Spec.SecurityDefinitions[name].validate(name))
	}

	aliases := make([]string, 0, len(c.CompilerOptions.Paths))
	for pattern := range c.CompilerOptions.Paths {
		aliases = append(aliases, pattern)
	}
	sort.Strings(aliases)
	for _, pattern := range aliases {
		if strings.Count(pattern, "*") > 1 {
			err = multierr.Append(err, fmt.Errorf("compilerOptions.paths: pattern %q can have at most one '*'", pattern))
		}
		if len(c.CompilerOptions.Paths[pattern]) == 0 {
			err = multierr.Append(err, fmt.Errorf("compilerOptions.paths.%s: at least one target is required", pattern))
		}
	}

	for i, req := range c.RootSecurity {
		for name := range req {
			if _, ok := c.Spec.Scheme(name); !ok {
				err = multierr.Append(err, fmt.Errorf("rootSecurity[%d]: undefined security scheme %q", i, name))
			}
		}
	}
	return err
}

func (s SecurityScheme) validate(name string) error {
	var err error
	if !schemeTypes[s.Type] {
		return fmt.Errorf("spec.securityDefinitions.%s.type: invalid value %q, must be apiKey, http, oauth2 or openIdConnect", name, s.Type)
	}
	switch s.Type {
	case "apiKey":
		if s.Name == "" {
			err = multierr.Append(err, fmt.Errorf("spec.securityDefinitions.%s.name is required for apiKey", name))
		}
		switch s.In {
		case "query", "header", "cookie":
		default:
			err = multierr.Append(err, fmt.Errorf("spec.securityDefinitions.%s.in: invalid value %q, must be query, header or cookie", name, s.In))
		}
	case "http":
		if s.Scheme == "" {
			err = multierr.Append(err, fmt.Errorf("spec.securityDefinitions.%s.scheme is required for http", name))
		}
	case "oauth2":
		if len(s.Flows) == 0 {
			err = multierr.Append(err, fmt.Errorf("spec.securityDefinitions.%s.flows is required for oauth2", name))
		}
		for kind := range s.Flows {
			switch strings.ToLower(kind) {
			case "implicit", "password", "clientcredentials", "authorizationcode":
			default:
				err = multierr.Append(err, fmt.Errorf("spec.securityDefinitions.%s.flows: unknown flow %q", name, kind))
			}
		}
	}
	return err
}

// Scheme finds a security definition by name. Names compare without case
// because config keys are case-insensitive.
func (s SpecConfig) Scheme(name string) (string, bool) {
	if _, ok := s.SecurityDefinitions[name]; ok {
		return name, true
	}
	for key := range s.SecurityDefinitions {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

// Warnings lists settings that are legal but probably not intended.
func (c *Config) Warnings() []string {
	var out []string
	for _, pattern := range c.ControllerPathGlobs {
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, ".ts") {
			out = append(out, fmt.Sprintf("controllerPathGlobs: pattern %q has no wildcard or .ts extension; did you mean %q?",
				pattern, strings.TrimSuffix(pattern, "/")+"/**/*.controller.ts"))
		}
	}
	if c.EntryFile != "" && len(c.ControllerPathGlobs) > 0 {
		out = append(out, "entryFile and controllerPathGlobs are both set; controllerPathGlobs is ignored")
	}
	if c.Spec.Title == "" {
		out = append(out, "spec.title is empty; the document title will be \"API\"")
	}
	return out
}
