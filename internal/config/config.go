package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
)

// EnvPrefix prefixes environment overrides, e.g. TSMETA_SPEC_TITLE.
const EnvPrefix = "TSMETA"

// Name is the config file base name searched for when no file is given.
const Name = "tsmeta"

// Config represents the tsmeta configuration.
type Config struct {
	// EntryFile is analyzed together with every file it imports.
	EntryFile string `mapstructure:"entryFile"`
	// ControllerPathGlobs select controller files relative to the project root.
	ControllerPathGlobs []string `mapstructure:"controllerPathGlobs"`
	Ignore              []string `mapstructure:"ignore"`
	// RootSecurity applies to methods whose controller declares none.
	RootSecurity []metadata.Security `mapstructure:"rootSecurity"`

	OutputDirectory string          `mapstructure:"outputDirectory"`
	SpecFormat      string          `mapstructure:"specFormat"` // json or yaml
	Spec            SpecConfig      `mapstructure:"spec"`
	CompilerOptions CompilerOptions `mapstructure:"compilerOptions"`
}

// CompilerOptions mirrors the tsconfig settings import resolution needs.
type CompilerOptions struct {
	BaseURL string              `mapstructure:"baseUrl"`
	Paths   map[string][]string `mapstructure:"paths"`
}

// SpecConfig holds document-level OpenAPI settings.
type SpecConfig struct {
	Title               string                    `mapstructure:"title"`
	Version             string                    `mapstructure:"version"`
	Description         string                    `mapstructure:"description"`
	BasePath            string                    `mapstructure:"basePath"`
	License             string                    `mapstructure:"license"`
	SecurityDefinitions map[string]SecurityScheme `mapstructure:"securityDefinitions"`
}

// SecurityScheme represents a security scheme in the OpenAPI document.
type SecurityScheme struct {
	Type         string            `mapstructure:"type"`
	Scheme       string            `mapstructure:"scheme"`
	BearerFormat string            `mapstructure:"bearerFormat"`
	In           string            `mapstructure:"in"`
	Name         string            `mapstructure:"name"`
	Description  string            `mapstructure:"description"`
	Flows        map[string]OAuth2 `mapstructure:"flows"`
}

// OAuth2 is one OAuth2 flow.
type OAuth2 struct {
	AuthorizationURL string            `mapstructure:"authorizationUrl"`
	TokenURL         string            `mapstructure:"tokenUrl"`
	Scopes           map[string]string `mapstructure:"scopes"`
}

// setDefaults registers every scalar key so that environment overrides are
// seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("entryFile", "")
	v.SetDefault("controllerPathGlobs", []string{})
	v.SetDefault("ignore", []string{})
	v.SetDefault("outputDirectory", "dist")
	v.SetDefault("specFormat", "json")
	v.SetDefault("spec.title", "")
	v.SetDefault("spec.version", "1.0.0")
	v.SetDefault("spec.description", "")
	v.SetDefault("spec.basePath", "/")
	v.SetDefault("spec.license", "")
	v.SetDefault("compilerOptions.baseUrl", "")
}

// Load reads the configuration from path, or searches dir for tsmeta.yaml,
// tsmeta.json or tsmeta.toml when path is empty. A missing searched file
// is not an error: defaults and environment overrides still apply.
func Load(fs afero.Fs, dir, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if ok, _ := afero.Exists(fs, path); !ok {
			return nil, fmt.Errorf("failed to read config file: %s does not exist", path)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if used := v.ConfigFileUsed(); used != "" {
			return nil, fmt.Errorf("invalid config in %q: %w", used, err)
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// GeneratorOptions maps the configuration onto analyzer options rooted at cwd.
func (c *Config) GeneratorOptions(fs afero.Fs, cwd string, logger *zap.Logger, diags *diagnostic.Collector) analyzer.Options {
	return analyzer.Options{
		EntryFile:           c.EntryFile,
		ControllerPathGlobs: c.ControllerPathGlobs,
		Ignore:              c.Ignore,
		RootSecurity:        c.RootSecurity,
		BaseURL:             c.CompilerOptions.BaseURL,
		Paths:               c.CompilerOptions.Paths,
		Fs:                  fs,
		Cwd:                 cwd,
		Logger:              logger,
		Diagnostics:         diags,
	}
}

// OutputPath is where the generated document is written.
func (c *Config) OutputPath(cwd string) string {
	dir := c.OutputDirectory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	return filepath.Join(dir, "openapi."+c.SpecFormat)
}
