package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/testutil"
)

// genEnv is a generator over an in-memory txtar fixture.
type genEnv struct {
	gen   *analyzer.Generator
	diags *diagnostic.Collector
}

// setupGenerator loads a txtar archive and prepares a generator that scans
// every *.controller.ts file in it.
func setupGenerator(t *testing.T, archive string, mutate ...func(*analyzer.Options)) *genEnv {
	t.Helper()
	diags := diagnostic.NewCollector(false, false)
	opts := analyzer.Options{
		ControllerPathGlobs: []string{"**/*.controller.ts"},
		Fs:                  testutil.TxtarFS(t, archive),
		Cwd:                 testutil.Root,
		Logger:              zaptest.NewLogger(t),
		Diagnostics:         diags,
	}
	for _, m := range mutate {
		m(&opts)
	}
	gen, err := analyzer.NewGenerator(opts)
	require.NoError(t, err)
	return &genEnv{gen: gen, diags: diags}
}

// generate runs the fixture and fails the test on error.
func generate(t *testing.T, archive string, mutate ...func(*analyzer.Options)) (*metadata.Metadata, *diagnostic.Collector) {
	t.Helper()
	env := setupGenerator(t, archive, mutate...)
	md, err := env.gen.Generate(context.Background())
	require.NoError(t, err)
	return md, env.diags
}

// generateErr runs the fixture and returns its error.
func generateErr(t *testing.T, archive string, mutate ...func(*analyzer.Options)) error {
	t.Helper()
	env := setupGenerator(t, archive, mutate...)
	md, err := env.gen.Generate(context.Background())
	require.Error(t, err)
	require.Nil(t, md)
	return err
}

func findController(t *testing.T, md *metadata.Metadata, name string) *metadata.Controller {
	t.Helper()
	for _, c := range md.Controllers {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("controller %q not found", name)
	return nil
}

func findMethod(t *testing.T, c *metadata.Controller, name string) *metadata.Method {
	t.Helper()
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %q not found in %s", name, c.Name)
	return nil
}

func findParam(t *testing.T, m *metadata.Method, name string) *metadata.Parameter {
	t.Helper()
	for _, p := range m.Parameters {
		if p.ParameterName == name || p.Name == name {
			return p
		}
	}
	t.Fatalf("parameter %q not found in %s", name, m.Name)
	return nil
}

func findProperty(t *testing.T, props []*metadata.Property, name string) *metadata.Property {
	t.Helper()
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %q not found", name)
	return nil
}

func lookupRef(t *testing.T, md *metadata.Metadata, name string) *metadata.ReferenceDefinition {
	t.Helper()
	def, ok := md.ReferenceTypeMap.Lookup(name)
	require.Truef(t, ok, "reference %q not found; have %v", name, md.ReferenceTypeMap.Names())
	return def
}
