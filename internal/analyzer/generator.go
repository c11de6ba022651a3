// Package analyzer turns annotated controller sources into a metadata.Metadata
// model: it locates @Route classes, analyzes their methods and parameters,
// resolves every referenced type, and runs the whole-graph checks.
package analyzer

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/checker"
	"github.com/tsgonest/tsmeta/internal/compiler"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/pathalias"
)

// Options configures a Generator.
type Options struct {
	// EntryFile is a module whose relative-import closure forms the program.
	EntryFile string
	// ControllerPathGlobs select controller files directly.
	ControllerPathGlobs []string
	// Ignore excludes matching files from controller discovery.
	Ignore []string
	// RootSecurity applies to methods and controllers without their own.
	RootSecurity []metadata.Security
	// BaseURL and Paths resolve non-relative imports the way the
	// TypeScript compiler options of the same names do.
	BaseURL string
	Paths   map[string][]string

	// Fs defaults to the OS file system; Cwd to the process directory.
	Fs  afero.Fs
	Cwd string

	Logger      *zap.Logger
	Diagnostics *diagnostic.Collector
}

// Generator produces metadata for a fixed set of options. Each Generate
// call runs in a fresh Session.
type Generator struct {
	opts    Options
	host    *compiler.Host
	logger  *zap.Logger
	diags   *diagnostic.Collector
	sources []string
}

// NewGenerator validates the options and prepares the file system host.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.EntryFile == "" && len(opts.ControllerPathGlobs) == 0 {
		return nil, configError("Either entryFile or controllerPathGlobs must be configured")
	}
	var host *compiler.Host
	if opts.Fs != nil {
		host = compiler.NewHost(opts.Fs, opts.Cwd)
	} else {
		h, err := compiler.CreateDefaultHost(opts.Cwd)
		if err != nil {
			return nil, fmt.Errorf("create host: %w", err)
		}
		host = h
	}
	if opts.BaseURL != "" || len(opts.Paths) > 0 {
		cfg := pathalias.Config{PathsBaseDir: host.Cwd, Paths: opts.Paths}
		if opts.BaseURL != "" {
			cfg.BaseURL = host.ResolvePath(opts.BaseURL)
			cfg.PathsBaseDir = cfg.BaseURL
		}
		host.Aliases = pathalias.New(cfg)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	diags := opts.Diagnostics
	if diags == nil {
		diags = diagnostic.NewCollector(false, false).WithLogger(logger)
	}
	return &Generator{opts: opts, host: host, logger: logger, diags: diags}, nil
}

// Sources returns every file loaded by the last Generate call.
func (g *Generator) Sources() []string { return g.sources }

// Diagnostics returns the collector receiving structural warnings.
func (g *Generator) Diagnostics() *diagnostic.Collector { return g.diags }

// Generate runs one full analysis. On failure no partial metadata is
// returned.
func (g *Generator) Generate(ctx context.Context) (*metadata.Metadata, error) {
	files, err := g.RootFiles()
	if err != nil {
		return nil, err
	}
	program, err := compiler.CreateProgram(ctx, g.host, files)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	g.sources = make([]string, 0, len(program.SourceFiles()))
	for _, f := range program.SourceFiles() {
		g.sources = append(g.sources, f.Path)
	}
	for _, d := range program.Diagnostics() {
		g.diags.Warn(diagnostic.CategorySourceParse, d.FilePath, d.Line, d.Column, d.Message)
	}

	s := newSession(checker.New(program), g.diags, g.logger)

	scan := program.RootFiles()
	if g.opts.EntryFile != "" {
		scan = program.SourceFiles()
	}
	located := locateControllers(scan, g.opts.Ignore)
	g.logger.Debug("located controllers",
		zap.Int("files", len(program.SourceFiles())),
		zap.Int("controllers", len(located)))

	controllers := make([]*metadata.Controller, 0, len(located))
	for _, loc := range located {
		c, err := s.controller(loc, g.opts.RootSecurity)
		if err != nil {
			return nil, err
		}
		controllers = append(controllers, c)
	}

	if err := checkDuplicateSignatures(controllers); err != nil {
		return nil, err
	}
	s.checkRouteOverlaps(controllers)
	qualifyOperationIDs(controllers)
	if err := s.applyFixups(); err != nil {
		return nil, err
	}

	g.logger.Info("generated metadata",
		zap.Int("controllers", len(controllers)),
		zap.Int("referenceTypes", s.refs.Len()))
	return &metadata.Metadata{Controllers: controllers, ReferenceTypeMap: s.refs}, nil
}

// RootFiles returns the absolute program roots. An entry file wins over
// globs.
func (g *Generator) RootFiles() ([]string, error) {
	if g.opts.EntryFile != "" {
		entry := g.host.ResolvePath(g.opts.EntryFile)
		if !g.host.FileExists(entry) {
			return nil, configError("Entry file %s does not exist", g.opts.EntryFile)
		}
		return []string{entry}, nil
	}
	matched, err := ExpandGlobs(g.host, g.opts.ControllerPathGlobs, g.opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("expand controllerPathGlobs: %w", err)
	}
	if len(matched) == 0 {
		return nil, configError("controllerPathGlobs %v did not match any source files", g.opts.ControllerPathGlobs)
	}
	return matched, nil
}

// GenerateMetadata is a one-shot NewGenerator + Generate.
func GenerateMetadata(ctx context.Context, opts Options) (*metadata.Metadata, error) {
	g, err := NewGenerator(opts)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx)
}
