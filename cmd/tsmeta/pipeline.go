package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/go-json-experiment/json"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/analyzer"
	"github.com/tsgonest/tsmeta/internal/buildcache"
	"github.com/tsgonest/tsmeta/internal/config"
	"github.com/tsgonest/tsmeta/internal/diagnostic"
	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/openapi"
)

var (
	successColor = color.New(color.FgHiGreen)
	faintColor   = color.New(color.Faint)
)

// loadConfig reads the configuration and logs its warnings.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.fs, a.cwd, a.configPath)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		a.logger.Warn(w)
	}
	return cfg, nil
}

// newGenerator prepares a metadata generation for cfg.
func (a *app) newGenerator(cfg *config.Config) (*analyzer.Generator, *diagnostic.Collector, error) {
	diags := diagnostic.NewCollector(a.strict, a.quiet)
	gen, err := analyzer.NewGenerator(cfg.GeneratorOptions(a.fs, a.cwd, a.logger, diags))
	if err != nil {
		return nil, nil, err
	}
	return gen, diags, nil
}

// analyze runs one metadata generation and prints its diagnostics to w.
// Error diagnostics fail the run.
func (a *app) analyze(ctx context.Context, w io.Writer, cfg *config.Config) (*metadata.Metadata, error) {
	gen, diags, err := a.newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, w, gen, diags)
}

func (a *app) run(ctx context.Context, w io.Writer, gen *analyzer.Generator, diags *diagnostic.Collector) (*metadata.Metadata, error) {
	start := time.Now()
	md, err := gen.Generate(ctx)
	diags.Write(w, !color.NoColor)
	if err != nil {
		return nil, err
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("analysis failed: %s", diags.Summary())
	}
	a.logger.Info("analysis finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("files", len(gen.Sources())),
		zap.String("diagnostics", diags.Summary()))
	return md, nil
}

// configHash digests everything besides the sources that shapes the
// written document.
func (a *app) configHash(cfg *config.Config) (string, error) {
	data, err := json.Marshal(cfg, json.Deterministic(true))
	if err != nil {
		return "", fmt.Errorf("hashing configuration: %w", err)
	}
	return buildcache.HashBytes(fmt.Appendf(data, "\n%s strict=%t", Version, a.strict)), nil
}

// buildDocument projects md into a validated OpenAPI document.
func buildDocument(ctx context.Context, cfg *config.Config, md *metadata.Metadata) (*openapi3.T, error) {
	doc := openapi.NewGenerator(cfg.Spec.DocumentConfig()).Generate(md)
	if err := openapi.ValidateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("generated document is invalid: %w", err)
	}
	return doc, nil
}

// generateSpec runs the full pipeline and writes the document to path,
// or to the configured output path when path is empty. Unless force is set,
// a run whose configuration and sources match the previous successful run
// leaves the document untouched.
func (a *app) generateSpec(ctx context.Context, w io.Writer, cfg *config.Config, path string, force bool) error {
	start := time.Now()
	if path == "" {
		path = cfg.OutputPath(a.cwd)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(a.cwd, path)
	}

	gen, diags, err := a.newGenerator(cfg)
	if err != nil {
		return err
	}
	roots, err := gen.RootFiles()
	if err != nil {
		return err
	}
	hash, err := a.configHash(cfg)
	if err != nil {
		return err
	}
	cachePath := buildcache.CachePath(path)
	if !force && buildcache.Load(a.fs, cachePath).IsValid(a.fs, hash, roots) {
		fmt.Fprintf(w, "%s %s\n", faintColor.Sprint("unchanged"), a.relative(path))
		return nil
	}
	buildcache.Delete(a.fs, cachePath)

	md, err := a.run(ctx, w, gen, diags)
	if err != nil {
		return err
	}
	doc, err := buildDocument(ctx, cfg, md)
	if err != nil {
		return err
	}
	data, err := openapi.Encode(doc, metadata.Format(cfg.SpecFormat))
	if err != nil {
		return err
	}
	if err := a.writeFile(path, data); err != nil {
		return err
	}
	cache := buildcache.New(a.fs, hash, roots, gen.Sources(), []string{path})
	if err := buildcache.Save(a.fs, cachePath, cache); err != nil {
		a.logger.Warn("failed to save build cache", zap.String("path", cachePath), zap.Error(err))
	}
	fmt.Fprintf(w, "%s %s %s\n",
		successColor.Sprint("wrote"),
		a.relative(path),
		faintColor.Sprintf("(%d paths, %d schemas, %s)", doc.Paths.Len(), len(doc.Components.Schemas), time.Since(start).Round(time.Millisecond)))
	return nil
}

func (a *app) writeFile(path string, data []byte) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cwd, path)
	}
	if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *app) relative(path string) string {
	if rel, err := filepath.Rel(a.cwd, path); err == nil {
		return rel
	}
	return path
}
