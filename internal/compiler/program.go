package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsgonest/tsmeta/internal/ast"
)

// ErrNoRootFiles is returned when a program is requested without any root file.
var ErrNoRootFiles = errors.New("no root files")

// Program is a set of parsed source files: the root files plus the closure
// of their relative and aliased imports. Package imports are not followed.
type Program struct {
	host        *Host
	roots       []*ast.SourceFile
	files       []*ast.SourceFile
	byPath      map[string]*ast.SourceFile
	diagnostics []Diagnostic
}

// CreateProgram parses rootFiles and everything they import.
// Root paths may be relative to the host's working directory.
func CreateProgram(ctx context.Context, host *Host, rootFiles []string) (*Program, error) {
	if len(rootFiles) == 0 {
		return nil, ErrNoRootFiles
	}
	parser := NewParser()
	defer parser.Close()

	p := &Program{host: host, byPath: make(map[string]*ast.SourceFile)}
	queue := make([]string, 0, len(rootFiles))
	for _, r := range rootFiles {
		queue = append(queue, host.ResolvePath(r))
	}
	rootCount := len(queue)
	rootSeen := make(map[string]bool)

	for i := 0; i < len(queue); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := queue[i]
		if f, ok := p.byPath[path]; ok {
			if i < rootCount && !rootSeen[path] {
				rootSeen[path] = true
				p.roots = append(p.roots, f)
			}
			continue
		}
		src, err := host.ReadFile(path)
		if err != nil {
			if i < rootCount {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			p.diagnostics = append(p.diagnostics, Diagnostic{FilePath: path, Category: CategoryWarning, Message: err.Error()})
			continue
		}
		f, diags, err := parser.ParseFile(ctx, path, src)
		if err != nil {
			return nil, err
		}
		p.diagnostics = append(p.diagnostics, diags...)
		p.byPath[path] = f
		p.files = append(p.files, f)
		if i < rootCount {
			rootSeen[path] = true
			p.roots = append(p.roots, f)
		}
		for _, imp := range f.Imports {
			if target, ok := p.resolveImport(filepath.Dir(path), imp.Specifier); ok {
				queue = append(queue, target)
			}
		}
	}
	return p, nil
}

// resolveImport maps a module specifier to a file on the host. Relative
// specifiers resolve against dir; others only through the host's aliases.
func (p *Program) resolveImport(dir, spec string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return p.findSource(filepath.Join(dir, spec))
	}
	for _, base := range p.host.Aliases.Candidates(spec) {
		if target, ok := p.findSource(base); ok {
			return target, true
		}
	}
	return "", false
}

// findSource finds the source file a module path without extension names.
func (p *Program) findSource(base string) (string, bool) {
	for _, ext := range []string{".js", ".mjs", ".cjs"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	candidates := []string{
		base,
		base + ".ts",
		base + ".tsx",
		base + ".d.ts",
		filepath.Join(base, "index.ts"),
		filepath.Join(base, "index.d.ts"),
	}
	for _, c := range candidates {
		if strings.HasSuffix(c, ".ts") || strings.HasSuffix(c, ".tsx") {
			if p.host.FileExists(c) {
				return c, true
			}
		}
	}
	return "", false
}

// SourceFiles returns every file of the program in load order.
func (p *Program) SourceFiles() []*ast.SourceFile { return p.files }

// RootFiles returns the files the program was created from.
func (p *Program) RootFiles() []*ast.SourceFile { return p.roots }

// File returns the parsed file at path, or nil.
func (p *Program) File(path string) *ast.SourceFile { return p.byPath[path] }

// Diagnostics returns read and syntax problems found while loading.
func (p *Program) Diagnostics() []Diagnostic { return p.diagnostics }

// Host returns the host the program was loaded from.
func (p *Program) Host() *Host { return p.host }

// IsDeclarationFile reports whether path is a .d.ts file.
func IsDeclarationFile(path string) bool {
	return strings.HasSuffix(path, ".d.ts")
}
