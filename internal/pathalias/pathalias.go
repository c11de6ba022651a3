// Package pathalias maps non-relative module specifiers onto source paths
// using tsconfig-style baseUrl and paths settings.
//
// Matching follows TypeScript's tryLoadModuleUsingPaths():
//  1. Exact matches are checked first
//  2. Wildcard patterns are matched by longest prefix (ties broken by longest suffix)
//  3. The matched wildcard text is substituted into every fallback path
//  4. Fallback paths are resolved relative to the paths base directory
package pathalias

import (
	"path/filepath"
	"strings"
)

// Config holds the resolved compiler settings needed for alias resolution.
type Config struct {
	// PathsBaseDir is the absolute directory path targets resolve against:
	// BaseURL when set, otherwise the project directory.
	PathsBaseDir string
	// BaseURL is the absolute baseUrl directory. When set, specifiers no
	// alias matches are also looked up below it.
	BaseURL string
	// Paths maps alias patterns to target paths, e.g. "@app/*" → ["src/*"].
	Paths map[string][]string
}

// Resolver resolves module specifiers against a Config. A nil *Resolver
// resolves nothing.
type Resolver struct {
	pathsBaseDir string
	baseURL      string
	aliases      map[string][]string
}

// New creates a resolver from pre-resolved compiler settings.
func New(cfg Config) *Resolver {
	base := cfg.PathsBaseDir
	if base == "" {
		base = cfg.BaseURL
	}
	return &Resolver{
		pathsBaseDir: base,
		baseURL:      cfg.BaseURL,
		aliases:      cfg.Paths,
	}
}

// HasAliases reports whether the resolver has any path aliases to resolve.
func (r *Resolver) HasAliases() bool {
	return r != nil && len(r.aliases) > 0
}

// Candidates returns the extensionless source paths specifier may refer to,
// in the order they should be tried. Relative and absolute specifiers
// yield nothing.
func (r *Resolver) Candidates(specifier string) []string {
	if r == nil || specifier == "" || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return nil
	}

	var out []string
	if targets, ok := r.match(specifier); ok {
		for _, target := range targets {
			out = append(out, filepath.Join(r.pathsBaseDir, strings.TrimPrefix(target, "./")))
		}
	}
	if r.baseURL != "" {
		out = append(out, filepath.Join(r.baseURL, specifier))
	}
	return out
}

// match returns the alias targets for specifier with any wildcard text
// already substituted.
func (r *Resolver) match(specifier string) ([]string, bool) {
	// Phase 1: exact matches
	if targets, ok := r.aliases[specifier]; ok && !strings.Contains(specifier, "*") {
		return targets, len(targets) > 0
	}

	// Phase 2: longest-prefix wildcard match
	longestPrefixLen := -1
	longestSuffixLen := -1
	var best string
	for key := range r.aliases {
		starIdx := strings.IndexByte(key, '*')
		if starIdx < 0 {
			continue
		}
		prefix, suffix := key[:starIdx], key[starIdx+1:]
		if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) ||
			len(specifier) < len(prefix)+len(suffix) {
			continue
		}
		if len(prefix) > longestPrefixLen ||
			(len(prefix) == longestPrefixLen && len(suffix) > longestSuffixLen) ||
			(len(prefix) == longestPrefixLen && len(suffix) == longestSuffixLen && key < best) {
			longestPrefixLen, longestSuffixLen, best = len(prefix), len(suffix), key
		}
	}
	if longestPrefixLen < 0 {
		return nil, false
	}

	matched := specifier[longestPrefixLen : len(specifier)-longestSuffixLen]
	targets := make([]string, 0, len(r.aliases[best]))
	for _, target := range r.aliases[best] {
		targets = append(targets, strings.Replace(target, "*", matched, 1))
	}
	return targets, len(targets) > 0
}
