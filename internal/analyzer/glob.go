package analyzer

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsgonest/tsmeta/internal/compiler"
)

// MatchesGlob checks if a file path matches any of the include patterns
// and does not match any of the exclude patterns.
func MatchesGlob(filePath string, includePatterns []string, excludePatterns []string) bool {
	if len(includePatterns) == 0 {
		return false
	}
	return matchesAny(filePath, includePatterns) && !matchesAny(filePath, excludePatterns)
}

func matchesAny(filePath string, patterns []string) bool {
	filePath = filepath.ToSlash(filePath)
	for _, pattern := range patterns {
		if globMatch(filePath, filepath.ToSlash(pattern)) {
			return true
		}
	}
	return false
}

// globMatch matches a slash-separated path against a pattern segment by
// segment. `**` matches zero or more whole segments; other segments use
// path.Match syntax. A relative pattern is also tried against every suffix
// of an absolute path, so "src/**/*.ts" matches "/repo/src/a/b.ts".
func globMatch(filePath, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "./")
	pathSegs := splitSegments(filePath)
	patSegs := splitSegments(pattern)
	if strings.HasPrefix(pattern, "/") || !strings.HasPrefix(filePath, "/") {
		return matchSegments(patSegs, pathSegs)
	}
	for i := range pathSegs {
		if matchSegments(patSegs, pathSegs[i:]) {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], segs[0]); !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}

// ExpandGlobs lists the source files below the host's working directory
// that match any pattern and no ignore pattern. Declaration files are
// dropped. The result is sorted for a stable controller order.
func ExpandGlobs(host *compiler.Host, patterns, ignore []string) ([]string, error) {
	var out []string
	err := host.Walk(host.Cwd, func(p string) error {
		if compiler.IsDeclarationFile(p) {
			return nil
		}
		if !strings.HasSuffix(p, ".ts") && !strings.HasSuffix(p, ".tsx") {
			return nil
		}
		rel, err := filepath.Rel(host.Cwd, p)
		if err != nil {
			rel = p
		}
		if matchesAny(rel, ignore) || matchesAny(p, ignore) {
			return nil
		}
		if matchesAny(rel, patterns) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
