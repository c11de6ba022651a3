// Package buildcache records the inputs of the last successful document
// generation so an identical run can be skipped.
//
// The cache is conservative: if ANY check fails, the whole pipeline runs from
// scratch. A program is the import closure of its roots, and that closure is
// a function of the file contents, so matching roots and matching hashes for
// every loaded file mean the analysis would produce the same document.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"slices"

	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/afero"
)

// SchemaVersion is bumped when the cache format or the generated output
// changes. A mismatch forces a full run.
const SchemaVersion = 1

// Cache records what was true when the last run succeeded.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash is a digest of the effective configuration.
	ConfigHash string `json:"configHash"`

	// Roots are the sorted program roots the run started from.
	Roots []string `json:"roots"`

	// Inputs maps every loaded source file to the SHA-256 of its content.
	Inputs map[string]string `json:"inputs"`

	// Outputs lists files that must still exist for the cache to be valid.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file kept next to an output file, e.g.
// dist/openapi.json → dist/.openapi.json.tsmeta-cache. Deleting the output
// directory removes the cache with it.
func CachePath(output string) string {
	return filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".tsmeta-cache")
}

// Load reads a cache file. It returns nil if the file doesn't exist or is
// unreadable; callers treat nil as a cache miss.
func Load(fs afero.Fs, path string) *Cache {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

// Save writes the cache atomically (write to temp, rename).
func Save(fs afero.Fs, path string, cache *Cache) error {
	data, err := json.Marshal(cache, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the cache file. Errors are ignored (file may not exist).
func Delete(fs afero.Fs, path string) {
	_ = fs.Remove(path)
}

// New records a successful run, hashing every input now.
func New(fs afero.Fs, configHash string, roots, inputs, outputs []string) *Cache {
	c := &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		Roots:      slices.Sorted(slices.Values(roots)),
		Inputs:     make(map[string]string, len(inputs)),
		Outputs:    outputs,
	}
	for _, p := range inputs {
		c.Inputs[p] = HashFile(fs, p)
	}
	return c
}

// IsValid checks whether the cache can be trusted to skip a run.
// ALL of the following must hold:
//
//  1. Schema version matches (catches binary upgrades)
//  2. Config hash matches the current configuration
//  3. The program roots are the same files
//  4. Every loaded source file has the same content
//  5. All output files still exist
//
// TODO: record unresolved import specifiers too, so that creating a file an
// import previously failed to find also invalidates the cache.
func (c *Cache) IsValid(fs afero.Fs, configHash string, roots []string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion || c.ConfigHash != configHash {
		return false
	}
	if !slices.Equal(c.Roots, slices.Sorted(slices.Values(roots))) {
		return false
	}
	for path, hash := range c.Inputs {
		if hash == "" || HashFile(fs, path) != hash {
			return false
		}
	}
	for _, path := range c.Outputs {
		if _, err := fs.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// HashFile computes the SHA-256 hex digest of a file's contents.
// Returns empty string if the file doesn't exist or can't be read.
func HashFile(fs afero.Fs, path string) string {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return ""
	}
	return HashBytes(data)
}

// HashBytes computes the SHA-256 hex digest of data.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
