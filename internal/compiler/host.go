package compiler

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tsgonest/tsmeta/internal/pathalias"
)

// Host gives program loading its view of the file system.
type Host struct {
	FS  afero.Fs
	Cwd string
	// Aliases resolves non-relative imports; nil follows relative imports only.
	Aliases *pathalias.Resolver
}

// CreateDefaultHost creates a host over the OS file system rooted at cwd.
// An empty cwd means the process working directory.
func CreateDefaultHost(cwd string) (*Host, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	return &Host{FS: afero.NewOsFs(), Cwd: cwd}, nil
}

// NewHost creates a host over fs rooted at cwd.
func NewHost(fs afero.Fs, cwd string) *Host {
	if cwd == "" {
		cwd = "/"
	}
	return &Host{FS: fs, Cwd: cwd}
}

// ResolvePath makes p absolute against the host's working directory.
func (h *Host) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(h.Cwd, p)
}

// FileExists reports whether p names a regular file.
func (h *Host) FileExists(p string) bool {
	info, err := h.FS.Stat(p)
	return err == nil && !info.IsDir()
}

// ReadFile reads the whole file at p.
func (h *Host) ReadFile(p string) ([]byte, error) {
	return afero.ReadFile(h.FS, p)
}

// Walk visits every regular file below root, passing absolute paths.
func (h *Host) Walk(root string, fn func(path string) error) error {
	return afero.Walk(h.FS, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path)
	})
}
