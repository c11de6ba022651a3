// Package testutil provides test utilities for tsmeta: in-memory file
// systems built from inline TypeScript sources or txtar archives.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"golang.org/x/tools/txtar"
)

// Root is the directory fixtures are written under.
const Root = "/project"

// NewOverlayFS returns a file system where the virtual files shadow the OS
// file system, which stays read-only. Relative paths are placed under Root.
func NewOverlayFS(virtualFiles map[string]string) afero.Fs {
	mem := afero.NewMemMapFs()
	writeFiles(mem, virtualFiles)
	return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewOsFs()), mem)
}

// NewMemFS returns an in-memory file system holding only the given files.
func NewMemFS(files map[string]string) afero.Fs {
	mem := afero.NewMemMapFs()
	writeFiles(mem, files)
	return mem
}

// TxtarFS loads a txtar archive into an in-memory file system. Each archive
// member becomes a file under Root.
func TxtarFS(t testing.TB, archive string) afero.Fs {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	if len(ar.Files) == 0 {
		t.Fatalf("txtar archive has no files")
	}
	files := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		files[f.Name] = string(f.Data)
	}
	return NewMemFS(files)
}

// Path returns the absolute fixture path of a relative name.
func Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(Root, name)
}

func writeFiles(fs afero.Fs, files map[string]string) {
	for name, src := range files {
		p := Path(name)
		if err := fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			panic(err)
		}
		if err := afero.WriteFile(fs, p, []byte(src), 0o644); err != nil {
			panic(err)
		}
	}
}
