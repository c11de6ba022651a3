package buildcache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsgonest/tsmeta/internal/testutil"
)

const (
	controller = "/project/src/users.controller.ts"
	model      = "/project/src/user.ts"
	output     = "/project/dist/openapi.json"
)

func project(t *testing.T) afero.Fs {
	t.Helper()
	return testutil.NewMemFS(map[string]string{
		"src/users.controller.ts": "import { User } from './user';",
		"src/user.ts":             "export interface User { id: number }",
		"dist/openapi.json":       "{}",
	})
}

func fresh(fs afero.Fs) *Cache {
	return New(fs, "cfg", []string{controller}, []string{controller, model}, []string{output})
}

func TestCachePath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"/project/dist/openapi.json", "/project/dist/.openapi.json.tsmeta-cache"},
		{"dist/openapi.yaml", "dist/.openapi.yaml.tsmeta-cache"},
		{"openapi.json", ".openapi.json.tsmeta-cache"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CachePath(tt.output), tt.output)
	}
}

func TestLoadSave(t *testing.T) {
	fs := project(t)
	path := CachePath(output)

	want := fresh(fs)
	require.NoError(t, Save(fs, path, want))

	got := Load(fs, path)
	require.NotNil(t, got)
	assert.Equal(t, want, got)
	assert.Equal(t, SchemaVersion, got.V)
	assert.Len(t, got.Inputs, 2)

	_, err := fs.Stat(path + ".tmp")
	assert.Error(t, err, "temp file should be renamed away")
}

func TestLoadMissingOrCorrupted(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Nil(t, Load(fs, "/nope"))

	require.NoError(t, afero.WriteFile(fs, "/bad", []byte("{not json"), 0o644))
	assert.Nil(t, Load(fs, "/bad"))

	require.NoError(t, afero.WriteFile(fs, "/empty", nil, 0o644))
	assert.Nil(t, Load(fs, "/empty"))
}

func TestSaveCreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/deep/nested/.out.json.tsmeta-cache"
	require.NoError(t, Save(fs, path, &Cache{V: SchemaVersion}))
	assert.NotNil(t, Load(fs, path))
}

func TestDelete(t *testing.T) {
	fs := project(t)
	path := CachePath(output)
	require.NoError(t, Save(fs, path, fresh(fs)))

	Delete(fs, path)
	assert.Nil(t, Load(fs, path))
	Delete(fs, path)
}

func TestIsValid(t *testing.T) {
	roots := []string{controller}

	t.Run("all checks pass", func(t *testing.T) {
		fs := project(t)
		assert.True(t, fresh(fs).IsValid(fs, "cfg", roots))
	})

	t.Run("nil cache", func(t *testing.T) {
		var c *Cache
		assert.False(t, c.IsValid(project(t), "cfg", roots))
	})

	t.Run("schema version", func(t *testing.T) {
		fs := project(t)
		c := fresh(fs)
		c.V = SchemaVersion + 1
		assert.False(t, c.IsValid(fs, "cfg", roots))
	})

	t.Run("config hash", func(t *testing.T) {
		fs := project(t)
		assert.False(t, fresh(fs).IsValid(fs, "other", roots))
	})

	t.Run("new root", func(t *testing.T) {
		fs := project(t)
		assert.False(t, fresh(fs).IsValid(fs, "cfg", []string{controller, "/project/src/orders.controller.ts"}))
	})

	t.Run("root order ignored", func(t *testing.T) {
		fs := project(t)
		c := New(fs, "cfg", []string{model, controller}, nil, nil)
		assert.True(t, c.IsValid(fs, "cfg", []string{controller, model}))
	})

	t.Run("imported file changed", func(t *testing.T) {
		fs := project(t)
		c := fresh(fs)
		require.NoError(t, afero.WriteFile(fs, model, []byte("export interface User { id: string }"), 0o644))
		assert.False(t, c.IsValid(fs, "cfg", roots))
	})

	t.Run("input deleted", func(t *testing.T) {
		fs := project(t)
		c := fresh(fs)
		require.NoError(t, fs.Remove(model))
		assert.False(t, c.IsValid(fs, "cfg", roots))
	})

	t.Run("input unreadable when recorded", func(t *testing.T) {
		fs := project(t)
		c := New(fs, "cfg", roots, []string{"/project/src/gone.ts"}, nil)
		assert.Empty(t, c.Inputs["/project/src/gone.ts"])
		assert.False(t, c.IsValid(fs, "cfg", roots))
	})

	t.Run("output missing", func(t *testing.T) {
		fs := project(t)
		c := fresh(fs)
		require.NoError(t, fs.Remove(output))
		assert.False(t, c.IsValid(fs, "cfg", roots))
	})
}

func TestHash(t *testing.T) {
	fs := project(t)
	assert.Equal(t, HashBytes([]byte("export interface User { id: number }")), HashFile(fs, model))
	assert.Len(t, HashBytes(nil), 64)
	assert.NotEqual(t, HashBytes([]byte("a")), HashBytes([]byte("b")))
	assert.Empty(t, HashFile(fs, "/missing"))
}
