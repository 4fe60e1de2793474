package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-io/testsmith/core/config"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestIsSourceFile(t *testing.T) {
	cfg := config.Default()
	root := "/project"

	assert.True(t, IsSourceFile(filepath.Join(root, "app.py"), root, cfg))
	assert.True(t, IsSourceFile(filepath.Join(root, "pkg", "mod.py"), root, cfg))

	assert.False(t, IsSourceFile(filepath.Join(root, "conftest.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "setup.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "pkg", "__init__.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "test_app.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "app_test.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "README.md"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, ".venv", "lib.py"), root, cfg))
	assert.False(t, IsSourceFile(filepath.Join(root, "node_modules", "x.py"), root, cfg))
}

func TestUntestedFiles(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	touch(t, filepath.Join(root, "src", "billing.py"))
	touch(t, filepath.Join(root, "src", "orders.py"))
	touch(t, filepath.Join(root, "src", "__init__.py"))
	touch(t, filepath.Join(root, "tests", "src", "test_billing.py"))
	touch(t, filepath.Join(root, "__pycache__", "cached.py"))

	files, err := UntestedFiles(root, root, cfg)
	require.NoError(t, err)

	// billing already has its mirrored test; orders does not.
	assert.Equal(t, []string{filepath.Join(root, "src", "orders.py")}, files)
}

func TestUntestedFilesSkipsTestTree(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	touch(t, filepath.Join(root, "tests", "helper.py"))

	files, err := UntestedFiles(root, root, cfg)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUntestedFilesSingleFile(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	source := filepath.Join(root, "app.py")
	touch(t, source)

	files, err := UntestedFiles(source, root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{source}, files)
}

func TestUntestedFilesSubdirectory(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	touch(t, filepath.Join(root, "src", "a.py"))
	touch(t, filepath.Join(root, "other", "b.py"))

	files, err := UntestedFiles(filepath.Join(root, "src"), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "a.py")}, files)
}
