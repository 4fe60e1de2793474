package project

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

func TestFindProjectRoot(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pyproject.toml"))
	touch(t, filepath.Join(dir, "src", "app", "main.py"))

	root, err := FindProjectRoot(filepath.Join(dir, "src", "app", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestFindProjectRootNearestWins(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pyproject.toml"))
	touch(t, filepath.Join(dir, "sub", "setup.py"))
	touch(t, filepath.Join(dir, "sub", "mod.py"))

	// The nearest ancestor with any marker wins, whatever the marker.
	root, err := FindProjectRoot(filepath.Join(dir, "sub", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), root)
}

func TestFindProjectRootConftestMarker(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "conftest.py"))
	touch(t, filepath.Join(dir, "mod.py"))

	root, err := FindProjectRoot(filepath.Join(dir, "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestBuildContextReadsRegistry(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pyproject.toml"))
	touch(t, filepath.Join(dir, "app.py"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conftest.py"),
		[]byte("paths_to_add = [\n    \"src\",\n]\n"), 0o644))

	cfg := config.Default()
	ctx, err := BuildContext(filepath.Join(dir, "app.py"), cfg)
	require.NoError(t, err)

	assert.Equal(t, dir, ctx.Root)
	assert.Equal(t, filepath.Join(dir, "conftest.py"), ctx.ConftestPath)
	assert.Equal(t, []string{"src"}, ctx.RegistryEntries)
}

func TestBuildContextExplicitRoot(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "app.py"))

	cfg := config.Default()
	cfg.Root = dir

	// No marker anywhere, but the configured root short-circuits detection.
	ctx, err := BuildContext(filepath.Join(dir, "app.py"), cfg)
	require.NoError(t, err)
	assert.Equal(t, dir, ctx.Root)
}

func TestScanPackages(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "myapp", "__init__.py"))
	touch(t, filepath.Join(dir, "myapp", "services", "__init__.py"))
	touch(t, filepath.Join(dir, "standalone.py"))
	touch(t, filepath.Join(dir, "node_modules", "junk", "__init__.py"))

	packages := ScanPackages(dir, config.Default().ExcludeDirs)

	assert.Equal(t, filepath.Join(dir, "myapp"), packages["myapp"])
	assert.Equal(t, filepath.Join(dir, "standalone.py"), packages["standalone"])
	assert.NotContains(t, packages, "junk")
	assert.NotContains(t, packages, "services") // registered under its top-level package
}

func TestScanPackagesSrcLayout(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "src", "app", "__init__.py"))

	packages := ScanPackages(dir, nil)
	assert.Equal(t, filepath.Join(dir, "src", "app"), packages["app"])
	assert.NotContains(t, packages, "src")
}

func TestScanPackagesCollisionDeterministic(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "app", "__init__.py"))
	touch(t, filepath.Join(dir, "src", "app", "__init__.py"))

	// Shortest path wins the name.
	packages := ScanPackages(dir, nil)
	assert.Equal(t, filepath.Join(dir, "app"), packages["app"])
}
