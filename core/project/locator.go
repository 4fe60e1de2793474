package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/merge"
	"github.com/testsmith-io/testsmith/core/models"
)

// ErrProjectNotFound means no marker file was found between the source file
// and the filesystem root. Callers surface it with a hint to pass an
// explicit root in testsmith.yaml.
var ErrProjectNotFound = errors.New("project root not found")

// rootMarkers in priority order; the nearest ancestor directory holding any
// of them wins, priority breaking ties within one directory.
var rootMarkers = []string{"pyproject.toml", "setup.py", "setup.cfg", ".git", "conftest.py"}

// FindProjectRoot walks ancestor directories from startPath looking for a
// project marker.
func FindProjectRoot(startPath string) (string, error) {
	current, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", startPath, err)
	}

	if info, err := os.Stat(current); err == nil && !info.IsDir() {
		current = filepath.Dir(current)
	}

	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w: searched from %s for markers %v", ErrProjectNotFound, startPath, rootMarkers)
		}
		current = parent
	}
}

// BuildContext assembles the immutable per-invocation project view: root,
// package map, and the paths already registered in the root conftest.
func BuildContext(sourcePath string, cfg *config.Config) (*models.ProjectContext, error) {
	var root string
	var err error

	if cfg.Root != "" {
		root, err = filepath.Abs(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve configured root %s: %w", cfg.Root, err)
		}
	} else {
		root, err = FindProjectRoot(sourcePath)
		if err != nil {
			return nil, err
		}
	}

	packageMap := ScanPackages(root, cfg.ExcludeDirs)

	ctx := &models.ProjectContext{
		Root:       root,
		PackageMap: packageMap,
	}

	conftest := filepath.Join(root, cfg.Conftest)
	if data, err := os.ReadFile(conftest); err == nil {
		ctx.ConftestPath = conftest
		ctx.RegistryEntries = merge.ParseRegistryEntries(string(data), cfg.RegistryVar)
	}

	logger.Debug("Project root: %s (%d packages, %d registered paths)",
		root, len(packageMap), len(ctx.RegistryEntries))

	return ctx, nil
}
