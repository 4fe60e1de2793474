package planner

import (
	"path/filepath"
	"strings"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/templates"
)

// FixturePath is the shared fixture file for an external dependency,
// e.g. tests/fixtures/stripe_fixture.py. The name is sanitized so the file
// stays an importable Python module.
func FixturePath(dep, projectRoot string, cfg *config.Config) string {
	filename := templates.Sanitize(dep) + cfg.FixtureSuffix
	return filepath.Join(projectRoot, cfg.FixtureDir, filename)
}

// TestPath mirrors a source file into the test tree:
// src/services/payment.py -> tests/src/services/test_payment.py.
func TestPath(sourcePath, projectRoot string, cfg *config.Config) string {
	rel, err := filepath.Rel(projectRoot, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(sourcePath)
	}

	stem := strings.TrimSuffix(filepath.Base(rel), ".py")
	return filepath.Join(projectRoot, cfg.TestRoot, filepath.Dir(rel), "test_"+stem+".py")
}

// RequiredRegistryPaths computes the three path entries a source file needs
// registered: its own directory, the mirrored test directory, and the
// fixtures directory. Entries are project-relative with forward slashes so
// they match across platforms and across runs.
func RequiredRegistryPaths(sourcePath, testPath, projectRoot string, cfg *config.Config) []string {
	entry := func(p string) string {
		rel, err := filepath.Rel(projectRoot, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return ""
		}
		return filepath.ToSlash(rel)
	}

	paths := []string{
		entry(filepath.Dir(sourcePath)),
		entry(filepath.Dir(testPath)),
		filepath.ToSlash(cfg.FixtureDir),
	}

	var out []string
	seen := map[string]bool{}
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
