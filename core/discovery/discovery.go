package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/planner"
)

// IsSourceFile reports whether path is a candidate for test generation:
// a non-test, non-support Python file outside the excluded directories.
func IsSourceFile(path, projectRoot string, cfg *config.Config) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".py") {
		return false
	}
	if name == "conftest.py" || name == "__init__.py" || name == "setup.py" {
		return false
	}
	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py") {
		return false
	}

	rel, err := filepath.Rel(projectRoot, path)
	if err == nil && !strings.HasPrefix(rel, "..") {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			for _, excluded := range cfg.ExcludeDirs {
				if part == excluded {
					return false
				}
			}
			if strings.HasPrefix(part, ".") && part != "." {
				return false
			}
		}
	}

	return true
}

// UntestedFiles finds every source file under searchRoot whose mirrored test
// file does not exist yet. Results are sorted so batch runs are ordered the
// same on every invocation.
func UntestedFiles(searchRoot, projectRoot string, cfg *config.Config) ([]string, error) {
	if info, err := os.Stat(searchRoot); err != nil {
		return nil, err
	} else if !info.IsDir() {
		if needsTest(searchRoot, projectRoot, cfg) {
			return []string{searchRoot}, nil
		}
		return nil, nil
	}

	testRoot := filepath.Join(projectRoot, cfg.TestRoot)
	var untested []string

	err := filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path == testRoot || (strings.HasPrefix(name, ".") && path != searchRoot) {
				return filepath.SkipDir
			}
			for _, excluded := range cfg.ExcludeDirs {
				if name == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if needsTest(path, projectRoot, cfg) {
			untested = append(untested, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(untested)
	return untested, nil
}

func needsTest(path, projectRoot string, cfg *config.Config) bool {
	if !IsSourceFile(path, projectRoot, cfg) {
		return false
	}

	// Files already inside the test tree are support code, not sources.
	testRoot := filepath.Join(projectRoot, cfg.TestRoot)
	if rel, err := filepath.Rel(testRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return false
	}

	_, err := os.Stat(planner.TestPath(path, projectRoot, cfg))
	return os.IsNotExist(err)
}
