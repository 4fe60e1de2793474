package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/logger"
)

// ScanPackages maps every top-level package and standalone module name to
// its absolute path. With a src layout, packages inside src register under
// their own name. Name collisions resolve deterministically: shortest path
// first, then lexicographic, with a warning. Filesystem enumeration order
// never influences the result.
func ScanPackages(root string, excludeDirs []string) map[string]string {
	exclude := map[string]bool{}
	for _, d := range excludeDirs {
		exclude[d] = true
	}

	searchRoots := []string{root}
	srcDir := filepath.Join(root, "src")
	hasSrc := false
	if info, err := os.Stat(srcDir); err == nil && info.IsDir() {
		searchRoots = append(searchRoots, srcDir)
		hasSrc = true
	}

	candidates := map[string][]string{}
	addCandidate := func(name, path string) {
		candidates[name] = append(candidates[name], path)
	}

	for _, searchRoot := range searchRoots {
		filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}

			if d.IsDir() {
				if path == searchRoot {
					return nil
				}
				name := d.Name()
				if exclude[name] || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				if searchRoot == root && hasSrc && path == srcDir {
					return filepath.SkipDir // scanned as its own search root
				}
				if hasInit(path) {
					top, topPath := topLevelOf(searchRoot, path)
					if top != "" {
						addCandidate(top, topPath)
					}
				}
				return nil
			}

			name := d.Name()
			if !strings.HasSuffix(name, ".py") || strings.HasPrefix(name, "test_") {
				return nil
			}
			if name == "__init__.py" || name == "conftest.py" || name == "setup.py" {
				return nil
			}
			if hasInit(filepath.Dir(path)) {
				return nil // submodule of a package already registered
			}

			rel, err := filepath.Rel(searchRoot, path)
			if err != nil {
				return nil
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")
			if len(parts) == 1 {
				addCandidate(strings.TrimSuffix(name, ".py"), path)
			} else {
				// namespace package: register its top directory
				addCandidate(parts[0], filepath.Join(searchRoot, parts[0]))
			}
			return nil
		})
	}

	packageMap := make(map[string]string, len(candidates))
	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		paths := dedupe(candidates[name])
		if len(paths) > 1 {
			sort.Slice(paths, func(i, j int) bool {
				if len(paths[i]) != len(paths[j]) {
					return len(paths[i]) < len(paths[j])
				}
				return paths[i] < paths[j]
			})
			logger.Warn("Package name %q claimed by multiple paths, keeping %s (also: %s)",
				name, paths[0], strings.Join(paths[1:], ", "))
		}
		packageMap[name] = paths[0]
	}

	return packageMap
}

func hasInit(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "__init__.py"))
	return err == nil
}

// topLevelOf reduces a package directory to the top-level package that owns
// it: searchRoot/foo/bar/baz registers foo.
func topLevelOf(searchRoot, path string) (string, string) {
	rel, err := filepath.Rel(searchRoot, path)
	if err != nil || rel == "." {
		return "", ""
	}
	top := strings.Split(filepath.ToSlash(rel), "/")[0]
	return top, filepath.Join(searchRoot, top)
}

func dedupe(paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
