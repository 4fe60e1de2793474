package maintenance

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/analyzer"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/templates"
	"github.com/testsmith-io/testsmith/core/writer"
)

const prunedPrefix = "# pruned by testsmith: fixture no longer needed - "

// UnusedFixture pairs a dependency with its orphaned fixture file.
type UnusedFixture struct {
	Dep  string
	Path string
}

// PruneResult records what happened to one fixture during pruning.
type PruneResult struct {
	Dep    string
	Action string // "would_delete", "deleted", or "error"
	Err    error
}

// ScanUsedDependencies walks the project's source files and collects the
// root packages of every external import still in use.
func ScanUsedDependencies(ctx *models.ProjectContext, cfg *config.Config) (map[string]bool, error) {
	sources, err := sourceFiles(ctx.Root, cfg)
	if err != nil {
		return nil, err
	}

	used := map[string]bool{}
	for _, source := range sources {
		analysis, err := analyzer.AnalyzeFile(source, ctx)
		if err != nil {
			logger.Warn("Failed to analyze %s: %v", source, err)
			continue
		}
		for _, root := range analysis.Imports.ExternalRoots() {
			used[root] = true
		}
	}
	return used, nil
}

// ScanExistingFixtures lists fixture files in the fixture directory keyed by
// the dependency name recovered from the filename.
func ScanExistingFixtures(projectRoot string, cfg *config.Config) (map[string]string, error) {
	fixtureDir := filepath.Join(projectRoot, cfg.FixtureDir)

	entries, err := os.ReadDir(fixtureDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	fixtures := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, cfg.FixtureSuffix) {
			continue
		}
		dep := strings.TrimSuffix(name, cfg.FixtureSuffix)
		fixtures[dep] = filepath.Join(fixtureDir, name)
	}
	return fixtures, nil
}

// IdentifyUnusedFixtures returns fixtures with no matching external import,
// sorted by dependency name.
func IdentifyUnusedFixtures(used map[string]bool, existing map[string]string) []UnusedFixture {
	var unused []UnusedFixture
	for dep, path := range existing {
		// The filename holds the sanitized name, so match against the
		// sanitized form of every used dependency too.
		if used[dep] {
			continue
		}
		inUse := false
		for u := range used {
			if templates.Sanitize(u) == dep {
				inUse = true
				break
			}
		}
		if !inUse {
			unused = append(unused, UnusedFixture{Dep: dep, Path: path})
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].Dep < unused[j].Dep })
	return unused
}

// PruneFixtures deletes unused fixture files. With dryRun set nothing is
// touched and each result reports "would_delete". After a real deletion the
// fixture directory's conftest is rebuilt from the surviving files.
func PruneFixtures(unused []UnusedFixture, projectRoot string, cfg *config.Config, dryRun bool) []PruneResult {
	results := make([]PruneResult, 0, len(unused))
	var deletedModules []string

	for _, u := range unused {
		if dryRun {
			results = append(results, PruneResult{Dep: u.Dep, Action: "would_delete"})
			continue
		}
		if err := os.Remove(u.Path); err != nil {
			results = append(results, PruneResult{Dep: u.Dep, Action: "error", Err: err})
			continue
		}
		deletedModules = append(deletedModules, strings.TrimSuffix(filepath.Base(u.Path), ".py"))
		results = append(results, PruneResult{Dep: u.Dep, Action: "deleted"})
	}

	if len(deletedModules) > 0 {
		if err := disableConftestExports(projectRoot, cfg, deletedModules); err != nil {
			logger.Warn("Failed to update test conftest: %v", err)
		}
	}
	return results
}

// disableConftestExports comments out the test root conftest's re-export
// lines for deleted fixture modules. An import of a removed module would
// break test collection outright; everything else in the file stays put.
func disableConftestExports(projectRoot string, cfg *config.Config, modules []string) error {
	path := filepath.Join(projectRoot, cfg.TestRoot, "conftest.py")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	dropped := map[string]bool{}
	for _, m := range modules {
		dropped[m] = true
	}

	lines := strings.Split(string(data), "\n")
	changed := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "from ") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) >= 3 && fields[2] == "import" && dropped[fields[1]] {
			lines[i] = prunedPrefix + line
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return writer.WriteArtifact(path, strings.Join(lines, "\n"))
}

// UpdateTestImports comments out fixture parameters and imports that refer
// to pruned fixtures, leaving a breadcrumb so authors can clean up by hand.
// Returns the paths of modified test files.
func UpdateTestImports(projectRoot string, cfg *config.Config, deleted []string) ([]string, error) {
	if len(deleted) == 0 {
		return nil, nil
	}

	fixtureNames := map[string]bool{}
	for _, dep := range deleted {
		fixtureNames[templates.FixtureName(dep)] = true
	}

	testRoot := filepath.Join(projectRoot, cfg.TestRoot)
	var modified []string

	err := filepath.WalkDir(testRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), "test_") || !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		lines := strings.Split(string(data), "\n")
		changed := false
		for i, line := range lines {
			if !strings.Contains(line, "import") {
				continue
			}
			for name := range fixtureNames {
				if strings.Contains(line, name) {
					lines[i] = prunedPrefix + line
					changed = true
					break
				}
			}
		}

		if changed {
			if err := writer.WriteArtifact(path, strings.Join(lines, "\n")); err != nil {
				logger.Warn("Failed to update %s: %v", path, err)
				return nil
			}
			modified = append(modified, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return modified, err
	}

	sort.Strings(modified)
	return modified, nil
}
