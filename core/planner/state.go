package planner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/merge"
	"github.com/testsmith-io/testsmith/core/models"
)

func conftestPath(projectRoot string, cfg *config.Config) string {
	return filepath.Join(projectRoot, cfg.Conftest)
}

// GatherState inspects the on-disk state of every artifact a plan for this
// analysis could touch. This is the only read I/O planning needs; BuildPlan
// itself stays pure.
func GatherState(analysis *models.AnalysisResult, cfg *config.Config) *models.ExistingState {
	root := analysis.Project.Root

	state := &models.ExistingState{
		Fixtures:        map[string]models.FixtureState{},
		RegistryEntries: analysis.Project.RegistryEntries,
	}

	deps := analysis.Imports.ExternalRoots()
	sort.Strings(deps)

	for _, dep := range deps {
		path := FixturePath(dep, root, cfg)
		fixture := models.FixtureState{Path: path, Submodules: map[string]bool{}}

		if data, err := os.ReadFile(path); err == nil {
			fixture.Exists = true
			fixture.Submodules = merge.ParseFixtureSubmodules(string(data), dep)
		}
		state.Fixtures[dep] = fixture
	}

	if _, err := os.Stat(TestPath(analysis.SourcePath, root, cfg)); err == nil {
		state.TestExists = true
	}

	if _, err := os.Stat(conftestPath(root, cfg)); err == nil {
		state.ConftestExists = true
	}

	return state
}
