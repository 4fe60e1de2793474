package planner

import (
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/models"
)

// RequiredSubmodules collects the sub-module suffixes a source file needs
// mocked for one external dependency: every dotted module path under dep,
// relative to it. "import pkg.sub" and "from pkg.sub import X" both yield
// "sub"; a bare "import pkg" yields nothing beyond the root mock.
func RequiredSubmodules(refs []models.Reference, dep string) []string {
	prefix := dep + "."
	seen := map[string]bool{}
	var subs []string

	for _, ref := range refs {
		if !strings.HasPrefix(ref.Module, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(ref.Module, prefix)
		if suffix == "" || seen[suffix] {
			continue
		}
		seen[suffix] = true
		subs = append(subs, suffix)
	}

	sort.Strings(subs)
	return subs
}

// BuildPlan computes the full operation set for one analyzed source file.
// It is pure: existing disk state arrives pre-gathered, and identical inputs
// always produce the identical plan. Nothing here writes.
func BuildPlan(analysis *models.AnalysisResult, state *models.ExistingState, cfg *config.Config) *models.Plan {
	plan := &models.Plan{Source: analysis.SourcePath}
	root := analysis.Project.Root

	deps := analysis.Imports.ExternalRoots()
	sort.Strings(deps)

	for _, dep := range deps {
		required := RequiredSubmodules(analysis.Imports.External, dep)
		op := models.FixtureOp{
			Dep:  dep,
			Path: FixturePath(dep, root, cfg),
		}

		existing, ok := state.Fixtures[dep]
		switch {
		case !ok || !existing.Exists:
			op.Kind = models.OpCreate
			op.Submodules = required
		default:
			for _, sub := range required {
				if !existing.Submodules[sub] {
					op.Missing = append(op.Missing, sub)
				}
			}
			if len(op.Missing) > 0 {
				op.Kind = models.OpMerge
			} else {
				op.Kind = models.OpNoop
			}
		}

		plan.Fixtures = append(plan.Fixtures, op)
	}

	testPath := TestPath(analysis.SourcePath, root, cfg)
	plan.Test = models.TestOp{Path: testPath, Kind: models.OpCreate}
	if state.TestExists {
		// Once a test file exists it belongs to its author, complete or not.
		plan.Test.Kind = models.OpNoop
	}

	registered := map[string]bool{}
	for _, e := range state.RegistryEntries {
		registered[e] = true
	}

	registry := models.RegistryOp{
		Path: conftestPath(root, cfg),
		Kind: models.OpNoop,
	}
	for _, p := range RequiredRegistryPaths(analysis.SourcePath, testPath, root, cfg) {
		if !registered[p] {
			registry.Missing = append(registry.Missing, p)
		}
	}
	if len(registry.Missing) > 0 {
		if state.ConftestExists {
			registry.Kind = models.OpMerge
		} else {
			registry.Kind = models.OpCreate
		}
	}
	plan.Registry = registry

	return plan
}
