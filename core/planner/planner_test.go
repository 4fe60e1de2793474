package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/templates"
	"github.com/testsmith-io/testsmith/core/writer"
)

func analysisFor(root string) *models.AnalysisResult {
	return &models.AnalysisResult{
		SourcePath: filepath.Join(root, "src", "billing.py"),
		ModuleName: "billing",
		Imports: models.ClassifiedImports{
			Stdlib:   []models.Reference{{Module: "os"}},
			Internal: []models.Reference{{Module: "myapp.helpers"}},
			External: []models.Reference{
				{Module: "pkg.sub", Names: []string{"Thing"}, IsFrom: true},
			},
		},
		PublicAPI: []models.PublicMember{{Name: "charge", Kind: "function"}},
		Project:   &models.ProjectContext{Root: root},
	}
}

func TestRequiredSubmodules(t *testing.T) {
	refs := []models.Reference{
		{Module: "stripe"},
		{Module: "stripe.checkout"},
		{Module: "stripe.billing.invoices"},
		{Module: "stripe.checkout"}, // duplicate
		{Module: "redis.client"},
	}

	subs := RequiredSubmodules(refs, "stripe")
	assert.Equal(t, []string{"billing.invoices", "checkout"}, subs)
}

func TestBuildPlanFreshProject(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)

	state := GatherState(analysis, cfg)
	plan := BuildPlan(analysis, state, cfg)

	require.Len(t, plan.Fixtures, 1)
	fx := plan.Fixtures[0]
	assert.Equal(t, "pkg", fx.Dep)
	assert.Equal(t, models.OpCreate, fx.Kind)
	assert.Equal(t, []string{"sub"}, fx.Submodules)
	assert.Equal(t, filepath.Join(root, "tests", "fixtures", "pkg_fixture.py"), fx.Path)

	assert.Equal(t, models.OpCreate, plan.Test.Kind)
	assert.Equal(t, filepath.Join(root, "tests", "src", "test_billing.py"), plan.Test.Path)

	assert.Equal(t, models.OpCreate, plan.Registry.Kind)
	assert.Equal(t, []string{"src", "tests/src", "tests/fixtures"}, plan.Registry.Missing)
}

func TestBuildPlanSecondRunAllNoop(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)

	// Materialize all three artifacts as a first run would.
	fixture, err := templates.RenderFixture("pkg", []string{"sub"})
	require.NoError(t, err)
	require.NoError(t, writer.WriteArtifact(filepath.Join(root, "tests", "fixtures", "pkg_fixture.py"), fixture))
	require.NoError(t, writer.WriteArtifact(filepath.Join(root, "tests", "src", "test_billing.py"), "# test\n"))

	conftest, err := templates.RenderConftest("paths_to_add", []string{"src", "tests/src", "tests/fixtures"}, "src/billing.py")
	require.NoError(t, err)
	require.NoError(t, writer.WriteArtifact(filepath.Join(root, "conftest.py"), conftest))
	analysis.Project.RegistryEntries = []string{"src", "tests/src", "tests/fixtures"}

	state := GatherState(analysis, cfg)
	plan := BuildPlan(analysis, state, cfg)

	require.Len(t, plan.Fixtures, 1)
	assert.Equal(t, models.OpNoop, plan.Fixtures[0].Kind)
	assert.Equal(t, models.OpNoop, plan.Test.Kind)
	assert.Equal(t, models.OpNoop, plan.Registry.Kind)
}

func TestBuildPlanMergesMissingSubmodules(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)
	analysis.Imports.External = append(analysis.Imports.External,
		models.Reference{Module: "pkg.other"})

	fixture, err := templates.RenderFixture("pkg", []string{"sub"})
	require.NoError(t, err)
	require.NoError(t, writer.WriteArtifact(filepath.Join(root, "tests", "fixtures", "pkg_fixture.py"), fixture))

	state := GatherState(analysis, cfg)
	plan := BuildPlan(analysis, state, cfg)

	require.Len(t, plan.Fixtures, 1)
	assert.Equal(t, models.OpMerge, plan.Fixtures[0].Kind)
	assert.Equal(t, []string{"other"}, plan.Fixtures[0].Missing)
}

func TestBuildPlanTestFileImmunity(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)

	// An existing test is never touched, even a stub.
	require.NoError(t, writer.WriteArtifact(filepath.Join(root, "tests", "src", "test_billing.py"), "# half-finished\n"))

	state := GatherState(analysis, cfg)
	plan := BuildPlan(analysis, state, cfg)

	assert.Equal(t, models.OpNoop, plan.Test.Kind)
}

func TestBuildPlanRegistryMergeDiff(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "conftest.py"),
		[]byte("paths_to_add = [\n    \"src\",\n]\n"), 0o644))
	analysis.Project.RegistryEntries = []string{"src"}

	state := GatherState(analysis, cfg)
	plan := BuildPlan(analysis, state, cfg)

	assert.Equal(t, models.OpMerge, plan.Registry.Kind)
	assert.Equal(t, []string{"tests/src", "tests/fixtures"}, plan.Registry.Missing)
}

func TestBuildPlanPure(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	analysis := analysisFor(root)

	state := GatherState(analysis, cfg)
	first := BuildPlan(analysis, state, cfg)
	second := BuildPlan(analysis, state, cfg)

	assert.Equal(t, first, second)
}

func TestFixturePathSanitizes(t *testing.T) {
	cfg := config.Default()
	path := FixturePath("ruamel.yaml", "/project", cfg)
	assert.Equal(t, filepath.Join("/project", "tests", "fixtures", "ruamel_yaml_fixture.py"), path)
}

func TestRequiredRegistryPathsDedup(t *testing.T) {
	cfg := config.Default()
	root := "/project"
	source := filepath.Join(root, "app.py")
	test := TestPath(source, root, cfg)

	paths := RequiredRegistryPaths(source, test, root, cfg)
	assert.Equal(t, []string{".", "tests", "tests/fixtures"}, paths)
}
