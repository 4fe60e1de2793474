package maintenance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/models"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectCoverage(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	noTest := write(t, root, "src/untested.py", "def f():\n    pass\n")
	skeleton := write(t, root, "src/stubbed.py", "def g():\n    pass\n")
	partial := write(t, root, "src/partial.py", "def h():\n    pass\n")
	covered := write(t, root, "src/done.py", "def k():\n    pass\n")

	write(t, root, "tests/src/test_stubbed.py", "class TestG:\n    def test_g(self):\n        # TODO: Implement test\n        pass\n")
	write(t, root, "tests/src/test_partial.py", "def test_h():\n    assert h() is None\n\ndef test_h_edge():\n    # TODO: Implement test\n    pass\n")
	write(t, root, "tests/src/test_done.py", "def test_k():\n    assert k() is None\n")

	coverage, err := DetectCoverage(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, models.CoverageNoTest, coverage[noTest])
	assert.Equal(t, models.CoverageSkeletonOnly, coverage[skeleton])
	assert.Equal(t, models.CoveragePartial, coverage[partial])
	assert.Equal(t, models.CoverageCovered, coverage[covered])
}

func TestDetectCoverageFlatLayoutFallback(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	source := write(t, root, "src/flat.py", "def f():\n    pass\n")
	write(t, root, "tests/test_flat.py", "def test_f():\n    assert True\n")

	coverage, err := DetectCoverage(root, cfg)
	require.NoError(t, err)
	assert.Equal(t, models.CoverageCovered, coverage[source])
}

func TestPrioritizeGaps(t *testing.T) {
	coverage := map[string]models.CoverageStatus{
		"/p/src/heavy.py":   models.CoverageNoTest,
		"/p/src/light.py":   models.CoverageNoTest,
		"/p/src/stubbed.py": models.CoverageSkeletonOnly,
		"/p/src/done.py":    models.CoverageCovered,
	}
	metrics := map[string]models.ModuleMetrics{
		"src.heavy": {Name: "src.heavy", ExternalDeps: 3, Dependents: 2},
		"src.light": {Name: "src.light"},
	}

	gaps := PrioritizeGaps(coverage, metrics)
	require.Len(t, gaps, 3)

	// heavy: 3*2 + 2*3 + 1.0 = 13
	assert.Equal(t, "/p/src/heavy.py", gaps[0].SourcePath)
	assert.InDelta(t, 13.0, gaps[0].PriorityScore, 0.001)

	// Covered files never appear as gaps.
	for _, gap := range gaps {
		assert.NotEqual(t, "/p/src/done.py", gap.SourcePath)
	}

	// Untested files suggest generation, stubbed ones suggest body filling.
	assert.Contains(t, gaps[0].SuggestedCommand, "testsmith /p/src/heavy.py")
	for _, gap := range gaps {
		if gap.Status == models.CoverageSkeletonOnly {
			assert.Contains(t, gap.SuggestedCommand, "--bodies")
		}
	}
}

func TestRenderCoverageReport(t *testing.T) {
	coverage := map[string]models.CoverageStatus{
		"/p/a.py": models.CoverageNoTest,
		"/p/b.py": models.CoverageCovered,
	}
	gaps := PrioritizeGaps(coverage, nil)

	report := RenderCoverageReport(gaps, coverage)
	assert.Contains(t, report, "# Coverage Gap Analysis")
	assert.Contains(t, report, "- **Total source files**: 2")
	assert.Contains(t, report, "- **No test**: 1 (50.0%)")
	assert.Contains(t, report, "| 1 | a.py | no_test |")
}

func TestRenderCoverageReportAllCovered(t *testing.T) {
	coverage := map[string]models.CoverageStatus{
		"/p/a.py": models.CoverageCovered,
	}
	report := RenderCoverageReport(nil, coverage)
	assert.Contains(t, report, "All source files have complete test coverage.")
}
