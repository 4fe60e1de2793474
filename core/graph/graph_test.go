package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/project"
)

func buildTestGraph(t *testing.T) (*models.DependencyGraph, map[string]models.ModuleMetrics) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), nil, 0o644))

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("app/__init__.py", "")
	write("app/api.py", "import stripe\nimport app.core\n\n\ndef handle():\n    pass\n")
	write("app/core.py", "import os\n\n\ndef work():\n    pass\n")

	cfg := config.Default()
	ctx, err := project.BuildContext(root, cfg)
	require.NoError(t, err)

	g, err := Build(ctx, cfg)
	require.NoError(t, err)
	return g, ComputeMetrics(g)
}

func TestBuildGraph(t *testing.T) {
	g, _ := buildTestGraph(t)

	names := map[string]bool{}
	for _, n := range g.Nodes {
		names[n.Name] = true
	}
	assert.True(t, names["app.api"])
	assert.True(t, names["app.core"])

	var internal, external int
	for _, e := range g.Edges {
		switch e.EdgeType {
		case "internal":
			internal++
		case "external":
			external++
			assert.Equal(t, "stripe", e.Target)
		}
	}
	assert.Equal(t, 1, internal)
	assert.Equal(t, 1, external)
}

func TestComputeMetrics(t *testing.T) {
	_, metrics := buildTestGraph(t)

	api := metrics["app.api"]
	assert.Equal(t, 1, api.InternalDeps)
	assert.Equal(t, 1, api.ExternalDeps)
	assert.InDelta(t, 2.5, api.CouplingScore, 0.001)

	core := metrics["app.core"]
	assert.Equal(t, 1, core.Dependents)
	assert.Equal(t, 0, core.ExternalDeps)
}

func TestRenderMermaid(t *testing.T) {
	g, metrics := buildTestGraph(t)
	out := RenderMermaid(g, metrics)

	assert.Contains(t, out, "```mermaid")
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "subgraph app")
	assert.Contains(t, out, "subgraph External")
	assert.Contains(t, out, "app_api[app.api]")
	assert.Contains(t, out, "stripe[stripe]:::external")
	assert.Contains(t, out, "app_api -.-> stripe")
	assert.Contains(t, out, "app_api --> app_core")
	assert.Contains(t, out, "classDef highCoupling")
}

func TestRenderMetricsTable(t *testing.T) {
	_, metrics := buildTestGraph(t)
	out := RenderMetricsTable(metrics)

	assert.Contains(t, out, "## Module Coupling Metrics")
	assert.Contains(t, out, "| Module | Internal Deps | External Deps | Dependents | Coupling Score |")
	assert.Contains(t, out, "| app.api | 1 | 1 | 0 | 2.5 |")
	assert.Contains(t, out, "**Legend:**")
}
