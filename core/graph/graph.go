package graph

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/analyzer"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/discovery"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
)

// Build analyzes every source file in the project and assembles the module
// dependency graph: internal edges between project modules, external edges
// to third-party root packages.
func Build(ctx *models.ProjectContext, cfg *config.Config) (*models.DependencyGraph, error) {
	sources, err := projectSources(ctx.Root, cfg)
	if err != nil {
		return nil, err
	}

	graph := &models.DependencyGraph{}

	type moduleImports struct {
		name    string
		imports models.ClassifiedImports
	}
	var analyzed []moduleImports

	for _, source := range sources {
		analysis, err := analyzer.AnalyzeFile(source, ctx)
		if err != nil {
			logger.Warn("Failed to analyze %s: %v", source, err)
			continue
		}

		moduleName := analyzer.ModulePath(source, ctx.Root)
		pkg, _, _ := strings.Cut(moduleName, ".")

		graph.Nodes = append(graph.Nodes, models.GraphNode{
			Name:             moduleName,
			Path:             source,
			Package:          pkg,
			ExternalDepCount: len(analysis.Imports.ExternalRoots()),
		})
		analyzed = append(analyzed, moduleImports{name: moduleName, imports: analysis.Imports})
	}

	for _, mod := range analyzed {
		for _, ref := range mod.imports.Internal {
			target := ref.Module
			if ref.IsRelative() {
				continue // relative target needs no graph edge of its own
			}
			graph.Edges = append(graph.Edges, models.GraphEdge{
				Source:   mod.name,
				Target:   target,
				EdgeType: "internal",
			})
		}
		for _, root := range mod.imports.ExternalRoots() {
			graph.Edges = append(graph.Edges, models.GraphEdge{
				Source:   mod.name,
				Target:   root,
				EdgeType: "external",
			})
		}
	}

	return graph, nil
}

// ComputeMetrics derives per-module coupling numbers from the graph.
// Coupling weighs external dependencies double: they are the expensive ones
// to stub.
func ComputeMetrics(graph *models.DependencyGraph) map[string]models.ModuleMetrics {
	nodeNames := map[string]bool{}
	for _, n := range graph.Nodes {
		nodeNames[n.Name] = true
	}

	internal := map[string]int{}
	external := map[string]int{}
	dependents := map[string]int{}

	for _, e := range graph.Edges {
		if e.EdgeType == "internal" {
			internal[e.Source]++
			if nodeNames[e.Target] {
				dependents[e.Target]++
			}
		} else {
			external[e.Source]++
		}
	}

	metrics := make(map[string]models.ModuleMetrics, len(graph.Nodes))
	for _, n := range graph.Nodes {
		metrics[n.Name] = models.ModuleMetrics{
			Name:          n.Name,
			InternalDeps:  internal[n.Name],
			ExternalDeps:  external[n.Name],
			Dependents:    dependents[n.Name],
			CouplingScore: float64(external[n.Name])*2.0 + float64(internal[n.Name])*0.5,
		}
	}
	return metrics
}

// projectSources lists analyzable source files, sorted for determinism.
func projectSources(root string, cfg *config.Config) ([]string, error) {
	testRoot := filepath.Join(root, cfg.TestRoot)
	var sources []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path == testRoot || (path != root && (strings.HasPrefix(name, ".") || isExcluded(name, cfg))) {
				return filepath.SkipDir
			}
			return nil
		}
		if discovery.IsSourceFile(path, root, cfg) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(sources)
	return sources, nil
}

func isExcluded(name string, cfg *config.Config) bool {
	for _, excluded := range cfg.ExcludeDirs {
		if name == excluded {
			return true
		}
	}
	return false
}
