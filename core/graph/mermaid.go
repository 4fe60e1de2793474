package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/models"
)

// RenderMermaid renders the dependency graph as a Mermaid diagram wrapped in
// a fenced markdown block. Internal modules are grouped into per-package
// subgraphs and color-coded by coupling score.
func RenderMermaid(graph *models.DependencyGraph, metrics map[string]models.ModuleMetrics) string {
	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("graph TD\n\n")

	packages := map[string][]models.GraphNode{}
	for _, node := range graph.Nodes {
		packages[node.Package] = append(packages[node.Package], node)
	}

	externalSet := map[string]bool{}
	for _, edge := range graph.Edges {
		if edge.EdgeType == "external" {
			externalSet[edge.Target] = true
		}
	}

	packageNames := make([]string, 0, len(packages))
	for name := range packages {
		packageNames = append(packageNames, name)
	}
	sort.Strings(packageNames)

	for _, pkg := range packageNames {
		fmt.Fprintf(&b, "    subgraph %s\n", pkg)
		for _, node := range packages[pkg] {
			style := ""
			if metric, ok := metrics[node.Name]; ok {
				switch {
				case metric.CouplingScore < 2:
					style = ":::lowCoupling"
				case metric.CouplingScore < 5:
					style = ":::mediumCoupling"
				default:
					style = ":::highCoupling"
				}
			}
			fmt.Fprintf(&b, "        %s[%s]%s\n", nodeID(node.Name), node.Name, style)
		}
		b.WriteString("    end\n\n")
	}

	if len(externalSet) > 0 {
		externals := make([]string, 0, len(externalSet))
		for name := range externalSet {
			externals = append(externals, name)
		}
		sort.Strings(externals)

		b.WriteString("    subgraph External\n")
		for _, ext := range externals {
			fmt.Fprintf(&b, "        %s[%s]:::external\n", nodeID(ext), ext)
		}
		b.WriteString("    end\n\n")
	}

	for _, edge := range graph.Edges {
		arrow := "-->"
		if edge.EdgeType == "external" {
			arrow = "-.->"
		}
		fmt.Fprintf(&b, "    %s %s %s\n", nodeID(edge.Source), arrow, nodeID(edge.Target))
	}

	b.WriteString("\n")
	b.WriteString("    classDef lowCoupling fill:#90EE90,stroke:#333,stroke-width:2px\n")
	b.WriteString("    classDef mediumCoupling fill:#FFD700,stroke:#333,stroke-width:2px\n")
	b.WriteString("    classDef highCoupling fill:#FF6347,stroke:#333,stroke-width:2px\n")
	b.WriteString("    classDef external fill:#87CEEB,stroke:#333,stroke-width:2px\n")
	b.WriteString("```")
	return b.String()
}

// RenderMetricsTable renders per-module coupling metrics as a markdown table
// sorted by coupling score descending.
func RenderMetricsTable(metrics map[string]models.ModuleMetrics) string {
	sorted := make([]models.ModuleMetrics, 0, len(metrics))
	for _, m := range metrics {
		sorted = append(sorted, m)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CouplingScore != sorted[j].CouplingScore {
			return sorted[i].CouplingScore > sorted[j].CouplingScore
		}
		return sorted[i].Name < sorted[j].Name
	})

	var b strings.Builder
	b.WriteString("## Module Coupling Metrics\n\n")
	b.WriteString("| Module | Internal Deps | External Deps | Dependents | Coupling Score |\n")
	b.WriteString("|--------|---------------|---------------|------------|----------------|\n")
	for _, m := range sorted {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %.1f |\n",
			m.Name, m.InternalDeps, m.ExternalDeps, m.Dependents, m.CouplingScore)
	}
	b.WriteString("\n**Legend:**\n")
	b.WriteString("- **Coupling Score** = (External Deps x 2) + (Internal Deps x 0.5)\n")
	b.WriteString("- Higher scores indicate modules that are harder to test in isolation\n")
	return b.String()
}

// nodeID makes a module name safe for Mermaid node identifiers.
func nodeID(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
