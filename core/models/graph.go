package models

// GraphNode is one project module in the dependency graph.
type GraphNode struct {
	Name             string
	Path             string
	Package          string
	ExternalDepCount int
}

type GraphEdge struct {
	Source   string
	Target   string
	EdgeType string // "internal" or "external"
}

type DependencyGraph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// ModuleMetrics summarizes coupling for one module.
type ModuleMetrics struct {
	Name          string
	InternalDeps  int
	ExternalDeps  int
	Dependents    int
	CouplingScore float64
}

// CoverageStatus for a source file's companion test.
type CoverageStatus string

const (
	CoverageNoTest       CoverageStatus = "no_test"
	CoverageSkeletonOnly CoverageStatus = "skeleton_only"
	CoveragePartial      CoverageStatus = "partial"
	CoverageCovered      CoverageStatus = "covered"
)

// CoverageGap is one prioritized uncovered or under-covered source file.
type CoverageGap struct {
	SourcePath       string
	Status           CoverageStatus
	PriorityScore    float64
	ExternalDeps     int
	Dependents       int
	SuggestedCommand string
}
