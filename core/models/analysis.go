package models

import "strings"

// Classification of a single import reference.
type Classification int

const (
	Stdlib Classification = iota
	Internal
	External
)

func (c Classification) String() string {
	switch c {
	case Stdlib:
		return "stdlib"
	case Internal:
		return "internal"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Reference is one import statement extracted from a source file.
type Reference struct {
	Module string   // dotted path, e.g. "stripe.checkout"; leading dots for relative
	Names  []string // names pulled in by a from-import
	Alias  string   // alias of a plain "import x as y"
	IsFrom bool
	Line   int
}

func (r Reference) IsRelative() bool {
	return strings.HasPrefix(r.Module, ".")
}

// RootPackage returns the segment before the first dot.
func (r Reference) RootPackage() string {
	if r.Module == "" {
		return ""
	}
	return strings.SplitN(r.Module, ".", 2)[0]
}

// ClassifiedImports holds a file's references bucketed by classification.
type ClassifiedImports struct {
	Stdlib   []Reference
	Internal []Reference
	External []Reference
}

// ExternalRoots returns the distinct root packages of the external references,
// in first-seen order.
func (c ClassifiedImports) ExternalRoots() []string {
	seen := map[string]bool{}
	var roots []string
	for _, ref := range c.External {
		root := ref.RootPackage()
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}
	return roots
}

// PublicMember is a public top-level class or function.
type PublicMember struct {
	Name    string
	Kind    string // "class" or "function"
	Params  []string
	Methods []string // public method names, classes only
}

// ProjectContext is the immutable per-invocation view of the project:
// detected root, package name to absolute path mapping, and the path entries
// already registered in the root conftest. Built once, then only read.
type ProjectContext struct {
	Root            string
	PackageMap      map[string]string
	ConftestPath    string // "" when no conftest exists yet
	RegistryEntries []string
}

// AnalysisResult is the full structural summary for one source file.
type AnalysisResult struct {
	SourcePath string
	ModuleName string
	Imports    ClassifiedImports
	PublicAPI  []PublicMember
	Project    *ProjectContext
}
