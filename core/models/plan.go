package models

// OpKind is the write decision for one artifact.
type OpKind int

const (
	OpNoop OpKind = iota
	OpCreate
	OpMerge
)

func (k OpKind) String() string {
	switch k {
	case OpNoop:
		return "no-op"
	case OpCreate:
		return "create"
	case OpMerge:
		return "merge-append"
	default:
		return "unknown"
	}
}

// FixtureOp targets the shared mock fixture for one external root package.
type FixtureOp struct {
	Dep        string
	Path       string
	Kind       OpKind
	Submodules []string // full submodule set, create only
	Missing    []string // submodules to append, merge only
}

// TestOp targets the mirrored test skeleton. Once the file exists the op is
// always a no-op: the test file belongs to its author.
type TestOp struct {
	Path string
	Kind OpKind
}

// RegistryOp targets the conftest path registry.
type RegistryOp struct {
	Path    string
	Kind    OpKind
	Missing []string // path entries to append
}

// Plan is the complete operation set for one source file. Computing it does
// no writes; applying it is the merge engine's and writer's job.
type Plan struct {
	Source   string
	Fixtures []FixtureOp
	Test     TestOp
	Registry RegistryOp
}

// FixtureState is the observed on-disk state of one fixture artifact.
type FixtureState struct {
	Path       string
	Exists     bool
	Submodules map[string]bool
}

// ExistingState is everything the planner needs to know about disk, gathered
// up front so planning itself stays pure.
type ExistingState struct {
	Fixtures        map[string]FixtureState // keyed by dep root package
	TestExists      bool
	ConftestExists  bool
	RegistryEntries []string
}
