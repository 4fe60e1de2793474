package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/testsmith-io/testsmith/core/analyzer"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/merge"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/planner"
	"github.com/testsmith-io/testsmith/core/templates"
	"github.com/testsmith-io/testsmith/core/writer"
)

// BodySource fills test bodies for public members. The generator works the
// same with or without one; a failing source degrades to plain stubs.
type BodySource interface {
	GenerateBodies(ctx context.Context, analysis *models.AnalysisResult, fixtures []string) (map[string][]string, error)
}

// TestGenerator runs the full pipeline for one source file: analyze,
// classify, plan, merge, write. All mutation happens in the apply phase;
// everything before it only reads.
type TestGenerator struct {
	cfg    *config.Config
	ctx    *models.ProjectContext
	DryRun bool
	Bodies BodySource
}

func NewTestGenerator(ctx *models.ProjectContext, cfg *config.Config) *TestGenerator {
	return &TestGenerator{cfg: cfg, ctx: ctx}
}

// FileResult collects per-artifact outcomes for one processed source file.
// Artifact failures are reported here individually, never by aborting the
// remaining operations.
type FileResult struct {
	Source   string
	Plan     *models.Plan
	Fixtures []writer.Result
	Test     writer.Result
	Registry writer.Result
	Err      error
}

func (r *FileResult) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, f := range r.Fixtures {
		if f.Err != nil {
			return true
		}
	}
	return r.Test.Err != nil || r.Registry.Err != nil
}

// ProcessFile runs analysis and planning, then applies the plan.
func (g *TestGenerator) ProcessFile(sourcePath string) *FileResult {
	result := &FileResult{Source: sourcePath}

	analysis, err := analyzer.AnalyzeFile(sourcePath, g.ctx)
	if err != nil {
		result.Err = err
		return result
	}

	state := planner.GatherState(analysis, g.cfg)
	plan := planner.BuildPlan(analysis, state, g.cfg)
	result.Plan = plan

	if logger.IsVerbose() {
		logger.Debug("Plan for %s:\n%s", sourcePath, spew.Sdump(plan))
	}

	if g.DryRun {
		logger.Info("[dry-run] %s: %d fixture op(s), test %s, registry %s",
			sourcePath, len(plan.Fixtures), plan.Test.Kind, plan.Registry.Kind)
		return result
	}

	g.applyFixtures(plan, result)
	g.applyTest(analysis, plan, result)
	g.applyRegistry(plan, result)

	return result
}

func (g *TestGenerator) applyFixtures(plan *models.Plan, result *FileResult) {
	wroteAny := false

	for _, op := range plan.Fixtures {
		res := writer.Result{Path: op.Path, Action: "skipped"}

		switch op.Kind {
		case models.OpCreate:
			content, err := templates.RenderFixture(op.Dep, op.Submodules)
			if err == nil {
				err = writer.WriteArtifact(op.Path, content)
			}
			if err != nil {
				res.Err = fmt.Errorf("fixture for %s: %w", op.Dep, err)
			} else {
				res.Action = "created"
				wroteAny = true
				logger.Info("Created fixture for %s: %s", op.Dep, filepath.Base(op.Path))
			}

		case models.OpMerge:
			res.Err = g.mergeFixture(op)
			if res.Err == nil {
				res.Action = "updated"
				wroteAny = true
				logger.Info("Updated fixture for %s with %v", op.Dep, op.Missing)
			}

		case models.OpNoop:
			logger.Debug("Fixture for %s already covers all sub-modules", op.Dep)
		}

		result.Fixtures = append(result.Fixtures, res)
	}

	if wroteAny {
		if err := g.refreshTestConftest(); err != nil {
			logger.Warn("Failed to refresh test conftest: %v", err)
		}
	}
}

func (g *TestGenerator) mergeFixture(op models.FixtureOp) error {
	data, err := os.ReadFile(op.Path)
	if err != nil {
		return fmt.Errorf("fixture for %s: %w", op.Dep, err)
	}

	updated, err := merge.AppendFixtureSubmodules(string(data), op.Dep, op.Missing)
	if err != nil {
		return fmt.Errorf("fixture for %s: %w", op.Dep, err)
	}

	if err := writer.WriteArtifact(op.Path, updated); err != nil {
		return fmt.Errorf("fixture for %s: %w", op.Dep, err)
	}
	return nil
}

// refreshTestConftest keeps the test root's conftest re-exporting every mock
// fixture. pytest only applies a conftest to tests beneath its directory, so
// the re-exports live at the test root where every generated test sits under
// them. A conftest that already exists is merged, never rebuilt: missing
// import lines are appended and everything else stays put.
func (g *TestGenerator) refreshTestConftest() error {
	modules, err := fixtureModules(filepath.Join(g.ctx.Root, g.cfg.FixtureDir), g.cfg.FixtureSuffix)
	if err != nil {
		return err
	}

	path := filepath.Join(g.ctx.Root, g.cfg.TestRoot, "conftest.py")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content, err := templates.RenderFixtureConftest(modules, g.cfg.FixtureSuffix)
		if err != nil {
			return err
		}
		return writer.WriteArtifact(path, content)
	}
	if err != nil {
		return err
	}

	updated := merge.AppendFixtureExports(string(data), templates.FixtureImports(modules, g.cfg.FixtureSuffix))
	if updated == string(data) {
		return nil
	}
	return writer.WriteArtifact(path, updated)
}

// fixtureModules lists the fixture module names in dir, sorted.
func fixtureModules(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var modules []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		modules = append(modules, strings.TrimSuffix(name, ".py"))
	}
	sort.Strings(modules)
	return modules, nil
}

func (g *TestGenerator) applyTest(analysis *models.AnalysisResult, plan *models.Plan, result *FileResult) {
	result.Test = writer.Result{Path: plan.Test.Path, Action: "skipped"}

	if plan.Test.Kind != models.OpCreate {
		logger.Debug("Test file already present: %s", plan.Test.Path)
		return
	}

	fixtures := fixtureNames(analysis)

	var bodies map[string][]string
	if g.Bodies != nil {
		var err error
		bodies, err = g.Bodies.GenerateBodies(context.Background(), analysis, fixtures)
		if err != nil {
			logger.Warn("Body generation failed, falling back to stubs: %v", err)
			bodies = nil
		}
	}

	content, err := renderTestFile(analysis, fixtures, bodies)
	if err != nil {
		result.Test.Err = err
		return
	}

	testRoot := filepath.Join(g.ctx.Root, g.cfg.TestRoot)
	if _, err := writer.EnsureInitFiles(filepath.Dir(plan.Test.Path), testRoot); err != nil {
		result.Test.Err = err
		return
	}

	if err := writer.WriteArtifact(plan.Test.Path, content); err != nil {
		result.Test.Err = err
		return
	}

	result.Test.Action = "created"
	logger.Info("Created test file: %s", plan.Test.Path)
}

func (g *TestGenerator) applyRegistry(plan *models.Plan, result *FileResult) {
	result.Registry = writer.Result{Path: plan.Registry.Path, Action: "skipped"}
	op := plan.Registry

	relSource, err := filepath.Rel(g.ctx.Root, plan.Source)
	if err != nil {
		relSource = filepath.Base(plan.Source)
	}
	relSource = filepath.ToSlash(relSource)

	switch op.Kind {
	case models.OpCreate:
		content, err := templates.RenderConftest(g.cfg.RegistryVar, op.Missing, relSource)
		if err == nil {
			err = writer.WriteArtifact(op.Path, content)
		}
		if err != nil {
			result.Registry.Err = fmt.Errorf("registry: %w", err)
			return
		}
		result.Registry.Action = "created"
		logger.Info("Created %s with %d path entries", filepath.Base(op.Path), len(op.Missing))

	case models.OpMerge:
		data, err := os.ReadFile(op.Path)
		if err != nil {
			result.Registry.Err = fmt.Errorf("registry: %w", err)
			return
		}
		updated, err := merge.AppendRegistryEntries(string(data), g.cfg.RegistryVar, op.Missing, relSource)
		if err != nil {
			result.Registry.Err = fmt.Errorf("registry: %w", err)
			return
		}
		if err := writer.WriteArtifact(op.Path, updated); err != nil {
			result.Registry.Err = fmt.Errorf("registry: %w", err)
			return
		}
		result.Registry.Action = "updated"
		logger.Info("Registered %d new path(s) in %s", len(op.Missing), filepath.Base(op.Path))

	case models.OpNoop:
		logger.Debug("All required paths already registered")
	}
}

// fixtureNames lists the fixture parameters in scope for this file's tests:
// one per external root package, sorted.
func fixtureNames(analysis *models.AnalysisResult) []string {
	roots := analysis.Imports.ExternalRoots()
	names := make([]string, 0, len(roots))
	for _, dep := range roots {
		names = append(names, templates.FixtureName(dep))
	}
	sort.Strings(names)
	return names
}

func renderTestFile(analysis *models.AnalysisResult, fixtures []string, bodies map[string][]string) (string, error) {
	modulePath := analyzer.ModulePath(analysis.SourcePath, analysis.Project.Root)

	var importLine string
	if len(analysis.PublicAPI) > 0 {
		names := make([]string, 0, len(analysis.PublicAPI))
		for _, m := range analysis.PublicAPI {
			names = append(names, m.Name)
		}
		sort.Strings(names)
		importLine = fmt.Sprintf("from %s import %s", modulePath, strings.Join(names, ", "))
	}

	var members []templates.TestMember
	for _, m := range analysis.PublicAPI {
		member := templates.TestMember{
			Name:      m.Name,
			ClassName: testClassName(m),
			Body:      bodies[m.Name],
		}

		if member.Body == nil {
			params := append([]string{"self"}, fixtures...)
			paramList := strings.Join(params, ", ")

			if m.Kind == "class" {
				for _, method := range m.Methods {
					member.Tests = append(member.Tests, templates.TestCase{
						DefLine: fmt.Sprintf("def test_%s(%s):", method, paramList),
						Doc:     fmt.Sprintf("Test %s.%s.", m.Name, method),
					})
				}
			} else {
				member.Tests = append(member.Tests, templates.TestCase{
					DefLine: fmt.Sprintf("def test_%s(%s):", m.Name, paramList),
					Doc:     fmt.Sprintf("Test %s.", m.Name),
				})
			}
		}

		members = append(members, member)
	}

	return templates.RenderTestFile(modulePath, importLine, members)
}

func testClassName(m models.PublicMember) string {
	if m.Kind == "class" {
		return "Test" + m.Name
	}
	var b strings.Builder
	b.WriteString("Test")
	for _, part := range strings.Split(m.Name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}
