package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcMap = template.FuncMap{
	"sanitize": Sanitize,
	"join":     strings.Join,
}

func render(name string, data interface{}) (string, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// Sanitize maps a dependency name onto a valid Python identifier fragment.
func Sanitize(name string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}

// FixtureName is the fixture function generated for a dependency,
// e.g. "stripe" -> "mock_stripe".
func FixtureName(dep string) string {
	return "mock_" + Sanitize(dep)
}

type fixtureData struct {
	Dep         string
	FixtureName string
	Suffixes    []string
}

// RenderFixture produces a complete shared fixture file for one external
// dependency. suffixes are sub-module paths relative to dep ("checkout",
// "checkout.session"); they are sorted so output is deterministic.
func RenderFixture(dep string, suffixes []string) (string, error) {
	sorted := append([]string(nil), suffixes...)
	sort.Strings(sorted)

	return render("fixture.py.tmpl", fixtureData{
		Dep:         dep,
		FixtureName: FixtureName(dep),
		Suffixes:    sorted,
	})
}

// TestCase is one generated test method.
type TestCase struct {
	DefLine string
	Doc     string
}

// TestMember is one public declaration's slot in the generated test file.
type TestMember struct {
	Name      string
	ClassName string
	Body      []string // filled bodies, indented lines, optional
	Tests     []TestCase
}

type testFileData struct {
	ModulePath string
	ImportLine string
	Members    []TestMember
}

// RenderTestFile produces the mirrored test skeleton for a source module.
func RenderTestFile(modulePath, importLine string, members []TestMember) (string, error) {
	return render("test_file.py.tmpl", testFileData{
		ModulePath: modulePath,
		ImportLine: importLine,
		Members:    members,
	})
}

type fixtureConftestData struct {
	Imports []FixtureImport
}

// FixtureImport is one mock fixture re-export: the fixture module name and
// the fixture function it defines.
type FixtureImport struct {
	Module  string
	Fixture string
}

// FixtureImports pairs each fixture module with its fixture function name.
func FixtureImports(modules []string, fixtureSuffix string) []FixtureImport {
	suffix := strings.TrimSuffix(fixtureSuffix, ".py")

	imports := make([]FixtureImport, 0, len(modules))
	for _, mod := range modules {
		dep := strings.TrimSuffix(mod, suffix)
		imports = append(imports, FixtureImport{
			Module:  mod,
			Fixture: FixtureName(dep),
		})
	}
	return imports
}

// RenderFixtureConftest produces the test root's conftest, which re-exports
// every mock fixture so tests anywhere under the test tree can request them
// by parameter name without explicit imports. The fixture directory itself
// is on sys.path through the path registry, so the imports are absolute.
func RenderFixtureConftest(modules []string, fixtureSuffix string) (string, error) {
	return render("fixtures_conftest.py.tmpl",
		fixtureConftestData{Imports: FixtureImports(modules, fixtureSuffix)})
}

type conftestEntry struct {
	Path   string
	Source string
}

type conftestData struct {
	VarName string
	Entries []conftestEntry
}

// RenderConftest produces the path registration block: the registry variable
// plus the pytest_configure hook that applies it. Each entry is tagged with
// the source file that required it.
func RenderConftest(varName string, entries []string, source string) (string, error) {
	data := conftestData{VarName: varName}
	for _, e := range entries {
		data.Entries = append(data.Entries, conftestEntry{Path: e, Source: source})
	}
	return render("conftest.py.tmpl", data)
}
