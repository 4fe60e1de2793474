package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/discovery"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/planner"
)

var (
	todoPattern      = regexp.MustCompile(`(?i)#\s*TODO`)
	assertionPattern = regexp.MustCompile(`\bassert\b`)
)

// DetectCoverage classifies every source file by the state of its companion
// test: missing, skeleton stubs only, a mix of stubs and real assertions, or
// fully covered. A test that fails to read counts as missing.
func DetectCoverage(projectRoot string, cfg *config.Config) (map[string]models.CoverageStatus, error) {
	sources, err := sourceFiles(projectRoot, cfg)
	if err != nil {
		return nil, err
	}

	coverage := map[string]models.CoverageStatus{}
	for _, source := range sources {
		testPath := planner.TestPath(source, projectRoot, cfg)
		if _, err := os.Stat(testPath); err != nil {
			// Fall back to a flat layout: tests/test_<stem>.py.
			stem := strings.TrimSuffix(filepath.Base(source), ".py")
			testPath = filepath.Join(projectRoot, cfg.TestRoot, "test_"+stem+".py")
			if _, err := os.Stat(testPath); err != nil {
				coverage[source] = models.CoverageNoTest
				continue
			}
		}
		coverage[source] = classifyTest(testPath)
	}

	return coverage, nil
}

// sourceFiles lists every analyzable source file under the project root.
func sourceFiles(projectRoot string, cfg *config.Config) ([]string, error) {
	var sources []string

	testRoot := filepath.Join(projectRoot, cfg.TestRoot)
	err := filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path == testRoot || (path != projectRoot && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			for _, excluded := range cfg.ExcludeDirs {
				if name == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if discovery.IsSourceFile(path, projectRoot, cfg) {
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

// classifyTest reads a test file and buckets it by stub and assertion counts.
func classifyTest(testPath string) models.CoverageStatus {
	data, err := os.ReadFile(testPath)
	if err != nil {
		return models.CoverageNoTest
	}
	content := string(data)

	todos := len(todoPattern.FindAllString(content, -1))
	assertions := len(assertionPattern.FindAllString(content, -1))

	switch {
	case todos > 0 && assertions == 0:
		return models.CoverageSkeletonOnly
	case todos > 0 && assertions > 0:
		return models.CoveragePartial
	case assertions > 0:
		return models.CoverageCovered
	default:
		return models.CoverageSkeletonOnly
	}
}

// PrioritizeGaps ranks uncovered and under-covered files. Coupling drives
// the score: heavily depended-on modules and modules with many external
// dependencies surface first.
func PrioritizeGaps(coverage map[string]models.CoverageStatus, metrics map[string]models.ModuleMetrics) []models.CoverageGap {
	var gaps []models.CoverageGap

	for sourcePath, status := range coverage {
		if status == models.CoverageCovered {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(sourcePath), ".py")
		metric, ok := metrics[stem]
		if !ok {
			for name, m := range metrics {
				if strings.HasSuffix(name, "."+stem) || name == stem {
					metric = m
					ok = true
					break
				}
			}
		}

		externalDeps, dependents := 0, 0
		if ok {
			externalDeps = metric.ExternalDeps
			dependents = metric.Dependents
		}

		statusWeight := 0.2
		switch status {
		case models.CoverageNoTest:
			statusWeight = 1.0
		case models.CoverageSkeletonOnly:
			statusWeight = 0.5
		}

		command := fmt.Sprintf("testsmith %s", sourcePath)
		if status != models.CoverageNoTest {
			command = fmt.Sprintf("testsmith --bodies %s", sourcePath)
		}

		gaps = append(gaps, models.CoverageGap{
			SourcePath:       sourcePath,
			Status:           status,
			PriorityScore:    float64(externalDeps)*2 + float64(dependents)*3 + statusWeight,
			ExternalDeps:     externalDeps,
			Dependents:       dependents,
			SuggestedCommand: command,
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].PriorityScore != gaps[j].PriorityScore {
			return gaps[i].PriorityScore > gaps[j].PriorityScore
		}
		return gaps[i].SourcePath < gaps[j].SourcePath
	})
	return gaps
}

// RenderCoverageReport renders the gap analysis as markdown: summary
// percentages, a top-20 priority table, and a status legend.
func RenderCoverageReport(gaps []models.CoverageGap, coverage map[string]models.CoverageStatus) string {
	var b strings.Builder
	b.WriteString("# Coverage Gap Analysis\n\n")

	total := len(coverage)
	counts := map[models.CoverageStatus]int{}
	for _, status := range coverage {
		counts[status]++
	}

	statLine := func(label string, n int) {
		if total > 0 {
			fmt.Fprintf(&b, "- **%s**: %d (%.1f%%)\n", label, n, float64(n)/float64(total)*100)
		} else {
			fmt.Fprintf(&b, "- **%s**: 0\n", label)
		}
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total source files**: %d\n", total)
	statLine("No test", counts[models.CoverageNoTest])
	statLine("Skeleton only", counts[models.CoverageSkeletonOnly])
	statLine("Partial coverage", counts[models.CoveragePartial])
	statLine("Fully covered", counts[models.CoverageCovered])
	b.WriteString("\n")

	if len(gaps) == 0 {
		b.WriteString("All source files have complete test coverage.\n")
		return b.String()
	}

	b.WriteString("## Priority Coverage Gaps\n\n")
	b.WriteString("Files are prioritized by coupling (external dependencies + dependents) and coverage status.\n\n")
	b.WriteString("| Priority | File | Status | Ext Deps | Dependents | Suggested Command |\n")
	b.WriteString("|----------|------|--------|----------|------------|-------------------|\n")

	shown := gaps
	if len(shown) > 20 {
		shown = shown[:20]
	}
	for i, gap := range shown {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %d | `%s` |\n",
			i+1, filepath.Base(gap.SourcePath), gap.Status,
			gap.ExternalDeps, gap.Dependents, gap.SuggestedCommand)
	}
	if len(gaps) > 20 {
		fmt.Fprintf(&b, "\n*... and %d more gaps*\n", len(gaps)-20)
	}

	b.WriteString("\n**Legend:**\n")
	b.WriteString("- `no_test`: No test file exists\n")
	b.WriteString("- `skeleton_only`: Test file has only TODO stubs\n")
	b.WriteString("- `partial`: Test file has some real tests and some TODOs\n")
	return b.String()
}
