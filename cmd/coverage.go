package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/graph"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/maintenance"
	"github.com/testsmith-io/testsmith/core/project"
)

var coverageOutput string

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Analyze and report test coverage gaps",
	Long: `Classifies every source file by the state of its test skeleton and writes
a prioritized gap report. Files with heavy coupling surface first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		cfg, err := config.Load("")
		if err != nil {
			return err
		}

		ctx, err := project.BuildContext(".", cfg)
		if err != nil {
			return fmt.Errorf("could not detect project root: %w", err)
		}

		logger.Info("Analyzing test coverage...")
		coverage, err := maintenance.DetectCoverage(ctx.Root, cfg)
		if err != nil {
			return fmt.Errorf("failed to detect coverage: %w", err)
		}

		logger.Info("Computing dependency metrics...")
		g, err := graph.Build(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to build dependency graph: %w", err)
		}
		metrics := graph.ComputeMetrics(g)

		gaps := maintenance.PrioritizeGaps(coverage, metrics)
		report := maintenance.RenderCoverageReport(gaps, coverage)

		if err := os.WriteFile(coverageOutput, []byte(report), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Coverage report written to: %s", coverageOutput)

		// Echo the summary section to stdout.
		if idx := strings.Index(report, "## Priority"); idx > 0 {
			fmt.Println()
			fmt.Print(report[:idx])
		} else {
			fmt.Println()
			fmt.Print(report)
		}

		if len(gaps) > 0 {
			fmt.Printf("Found %d coverage gap(s). See %s for details.\n", len(gaps), coverageOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringVar(&coverageOutput, "output", "testsmith_coverage_report.md", "Output file for the coverage report")
}
