/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/graph"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/project"
)

var graphOutput string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Generate a dependency graph visualization",
	Long:  `Builds the project's module dependency graph and writes a Mermaid diagram plus coupling metrics to a markdown file.`,
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

		logger.Info("Building dependency graph...")
		g, err := graph.Build(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to build dependency graph: %w", err)
		}
		metrics := graph.ComputeMetrics(g)

		table := graph.RenderMetricsTable(metrics)
		diagram := graph.RenderMermaid(g, metrics)
		content := fmt.Sprintf("# TestSmith Dependency Graph\n\n%s\n\n%s\n", table, diagram)

		if err := os.WriteFile(graphOutput, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}

		logger.Info("Dependency graph written to: %s", graphOutput)
		fmt.Println()
		fmt.Println(table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphOutput, "output", "testsmith_graph.md", "Output file for the dependency graph")
}
