/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/bodies"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/discovery"
	"github.com/testsmith-io/testsmith/core/generator"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
	"github.com/testsmith-io/testsmith/core/project"
)

var rootCmd = &cobra.Command{
	Use:   "testsmith [source-file]",
	Short: "Automatic test scaffolding generator for Python projects",
	Long: `TestSmith analyzes Python source files and generates the testing
scaffolding around them: pytest test skeletons, mock fixtures for external
dependencies, and sys.path registration in conftest.py. Re-running it on an
unchanged project is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		cfg, err := config.Load("")
		if err != nil {
			return err
		}

		start := "."
		if len(args) == 1 {
			start = args[0]
		} else if pathFlag != "" {
			start = pathFlag
		}

		ctx, err := project.BuildContext(start, cfg)
		if err != nil {
			return fmt.Errorf("could not detect project root (looked for pyproject.toml, setup.py, setup.cfg, .git, conftest.py): %w", err)
		}
		logger.Debug("Project root: %s", ctx.Root)

		files, err := filesToProcess(args, ctx, cfg)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Info("No files found to process.")
			return nil
		}

		gen := generator.NewTestGenerator(ctx, cfg)
		gen.DryRun = dryRun

		if generateBodies && !dryRun {
			cfg.LLM.Enabled = true
			source, err := bodies.NewGenerator(context.Background(), cfg.LLM)
			if err != nil {
				logger.Warn("Body generation unavailable, falling back to stubs: %v", err)
			} else {
				gen.Bodies = source
			}
		}

		var results []*generator.FileResult
		for _, src := range files {
			if len(files) > 1 {
				rel, err := filepath.Rel(ctx.Root, src)
				if err != nil {
					rel = src
				}
				logger.Info("Processing %s...", rel)
			}
			results = append(results, gen.ProcessFile(src))
		}

		printSummary(results, ctx.Root, len(args) == 1)

		if len(files) == 1 && results[0].Err != nil {
			return results[0].Err
		}
		return nil
	},
}

var (
	verbose        bool
	dryRun         bool
	allFiles       bool
	pathFlag       string
	generateBodies bool
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate actions without writing files")
	rootCmd.Flags().BoolVar(&allFiles, "all", false, "Process all untested source files in the project")
	rootCmd.Flags().StringVar(&pathFlag, "path", "", "Process all untested source files in a specific directory")
	rootCmd.Flags().BoolVar(&generateBodies, "bodies", false, "Use an LLM to generate test bodies")
}

// filesToProcess resolves the positional argument and the --all / --path
// flags into the list of source files to run the pipeline on.
func filesToProcess(args []string, ctx *models.ProjectContext, cfg *config.Config) ([]string, error) {
	switch {
	case allFiles:
		logger.Debug("Discovering all untested files...")
		return discovery.UntestedFiles(ctx.Root, ctx.Root, cfg)

	case pathFlag != "":
		target, err := filepath.Abs(pathFlag)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %s: %w", pathFlag, err)
		}
		if _, err := os.Stat(target); err != nil {
			return nil, fmt.Errorf("path not found: %s", target)
		}
		logger.Debug("Discovering files in %s...", target)
		return discovery.UntestedFiles(target, ctx.Root, cfg)

	case len(args) == 1:
		source, err := filepath.Abs(args[0])
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %s: %w", args[0], err)
		}
		if _, err := os.Stat(source); err != nil {
			return nil, fmt.Errorf("source file not found: %s", source)
		}
		return []string{source}, nil

	default:
		return nil, fmt.Errorf("provide a source file, --all, or --path")
	}
}

func printSummary(results []*generator.FileResult, projectRoot string, singleFile bool) {
	if singleFile && len(results) == 1 {
		printFileSummary(results[0], projectRoot)
		return
	}

	created, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Failed():
			failed++
		case r.Test.Action == "created":
			created++
		default:
			skipped++
		}
	}

	fmt.Println()
	fmt.Println("TestSmith Batch Summary")
	fmt.Println("-----------------------")
	fmt.Printf("Processed %d source files\n", len(results))
	fmt.Printf("Created:  %d test files\n", created)
	fmt.Printf("Skipped:  %d (test already exists or dry-run)\n", skipped)
	if failed > 0 {
		fmt.Printf("Failed:   %d\n", failed)
		for _, r := range results {
			if r.Failed() {
				fmt.Printf("  %s: %v\n", r.Source, firstError(r))
			}
		}
	}
}

func printFileSummary(result *generator.FileResult, projectRoot string) {
	rel := func(p string) string {
		r, err := filepath.Rel(projectRoot, p)
		if err != nil {
			return p
		}
		return r
	}

	fmt.Println()
	fmt.Println("TestSmith Summary")
	fmt.Println("-----------------")
	fmt.Printf("Source:   %s\n", rel(result.Source))
	fmt.Printf("Project:  %s\n", projectRoot)
	fmt.Println()

	if result.Err != nil {
		fmt.Printf("Status:   FAILED (%v)\n", result.Err)
		return
	}

	fmt.Println("Actions:")
	for _, f := range result.Fixtures {
		printAction(f.Action, rel(f.Path), f.Err)
	}
	printAction(result.Test.Action, rel(result.Test.Path), result.Test.Err)
	printAction(result.Registry.Action, rel(result.Registry.Path), result.Registry.Err)
}

func printAction(action, path string, err error) {
	if err != nil {
		fmt.Printf("  x Failed   %s (%v)\n", path, err)
		return
	}
	symbol := "."
	if action == "created" || action == "updated" {
		symbol = "+"
	}
	fmt.Printf("  %s %-8s %s\n", symbol, action, path)
}

func firstError(r *generator.FileResult) error {
	if r.Err != nil {
		return r.Err
	}
	for _, f := range r.Fixtures {
		if f.Err != nil {
			return f.Err
		}
	}
	if r.Test.Err != nil {
		return r.Test.Err
	}
	return r.Registry.Err
}
