package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/maintenance"
	"github.com/testsmith-io/testsmith/core/project"
)

var pruneConfirm bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Identify and remove unused fixture files",
	Long: `Scans the project for external imports, compares them against the fixture
directory, and removes fixtures no source file needs anymore. Without
--confirm nothing is deleted.`,
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

		logger.Info("Scanning project for used dependencies...")
		used, err := maintenance.ScanUsedDependencies(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to scan dependencies: %w", err)
		}

		existing, err := maintenance.ScanExistingFixtures(ctx.Root, cfg)
		if err != nil {
			return fmt.Errorf("failed to scan fixtures: %w", err)
		}

		unused := maintenance.IdentifyUnusedFixtures(used, existing)
		if len(unused) == 0 {
			fmt.Println("No unused fixtures found. All fixtures are actively used.")
			return nil
		}

		fmt.Println()
		fmt.Println("TestSmith Prune Summary")
		fmt.Println("-----------------------")
		fmt.Printf("Unused fixtures found: %d\n\n", len(unused))
		for _, u := range unused {
			rel, err := filepath.Rel(ctx.Root, u.Path)
			if err != nil {
				rel = u.Path
			}
			fmt.Printf("  x %s (no source files import %s)\n", rel, u.Dep)
		}

		results := maintenance.PruneFixtures(unused, ctx.Root, cfg, !pruneConfirm)

		if !pruneConfirm {
			fmt.Println()
			fmt.Println("Run with --confirm to delete these fixtures.")
			return nil
		}

		var deleted []string
		fmt.Println()
		fmt.Println("Deleted fixtures:")
		for _, r := range results {
			switch r.Action {
			case "deleted":
				deleted = append(deleted, r.Dep)
				fmt.Printf("  + %s%s\n", r.Dep, cfg.FixtureSuffix)
			case "error":
				logger.Error("Failed to delete fixture for %s: %v", r.Dep, r.Err)
			}
		}

		modified, err := maintenance.UpdateTestImports(ctx.Root, cfg, deleted)
		if err != nil {
			logger.Warn("Failed to update test imports: %v", err)
		}
		if len(modified) > 0 {
			fmt.Printf("\nUpdated %d test file(s) to comment out deleted fixture imports.\n", len(modified))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&pruneConfirm, "confirm", false, "Actually delete unused fixtures (default is dry-run)")
}
