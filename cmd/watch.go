package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/generator"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/project"
	"github.com/testsmith-io/testsmith/core/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for source changes and regenerate scaffolding",
	Long:  `Watches the project tree and re-runs generation for each source file that changes.`,
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

		gen := generator.NewTestGenerator(ctx, cfg)

		fw, err := watcher.NewFileWatcher(ctx.Root, cfg)
		if err != nil {
			return err
		}
		fw.AddOnChangeFunc(func(path string) error {
			result := gen.ProcessFile(path)
			if result.Err != nil {
				return result.Err
			}
			return nil
		})

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			logger.Info("Stopping watcher...")
			fw.Close()
			os.Exit(0)
		}()

		return fw.Watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
