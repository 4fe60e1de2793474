/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/project"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize TestSmith configuration and directories",
	Long:  `Creates a testsmith.yaml with default settings and the test and fixture directories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		cfg := config.Default()

		root, err := project.FindProjectRoot(".")
		if err != nil {
			root, err = os.Getwd()
			if err != nil {
				return err
			}
			logger.Warn("No project marker found, initializing in %s", root)
		}

		configPath := filepath.Join(root, config.FileName)
		if _, err := os.Stat(configPath); err == nil && !initForce {
			fmt.Printf("%s already exists. Use --force to overwrite.\n", configPath)
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		for _, dir := range []string{cfg.TestRoot, cfg.FixtureDir} {
			if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}

		fmt.Printf("Initialized TestSmith in %s\n", root)
		fmt.Println("Next Steps:")
		fmt.Println("  - testsmith <source-file>")
		fmt.Println("  - testsmith --all")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite an existing config file")
}
