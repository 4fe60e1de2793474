/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/testsmith-io/testsmith/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of TestSmith",
	Long:  `Displays the version of TestSmith.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("TestSmith %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
