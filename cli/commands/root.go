// Package commands implements the querycraft CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "querycraft",
	Short:         "Fluent MySQL query/schema builder and migration runner",
	Long:          "querycraft renders fluent query and schema definitions to MySQL and applies SQL migrations with history tracking.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(schemaCmd)
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		return err
	}
	return nil
}
