package commands

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/querycraft/querycraft/cli/internal/config"
	"github.com/querycraft/querycraft/migrate"
	"github.com/querycraft/querycraft/runtime/client"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		applied, err := runner.Up(cmd.Context())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("Nothing to migrate, database is up to date.")
			return nil
		}
		for _, name := range applied {
			fmt.Printf("%s %s\n", color.GreenString("applied"), name)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		statuses, err := runner.Status(cmd.Context())
		if err != nil {
			return err
		}
		rows := pterm.TableData{{"Migration", "Applied", "Applied at"}}
		for _, s := range statuses {
			applied := color.RedString("no")
			if s.Applied {
				applied = color.GreenString("yes")
			}
			rows = append(rows, []string{s.Name, applied, s.AppliedAt})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var migrateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the migration history table",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed := false
		prompt := &survey.Confirm{
			Message: "Drop the migration history table? Applied migrations will be forgotten.",
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}

		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := runner.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Migration history dropped.")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateResetCmd)
}

func newRunner(ctx context.Context) (*migrate.Runner, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	dsn, err := cfg.RequireDatabaseURL()
	if err != nil {
		return nil, nil, err
	}
	c, err := client.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { c.Close() }
	return migrate.NewRunner(c, config.AppFs, cfg.MigrationsDir), cleanup, nil
}
