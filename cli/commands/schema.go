package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/querycraft/querycraft/cli/internal/config"
	"github.com/querycraft/querycraft/schema/cache"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the cached database schema",
}

var schemaTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables known to the schema cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c := cache.New(config.AppFs, cfg.SchemaCache)
		if err := c.Load(); err != nil {
			return err
		}
		names := c.TableNames()
		if len(names) == 0 {
			fmt.Println("Schema cache is empty.")
			return nil
		}
		for _, name := range names {
			table := c.Tables[name]
			fmt.Printf("%s (%d fields, engine %s)\n", color.CyanString(name), len(table.Fields), table.Engine)
		}
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaTablesCmd)
}
