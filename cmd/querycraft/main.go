package main

import (
	"os"

	"github.com/querycraft/querycraft/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
