package main

import (
	"os"

	"github.com/surfacegen/genapi/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
