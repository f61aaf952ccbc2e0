package main

import (
	"os"

	"github.com/spherical/tabular-extractor/cmd/tabular-extractor/commands"
	"github.com/spherical/tabular-extractor/cmd/tabular-extractor/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
