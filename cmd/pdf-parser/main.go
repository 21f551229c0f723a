package main

import (
	"os"

	"github.com/spherical/pdf-parser/cmd/pdf-parser/commands"
	"github.com/spherical/pdf-parser/cmd/pdf-parser/ui"
)

var (
	version = "1.0.0"
)

func main() {
	commands.Version = version
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
