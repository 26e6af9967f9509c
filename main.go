package main

import (
	"github.com/linkshort/linkshort/cmd"

	// Subcommands register themselves on the root command via their init()
	// functions, so they only need to be imported for side effects.
	_ "github.com/linkshort/linkshort/cmd/cli"
	_ "github.com/linkshort/linkshort/cmd/server"
)

func main() {
	cmd.Execute()
}
