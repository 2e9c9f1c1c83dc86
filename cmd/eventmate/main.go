package main

import (
	"os"

	"github.com/eventmate-dev/eventmate/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
