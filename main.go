package main

import (
	"os"

	"github.com/spigell/prospector/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
