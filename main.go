package main

import (
	"fmt"
	"os"

	"volumescope/internal/cli"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
