// Command snapsum computes deterministic checksum trees over workspace
// manifests.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/snapsum/internal/cli"
)

func main() {
	// A missing .env is normal; only malformed files are reported
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
