// Command optimoldiq is the CLI front end for the manufacturing planning
// core: it loads a snapshot and configuration from disk, drives one or
// more engines, and renders the result.
package main

import (
	"fmt"
	"os"

	"github.com/ThuyHaLE/optimoldiq-core/cmd/optimoldiq/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
