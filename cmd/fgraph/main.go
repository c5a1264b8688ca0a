// Command fgraph builds, combines and regresses function graphs described in
// YAML files.
package main

import (
	"fmt"
	"os"

	"github.com/agrumery/fgraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fgraph:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
