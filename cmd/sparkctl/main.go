// Package main is the entry point for the sparkctl CLI.
//
// sparkctl submits an application to run as a driver Pod in a Kubernetes
// cluster, over the cluster's API server rather than a long-running
// scheduler backend.
//
// Commands: submit.
//
// For detailed usage information, run:
//
//	sparkctl --help
package main

import (
	"fmt"
	"os"

	"github.com/sparkctl/sparkctl/cmd/sparkctl/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(commands.ExitCodeFor(err))
	}
}
