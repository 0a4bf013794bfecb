// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sparkctl/sparkctl/internal/submit"
)

// Root returns the root command for the sparkctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sparkctl",
		Short: "Submit an application to run as a driver pod in a Kubernetes cluster",
	}

	cmd.AddCommand(Submit())

	return cmd
}

// ExitCodeFor maps a command's terminal error to a process exit code: 0 if
// nil (Succeeded), 1 otherwise. The submission's own phase, if any, is
// still reported in the printed error message by Execute's default error
// handling.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var phaseErr *submit.PhaseError
	if errors.As(err, &phaseErr) {
		return 1
	}
	return 1
}
