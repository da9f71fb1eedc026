// Package main is the entry point for the syncvault CLI.
package main

import (
	"os"

	"github.com/syncvault/syncvault/cmd/syncvault/commands"
	vaulterrors "github.com/syncvault/syncvault/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *vaulterrors.ExitError
		if vaulterrors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(vaulterrors.ExitUser)
	}
}
