package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the mapikit version, set at build time with
// -ldflags "-X main.Version=...".
var Version = "v0.1.0-dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mapikit version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mapikit", Version)
		},
	}
}
