package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List profiles; the default is marked with *",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withAdmin(a.listProfiles)
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an empty profile",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withAdmin(func(admin *mapikit.ProfAdmin) error {
					return admin.Create(args[0], "", 0)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a profile with its stores",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withAdmin(func(admin *mapikit.ProfAdmin) error {
					return admin.Delete(args[0], 0)
				})
			},
		},
		&cobra.Command{
			Use:   "default [name]",
			Short: "Print the default profile, or make name the default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withAdmin(func(admin *mapikit.ProfAdmin) error {
					if len(args) == 1 {
						return admin.SetDefault(args[0])
					}
					name, err := admin.Default()
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, name)
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) withAdmin(fn func(admin *mapikit.ProfAdmin) error) error {
	c, done, err := a.openClient()
	if err != nil {
		return err
	}
	defer done()

	admin, err := c.AdminProfiles(0)
	if err != nil {
		return err
	}
	return mapikit.Use(admin, fn)
}

type profileEntry struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

func (a *app) listProfiles(admin *mapikit.ProfAdmin) error {
	def, err := admin.Default()
	if err != nil && !errors.Is(err, types.ErrNoDefault) {
		return err
	}
	var entries []profileEntry
	for name, err := range admin.Profiles() {
		if err != nil {
			return err
		}
		entries = append(entries, profileEntry{Name: name, Default: name == def})
	}

	if a.flagJSON {
		if entries == nil {
			entries = []profileEntry{}
		}
		return a.printJSON(entries)
	}
	for _, e := range entries {
		mark := " "
		if e.Default {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", mark, e.Name)
	}
	return nil
}
