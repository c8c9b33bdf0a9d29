package main

import (
	"github.com/spf13/cobra"
)

const entryFlagUsage = "entry id (hex) of the object; default: the root folder of the default store"

func newGetCmd(a *app) *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "get <tag>",
		Short: "Print a property",
		Long: `Get prints one property of the root folder of the default store, or of
the object named by --entry. Tags are symbolic names such as PR_SUBJECT_W
or numeric tags such as 0x0037001F. Large values are read through a
property stream.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := parseTag(args[0])
			if err != nil {
				return err
			}
			return a.withTarget(entry, func(obj propBag) error {
				v, err := obj.Get(tag)
				if err != nil {
					return err
				}
				return a.printValue(v)
			})
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "", entryFlagUsage)
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "set <tag> <value>",
		Short: "Set a property",
		Long: `Set stores one property. The value is parsed by the tag's type:
hex for binary, RFC 3339 for times, and Go syntax for numbers and booleans.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := parseTag(args[0])
			if err != nil {
				return err
			}
			value, err := parseValue(tag, args[1])
			if err != nil {
				return err
			}
			return a.withTarget(entry, func(obj propBag) error {
				return obj.Set(tag, value)
			})
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "", entryFlagUsage)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a property",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := parseTag(args[0])
			if err != nil {
				return err
			}
			return a.withTarget(entry, func(obj propBag) error {
				return obj.Delete(tag)
			})
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "", entryFlagUsage)
	return cmd
}
