package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

const parentFlagUsage = "entry id (hex) of the parent folder; default: the root folder of the default store"

func newFolderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	var (
		parent      string
		openExisted bool
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a subfolder and print its entry id",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags uint32
			if openExisted {
				flags |= types.OPEN_IF_EXISTS
			}
			return a.withFolder(parent, func(folder *mapikit.Folder) error {
				sub, err := folder.CreateFolder(args[0], flags)
				if err != nil {
					return err
				}
				return mapikit.Use(sub, func(sub *mapikit.Folder) error {
					return a.printEntryID(sub)
				})
			})
		},
	}
	create.Flags().StringVar(&parent, "entry", "", parentFlagUsage)
	create.Flags().BoolVar(&openExisted, "open-existing", false, "print the existing folder instead of failing")
	cmd.AddCommand(create)
	return cmd
}

func newMessageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Manage messages",
	}

	var parent string
	create := &cobra.Command{
		Use:   "create [TAG=VALUE...]",
		Short: "Create a message and print its entry id",
		Example: `  mapikit message create PR_SUBJECT_W=hello PR_IMPORTANCE=2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]types.PropValue, 0, len(args))
			for _, s := range args {
				tag, v, err := parseAssignment(s)
				if err != nil {
					return err
				}
				pv, err := types.NewPropValue(tag, v)
				if err != nil {
					return userError(err)
				}
				values = append(values, pv)
			}
			return a.withFolder(parent, func(folder *mapikit.Folder) error {
				msg, err := folder.CreateMessage(0)
				if err != nil {
					return err
				}
				return mapikit.Use(msg, func(msg *mapikit.Message) error {
					for _, pv := range values {
						if err := msg.Set(pv.Tag, pv.Value); err != nil {
							return err
						}
					}
					if err := msg.SaveChanges(types.KEEP_OPEN_READWRITE); err != nil {
						return err
					}
					return a.printEntryID(msg)
				})
			})
		},
	}
	create.Flags().StringVar(&parent, "entry", "", parentFlagUsage)

	del := &cobra.Command{
		Use:   "delete <entry-id>...",
		Short: "Delete messages of a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([][]byte, 0, len(args))
			for _, s := range args {
				id, err := hex.DecodeString(s)
				if err != nil {
					return userError(fmt.Errorf("entry id %q: %w", s, err))
				}
				ids = append(ids, id)
			}
			return a.withFolder(parent, func(folder *mapikit.Folder) error {
				return folder.DeleteMessages(ids, 0)
			})
		},
	}
	del.Flags().StringVar(&parent, "entry", "", parentFlagUsage)

	cmd.AddCommand(create, del)
	return cmd
}

func (a *app) printEntryID(obj propBag) error {
	v, err := obj.Get(types.PR_ENTRYID)
	if err != nil {
		return err
	}
	id, _ := v.Bytes()
	if a.flagJSON {
		return a.printJSON(map[string]string{"entry_id": hex.EncodeToString(id)})
	}
	_, err = fmt.Fprintln(a.out, hex.EncodeToString(id))
	return err
}
