package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

var storeColumns = []types.PropTag{
	types.PR_ENTRYID,
	types.PR_DISPLAY_NAME_W,
	types.PR_DEFAULT_STORE,
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the stores of the profile",
	}

	var isDefault bool
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a store to the profile",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(_ *mapikit.Client, s *mapikit.Session) error {
				uid, err := createStore(s, args[0], isDefault)
				if err != nil {
					return err
				}
				if a.flagJSON {
					return a.printJSON(map[string]string{"service_uid": hex.EncodeToString(uid)})
				}
				fmt.Fprintln(a.out, hex.EncodeToString(uid))
				return nil
			})
		},
	}
	create.Flags().BoolVar(&isDefault, "default", false, "make the new store the default store")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the stores of the profile",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withSession(func(_ *mapikit.Client, s *mapikit.Session) error {
					t, err := s.MsgStoresTable(0)
					if err != nil {
						return err
					}
					return mapikit.Use(t, func(t *mapikit.Table) error {
						return a.scan(t, storeColumns)
					})
				})
			},
		},
		create,
	)
	return cmd
}

// scan sets columns on t and prints every row of a full scan.
func (a *app) scan(t *mapikit.Table, columns []types.PropTag) error {
	if err := t.SetColumns(columns, types.TBL_BATCH); err != nil {
		return err
	}
	var rows []types.Row
	for row, err := range t.Rows() {
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return a.printRows(rows)
}
