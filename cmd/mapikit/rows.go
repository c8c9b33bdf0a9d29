package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Folder tables the rows and find commands read.
const (
	tableContents  = "contents"
	tableHierarchy = "hier"
)

var (
	contentsColumns  = []types.PropTag{types.PR_ENTRYID, types.PR_SUBJECT_W, types.PR_MESSAGE_CLASS_W}
	hierarchyColumns = []types.PropTag{types.PR_ENTRYID, types.PR_DISPLAY_NAME_W, types.PR_CONTENT_COUNT}
)

// tableFlags are the flags shared by commands that read a folder table.
type tableFlags struct {
	entry   string
	table   string
	columns []string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.entry, "entry", "", "entry id (hex) of the folder; default: the root folder of the default store")
	cmd.Flags().StringVar(&f.table, "folder", tableContents, "table to read: contents or hier")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "columns to read (default depends on --folder)")
}

// withTable opens the selected table of the selected folder with the
// requested columns set.
func (a *app) withTable(f *tableFlags, fn func(t *mapikit.Table) error) error {
	var open func(*mapikit.Folder) (*mapikit.Table, error)
	columns := contentsColumns
	switch f.table {
	case tableContents:
		open = func(folder *mapikit.Folder) (*mapikit.Table, error) { return folder.ContentsTable(types.MAPI_UNICODE) }
	case tableHierarchy:
		open = func(folder *mapikit.Folder) (*mapikit.Table, error) { return folder.HierarchyTable(types.MAPI_UNICODE) }
		columns = hierarchyColumns
	default:
		return userError(fmt.Errorf("--folder: want %s or %s, got %q", tableContents, tableHierarchy, f.table))
	}
	if len(f.columns) > 0 {
		tags, err := parseTags(f.columns)
		if err != nil {
			return err
		}
		columns = tags
	}

	return a.withFolder(f.entry, func(folder *mapikit.Folder) error {
		t, err := open(folder)
		if err != nil {
			return err
		}
		return mapikit.Use(t, func(t *mapikit.Table) error {
			if err := t.SetColumns(columns, types.TBL_BATCH); err != nil {
				return err
			}
			return fn(t)
		})
	})
}

// withFolder runs fn on the folder named by entryHex, or on the root folder
// of the default store.
func (a *app) withFolder(entryHex string, fn func(folder *mapikit.Folder) error) error {
	if entryHex == "" {
		return a.withRoot(fn)
	}
	id, err := hex.DecodeString(entryHex)
	if err != nil {
		return userError(fmt.Errorf("entry id: %w", err))
	}
	return a.withSession(func(_ *mapikit.Client, s *mapikit.Session) error {
		ms, err := s.OpenDefaultStore(0)
		if err != nil {
			return err
		}
		defer ms.Release()
		obj, err := ms.OpenEntry(id, types.MAPI_BEST_ACCESS)
		if err != nil {
			return err
		}
		folder, ok := obj.(*mapikit.Folder)
		if !ok {
			_ = obj.Release()
			return userError(fmt.Errorf("entry %s is a %s, not a folder", entryHex, obj.Kind()))
		}
		return mapikit.Use(folder, fn)
	})
}

func newRowsCmd(a *app) *cobra.Command {
	var f tableFlags
	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print every row of a folder table",
		Long: `Rows scans the contents or hierarchy table of a folder, fetching the
configured prefetch count of rows per request.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(&f, func(t *mapikit.Table) error {
				var rows []types.Row
				for row, err := range t.Rows() {
					if err != nil {
						return err
					}
					rows = append(rows, row)
				}
				return a.printRows(rows)
			})
		},
	}
	f.register(cmd)
	return cmd
}
