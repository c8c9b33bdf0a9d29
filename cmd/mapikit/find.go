package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

type findFlags struct {
	tableFlags
	exists     []string
	eq         []string
	substr     []string
	prefix     []string
	ignoreCase bool
	backward   bool
}

func newFindCmd(a *app) *cobra.Command {
	var f findFlags
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search a folder table",
		Long: `Find builds a restriction from its flags, all of which must hold, prints
it, and searches the table, printing every matching row.

Example:
  mapikit find --exists PR_SUBJECT_W --substr PR_SUBJECT_W=report --ignore-case
  mapikit find --eq PR_IMPORTANCE=2 --backward`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := f.restriction()
			if err != nil {
				return err
			}
			if !a.flagJSON {
				fmt.Fprint(a.out, restriction.Pretty(res))
			}

			var opts []mapikit.SearchOption
			if f.backward {
				opts = append(opts, mapikit.From(types.BOOKMARK_END), mapikit.Backward())
			}
			return a.withTable(&f.tableFlags, func(t *mapikit.Table) error {
				var rows []types.Row
				for row, err := range t.Search(res, opts...) {
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
	cmd.Flags().StringArrayVar(&f.exists, "exists", nil, "TAG must exist")
	cmd.Flags().StringArrayVar(&f.eq, "eq", nil, "TAG=VALUE must hold")
	cmd.Flags().StringArrayVar(&f.substr, "substr", nil, "TAG must contain VALUE (TAG=VALUE)")
	cmd.Flags().StringArrayVar(&f.prefix, "prefix", nil, "TAG must start with VALUE (TAG=VALUE)")
	cmd.Flags().BoolVar(&f.ignoreCase, "ignore-case", false, "compare --substr and --prefix values ignoring case")
	cmd.Flags().BoolVar(&f.backward, "backward", false, "search from the end of the table toward the beginning")
	return cmd
}

// restriction conjoins every condition given on the command line.
func (f *findFlags) restriction() (restriction.Restriction, error) {
	var terms []restriction.Restriction
	for _, name := range f.exists {
		tag, err := parseTag(name)
		if err != nil {
			return nil, err
		}
		terms = append(terms, restriction.Exists(tag))
	}
	for _, s := range f.eq {
		tag, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		r, err := restriction.Compare(restriction.RELOP_EQ, tag, v)
		if err != nil {
			return nil, userError(err)
		}
		terms = append(terms, r)
	}

	var fold restriction.FuzzyLevel
	if f.ignoreCase {
		fold = restriction.FL_IGNORECASE
	}
	for _, c := range []struct {
		values []string
		span   restriction.FuzzyLevel
	}{
		{f.substr, restriction.FL_SUBSTRING},
		{f.prefix, restriction.FL_PREFIX},
	} {
		for _, s := range c.values {
			tag, v, err := parseAssignment(s)
			if err != nil {
				return nil, err
			}
			r, err := restriction.ContentMatch(c.span|fold, tag, v)
			if err != nil {
				return nil, userError(err)
			}
			terms = append(terms, r)
		}
	}

	if len(terms) == 0 {
		return nil, userError(errors.New("no condition given; use --exists, --eq, --substr or --prefix"))
	}
	return restriction.AllOf(terms...), nil
}
