package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Names given to what init creates.
const (
	initProfile = "mapikit"
	initStore   = "Personal Folders"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database, a default profile and a default store",
		Long: `Init creates the data directory and database. When no profile is the
default yet it creates the profile "mapikit", makes it the default, and
adds a default store to it. Running init again changes nothing.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit()
		},
	}
}

func (a *app) runInit() error {
	c, done, err := a.openClient()
	if err != nil {
		return err
	}
	defer done()

	admin, err := c.AdminProfiles(0)
	if err != nil {
		return err
	}
	defer admin.Release()

	profile, err := admin.Default()
	switch {
	case errors.Is(err, types.ErrNoDefault):
		profile = initProfile
		if err := createDefaultProfile(c, admin, profile); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	cfg, err := a.providerConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "mapikit initialized")
	fmt.Fprintln(a.out, "  config: ", a.configDir)
	fmt.Fprintln(a.out, "  data:   ", cfg.DataDir)
	fmt.Fprintln(a.out, "  profile:", profile)
	return nil
}

func createDefaultProfile(c *mapikit.Client, admin *mapikit.ProfAdmin, name string) error {
	if err := admin.Create(name, "", 0); err != nil {
		return err
	}
	if err := admin.SetDefault(name); err != nil {
		return err
	}
	sess, err := c.Logon(name, "", mapikit.DefaultLogonFlags)
	if err != nil {
		return err
	}
	return mapikit.Use(sess, func(s *mapikit.Session) error {
		_, err := createStore(s, initStore, true)
		return err
	})
}

// createStore adds a store service named name to the session's profile and
// returns its service uid.
func createStore(s *mapikit.Session, name string, isDefault bool) ([]byte, error) {
	svc, err := s.AdminServices(0)
	if err != nil {
		return nil, err
	}
	defer svc.Release()

	uid, err := svc.Create(mapikit.ServicePST, name, types.SERVICE_NO_RESTART_WARNING)
	if err != nil {
		return nil, err
	}
	if isDefault {
		pv, err := types.NewPropValue(types.PR_DEFAULT_STORE, true)
		if err != nil {
			return nil, err
		}
		if err := svc.Configure(uid, 0, pv); err != nil {
			return nil, err
		}
	}
	return uid, nil
}
