package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/internal/paths"
	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
)

// app holds the global flags and the state set up before every command.
type app struct {
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool

	configDir string
	v         *viper.Viper
	log       *zap.Logger
	out       io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:               "mapikit",
		Short:             "Inspect and edit a local message store",
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError(err)
	})

	root.PersistentFlags().StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newProfileCmd(a),
		newStoreCmd(a),
		newFolderCmd(a),
		newMessageCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newDeleteCmd(a),
		newRowsCmd(a),
		newFindCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = cmd.OutOrStdout()
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
	if err != nil {
		return err
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	log, err := newLogger(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return userError(fmt.Errorf("%s: %w", cfgKeyLogLevel, err))
	}

	a.configDir = configDir
	a.v = v
	a.log = log
	mapikit.SetLogger(log.Named("mapikit"))
	return nil
}

// exactArgs is cobra.ExactArgs reporting a user error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError(err)
		}
		return nil
	}
}
