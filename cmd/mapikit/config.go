package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/internal/paths"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyProfile     = "profile"
	cfgKeyPrefetch    = "prefetch"
	cfgKeyInlineLimit = "inline_limit"
	cfgKeyUnicode     = "unicode"
	cfgKeyLogLevel    = "log_level"

	defaultLogLevel = "warn"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# mapikit configuration

# Provider selection
backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Profile to log on to. Empty logs on to the default profile.
# profile:

# Rows requested per fetch during a table scan.
# prefetch: 1000

# Largest value in bytes transferred in-line; larger values use a stream.
# inline_limit: 32768

# Width of extended error text: false for 8-bit, true for wide.
# unicode: false

# debug, info, warn or error
log_level: warn
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, userError(fmt.Errorf("read config: %w", err))
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// providerConfig builds the provider configuration from the loaded config
// and the --data-dir flag.
func (a *app) providerConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flagDataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:     a.v.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		InlineLimit: a.v.GetInt(cfgKeyInlineLimit),
		Prefetch:    a.v.GetInt(cfgKeyPrefetch),
		Unicode:     a.v.GetBool(cfgKeyUnicode),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("config: %w", err))
	}
	return cfg, nil
}

// newLogger builds a development logger for debug and a production logger
// at the requested level otherwise.
func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}
