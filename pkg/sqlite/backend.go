// Package sqlite provides the public factory for the SQLite provider while
// keeping its implementation internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/internal/sqlite"
	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// NewProvider creates a SQLite provider. The provider is not initialized;
// call Initialize (or mapikit.Client.Initialize) before logging on. A nil
// log discards log output.
//
// Example:
//
//	p := sqlite.NewProvider(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	}, nil)
//	c := mapikit.New(p)
//	uninit, err := c.Initialize()
//	if err != nil {
//	    return err
//	}
//	defer uninit()
func NewProvider(cfg types.Config, log *zap.Logger) provider.Provider {
	return sqlite.New(cfg, log)
}
