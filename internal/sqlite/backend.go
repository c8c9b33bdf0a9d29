// Package sqlite is a local messaging provider that keeps profiles, message
// services, stores, folders and messages in a SQLite database.
//
// Property values are stored msgpack-encoded, one row per property id.
// Entry ids, service uids and record keys are UUID v7 bytes. Tables are
// snapshots taken when the table is opened.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// DBFile is the database file name inside the data directory.
const DBFile = "mapikit.db"

// component names the provider in extended errors.
const component = "mapikit sqlite"

// Compile-time interface check.
var _ provider.Provider = (*Provider)(nil)

// Provider implements provider.Provider on a SQLite database.
// Initialize and Uninitialize are reference counted; the database stays open
// until every Initialize has been matched.
type Provider struct {
	mu     sync.Mutex
	refs   int
	config types.Config
	log    *zap.Logger
	db     *sql.DB

	// Profiles with logged-on sessions, and the ones deleted while in use.
	// A doomed profile is removed when its last session logs off.
	sessions map[string]int
	doomed   map[string]bool
}

// New returns a provider for cfg. The provider is not initialized; call
// Initialize before logging on. A nil log discards log output.
func New(cfg types.Config, log *zap.Logger) *Provider {
	if cfg.Backend == "" {
		cfg.Backend = types.BackendSQLite
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		config:   cfg.WithDefaults(),
		log:      log,
		sessions: make(map[string]int),
		doomed:   make(map[string]bool),
	}
}

// Initialize opens the database, creating DataDir and the schema if needed.
func (p *Provider) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs > 0 {
		p.refs++
		return nil
	}
	if err := p.config.Validate(); err != nil {
		return &types.MAPIError{Op: "Initialize", Code: types.MAPI_E_INVALID_PARAMETER, Cause: err}
	}

	dataDir := p.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return &types.MAPIError{Op: "Initialize", Code: types.MAPI_E_CALL_FAILED, Cause: err}
	}

	dbPath := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return &types.MAPIError{Op: "Initialize", Code: types.MAPI_E_CALL_FAILED, Cause: err}
	}
	// One connection serializes every statement, so callers must finish
	// reading a result set before issuing the next query.
	db.SetMaxOpenConns(1)

	for _, stmt := range append(schemaDDL, indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return &types.MAPIError{Op: "Initialize", Code: types.MAPI_E_CALL_FAILED,
				Cause: fmt.Errorf("creating schema: %w", err)}
		}
	}

	p.db = db
	p.refs = 1
	p.log.Debug("provider initialized", zap.String("path", dbPath))
	return nil
}

// Uninitialize drops one Initialize reference and closes the database when
// the last one is gone.
func (p *Provider) Uninitialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs == 0 {
		return types.Errorf("Uninitialize", types.MAPI_E_NOT_INITIALIZED, "provider is not initialized")
	}
	p.refs--
	if p.refs > 0 {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.log.Debug("provider uninitialized")
	if err != nil {
		return &types.MAPIError{Op: "Uninitialize", Code: types.MAPI_E_CALL_FAILED, Cause: err}
	}
	return nil
}

// LogonEx logs on to profile. An empty profile selects the default profile
// unless MAPI_EXPLICIT_PROFILE is set. The password is not checked: the
// database carries no credentials.
func (p *Provider) LogonEx(profile, password string, flags uint32) (provider.Session, error) {
	db := p.conn()
	if db == nil {
		return nil, types.Errorf("LogonEx", types.MAPI_E_NOT_INITIALIZED, "provider is not initialized")
	}

	if profile == "" {
		if flags&types.MAPI_EXPLICIT_PROFILE != 0 {
			return nil, types.Errorf("LogonEx", types.MAPI_E_LOGON_FAILED, "no profile given")
		}
		name, err := p.defaultProfile(db)
		if err != nil {
			return nil, &types.MAPIError{Op: "LogonEx", Code: types.MAPI_E_CALL_FAILED, Cause: err}
		}
		if name == "" {
			return nil, types.Errorf("LogonEx", types.MAPI_E_LOGON_FAILED, "no default profile")
		}
		profile = name
	}

	ok, err := p.profileExists(db, profile)
	if err != nil {
		return nil, &types.MAPIError{Op: "LogonEx", Code: types.MAPI_E_CALL_FAILED, Cause: err}
	}
	if !ok {
		return nil, types.Errorf("LogonEx", types.MAPI_E_LOGON_FAILED, "profile %q not found", profile)
	}

	p.mu.Lock()
	p.sessions[profile]++
	p.mu.Unlock()

	p.log.Debug("logon", zap.String("profile", profile), zap.Uint32("flags", flags))
	return newSession(p, profile), nil
}

// AdminProfiles returns the profile administration object.
func (p *Provider) AdminProfiles(flags uint32) (provider.ProfAdmin, error) {
	if p.conn() == nil {
		return nil, types.Errorf("AdminProfiles", types.MAPI_E_NOT_INITIALIZED, "provider is not initialized")
	}
	return &profAdmin{object: newObject(p, provider.KindProfAdmin)}, nil
}

// conn returns the open database, or nil when the provider is not
// initialized.
func (p *Provider) conn() *sql.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// logoff drops a session reference on profile and removes the profile if
// it was deleted while in use.
func (p *Provider) logoff(profile string) error {
	p.mu.Lock()
	p.sessions[profile]--
	purge := p.sessions[profile] <= 0 && p.doomed[profile]
	if p.sessions[profile] <= 0 {
		delete(p.sessions, profile)
	}
	if purge {
		delete(p.doomed, profile)
	}
	db := p.db
	p.mu.Unlock()

	if !purge || db == nil {
		return nil
	}
	p.log.Debug("removing profile deleted while in use", zap.String("profile", profile))
	return purgeProfile(db, profile)
}

// newID generates a UUID v7 entry id.
func newID() ([]byte, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating UUID v7: %w", err)
	}
	return id[:], nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
