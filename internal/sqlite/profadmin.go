package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// profAdmin administers the profiles table.
type profAdmin struct {
	object
}

var _ provider.ProfAdmin = (*profAdmin)(nil)

// GetProfileTable lists profiles by name. Profiles deleted while still in
// use are not listed.
func (a *profAdmin) GetProfileTable(flags uint32) (provider.Table, error) {
	db, err := a.conn("GetProfileTable")
	if err != nil {
		return nil, err
	}
	rows, err := db.Query("SELECT name, is_default FROM profiles ORDER BY name")
	if err != nil {
		return nil, a.dbFail("GetProfileTable", err)
	}
	defer rows.Close()

	var records []types.Row
	for rows.Next() {
		var (
			name      string
			isDefault bool
		)
		if err := rows.Scan(&name, &isDefault); err != nil {
			return nil, a.dbFail("GetProfileTable", err)
		}
		if a.p.isDoomed(name) {
			continue
		}
		records = append(records, types.Row{
			{Tag: types.PR_DISPLAY_NAME_A, Value: name},
			{Tag: types.PR_DEFAULT_PROFILE, Value: isDefault},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, a.dbFail("GetProfileTable", err)
	}
	return newTable(a.p, records, profilesColumns), nil
}

// CreateProfile adds an empty profile. The password is not stored.
func (a *profAdmin) CreateProfile(name, password string, flags uint32) error {
	if name == "" {
		return a.fail("CreateProfile", types.MAPI_E_INVALID_PARAMETER, "empty profile name")
	}
	db, err := a.conn("CreateProfile")
	if err != nil {
		return err
	}
	ok, err := a.p.profileExists(db, name)
	if err != nil {
		return a.dbFail("CreateProfile", err)
	}
	if ok || a.p.isDoomed(name) {
		return a.fail("CreateProfile", types.MAPI_E_NO_ACCESS, "profile %q exists", name)
	}
	if _, err := db.Exec("INSERT INTO profiles (name, is_default, created_at) VALUES (?, 0, ?)", name, now()); err != nil {
		return a.dbFail("CreateProfile", err)
	}
	a.p.log.Debug("profile created", zap.String("profile", name))
	return nil
}

// DeleteProfile deletes a profile with its services and stores. A profile
// with sessions logged on is hidden now and deleted when the last session
// logs off.
func (a *profAdmin) DeleteProfile(name string, flags uint32) error {
	db, err := a.conn("DeleteProfile")
	if err != nil {
		return err
	}
	ok, err := a.p.profileExists(db, name)
	if err != nil {
		return a.dbFail("DeleteProfile", err)
	}
	if !ok {
		return a.fail("DeleteProfile", types.MAPI_E_NOT_FOUND, "profile %q not found", name)
	}

	a.p.mu.Lock()
	inUse := a.p.sessions[name] > 0
	if inUse {
		a.p.doomed[name] = true
	}
	a.p.mu.Unlock()
	if inUse {
		a.p.log.Debug("profile in use, deleting on logoff", zap.String("profile", name))
		return nil
	}

	if err := purgeProfile(db, name); err != nil {
		return a.dbFail("DeleteProfile", err)
	}
	a.p.log.Debug("profile deleted", zap.String("profile", name))
	return nil
}

func (a *profAdmin) SetDefaultProfile(name string, flags uint32) error {
	db, err := a.conn("SetDefaultProfile")
	if err != nil {
		return err
	}
	ok, err := a.p.profileExists(db, name)
	if err != nil {
		return a.dbFail("SetDefaultProfile", err)
	}
	if !ok {
		return a.fail("SetDefaultProfile", types.MAPI_E_NOT_FOUND, "profile %q not found", name)
	}
	if _, err := db.Exec("UPDATE profiles SET is_default = (name = ?)", name); err != nil {
		return a.dbFail("SetDefaultProfile", err)
	}
	return nil
}

// profileExists reports whether a live profile named name exists.
func (p *Provider) profileExists(q dbtx, name string) (bool, error) {
	if p.isDoomed(name) {
		return false, nil
	}
	return profileStored(q, name)
}

// profileStored reports whether the profiles table holds name, doomed or
// not. Sessions of a doomed profile keep working until they log off.
func profileStored(q dbtx, name string) (bool, error) {
	var n int
	if err := q.QueryRow("SELECT COUNT(*) FROM profiles WHERE name = ?", name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// defaultProfile returns the name of the default profile, or "".
func (p *Provider) defaultProfile(q dbtx) (string, error) {
	var name string
	err := q.QueryRow("SELECT name FROM profiles WHERE is_default = 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || p.isDoomed(name) {
		return "", nil
	}
	return name, err
}

func (p *Provider) isDoomed(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doomed[name]
}

// purgeProfile deletes a profile, its services and the stores they own.
func purgeProfile(db *sql.DB, name string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM objects WHERE store_id IN (SELECT store_id FROM services WHERE profile = ?)", name,
	); err != nil {
		return fmt.Errorf("deleting stores: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM services WHERE profile = ?", name); err != nil {
		return fmt.Errorf("deleting services: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM profiles WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return tx.Commit()
}
