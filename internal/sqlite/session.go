package sqlite

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// session is a logon to one profile. It sees the stores of the profile's
// store services.
type session struct {
	object
	profile   string
	loggedOff bool
}

func newSession(p *Provider, profile string) *session {
	return &session{object: newObject(p, provider.KindSession), profile: profile}
}

// Release logs the session off if that has not happened yet.
func (s *session) Release() error {
	if s.loggedOff {
		return nil
	}
	return s.Logoff(0)
}

func (s *session) Logoff(flags uint32) error {
	if s.loggedOff {
		return s.fail("Logoff", types.MAPI_E_END_OF_SESSION, "session already logged off")
	}
	s.loggedOff = true
	s.p.log.Debug("logoff", zap.String("profile", s.profile))
	if err := s.p.logoff(s.profile); err != nil {
		return s.dbFail("Logoff", err)
	}
	return nil
}

// live returns the database for a call on a logged-on session.
func (s *session) live(op string) (*sql.DB, error) {
	if s.loggedOff {
		return nil, s.fail(op, types.MAPI_E_END_OF_SESSION, "session is logged off")
	}
	return s.conn(op)
}

func (s *session) GetMsgStoresTable(flags uint32) (provider.Table, error) {
	db, err := s.live("GetMsgStoresTable")
	if err != nil {
		return nil, err
	}
	ids, err := queryIDs(db,
		`SELECT store_id FROM services WHERE profile = ? AND store_id IS NOT NULL
         ORDER BY created_at, rowid`, s.profile)
	if err != nil {
		return nil, s.dbFail("GetMsgStoresTable", err)
	}
	records, err := loadRecords(db, ids)
	if err != nil {
		return nil, s.dbFail("GetMsgStoresTable", err)
	}
	s.p.log.Debug("stores table opened", zap.String("profile", s.profile), zap.Int("rows", len(records)))
	return newTable(s.p, records, storesColumns), nil
}

func (s *session) OpenMsgStore(entryID []byte, flags uint32) (provider.MsgStore, error) {
	u, err := s.openEntry("OpenMsgStore", entryID)
	if err != nil {
		return nil, err
	}
	ms, ok := u.(*msgStore)
	if !ok {
		return nil, s.fail("OpenMsgStore", types.MAPI_E_INVALID_ENTRYID, "entry is not a store")
	}
	return ms, nil
}

func (s *session) OpenEntry(entryID []byte, flags uint32) (provider.Unknown, error) {
	return s.openEntry("OpenEntry", entryID)
}

// openEntry opens any object inside one of the profile's stores.
func (s *session) openEntry(op string, entryID []byte) (provider.Unknown, error) {
	db, err := s.live(op)
	if err != nil {
		return nil, err
	}
	if len(entryID) == 0 {
		return nil, s.fail(op, types.MAPI_E_INVALID_ENTRYID, "empty entry id")
	}
	e, err := loadEntry(db, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.fail(op, types.MAPI_E_NOT_FOUND, "entry %x not found", entryID)
	}
	if err != nil {
		return nil, s.dbFail(op, err)
	}

	var n int
	err = db.QueryRow(
		"SELECT COUNT(*) FROM services WHERE profile = ? AND store_id = ?", s.profile, e.store,
	).Scan(&n)
	if err != nil {
		return nil, s.dbFail(op, err)
	}
	if n == 0 {
		return nil, s.fail(op, types.MAPI_E_NOT_FOUND, "entry %x is not in this profile", entryID)
	}
	return open(s.p, e), nil
}

func (s *session) AdminServices(flags uint32) (provider.MsgServiceAdmin, error) {
	if _, err := s.live("AdminServices"); err != nil {
		return nil, err
	}
	return &serviceAdmin{object: newObject(s.p, provider.KindMsgServiceAdmin), profile: s.profile}, nil
}
