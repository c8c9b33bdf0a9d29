package mapikit

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Service name of the personal store service.
const ServicePST = "MSUPST MS"

// Session is a logged-on profile. Releasing a session logs it off first.
type Session struct {
	*Handle
}

func newSession(h *Handle) (Object, error) {
	if err := capable[provider.Session](h); err != nil {
		return nil, err
	}
	h.teardown = func(raw provider.Unknown) error {
		return raw.(provider.Session).Logoff(0)
	}
	return &Session{Handle: h}, nil
}

// MsgStoresTable opens the table of the profile's message stores.
func (s *Session) MsgStoresTable(flags uint32) (*Table, error) {
	raw, err := rawAs[provider.Session](s.Handle)
	if err != nil {
		return nil, err
	}
	t, err := raw.GetMsgStoresTable(flags)
	if err != nil {
		return nil, s.annotate(err)
	}
	return wrapAs[*Table](s.env, t)
}

// OpenMsgStore opens the store with the given entry id.
func (s *Session) OpenMsgStore(entryID []byte, flags uint32) (*MsgStore, error) {
	raw, err := rawAs[provider.Session](s.Handle)
	if err != nil {
		return nil, err
	}
	ms, err := raw.OpenMsgStore(entryID, flags)
	if err != nil {
		return nil, s.annotate(err)
	}
	return wrapAs[*MsgStore](s.env, ms)
}

// OpenEntry opens any object by entry id and returns it wrapped in the
// wrapper registered for its kind.
func (s *Session) OpenEntry(entryID []byte, flags uint32) (Object, error) {
	raw, err := rawAs[provider.Session](s.Handle)
	if err != nil {
		return nil, err
	}
	obj, err := raw.OpenEntry(entryID, flags)
	if err != nil {
		return nil, s.annotate(err)
	}
	return s.env.registry.wrap(s.env, obj)
}

// AdminServices opens the message service administration object of the
// session's profile.
func (s *Session) AdminServices(flags uint32) (*MsgServiceAdmin, error) {
	raw, err := rawAs[provider.Session](s.Handle)
	if err != nil {
		return nil, err
	}
	a, err := raw.AdminServices(flags)
	if err != nil {
		return nil, s.annotate(err)
	}
	return wrapAs[*MsgServiceAdmin](s.env, a)
}

// OpenDefaultStore opens the store flagged PR_DEFAULT_STORE. It fails with
// types.ErrNoDefault when the profile has none.
func (s *Session) OpenDefaultStore(flags uint32) (*MsgStore, error) {
	res := restriction.And(
		restriction.Exists(types.PR_DEFAULT_STORE),
		restriction.MustCompare(restriction.RELOP_EQ, types.PR_DEFAULT_STORE, true),
	)
	id, err := s.findStore(res)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%s: %w", types.PropTagName(types.PR_DEFAULT_STORE), types.ErrNoDefault)
	}
	return s.OpenMsgStore(id, flags)
}

// OpenPSTFile adds a personal store service for path to the profile and
// opens its store. The service is removed again if the store cannot be
// opened.
func (s *Session) OpenPSTFile(path string, flags uint32) (_ *MsgStore, err error) {
	admin, err := s.AdminServices(0)
	if err != nil {
		return nil, err
	}
	defer admin.Release()

	uid, err := admin.Create(ServicePST, "", types.SERVICE_NO_RESTART_WARNING)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, admin.Delete(uid))
		}
	}()

	pv, err := types.NewPropValue(types.PR_PST_PATH_W, path)
	if err != nil {
		return nil, err
	}
	if err := admin.Configure(uid, 0, pv); err != nil {
		return nil, err
	}

	res := restriction.And(
		restriction.Exists(types.PR_SERVICE_UID),
		restriction.MustCompare(restriction.RELOP_EQ, types.PR_SERVICE_UID, bytes.Clone(uid)),
	)
	id, err := s.findStore(res)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%s: %w", types.PropTagName(types.PR_SERVICE_UID), types.ErrKeyNotFound)
	}
	return s.OpenMsgStore(id, flags)
}

// findStore returns the entry id of the first store matching res, or nil.
func (s *Session) findStore(res restriction.Restriction) ([]byte, error) {
	t, err := s.MsgStoresTable(0)
	if err != nil {
		return nil, err
	}
	defer t.Release()

	if err := t.SetColumns([]types.PropTag{types.PR_ENTRYID}, types.TBL_BATCH); err != nil {
		return nil, err
	}
	row, ok, err := t.First(res)
	if err != nil || !ok {
		return nil, err
	}
	v, ok := row.Get(types.PR_ENTRYID)
	if !ok {
		return nil, nil
	}
	id, _ := v.Bytes()
	return bytes.Clone(id), nil
}
