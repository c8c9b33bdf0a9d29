package mapikit

import (
	"fmt"
	"iter"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// ProfAdmin administers profiles.
type ProfAdmin struct {
	*Handle
}

func newProfAdmin(h *Handle) (Object, error) {
	if err := capable[provider.ProfAdmin](h); err != nil {
		return nil, err
	}
	return &ProfAdmin{Handle: h}, nil
}

// ProfileTable opens the profile table.
func (a *ProfAdmin) ProfileTable(flags uint32) (*Table, error) {
	raw, err := rawAs[provider.ProfAdmin](a.Handle)
	if err != nil {
		return nil, err
	}
	t, err := raw.GetProfileTable(flags)
	if err != nil {
		return nil, a.annotate(err)
	}
	return wrapAs[*Table](a.env, t)
}

// Default returns the name of the default profile. It fails with
// types.ErrNoDefault when no profile is the default.
func (a *ProfAdmin) Default() (string, error) {
	t, err := a.ProfileTable(0)
	if err != nil {
		return "", err
	}
	defer t.Release()

	if err := t.SetColumns([]types.PropTag{types.PR_DISPLAY_NAME_A}, types.TBL_BATCH); err != nil {
		return "", err
	}
	res := restriction.And(
		restriction.Exists(types.PR_DEFAULT_PROFILE),
		restriction.MustCompare(restriction.RELOP_EQ, types.PR_DEFAULT_PROFILE, true),
	)
	row, ok, err := t.First(res)
	if err != nil {
		return "", err
	}
	if ok {
		if v, ok := row.Get(types.PR_DISPLAY_NAME_A); ok {
			name, _ := v.Str()
			return name, nil
		}
	}
	return "", fmt.Errorf("%s: %w", types.PropTagName(types.PR_DEFAULT_PROFILE), types.ErrNoDefault)
}

// SetDefault makes name the default profile.
func (a *ProfAdmin) SetDefault(name string) error {
	raw, err := rawAs[provider.ProfAdmin](a.Handle)
	if err != nil {
		return err
	}
	return a.annotate(raw.SetDefaultProfile(name, 0))
}

// Contains reports whether a profile named name exists.
func (a *ProfAdmin) Contains(name string) (bool, error) {
	t, err := a.ProfileTable(0)
	if err != nil {
		return false, err
	}
	defer t.Release()

	res, err := restriction.Compare(restriction.RELOP_EQ, types.PR_DISPLAY_NAME_A, name)
	if err != nil {
		return false, err
	}
	err = t.FindRow(res, types.BOOKMARK_BEGINNING, 0)
	switch {
	case err == nil:
		return true, nil
	case types.IsCode(err, types.MAPI_E_NOT_FOUND):
		return false, nil
	}
	return false, err
}

// Profiles yields the name of every profile.
func (a *ProfAdmin) Profiles() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		t, err := a.ProfileTable(0)
		if err != nil {
			yield("", err)
			return
		}
		defer t.Release()

		if err := t.SetColumns([]types.PropTag{types.PR_DISPLAY_NAME_A}, types.TBL_BATCH); err != nil {
			yield("", err)
			return
		}
		for row, err := range t.Rows() {
			if err != nil {
				yield("", err)
				return
			}
			v, ok := row.Get(types.PR_DISPLAY_NAME_A)
			if !ok {
				continue
			}
			name, _ := v.Str()
			if !yield(name, nil) {
				return
			}
		}
	}
}

// Create creates a profile.
func (a *ProfAdmin) Create(name, password string, flags uint32) error {
	raw, err := rawAs[provider.ProfAdmin](a.Handle)
	if err != nil {
		return err
	}
	return a.annotate(raw.CreateProfile(name, password, flags))
}

// Delete deletes a profile.
func (a *ProfAdmin) Delete(name string, flags uint32) error {
	raw, err := rawAs[provider.ProfAdmin](a.Handle)
	if err != nil {
		return err
	}
	return a.annotate(raw.DeleteProfile(name, flags))
}

// MsgServiceAdmin administers the message services of a profile.
type MsgServiceAdmin struct {
	*Handle
}

func newMsgServiceAdmin(h *Handle) (Object, error) {
	if err := capable[provider.MsgServiceAdmin](h); err != nil {
		return nil, err
	}
	return &MsgServiceAdmin{Handle: h}, nil
}

// ServiceTable opens the table of the profile's services.
func (a *MsgServiceAdmin) ServiceTable(flags uint32) (*Table, error) {
	raw, err := rawAs[provider.MsgServiceAdmin](a.Handle)
	if err != nil {
		return nil, err
	}
	t, err := raw.GetMsgServiceTable(flags)
	if err != nil {
		return nil, a.annotate(err)
	}
	return wrapAs[*Table](a.env, t)
}

// Create adds a service to the profile and returns its uid.
func (a *MsgServiceAdmin) Create(service, displayName string, flags uint32) ([]byte, error) {
	raw, err := rawAs[provider.MsgServiceAdmin](a.Handle)
	if err != nil {
		return nil, err
	}
	uid, err := raw.CreateMsgService(service, displayName, flags)
	if err != nil {
		return nil, a.annotate(err)
	}
	return uid, nil
}

// Configure sets properties on a service.
func (a *MsgServiceAdmin) Configure(uid []byte, flags uint32, props ...types.PropValue) error {
	raw, err := rawAs[provider.MsgServiceAdmin](a.Handle)
	if err != nil {
		return err
	}
	return a.annotate(raw.ConfigureMsgService(uid, flags, props))
}

// Delete removes a service from the profile.
func (a *MsgServiceAdmin) Delete(uid []byte) error {
	raw, err := rawAs[provider.MsgServiceAdmin](a.Handle)
	if err != nil {
		return err
	}
	return a.annotate(raw.DeleteMsgService(uid))
}
