package mapikit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

func newFakeStore(isDefault bool) *fakeStore {
	st := &fakeStore{fakeProp: newFakeProp(provider.KindMsgStore)}
	st.props[types.PR_DEFAULT_STORE] = types.MustPropValue(types.PR_DEFAULT_STORE, isDefault)
	return st
}

func newTestSession(t *testing.T, stores map[string]*fakeStore) *Session {
	t.Helper()
	raw := &fakeSession{fakeUnknown: fakeUnknown{kind: provider.KindSession}, stores: stores}
	sess, err := WrapAs[*Session](New(nil), raw)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Release() })
	return sess
}

func TestOpenDefaultStore(t *testing.T) {
	primary := newFakeStore(true)
	sess := newTestSession(t, map[string]*fakeStore{
		"archive": newFakeStore(false),
		"primary": primary,
	})

	ms, err := sess.OpenDefaultStore(0)
	require.NoError(t, err)
	isDefault, err := ms.Get(types.PR_DEFAULT_STORE)
	require.NoError(t, err)
	assert.Equal(t, true, isDefault.Value)

	require.NoError(t, ms.Release())
	assert.Equal(t, 1, primary.logoffs, "releasing a store logs it off")
	assert.Equal(t, 1, primary.releases)
}

func TestOpenDefaultStoreNone(t *testing.T) {
	sess := newTestSession(t, map[string]*fakeStore{
		"archive": newFakeStore(false),
	})

	_, err := sess.OpenDefaultStore(0)
	assert.ErrorIs(t, err, types.ErrNoDefault)
}

func TestOpenDefaultStoreIgnoresStoresWithoutFlag(t *testing.T) {
	bare := &fakeStore{fakeProp: newFakeProp(provider.KindMsgStore)}
	sess := newTestSession(t, map[string]*fakeStore{"bare": bare})

	_, err := sess.OpenDefaultStore(0)
	assert.ErrorIs(t, err, types.ErrNoDefault)
}

func TestOpenMsgStoreUnknown(t *testing.T) {
	sess := newTestSession(t, nil)

	_, err := sess.OpenMsgStore([]byte("nope"), 0)
	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, types.MAPI_E_NOT_FOUND, me.Code)
	assert.True(t, me.Annotated())
}

func TestOpenEntryWrapsByKind(t *testing.T) {
	sess := newTestSession(t, map[string]*fakeStore{"primary": newFakeStore(true)})

	obj, err := sess.OpenEntry([]byte("primary"), 0)
	require.NoError(t, err)
	defer obj.Release()
	_, ok := obj.(*MsgStore)
	assert.True(t, ok, "got %T", obj)
}

func TestOpenPSTFileUnsupported(t *testing.T) {
	sess := newTestSession(t, nil)

	_, err := sess.OpenPSTFile("/tmp/archive.pst", 0)
	assert.True(t, types.IsCode(err, types.MAPI_E_NO_SUPPORT))
}

func TestTempProfileName(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)
	assert.Equal(t, "MAPIKit.TempProfile.1772366400.250[4242]", TempProfileName(now, 4242))
}
