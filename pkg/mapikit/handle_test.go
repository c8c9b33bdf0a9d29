package mapikit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

func TestReleaseIsIdempotent(t *testing.T) {
	c := New(nil)
	raw := newFakeProp(provider.KindMessage)
	msg, err := WrapAs[*Message](c, raw)
	require.NoError(t, err)

	assert.False(t, msg.Released())
	require.NoError(t, msg.Release())
	assert.True(t, msg.Released())
	require.NoError(t, msg.Release())
	assert.Equal(t, 1, raw.releases, "provider resource released exactly once")
}

func TestUseAfterRelease(t *testing.T) {
	c := New(nil)
	raw := newFakeProp(provider.KindMessage)
	raw.props[types.PR_SUBJECT_W] = types.MustPropValue(types.PR_SUBJECT_W, "hi")
	msg, err := WrapAs[*Message](c, raw)
	require.NoError(t, err)
	require.NoError(t, msg.Release())

	_, err = msg.Get(types.PR_SUBJECT_W)
	assert.ErrorIs(t, err, types.ErrReleased)
	assert.ErrorIs(t, msg.Set(types.PR_SUBJECT_W, "x"), types.ErrReleased)
	assert.ErrorIs(t, msg.Delete(types.PR_SUBJECT_W), types.ErrReleased)
	_, err = msg.Contains(types.PR_SUBJECT_W)
	assert.ErrorIs(t, err, types.ErrReleased)
	_, err = msg.Invoke(func(provider.Unknown) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, types.ErrReleased)
	_, err = msg.Raw()
	assert.ErrorIs(t, err, types.ErrReleased)

	tbl, err := WrapAs[*Table](c, newFakeTable(nil))
	require.NoError(t, err)
	require.NoError(t, tbl.Release())
	for _, err := range tbl.Rows() {
		assert.ErrorIs(t, err, types.ErrReleased)
	}
}

func TestWrapTypeMismatch(t *testing.T) {
	c := New(nil)

	tbl := newFakeTable(nil)
	_, err := WrapAs[*Session](c, tbl)
	var tm *types.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, "Table object is not a Session object", err.Error())
	assert.Equal(t, 1, tbl.releases, "a resource that cannot be wrapped is released")

	msg := newFakeProp(provider.KindMessage)
	_, err = WrapAs[*Prop](c, msg)
	assert.ErrorIs(t, err, types.ErrTypeMismatch, "a message is wrapped as Message, not Prop")
	assert.Equal(t, 1, msg.releases)

	// A resource claiming a kind it cannot serve.
	liar := &fakeUnknown{kind: provider.KindTable}
	_, err = c.Wrap(liar)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, 1, liar.releases)

	unknown := &fakeUnknown{kind: provider.Kind(99)}
	_, err = c.Wrap(unknown)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, 1, unknown.releases)
}

func TestRegistryIsPerClient(t *testing.T) {
	r := NewRegistry()
	r.Register(provider.Kind(99), func(h *Handle) (Object, error) { return h, nil })
	custom := New(nil, WithRegistry(r))

	obj, err := custom.Wrap(&fakeUnknown{kind: provider.Kind(99)})
	require.NoError(t, err)
	assert.Equal(t, provider.Kind(99), obj.Kind())

	_, err = New(nil).Wrap(&fakeUnknown{kind: provider.Kind(99)})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestSessionReleaseLogsOff(t *testing.T) {
	c := New(nil)
	raw := &fakeSession{fakeUnknown: fakeUnknown{kind: provider.KindSession}}
	sess, err := WrapAs[*Session](c, raw)
	require.NoError(t, err)

	require.NoError(t, sess.Release())
	require.NoError(t, sess.Release())
	assert.Equal(t, 1, raw.logoffs)
	assert.Equal(t, 1, raw.releases)
}

func TestInvokeWrapsResults(t *testing.T) {
	c := New(nil)
	raw := &fakeSession{fakeUnknown: fakeUnknown{kind: provider.KindSession}}
	sess, err := WrapAs[*Session](c, raw)
	require.NoError(t, err)
	defer sess.Release()

	got, err := sess.Invoke(func(u provider.Unknown) (any, error) {
		return u.(provider.Session).GetMsgStoresTable(0)
	})
	require.NoError(t, err)
	tbl, ok := got.(*Table)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, types.DefaultPrefetch, tbl.Prefetch())

	liar := &fakeUnknown{kind: provider.KindTable}
	_, err = sess.Invoke(func(provider.Unknown) (any, error) { return liar, nil })
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	assert.Equal(t, 1, liar.releases)

	got, err = sess.Invoke(func(provider.Unknown) (any, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = sess.Invoke(func(provider.Unknown) (any, error) {
		return nil, types.NewError("Frob", types.MAPI_E_NO_SUPPORT)
	})
	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	assert.True(t, me.Annotated())
	assert.Equal(t, "MAPI_E_NO_SUPPORT", me.Message)
}

func TestUseReleasesOnEveryPath(t *testing.T) {
	c := New(nil)

	raw := newFakeProp(provider.KindMessage)
	msg, err := WrapAs[*Message](c, raw)
	require.NoError(t, err)
	boom := errors.New("boom")
	err = Use(msg, func(m *Message) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, msg.Released())

	raw2 := newFakeProp(provider.KindMessage)
	msg2, err := WrapAs[*Message](c, raw2)
	require.NoError(t, err)
	assert.Panics(t, func() {
		_ = Use(msg2, func(m *Message) error { panic("scope body failed") })
	})
	assert.True(t, msg2.Released())
	assert.Equal(t, 1, raw2.releases)
}
