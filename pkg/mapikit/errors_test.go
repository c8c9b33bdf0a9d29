package mapikit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mapikit/pkg/types"
)

func TestAnnotateWithoutSource(t *testing.T) {
	err := Annotator{CheckAll: true}.Annotate(types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND))

	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	assert.True(t, me.Annotated())
	assert.Equal(t, "MAPI_E_NOT_FOUND", me.Message)
	assert.Nil(t, me.Extended)
	assert.Equal(t, "OpenEntry: MAPI_E_NOT_FOUND (0x8004010F)", err.Error())
}

func TestAnnotateAttachesExtendedError(t *testing.T) {
	src := &fakeLastError{ext: &types.ExtendedError{Component: "store", Message: "no such folder", LowLevelError: 7}}
	a := Annotator{Source: src, CheckAll: true}

	err := a.Annotate(types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND))
	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	require.NotNil(t, me.Extended)
	assert.Equal(t, "no such folder", me.Extended.Message)
	assert.Equal(t, []uint32{0}, src.flags)
	assert.Contains(t, err.Error(), "[store: no such folder (low-level 0x00000007)]")
}

func TestAnnotateRetriesCharWidth(t *testing.T) {
	src := &fakeLastError{ext: &types.ExtendedError{Message: "wide"}, unicode: true}
	a := Annotator{Source: src, CheckAll: true}

	err := a.Annotate(types.NewError("GetProps", types.MAPI_E_CALL_FAILED))
	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	require.NotNil(t, me.Extended)
	assert.Equal(t, "wide", me.Extended.Message)
	assert.Equal(t, []uint32{0, types.MAPI_UNICODE}, src.flags)
}

func TestAnnotateIgnoresLastErrorFailure(t *testing.T) {
	// Both widths rejected: the original failure is still returned.
	src := &alwaysFailing{}
	err := Annotator{Source: src, CheckAll: true}.Annotate(types.NewError("SaveChanges", types.MAPI_E_NO_ACCESS))

	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, types.MAPI_E_NO_ACCESS, me.Code)
	assert.Nil(t, me.Extended)
	assert.Equal(t, 2, src.calls)
}

func TestAnnotateCheckAll(t *testing.T) {
	src := &fakeLastError{ext: &types.ExtendedError{Message: "details"}}
	a := Annotator{Source: src}

	err := a.Annotate(types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND))
	var me *types.MAPIError
	require.ErrorAs(t, err, &me)
	assert.Nil(t, me.Extended)
	assert.Empty(t, src.flags)

	err = a.Annotate(types.NewError("OpenEntry", types.MAPI_E_EXTENDED_ERROR))
	require.ErrorAs(t, err, &me)
	require.NotNil(t, me.Extended)
	assert.Len(t, src.flags, 1)
}

func TestAnnotatePassThrough(t *testing.T) {
	src := &fakeLastError{ext: &types.ExtendedError{Message: "details"}}
	a := Annotator{Source: src, CheckAll: true}

	plain := errors.New("disk on fire")
	assert.Same(t, plain, a.Annotate(plain))
	assert.NoError(t, a.Annotate(nil))

	wrapped := fmt.Errorf("open: %w", types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND))
	assert.Equal(t, wrapped, a.Annotate(wrapped), "only direct provider errors are annotated")

	once := a.Annotate(types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND))
	twice := a.Annotate(once)
	assert.Same(t, once, twice)
	assert.Len(t, src.flags, 1)
}

func TestAnnotateLeavesOriginalUntouched(t *testing.T) {
	orig := types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND)
	_ = Annotate(orig)
	assert.False(t, orig.Annotated())
	assert.Empty(t, orig.Message)
}

func TestAnnotateKeepsProviderMessage(t *testing.T) {
	err := Annotate(types.Errorf("OpenEntry", types.MAPI_E_NOT_FOUND, "folder %q missing", "Inbox"))
	assert.Equal(t, `OpenEntry: folder "Inbox" missing (0x8004010F)`, err.Error())
	assert.True(t, errors.Is(err, types.NewError("", types.MAPI_E_NOT_FOUND)))
}

type alwaysFailing struct{ calls int }

func (a *alwaysFailing) GetLastError(code types.SCode, flags uint32) (*types.ExtendedError, error) {
	a.calls++
	return nil, types.NewError("GetLastError", types.MAPI_E_BAD_CHARWIDTH)
}
