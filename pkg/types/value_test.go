package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropValue(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		tag     PropTag
		in      any
		want    any
		wantErr bool
	}{
		{"binary", PR_ENTRYID, []byte{1, 2}, []byte{1, 2}, false},
		{"unicode", PR_SUBJECT_W, "hello", "hello", false},
		{"string8 from bytes", PR_DISPLAY_NAME_A, []byte("abc"), "abc", false},
		{"int widened", PR_MESSAGE_FLAGS, int32(8), int64(8), false},
		{"int from int", PR_MESSAGE_SIZE, 42, int64(42), false},
		{"bool", PR_DEFAULT_STORE, true, true, false},
		{"time", PR_CREATION_TIME, now, now, false},
		{"string into binary", PR_ENTRYID, "nope", nil, true},
		{"bool into int", PR_MESSAGE_FLAGS, true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewPropValue(tt.tag, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrTypeMismatch))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tag, v.Tag)
			assert.Equal(t, tt.want, v.Value)
		})
	}
}

func TestPropValueCloneOwnsBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	v := MustPropValue(PR_ENTRYID, src)
	c := v.Clone()
	src[0] = 9
	b, ok := c.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)
	assert.False(t, v.Equal(c))
}

func TestErrorValue(t *testing.T) {
	v := ErrorValue(PR_BODY_W, MAPI_E_NOT_ENOUGH_MEMORY)
	assert.Equal(t, PT_ERROR, v.Tag.Type())
	assert.Equal(t, PR_BODY_W.ID(), v.Tag.ID())
	code, ok := v.Code()
	require.True(t, ok)
	assert.Equal(t, MAPI_E_NOT_ENOUGH_MEMORY, code)
}

func TestRowGet(t *testing.T) {
	row := Row{
		MustPropValue(PR_ENTRYID, []byte{1}),
		ErrorValue(PR_SUBJECT_W, MAPI_E_NOT_FOUND),
	}
	_, ok := row.Get(PR_ENTRYID)
	assert.True(t, ok)
	_, ok = row.Get(PR_SUBJECT_W)
	assert.False(t, ok)
}

func TestZeroValue(t *testing.T) {
	v, err := ZeroValue(PT_LONG)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = ZeroValue(PT_CLSID)
	assert.ErrorIs(t, err, ErrUnsupported)
}
