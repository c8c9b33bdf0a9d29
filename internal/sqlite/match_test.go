package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

func TestMatch(t *testing.T) {
	sent := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	row := types.Row{
		types.MustPropValue(types.PR_SUBJECT_W, "Café meeting notes"),
		types.MustPropValue(types.PR_IMPORTANCE, 2),
		types.MustPropValue(types.PR_MESSAGE_FLAGS, 0x0009),
		types.MustPropValue(types.PR_MESSAGE_DELIVERY_TIME, sent),
		types.MustPropValue(types.PR_ENTRYID, []byte{0xAB, 0xCD, 0xEF}),
	}

	tests := []struct {
		name string
		res  restriction.Restriction
		want bool
	}{
		{"equal", restriction.MustCompare(restriction.RELOP_EQ, types.PR_IMPORTANCE, 2), true},
		{"not equal", restriction.MustCompare(restriction.RELOP_NE, types.PR_IMPORTANCE, 2), false},
		{"less", restriction.MustCompare(restriction.RELOP_LT, types.PR_IMPORTANCE, 3), true},
		{"greater or equal", restriction.MustCompare(restriction.RELOP_GE, types.PR_IMPORTANCE, 3), false},
		{"time", restriction.MustCompare(restriction.RELOP_GT, types.PR_MESSAGE_DELIVERY_TIME, sent.Add(-time.Hour)), true},
		{"binary", restriction.MustCompare(restriction.RELOP_EQ, types.PR_ENTRYID, []byte{0xAB, 0xCD, 0xEF}), true},
		{"narrow against wide", restriction.MustCompare(restriction.RELOP_EQ, types.PR_SUBJECT_W.WithType(types.PT_STRING8), "Café meeting notes"), true},
		{"regexp", restriction.MustCompare(restriction.RELOP_RE, types.PR_SUBJECT_W, `^Caf. meet`), true},
		{"missing property", restriction.MustCompare(restriction.RELOP_EQ, types.PR_BODY_W, "x"), false},
		{"not missing", restriction.Not(restriction.MustCompare(restriction.RELOP_EQ, types.PR_BODY_W, "x")), true},
		{"exists", restriction.Exists(types.PR_SUBJECT_W), true},
		{"not exists", restriction.Exists(types.PR_BODY_W), false},
		{"substring", restriction.MustContentMatch(restriction.FL_SUBSTRING, types.PR_SUBJECT_W, "meeting"), true},
		{"case sensitive", restriction.MustContentMatch(restriction.FL_SUBSTRING, types.PR_SUBJECT_W, "MEETING"), false},
		{"ignore case", restriction.MustContentMatch(restriction.FL_SUBSTRING|restriction.FL_IGNORECASE, types.PR_SUBJECT_W, "MEETING"), true},
		{"ignore nonspace", restriction.MustContentMatch(restriction.FL_PREFIX|restriction.FL_IGNORENONSPACE, types.PR_SUBJECT_W, "Cafe"), true},
		{"loose", restriction.MustContentMatch(restriction.FL_FULLSTRING|restriction.FL_LOOSE, types.PR_SUBJECT_W, "CAFE MEETING NOTES"), true},
		{"full string", restriction.MustContentMatch(restriction.FL_FULLSTRING, types.PR_SUBJECT_W, "Café"), false},
		{"binary prefix", restriction.MustContentMatch(restriction.FL_PREFIX, types.PR_ENTRYID, []byte{0xAB}), true},
		{"bitmask set", restriction.BitmaskMatch(restriction.BMR_NEZ, types.PR_MESSAGE_FLAGS, 0x0001), true},
		{"bitmask clear", restriction.BitmaskMatch(restriction.BMR_EQZ, types.PR_MESSAGE_FLAGS, 0x0002), true},
		{"bitmask not clear", restriction.BitmaskMatch(restriction.BMR_EQZ, types.PR_MESSAGE_FLAGS, 0x0008), false},
		{"and", restriction.And(
			restriction.Exists(types.PR_IMPORTANCE),
			restriction.MustCompare(restriction.RELOP_EQ, types.PR_IMPORTANCE, 2),
		), true},
		{"or", restriction.Or(
			restriction.MustCompare(restriction.RELOP_EQ, types.PR_IMPORTANCE, 1),
			restriction.Exists(types.PR_ENTRYID),
		), true},
		{"any of none", restriction.AnyOf(
			restriction.MustCompare(restriction.RELOP_EQ, types.PR_IMPORTANCE, 1),
			restriction.MustCompare(restriction.RELOP_EQ, types.PR_IMPORTANCE, 3),
		), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := match(tt.res, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchBadPattern(t *testing.T) {
	row := types.Row{types.MustPropValue(types.PR_SUBJECT_W, "x")}
	_, err := match(restriction.MustCompare(restriction.RELOP_RE, types.PR_SUBJECT_W, "("), row)
	assert.Error(t, err)
}

func TestTableCursor(t *testing.T) {
	p := New(types.Config{DataDir: t.TempDir()}, nil)
	var records []types.Row
	for i := range 5 {
		records = append(records, types.Row{types.MustPropValue(types.PR_IMPORTANCE, i)})
	}
	tbl := newTable(p, records, []types.PropTag{types.PR_IMPORTANCE, types.PR_SUBJECT_W})

	rows, err := tbl.QueryRows(2, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[1][0].Value)
	code, ok := rows[0][1].Code()
	require.True(t, ok, "missing column is an error value")
	assert.Equal(t, types.MAPI_E_NOT_FOUND, code)

	// Backward reads start at the cursor and move toward the beginning.
	rows, err = tbl.QueryRows(-2, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0][0].Value)
	assert.Equal(t, int64(1), rows[1][0].Value)

	moved, err := tbl.SeekRow(types.BOOKMARK_END, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, moved)
	rows, err = tbl.QueryRows(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0][0].Value)

	// At the end, a backward read starts at the last row.
	rows, err = tbl.QueryRows(-3, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(4), rows[0][0].Value)
	assert.Equal(t, int64(2), rows[2][0].Value)

	_, err = tbl.SeekRow(types.BOOKMARK_END, 0)
	require.NoError(t, err)
	rows, err = tbl.QueryRows(-10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, int64(0), rows[4][0].Value)
	rows, err = tbl.QueryRows(-1, 0)
	require.NoError(t, err)
	assert.Empty(t, rows, "nothing before the first row")

	err = tbl.FindRow(restriction.MustCompare(restriction.RELOP_LT, types.PR_IMPORTANCE, 2), types.BOOKMARK_END, types.DIR_BACKWARD)
	require.NoError(t, err)
	rows, err = tbl.QueryRows(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0][0].Value)

	err = tbl.FindRow(restriction.MustCompare(restriction.RELOP_GT, types.PR_IMPORTANCE, 9), types.BOOKMARK_BEGINNING, 0)
	assert.True(t, types.IsCode(err, types.MAPI_E_NOT_FOUND))

	err = tbl.SetColumns(nil, 0)
	assert.True(t, types.IsCode(err, types.MAPI_E_INVALID_PARAMETER))

	n, err := tbl.GetRowCount(0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
