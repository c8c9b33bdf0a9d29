package sqlite

import (
	"encoding/binary"
	"slices"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Default column sets per table.
var (
	contentsColumns  = []types.PropTag{types.PR_ENTRYID, types.PR_SUBJECT_W, types.PR_MESSAGE_CLASS_W, types.PR_MESSAGE_FLAGS, types.PR_CREATION_TIME}
	hierarchyColumns = []types.PropTag{types.PR_ENTRYID, types.PR_DISPLAY_NAME_W, types.PR_CONTENT_COUNT, types.PR_SUBFOLDERS}
	storesColumns    = []types.PropTag{types.PR_ENTRYID, types.PR_DISPLAY_NAME_W, types.PR_DEFAULT_STORE, types.PR_SERVICE_UID}
	profilesColumns  = []types.PropTag{types.PR_DISPLAY_NAME_A, types.PR_DEFAULT_PROFILE}
	servicesColumns  = []types.PropTag{types.PR_SERVICE_UID, types.PR_SERVICE_NAME_W, types.PR_DISPLAY_NAME_W}
)

// table is a cursor over a snapshot of records taken when it was opened.
// The cursor sits in [-1, len(records)]: forward reads start at it and
// backward reads start at it and move toward the beginning.
type table struct {
	object
	records []types.Row
	columns []types.PropTag
	pos     int
}

// newTable returns a table over records. Every record gets a
// PR_INSTANCE_KEY unique within the table.
func newTable(p *Provider, records []types.Row, columns []types.PropTag) *table {
	for i, rec := range records {
		if _, ok := rec.Get(types.PR_INSTANCE_KEY); !ok {
			key := binary.BigEndian.AppendUint32(nil, uint32(i+1))
			records[i] = append(rec, types.PropValue{Tag: types.PR_INSTANCE_KEY, Value: key})
		}
	}
	return &table{
		object:  newObject(p, provider.KindTable),
		records: records,
		columns: slices.Clone(columns),
	}
}

func (t *table) SetColumns(tags []types.PropTag, flags uint32) error {
	if len(tags) == 0 {
		return t.fail("SetColumns", types.MAPI_E_INVALID_PARAMETER, "empty column set")
	}
	t.columns = slices.Clone(tags)
	return nil
}

func (t *table) QueryColumns(flags uint32) ([]types.PropTag, error) {
	return slices.Clone(t.columns), nil
}

func (t *table) QueryRows(count int, flags uint32) ([]types.Row, error) {
	var out []types.Row
	if count < 0 {
		t.pos = min(t.pos, len(t.records)-1)
		for i := 0; i < -count && t.pos >= 0; i++ {
			out = append(out, t.project(t.records[t.pos]))
			t.pos--
		}
		return out, nil
	}
	start := max(t.pos, 0)
	end := min(start+count, len(t.records))
	for _, rec := range t.records[start:end] {
		out = append(out, t.project(rec))
	}
	t.pos = end
	return out, nil
}

// project returns the current columns of rec. A column the record lacks
// is a PT_ERROR value carrying MAPI_E_NOT_FOUND.
func (t *table) project(rec types.Row) types.Row {
	row := make(types.Row, len(t.columns))
	for i, col := range t.columns {
		v, ok := lookup(rec, col)
		if !ok {
			v = types.ErrorValue(col, types.MAPI_E_NOT_FOUND)
		}
		row[i] = v.Clone()
	}
	return row
}

func (t *table) FindRow(res restriction.Restriction, bookmark types.Bookmark, flags uint32) error {
	start, err := t.origin("FindRow", bookmark)
	if err != nil {
		return err
	}
	if flags&types.DIR_BACKWARD != 0 {
		for i := min(start, len(t.records)-1); i >= 0; i-- {
			if ok, err := t.matches(res, i); err != nil || ok {
				return err
			}
		}
	} else {
		for i := max(start, 0); i < len(t.records); i++ {
			if ok, err := t.matches(res, i); err != nil || ok {
				return err
			}
		}
	}
	return t.fail("FindRow", types.MAPI_E_NOT_FOUND, "no row matches %s", res)
}

// matches tests record i and moves the cursor onto it when it matches.
func (t *table) matches(res restriction.Restriction, i int) (bool, error) {
	ok, err := match(res, t.records[i])
	if err != nil {
		return false, t.fail("FindRow", types.MAPI_E_TOO_COMPLEX, "%v", err)
	}
	if ok {
		t.pos = i
	}
	return ok, nil
}

func (t *table) SeekRow(bookmark types.Bookmark, count int) (int, error) {
	base, err := t.origin("SeekRow", bookmark)
	if err != nil {
		return 0, err
	}
	t.pos = max(0, min(base+count, len(t.records)))
	return t.pos - base, nil
}

func (t *table) GetRowCount(flags uint32) (int, error) { return len(t.records), nil }

func (t *table) origin(op string, bookmark types.Bookmark) (int, error) {
	switch bookmark {
	case types.BOOKMARK_BEGINNING:
		return 0, nil
	case types.BOOKMARK_CURRENT:
		return t.pos, nil
	case types.BOOKMARK_END:
		return len(t.records), nil
	}
	return 0, t.fail(op, types.MAPI_E_INVALID_BOOKMARK, "unknown bookmark %s", bookmark)
}

// loadRecords returns the records of the given entries in order.
func loadRecords(q dbtx, ids [][]byte) ([]types.Row, error) {
	records := make([]types.Row, 0, len(ids))
	for _, id := range ids {
		e, err := loadEntry(q, id)
		if err != nil {
			return nil, err
		}
		rec, err := e.record(q)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// queryIDs runs a query returning a single blob column.
func queryIDs(q dbtx, query string, args ...any) ([][]byte, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids [][]byte
	for rows.Next() {
		var id []byte
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
