package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// dbtx is the part of *sql.DB and *sql.Tx the provider uses.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// object is the state shared by every resource the provider hands out. It
// records the detail of its most recent failure for GetLastError.
type object struct {
	p    *Provider
	kind provider.Kind
	last *types.ExtendedError
}

func newObject(p *Provider, kind provider.Kind) object {
	return object{p: p, kind: kind}
}

func (o *object) Kind() provider.Kind { return o.kind }

func (o *object) Release() error { return nil }

// GetLastError returns the detail of the most recent failure. The character
// width requested in flags must match the provider's configuration.
func (o *object) GetLastError(code types.SCode, flags uint32) (*types.ExtendedError, error) {
	if (flags&types.MAPI_UNICODE != 0) != o.p.config.Unicode {
		return nil, types.NewError("GetLastError", types.MAPI_E_BAD_CHARWIDTH)
	}
	if o.last == nil {
		return nil, nil
	}
	x := *o.last
	return &x, nil
}

// fail records detail as the last error and returns a provider error for
// op. The detail is available through GetLastError only.
func (o *object) fail(op string, code types.SCode, format string, args ...any) *types.MAPIError {
	o.last = &types.ExtendedError{Component: component, Message: fmt.Sprintf(format, args...)}
	return types.NewError(op, code)
}

// dbFail reports a database failure.
func (o *object) dbFail(op string, err error) *types.MAPIError {
	o.last = &types.ExtendedError{Component: component, Message: err.Error()}
	o.p.log.Debug("database call failed", zap.String("op", op), zap.Error(err))
	return &types.MAPIError{Op: op, Code: types.MAPI_E_CALL_FAILED, Cause: err}
}

// conn returns the database or fails with MAPI_E_NOT_INITIALIZED.
func (o *object) conn(op string) (*sql.DB, error) {
	db := o.p.conn()
	if db == nil {
		return nil, o.fail(op, types.MAPI_E_NOT_INITIALIZED, "provider is not initialized")
	}
	return db, nil
}

// entry is a row of the objects table.
type entry struct {
	id     []byte
	kind   int
	store  []byte
	parent []byte
}

func loadEntry(q dbtx, id []byte) (entry, error) {
	e := entry{id: id}
	err := q.QueryRow(
		"SELECT kind, store_id, parent_id FROM objects WHERE entry_id = ?", id,
	).Scan(&e.kind, &e.store, &e.parent)
	return e, err
}

func insertEntry(q dbtx, kind int, store, parent []byte) ([]byte, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = id
	}
	_, err = q.Exec(
		"INSERT INTO objects (entry_id, kind, store_id, parent_id, created_at) VALUES (?, ?, ?, ?, ?)",
		id, kind, store, parent, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting object: %w", err)
	}
	return id, nil
}

// computedIDs are the property ids the provider derives instead of storing.
var computedIDs = map[uint16]bool{
	types.PR_ENTRYID.ID():             true,
	types.PR_OBJECT_TYPE.ID():         true,
	types.PR_RECORD_KEY.ID():          true,
	types.PR_STORE_ENTRYID.ID():       true,
	types.PR_PARENT_ENTRYID.ID():      true,
	types.PR_MESSAGE_SIZE.ID():        true,
	types.PR_CONTENT_COUNT.ID():       true,
	types.PR_SUBFOLDERS.ID():          true,
	types.PR_FOLDER_TYPE.ID():         true,
	types.PR_IPM_SUBTREE_ENTRYID.ID(): true,
}

// computed returns the derived properties of the entry.
func (e entry) computed(q dbtx) ([]types.PropValue, error) {
	vals := []types.PropValue{
		{Tag: types.PR_ENTRYID, Value: e.id},
		{Tag: types.PR_OBJECT_TYPE, Value: int64(e.kind)},
		{Tag: types.PR_RECORD_KEY, Value: e.id},
		{Tag: types.PR_STORE_ENTRYID, Value: e.store},
	}
	switch e.kind {
	case types.MAPI_STORE:
		var root []byte
		err := q.QueryRow(
			"SELECT entry_id FROM objects WHERE store_id = ? AND kind = ? AND parent_id IS NULL",
			e.id, types.MAPI_FOLDER,
		).Scan(&root)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if root != nil {
			vals = append(vals, types.PropValue{Tag: types.PR_IPM_SUBTREE_ENTRYID, Value: root})
		}
	case types.MAPI_FOLDER:
		parent, folderType := e.parent, int64(types.FOLDER_GENERIC)
		if parent == nil {
			parent, folderType = e.id, types.FOLDER_ROOT
		}
		var messages, folders int64
		err := q.QueryRow(
			`SELECT COALESCE(SUM(kind = ?), 0), COALESCE(SUM(kind = ?), 0)
             FROM objects WHERE parent_id = ?`,
			types.MAPI_MESSAGE, types.MAPI_FOLDER, e.id,
		).Scan(&messages, &folders)
		if err != nil {
			return nil, err
		}
		vals = append(vals,
			types.PropValue{Tag: types.PR_PARENT_ENTRYID, Value: parent},
			types.PropValue{Tag: types.PR_FOLDER_TYPE, Value: folderType},
			types.PropValue{Tag: types.PR_CONTENT_COUNT, Value: messages},
			types.PropValue{Tag: types.PR_SUBFOLDERS, Value: folders > 0},
		)
	case types.MAPI_MESSAGE:
		var size int64
		err := q.QueryRow(
			"SELECT COALESCE(SUM(length(value)), 0) FROM props WHERE entry_id = ?", e.id,
		).Scan(&size)
		if err != nil {
			return nil, err
		}
		vals = append(vals,
			types.PropValue{Tag: types.PR_PARENT_ENTRYID, Value: e.parent},
			types.PropValue{Tag: types.PR_MESSAGE_SIZE, Value: size},
		)
	}
	return vals, nil
}

// loadProps returns the stored properties of an object keyed by id.
func loadProps(q dbtx, id []byte) (map[uint16]types.PropValue, error) {
	rows, err := q.Query("SELECT prop_id, prop_type, value FROM props WHERE entry_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying props: %w", err)
	}
	defer rows.Close()

	props := make(map[uint16]types.PropValue)
	for rows.Next() {
		var (
			pid, ptype int
			raw        []byte
		)
		if err := rows.Scan(&pid, &ptype, &raw); err != nil {
			return nil, fmt.Errorf("scanning prop: %w", err)
		}
		pt := types.PropType(ptype)
		v, err := decodeValue(pt, raw)
		if err != nil {
			return nil, err
		}
		props[uint16(pid)] = types.PropValue{Tag: types.NewPropTag(pt, uint16(pid)), Value: v}
	}
	return props, rows.Err()
}

// putProp stores v, replacing any value with the same property id.
func putProp(q dbtx, id []byte, v types.PropValue) error {
	raw, err := encodeValue(v)
	if err != nil {
		return err
	}
	_, err = q.Exec(
		`INSERT INTO props (entry_id, prop_id, prop_type, value) VALUES (?, ?, ?, ?)
         ON CONFLICT (entry_id, prop_id) DO UPDATE SET prop_type = excluded.prop_type, value = excluded.value`,
		id, int(v.Tag.ID()), int(v.Tag.Type()), raw,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", types.PropTagName(v.Tag), err)
	}
	return nil
}

// record returns every property of the entry, stored and computed, ordered
// by property id.
func (e entry) record(q dbtx) (types.Row, error) {
	props, err := loadProps(q, e.id)
	if err != nil {
		return nil, err
	}
	vals, err := e.computed(q)
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		props[v.Tag.ID()] = v
	}
	row := make(types.Row, 0, len(props))
	for _, id := range slices.Sorted(maps.Keys(props)) {
		row = append(row, props[id])
	}
	return row, nil
}

// convert returns v under tag when the requested type can be served from
// the stored one: the same class, the other string width, or
// PT_UNSPECIFIED, which returns the stored type.
func convert(tag types.PropTag, v types.PropValue) (types.PropValue, bool) {
	want := tag.Type()
	switch {
	case want == types.PT_UNSPECIFIED:
		return v, true
	case want.Class() == v.Class():
	case isString(want.Class()) && isString(v.Class()):
	default:
		return types.PropValue{}, false
	}
	return types.PropValue{Tag: tag, Value: v.Value}, true
}

func isString(c types.Class) bool {
	return c == types.ClassString8 || c == types.ClassUnicode
}

// lookup finds the value for tag's property id in row and converts it.
func lookup(row types.Row, tag types.PropTag) (types.PropValue, bool) {
	for _, v := range row {
		if v.Tag.ID() == tag.ID() && !v.IsError() {
			return convert(tag, v)
		}
	}
	return types.PropValue{}, false
}

// propObject is a stored object: a store, folder or message.
type propObject struct {
	object
	entry entry
}

func newPropObject(p *Provider, e entry) propObject {
	kind := provider.KindProp
	switch e.kind {
	case types.MAPI_STORE:
		kind = provider.KindMsgStore
	case types.MAPI_FOLDER:
		kind = provider.KindFolder
	case types.MAPI_MESSAGE:
		kind = provider.KindMessage
	}
	return propObject{object: newObject(p, kind), entry: e}
}

// open wraps an entry in the resource for its kind.
func open(p *Provider, e entry) provider.Unknown {
	po := newPropObject(p, e)
	switch e.kind {
	case types.MAPI_STORE:
		return &msgStore{propObject: po}
	case types.MAPI_FOLDER:
		return &folder{propObject: po}
	case types.MAPI_MESSAGE:
		return &message{propObject: po}
	}
	return &po
}

// GetProps returns one value per tag. A nil tag list returns every
// property of the object.
func (o *propObject) GetProps(tags []types.PropTag, flags uint32) ([]types.PropValue, error) {
	db, err := o.conn("GetProps")
	if err != nil {
		return nil, err
	}
	row, err := o.entry.record(db)
	if err != nil {
		return nil, o.dbFail("GetProps", err)
	}
	if tags == nil {
		tags = make([]types.PropTag, len(row))
		for i, v := range row {
			tags[i] = v.Tag
		}
	}

	out := make([]types.PropValue, len(tags))
	for i, tag := range tags {
		v, ok := lookup(row, tag)
		switch {
		case !ok:
			out[i] = types.ErrorValue(tag, types.MAPI_E_NOT_FOUND)
		case valueSize(v) > o.p.config.InlineLimit:
			out[i] = types.ErrorValue(tag, types.MAPI_E_NOT_ENOUGH_MEMORY)
		default:
			out[i] = v
		}
	}
	return out, nil
}

// SetProps stores values. Computed properties and values over the inline
// limit are reported as problems; the others are stored.
func (o *propObject) SetProps(values []types.PropValue) ([]types.PropProblem, error) {
	db, err := o.conn("SetProps")
	if err != nil {
		return nil, err
	}
	tx, err := db.Begin()
	if err != nil {
		return nil, o.dbFail("SetProps", err)
	}
	defer tx.Rollback()

	var problems []types.PropProblem
	for i, v := range values {
		code := o.checkWrite(v)
		if code == types.S_OK && valueSize(v) > o.p.config.InlineLimit {
			code = types.MAPI_E_NOT_ENOUGH_MEMORY
		}
		if code != types.S_OK {
			problems = append(problems, types.PropProblem{Index: i, Tag: v.Tag, Code: code})
			continue
		}
		if err := putProp(tx, o.entry.id, v); err != nil {
			return nil, o.dbFail("SetProps", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, o.dbFail("SetProps", err)
	}
	return problems, nil
}

// checkWrite returns the problem code for storing v, or S_OK.
func (o *propObject) checkWrite(v types.PropValue) types.SCode {
	if computedIDs[v.Tag.ID()] {
		return types.MAPI_E_COMPUTED
	}
	switch v.Class() {
	case types.ClassError, types.ClassOpaque:
		return types.MAPI_E_INVALID_TYPE
	}
	if _, err := types.NewPropValue(v.Tag, v.Value); err != nil {
		return types.MAPI_E_BAD_VALUE
	}
	return types.S_OK
}

// DeleteProps removes tags, reporting missing and computed properties as
// problems.
func (o *propObject) DeleteProps(tags []types.PropTag) ([]types.PropProblem, error) {
	db, err := o.conn("DeleteProps")
	if err != nil {
		return nil, err
	}
	var problems []types.PropProblem
	for i, tag := range tags {
		if computedIDs[tag.ID()] {
			problems = append(problems, types.PropProblem{Index: i, Tag: tag, Code: types.MAPI_E_COMPUTED})
			continue
		}
		res, err := db.Exec("DELETE FROM props WHERE entry_id = ? AND prop_id = ?", o.entry.id, int(tag.ID()))
		if err != nil {
			return nil, o.dbFail("DeleteProps", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			problems = append(problems, types.PropProblem{Index: i, Tag: tag, Code: types.MAPI_E_NOT_FOUND})
		}
	}
	return problems, nil
}

// OpenProperty opens a stream on a binary or string property. MAPI_CREATE
// starts from an empty stream, discarding any stored value; without it a
// missing property fails with MAPI_E_NOT_FOUND. Without MAPI_MODIFY the
// stream is read-only.
func (o *propObject) OpenProperty(tag types.PropTag, flags uint32) (provider.Stream, error) {
	if !tag.Type().Streamable() {
		return nil, o.fail("OpenProperty", types.MAPI_E_NO_SUPPORT,
			"%s is not a stream property", tag.Type())
	}
	writable := flags&types.MAPI_MODIFY != 0
	if writable && computedIDs[tag.ID()] {
		return nil, o.fail("OpenProperty", types.MAPI_E_COMPUTED,
			"%s is computed", types.PropTagName(tag))
	}
	db, err := o.conn("OpenProperty")
	if err != nil {
		return nil, err
	}
	row, err := o.entry.record(db)
	if err != nil {
		return nil, o.dbFail("OpenProperty", err)
	}

	s := &stream{object: newObject(o.p, provider.KindStream), owner: o, tag: tag, writable: writable}
	v, ok := lookup(row, tag)
	switch {
	case flags&types.MAPI_CREATE != 0:
	case ok:
		if s.buf, err = streamBytes(v); err != nil {
			return nil, o.fail("OpenProperty", types.MAPI_E_CALL_FAILED, "encoding %s: %v", types.PropTagName(tag), err)
		}
	default:
		return nil, o.fail("OpenProperty", types.MAPI_E_NOT_FOUND,
			"%s not found", types.PropTagName(tag))
	}
	return s, nil
}

// SaveChanges is a no-op: every write is stored when it is made.
func (o *propObject) SaveChanges(flags uint32) error { return nil }
