package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// DefaultStoreName is the display name of a store created without one.
const DefaultStoreName = "Personal Folders"

var (
	_ provider.MsgStore = (*msgStore)(nil)
	_ provider.Folder   = (*folder)(nil)
	_ provider.Message  = (*message)(nil)
)

type msgStore struct {
	propObject
}

// OpenEntry opens an object in the store. A nil entry id opens the root
// folder.
func (m *msgStore) OpenEntry(entryID []byte, flags uint32) (provider.Unknown, error) {
	db, err := m.conn("OpenEntry")
	if err != nil {
		return nil, err
	}
	if entryID == nil {
		var root []byte
		err := db.QueryRow(
			"SELECT entry_id FROM objects WHERE store_id = ? AND kind = ? AND parent_id IS NULL",
			m.entry.id, types.MAPI_FOLDER,
		).Scan(&root)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, m.fail("OpenEntry", types.MAPI_E_CORRUPT_STORE, "store has no root folder")
		}
		if err != nil {
			return nil, m.dbFail("OpenEntry", err)
		}
		entryID = root
	}

	e, err := loadEntry(db, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, m.fail("OpenEntry", types.MAPI_E_NOT_FOUND, "entry %x not found", entryID)
	}
	if err != nil {
		return nil, m.dbFail("OpenEntry", err)
	}
	if string(e.store) != string(m.entry.id) {
		return nil, m.fail("OpenEntry", types.MAPI_E_INVALID_ENTRYID, "entry %x belongs to another store", entryID)
	}
	return open(m.p, e), nil
}

// StoreLogoff has nothing to flush; writes are stored when they are made.
func (m *msgStore) StoreLogoff(flags uint32) error { return nil }

type folder struct {
	propObject
}

func (f *folder) GetContentsTable(flags uint32) (provider.Table, error) {
	return f.children("GetContentsTable", types.MAPI_MESSAGE, contentsColumns)
}

func (f *folder) GetHierarchyTable(flags uint32) (provider.Table, error) {
	return f.children("GetHierarchyTable", types.MAPI_FOLDER, hierarchyColumns)
}

func (f *folder) children(op string, kind int, columns []types.PropTag) (provider.Table, error) {
	db, err := f.conn(op)
	if err != nil {
		return nil, err
	}
	ids, err := queryIDs(db,
		"SELECT entry_id FROM objects WHERE parent_id = ? AND kind = ? ORDER BY seq",
		f.entry.id, kind)
	if err != nil {
		return nil, f.dbFail(op, err)
	}
	records, err := loadRecords(db, ids)
	if err != nil {
		return nil, f.dbFail(op, err)
	}
	return newTable(f.p, records, columns), nil
}

// CreateMessage creates an IPM.Note in the folder.
func (f *folder) CreateMessage(flags uint32) (provider.Message, error) {
	e, err := f.create("CreateMessage", types.MAPI_MESSAGE,
		types.PropValue{Tag: types.PR_MESSAGE_CLASS_W, Value: "IPM.Note"},
		types.PropValue{Tag: types.PR_MESSAGE_FLAGS, Value: int64(0)},
	)
	if err != nil {
		return nil, err
	}
	return &message{propObject: newPropObject(f.p, e)}, nil
}

// CreateFolder creates a subfolder. A subfolder with the same display name
// fails with MAPI_E_COLLISION unless OPEN_IF_EXISTS is set, in which case
// it is opened.
func (f *folder) CreateFolder(name string, flags uint32) (provider.Folder, error) {
	if name == "" {
		return nil, f.fail("CreateFolder", types.MAPI_E_INVALID_PARAMETER, "empty folder name")
	}
	db, err := f.conn("CreateFolder")
	if err != nil {
		return nil, err
	}
	existing, err := f.findChildFolder(db, name)
	if err != nil {
		return nil, f.dbFail("CreateFolder", err)
	}
	if existing != nil {
		if flags&types.OPEN_IF_EXISTS == 0 {
			return nil, f.fail("CreateFolder", types.MAPI_E_COLLISION, "folder %q exists", name)
		}
		e, err := loadEntry(db, existing)
		if err != nil {
			return nil, f.dbFail("CreateFolder", err)
		}
		return &folder{propObject: newPropObject(f.p, e)}, nil
	}

	e, err := f.create("CreateFolder", types.MAPI_FOLDER,
		types.PropValue{Tag: types.PR_DISPLAY_NAME_W, Value: name},
	)
	if err != nil {
		return nil, err
	}
	return &folder{propObject: newPropObject(f.p, e)}, nil
}

func (f *folder) findChildFolder(q dbtx, name string) ([]byte, error) {
	raw, err := encodeValue(types.PropValue{Tag: types.PR_DISPLAY_NAME_W, Value: name})
	if err != nil {
		return nil, err
	}
	var id []byte
	err = q.QueryRow(
		`SELECT o.entry_id FROM objects o JOIN props p ON p.entry_id = o.entry_id
         WHERE o.parent_id = ? AND o.kind = ? AND p.prop_id = ? AND p.value = ?`,
		f.entry.id, types.MAPI_FOLDER, int(types.PR_DISPLAY_NAME_W.ID()), raw,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return id, err
}

// create inserts a child object with its initial properties.
func (f *folder) create(op string, kind int, props ...types.PropValue) (entry, error) {
	db, err := f.conn(op)
	if err != nil {
		return entry{}, err
	}
	tx, err := db.Begin()
	if err != nil {
		return entry{}, f.dbFail(op, err)
	}
	defer tx.Rollback()

	id, err := insertEntry(tx, kind, f.entry.store, f.entry.id)
	if err != nil {
		return entry{}, f.dbFail(op, err)
	}
	props = append(props, types.PropValue{Tag: types.PR_CREATION_TIME, Value: time.Now().UTC()})
	for _, v := range props {
		if err := putProp(tx, id, v); err != nil {
			return entry{}, f.dbFail(op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return entry{}, f.dbFail(op, err)
	}
	return entry{id: id, kind: kind, store: f.entry.store, parent: f.entry.id}, nil
}

// DeleteMessages deletes messages of the folder. Ids that are not messages
// of this folder are skipped and reported with MAPI_E_NOT_FOUND once the
// others are gone.
func (f *folder) DeleteMessages(entryIDs [][]byte, flags uint32) error {
	db, err := f.conn("DeleteMessages")
	if err != nil {
		return err
	}
	missing := 0
	for _, id := range entryIDs {
		res, err := db.Exec(
			"DELETE FROM objects WHERE entry_id = ? AND parent_id = ? AND kind = ?",
			id, f.entry.id, types.MAPI_MESSAGE,
		)
		if err != nil {
			return f.dbFail("DeleteMessages", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			missing++
		}
	}
	if missing > 0 {
		return f.fail("DeleteMessages", types.MAPI_E_NOT_FOUND, "%d of %d messages not found", missing, len(entryIDs))
	}
	return nil
}

type message struct {
	propObject
}
