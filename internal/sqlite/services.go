package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Store service names accepted by CreateMsgService.
const (
	ServiceUnicodePST = "MSUPST MS"
	ServicePST        = "MSPST MS"
)

// serviceAdmin administers the message services of one profile. Every
// service is a store service: creating one creates its store and root
// folder.
type serviceAdmin struct {
	object
	profile string
}

var _ provider.MsgServiceAdmin = (*serviceAdmin)(nil)

func (a *serviceAdmin) GetMsgServiceTable(flags uint32) (provider.Table, error) {
	db, err := a.conn("GetMsgServiceTable")
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT service_uid, service_name, display_name, store_id FROM services
         WHERE profile = ? ORDER BY created_at, rowid`, a.profile)
	if err != nil {
		return nil, a.dbFail("GetMsgServiceTable", err)
	}
	defer rows.Close()

	var records []types.Row
	for rows.Next() {
		var (
			uid, store       []byte
			service, display string
		)
		if err := rows.Scan(&uid, &service, &display, &store); err != nil {
			return nil, a.dbFail("GetMsgServiceTable", err)
		}
		rec := types.Row{
			{Tag: types.PR_SERVICE_UID, Value: uid},
			{Tag: types.PR_SERVICE_NAME_W, Value: service},
			{Tag: types.PR_DISPLAY_NAME_W, Value: display},
		}
		if store != nil {
			rec = append(rec, types.PropValue{Tag: types.PR_STORE_ENTRYID, Value: store})
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, a.dbFail("GetMsgServiceTable", err)
	}
	return newTable(a.p, records, servicesColumns), nil
}

// CreateMsgService adds a store service with an empty store and returns
// the service uid. The store is not the default store.
func (a *serviceAdmin) CreateMsgService(service, displayName string, flags uint32) ([]byte, error) {
	if service != ServiceUnicodePST && service != ServicePST {
		return nil, a.fail("CreateMsgService", types.MAPI_E_NOT_FOUND, "unknown service %q", service)
	}
	if displayName == "" {
		displayName = DefaultStoreName
	}
	db, err := a.conn("CreateMsgService")
	if err != nil {
		return nil, err
	}
	ok, err := profileStored(db, a.profile)
	if err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	if !ok {
		return nil, a.fail("CreateMsgService", types.MAPI_E_NOT_FOUND, "profile %q not found", a.profile)
	}

	uid, err := newID()
	if err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	defer tx.Rollback()

	store, err := createStore(tx, uid, displayName)
	if err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO services (service_uid, profile, service_name, display_name, store_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		uid, a.profile, service, displayName, store, now(),
	); err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, a.dbFail("CreateMsgService", err)
	}
	a.p.log.Debug("service created",
		zap.String("profile", a.profile),
		zap.String("service", service),
		zap.Binary("uid", uid))
	return uid, nil
}

// createStore inserts a store object and its root folder.
func createStore(tx dbtx, uid []byte, displayName string) ([]byte, error) {
	store, err := insertEntry(tx, types.MAPI_STORE, nil, nil)
	if err != nil {
		return nil, err
	}
	created := time.Now().UTC()
	for _, v := range []types.PropValue{
		{Tag: types.PR_DISPLAY_NAME_W, Value: displayName},
		{Tag: types.PR_DEFAULT_STORE, Value: false},
		{Tag: types.PR_SERVICE_UID, Value: uid},
		{Tag: types.PR_CREATION_TIME, Value: created},
	} {
		if err := putProp(tx, store, v); err != nil {
			return nil, err
		}
	}
	root, err := insertEntry(tx, types.MAPI_FOLDER, store, nil)
	if err != nil {
		return nil, err
	}
	if err := putProp(tx, root, types.PropValue{Tag: types.PR_CREATION_TIME, Value: created}); err != nil {
		return nil, err
	}
	return store, nil
}

// ConfigureMsgService applies props to a service. PR_DISPLAY_NAME renames
// the service and its store; PR_DEFAULT_STORE true makes the store the
// profile's only default store. Other properties are stored on the store.
func (a *serviceAdmin) ConfigureMsgService(uid []byte, flags uint32, props []types.PropValue) error {
	db, err := a.conn("ConfigureMsgService")
	if err != nil {
		return err
	}
	store, err := a.storeOf("ConfigureMsgService", db, uid)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return a.dbFail("ConfigureMsgService", err)
	}
	defer tx.Rollback()

	for _, v := range props {
		if computedIDs[v.Tag.ID()] {
			return a.fail("ConfigureMsgService", types.MAPI_E_COMPUTED, "%s is computed", types.PropTagName(v.Tag))
		}
		if _, err := types.NewPropValue(v.Tag, v.Value); err != nil {
			return a.fail("ConfigureMsgService", types.MAPI_E_BAD_VALUE, "%v", err)
		}
		if err := a.configure(tx, uid, store, v); err != nil {
			return a.dbFail("ConfigureMsgService", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return a.dbFail("ConfigureMsgService", err)
	}
	return nil
}

func (a *serviceAdmin) configure(tx dbtx, uid, store []byte, v types.PropValue) error {
	switch v.Tag.ID() {
	case types.PR_DISPLAY_NAME_W.ID():
		name, _ := v.Str()
		if _, err := tx.Exec("UPDATE services SET display_name = ? WHERE service_uid = ?", name, uid); err != nil {
			return err
		}
		return putProp(tx, store, types.PropValue{Tag: types.PR_DISPLAY_NAME_W, Value: name})
	case types.PR_DEFAULT_STORE.ID():
		isDefault, _ := v.Bool()
		if isDefault {
			others, err := queryIDs(tx,
				"SELECT store_id FROM services WHERE profile = ? AND store_id IS NOT NULL AND store_id != ?",
				a.profile, store)
			if err != nil {
				return err
			}
			for _, id := range others {
				if err := putProp(tx, id, types.PropValue{Tag: types.PR_DEFAULT_STORE, Value: false}); err != nil {
					return err
				}
			}
		}
		return putProp(tx, store, types.PropValue{Tag: types.PR_DEFAULT_STORE, Value: isDefault})
	}
	return putProp(tx, store, v)
}

// DeleteMsgService removes a service and its store.
func (a *serviceAdmin) DeleteMsgService(uid []byte) error {
	db, err := a.conn("DeleteMsgService")
	if err != nil {
		return err
	}
	store, err := a.storeOf("DeleteMsgService", db, uid)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return a.dbFail("DeleteMsgService", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM objects WHERE store_id = ?", store); err != nil {
		return a.dbFail("DeleteMsgService", fmt.Errorf("deleting store: %w", err))
	}
	if _, err := tx.Exec("DELETE FROM services WHERE service_uid = ?", uid); err != nil {
		return a.dbFail("DeleteMsgService", fmt.Errorf("deleting service: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return a.dbFail("DeleteMsgService", err)
	}
	a.p.log.Debug("service deleted", zap.String("profile", a.profile), zap.Binary("uid", uid))
	return nil
}

// storeOf returns the store of a service in this profile.
func (a *serviceAdmin) storeOf(op string, db dbtx, uid []byte) ([]byte, error) {
	var store []byte
	err := db.QueryRow(
		"SELECT store_id FROM services WHERE service_uid = ? AND profile = ?", uid, a.profile,
	).Scan(&store)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, a.fail(op, types.MAPI_E_NOT_FOUND, "service %x not found", uid)
	}
	if err != nil {
		return nil, a.dbFail(op, err)
	}
	return store, nil
}
