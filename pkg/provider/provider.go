// Package provider declares the capabilities a messaging provider exposes to
// mapikit. Each resource kind is an interface listing the calls that kind
// supports; a concrete provider returns values implementing one of them and
// reports which through Kind.
//
// Provider calls report failures as *types.MAPIError values carrying a
// status code. Everything else about a failure (the symbolic name and the
// extended diagnostic) is added by mapikit.
package provider

import (
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Unknown is the base of every provider resource.
type Unknown interface {
	// Kind reports the runtime kind of the resource.
	Kind() Kind
	// Release drops the provider's reference. Calls after Release are
	// undefined at this layer; mapikit guards them.
	Release() error
}

// LastErrorer is implemented by resources that keep extended information
// about their most recent failure. A nil result with a nil error means the
// resource has nothing to report.
type LastErrorer interface {
	GetLastError(code types.SCode, flags uint32) (*types.ExtendedError, error)
}

// PropObject is a property bag.
type PropObject interface {
	Unknown

	// GetProps returns one value per requested tag, in order. A property
	// that is missing or too large to return in line is reported as a
	// PT_ERROR value carrying MAPI_E_NOT_FOUND or MAPI_E_NOT_ENOUGH_MEMORY
	// while the call itself succeeds.
	GetProps(tags []types.PropTag, flags uint32) ([]types.PropValue, error)
	SetProps(values []types.PropValue) ([]types.PropProblem, error)
	DeleteProps(tags []types.PropTag) ([]types.PropProblem, error)
	OpenProperty(tag types.PropTag, flags uint32) (Stream, error)
	SaveChanges(flags uint32) error
}

// Stream is a seekable byte stream over one property.
type Stream interface {
	Unknown

	// Read returns up to n bytes from the current position. An empty
	// result means the end of the stream.
	Read(n int) ([]byte, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Size() (int64, error)
	Commit(flags uint32) error
}

// Table is a cursor over rows.
type Table interface {
	Unknown

	SetColumns(tags []types.PropTag, flags uint32) error
	QueryColumns(flags uint32) ([]types.PropTag, error)
	// QueryRows fetches up to count rows from the cursor and advances it.
	// A negative count reads backward: the row at the cursor first, then
	// the rows before it.
	QueryRows(count int, flags uint32) ([]types.Row, error)
	// FindRow moves the cursor to the next row matching res, starting at
	// the bookmark and moving in the direction given by DIR_BACKWARD. It
	// fails with MAPI_E_NOT_FOUND when no row matches.
	FindRow(res restriction.Restriction, bookmark types.Bookmark, flags uint32) error
	// SeekRow moves the cursor count rows from the bookmark and returns the
	// number of rows actually moved.
	SeekRow(bookmark types.Bookmark, count int) (int, error)
	GetRowCount(flags uint32) (int, error)
}

// Session is a logged-on profile.
type Session interface {
	Unknown
	LastErrorer

	GetMsgStoresTable(flags uint32) (Table, error)
	OpenMsgStore(entryID []byte, flags uint32) (MsgStore, error)
	OpenEntry(entryID []byte, flags uint32) (Unknown, error)
	AdminServices(flags uint32) (MsgServiceAdmin, error)
	Logoff(flags uint32) error
}

// MsgStore is an open message store.
type MsgStore interface {
	PropObject
	LastErrorer

	// OpenEntry opens an object in the store. A nil entry id opens the
	// root folder.
	OpenEntry(entryID []byte, flags uint32) (Unknown, error)
	StoreLogoff(flags uint32) error
}

// Container is a property bag with child tables.
type Container interface {
	PropObject

	GetContentsTable(flags uint32) (Table, error)
	GetHierarchyTable(flags uint32) (Table, error)
}

// Folder is a container of messages and subfolders.
type Folder interface {
	Container

	CreateMessage(flags uint32) (Message, error)
	CreateFolder(name string, flags uint32) (Folder, error)
	DeleteMessages(entryIDs [][]byte, flags uint32) error
}

// Message is a single message.
type Message interface {
	PropObject
}

// ProfAdmin administers profiles.
type ProfAdmin interface {
	Unknown
	LastErrorer

	GetProfileTable(flags uint32) (Table, error)
	CreateProfile(name, password string, flags uint32) error
	DeleteProfile(name string, flags uint32) error
	SetDefaultProfile(name string, flags uint32) error
}

// MsgServiceAdmin administers the message services of a profile. Creating
// and configuring a store service makes a new store visible in the
// session's stores table.
type MsgServiceAdmin interface {
	Unknown
	LastErrorer

	GetMsgServiceTable(flags uint32) (Table, error)
	CreateMsgService(service, displayName string, flags uint32) ([]byte, error)
	ConfigureMsgService(uid []byte, flags uint32, props []types.PropValue) error
	DeleteMsgService(uid []byte) error
}

// Provider is the process-level entry point of a messaging provider.
type Provider interface {
	Initialize() error
	Uninitialize() error
	LogonEx(profile, password string, flags uint32) (Session, error)
	AdminProfiles(flags uint32) (ProfAdmin, error)
}
