package types

import "strconv"

// Call flags understood by providers.
const (
	MAPI_MODIFY           uint32 = 0x00000001
	MAPI_CREATE           uint32 = 0x00000002
	MAPI_DEFERRED_ERRORS  uint32 = 0x00000008
	MAPI_BEST_ACCESS      uint32 = 0x00000010
	MAPI_NO_MAIL          uint32 = 0x00008000
	MAPI_NEW_SESSION      uint32 = 0x00000002
	MAPI_EXPLICIT_PROFILE uint32 = 0x00000010
	MAPI_EXTENDED         uint32 = 0x00000020
	MAPI_UNICODE          uint32 = 0x80000000

	MDB_NO_DIALOG uint32 = 0x00000001
	MDB_TEMPORARY uint32 = 0x00000020

	KEEP_OPEN_READWRITE uint32 = 0x00000004

	OPEN_IF_EXISTS uint32 = 0x00000001

	TBL_BATCH    uint32 = 0x00000002
	DIR_BACKWARD uint32 = 0x00000001

	SERVICE_NO_RESTART_WARNING uint32 = 0x00000080
)

// Bookmark is an opaque table position used to start or resume a search.
type Bookmark uint32

// Predefined bookmarks.
const (
	BOOKMARK_BEGINNING Bookmark = 0
	BOOKMARK_CURRENT   Bookmark = 1
	BOOKMARK_END       Bookmark = 2
)

func (b Bookmark) String() string {
	switch b {
	case BOOKMARK_BEGINNING:
		return "BOOKMARK_BEGINNING"
	case BOOKMARK_CURRENT:
		return "BOOKMARK_CURRENT"
	case BOOKMARK_END:
		return "BOOKMARK_END"
	}
	return "BOOKMARK(" + strconv.FormatUint(uint64(b), 10) + ")"
}

// Direction selects the order in which table rows are fetched.
type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Flags returns the FindRow flags for the direction.
func (d Direction) Flags() uint32 {
	if d == Backward {
		return DIR_BACKWARD
	}
	return 0
}
