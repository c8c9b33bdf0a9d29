package types

import "fmt"

// SCode is a provider status code. Negative values are failures.
type SCode int32

func scode(v uint32) SCode { return SCode(int32(v)) }

// Provider status codes.
var (
	S_OK = SCode(0)

	MAPI_E_CALL_FAILED             = scode(0x80004005)
	MAPI_E_NOT_ENOUGH_MEMORY       = scode(0x8007000E)
	MAPI_E_INVALID_PARAMETER       = scode(0x80070057)
	MAPI_E_INTERFACE_NOT_SUPPORTED = scode(0x80004002)
	MAPI_E_NO_ACCESS               = scode(0x80070005)
	MAPI_E_NO_SUPPORT              = scode(0x80040102)
	MAPI_E_BAD_CHARWIDTH           = scode(0x80040103)
	MAPI_E_STRING_TOO_LONG         = scode(0x80040105)
	MAPI_E_UNKNOWN_FLAGS           = scode(0x80040106)
	MAPI_E_INVALID_ENTRYID         = scode(0x80040107)
	MAPI_E_INVALID_OBJECT          = scode(0x80040108)
	MAPI_E_OBJECT_CHANGED          = scode(0x80040109)
	MAPI_E_OBJECT_DELETED          = scode(0x8004010A)
	MAPI_E_BUSY                    = scode(0x8004010B)
	MAPI_E_NOT_ENOUGH_DISK         = scode(0x8004010D)
	MAPI_E_NOT_ENOUGH_RESOURCES    = scode(0x8004010E)
	MAPI_E_NOT_FOUND               = scode(0x8004010F)
	MAPI_E_VERSION                 = scode(0x80040110)
	MAPI_E_LOGON_FAILED            = scode(0x80040111)
	MAPI_E_TOO_COMPLEX             = scode(0x80040117)
	MAPI_E_EXTENDED_ERROR          = scode(0x80040119)
	MAPI_E_COMPUTED                = scode(0x8004011A)
	MAPI_E_END_OF_SESSION          = scode(0x80040200)
	MAPI_E_CORRUPT_STORE           = scode(0x80040600)
	MAPI_E_COLLISION               = scode(0x80040604)
	MAPI_E_NOT_INITIALIZED         = scode(0x80040605)
	MAPI_E_BAD_VALUE               = scode(0x80040301)
	MAPI_E_INVALID_TYPE            = scode(0x80040302)
	MAPI_E_TYPE_NO_SUPPORT         = scode(0x80040303)
	MAPI_E_UNEXPECTED_TYPE         = scode(0x80040304)
	MAPI_E_TOO_BIG                 = scode(0x80040305)
	MAPI_E_UNABLE_TO_COMPLETE      = scode(0x80040400)
	MAPI_E_TIMEOUT                 = scode(0x80040401)
	MAPI_E_TABLE_EMPTY             = scode(0x80040402)
	MAPI_E_TABLE_TOO_BIG           = scode(0x80040403)
	MAPI_E_INVALID_BOOKMARK        = scode(0x80040405)
	MAPI_E_USER_CANCEL             = scode(0x80040501)
	MAPI_W_ERRORS_RETURNED         = scode(0x00040380)

	MAIL_E_NAMENOTFOUND        = scode(0x81002746)
	SYNC_E_OBJECT_DELETED      = scode(0x80040800)
	SYNC_E_IGNORE              = scode(0x80040801)
	SYNC_E_CONFLICT            = scode(0x80040802)
	SYNC_E_NO_PARENT           = scode(0x80040803)
	SYNC_E_CYCLE               = scode(0x80040804)
	SYNC_E_UNSYNCHRONIZED      = scode(0x80040805)
	SYNC_W_PROGRESS            = scode(0x00040820)
	SYNC_W_CLIENT_CHANGE_NEWER = scode(0x00040821)
)

var scodeNames = map[SCode]string{
	S_OK:                           "S_OK",
	MAPI_E_CALL_FAILED:             "MAPI_E_CALL_FAILED",
	MAPI_E_NOT_ENOUGH_MEMORY:       "MAPI_E_NOT_ENOUGH_MEMORY",
	MAPI_E_INVALID_PARAMETER:       "MAPI_E_INVALID_PARAMETER",
	MAPI_E_INTERFACE_NOT_SUPPORTED: "MAPI_E_INTERFACE_NOT_SUPPORTED",
	MAPI_E_NO_ACCESS:               "MAPI_E_NO_ACCESS",
	MAPI_E_NO_SUPPORT:              "MAPI_E_NO_SUPPORT",
	MAPI_E_BAD_CHARWIDTH:           "MAPI_E_BAD_CHARWIDTH",
	MAPI_E_STRING_TOO_LONG:         "MAPI_E_STRING_TOO_LONG",
	MAPI_E_UNKNOWN_FLAGS:           "MAPI_E_UNKNOWN_FLAGS",
	MAPI_E_INVALID_ENTRYID:         "MAPI_E_INVALID_ENTRYID",
	MAPI_E_INVALID_OBJECT:          "MAPI_E_INVALID_OBJECT",
	MAPI_E_OBJECT_CHANGED:          "MAPI_E_OBJECT_CHANGED",
	MAPI_E_OBJECT_DELETED:          "MAPI_E_OBJECT_DELETED",
	MAPI_E_BUSY:                    "MAPI_E_BUSY",
	MAPI_E_NOT_ENOUGH_DISK:         "MAPI_E_NOT_ENOUGH_DISK",
	MAPI_E_NOT_ENOUGH_RESOURCES:    "MAPI_E_NOT_ENOUGH_RESOURCES",
	MAPI_E_NOT_FOUND:               "MAPI_E_NOT_FOUND",
	MAPI_E_VERSION:                 "MAPI_E_VERSION",
	MAPI_E_LOGON_FAILED:            "MAPI_E_LOGON_FAILED",
	MAPI_E_TOO_COMPLEX:             "MAPI_E_TOO_COMPLEX",
	MAPI_E_EXTENDED_ERROR:          "MAPI_E_EXTENDED_ERROR",
	MAPI_E_COMPUTED:                "MAPI_E_COMPUTED",
	MAPI_E_END_OF_SESSION:          "MAPI_E_END_OF_SESSION",
	MAPI_E_CORRUPT_STORE:           "MAPI_E_CORRUPT_STORE",
	MAPI_E_COLLISION:               "MAPI_E_COLLISION",
	MAPI_E_NOT_INITIALIZED:         "MAPI_E_NOT_INITIALIZED",
	MAPI_E_BAD_VALUE:               "MAPI_E_BAD_VALUE",
	MAPI_E_INVALID_TYPE:            "MAPI_E_INVALID_TYPE",
	MAPI_E_TYPE_NO_SUPPORT:         "MAPI_E_TYPE_NO_SUPPORT",
	MAPI_E_UNEXPECTED_TYPE:         "MAPI_E_UNEXPECTED_TYPE",
	MAPI_E_TOO_BIG:                 "MAPI_E_TOO_BIG",
	MAPI_E_UNABLE_TO_COMPLETE:      "MAPI_E_UNABLE_TO_COMPLETE",
	MAPI_E_TIMEOUT:                 "MAPI_E_TIMEOUT",
	MAPI_E_TABLE_EMPTY:             "MAPI_E_TABLE_EMPTY",
	MAPI_E_TABLE_TOO_BIG:           "MAPI_E_TABLE_TOO_BIG",
	MAPI_E_INVALID_BOOKMARK:        "MAPI_E_INVALID_BOOKMARK",
	MAPI_E_USER_CANCEL:             "MAPI_E_USER_CANCEL",
	MAPI_W_ERRORS_RETURNED:         "MAPI_W_ERRORS_RETURNED",
	MAIL_E_NAMENOTFOUND:            "MAIL_E_NAMENOTFOUND",
	SYNC_E_OBJECT_DELETED:          "SYNC_E_OBJECT_DELETED",
	SYNC_E_IGNORE:                  "SYNC_E_IGNORE",
	SYNC_E_CONFLICT:                "SYNC_E_CONFLICT",
	SYNC_E_NO_PARENT:               "SYNC_E_NO_PARENT",
	SYNC_E_CYCLE:                   "SYNC_E_CYCLE",
	SYNC_E_UNSYNCHRONIZED:          "SYNC_E_UNSYNCHRONIZED",
	SYNC_W_PROGRESS:                "SYNC_W_PROGRESS",
	SYNC_W_CLIENT_CHANGE_NEWER:     "SYNC_W_CLIENT_CHANGE_NEWER",
}

// Name returns the symbolic name of the code and whether it is known.
func (c SCode) Name() (string, bool) {
	name, ok := scodeNames[c]
	return name, ok
}

// Failed reports whether the code denotes a failure.
func (c SCode) Failed() bool { return c < 0 }

func (c SCode) String() string {
	if name, ok := scodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}
