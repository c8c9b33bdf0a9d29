package types

import "fmt"

// Well-known property tags.
const (
	PR_MESSAGE_CLASS_A                   PropTag = 0x001A001E
	PR_MESSAGE_CLASS_W                   PropTag = 0x001A001F
	PR_IMPORTANCE                        PropTag = 0x00170003
	PR_SUBJECT_W                         PropTag = 0x0037001F
	PR_SENDER_NAME_W                     PropTag = 0x0C1A001F
	PR_SENDER_EMAIL_ADDRESS_W            PropTag = 0x0C1F001F
	PR_MESSAGE_DELIVERY_TIME             PropTag = 0x0E060040
	PR_MESSAGE_FLAGS                     PropTag = 0x0E070003
	PR_MESSAGE_SIZE                      PropTag = 0x0E080003
	PR_PARENT_ENTRYID                    PropTag = 0x0E090102
	PR_HASATTACH                         PropTag = 0x0E1B000B
	PR_INSTANCE_KEY                      PropTag = 0x0FF60102
	PR_RECORD_KEY                        PropTag = 0x0FF90102
	PR_STORE_ENTRYID                     PropTag = 0x0FFB0102
	PR_OBJECT_TYPE                       PropTag = 0x0FFE0003
	PR_ENTRYID                           PropTag = 0x0FFF0102
	PR_BODY_W                            PropTag = 0x1000001F
	PR_RTF_COMPRESSED                    PropTag = 0x10090102
	PR_HTML                              PropTag = 0x10130102
	PR_INTERNET_MESSAGE_ID_A             PropTag = 0x1035001E
	PR_INTERNET_MESSAGE_ID_W             PropTag = 0x1035001F
	PR_DISPLAY_NAME_A                    PropTag = 0x3001001E
	PR_DISPLAY_NAME_W                    PropTag = 0x3001001F
	PR_EMAIL_ADDRESS_W                   PropTag = 0x3003001F
	PR_CREATION_TIME                     PropTag = 0x30070040
	PR_LAST_MODIFICATION_TIME            PropTag = 0x30080040
	PR_DEFAULT_STORE                     PropTag = 0x3400000B
	PR_VALID_FOLDER_MASK                 PropTag = 0x35DF0003
	PR_IPM_SUBTREE_ENTRYID               PropTag = 0x35E00102
	PR_FOLDER_TYPE                       PropTag = 0x36010003
	PR_CONTENT_COUNT                     PropTag = 0x36020003
	PR_SUBFOLDERS                        PropTag = 0x360A000B
	PR_DEFAULT_PROFILE                   PropTag = 0x3D04000B
	PR_SERVICE_NAME_A                    PropTag = 0x3D09001E
	PR_SERVICE_NAME_W                    PropTag = 0x3D09001F
	PR_SERVICE_UID                       PropTag = 0x3D0C0102
	PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_A PropTag = 0x6641001E
	PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_W PropTag = 0x6641001F
	PR_PST_PATH_W                        PropTag = 0x6700001F
)

var propTagNames = map[PropTag]string{
	PR_MESSAGE_CLASS_A:                   "PR_MESSAGE_CLASS_A",
	PR_MESSAGE_CLASS_W:                   "PR_MESSAGE_CLASS_W",
	PR_IMPORTANCE:                        "PR_IMPORTANCE",
	PR_SUBJECT_W:                         "PR_SUBJECT_W",
	PR_SENDER_NAME_W:                     "PR_SENDER_NAME_W",
	PR_SENDER_EMAIL_ADDRESS_W:            "PR_SENDER_EMAIL_ADDRESS_W",
	PR_MESSAGE_DELIVERY_TIME:             "PR_MESSAGE_DELIVERY_TIME",
	PR_MESSAGE_FLAGS:                     "PR_MESSAGE_FLAGS",
	PR_MESSAGE_SIZE:                      "PR_MESSAGE_SIZE",
	PR_PARENT_ENTRYID:                    "PR_PARENT_ENTRYID",
	PR_HASATTACH:                         "PR_HASATTACH",
	PR_INSTANCE_KEY:                      "PR_INSTANCE_KEY",
	PR_RECORD_KEY:                        "PR_RECORD_KEY",
	PR_STORE_ENTRYID:                     "PR_STORE_ENTRYID",
	PR_OBJECT_TYPE:                       "PR_OBJECT_TYPE",
	PR_ENTRYID:                           "PR_ENTRYID",
	PR_BODY_W:                            "PR_BODY_W",
	PR_RTF_COMPRESSED:                    "PR_RTF_COMPRESSED",
	PR_HTML:                              "PR_HTML",
	PR_INTERNET_MESSAGE_ID_A:             "PR_INTERNET_MESSAGE_ID_A",
	PR_INTERNET_MESSAGE_ID_W:             "PR_INTERNET_MESSAGE_ID_W",
	PR_DISPLAY_NAME_A:                    "PR_DISPLAY_NAME_A",
	PR_DISPLAY_NAME_W:                    "PR_DISPLAY_NAME_W",
	PR_EMAIL_ADDRESS_W:                   "PR_EMAIL_ADDRESS_W",
	PR_CREATION_TIME:                     "PR_CREATION_TIME",
	PR_LAST_MODIFICATION_TIME:            "PR_LAST_MODIFICATION_TIME",
	PR_DEFAULT_STORE:                     "PR_DEFAULT_STORE",
	PR_VALID_FOLDER_MASK:                 "PR_VALID_FOLDER_MASK",
	PR_IPM_SUBTREE_ENTRYID:               "PR_IPM_SUBTREE_ENTRYID",
	PR_FOLDER_TYPE:                       "PR_FOLDER_TYPE",
	PR_CONTENT_COUNT:                     "PR_CONTENT_COUNT",
	PR_SUBFOLDERS:                        "PR_SUBFOLDERS",
	PR_DEFAULT_PROFILE:                   "PR_DEFAULT_PROFILE",
	PR_SERVICE_NAME_A:                    "PR_SERVICE_NAME_A",
	PR_SERVICE_NAME_W:                    "PR_SERVICE_NAME_W",
	PR_SERVICE_UID:                       "PR_SERVICE_UID",
	PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_A: "PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_A",
	PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_W: "PR_PROFILE_USER_SMTP_EMAIL_ADDRESS_W",
	PR_PST_PATH_W:                        "PR_PST_PATH_W",
}

var propTagsByName map[string]PropTag

func init() {
	propTagsByName = make(map[string]PropTag, len(propTagNames))
	for tag, name := range propTagNames {
		propTagsByName[name] = tag
	}
}

// PropTagName returns the symbolic name of a well-known tag, or the tag
// formatted as 0x%08X.
func PropTagName(tag PropTag) string {
	if name, ok := propTagNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(tag))
}

// LookupPropTag resolves a symbolic tag name such as "PR_SUBJECT_W".
func LookupPropTag(name string) (PropTag, bool) {
	tag, ok := propTagsByName[name]
	return tag, ok
}

// Folder validity flags reported in PR_VALID_FOLDER_MASK.
const (
	FOLDER_IPM_SUBTREE_VALID     = 0x00000001
	FOLDER_IPM_INBOX_VALID       = 0x00000002
	FOLDER_IPM_OUTBOX_VALID      = 0x00000004
	FOLDER_IPM_WASTEBASKET_VALID = 0x00000008
	FOLDER_IPM_SENTMAIL_VALID    = 0x00000010
	FOLDER_VIEWS_VALID           = 0x00000020
	FOLDER_COMMON_VIEWS_VALID    = 0x00000040
	FOLDER_FINDER_VALID          = 0x00000080
)

// Object types reported in PR_OBJECT_TYPE.
const (
	MAPI_STORE    = 0x00000001
	MAPI_ADDRBOOK = 0x00000002
	MAPI_FOLDER   = 0x00000003
	MAPI_ABCONT   = 0x00000004
	MAPI_MESSAGE  = 0x00000005
	MAPI_MAILUSER = 0x00000006
	MAPI_ATTACH   = 0x00000007
	MAPI_DISTLIST = 0x00000008
	MAPI_PROFSECT = 0x00000009
	MAPI_STATUS   = 0x0000000A
	MAPI_SESSION  = 0x0000000B
)

// Folder types reported in PR_FOLDER_TYPE.
const (
	FOLDER_ROOT    = 0x00000000
	FOLDER_GENERIC = 0x00000001
	FOLDER_SEARCH  = 0x00000002
)
