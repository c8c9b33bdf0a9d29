package provider

import "fmt"

// Kind discriminates provider resources at run time.
type Kind int

const (
	KindUnknown Kind = iota
	KindSession
	KindProp
	KindProfSect
	KindMessage
	KindMsgStore
	KindAttach
	KindMailUser
	KindAddrBook
	KindContainer
	KindFolder
	KindDistList
	KindTable
	KindProfAdmin
	KindMsgServiceAdmin
	KindMsgServiceAdmin2
	KindStream
)

var kindNames = [...]string{
	KindUnknown:          "Unknown",
	KindSession:          "Session",
	KindProp:             "Prop",
	KindProfSect:         "ProfSect",
	KindMessage:          "Message",
	KindMsgStore:         "MsgStore",
	KindAttach:           "Attach",
	KindMailUser:         "MailUser",
	KindAddrBook:         "AddrBook",
	KindContainer:        "Container",
	KindFolder:           "Folder",
	KindDistList:         "DistList",
	KindTable:            "Table",
	KindProfAdmin:        "ProfAdmin",
	KindMsgServiceAdmin:  "MsgServiceAdmin",
	KindMsgServiceAdmin2: "MsgServiceAdmin2",
	KindStream:           "Stream",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
