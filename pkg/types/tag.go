package types

import "fmt"

// PropType is the type component of a property tag.
type PropType uint16

// Property types.
const (
	PT_UNSPECIFIED PropType = 0x0000
	PT_NULL        PropType = 0x0001
	PT_I2          PropType = 0x0002
	PT_LONG        PropType = 0x0003
	PT_R4          PropType = 0x0004
	PT_DOUBLE      PropType = 0x0005
	PT_CURRENCY    PropType = 0x0006
	PT_APPTIME     PropType = 0x0007
	PT_ERROR       PropType = 0x000A
	PT_BOOLEAN     PropType = 0x000B
	PT_OBJECT      PropType = 0x000D
	PT_I8          PropType = 0x0014
	PT_STRING8     PropType = 0x001E
	PT_UNICODE     PropType = 0x001F
	PT_SYSTIME     PropType = 0x0040
	PT_CLSID       PropType = 0x0048
	PT_BINARY      PropType = 0x0102

	// MV_FLAG marks multi-valued variants of the base types.
	MV_FLAG PropType = 0x1000
)

var propTypeNames = map[PropType]string{
	PT_UNSPECIFIED: "PT_UNSPECIFIED",
	PT_NULL:        "PT_NULL",
	PT_I2:          "PT_I2",
	PT_LONG:        "PT_LONG",
	PT_R4:          "PT_R4",
	PT_DOUBLE:      "PT_DOUBLE",
	PT_CURRENCY:    "PT_CURRENCY",
	PT_APPTIME:     "PT_APPTIME",
	PT_ERROR:       "PT_ERROR",
	PT_BOOLEAN:     "PT_BOOLEAN",
	PT_OBJECT:      "PT_OBJECT",
	PT_I8:          "PT_I8",
	PT_STRING8:     "PT_STRING8",
	PT_UNICODE:     "PT_UNICODE",
	PT_SYSTIME:     "PT_SYSTIME",
	PT_CLSID:       "PT_CLSID",
	PT_BINARY:      "PT_BINARY",
}

func (t PropType) String() string {
	if name, ok := propTypeNames[t]; ok {
		return name
	}
	if t&MV_FLAG != 0 {
		if name, ok := propTypeNames[t&^MV_FLAG]; ok {
			return "PT_MV_" + name[len("PT_"):]
		}
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// Class groups property types by how their values are represented in Go.
type Class uint8

const (
	ClassOpaque Class = iota
	ClassBinary
	ClassString8
	ClassUnicode
	ClassInteger
	ClassBoolean
	ClassTime
	ClassFloat
	ClassError
)

var classNames = [...]string{
	ClassOpaque:  "opaque",
	ClassBinary:  "binary",
	ClassString8: "string8",
	ClassUnicode: "unicode",
	ClassInteger: "integer",
	ClassBoolean: "boolean",
	ClassTime:    "time",
	ClassFloat:   "float",
	ClassError:   "error",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Class returns the value class for the property type. Types that are not
// modeled map to ClassOpaque.
func (t PropType) Class() Class {
	switch t {
	case PT_BINARY:
		return ClassBinary
	case PT_STRING8:
		return ClassString8
	case PT_UNICODE:
		return ClassUnicode
	case PT_I2, PT_LONG, PT_I8:
		return ClassInteger
	case PT_BOOLEAN:
		return ClassBoolean
	case PT_SYSTIME:
		return ClassTime
	case PT_R4, PT_DOUBLE, PT_APPTIME:
		return ClassFloat
	case PT_ERROR:
		return ClassError
	default:
		return ClassOpaque
	}
}

// Streamable reports whether values of this type can be moved through a
// property stream when they are too large for in-line transfer.
func (t PropType) Streamable() bool {
	switch t.Class() {
	case ClassBinary, ClassString8, ClassUnicode:
		return true
	}
	return false
}

// PropTag identifies a single property: type in the low 16 bits, identifier
// in the high 16 bits. This is the provider layout, so PR_MESSAGE_CLASS_W is
// 0x001A001F.
type PropTag uint32

const (
	propTypeMask = 0x0000FFFF
	propIDMask   = 0xFFFF0000
)

// NewPropTag composes a tag from a property type and identifier.
func NewPropTag(t PropType, id uint16) PropTag {
	return PropTag(uint32(id)<<16 | uint32(t))
}

// Type returns the property type of the tag.
func (t PropTag) Type() PropType {
	return PropType(uint32(t) & propTypeMask)
}

// ID returns the property identifier of the tag.
func (t PropTag) ID() uint16 {
	return uint16(uint32(t) >> 16)
}

// TypeAndID returns both components of the tag.
func (t PropTag) TypeAndID() (PropType, uint16) {
	return t.Type(), t.ID()
}

// WithType returns the tag with its type replaced and its identifier kept.
func (t PropTag) WithType(pt PropType) PropTag {
	return PropTag(uint32(t)&propIDMask | uint32(pt))
}

// String returns the well-known name of the tag, or its hex form.
func (t PropTag) String() string {
	return PropTagName(t)
}
