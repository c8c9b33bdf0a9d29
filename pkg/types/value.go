package types

import (
	"bytes"
	"fmt"
	"time"
)

// PropValue is a tagged property value. The Go type of Value is determined by
// the class of the tag's type:
//
//	ClassBinary   []byte
//	ClassString8  string
//	ClassUnicode  string
//	ClassInteger  int64
//	ClassBoolean  bool
//	ClassTime     time.Time
//	ClassFloat    float64
//	ClassError    SCode
//	ClassOpaque   any
type PropValue struct {
	Tag   PropTag
	Value any
}

// NewPropValue validates v against the tag's type class and normalizes
// integer widths to int64.
func NewPropValue(tag PropTag, v any) (PropValue, error) {
	nv, err := normalize(tag.Type().Class(), v)
	if err != nil {
		return PropValue{}, &TypeMismatchError{
			Want: tag.Type().Class().String(),
			Got:  fmt.Sprintf("%T", v),
			Op:   "value for " + PropTagName(tag),
		}
	}
	return PropValue{Tag: tag, Value: nv}, nil
}

// MustPropValue is NewPropValue that panics on a class mismatch. Intended for
// literals in restrictions and tests.
func MustPropValue(tag PropTag, v any) PropValue {
	pv, err := NewPropValue(tag, v)
	if err != nil {
		panic(err)
	}
	return pv
}

// ErrorValue builds the PT_ERROR value a provider reports in place of a
// property it could not return.
func ErrorValue(tag PropTag, code SCode) PropValue {
	return PropValue{Tag: tag.WithType(PT_ERROR), Value: code}
}

func normalize(class Class, v any) (any, error) {
	switch class {
	case ClassBinary:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case ClassString8, ClassUnicode:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case ClassInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		case uint16:
			return int64(n), nil
		}
	case ClassBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case ClassTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case ClassFloat:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
	case ClassError:
		if c, ok := v.(SCode); ok {
			return c, nil
		}
	case ClassOpaque:
		return v, nil
	}
	return nil, ErrTypeMismatch
}

// Class returns the value class of the tag's type.
func (v PropValue) Class() Class { return v.Tag.Type().Class() }

// IsError reports whether the value is a PT_ERROR placeholder.
func (v PropValue) IsError() bool { return v.Tag.Type() == PT_ERROR }

// Code returns the status code carried by a PT_ERROR value.
func (v PropValue) Code() (SCode, bool) {
	c, ok := v.Value.(SCode)
	return c, ok && v.IsError()
}

// Bytes returns a binary value.
func (v PropValue) Bytes() ([]byte, bool) {
	b, ok := v.Value.([]byte)
	return b, ok
}

// Str returns a string8 or unicode value.
func (v PropValue) Str() (string, bool) {
	s, ok := v.Value.(string)
	return s, ok
}

// Int returns an integer value.
func (v PropValue) Int() (int64, bool) {
	n, ok := v.Value.(int64)
	return n, ok
}

// Bool returns a boolean value.
func (v PropValue) Bool() (bool, bool) {
	b, ok := v.Value.(bool)
	return b, ok
}

// Time returns a time value.
func (v PropValue) Time() (time.Time, bool) {
	t, ok := v.Value.(time.Time)
	return t, ok
}

// Clone returns a copy that shares no memory with v.
func (v PropValue) Clone() PropValue {
	if b, ok := v.Value.([]byte); ok {
		v.Value = bytes.Clone(b)
	}
	return v
}

// Equal reports whether two values have the same tag and value.
func (v PropValue) Equal(o PropValue) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch a := v.Value.(type) {
	case []byte:
		b, ok := o.Value.([]byte)
		return ok && bytes.Equal(a, b)
	case time.Time:
		b, ok := o.Value.(time.Time)
		return ok && a.Equal(b)
	}
	return v.Value == o.Value
}

func (v PropValue) String() string {
	switch x := v.Value.(type) {
	case []byte:
		if len(x) > 32 {
			return fmt.Sprintf("%s=<%d bytes> %x...", PropTagName(v.Tag), len(x), x[:32])
		}
		return fmt.Sprintf("%s=%x", PropTagName(v.Tag), x)
	case string:
		return fmt.Sprintf("%s=%q", PropTagName(v.Tag), x)
	case time.Time:
		return fmt.Sprintf("%s=%s", PropTagName(v.Tag), x.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s=%v", PropTagName(v.Tag), v.Value)
}

// ZeroValue returns the zero value for the class of t, mirroring what a
// freshly created property of that type holds.
func ZeroValue(t PropType) (any, error) {
	switch t.Class() {
	case ClassBinary:
		return []byte{}, nil
	case ClassString8, ClassUnicode:
		return "", nil
	case ClassInteger:
		return int64(0), nil
	case ClassBoolean:
		return false, nil
	case ClassTime:
		return time.Time{}, nil
	case ClassFloat:
		return float64(0), nil
	default:
		return nil, ErrUnsupported
	}
}

// Row is one table row: an ordered list of property values, one per column.
type Row []PropValue

// Get returns the value for tag in the row.
func (r Row) Get(tag PropTag) (PropValue, bool) {
	for _, v := range r {
		if v.Tag == tag {
			return v, true
		}
	}
	return PropValue{}, false
}

// PropProblem reports a per-property failure from a batch call.
type PropProblem struct {
	Index int
	Tag   PropTag
	Code  SCode
}

func (p PropProblem) String() string {
	return fmt.Sprintf("%s[%d]: %s", PropTagName(p.Tag), p.Index, p.Code)
}
