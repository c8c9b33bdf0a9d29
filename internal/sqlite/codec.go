package sqlite

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mesh-intelligence/mapikit/internal/charset"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// encodeValue serializes a property value for the props table.
func encodeValue(v types.PropValue) ([]byte, error) {
	x := v.Value
	switch t := x.(type) {
	case types.SCode:
		x = int32(t)
	case time.Time:
		x = t.UTC()
	}
	b, err := msgpack.Marshal(x)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", types.PropTagName(v.Tag), err)
	}
	return b, nil
}

// decodeValue restores a value stored under property type pt.
func decodeValue(pt types.PropType, b []byte) (any, error) {
	var (
		v   any
		err error
	)
	switch pt.Class() {
	case types.ClassBinary:
		var x []byte
		err = msgpack.Unmarshal(b, &x)
		if x == nil {
			x = []byte{}
		}
		v = x
	case types.ClassString8, types.ClassUnicode:
		var x string
		err = msgpack.Unmarshal(b, &x)
		v = x
	case types.ClassInteger:
		var x int64
		err = msgpack.Unmarshal(b, &x)
		v = x
	case types.ClassBoolean:
		var x bool
		err = msgpack.Unmarshal(b, &x)
		v = x
	case types.ClassTime:
		var x time.Time
		err = msgpack.Unmarshal(b, &x)
		v = x.UTC()
	case types.ClassFloat:
		var x float64
		err = msgpack.Unmarshal(b, &x)
		v = x
	case types.ClassError:
		var x int32
		err = msgpack.Unmarshal(b, &x)
		v = types.SCode(x)
	default:
		err = msgpack.Unmarshal(b, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s value: %w", pt, err)
	}
	return v, nil
}

// valueSize returns the in-line transfer size of a value. Only binary and
// string values count against the inline limit.
func valueSize(v types.PropValue) int {
	switch x := v.Value.(type) {
	case []byte:
		return len(x)
	case string:
		if v.Class() == types.ClassUnicode {
			return charset.EncodedLen(x)
		}
		return len(x)
	}
	return 0
}
