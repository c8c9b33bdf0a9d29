package sqlite

import (
	"bytes"
	"io"

	"github.com/mesh-intelligence/mapikit/internal/charset"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// stream buffers one property of its owner. Unicode properties are exposed
// as UTF-16LE bytes. Commit stores the buffer back, bypassing the inline
// limit.
type stream struct {
	object
	owner    *propObject
	tag      types.PropTag
	buf      []byte
	pos      int64
	writable bool
}

// streamBytes returns the stream representation of a binary or string
// value.
func streamBytes(v types.PropValue) ([]byte, error) {
	switch x := v.Value.(type) {
	case []byte:
		return bytes.Clone(x), nil
	case string:
		if v.Class() == types.ClassUnicode {
			return charset.Encode(x)
		}
		return []byte(x), nil
	}
	return nil, nil
}

func (s *stream) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, s.fail("Read", types.MAPI_E_INVALID_PARAMETER, "negative read size %d", n)
	}
	if s.pos >= int64(len(s.buf)) {
		return nil, nil
	}
	end := min(s.pos+int64(n), int64(len(s.buf)))
	out := bytes.Clone(s.buf[s.pos:end])
	s.pos = end
	return out, nil
}

func (s *stream) Write(p []byte) (int, error) {
	if !s.writable {
		return 0, s.fail("Write", types.MAPI_E_NO_ACCESS, "stream on %s is read-only", types.PropTagName(s.tag))
	}
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		s.buf = append(s.buf, make([]byte, end-int64(len(s.buf)))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, s.fail("Seek", types.MAPI_E_INVALID_PARAMETER, "bad whence %d", whence)
	}
	if base+offset < 0 {
		return 0, s.fail("Seek", types.MAPI_E_INVALID_PARAMETER, "seek before start")
	}
	s.pos = base + offset
	return s.pos, nil
}

func (s *stream) Size() (int64, error) { return int64(len(s.buf)), nil }

// Commit decodes the buffer into the property's type and stores it.
func (s *stream) Commit(flags uint32) error {
	if !s.writable {
		return s.fail("Commit", types.MAPI_E_NO_ACCESS, "stream on %s is read-only", types.PropTagName(s.tag))
	}
	v := types.PropValue{Tag: s.tag}
	switch s.tag.Type().Class() {
	case types.ClassBinary:
		v.Value = bytes.Clone(s.buf)
	case types.ClassString8:
		v.Value = string(s.buf)
	case types.ClassUnicode:
		str, err := charset.Decode(s.buf)
		if err != nil {
			return s.fail("Commit", types.MAPI_E_BAD_VALUE, "decoding UTF-16: %v", err)
		}
		v.Value = str
	}
	db, err := s.conn("Commit")
	if err != nil {
		return err
	}
	if err := putProp(db, s.owner.entry.id, v); err != nil {
		return s.dbFail("Commit", err)
	}
	return nil
}
