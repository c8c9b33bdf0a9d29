package mapikit

import (
	"io"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
)

// Stream is a byte stream over one property. It implements io.Reader,
// io.Writer, io.Seeker and io.Closer.
type Stream struct {
	*Handle
}

func newStream(h *Handle) (Object, error) {
	if err := capable[provider.Stream](h); err != nil {
		return nil, err
	}
	return &Stream{Handle: h}, nil
}

// Read reads up to len(p) bytes. It returns io.EOF at the end of the
// stream.
func (s *Stream) Read(p []byte) (int, error) {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	b, err := raw.Read(len(p))
	if err != nil {
		return 0, s.annotate(err)
	}
	if len(b) == 0 {
		return 0, io.EOF
	}
	return copy(p, b), nil
}

// ReadAll reads from the current position to the end of the stream.
func (s *Stream) ReadAll() ([]byte, error) {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return nil, err
	}
	size, err := raw.Size()
	if err != nil {
		return nil, s.annotate(err)
	}
	pos, err := raw.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, s.annotate(err)
	}
	remaining := size - pos
	if remaining <= 0 {
		return []byte{}, nil
	}
	out := make([]byte, 0, remaining)
	for int64(len(out)) < remaining {
		b, err := raw.Read(int(remaining) - len(out))
		if err != nil {
			return nil, s.annotate(err)
		}
		if len(b) == 0 {
			break
		}
		out = append(out, b...)
	}
	return out, nil
}

// Write writes p at the current position.
func (s *Stream) Write(p []byte) (int, error) {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return 0, err
	}
	n, err := raw.Write(p)
	if err != nil {
		return n, s.annotate(err)
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Seek moves the stream position.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return 0, err
	}
	pos, err := raw.Seek(offset, whence)
	if err != nil {
		return 0, s.annotate(err)
	}
	return pos, nil
}

// Len returns the size of the stream in bytes.
func (s *Stream) Len() (int64, error) {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return 0, err
	}
	n, err := raw.Size()
	if err != nil {
		return 0, s.annotate(err)
	}
	return n, nil
}

// Commit persists written data to the property.
func (s *Stream) Commit(flags uint32) error {
	raw, err := rawAs[provider.Stream](s.Handle)
	if err != nil {
		return err
	}
	return s.annotate(raw.Commit(flags))
}

// Close releases the stream.
func (s *Stream) Close() error {
	return s.Release()
}
