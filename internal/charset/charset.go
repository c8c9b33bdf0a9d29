// Package charset converts between Go strings and the UTF-16 little-endian
// byte form PT_UNICODE properties take on a property stream, and folds
// strings for content matching.
package charset

import (
	"io"
	"unicode"

	"golang.org/x/text/cases"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UTF16LE is the stream encoding of PT_UNICODE values. No byte order mark is
// written or expected.
var UTF16LE = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)

// NewReader decodes UTF-16LE bytes read from r into UTF-8.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, UTF16LE.NewDecoder())
}

// NewWriter encodes UTF-8 written to it as UTF-16LE on w. Close flushes any
// buffered output and must be called.
func NewWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, UTF16LE.NewEncoder())
}

// Encode returns the UTF-16LE form of s.
func Encode(s string) ([]byte, error) {
	return UTF16LE.NewEncoder().Bytes([]byte(s))
}

// Decode returns the string held by UTF-16LE bytes b.
func Decode(b []byte) (string, error) {
	out, err := UTF16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodedLen returns the length of s in UTF-16LE bytes.
func EncodedLen(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 4
		} else {
			n += 2
		}
	}
	return n
}

// FoldCase returns s case-folded for caseless comparison.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// StripNonSpacing removes combining marks, so "résumé" compares equal to
// "resume".
func StripNonSpacing(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
