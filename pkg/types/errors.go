package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Structured errors below match these through errors.Is.
var (
	ErrKeyNotFound  = errors.New("property not found")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrReleased     = errors.New("operation on released object")
	ErrUnsupported  = errors.New("operation not supported")
	ErrNotIterable  = fmt.Errorf("object is not iterable: %w", ErrUnsupported)
	ErrNoDefault    = errors.New("no default entry")
)

// KeyError reports a property tag that does not exist on a property bag.
type KeyError struct {
	Tag PropTag
}

func (e *KeyError) Error() string {
	return "property " + PropTagName(e.Tag) + " not found"
}

func (e *KeyError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// TypeMismatchError reports an object or value of the wrong kind.
type TypeMismatchError struct {
	Op   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s object is not a %s object", e.Op, e.Got, e.Want)
	}
	return fmt.Sprintf("%s object is not a %s object", e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ExtendedError is the supplementary diagnostic a resource reports for its
// last failure.
type ExtendedError struct {
	Version       uint32
	Message       string
	Component     string
	LowLevelError uint32
	Context       uint32
}

func (x *ExtendedError) String() string {
	var b strings.Builder
	if x.Component != "" {
		b.WriteString(x.Component)
		b.WriteString(": ")
	}
	b.WriteString(x.Message)
	if x.LowLevelError != 0 {
		fmt.Fprintf(&b, " (low-level 0x%08X)", x.LowLevelError)
	}
	if x.Context != 0 {
		fmt.Fprintf(&b, " (context 0x%08X)", x.Context)
	}
	return b.String()
}

// MAPIError is a failure reported by a provider call. Providers return it
// with Code set; the annotator fills in the symbolic message and the
// extended diagnostic.
type MAPIError struct {
	Op       string
	Code     SCode
	Message  string
	Extended *ExtendedError
	Cause    error

	annotated bool
}

// NewError returns a provider error for op with the given code.
func NewError(op string, code SCode) *MAPIError {
	return &MAPIError{Op: op, Code: code}
}

// Errorf returns a provider error with a provider-supplied message.
func Errorf(op string, code SCode, format string, args ...any) *MAPIError {
	return &MAPIError{Op: op, Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *MAPIError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	b.WriteString(msg)
	fmt.Fprintf(&b, " (0x%08X)", uint32(e.Code))
	if e.Extended != nil {
		b.WriteString(" [")
		b.WriteString(e.Extended.String())
		b.WriteByte(']')
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *MAPIError) Unwrap() error { return e.Cause }

// Is matches another *MAPIError with the same code.
func (e *MAPIError) Is(target error) bool {
	t, ok := target.(*MAPIError)
	return ok && t.Code == e.Code
}

// Annotated reports whether the error already went through annotation.
func (e *MAPIError) Annotated() bool { return e.annotated }

// Annotate returns a copy of e marked as annotated, with its message set to
// the symbolic code name when the provider gave none and the extended
// diagnostic attached when x is non-nil.
func (e *MAPIError) Annotate(x *ExtendedError) *MAPIError {
	c := *e
	if c.Message == "" {
		c.Message = c.Code.String()
	}
	if x != nil {
		c.Extended = x
	}
	c.annotated = true
	return &c
}

// CodeOf returns the provider code carried anywhere in err's chain.
func CodeOf(err error) (SCode, bool) {
	var me *MAPIError
	if errors.As(err, &me) {
		return me.Code, true
	}
	return S_OK, false
}

// IsCode reports whether err carries the given provider code.
func IsCode(err error, code SCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
