package mapikit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Object is implemented by Handle and every wrapper built on it.
type Object interface {
	Kind() provider.Kind
	Released() bool
	Release() error
}

// env carries the settings shared by every handle a Client produces.
type env struct {
	registry    *Registry
	prefetch    int
	errFlags    uint32
	busyRetries int
	busyWait    time.Duration
}

func defaultEnv() *env {
	return &env{
		registry:    NewRegistry(),
		prefetch:    types.DefaultPrefetch,
		busyRetries: 3,
		busyWait:    10 * time.Millisecond,
	}
}

// Handle owns exactly one provider resource.
type Handle struct {
	raw  provider.Unknown
	kind provider.Kind
	env  *env

	// teardown runs against the live resource before it is dropped.
	teardown func(raw provider.Unknown) error
}

func newHandle(e *env, raw provider.Unknown) *Handle {
	return &Handle{raw: raw, kind: raw.Kind(), env: e}
}

// Kind reports the runtime kind of the wrapped resource.
func (h *Handle) Kind() provider.Kind { return h.kind }

// Released reports whether Release has been called.
func (h *Handle) Released() bool { return h.raw == nil }

// Raw returns the provider resource, or types.ErrReleased.
func (h *Handle) Raw() (provider.Unknown, error) {
	if h.raw == nil {
		return nil, fmt.Errorf("%s: %w", h.kind, types.ErrReleased)
	}
	return h.raw, nil
}

// Release runs the kind's teardown, drops the provider resource and marks
// the handle released. Releasing a released handle does nothing. The handle
// is released even when teardown fails; the failure is returned.
func (h *Handle) Release() error {
	if h.raw == nil {
		return nil
	}
	var errs []error
	if h.teardown != nil {
		if err := h.teardown(h.raw); err != nil {
			errs = append(errs, h.annotate(err))
		}
	}
	if err := h.raw.Release(); err != nil {
		errs = append(errs, Annotate(err))
	}
	h.raw = nil
	Logger().Debug("released", zap.Stringer("kind", h.kind))
	return errors.Join(errs...)
}

// Annotator returns an annotator bound to the wrapped resource.
func (h *Handle) Annotator() Annotator {
	a := Annotator{CheckAll: true, Flags: h.env.errFlags}
	if le, ok := h.raw.(provider.LastErrorer); ok {
		a.Source = le
	}
	return a
}

func (h *Handle) annotate(err error) error {
	if err == nil {
		return nil
	}
	return h.Annotator().Annotate(err)
}

// Invoke runs fn against the raw provider resource. A failure is annotated
// with this handle's extended error. A result that is a provider resource of
// a registered kind is returned wrapped, or released with an error when it
// cannot be; any other result is returned as is.
func (h *Handle) Invoke(fn func(raw provider.Unknown) (any, error)) (any, error) {
	raw, err := h.Raw()
	if err != nil {
		return nil, err
	}
	v, err := fn(raw)
	if err != nil {
		return nil, h.annotate(err)
	}
	return h.env.registry.coerce(h.env, v)
}

// rawAs returns the provider resource as capability T.
func rawAs[T any](h *Handle) (T, error) {
	var zero T
	raw, err := h.Raw()
	if err != nil {
		return zero, err
	}
	t, ok := raw.(T)
	if !ok {
		return zero, &types.TypeMismatchError{Want: typeName[T](), Got: h.kind.String()}
	}
	return t, nil
}

func typeName[T any]() string {
	name := fmt.Sprintf("%T", (*T)(nil))
	name = strings.TrimPrefix(name, "*")
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Use calls fn with obj and releases obj on every exit path, including a
// panic in fn. A release failure is returned when fn succeeded.
func Use[T Object](obj T, fn func(T) error) (err error) {
	defer func() {
		if rerr := obj.Release(); err == nil {
			err = rerr
		}
	}()
	return fn(obj)
}
