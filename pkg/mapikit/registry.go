package mapikit

import (
	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Constructor builds the wrapper for a handle. It fails with a
// *types.TypeMismatchError when the resource lacks the capabilities the
// wrapper needs.
type Constructor func(h *Handle) (Object, error)

// Registry maps a resource kind to the constructor of its wrapper. A
// registry is built once, handed to a Client, and not modified while the
// client is in use.
type Registry struct {
	ctors map[provider.Kind]Constructor
}

// NewRegistry returns a registry holding the wrappers of every kind this
// package defines.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[provider.Kind]Constructor)}
	r.Register(provider.KindSession, newSession)
	for _, k := range []provider.Kind{
		provider.KindProp,
		provider.KindProfSect,
		provider.KindAttach,
		provider.KindMailUser,
		provider.KindAddrBook,
	} {
		r.Register(k, newProp)
	}
	r.Register(provider.KindMessage, newMessage)
	r.Register(provider.KindMsgStore, newMsgStore)
	r.Register(provider.KindContainer, newContainer)
	r.Register(provider.KindDistList, newContainer)
	r.Register(provider.KindFolder, newFolder)
	r.Register(provider.KindTable, newTable)
	r.Register(provider.KindProfAdmin, newProfAdmin)
	r.Register(provider.KindMsgServiceAdmin, newMsgServiceAdmin)
	r.Register(provider.KindMsgServiceAdmin2, newMsgServiceAdmin)
	r.Register(provider.KindStream, newStream)
	return r
}

// Register sets the constructor for kind, replacing any earlier one.
func (r *Registry) Register(kind provider.Kind, ctor Constructor) {
	r.ctors[kind] = ctor
}

// Registered reports whether kind has a constructor.
func (r *Registry) Registered(kind provider.Kind) bool {
	_, ok := r.ctors[kind]
	return ok
}

// wrap takes ownership of raw. When raw cannot be wrapped it is released.
func (r *Registry) wrap(e *env, raw provider.Unknown) (Object, error) {
	if raw == nil {
		return nil, &types.TypeMismatchError{Want: "provider resource", Got: "nil"}
	}
	ctor, ok := r.ctors[raw.Kind()]
	if !ok {
		_ = raw.Release()
		return nil, &types.TypeMismatchError{Want: "registered", Got: raw.Kind().String()}
	}
	obj, err := ctor(newHandle(e, raw))
	if err != nil {
		_ = raw.Release()
		return nil, err
	}
	return obj, nil
}

// coerce wraps v when it is a provider resource of a registered kind.
func (r *Registry) coerce(e *env, v any) (any, error) {
	raw, ok := v.(provider.Unknown)
	if !ok || raw == nil || !r.Registered(raw.Kind()) {
		return v, nil
	}
	return r.wrap(e, raw)
}

// wrapAs wraps raw and checks that the registered wrapper is a T. A
// resource that is not a T is released.
func wrapAs[T Object](e *env, raw provider.Unknown) (T, error) {
	var zero T
	obj, err := e.registry.wrap(e, raw)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		_ = obj.Release()
		return zero, &types.TypeMismatchError{Want: typeName[T](), Got: raw.Kind().String()}
	}
	return t, nil
}

// capable checks that a handle's resource implements capability T.
func capable[T any](h *Handle) error {
	_, err := rawAs[T](h)
	return err
}
