package mapikit

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Annotator decorates provider failures. Only a *types.MAPIError returned
// directly by a provider call is decorated, and only once; any other error
// passes through unchanged.
type Annotator struct {
	// Source reports extended errors. It may be nil.
	Source provider.LastErrorer
	// CheckAll asks Source for every failure. When false, Source is asked
	// only for MAPI_E_EXTENDED_ERROR.
	CheckAll bool
	// Flags is passed to GetLastError.
	Flags uint32
}

// Annotate returns err decorated with its symbolic name and, when Source
// has one, the extended error. A GetLastError call rejected with
// MAPI_E_BAD_CHARWIDTH is retried once with MAPI_UNICODE toggled. Failures
// to obtain the extended error are ignored; the original failure is always
// what is returned.
func (a Annotator) Annotate(err error) error {
	me, ok := err.(*types.MAPIError)
	if !ok || me.Annotated() {
		return err
	}
	var x *types.ExtendedError
	if a.Source != nil && (a.CheckAll || me.Code == types.MAPI_E_EXTENDED_ERROR) {
		x = a.lastError(me.Code)
	}
	out := me.Annotate(x)
	fields := []zap.Field{
		zap.String("op", out.Op),
		zap.Stringer("code", out.Code),
	}
	if x != nil {
		fields = append(fields,
			zap.String("component", x.Component),
			zap.String("detail", x.Message),
			zap.Uint32("low_level", x.LowLevelError))
	}
	Logger().Debug("provider call failed", fields...)
	return out
}

func (a Annotator) lastError(code types.SCode) *types.ExtendedError {
	x, err := a.Source.GetLastError(code, a.Flags)
	if err != nil && types.IsCode(err, types.MAPI_E_BAD_CHARWIDTH) {
		x, err = a.Source.GetLastError(code, a.Flags^types.MAPI_UNICODE)
	}
	if err != nil {
		return nil
	}
	return x
}

// Annotate decorates err with its symbolic name only. Use it for calls that
// have no resource to ask for an extended error.
func Annotate(err error) error {
	if err == nil {
		return nil
	}
	return Annotator{CheckAll: true}.Annotate(err)
}
