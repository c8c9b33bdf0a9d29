package mapikit

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/mesh-intelligence/mapikit/internal/charset"
	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Prop is a property bag.
type Prop struct {
	*Handle
}

func newProp(h *Handle) (Object, error) {
	if err := capable[provider.PropObject](h); err != nil {
		return nil, err
	}
	return &Prop{Handle: h}, nil
}

// Get returns the value of tag. A missing property fails with a
// *types.KeyError. A binary or string value too large for in-line transfer
// is read through a property stream.
func (p *Prop) Get(tag types.PropTag) (types.PropValue, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return types.PropValue{}, err
	}
	v, err := p.getOne(obj, tag)
	switch {
	case err == nil:
		return v.Clone(), nil
	case types.IsCode(err, types.MAPI_E_NOT_FOUND):
		return types.PropValue{}, &types.KeyError{Tag: tag}
	case types.IsCode(err, types.MAPI_E_NOT_ENOUGH_MEMORY) && tag.Type().Streamable():
		return p.readStream(tag)
	}
	return types.PropValue{}, err
}

// GetOr returns the value of tag, or def when the property does not exist.
func (p *Prop) GetOr(tag types.PropTag, def any) (any, error) {
	v, err := p.Get(tag)
	if err != nil {
		if errors.Is(err, types.ErrKeyNotFound) {
			return def, nil
		}
		return nil, err
	}
	return v.Value, nil
}

// Set stores value under tag. The value must match the class of the tag's
// type. A binary or string value too large for in-line transfer is written
// through a property stream, creating the property if needed.
func (p *Prop) Set(tag types.PropTag, value any) error {
	pv, err := types.NewPropValue(tag, value)
	if err != nil {
		return err
	}
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return err
	}
	err = p.setOne(obj, pv)
	switch {
	case err == nil:
		return nil
	case types.IsCode(err, types.MAPI_E_NOT_FOUND):
		return &types.KeyError{Tag: tag}
	case types.IsCode(err, types.MAPI_E_NOT_ENOUGH_MEMORY) && tag.Type().Streamable():
		return p.writeStream(pv)
	}
	return err
}

// Delete removes tag. Only the first problem the provider reports is
// inspected: a missing property fails with a *types.KeyError and other
// problems are ignored.
func (p *Prop) Delete(tag types.PropTag) error {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return err
	}
	problems, err := obj.DeleteProps([]types.PropTag{tag})
	if err != nil {
		return p.annotate(err)
	}
	if len(problems) > 0 && problems[0].Code == types.MAPI_E_NOT_FOUND {
		return &types.KeyError{Tag: tag}
	}
	return nil
}

// Contains reports whether tag exists. A value too large for in-line
// transfer exists.
func (p *Prop) Contains(tag types.PropTag) (bool, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return false, err
	}
	_, err = p.getOne(obj, tag)
	switch {
	case err == nil:
		return true, nil
	case types.IsCode(err, types.MAPI_E_NOT_FOUND):
		return false, nil
	case types.IsCode(err, types.MAPI_E_NOT_ENOUGH_MEMORY):
		return true, nil
	}
	return false, err
}

// All always fails with types.ErrNotIterable. A property bag has no
// canonical enumeration order; list a known set of properties through
// GetProps or a table instead.
func (p *Prop) All() (iter.Seq[types.PropValue], error) {
	return nil, fmt.Errorf("%s: %w", p.kind, types.ErrNotIterable)
}

// GetProps returns the values of tags as the provider reports them,
// including PT_ERROR placeholders.
func (p *Prop) GetProps(tags []types.PropTag, flags uint32) ([]types.PropValue, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return nil, err
	}
	vals, err := obj.GetProps(tags, flags)
	if err != nil {
		return nil, p.annotate(err)
	}
	out := make([]types.PropValue, len(vals))
	for i, v := range vals {
		out[i] = v.Clone()
	}
	return out, nil
}

// SetProps stores values and returns the per-property problems.
func (p *Prop) SetProps(values ...types.PropValue) ([]types.PropProblem, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return nil, err
	}
	problems, err := obj.SetProps(values)
	if err != nil {
		return nil, p.annotate(err)
	}
	return problems, nil
}

// DeleteProps removes tags and returns the per-property problems.
func (p *Prop) DeleteProps(tags ...types.PropTag) ([]types.PropProblem, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return nil, err
	}
	problems, err := obj.DeleteProps(tags)
	if err != nil {
		return nil, p.annotate(err)
	}
	return problems, nil
}

// OpenStream opens a byte stream on tag. Pass MAPI_CREATE|MAPI_MODIFY to
// create the property and write to it.
func (p *Prop) OpenStream(tag types.PropTag, flags uint32) (*Stream, error) {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return nil, err
	}
	raw, err := obj.OpenProperty(tag, flags)
	if err != nil {
		return nil, p.annotate(err)
	}
	return wrapAs[*Stream](p.env, raw)
}

// SaveChanges commits pending changes on the object.
func (p *Prop) SaveChanges(flags uint32) error {
	obj, err := rawAs[provider.PropObject](p.Handle)
	if err != nil {
		return err
	}
	return p.annotate(obj.SaveChanges(flags))
}

// getOne fetches a single property and turns a PT_ERROR placeholder into a
// provider error.
func (p *Prop) getOne(obj provider.PropObject, tag types.PropTag) (types.PropValue, error) {
	vals, err := obj.GetProps([]types.PropTag{tag}, 0)
	if err != nil {
		return types.PropValue{}, p.annotate(err)
	}
	if len(vals) != 1 {
		return types.PropValue{}, p.annotate(types.Errorf("GetProps", types.MAPI_E_CALL_FAILED,
			"%d values returned for one tag", len(vals)))
	}
	if code, ok := vals[0].Code(); ok {
		return types.PropValue{}, p.annotate(types.NewError("GetProps", code))
	}
	return vals[0], nil
}

func (p *Prop) setOne(obj provider.PropObject, pv types.PropValue) error {
	problems, err := obj.SetProps([]types.PropValue{pv})
	if err != nil {
		return p.annotate(err)
	}
	if len(problems) > 0 {
		return p.annotate(types.NewError("SetProps", problems[0].Code))
	}
	return nil
}

func (p *Prop) readStream(tag types.PropTag) (types.PropValue, error) {
	s, err := p.OpenStream(tag, 0)
	if err != nil {
		return types.PropValue{}, err
	}
	defer s.Release()

	switch tag.Type().Class() {
	case types.ClassBinary:
		b, err := s.ReadAll()
		if err != nil {
			return types.PropValue{}, err
		}
		return types.PropValue{Tag: tag, Value: b}, nil
	case types.ClassString8:
		b, err := s.ReadAll()
		if err != nil {
			return types.PropValue{}, err
		}
		return types.PropValue{Tag: tag, Value: string(b)}, nil
	case types.ClassUnicode:
		b, err := io.ReadAll(charset.NewReader(s))
		if err != nil {
			return types.PropValue{}, fmt.Errorf("decode %s: %w", types.PropTagName(tag), err)
		}
		return types.PropValue{Tag: tag, Value: string(b)}, nil
	}
	return types.PropValue{}, fmt.Errorf("stream %s: %w", tag.Type(), types.ErrUnsupported)
}

func (p *Prop) writeStream(pv types.PropValue) (err error) {
	s, err := p.OpenStream(pv.Tag, types.MAPI_CREATE|types.MAPI_MODIFY)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.Release(); err == nil {
			err = rerr
		}
	}()

	switch pv.Class() {
	case types.ClassBinary:
		b, _ := pv.Bytes()
		if _, err := s.Write(b); err != nil {
			return err
		}
	case types.ClassString8:
		str, _ := pv.Str()
		if _, err := io.WriteString(s, str); err != nil {
			return err
		}
	case types.ClassUnicode:
		str, _ := pv.Str()
		w := charset.NewWriter(s)
		if _, err := io.WriteString(w, str); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("stream %s: %w", pv.Tag.Type(), types.ErrUnsupported)
	}
	return s.Commit(0)
}
