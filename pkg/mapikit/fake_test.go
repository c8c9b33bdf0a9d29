package mapikit

import (
	"bytes"
	"io"
	"maps"
	"slices"

	"github.com/mesh-intelligence/mapikit/internal/charset"
	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// fakeUnknown is the base of the in-memory provider resources used by the
// tests in this package.
type fakeUnknown struct {
	kind     provider.Kind
	releases int
}

func (f *fakeUnknown) Kind() provider.Kind { return f.kind }

func (f *fakeUnknown) Release() error {
	f.releases++
	return nil
}

// fakeLastError records GetLastError calls. When unicode is set, calls
// without MAPI_UNICODE are rejected with MAPI_E_BAD_CHARWIDTH, and the
// other way round.
type fakeLastError struct {
	ext     *types.ExtendedError
	unicode bool
	flags   []uint32
}

func (f *fakeLastError) GetLastError(code types.SCode, flags uint32) (*types.ExtendedError, error) {
	f.flags = append(f.flags, flags)
	if (flags&types.MAPI_UNICODE != 0) != f.unicode {
		return nil, types.NewError("GetLastError", types.MAPI_E_BAD_CHARWIDTH)
	}
	return f.ext, nil
}

// fakeProp is a property bag that refuses in-line transfer of values larger
// than limit bytes, like a provider with a size-limited property buffer.
type fakeProp struct {
	fakeUnknown
	fakeLastError

	props map[types.PropTag]types.PropValue
	limit int
	fail  error

	streamOpens int
}

func newFakeProp(kind provider.Kind) *fakeProp {
	return &fakeProp{
		fakeUnknown: fakeUnknown{kind: kind},
		props:       make(map[types.PropTag]types.PropValue),
		limit:       64,
	}
}

func (f *fakeProp) size(v types.PropValue) int {
	switch x := v.Value.(type) {
	case []byte:
		return len(x)
	case string:
		if v.Class() == types.ClassUnicode {
			return charset.EncodedLen(x)
		}
		return len(x)
	}
	return 8
}

func (f *fakeProp) GetProps(tags []types.PropTag, flags uint32) ([]types.PropValue, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]types.PropValue, len(tags))
	for i, tag := range tags {
		v, ok := f.props[tag]
		switch {
		case !ok:
			out[i] = types.ErrorValue(tag, types.MAPI_E_NOT_FOUND)
		case f.size(v) > f.limit:
			out[i] = types.ErrorValue(tag, types.MAPI_E_NOT_ENOUGH_MEMORY)
		default:
			out[i] = v
		}
	}
	return out, nil
}

func (f *fakeProp) SetProps(values []types.PropValue) ([]types.PropProblem, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var problems []types.PropProblem
	for i, v := range values {
		if f.size(v) > f.limit {
			problems = append(problems, types.PropProblem{Index: i, Tag: v.Tag, Code: types.MAPI_E_NOT_ENOUGH_MEMORY})
			continue
		}
		f.props[v.Tag] = v.Clone()
	}
	return problems, nil
}

func (f *fakeProp) DeleteProps(tags []types.PropTag) ([]types.PropProblem, error) {
	var problems []types.PropProblem
	for i, tag := range tags {
		if _, ok := f.props[tag]; !ok {
			problems = append(problems, types.PropProblem{Index: i, Tag: tag, Code: types.MAPI_E_NOT_FOUND})
			continue
		}
		delete(f.props, tag)
	}
	return problems, nil
}

func (f *fakeProp) OpenProperty(tag types.PropTag, flags uint32) (provider.Stream, error) {
	f.streamOpens++
	v, ok := f.props[tag]
	if !ok && flags&types.MAPI_CREATE == 0 {
		return nil, types.NewError("OpenProperty", types.MAPI_E_NOT_FOUND)
	}
	s := &fakeStream{fakeUnknown: fakeUnknown{kind: provider.KindStream}, owner: f, tag: tag}
	if ok && flags&types.MAPI_CREATE == 0 {
		switch x := v.Value.(type) {
		case []byte:
			s.buf = bytes.Clone(x)
		case string:
			if v.Class() == types.ClassUnicode {
				s.buf, _ = charset.Encode(x)
			} else {
				s.buf = []byte(x)
			}
		}
	}
	return s, nil
}

func (f *fakeProp) SaveChanges(flags uint32) error { return nil }

// fakeStream buffers a property; Commit writes it back to the owner.
type fakeStream struct {
	fakeUnknown
	owner *fakeProp
	tag   types.PropTag
	buf   []byte
	pos   int64
}

func (s *fakeStream) Read(n int) ([]byte, error) {
	end := min(s.pos+int64(n), int64(len(s.buf)))
	out := bytes.Clone(s.buf[s.pos:end])
	s.pos = end
	return out, nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		s.buf = append(s.buf, make([]byte, end-int64(len(s.buf)))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *fakeStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func (s *fakeStream) Size() (int64, error) { return int64(len(s.buf)), nil }

func (s *fakeStream) Commit(flags uint32) error {
	v := types.PropValue{Tag: s.tag}
	switch s.tag.Type().Class() {
	case types.ClassBinary:
		v.Value = bytes.Clone(s.buf)
	case types.ClassString8:
		v.Value = string(s.buf)
	case types.ClassUnicode:
		str, err := charset.Decode(s.buf)
		if err != nil {
			return err
		}
		v.Value = str
	}
	s.owner.props[s.tag] = v
	return nil
}

// fakeTable serves rows from a slice. FindRow understands the restriction
// shapes the tests build.
type fakeTable struct {
	fakeUnknown
	fakeLastError

	rows    []types.Row
	pos     int
	busy    int
	counts  []int
	findErr error
}

func newFakeTable(rows []types.Row) *fakeTable {
	return &fakeTable{fakeUnknown: fakeUnknown{kind: provider.KindTable}, rows: rows}
}

func (t *fakeTable) SetColumns(tags []types.PropTag, flags uint32) error { return nil }

func (t *fakeTable) QueryColumns(flags uint32) ([]types.PropTag, error) { return nil, nil }

func (t *fakeTable) QueryRows(count int, flags uint32) ([]types.Row, error) {
	t.counts = append(t.counts, count)
	if t.busy > 0 {
		t.busy--
		return nil, types.NewError("QueryRows", types.MAPI_E_BUSY)
	}
	if count < 0 {
		var out []types.Row
		for i := 0; i < -count && t.pos >= 0 && t.pos < len(t.rows); i++ {
			out = append(out, t.rows[t.pos])
			t.pos--
		}
		return out, nil
	}
	start := max(t.pos, 0)
	end := min(start+count, len(t.rows))
	t.pos = end
	return t.rows[start:end], nil
}

func (t *fakeTable) FindRow(res restriction.Restriction, bookmark types.Bookmark, flags uint32) error {
	if t.findErr != nil {
		return t.findErr
	}
	start := t.pos
	switch bookmark {
	case types.BOOKMARK_BEGINNING:
		start = 0
	case types.BOOKMARK_END:
		start = len(t.rows)
	}
	if flags&types.DIR_BACKWARD != 0 {
		for i := min(start, len(t.rows)-1); i >= 0; i-- {
			if fakeMatch(res, t.rows[i]) {
				t.pos = i
				return nil
			}
		}
	} else {
		for i := max(start, 0); i < len(t.rows); i++ {
			if fakeMatch(res, t.rows[i]) {
				t.pos = i
				return nil
			}
		}
	}
	return types.NewError("FindRow", types.MAPI_E_NOT_FOUND)
}

func (t *fakeTable) SeekRow(bookmark types.Bookmark, count int) (int, error) {
	t.pos = max(0, min(t.pos+count, len(t.rows)))
	return count, nil
}

func (t *fakeTable) GetRowCount(flags uint32) (int, error) { return len(t.rows), nil }

func fakeMatch(res restriction.Restriction, row types.Row) bool {
	switch r := res.(type) {
	case *restriction.Conjunction:
		for _, term := range r.Terms() {
			if !fakeMatch(term, row) {
				return false
			}
		}
		return true
	case *restriction.Exist:
		_, ok := row.Get(r.Tag)
		return ok
	case *restriction.Property:
		v, ok := row.Get(r.Tag)
		return ok && r.Relop == restriction.RELOP_EQ && v.Equal(r.Value)
	}
	return false
}

// fakeSession serves a stores table and opens stores by entry id.
type fakeSession struct {
	fakeUnknown
	fakeLastError

	stores  map[string]*fakeStore
	logoffs int
}

func (s *fakeSession) storeRows() []types.Row {
	var rows []types.Row
	for _, id := range sortedKeys(s.stores) {
		st := s.stores[id]
		rows = append(rows, types.Row{
			types.MustPropValue(types.PR_ENTRYID, []byte(id)),
			st.props[types.PR_DEFAULT_STORE],
		})
	}
	return rows
}

func (s *fakeSession) GetMsgStoresTable(flags uint32) (provider.Table, error) {
	return newFakeTable(s.storeRows()), nil
}

func (s *fakeSession) OpenMsgStore(entryID []byte, flags uint32) (provider.MsgStore, error) {
	st, ok := s.stores[string(entryID)]
	if !ok {
		return nil, types.NewError("OpenMsgStore", types.MAPI_E_NOT_FOUND)
	}
	return st, nil
}

func (s *fakeSession) OpenEntry(entryID []byte, flags uint32) (provider.Unknown, error) {
	return s.OpenMsgStore(entryID, flags)
}

func (s *fakeSession) AdminServices(flags uint32) (provider.MsgServiceAdmin, error) {
	return nil, types.NewError("AdminServices", types.MAPI_E_NO_SUPPORT)
}

func (s *fakeSession) Logoff(flags uint32) error {
	s.logoffs++
	return nil
}

type fakeStore struct {
	*fakeProp
	logoffs int
}

func (s *fakeStore) OpenEntry(entryID []byte, flags uint32) (provider.Unknown, error) {
	return nil, types.NewError("OpenEntry", types.MAPI_E_NOT_FOUND)
}

func (s *fakeStore) StoreLogoff(flags uint32) error {
	s.logoffs++
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// numberedRows returns n rows whose PR_IMPORTANCE is 1 for the 1-indexed
// positions in hits and 0 elsewhere.
func numberedRows(n int, hits ...int) []types.Row {
	match := make(map[int]bool, len(hits))
	for _, h := range hits {
		match[h] = true
	}
	rows := make([]types.Row, n)
	for i := range rows {
		imp := 0
		if match[i+1] {
			imp = 1
		}
		rows[i] = types.Row{
			types.MustPropValue(types.PR_INSTANCE_KEY, []byte{byte(i + 1)}),
			types.MustPropValue(types.PR_IMPORTANCE, imp),
		}
	}
	return rows
}
