package mapikit

import (
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Table is a cursor over the rows of a provider table.
type Table struct {
	*Handle
	prefetch int
}

func newTable(h *Handle) (Object, error) {
	if err := capable[provider.Table](h); err != nil {
		return nil, err
	}
	return &Table{Handle: h, prefetch: h.env.prefetch}, nil
}

// Prefetch returns the number of rows a full scan requests per fetch.
func (t *Table) Prefetch() int { return t.prefetch }

// SetPrefetch sets the scan batch size. A value below one restores the
// default.
func (t *Table) SetPrefetch(n int) {
	if n < 1 {
		n = types.DefaultPrefetch
	}
	t.prefetch = n
}

// Rows scans the table from the cursor forward, fetching Prefetch rows at a
// time, until the provider returns an empty batch. The sequence can be
// consumed once; a second scan continues from wherever the cursor stopped.
// A fetch failure is yielded as the final element.
func (t *Table) Rows() iter.Seq2[types.Row, error] {
	return func(yield func(types.Row, error) bool) {
		for {
			rows, err := t.queryRows(t.prefetch)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(rows) == 0 {
				return
			}
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

// SearchOption configures Search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	origin types.Bookmark
	dir    types.Direction
}

// From starts the search at bookmark instead of the beginning of the table.
func From(bookmark types.Bookmark) SearchOption {
	return func(c *searchConfig) { c.origin = bookmark }
}

// Backward searches toward the beginning of the table.
func Backward() SearchOption {
	return func(c *searchConfig) { c.dir = types.Backward }
}

// Search yields each row matching res in turn. Every step positions the
// cursor on the next match with FindRow and fetches that row. The sequence
// ends when FindRow reports MAPI_E_NOT_FOUND; any other failure is yielded
// as the final element. Abandoning the sequence early leaves the cursor on
// the last match.
func (t *Table) Search(res restriction.Restriction, opts ...SearchOption) iter.Seq2[types.Row, error] {
	cfg := searchConfig{origin: types.BOOKMARK_BEGINNING, dir: types.Forward}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(yield func(types.Row, error) bool) {
		bookmark := cfg.origin
		for {
			err := t.FindRow(res, bookmark, cfg.dir.Flags())
			if types.IsCode(err, types.MAPI_E_NOT_FOUND) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			bookmark = types.BOOKMARK_CURRENT
			rows, err := t.queryRows(int(cfg.dir))
			if err != nil {
				yield(nil, err)
				return
			}
			if len(rows) == 0 {
				return
			}
			if !yield(rows[0], nil) {
				return
			}
		}
	}
}

// First returns the first row matching res, or ok false when none does.
func (t *Table) First(res restriction.Restriction) (types.Row, bool, error) {
	for row, err := range t.Search(res) {
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	}
	return nil, false, nil
}

// SetColumns selects the columns returned by later fetches.
func (t *Table) SetColumns(tags []types.PropTag, flags uint32) error {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return err
	}
	return t.annotate(raw.SetColumns(tags, flags))
}

// Columns returns the current column set.
func (t *Table) Columns() ([]types.PropTag, error) {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return nil, err
	}
	cols, err := raw.QueryColumns(0)
	if err != nil {
		return nil, t.annotate(err)
	}
	return cols, nil
}

// QueryRows fetches up to count rows from the cursor. A negative count reads
// backward.
func (t *Table) QueryRows(count int, flags uint32) ([]types.Row, error) {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return nil, err
	}
	rows, err := raw.QueryRows(count, flags)
	if err != nil {
		return nil, t.annotate(err)
	}
	return rows, nil
}

// FindRow positions the cursor on the next row matching res.
func (t *Table) FindRow(res restriction.Restriction, bookmark types.Bookmark, flags uint32) error {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return err
	}
	return t.annotate(raw.FindRow(res, bookmark, flags))
}

// SeekRow moves the cursor count rows from bookmark and returns the number
// of rows moved.
func (t *Table) SeekRow(bookmark types.Bookmark, count int) (int, error) {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return 0, err
	}
	n, err := raw.SeekRow(bookmark, count)
	if err != nil {
		return 0, t.annotate(err)
	}
	return n, nil
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() (int, error) {
	raw, err := rawAs[provider.Table](t.Handle)
	if err != nil {
		return 0, err
	}
	n, err := raw.GetRowCount(0)
	if err != nil {
		return 0, t.annotate(err)
	}
	return n, nil
}

// queryRows fetches rows, retrying while the provider reports MAPI_E_BUSY.
func (t *Table) queryRows(count int) ([]types.Row, error) {
	wait := t.env.busyWait
	for attempt := 0; ; attempt++ {
		rows, err := t.QueryRows(count, 0)
		if err == nil || !types.IsCode(err, types.MAPI_E_BUSY) || attempt >= t.env.busyRetries {
			return rows, err
		}
		Logger().Debug("table busy, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait))
		time.Sleep(wait)
		wait *= 2
	}
}
