package recon

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds MapBatch when the caller passes a non-positive limit.
const DefaultConcurrency = 8

// ItemError records why one batch item was dropped.
type ItemError struct {
	Index    int
	Filename string
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.Filename, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// MapBatch maps every statement independently and concurrently. Failed items
// are excluded from rows and reported in dropped; rows keep the input order.
// Items without a Source are identified by their position for fallback ids.
func (m *Mapper) MapBatch(raws []RawStatement, concurrency int) (rows []ReconciliationRow, dropped []*ItemError) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	type outcome struct {
		row ReconciliationRow
		err error
	}
	outcomes := make([]outcome, len(raws))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range raws {
		g.Go(func() error {
			raw := raws[i]
			if raw.Source == "" {
				raw.Source = fmt.Sprintf("#%d", i)
			}
			row, err := m.MapStatement(raw)
			outcomes[i] = outcome{row: row, err: err}
			return nil
		})
	}
	_ = g.Wait()

	rows = make([]ReconciliationRow, 0, len(raws))
	for i, o := range outcomes {
		if o.err != nil {
			dropped = append(dropped, &ItemError{Index: i, Filename: raws[i].Filename, Err: o.err})
			continue
		}
		rows = append(rows, o.row)
	}
	return rows, dropped
}
