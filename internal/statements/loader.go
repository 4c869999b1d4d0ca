// Package statements loads a batch of parsing-agent results from the
// document store and maps them into reconciliation rows.
package statements

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/statement-recon/internal/docstore"
	"github.com/dvloznov/statement-recon/internal/logger"
	"github.com/dvloznov/statement-recon/internal/observability/metrics"
	"github.com/dvloznov/statement-recon/internal/recon"
)

// Drop reasons reported in Batch.Dropped and in metrics.
const (
	ReasonRead          = "read"
	ReasonDecode        = "decode"
	ReasonMissingDetail = "missing_detail"
)

// Drop describes one parsing result that was left out of a batch.
type Drop struct {
	Object string
	Reason string
	Err    error
}

// Batch is the outcome of one load cycle.
type Batch struct {
	Rows    []recon.ReconciliationRow
	Dropped []Drop
}

// Loader reads every parsing result under a prefix.
type Loader struct {
	store       docstore.Store
	mapper      *recon.Mapper
	prefix      string
	concurrency int
}

// NewLoader creates a Loader. A non-positive concurrency uses
// recon.DefaultConcurrency.
func NewLoader(store docstore.Store, mapper *recon.Mapper, prefix string, concurrency int) *Loader {
	if mapper == nil {
		mapper = recon.NewMapper()
	}
	if concurrency <= 0 {
		concurrency = recon.DefaultConcurrency
	}
	return &Loader{store: store, mapper: mapper, prefix: prefix, concurrency: concurrency}
}

// Load fetches and maps the whole batch. Only a failure to list the store
// fails the call; individual results that cannot be read, decoded or mapped
// are dropped and logged. Rows keep the store's listing order.
func (l *Loader) Load(ctx context.Context) (Batch, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	objects, err := l.store.List(ctx, l.prefix)
	if err != nil {
		metrics.ObserveBatchLoad(err, 0, time.Since(start))
		return Batch{}, fmt.Errorf("Load: list %q: %w", l.prefix, err)
	}
	objects = docstore.FilterSuffix(objects, recon.ParsingResultSuffix)

	type outcome struct {
		row  recon.ReconciliationRow
		drop *Drop
	}
	outcomes := make([]outcome, len(objects))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, obj := range objects {
		g.Go(func() error {
			row, drop := l.loadOne(ctx, obj.Name)
			outcomes[i] = outcome{row: row, drop: drop}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.ObserveBatchLoad(err, 0, time.Since(start))
		return Batch{}, fmt.Errorf("Load: %w", err)
	}

	batch := Batch{Rows: make([]recon.ReconciliationRow, 0, len(objects))}
	for _, o := range outcomes {
		if o.drop != nil {
			log.Warn().
				Err(o.drop.Err).
				Str("object", o.drop.Object).
				Str("reason", o.drop.Reason).
				Msg("Dropping parsing result from batch")
			metrics.IncDropped(o.drop.Reason)
			batch.Dropped = append(batch.Dropped, *o.drop)
			continue
		}
		batch.Rows = append(batch.Rows, o.row)
	}

	metrics.ObserveBatchLoad(nil, len(batch.Rows), time.Since(start))
	log.Info().
		Int("rows", len(batch.Rows)).
		Int("dropped", len(batch.Dropped)).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded reconciliation batch")

	return batch, nil
}

// Find loads the batch and returns the row with the given case id.
func (l *Loader) Find(ctx context.Context, caseID string) (recon.ReconciliationRow, bool, error) {
	batch, err := l.Load(ctx)
	if err != nil {
		return recon.ReconciliationRow{}, false, err
	}
	for _, row := range batch.Rows {
		if row.CaseID == caseID {
			return row, true, nil
		}
	}
	return recon.ReconciliationRow{}, false, nil
}

func (l *Loader) loadOne(ctx context.Context, name string) (recon.ReconciliationRow, *Drop) {
	data, err := l.store.Read(ctx, name)
	if err != nil {
		return recon.ReconciliationRow{}, &Drop{Object: name, Reason: ReasonRead, Err: err}
	}

	var raw recon.RawStatement
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err = dec.Decode(&raw)
	if err == nil && dec.More() {
		err = errors.New("trailing data after envelope")
	}
	if err != nil {
		return recon.ReconciliationRow{}, &Drop{Object: name, Reason: ReasonDecode, Err: err}
	}
	raw.Source = name
	if raw.Filename == "" {
		raw.Filename = path.Base(name)
	}

	row, err := l.mapper.MapStatement(raw)
	if err != nil {
		reason := ReasonDecode
		if errors.Is(err, recon.ErrMissingDetail) {
			reason = ReasonMissingDetail
		}
		return recon.ReconciliationRow{}, &Drop{Object: name, Reason: reason, Err: err}
	}
	return row, nil
}
