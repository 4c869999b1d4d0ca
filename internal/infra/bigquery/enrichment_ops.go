package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/statement-recon/internal/config"
	"github.com/dvloznov/statement-recon/internal/enrichment"
)

// BigQueryEnrichmentRepository is the enrichment.Store backed by a BigQuery
// table. It holds a shared client; call Close when done.
type BigQueryEnrichmentRepository struct {
	client *bigquery.Client
	table  string
}

// NewBigQueryEnrichmentRepository creates a repository for the configured table.
func NewBigQueryEnrichmentRepository(ctx context.Context, cfg config.EnrichmentConfig) (*BigQueryEnrichmentRepository, error) {
	if cfg.Project == "" || cfg.Dataset == "" || cfg.Table == "" {
		return nil, fmt.Errorf("NewBigQueryEnrichmentRepository: project, dataset and table are required")
	}
	client, err := bigquery.NewClient(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryEnrichmentRepository: creating client: %w", err)
	}
	return &BigQueryEnrichmentRepository{
		client: client,
		table:  tableRef(cfg),
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryEnrichmentRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Lookup implements enrichment.Store.
func (r *BigQueryEnrichmentRepository) Lookup(ctx context.Context, caseIDs []string) (map[string]enrichment.Record, error) {
	return LookupEnrichmentWithClient(ctx, r.client, r.table, caseIDs)
}

// LookupEnrichmentWithClient fetches the enrichment rows for caseIDs using
// the provided client. table is a fully qualified `project.dataset.table`.
func LookupEnrichmentWithClient(ctx context.Context, client *bigquery.Client, table string, caseIDs []string) (map[string]enrichment.Record, error) {
	records := make(map[string]enrichment.Record, len(caseIDs))
	if len(caseIDs) == 0 {
		return records, nil
	}

	q := client.Query(enrichmentQuery(table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "case_ids", Value: caseIDs},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LookupEnrichmentWithClient: reading query: %w", err)
	}

	for {
		var row EnrichmentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LookupEnrichmentWithClient: iterating: %w", err)
		}
		records[row.CaseID] = row.ToRecord()
	}

	return records, nil
}

func tableRef(cfg config.EnrichmentConfig) string {
	return fmt.Sprintf("%s.%s.%s", cfg.Project, cfg.Dataset, cfg.Table)
}

func enrichmentQuery(table string) string {
	return `
		SELECT
			case_id,
			funding_transfers,
			mca_deposits,
			mca_deposit_total,
			mca_withdrawals,
			mca_withdrawal_total,
			overdraft_days,
			returned_items_count,
			returned_items_days,
			updated_on
		FROM ` + "`" + table + "`" + `
		WHERE case_id IN UNNEST(@case_ids)
	`
}

var _ enrichment.Store = (*BigQueryEnrichmentRepository)(nil)
