package bigquery

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/statement-recon/internal/config"
)

func TestEnrichmentRow_ToRecord(t *testing.T) {
	row := EnrichmentRow{
		CaseID:             "case-1",
		MCAWithdrawalTotal: bigquery.NullFloat64{Float64: 2500, Valid: true},
		OverdraftDays:      bigquery.NullInt64{Int64: 4, Valid: true},
		ReturnedItemsCount: bigquery.NullInt64{Int64: 9, Valid: false},
		UpdatedOn:          bigquery.NullDate{Date: civil.Date{Year: 2025, Month: time.March, Day: 7}, Valid: true},
	}

	rec := row.ToRecord()
	assert.Equal(t, "case-1", rec.CaseID)
	assert.Equal(t, 2500.0, rec.MCAWithdrawalTotal)
	assert.Equal(t, int64(4), rec.OverdraftDays)
	assert.Zero(t, rec.ReturnedItemsCount)
	assert.Zero(t, rec.FundingTransfers)
	assert.Equal(t, "2025-03-07", rec.UpdatedOn)

	assert.Empty(t, EnrichmentRow{CaseID: "case-2"}.ToRecord().UpdatedOn)
}

func TestEnrichmentQuery(t *testing.T) {
	table := tableRef(config.EnrichmentConfig{Project: "p", Dataset: "finance", Table: "case_enrichment"})
	assert.Equal(t, "p.finance.case_enrichment", table)

	q := enrichmentQuery(table)
	assert.True(t, strings.Contains(q, "`p.finance.case_enrichment`"))
	assert.True(t, strings.Contains(q, "IN UNNEST(@case_ids)"))
	assert.True(t, strings.Contains(q, "updated_on"))
}
