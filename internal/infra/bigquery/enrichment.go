// Package bigquery reads per-case enrichment records from BigQuery.
package bigquery

import (
	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/statement-recon/internal/enrichment"
)

// EnrichmentRow mirrors one row of the enrichment table. Every figure is
// nullable; NULL reads as zero.
type EnrichmentRow struct {
	CaseID string `bigquery:"case_id"` // REQUIRED

	FundingTransfers   bigquery.NullFloat64 `bigquery:"funding_transfers"`    // NULLABLE
	MCADeposits        bigquery.NullInt64   `bigquery:"mca_deposits"`         // NULLABLE
	MCADepositTotal    bigquery.NullFloat64 `bigquery:"mca_deposit_total"`    // NULLABLE
	MCAWithdrawals     bigquery.NullInt64   `bigquery:"mca_withdrawals"`      // NULLABLE
	MCAWithdrawalTotal bigquery.NullFloat64 `bigquery:"mca_withdrawal_total"` // NULLABLE
	OverdraftDays      bigquery.NullInt64   `bigquery:"overdraft_days"`       // NULLABLE
	ReturnedItemsCount bigquery.NullInt64   `bigquery:"returned_items_count"` // NULLABLE
	ReturnedItemsDays  bigquery.NullInt64   `bigquery:"returned_items_days"`  // NULLABLE
	UpdatedOn          bigquery.NullDate    `bigquery:"updated_on"`           // NULLABLE
}

// ToRecord converts a table row into an enrichment record.
func (r EnrichmentRow) ToRecord() enrichment.Record {
	return enrichment.Record{
		CaseID:             r.CaseID,
		FundingTransfers:   nullFloat(r.FundingTransfers),
		MCADeposits:        nullInt(r.MCADeposits),
		MCADepositTotal:    nullFloat(r.MCADepositTotal),
		MCAWithdrawals:     nullInt(r.MCAWithdrawals),
		MCAWithdrawalTotal: nullFloat(r.MCAWithdrawalTotal),
		OverdraftDays:      nullInt(r.OverdraftDays),
		ReturnedItemsCount: nullInt(r.ReturnedItemsCount),
		ReturnedItemsDays:  nullInt(r.ReturnedItemsDays),
		UpdatedOn:          nullDate(r.UpdatedOn),
	}
}

func nullFloat(v bigquery.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

func nullInt(v bigquery.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

// nullDate renders a DATE as YYYY-MM-DD, or "" when NULL.
func nullDate(v bigquery.NullDate) string {
	if !v.Valid {
		return ""
	}
	return v.Date.String()
}
