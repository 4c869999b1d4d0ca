// Package view pairs reconciliation rows with their verdicts and any
// enrichment overlays, producing the shape rendered by the API and reports.
package view

import (
	"github.com/dvloznov/statement-recon/internal/enrichment"
	"github.com/dvloznov/statement-recon/internal/observability/metrics"
	"github.com/dvloznov/statement-recon/internal/recon"
)

// AccountView is one account with its verdict.
type AccountView struct {
	recon.NormalizedAccount
	recon.Verdict
}

// RowView is one reconciliation row ready for presentation.
type RowView struct {
	CaseID               string             `json:"case_id"`
	BankName             string             `json:"bank_name"`
	StatementMonth       int64              `json:"statement_month"`
	StatementYear        int64              `json:"statement_year"`
	PeriodLabel          string             `json:"period_label"`
	FirstTransactionDate string             `json:"first_transaction_date"`
	LastTransactionDate  string             `json:"last_transaction_date"`
	DocumentName         string             `json:"document_name"`
	SourceFilename       string             `json:"source_filename"`
	Accounts             []AccountView      `json:"accounts"`
	Summary              recon.Summary      `json:"summary"`
	AllReconciled        bool               `json:"all_reconciled"`
	Enrichment           *enrichment.Record `json:"enrichment,omitempty"`
}

// BuildRows renders rows in order. Verdicts are recomputed on every call.
func BuildRows(rows []recon.ReconciliationRow, enrichments map[string]enrichment.Record) []RowView {
	views := make([]RowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, BuildRow(row, enrichments))
	}
	return views
}

// BuildRow renders one row.
func BuildRow(row recon.ReconciliationRow, enrichments map[string]enrichment.Record) RowView {
	v := RowView{
		CaseID:               row.CaseID,
		BankName:             row.BankName,
		StatementMonth:       row.StatementMonth,
		StatementYear:        row.StatementYear,
		PeriodLabel:          row.PeriodLabel,
		FirstTransactionDate: row.FirstTransactionDate,
		LastTransactionDate:  row.LastTransactionDate,
		DocumentName:         row.DocumentName,
		SourceFilename:       row.SourceFilename,
		Accounts:             make([]AccountView, 0, len(row.Accounts)),
	}

	var rec *enrichment.Record
	if r, ok := enrichments[row.CaseID]; ok {
		rec = &r
		v.Enrichment = rec
	}

	for _, acct := range row.Accounts {
		if rec != nil {
			acct = Overlay(acct, *rec)
		}
		verdict := recon.Verify(acct)
		metrics.IncVerdict(verdict.IsReconciled)

		v.Accounts = append(v.Accounts, AccountView{NormalizedAccount: acct, Verdict: verdict})
		v.Summary.Accounts++
		if verdict.IsReconciled {
			v.Summary.Reconciled++
		}
	}
	v.AllReconciled = v.Summary.AllReconciled()
	return v
}

// Overlay replaces the MCA, returned item and overdraft figures of acct with
// the enrichment values that are non-zero.
func Overlay(acct recon.NormalizedAccount, rec enrichment.Record) recon.NormalizedAccount {
	if rec.MCAWithdrawalTotal != 0 {
		acct.MCAWithdrawals = rec.MCAWithdrawalTotal
	}
	if rec.ReturnedItemsCount != 0 {
		acct.ReturnedItemsCount = rec.ReturnedItemsCount
	}
	if rec.ReturnedItemsDays != 0 {
		acct.ReturnedItemsDays = rec.ReturnedItemsDays
	}
	if rec.OverdraftDays != 0 {
		acct.OverdraftDays = rec.OverdraftDays
	}
	return acct
}

// CaseIDs returns the case ids of rows, for enrichment lookups.
func CaseIDs(rows []recon.ReconciliationRow) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CaseID)
	}
	return enrichment.UniqueCaseIDs(ids)
}
