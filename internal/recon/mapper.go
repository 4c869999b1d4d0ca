// Package recon turns parsing-agent statement envelopes into normalized
// reconciliation rows and computes per-account reconciliation verdicts.
package recon

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-recon/internal/normalize"
)

// ParsingResultSuffix is the object name suffix of parsing-agent output.
const ParsingResultSuffix = "_parsing_result.json"

// ErrMissingDetail is returned when an envelope has no nested result object.
var ErrMissingDetail = errors.New("statement envelope has no result object")

// caseIDSpace namespaces content-derived fallback case ids.
var caseIDSpace = uuid.MustParse("5b0f6f64-3c1e-4b53-9d0e-6a2f1c7e8d41")

// Mapper maps RawStatements to ReconciliationRows.
type Mapper struct {
	newCaseID func(raw RawStatement) string
}

// NewMapper returns a Mapper whose fallback case ids are derived from the
// envelope's Source and content, so reloading the same object yields the
// same id and distinct objects yield distinct ids.
func NewMapper() *Mapper {
	return &Mapper{newCaseID: ContentCaseID}
}

// NewMapperWithIDs returns a Mapper that takes fallback case ids from next.
func NewMapperWithIDs(next func() string) *Mapper {
	return &Mapper{newCaseID: func(RawStatement) string { return next() }}
}

// ContentCaseID returns "case-<uuid>" where the uuid is a SHA-1 name-based
// uuid over raw.Source and the JSON encoding of raw.
func ContentCaseID(raw RawStatement) string {
	body, err := json.Marshal(raw)
	if err != nil {
		// NaN or Inf values; fall back to the printed form.
		var detail StatementDetail
		if raw.Result != nil {
			detail = *raw.Result
		}
		body = fmt.Appendf(nil, "%v|%s|%v", raw.BatchID, raw.Filename, detail)
	}
	name := make([]byte, 0, len(raw.Source)+1+len(body))
	name = append(name, raw.Source...)
	name = append(name, 0)
	name = append(name, body...)
	return "case-" + uuid.NewSHA1(caseIDSpace, name).String()
}

// MapStatement normalizes one envelope. It fails only with ErrMissingDetail;
// malformed account fields degrade to zero values.
func (m *Mapper) MapStatement(raw RawStatement) (ReconciliationRow, error) {
	if raw.Result == nil {
		return ReconciliationRow{}, ErrMissingDetail
	}
	detail := raw.Result

	month := normalize.ToInteger(detail.StatementMonth)
	if month == 0 {
		month = DefaultStatementMonth
	}
	year := normalize.ToInteger(detail.StatementYear)
	if year == 0 {
		year = DefaultStatementYear
	}
	first, last := StatementDates(month, year)

	accounts := make([]NormalizedAccount, 0, len(detail.Accounts))
	for _, acct := range detail.Accounts {
		accounts = append(accounts, MapAccount(acct))
	}

	caseID := batchID(raw.BatchID)
	if caseID == "" {
		caseID = m.newCaseID(raw)
	}

	return ReconciliationRow{
		CaseID:               caseID,
		BankName:             text(detail.BankName),
		StatementMonth:       month,
		StatementYear:        year,
		PeriodLabel:          PeriodLabel(month, year),
		FirstTransactionDate: first,
		LastTransactionDate:  last,
		DocumentName:         DocumentName(month, year),
		Accounts:             accounts,
		SourceFilename:       DisplayFilename(raw.Filename),
	}, nil
}

// MapAccount normalizes a single account entry.
func MapAccount(raw RawAccount) NormalizedAccount {
	return NormalizedAccount{
		AccountNumber:      text(raw.AccountNumber),
		AccountType:        text(raw.AccountType),
		StartingBalance:    normalize.ToDecimal(raw.BeginningBalance),
		EndingBalance:      normalize.ToDecimal(raw.EndingBalance),
		TotalCredits:       normalize.ToDecimal(raw.TotalDeposits),
		TotalDebits:        math.Abs(normalize.ToDecimal(raw.TotalWithdrawals)),
		AverageBalance:     normalize.ToDecimal(raw.AvgDailyBalance),
		NoOfDeposits:       normalize.ToInteger(raw.NoOfDeposits),
		NoOfWithdrawals:    normalize.ToInteger(raw.NoOfWithdrawals),
		MCAWithdrawals:     normalize.ToDecimal(raw.MCAWithdrawals),
		ReturnedItemsCount: normalize.ToInteger(raw.ReturnedItemsCount),
		ReturnedItemsDays:  normalize.ToInteger(raw.ReturnedItemsDays),
		OverdraftDays:      normalize.ToInteger(raw.OverdraftDays),
	}
}

// DisplayFilename strips a trailing "_parsing_result.json" (any case).
func DisplayFilename(name string) string {
	if name == "" {
		return ""
	}
	if len(name) >= len(ParsingResultSuffix) &&
		strings.EqualFold(name[len(name)-len(ParsingResultSuffix):], ParsingResultSuffix) {
		return name[:len(name)-len(ParsingResultSuffix)]
	}
	return name
}

// text renders a loosely typed value as display text. Whole numbers are
// printed without a fraction so numeric account numbers survive intact.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%.0f", t)
		}
		return fmt.Sprint(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// batchID keeps a textual batch id verbatim; blank text counts as absent.
func batchID(v any) string {
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	}
	return text(v)
}
