package recon

import "github.com/shopspring/decimal"

// reconcileTolerance treats sub-cent noise as zero.
var reconcileTolerance = decimal.RequireFromString("0.005")

// Verdict is the reconciliation outcome for one account. It is derived on
// demand and never stored.
type Verdict struct {
	CalculatedBalance float64 `json:"calculated_balance"`
	Difference        float64 `json:"difference"`
	IsReconciled      bool    `json:"is_reconciled"`
}

// Verify checks starting - debits + credits against the ending balance.
// Arithmetic is done in decimal and the difference is rounded half away
// from zero to cents.
func Verify(a NormalizedAccount) Verdict {
	calculated := decimal.NewFromFloat(a.StartingBalance).
		Sub(decimal.NewFromFloat(a.TotalDebits)).
		Add(decimal.NewFromFloat(a.TotalCredits))
	diff := decimal.NewFromFloat(a.EndingBalance).Sub(calculated).Round(2)

	return Verdict{
		CalculatedBalance: calculated.InexactFloat64(),
		Difference:        diff.InexactFloat64(),
		IsReconciled:      diff.Abs().LessThan(reconcileTolerance),
	}
}

// Summary counts reconciled accounts within a row.
type Summary struct {
	Accounts   int `json:"accounts"`
	Reconciled int `json:"reconciled"`
}

// AllReconciled reports whether every account in the row reconciles.
// A row without accounts is not considered reconciled.
func (s Summary) AllReconciled() bool {
	return s.Accounts > 0 && s.Accounts == s.Reconciled
}

// Summarize verifies every account of row.
func Summarize(row ReconciliationRow) Summary {
	s := Summary{Accounts: len(row.Accounts)}
	for _, a := range row.Accounts {
		if Verify(a).IsReconciled {
			s.Reconciled++
		}
	}
	return s
}

// SelectAccount returns the account at index, falling back to the first
// account when index is out of range. ok is false only for rows without
// accounts.
func SelectAccount(row ReconciliationRow, index int) (NormalizedAccount, bool) {
	if len(row.Accounts) == 0 {
		return NormalizedAccount{}, false
	}
	if index < 0 || index >= len(row.Accounts) {
		index = 0
	}
	return row.Accounts[index], true
}
