package recon

// RawAccount is one account entry as emitted by the parsing agent. Every
// field is loosely typed: numbers may arrive as JSON numbers, as strings with
// thousands separators, or as the sentinel "NA".
type RawAccount struct {
	AccountNumber    any `json:"account_number"`
	AccountType      any `json:"account_type"`
	BeginningBalance any `json:"beginning_balance"`
	EndingBalance    any `json:"ending_balance"`
	TotalDeposits    any `json:"total_deposits"`
	TotalWithdrawals any `json:"total_withdrawals"`
	AvgDailyBalance  any `json:"avg_daily_balance"`
	NoOfDeposits     any `json:"no_of_deposits"`
	NoOfWithdrawals  any `json:"no_of_withdrawals"`

	MCAWithdrawals     any `json:"mca_withdrawals,omitempty"`
	ReturnedItemsCount any `json:"returned_items_count,omitempty"`
	ReturnedItemsDays  any `json:"returned_items_days,omitempty"`
	OverdraftDays      any `json:"overdraft_days,omitempty"`
}

// StatementDetail is the nested object of a parsing result envelope.
type StatementDetail struct {
	BankName       any          `json:"bank_name"`
	StatementMonth any          `json:"statement_month"`
	StatementYear  any          `json:"statement_year"`
	Accounts       []RawAccount `json:"accounts"`
}

// RawStatement is the envelope stored as <name>_parsing_result.json.
// Result is nil when the agent produced a malformed envelope.
type RawStatement struct {
	BatchID  any              `json:"batch_id"`
	Filename string           `json:"filename,omitempty"`
	Result   *StatementDetail `json:"result"`

	// Source is the object the envelope was read from. It is not part of
	// the stored JSON.
	Source string `json:"-"`
}

// NormalizedAccount holds the finite, defaulted figures for one account.
// TotalDebits is always a magnitude.
type NormalizedAccount struct {
	AccountNumber   string  `json:"account_number"`
	AccountType     string  `json:"account_type"`
	StartingBalance float64 `json:"starting_balance"`
	EndingBalance   float64 `json:"ending_balance"`
	TotalCredits    float64 `json:"total_credits"`
	TotalDebits     float64 `json:"total_debits"`
	AverageBalance  float64 `json:"average_balance"`
	NoOfDeposits    int64   `json:"no_of_deposits"`
	NoOfWithdrawals int64   `json:"no_of_withdrawals"`

	MCAWithdrawals     float64 `json:"mca_withdrawals"`
	ReturnedItemsCount int64   `json:"returned_items_count"`
	ReturnedItemsDays  int64   `json:"returned_items_days"`
	OverdraftDays      int64   `json:"overdraft_days"`
}

// ReconciliationRow is the display row derived from one RawStatement.
type ReconciliationRow struct {
	CaseID               string              `json:"case_id"`
	BankName             string              `json:"bank_name"`
	StatementMonth       int64               `json:"statement_month"`
	StatementYear        int64               `json:"statement_year"`
	PeriodLabel          string              `json:"period_label"`
	FirstTransactionDate string              `json:"first_transaction_date"`
	LastTransactionDate  string              `json:"last_transaction_date"`
	DocumentName         string              `json:"document_name"`
	Accounts             []NormalizedAccount `json:"accounts"`
	SourceFilename       string              `json:"source_filename"`
}
