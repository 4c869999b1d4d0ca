package pipeline

import "strings"

// statementFields lists the account keys the model must emit, in order.
var statementFields = []string{
	"account_number",
	"account_type",
	"beginning_balance",
	"ending_balance",
	"total_deposits",
	"total_withdrawals",
	"avg_daily_balance",
	"no_of_deposits",
	"no_of_withdrawals",
	"mca_withdrawals",
	"returned_items_count",
	"returned_items_days",
	"overdraft_days",
}

// buildStatementPrompt returns the instructions sent alongside the PDF.
func buildStatementPrompt() string {
	var b strings.Builder

	b.WriteString("You are a financial statement parser for US business bank statements.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Read the attached statement and summarize every account it covers.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")

	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"bank_name\": string\n")
	b.WriteString("- \"statement_month\": number 1-12 (month of the statement period end)\n")
	b.WriteString("- \"statement_year\": number, four digits\n")
	b.WriteString("- \"accounts\": array of objects, one per account\n\n")

	b.WriteString("Each account object must have these fields:\n")
	for _, f := range statementFields {
		b.WriteString("- \"" + f + "\"\n")
	}
	b.WriteString("\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Amounts are plain numbers without currency symbols.\n")
	b.WriteString("- \"total_withdrawals\" is the total of all debits for the period.\n")
	b.WriteString("- Counts and day totals are whole numbers.\n")
	b.WriteString("- If a value cannot be determined, use the string \"NA\".\n")
	b.WriteString("- If the statement has no MCA, returned item or overdraft activity, use 0.\n\n")

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}
