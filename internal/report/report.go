// Package report renders reconciliation views as XLSX and PDF documents.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/statement-recon/internal/observability/metrics"
	"github.com/dvloznov/statement-recon/internal/view"
)

// Supported export formats.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Content types of the export formats.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

const (
	summarySheet  = "summary"
	accountsSheet = "accounts"
)

var (
	summaryHeader = []string{
		"Case ID", "Bank", "Period", "First Date", "Last Date", "Document", "Source File",
		"Accounts", "Reconciled", "All Reconciled",
	}
	accountsHeader = []string{
		"Case ID", "Period", "Account Number", "Account Type", "Starting Balance", "Total Credits",
		"Total Debits", "Ending Balance", "Calculated Balance", "Difference", "Reconciled",
		"Average Balance", "Deposits", "Withdrawals", "MCA Withdrawals", "Returned Items",
		"Returned Item Days", "Overdraft Days",
	}
)

// Build renders views in the named format and returns the document with its
// content type.
func Build(format string, views []view.RowView) ([]byte, string, error) {
	start := time.Now()
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatXLSX:
		data, err = BuildXLSX(views)
		contentType = ContentTypeXLSX
	case FormatPDF:
		data, err = BuildPDF(views)
		contentType = ContentTypePDF
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	metrics.ObserveExport(format, err, time.Since(start))
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// BuildXLSX renders a workbook with a summary sheet (one row per case) and
// an accounts sheet (one row per account).
func BuildXLSX(views []view.RowView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("BuildXLSX: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(accountsSheet); err != nil {
		return nil, fmt.Errorf("BuildXLSX: add sheet: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, toCells(summaryHeader)); err != nil {
		return nil, fmt.Errorf("BuildXLSX: %w", err)
	}
	if err := writeRow(f, accountsSheet, 1, toCells(accountsHeader)); err != nil {
		return nil, fmt.Errorf("BuildXLSX: %w", err)
	}

	acctRow := 2
	for i, v := range views {
		summary := []any{
			v.CaseID, v.BankName, v.PeriodLabel, v.FirstTransactionDate, v.LastTransactionDate,
			v.DocumentName, v.SourceFilename, v.Summary.Accounts, v.Summary.Reconciled, yesNo(v.AllReconciled),
		}
		if err := writeRow(f, summarySheet, i+2, summary); err != nil {
			return nil, fmt.Errorf("BuildXLSX: %w", err)
		}

		for _, a := range v.Accounts {
			cells := []any{
				v.CaseID, v.PeriodLabel, a.AccountNumber, a.AccountType, a.StartingBalance, a.TotalCredits,
				a.TotalDebits, a.EndingBalance, a.CalculatedBalance, a.Difference, yesNo(a.IsReconciled),
				a.AverageBalance, a.NoOfDeposits, a.NoOfWithdrawals, a.MCAWithdrawals, a.ReturnedItemsCount,
				a.ReturnedItemsDays, a.OverdraftDays,
			}
			if err := writeRow(f, accountsSheet, acctRow, cells); err != nil {
				return nil, fmt.Errorf("BuildXLSX: %w", err)
			}
			acctRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("BuildXLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildPDF renders a landscape reconciliation summary with one table row
// per account.
func BuildPDF(views []view.RowView) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Statement Reconciliation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Statements: %d", len(views)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	widths := []float64{40, 45, 22, 28, 30, 30, 30, 30, 22}
	header := []string{"Case", "Bank", "Period", "Account", "Start", "Credits", "Debits", "End", "Diff"}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, v := range views {
		if len(v.Accounts) == 0 {
			cells := []string{v.CaseID, tr(v.BankName), v.PeriodLabel, "-", "", "", "", "", ""}
			pdfRow(pdf, widths, cells)
			continue
		}
		for _, a := range v.Accounts {
			diff := fmt.Sprintf("%.2f", a.Difference)
			if a.IsReconciled {
				diff = "OK"
			}
			cells := []string{
				v.CaseID, tr(v.BankName), v.PeriodLabel, tr(a.AccountNumber),
				money(a.StartingBalance), money(a.TotalCredits), money(a.TotalDebits), money(a.EndingBalance), diff,
			}
			pdfRow(pdf, widths, cells)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("BuildPDF: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfRow(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	for i, c := range cells {
		align := "L"
		if i >= 4 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
