// Package export renders account statements and cashflow reports as Excel
// workbooks and PDF documents for download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"fuelbook/backend/internal/domain"
)

const sheet = "Sheet1"

// Filename stamps the report name with the generation date, e.g.
// "AccountStatement_20260901.xlsx".
func Filename(report string, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", report, at.UTC().Format("20060102"), ext)
}

// WriteStatementXLSX renders one account's ledger with running balances and
// the fold totals underneath.
func WriteStatementXLSX(w io.Writer, statement domain.AccountStatement) error {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Account")
	f.SetCellValue(sheet, "B1", statement.Account.Name)
	f.SetCellValue(sheet, "A2", "Type")
	f.SetCellValue(sheet, "B2", string(statement.Account.Type))

	headers := []string{"Date", "Type", "Amount", "Balance After", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	row := 5
	for _, r := range statement.Receipts {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), r.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), string(r.Type))
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), r.Amount.StringFixed(2))
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), r.BalanceAfter.StringFixed(2))
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), r.Note)
		row++
	}

	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Odhar")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), statement.TotalOdhar.StringFixed(2))
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Paid")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), statement.TotalPaid.StringFixed(2))
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Remaining")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), statement.Remaining.StringFixed(2))
	if statement.Account.Type == domain.AccountStaff {
		row++
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Amount Owed")
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), statement.AmountOwed.StringFixed(2))
	}

	return f.Write(w)
}

// WriteCashflowXLSX renders the per-day cashflow buckets.
func WriteCashflowXLSX(w io.Writer, days []domain.DailyCashflow) error {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Date", "Cash In", "Cash Out", "Net", "Entries"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, d := range days {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.Date)
		f.SetCellValue(sheet, "B"+row, d.CashIn.StringFixed(2))
		f.SetCellValue(sheet, "C"+row, d.CashOut.StringFixed(2))
		f.SetCellValue(sheet, "D"+row, d.Net.StringFixed(2))
		f.SetCellValue(sheet, "E"+row, d.EntryCnt)
	}

	return f.Write(w)
}
