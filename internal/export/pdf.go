package export

import (
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"fuelbook/backend/internal/domain"
)

// WriteStatementPDF renders an account statement: station header, a summary
// strip and the receipt table.
func WriteStatementPDF(w io.Writer, stationName string, statement domain.AccountStatement, at time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, stationName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Account Statement - "+statement.Account.Name+" ("+string(statement.Account.Type)+")", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+at.UTC().Format("2006-01-02 15:04")+" UTC", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Summary strip.
	pdf.SetFont("Helvetica", "B", 10)
	boxes := []struct {
		label string
		value string
	}{
		{"Total Odhar", statement.TotalOdhar.StringFixed(2)},
		{"Total Paid", statement.TotalPaid.StringFixed(2)},
		{"Remaining", statement.Remaining.StringFixed(2)},
	}
	if statement.Account.Type == domain.AccountStaff {
		boxes[2] = struct {
			label string
			value string
		}{"Amount Owed", statement.AmountOwed.StringFixed(2)}
	}
	boxWidth := 190.0 / float64(len(boxes))
	for _, box := range boxes {
		pdf.CellFormat(boxWidth, 8, box.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, box := range boxes {
		pdf.CellFormat(boxWidth, 8, box.value, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(12)

	// Receipt table.
	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{28, 30, 35, 40, 57}
	headers := []string{"Date", "Type", "Amount", "Balance After", "Note"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range statement.Receipts {
		cells := []string{
			r.Date.Format("2006-01-02"),
			string(r.Type),
			r.Amount.StringFixed(2),
			r.BalanceAfter.StringFixed(2),
			r.Note,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// WriteCashflowPDF renders the daily cashflow report.
func WriteCashflowPDF(w io.Writer, stationName string, days []domain.DailyCashflow, at time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, stationName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Daily Cashflow Report", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+at.UTC().Format("2006-01-02 15:04")+" UTC", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{40, 37, 37, 37, 39}
	headers := []string{"Date", "Cash In", "Cash Out", "Net", "Entries"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range days {
		cells := []string{
			d.Date,
			d.CashIn.StringFixed(2),
			d.CashOut.StringFixed(2),
			d.Net.StringFixed(2),
			strconv.Itoa(d.EntryCnt),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
