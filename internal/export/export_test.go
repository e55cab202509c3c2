package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
)

func sampleStatement() domain.AccountStatement {
	return domain.AccountStatement{
		Account: domain.Account{
			ID:   "acc-1",
			Type: domain.AccountCustomer,
			Name: "Ali Traders",
		},
		Receipts: []domain.Receipt{
			{
				ID:           "rcp-1",
				Type:         domain.TxOdhar,
				Amount:       decimal.NewFromInt(500),
				Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				BalanceAfter: decimal.NewFromInt(-500),
				Note:         "diesel on credit",
			},
			{
				ID:           "rcp-2",
				Type:         domain.TxWasooli,
				Amount:       decimal.NewFromInt(200),
				Date:         time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
				BalanceAfter: decimal.NewFromInt(-300),
			},
		},
		TotalOdhar: decimal.NewFromInt(500),
		TotalPaid:  decimal.NewFromInt(200),
		Remaining:  decimal.NewFromInt(-300),
	}
}

func TestFilenameStampsDate(t *testing.T) {
	at := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	got := Filename("AccountStatement", "pdf", at)
	if got != "AccountStatement_20260901.pdf" {
		t.Fatalf("filename = %q", got)
	}
}

func TestWriteStatementXLSXProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatementXLSX(&buf, sampleStatement()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	// xlsx files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Fatalf("output does not look like a zip archive (%d bytes)", buf.Len())
	}
}

func TestWriteStatementPDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStatementPDF(&buf, "FuelBook Station", sampleStatement(), time.Now())
	if err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not start with PDF magic (%d bytes)", buf.Len())
	}
}

func TestWriteCashflowPDFProducesDocument(t *testing.T) {
	days := []domain.DailyCashflow{
		{Date: "2026-03-01", CashIn: decimal.NewFromInt(900), CashOut: decimal.NewFromInt(400), Net: decimal.NewFromInt(500), EntryCnt: 3},
	}
	var buf bytes.Buffer
	if err := WriteCashflowPDF(&buf, "FuelBook Station", days, time.Now()); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not start with PDF magic")
	}
}
