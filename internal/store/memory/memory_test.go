package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
)

// A write set naming a missing balance account must fail before anything
// lands: Apply is all or nothing.
func TestApplyRejectsMissingAccountBeforeWriting(t *testing.T) {
	s := New()

	ws := ledger.WriteSet{
		Receipts: []domain.Receipt{{
			ID:        "rcp-1",
			AccountID: "acc-ghost",
			Type:      domain.TxWasooli,
			Amount:    decimal.NewFromInt(100),
			Date:      time.Now().UTC(),
		}},
		Balance: &ledger.BalanceWrite{AccountID: "acc-ghost", NewBalance: decimal.NewFromInt(100)},
	}

	if err := s.Apply(context.Background(), ws); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetReceipt(context.Background(), "rcp-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("receipt must not have been written, got err = %v", err)
	}
}

func TestApplyRejectsMissingStockTargetBeforeWriting(t *testing.T) {
	s := New()

	ws := ledger.WriteSet{
		Invoices: []domain.Invoice{{ID: "inv-1", Kind: domain.InvoiceSale, Quantity: decimal.NewFromInt(10)}},
		Stock:    []ledger.StockWrite{{Kind: ledger.TargetTank, ID: "tnk-ghost", NewStock: decimal.NewFromInt(5)}},
	}

	if err := s.Apply(context.Background(), ws); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetInvoice(context.Background(), "inv-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("invoice must not have been written, got err = %v", err)
	}
}
