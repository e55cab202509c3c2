package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
)

func TestApplyCommitsReceiptWriteSet(t *testing.T) {
	databaseURL := os.Getenv("FUELBOOK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set FUELBOOK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	accountID := fmt.Sprintf("acc-apply-it-%d", stamp)
	receiptID := fmt.Sprintf("rcp-apply-it-%d", stamp)
	cashflowID := fmt.Sprintf("cfl-apply-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cashflow_entries WHERE id = $1`, cashflowID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, receiptID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	})

	now := time.Now().UTC()
	account := domain.Account{
		ID:        accountID,
		Type:      domain.AccountCustomer,
		Name:      "Apply IT Customer",
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
	}
	if _, err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	receipt := domain.Receipt{
		ID:        receiptID,
		AccountID: accountID,
		Type:      domain.TxWasooli,
		Amount:    decimal.NewFromInt(750),
		Date:      now,
		ShiftID:   "shf-apply-it",
		CreatedAt: now,
	}
	ws, err := ledger.BuildReceiptCreate(account, nil, receipt, cashflowID, now)
	if err != nil {
		t.Fatalf("build write set: %v", err)
	}
	if err := s.Apply(ctx, ws); err != nil {
		t.Fatalf("apply: %v", err)
	}

	stored, err := s.GetReceipt(ctx, receiptID)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if !stored.BalanceAfter.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("balance after = %s, want 750", stored.BalanceAfter)
	}

	updated, err := s.GetAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !updated.CurrentBalance.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("current balance = %s, want 750", updated.CurrentBalance)
	}

	entry, err := s.GetCashflowEntry(ctx, cashflowID)
	if err != nil {
		t.Fatalf("get cashflow entry: %v", err)
	}
	if entry.Type != domain.CashflowIn {
		t.Fatalf("cashflow type = %s, want %s", entry.Type, domain.CashflowIn)
	}
	if entry.ReceiptID != receiptID {
		t.Fatalf("cashflow receipt id = %s, want %s", entry.ReceiptID, receiptID)
	}
}
