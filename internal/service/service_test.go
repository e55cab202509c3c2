package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"fuelbook/backend/internal/cache"
	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(repo, cache.NoopSummaryCache{}, log, 5*time.Second)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func openShift(t *testing.T, svc *Service, ctx context.Context) domain.Shift {
	t.Helper()
	shift, err := svc.OpenShift(ctx)
	if err != nil {
		t.Fatalf("open shift: %v", err)
	}
	return shift
}

func createAccount(t *testing.T, svc *Service, ctx context.Context, req domain.AccountCreateRequest) domain.Account {
	t.Helper()
	account, err := svc.CreateAccount(ctx, req)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func TestCreateReceiptRequiresCoveringShift(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Ali Traders",
	})

	_, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxOdhar,
		Amount: decimal.NewFromInt(500),
	})
	if !errors.Is(err, ledger.ErrNoShiftFound) {
		t.Fatalf("expected ErrNoShiftFound, got %v", err)
	}
}

func TestCustomerOdharMirrorsCashWithoutCounters(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	shift := openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Ali Traders",
	})

	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxOdhar,
		Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if receipt.ShiftID != shift.ID {
		t.Fatalf("receipt attributed to shift %s, want %s", receipt.ShiftID, shift.ID)
	}
	if !receipt.BalanceAfter.Equal(decimal.NewFromInt(-500)) {
		t.Fatalf("balance after = %s, want -500", receipt.BalanceAfter)
	}

	entries, err := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list cashflow: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cashflow entries = %d, want 1", len(entries))
	}
	if entries[0].Type != domain.CashflowIn {
		t.Fatalf("cashflow type = %s, want %s", entries[0].Type, domain.CashflowIn)
	}

	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !summary.Global.TotalWasooli.IsZero() || !summary.Global.TotalOdhar.IsZero() {
		t.Fatalf("customer odhar must not feed counters, got %+v", summary.Global)
	}
}

func TestReceiptDeleteRestoresAggregates(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Ali Traders",
	})

	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(750),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	summary, _ := svc.GetSummary(ctx)
	if !summary.Global.TotalWasooli.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("total wasooli = %s, want 750", summary.Global.TotalWasooli)
	}

	if err := svc.DeleteReceipt(ctx, receipt.ID); err != nil {
		t.Fatalf("delete receipt: %v", err)
	}

	summary, _ = svc.GetSummary(ctx)
	if !summary.Global.TotalWasooli.IsZero() {
		t.Fatalf("total wasooli after delete = %s, want 0", summary.Global.TotalWasooli)
	}
	reloaded, err := svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !reloaded.CurrentBalance.IsZero() {
		t.Fatalf("balance after delete = %s, want 0", reloaded.CurrentBalance)
	}
	entries, _ := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if len(entries) != 0 {
		t.Fatalf("cashflow entries after delete = %d, want 0", len(entries))
	}
}

func TestBackdatedReceiptReflowsChain(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Ali Traders",
	})

	later := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	first, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxOdhar,
		Amount: decimal.NewFromInt(400),
		Date:   later,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	// Second entry dated before the first reorders the chain.
	if _, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("create backdated: %v", err)
	}

	chain, err := svc.ListReceipts(ctx, account.ID)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].Type != domain.TxWasooli {
		t.Fatalf("backdated entry should sort first, got %s", chain[0].Type)
	}
	if !chain[0].BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("first balance = %s, want 100", chain[0].BalanceAfter)
	}
	if chain[1].ID != first.ID || !chain[1].BalanceAfter.Equal(decimal.NewFromInt(-300)) {
		t.Fatalf("tail balance = %s, want -300", chain[1].BalanceAfter)
	}
}

func TestCreditLimitBlocksOdhar(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type:        domain.AccountCustomer,
		Name:        "Limited",
		CreditLimit: decimal.NewFromInt(300),
	})

	_, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxOdhar,
		Amount: decimal.NewFromInt(500),
	})
	if !errors.Is(err, ledger.ErrCreditLimitExceeded) {
		t.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}
}

func TestStaffBalanceIsDerived(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	joined := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type:     domain.AccountStaff,
		Name:     "Pump Attendant",
		Salary:   decimal.NewFromInt(3000),
		JoinedAt: joined,
	})

	if _, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxPay,
		Amount: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("pay receipt: %v", err)
	}

	statement, err := svc.Statement(ctx, account.ID)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !statement.AmountOwed.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("amount owed = %s, want 2000", statement.AmountOwed)
	}

	summary, _ := svc.GetSummary(ctx)
	if !summary.Global.TotalSalaries.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total salaries = %s, want 1000", summary.Global.TotalSalaries)
	}
}

func TestAccountDeleteCascades(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountExpenses,
		Name: "Electricity",
	})

	if _, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxExpense,
		Amount: decimal.NewFromInt(900),
	}); err != nil {
		t.Fatalf("expense receipt: %v", err)
	}

	if err := svc.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := svc.GetAccount(ctx, account.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after cascade, got %v", err)
	}
	summary, _ := svc.GetSummary(ctx)
	if !summary.Global.TotalExpenses.IsZero() {
		t.Fatalf("total expenses after cascade = %s, want 0", summary.Global.TotalExpenses)
	}
	entries, _ := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if len(entries) != 0 {
		t.Fatalf("cashflow entries after cascade = %d, want 0", len(entries))
	}
}

func TestSaleInvoiceDrainsTankAndMirrorsCash(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	products, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	var petrol domain.Product
	for _, p := range products {
		if p.Category == domain.ProductCategoryFuel && p.Name == "Petrol" {
			petrol = p
		}
	}
	if petrol.ID == "" {
		t.Fatalf("seeded petrol product missing")
	}

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceSale, domain.InvoiceCreateRequest{
		ProductID: petrol.ID,
		Quantity:  decimal.NewFromInt(2000),
		UnitPrice: decimal.NewFromFloat(272.50),
	})
	if err != nil {
		t.Fatalf("create sale invoice: %v", err)
	}
	if !invoice.Amount.Equal(decimal.NewFromInt(545000)) {
		t.Fatalf("amount = %s, want 545000", invoice.Amount)
	}
	if !invoice.RemainingStockAfter.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("remaining stock = %s, want 10000", invoice.RemainingStockAfter)
	}

	entries, _ := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if len(entries) != 1 || entries[0].Type != domain.CashflowIn {
		t.Fatalf("expected one cashin mirror entry, got %+v", entries)
	}

	movements, err := svc.ListStockMovements(ctx, petrol.ID, 10)
	if err != nil {
		t.Fatalf("list stock movements: %v", err)
	}
	if len(movements) != 1 || movements[0].EventType != string(domain.InvoiceSale) {
		t.Fatalf("expected sale stock movement, got %+v", movements)
	}
}

func TestSaleInvoiceRejectsOverdraw(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	products, _ := svc.ListProducts(ctx)
	var diesel domain.Product
	for _, p := range products {
		if p.Name == "Diesel" {
			diesel = p
		}
	}

	_, err := svc.CreateInvoice(ctx, domain.InvoiceSale, domain.InvoiceCreateRequest{
		ProductID: diesel.ID,
		Quantity:  decimal.NewFromInt(9000),
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestPurchaseInvoiceRespectsTankCapacity(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	products, _ := svc.ListProducts(ctx)
	var petrol domain.Product
	for _, p := range products {
		if p.Name == "Petrol" {
			petrol = p
		}
	}

	// Tank holds 12000 of 30000; a 20000 delivery would overflow.
	_, err := svc.CreateInvoice(ctx, domain.InvoicePurchase, domain.InvoiceCreateRequest{
		ProductID: petrol.ID,
		Quantity:  decimal.NewFromInt(20000),
	})
	if !errors.Is(err, ledger.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestInvoiceUpdateReconcilesStockInTwoPhases(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	products, _ := svc.ListProducts(ctx)
	var petrol domain.Product
	for _, p := range products {
		if p.Name == "Petrol" {
			petrol = p
		}
	}

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceSale, domain.InvoiceCreateRequest{
		ProductID: petrol.ID,
		Quantity:  decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	smaller := decimal.NewFromInt(1000)
	updated, err := svc.UpdateInvoice(ctx, invoice.ID, domain.InvoiceUpdateRequest{Quantity: &smaller})
	if err != nil {
		t.Fatalf("update invoice: %v", err)
	}
	// 12000 - 5000, reversed to 12000, then -1000.
	if !updated.RemainingStockAfter.Equal(decimal.NewFromInt(11000)) {
		t.Fatalf("remaining after edit = %s, want 11000", updated.RemainingStockAfter)
	}

	if err := svc.DeleteInvoice(ctx, invoice.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	tanks, _ := svc.ListTanks(ctx)
	for _, tank := range tanks {
		if tank.ProductID == petrol.ID && !tank.Stock.Equal(decimal.NewFromInt(12000)) {
			t.Fatalf("tank stock after delete = %s, want 12000", tank.Stock)
		}
	}
	entries, _ := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if len(entries) != 0 {
		t.Fatalf("cashflow entries after invoice delete = %d, want 0", len(entries))
	}
}

func TestSummaryAuditDetectsSync(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountBank,
		Name: "HBL Main",
	})

	if _, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxCashIn,
		Amount: decimal.NewFromInt(5000),
	}); err != nil {
		t.Fatalf("bank deposit: %v", err)
	}

	audit, err := svc.AuditSummary(ctx)
	if err != nil {
		t.Fatalf("audit summary: %v", err)
	}
	if !audit.InSync {
		t.Fatalf("expected counters in sync, stored=%+v recomputed=%+v", audit.Stored, audit.Recomputed)
	}
	if !audit.Recomputed.Banks.TotalDeposits.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("recomputed deposits = %s, want 5000", audit.Recomputed.Banks.TotalDeposits)
	}
}

func TestSecondShiftRejectedWhileActive(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	if _, err := svc.OpenShift(ctx); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for second shift, got %v", err)
	}

	if _, err := svc.CloseShift(ctx); err != nil {
		t.Fatalf("close shift: %v", err)
	}
	if _, err := svc.OpenShift(ctx); err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
}

func TestReminderLinksUseOutstandingBalance(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)
	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type:        domain.AccountCustomer,
		Name:        "Ali Traders",
		PhoneNumber: "+92 300 1234567",
	})

	if _, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxOdhar,
		Amount: decimal.NewFromInt(1500),
	}); err != nil {
		t.Fatalf("odhar receipt: %v", err)
	}

	links, err := svc.ReminderLinks(ctx, account.ID)
	if err != nil {
		t.Fatalf("reminder links: %v", err)
	}
	if links.WhatsApp == "" || links.SMS == "" {
		t.Fatalf("expected both links, got %+v", links)
	}
	if want := "1500.00"; !strings.Contains(links.Text, want) {
		t.Fatalf("text %q missing amount %s", links.Text, want)
	}
}

func TestUpdateProductAdjustsPrice(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	products, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	var petrol domain.Product
	for _, p := range products {
		if p.Name == "Petrol" {
			petrol = p
		}
	}
	if petrol.ID == "" {
		t.Fatal("seeded petrol product not found")
	}

	newPrice := decimal.RequireFromString("280.75")
	updated, err := svc.UpdateProduct(ctx, petrol.ID, domain.ProductUpdateRequest{UnitPrice: &newPrice})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if !updated.UnitPrice.Equal(newPrice) {
		t.Fatalf("unit price = %s, want %s", updated.UnitPrice, newPrice)
	}

	operatorCtx := WithActor(context.Background(), domain.Actor{Username: "operator", Role: "operator"})
	if _, err := svc.UpdateProduct(operatorCtx, petrol.ID, domain.ProductUpdateRequest{UnitPrice: &newPrice}); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("err = %v, want admin gate", err)
	}

	negative := decimal.RequireFromString("-1")
	if _, err := svc.UpdateProduct(ctx, petrol.ID, domain.ProductUpdateRequest{UnitPrice: &negative}); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("err = %v, want invalid for negative price", err)
	}
}

func TestReceiptShareLinksDescribeTransaction(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type:        domain.AccountCustomer,
		Name:        "Share Target",
		PhoneNumber: "+92 300 1234567",
	})
	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(850),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	links, err := svc.ReceiptShareLinks(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("share links: %v", err)
	}
	if !strings.Contains(links.Text, "850.00") || !strings.Contains(links.Text, "wasooli") {
		t.Fatalf("text %q missing amount or type", links.Text)
	}
	if !strings.HasPrefix(links.WhatsApp, "https://wa.me/923001234567") {
		t.Fatalf("whatsapp link %q", links.WhatsApp)
	}
}

func TestUpdateReceiptAmountMovesAggregatesByDelta(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Edit Target",
	})
	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	amount := decimal.NewFromInt(450)
	updated, err := svc.UpdateReceipt(ctx, receipt.ID, domain.ReceiptUpdateRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	if !updated.Amount.Equal(amount) || !updated.BalanceAfter.Equal(amount) {
		t.Fatalf("updated receipt = %+v", updated)
	}

	got, err := svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !got.CurrentBalance.Equal(amount) {
		t.Fatalf("balance = %s, want 450", got.CurrentBalance)
	}
	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Global.TotalWasooli.Equal(amount) {
		t.Fatalf("totalWasooli = %s, want 450", summary.Global.TotalWasooli)
	}
	entries, err := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list cashflow: %v", err)
	}
	if len(entries) != 1 || !entries[0].Amount.Equal(amount) || entries[0].ID != receipt.CashflowID {
		t.Fatalf("cashflow mirror not updated in place: %+v", entries)
	}
}

func TestUpdateReceiptTypePersistsWithoutBalanceMove(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	staff := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type:   domain.AccountStaff,
		Name:   "Pump Attendant",
		Salary: decimal.NewFromInt(3000),
	})
	receipt, err := svc.CreateReceipt(ctx, staff.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxPay,
		Amount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	// pay -> deduction keeps the same signed delta, so no snapshot moves;
	// the stored row still has to change.
	deduction := domain.TxDeduction
	if _, err := svc.UpdateReceipt(ctx, receipt.ID, domain.ReceiptUpdateRequest{Type: &deduction}); err != nil {
		t.Fatalf("update receipt: %v", err)
	}

	chain, err := svc.ListReceipts(ctx, staff.ID)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("chain length = %d", len(chain))
	}
	if chain[0].Type != domain.TxDeduction {
		t.Fatalf("stored type = %s, want deduction", chain[0].Type)
	}
	if chain[0].CashflowID != "" {
		t.Fatalf("deduction must not keep a cashflow reference, got %q", chain[0].CashflowID)
	}

	entries, err := svc.ListCashflow(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list cashflow: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("mirror entry should be gone, got %+v", entries)
	}
	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Global.TotalSalaries.IsZero() {
		t.Fatalf("totalSalaries = %s, want 0", summary.Global.TotalSalaries)
	}
}

func TestUpdateReceiptNotePersists(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	openShift(t, svc, ctx)

	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Note Target",
	})
	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(100),
		Note:   "old note",
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	note := "corrected note"
	updated, err := svc.UpdateReceipt(ctx, receipt.ID, domain.ReceiptUpdateRequest{Note: &note})
	if err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	if updated.Note != "corrected note" {
		t.Fatalf("stored note = %q, want %q", updated.Note, note)
	}
}

func TestUpdateReceiptDateReattributesShift(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	first := openShift(t, svc, ctx)

	account := createAccount(t, svc, ctx, domain.AccountCreateRequest{
		Type: domain.AccountCustomer,
		Name: "Shift Hopper",
	})
	receipt, err := svc.CreateReceipt(ctx, account.ID, domain.ReceiptCreateRequest{
		Type:   domain.TxWasooli,
		Amount: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if receipt.ShiftID != first.ID {
		t.Fatalf("receipt shift = %s, want %s", receipt.ShiftID, first.ID)
	}

	if _, err := svc.CloseShift(ctx); err != nil {
		t.Fatalf("close shift: %v", err)
	}
	second := openShift(t, svc, ctx)

	date := time.Now().UTC().Add(time.Minute).Format(time.RFC3339)
	updated, err := svc.UpdateReceipt(ctx, receipt.ID, domain.ReceiptUpdateRequest{Date: &date})
	if err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	if updated.ShiftID != second.ID {
		t.Fatalf("shift = %s, want re-attribution to %s", updated.ShiftID, second.ID)
	}
}
