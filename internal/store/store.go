package store

import (
	"context"
	"errors"
	"time"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
	ErrConflict = errors.New("conflict")
)

// Repository is the persistence boundary. Reads are plain collection
// queries; every mutation goes through Apply, the single atomic
// multi-document commit for a ledger write set.
type Repository interface {
	CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) (*domain.Account, error)

	// ListReceiptsByAccount returns the full chain in (date, createdAt)
	// order, oldest first.
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
	ListReceiptsByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error)
	ListReceipts(ctx context.Context, from, to time.Time) ([]domain.Receipt, error)

	GetCashflowEntry(ctx context.Context, id string) (*domain.CashflowEntry, error)
	ListCashflow(ctx context.Context, from, to time.Time) ([]domain.CashflowEntry, error)

	GetSummaries(ctx context.Context) (domain.SummaryResponse, error)

	// ListShifts returns shifts newest first. A limit <= 0 means unbounded:
	// shift resolution needs the full history to place backdated entries.
	CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error)
	CloseActiveShift(ctx context.Context, closedAt time.Time) (*domain.Shift, error)
	GetActiveShift(ctx context.Context) (*domain.Shift, error)
	ListShifts(ctx context.Context, limit int) ([]domain.Shift, error)

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	CreateTank(ctx context.Context, tank domain.Tank) (*domain.Tank, error)
	GetTank(ctx context.Context, id string) (*domain.Tank, error)
	GetTankByProduct(ctx context.Context, productID string) (*domain.Tank, error)
	ListTanks(ctx context.Context) ([]domain.Tank, error)

	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, kind domain.InvoiceKind, from, to time.Time) ([]domain.Invoice, error)

	// Stock movements are a best-effort audit trail: callers log and
	// continue when an append fails.
	AppendStockMovement(ctx context.Context, movement domain.StockMovement) error
	ListStockMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from, to time.Time, limit int) ([]domain.AuditLog, error)

	GetUser(ctx context.Context, username string) (*domain.UserAccount, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error

	// Apply commits a write set atomically: receipts, invoices, account
	// balance, cashflow ops, summary increments and stock levels all land
	// or none do. Stock floors are re-checked inside the transaction.
	Apply(ctx context.Context, ws ledger.WriteSet) error
}

// GuardStock is the in-transaction floor re-check shared by Apply
// implementations.
func GuardStock(w ledger.StockWrite) error {
	if w.NewStock.IsNegative() {
		return ledger.ErrInsufficientStock
	}
	return nil
}
