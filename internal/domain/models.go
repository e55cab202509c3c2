package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account in the station ledger.
type AccountType string

const (
	AccountCustomer AccountType = "customer"
	AccountSupplier AccountType = "supplier"
	AccountBank     AccountType = "bank"
	AccountStaff    AccountType = "staff"
	AccountExpenses AccountType = "expenses"
)

// TransactionType labels a ledger transaction. Amounts are always stored as
// unsigned magnitudes; the sign is derived from (AccountType, TransactionType)
// by the ledger flow resolver.
type TransactionType string

const (
	TxWasooli   TransactionType = "wasooli"   // payment collected (customer) or made (supplier)
	TxOdhar     TransactionType = "odhar"     // credit extended
	TxCashIn    TransactionType = "cashIn"    // bank deposit
	TxCashOut   TransactionType = "cashOut"   // bank withdrawal
	TxPay       TransactionType = "pay"       // staff salary payment
	TxExpense   TransactionType = "expense"   // expense booked
	TxDeduction TransactionType = "deduction" // staff deduction, no cashflow
)

// CashflowType is the normalized direction of a cashflow mirror entry.
type CashflowType string

const (
	CashflowIn  CashflowType = "cashin"
	CashflowOut CashflowType = "cashout"
)

const (
	AccountStatusActive = "active"
	AccountStatusClosed = "closed"
)

type Account struct {
	ID             string          `json:"id"`
	Type           AccountType     `json:"type"`
	Name           string          `json:"name"`
	PhoneNumber    string          `json:"phone_number,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Salary         decimal.Decimal `json:"salary"`       // staff only, per month
	CreditLimit    decimal.Decimal `json:"credit_limit"` // customer only, zero = unlimited
	Status         string          `json:"status"`
	JoinedAt       time.Time       `json:"joined_at,omitzero"` // staff only
	CreatedAt      time.Time       `json:"created_at"`
}

type AccountCreateRequest struct {
	Type           AccountType     `json:"type" validate:"required,oneof=customer supplier bank staff expenses"`
	Name           string          `json:"name" validate:"required"`
	PhoneNumber    string          `json:"phone_number"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Salary         decimal.Decimal `json:"salary"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	JoinedAt       string          `json:"joined_at"` // YYYY-MM-DD, staff only
}

type AccountUpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	PhoneNumber *string          `json:"phone_number,omitempty"`
	Salary      *decimal.Decimal `json:"salary,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// Receipt is one ledger transaction against an account. BalanceAfter is the
// account's running balance immediately after this transaction in
// (Date, CreatedAt) order; the engine reflows the whole chain on every
// mutation so the snapshots stay consistent under retroactive edits.
type Receipt struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"` // unsigned magnitude
	Date         time.Time       `json:"date"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ShiftID      string          `json:"shift_id"`
	CashflowID   string          `json:"cashflow_id,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ReceiptCreateRequest struct {
	Type   TransactionType `json:"type" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"` // RFC3339 or YYYY-MM-DD, empty = now
	Note   string          `json:"note"`
}

type ReceiptUpdateRequest struct {
	Type   *TransactionType `json:"type,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Date   *string          `json:"date,omitempty"`
	Note   *string          `json:"note,omitempty"`
}

// CashflowEntry mirrors one receipt or invoice into the station's cash
// position ledger. At most one entry exists per parent record.
type CashflowEntry struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      CashflowType    `json:"type"`
	Category  string          `json:"category"`
	ReceiptID string          `json:"receipt_id,omitempty"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GlobalSummary is the singleton aggregate document keyed "global".
type GlobalSummary struct {
	TotalWasooli  decimal.Decimal `json:"total_wasooli"`
	TotalOdhar    decimal.Decimal `json:"total_odhar"`
	TotalSalaries decimal.Decimal `json:"total_salaries"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

// BankSummary is the singleton aggregate document keyed "banks".
type BankSummary struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
}

type SummaryResponse struct {
	Global GlobalSummary `json:"global"`
	Banks  BankSummary   `json:"banks"`
}

// SummaryAudit reports drift between the stored counters and a fold over the
// underlying receipts. It never mutates the counters.
type SummaryAudit struct {
	Stored     SummaryResponse `json:"stored"`
	Recomputed SummaryResponse `json:"recomputed"`
	InSync     bool            `json:"in_sync"`
	CheckedAt  string          `json:"checked_at"`
}

const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// Shift is an operating time window. EndTime nil means currently active;
// at most one shift may be active at a time.
type Shift struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    string     `json:"status"`
	OpenedBy  string     `json:"opened_by,omitempty"`
}

const ProductCategoryFuel = "fuel"

// Product is a sellable item. Fuel products track stock on their tank,
// everything else tracks stock on the product row itself.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProductCreateRequest struct {
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	InitialStock decimal.Decimal `json:"initial_stock"`
}

type ProductUpdateRequest struct {
	Name      *string          `json:"name,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type Tank struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ProductID string          `json:"product_id"`
	Capacity  decimal.Decimal `json:"capacity"` // litres, zero = unbounded
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

type TankCreateRequest struct {
	Name         string          `json:"name" validate:"required"`
	ProductID    string          `json:"product_id" validate:"required"`
	Capacity     decimal.Decimal `json:"capacity"`
	InitialStock decimal.Decimal `json:"initial_stock"`
}

// InvoiceKind distinguishes the four invoice modules.
type InvoiceKind string

const (
	InvoicePurchase       InvoiceKind = "purchase"
	InvoicePurchaseReturn InvoiceKind = "purchaseReturn"
	InvoiceSale           InvoiceKind = "sale"
	InvoiceSaleReturn     InvoiceKind = "saleReturn"
)

type Invoice struct {
	ID                  string          `json:"id"`
	Kind                InvoiceKind     `json:"kind"`
	ProductID           string          `json:"product_id"`
	TankID              string          `json:"tank_id,omitempty"` // fuel only
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Amount              decimal.Decimal `json:"amount"` // quantity * unit price
	ShiftID             string          `json:"shift_id"`
	RemainingStockAfter decimal.Decimal `json:"remaining_stock_after"`
	CashflowID          string          `json:"cashflow_id"`
	CreatedBy           string          `json:"created_by"`
	Date                time.Time       `json:"date"`
	CreatedAt           time.Time       `json:"created_at"`
}

type InvoiceCreateRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Date      string          `json:"date"` // empty = now
}

type InvoiceUpdateRequest struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Date      *string          `json:"date,omitempty"`
}

// StockMovement is a best-effort audit record of one stock adjustment.
// Writing it never rolls back the owning operation.
type StockMovement struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	TankID              string          `json:"tank_id,omitempty"`
	EventType           string          `json:"event_type"` // invoice kind, or "<kind>-reversal"
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	RemainingStockAfter decimal.Decimal `json:"remaining_stock_after"`
	CreatedAt           time.Time       `json:"created_at"`
}

// AccountStatement is a rendered ledger for one account: the receipt chain
// with running balances plus derived totals.
type AccountStatement struct {
	Account    Account         `json:"account"`
	Receipts   []Receipt       `json:"receipts"`
	TotalOdhar decimal.Decimal `json:"total_odhar"` // credit extended
	TotalPaid  decimal.Decimal `json:"total_paid"`  // recovered / paid
	Remaining  decimal.Decimal `json:"remaining"`   // closing balance
	AmountOwed decimal.Decimal `json:"amount_owed"` // staff only, derived
}

// DailyCashflow aggregates the cashflow mirror per calendar day.
type DailyCashflow struct {
	Date     string          `json:"date"`
	CashIn   decimal.Decimal `json:"cash_in"`
	CashOut  decimal.Decimal `json:"cash_out"`
	Net      decimal.Decimal `json:"net"`
	EntryCnt int             `json:"entries"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReminderLinks carries the outbound messaging deep links for one account.
type ReminderLinks struct {
	AccountID string `json:"account_id"`
	WhatsApp  string `json:"whatsapp"`
	SMS       string `json:"sms"`
	Text      string `json:"text"`
}
