package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
)

// CashflowOpKind enumerates the reconciliation outcome for a parent's
// cashflow mirror entry.
type CashflowOpKind int

const (
	CashflowNone CashflowOpKind = iota
	CashflowCreate
	CashflowUpdate
	CashflowDelete
)

type CashflowOp struct {
	Kind  CashflowOpKind
	Entry domain.CashflowEntry // create/update payload
}

// BalanceWrite sets an account's stored balance to an absolute value. It is
// nil for staff accounts, whose balance is always derived.
type BalanceWrite struct {
	AccountID  string
	NewBalance decimal.Decimal
}

// StockWrite sets a tank or product stock level to an absolute value,
// precomputed by the engine. Stores that support conditional writes must
// still re-check the floor-zero guard inside the transaction.
type StockWrite struct {
	Kind     StockTargetKind
	ID       string
	NewStock decimal.Decimal
}

// WriteSet describes one atomic multi-document commit. The store applies
// everything or nothing; a WriteSet is data, never half-applied state.
type WriteSet struct {
	Receipts       []domain.Receipt // upserts, BalanceAfter already reflowed
	DeleteReceipts []string
	Invoices       []domain.Invoice // upserts
	DeleteInvoices []string
	Balance        *BalanceWrite
	Cashflows      []CashflowOp
	Summary        SummaryDelta
	Stock          []StockWrite
	DeleteAccount  string // cascade target, receipts/cashflows listed above
}

func (ws WriteSet) IsEmpty() bool {
	return len(ws.Receipts) == 0 && len(ws.DeleteReceipts) == 0 &&
		len(ws.Invoices) == 0 && len(ws.DeleteInvoices) == 0 &&
		ws.Balance == nil && len(ws.Cashflows) == 0 &&
		ws.Summary.IsZero() && len(ws.Stock) == 0 && ws.DeleteAccount == ""
}

// BuildReceiptCreate produces the atomic write for appending a transaction
// to an account's ledger: the receipt with its reflowed snapshot, every
// downstream snapshot that moved, the account balance, the cashflow mirror
// and the summary counters. cashflowID is consumed only when the flow
// resolver yields a direction.
func BuildReceiptCreate(account domain.Account, chain []domain.Receipt, r domain.Receipt, cashflowID string, now time.Time) (WriteSet, error) {
	if _, ok := ResolveCashflow(account.Type, r.Type); ok {
		r.CashflowID = cashflowID
	}

	next := append(append([]domain.Receipt{}, chain...), r)
	reflowed, closing := Reflow(account, next)

	if account.Type == domain.AccountCustomer && r.Type == domain.TxOdhar &&
		!CreditAvailable(account.CreditLimit, closing) {
		return WriteSet{}, ErrCreditLimitExceeded
	}

	ws := WriteSet{
		Receipts: ChangedSnapshots(chain, reflowed),
		Summary:  SummaryContribution(account.Type, r.Type, r.Amount),
	}
	if account.Type != domain.AccountStaff {
		ws.Balance = &BalanceWrite{AccountID: account.ID, NewBalance: closing}
	}

	if flow, ok := ResolveCashflow(account.Type, r.Type); ok {
		ws.Cashflows = append(ws.Cashflows, CashflowOp{
			Kind: CashflowCreate,
			Entry: domain.CashflowEntry{
				ID:        cashflowID,
				Amount:    r.Amount,
				Type:      flow,
				Category:  CashflowCategory(account.Type, r.Type),
				ReceiptID: r.ID,
				CreatedAt: now,
				UpdatedAt: now,
			},
		})
	}
	return ws, nil
}

// BuildReceiptUpdate reconciles an edited receipt: the chain is reflowed
// with the new values, the summary counters lose the old contribution and
// gain the new one, and the cashflow mirror goes through the four-case
// table (none->none, none->some, some->none, some->some). hadCashflow says
// whether the prior mirror entry actually exists, so a missing record is
// repaired by re-creating it.
func BuildReceiptUpdate(account domain.Account, chain []domain.Receipt, old domain.Receipt, updated domain.Receipt, hadCashflow bool, cashflowID string, now time.Time) (WriteSet, error) {
	_, newWants := ResolveCashflow(account.Type, updated.Type)
	_, oldWanted := ResolveCashflow(account.Type, old.Type)

	switch {
	case newWants && oldWanted && hadCashflow:
		updated.CashflowID = old.CashflowID
	case newWants:
		updated.CashflowID = cashflowID
	default:
		updated.CashflowID = ""
	}

	next := make([]domain.Receipt, 0, len(chain))
	for _, r := range chain {
		if r.ID == old.ID {
			continue
		}
		next = append(next, r)
	}
	next = append(next, updated)
	reflowed, closing := Reflow(account, next)

	if account.Type == domain.AccountCustomer && updated.Type == domain.TxOdhar &&
		!CreditAvailable(account.CreditLimit, closing) {
		return WriteSet{}, ErrCreditLimitExceeded
	}

	// The edited receipt always ships: type, date, amount or note may have
	// changed without moving its balance snapshot.
	ws := WriteSet{
		Receipts: withReceipt(ChangedSnapshots(chain, reflowed), reflowed, updated.ID),
		Summary: SummaryContribution(account.Type, old.Type, old.Amount).Neg().
			Add(SummaryContribution(account.Type, updated.Type, updated.Amount)),
	}
	if account.Type != domain.AccountStaff {
		ws.Balance = &BalanceWrite{AccountID: account.ID, NewBalance: closing}
	}

	ws.Cashflows = reconcileCashflow(account, old, updated, oldWanted, newWants, hadCashflow, now)
	return ws, nil
}

// withReceipt guarantees the receipt with the given ID is present in the
// upsert rows, pulling its reflowed row in when the snapshot held still.
func withReceipt(rows []domain.Receipt, reflowed []domain.Receipt, id string) []domain.Receipt {
	for _, r := range rows {
		if r.ID == id {
			return rows
		}
	}
	for _, r := range reflowed {
		if r.ID == id {
			return append(rows, r)
		}
	}
	return rows
}

func reconcileCashflow(account domain.Account, old, updated domain.Receipt, oldWanted, newWants, hadCashflow bool, now time.Time) []CashflowOp {
	flow, _ := ResolveCashflow(account.Type, updated.Type)
	entry := domain.CashflowEntry{
		ID:        updated.CashflowID,
		Amount:    updated.Amount,
		Type:      flow,
		Category:  CashflowCategory(account.Type, updated.Type),
		ReceiptID: updated.ID,
		UpdatedAt: now,
	}

	switch {
	case !oldWanted && !newWants:
		return nil
	case !newWants:
		if !hadCashflow {
			return nil
		}
		return []CashflowOp{{Kind: CashflowDelete, Entry: domain.CashflowEntry{ID: old.CashflowID}}}
	case !oldWanted || !hadCashflow:
		// Create covers both a genuinely new mapping and the defensive
		// repair of a mirror entry that went missing.
		entry.CreatedAt = now
		return []CashflowOp{{Kind: CashflowCreate, Entry: entry}}
	default:
		return []CashflowOp{{Kind: CashflowUpdate, Entry: entry}}
	}
}

// BuildReceiptDelete reverses a transaction completely: the chain reflows
// without it, the counters give back its contribution and the mirror entry
// goes away. Create-then-delete leaves every aggregate bit-identical.
func BuildReceiptDelete(account domain.Account, chain []domain.Receipt, target domain.Receipt) WriteSet {
	next := make([]domain.Receipt, 0, len(chain))
	for _, r := range chain {
		if r.ID == target.ID {
			continue
		}
		next = append(next, r)
	}
	reflowed, closing := Reflow(account, next)

	ws := WriteSet{
		Receipts:       ChangedSnapshots(chain, reflowed),
		DeleteReceipts: []string{target.ID},
		Summary:        SummaryContribution(account.Type, target.Type, target.Amount).Neg(),
	}
	if account.Type != domain.AccountStaff {
		ws.Balance = &BalanceWrite{AccountID: account.ID, NewBalance: closing}
	}
	if target.CashflowID != "" {
		ws.Cashflows = append(ws.Cashflows, CashflowOp{
			Kind:  CashflowDelete,
			Entry: domain.CashflowEntry{ID: target.CashflowID},
		})
	}
	return ws
}

// BuildAccountDelete cascades: every receipt, every mirror entry and the
// account document go, and the counters give back the account's entire
// contribution.
func BuildAccountDelete(account domain.Account, chain []domain.Receipt) WriteSet {
	ws := WriteSet{DeleteAccount: account.ID}
	total := SummaryDelta{}
	for _, r := range chain {
		ws.DeleteReceipts = append(ws.DeleteReceipts, r.ID)
		total = total.Add(SummaryContribution(account.Type, r.Type, r.Amount))
		if r.CashflowID != "" {
			ws.Cashflows = append(ws.Cashflows, CashflowOp{
				Kind:  CashflowDelete,
				Entry: domain.CashflowEntry{ID: r.CashflowID},
			})
		}
	}
	ws.Summary = total.Neg()
	return ws
}

// BuildInvoiceCreate produces the atomic write for one invoice: the stock
// level after the signed quantity delta (floor and capacity guarded), the
// invoice row and its mirrored cash entry.
func BuildInvoiceCreate(inv domain.Invoice, target StockTarget, cashflowID string, now time.Time) (WriteSet, error) {
	newStock, err := ApplyStockDelta(target, QtyDelta(inv.Kind, inv.Quantity))
	if err != nil {
		return WriteSet{}, err
	}

	inv.Amount = inv.Quantity.Mul(inv.UnitPrice)
	inv.RemainingStockAfter = newStock
	inv.CashflowID = cashflowID

	return WriteSet{
		Invoices: []domain.Invoice{inv},
		Stock:    []StockWrite{{Kind: target.Kind, ID: target.ID, NewStock: newStock}},
		Cashflows: []CashflowOp{{
			Kind: CashflowCreate,
			Entry: domain.CashflowEntry{
				ID:        cashflowID,
				Amount:    inv.Amount,
				Type:      InvoiceCashflow(inv.Kind),
				Category:  string(inv.Kind),
				InvoiceID: inv.ID,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}},
	}, nil
}

// BuildInvoiceUpdate reverses the old quantity's stock effect, applies the
// new one (both guarded independently), and updates the mirror entry in
// place, re-creating it if the prior record is missing.
func BuildInvoiceUpdate(old domain.Invoice, updated domain.Invoice, target StockTarget, hadCashflow bool, cashflowID string, now time.Time) (WriteSet, error) {
	reversed, err := ApplyStockDelta(target, QtyDelta(old.Kind, old.Quantity).Neg())
	if err != nil {
		return WriteSet{}, err
	}
	target.Current = reversed
	newStock, err := ApplyStockDelta(target, QtyDelta(updated.Kind, updated.Quantity))
	if err != nil {
		return WriteSet{}, err
	}

	updated.Amount = updated.Quantity.Mul(updated.UnitPrice)
	updated.RemainingStockAfter = newStock
	updated.CashflowID = old.CashflowID
	if !hadCashflow {
		updated.CashflowID = cashflowID
	}

	entry := domain.CashflowEntry{
		ID:        updated.CashflowID,
		Amount:    updated.Amount,
		Type:      InvoiceCashflow(updated.Kind),
		Category:  string(updated.Kind),
		InvoiceID: updated.ID,
		UpdatedAt: now,
	}
	op := CashflowOp{Kind: CashflowUpdate, Entry: entry}
	if !hadCashflow {
		entry.CreatedAt = now
		op = CashflowOp{Kind: CashflowCreate, Entry: entry}
	}

	return WriteSet{
		Invoices:  []domain.Invoice{updated},
		Stock:     []StockWrite{{Kind: target.Kind, ID: target.ID, NewStock: newStock}},
		Cashflows: []CashflowOp{op},
	}, nil
}

// BuildInvoiceDelete reverses the invoice's stock effect and removes the
// invoice and its mirror entry.
func BuildInvoiceDelete(inv domain.Invoice, target StockTarget) (WriteSet, error) {
	newStock, err := ApplyStockDelta(target, QtyDelta(inv.Kind, inv.Quantity).Neg())
	if err != nil {
		return WriteSet{}, err
	}

	ws := WriteSet{
		DeleteInvoices: []string{inv.ID},
		Stock:          []StockWrite{{Kind: target.Kind, ID: target.ID, NewStock: newStock}},
	}
	if inv.CashflowID != "" {
		ws.Cashflows = append(ws.Cashflows, CashflowOp{
			Kind:  CashflowDelete,
			Entry: domain.CashflowEntry{ID: inv.CashflowID},
		})
	}
	return ws, nil
}
