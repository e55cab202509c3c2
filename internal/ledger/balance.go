package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
)

// SortChain orders receipts chronologically by date, ties broken by
// creation time, then by ID for full determinism.
func SortChain(receipts []domain.Receipt) {
	sort.SliceStable(receipts, func(i, j int) bool {
		a, b := receipts[i], receipts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Reflow recomputes every BalanceAfter snapshot in the account's receipt
// chain from the opening balance and returns the chain in chronological
// order together with the closing balance. Running it on every mutation is
// O(n) over the account's receipts, which is what keeps historical
// statements consistent under out-of-order edits and deletes.
func Reflow(account domain.Account, receipts []domain.Receipt) ([]domain.Receipt, decimal.Decimal) {
	chain := make([]domain.Receipt, len(receipts))
	copy(chain, receipts)
	SortChain(chain)

	balance := account.InitialBalance
	for i := range chain {
		balance = balance.Add(BalanceDelta(account.Type, chain[i].Type, chain[i].Amount))
		chain[i].BalanceAfter = balance
	}
	return chain, balance
}

// ChangedSnapshots returns the receipts from the reflowed chain whose
// BalanceAfter differs from the prior snapshot, so the write set only
// carries rows that actually moved.
func ChangedSnapshots(before []domain.Receipt, reflowed []domain.Receipt) []domain.Receipt {
	prior := make(map[string]decimal.Decimal, len(before))
	for _, r := range before {
		prior[r.ID] = r.BalanceAfter
	}

	changed := make([]domain.Receipt, 0, len(reflowed))
	for _, r := range reflowed {
		old, seen := prior[r.ID]
		if !seen || !old.Equal(r.BalanceAfter) {
			changed = append(changed, r)
		}
	}
	return changed
}

var daysPerMonth = decimal.NewFromInt(30)

// StaffOwed derives what the station currently owes a staff member.
// Staff balances are never stored: owed = elapsed days at the daily rate
// (monthly salary / 30) minus cumulative payments and deductions.
func StaffOwed(salary decimal.Decimal, joinedAt time.Time, now time.Time, receipts []domain.Receipt) decimal.Decimal {
	if joinedAt.IsZero() || now.Before(joinedAt) {
		return decimal.Zero
	}
	days := int64(now.Sub(joinedAt) / (24 * time.Hour))

	paid := decimal.Zero
	for _, r := range receipts {
		switch r.Type {
		case domain.TxPay, domain.TxDeduction:
			paid = paid.Add(r.Amount)
		}
	}

	accrued := salary.Mul(decimal.NewFromInt(days)).Div(daysPerMonth)
	return accrued.Sub(paid).Round(2)
}

// CreditAvailable checks a projected customer balance against the credit
// limit. A zero limit means unlimited. Balances are negative while the
// customer owes the station, so the check is against -limit.
func CreditAvailable(limit decimal.Decimal, projected decimal.Decimal) bool {
	if limit.IsZero() {
		return true
	}
	return projected.GreaterThanOrEqual(limit.Neg())
}

// StatementTotals folds a receipt chain into the three-box summary used by
// the exported reports: credit extended, amount recovered/paid, and the
// closing balance.
func StatementTotals(account domain.Account, chain []domain.Receipt) (totalOdhar, totalPaid, remaining decimal.Decimal) {
	totalOdhar = decimal.Zero
	totalPaid = decimal.Zero
	remaining = account.InitialBalance
	for _, r := range chain {
		switch r.Type {
		case domain.TxOdhar:
			totalOdhar = totalOdhar.Add(r.Amount)
		case domain.TxWasooli, domain.TxPay:
			totalPaid = totalPaid.Add(r.Amount)
		}
		remaining = remaining.Add(BalanceDelta(account.Type, r.Type, r.Amount))
	}
	return totalOdhar, totalPaid, remaining
}
