// Package ledger holds the pure business rules of the station ledger:
// flow resolution, balance arithmetic, running-balance reflow, shift
// resolution and stock adjustment. Nothing in this package performs I/O;
// every mutating operation is expressed as a WriteSet that the store
// commits atomically.
package ledger

import (
	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
)

// ResolveCashflow maps (accountType, transactionType) to the direction of
// the station's cash position. The mapping is intentionally independent of
// the balance direction: a customer odhar is a credit sale, so the account
// balance goes down while the nominal cash direction is still cash-in.
// Unknown pairs resolve to no cashflow entry at all.
func ResolveCashflow(at domain.AccountType, tt domain.TransactionType) (domain.CashflowType, bool) {
	switch at {
	case domain.AccountCustomer:
		switch tt {
		case domain.TxWasooli, domain.TxOdhar:
			return domain.CashflowIn, true
		}
	case domain.AccountSupplier:
		switch tt {
		case domain.TxWasooli, domain.TxOdhar:
			return domain.CashflowOut, true
		}
	case domain.AccountBank:
		switch tt {
		case domain.TxCashIn:
			// Money leaves the till into the bank.
			return domain.CashflowOut, true
		case domain.TxCashOut:
			return domain.CashflowIn, true
		}
	case domain.AccountStaff:
		if tt == domain.TxPay {
			return domain.CashflowOut, true
		}
	case domain.AccountExpenses:
		if tt == domain.TxExpense {
			return domain.CashflowOut, true
		}
	}
	return "", false
}

// BalanceDelta returns the signed effect of a transaction on the account's
// running balance. Positive means the balance grows. The sign answers "who
// owes whom", not where the cash went.
func BalanceDelta(at domain.AccountType, tt domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch at {
	case domain.AccountCustomer:
		switch tt {
		case domain.TxWasooli:
			return amount
		case domain.TxOdhar:
			return amount.Neg()
		}
	case domain.AccountSupplier:
		switch tt {
		case domain.TxWasooli:
			return amount.Neg()
		case domain.TxOdhar:
			return amount
		}
	case domain.AccountBank:
		switch tt {
		case domain.TxCashIn:
			return amount
		case domain.TxCashOut:
			return amount.Neg()
		}
	case domain.AccountStaff:
		switch tt {
		case domain.TxPay, domain.TxDeduction:
			// Both reduce the amount owed to the staff member.
			return amount.Neg()
		}
	case domain.AccountExpenses:
		if tt == domain.TxExpense {
			// Expense accounts only accumulate; there is no subtraction path.
			return amount
		}
	}
	return decimal.Zero
}

// ValidTransaction reports whether the transaction type is accepted for the
// account type at the API boundary. The resolver itself stays permissive
// (unknown pairs are a no-op); this is the stricter service-level gate.
func ValidTransaction(at domain.AccountType, tt domain.TransactionType) bool {
	switch at {
	case domain.AccountCustomer, domain.AccountSupplier:
		return tt == domain.TxWasooli || tt == domain.TxOdhar
	case domain.AccountBank:
		return tt == domain.TxCashIn || tt == domain.TxCashOut
	case domain.AccountStaff:
		return tt == domain.TxPay || tt == domain.TxDeduction
	case domain.AccountExpenses:
		return tt == domain.TxExpense
	}
	return false
}

// SummaryDelta is the signed increment applied to the singleton summary
// documents inside the same atomic write as the owning mutation.
type SummaryDelta struct {
	Wasooli     decimal.Decimal
	Odhar       decimal.Decimal
	Salaries    decimal.Decimal
	Expenses    decimal.Decimal
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

func (d SummaryDelta) Add(o SummaryDelta) SummaryDelta {
	return SummaryDelta{
		Wasooli:     d.Wasooli.Add(o.Wasooli),
		Odhar:       d.Odhar.Add(o.Odhar),
		Salaries:    d.Salaries.Add(o.Salaries),
		Expenses:    d.Expenses.Add(o.Expenses),
		Deposits:    d.Deposits.Add(o.Deposits),
		Withdrawals: d.Withdrawals.Add(o.Withdrawals),
	}
}

func (d SummaryDelta) Neg() SummaryDelta {
	return SummaryDelta{
		Wasooli:     d.Wasooli.Neg(),
		Odhar:       d.Odhar.Neg(),
		Salaries:    d.Salaries.Neg(),
		Expenses:    d.Expenses.Neg(),
		Deposits:    d.Deposits.Neg(),
		Withdrawals: d.Withdrawals.Neg(),
	}
}

func (d SummaryDelta) IsZero() bool {
	return d.Wasooli.IsZero() && d.Odhar.IsZero() && d.Salaries.IsZero() &&
		d.Expenses.IsZero() && d.Deposits.IsZero() && d.Withdrawals.IsZero()
}

// SummaryContribution selects the counter a transaction feeds and returns
// the increment for it. Counters track actual cash movement only: the
// credit entries (customer odhar, supplier odhar) produce a cashflow mirror
// entry but touch no counter. Selection follows the resolved flow:
// customer cash-in -> wasooli, supplier cash-out -> odhar, staff pay ->
// salaries, expenses -> expenses, bank deposits/withdrawals -> bank summary.
func SummaryContribution(at domain.AccountType, tt domain.TransactionType, amount decimal.Decimal) SummaryDelta {
	switch at {
	case domain.AccountCustomer:
		if tt == domain.TxWasooli {
			return SummaryDelta{Wasooli: amount}
		}
	case domain.AccountSupplier:
		if tt == domain.TxWasooli {
			return SummaryDelta{Odhar: amount}
		}
	case domain.AccountStaff:
		if tt == domain.TxPay {
			return SummaryDelta{Salaries: amount}
		}
	case domain.AccountExpenses:
		if tt == domain.TxExpense {
			return SummaryDelta{Expenses: amount}
		}
	case domain.AccountBank:
		switch tt {
		case domain.TxCashIn:
			return SummaryDelta{Deposits: amount}
		case domain.TxCashOut:
			return SummaryDelta{Withdrawals: amount}
		}
	}
	return SummaryDelta{}
}

// CashflowCategory names the reporting bucket of a receipt's mirror entry.
func CashflowCategory(at domain.AccountType, tt domain.TransactionType) string {
	switch at {
	case domain.AccountStaff:
		return "salary"
	case domain.AccountExpenses:
		return "expense"
	case domain.AccountBank:
		return "bank"
	default:
		return string(at) + "-" + string(tt)
	}
}
