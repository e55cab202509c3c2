package ledger

import (
	"fuelbook/backend/internal/domain"
)

// FoldSummaries recomputes the singleton counters from scratch as a pure
// fold over every receipt. The counters themselves are maintained
// incrementally inside write sets; this fold exists so drift is detectable
// instead of silent.
func FoldSummaries(accounts []domain.Account, receipts []domain.Receipt) (domain.GlobalSummary, domain.BankSummary) {
	typeByAccount := make(map[string]domain.AccountType, len(accounts))
	for _, a := range accounts {
		typeByAccount[a.ID] = a.Type
	}

	total := SummaryDelta{}
	for _, r := range receipts {
		at, ok := typeByAccount[r.AccountID]
		if !ok {
			continue
		}
		total = total.Add(SummaryContribution(at, r.Type, r.Amount))
	}

	global := domain.GlobalSummary{
		TotalWasooli:  total.Wasooli,
		TotalOdhar:    total.Odhar,
		TotalSalaries: total.Salaries,
		TotalExpenses: total.Expenses,
	}
	banks := domain.BankSummary{
		TotalDeposits:    total.Deposits,
		TotalWithdrawals: total.Withdrawals,
	}
	return global, banks
}
