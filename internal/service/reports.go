package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/message"
)

// GetSummary serves the counters from cache when warm, the store otherwise.
func (s *Service) GetSummary(ctx context.Context) (domain.SummaryResponse, error) {
	if cached, hit, err := s.summaries.Get(ctx, summaryCacheKey); err != nil {
		s.log.WithError(err).Warn("summary cache read failed")
	} else if hit {
		return *cached, nil
	}

	summary, err := s.repo.GetSummaries(ctx)
	if err != nil {
		return domain.SummaryResponse{}, err
	}

	if err := s.summaries.Set(ctx, summaryCacheKey, &summary, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("summary cache write failed")
	}
	return summary, nil
}

// AuditSummary folds the full receipt history and reports drift against the
// stored counters without touching them.
func (s *Service) AuditSummary(ctx context.Context) (domain.SummaryAudit, error) {
	stored, err := s.repo.GetSummaries(ctx)
	if err != nil {
		return domain.SummaryAudit{}, err
	}

	accounts, err := s.repo.ListAccounts(ctx, "")
	if err != nil {
		return domain.SummaryAudit{}, err
	}
	receipts, err := s.repo.ListReceipts(ctx, time.Time{}, time.Time{})
	if err != nil {
		return domain.SummaryAudit{}, err
	}

	global, banks := ledger.FoldSummaries(accounts, receipts)
	recomputed := domain.SummaryResponse{Global: global, Banks: banks}

	audit := domain.SummaryAudit{
		Stored:     stored,
		Recomputed: recomputed,
		InSync:     summariesEqual(stored, recomputed),
		CheckedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if !audit.InSync {
		s.log.WithFields(map[string]interface{}{
			"stored":     fmt.Sprintf("%+v", stored),
			"recomputed": fmt.Sprintf("%+v", recomputed),
		}).Warn("summary counters drifted from receipt fold")
	}
	return audit, nil
}

func (s *Service) ListCashflow(ctx context.Context, from, to time.Time) ([]domain.CashflowEntry, error) {
	return s.repo.ListCashflow(ctx, from, to)
}

// DailyCashflow buckets the mirror ledger per calendar day (UTC).
func (s *Service) DailyCashflow(ctx context.Context, from, to time.Time) ([]domain.DailyCashflow, error) {
	entries, err := s.repo.ListCashflow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	buckets := map[string]*domain.DailyCashflow{}
	for _, e := range entries {
		day := e.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := buckets[day]
		if !ok {
			bucket = &domain.DailyCashflow{Date: day}
			buckets[day] = bucket
		}
		switch e.Type {
		case domain.CashflowIn:
			bucket.CashIn = bucket.CashIn.Add(e.Amount)
		case domain.CashflowOut:
			bucket.CashOut = bucket.CashOut.Add(e.Amount)
		}
		bucket.EntryCnt++
	}

	days := make([]domain.DailyCashflow, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.Net = bucket.CashIn.Sub(bucket.CashOut)
		days = append(days, *bucket)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, from, to time.Time, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// ReminderLinks builds wa.me and sms: deep links asking a customer to clear
// the outstanding balance.
func (s *Service) ReminderLinks(ctx context.Context, accountID string) (domain.ReminderLinks, error) {
	statement, err := s.Statement(ctx, accountID)
	if err != nil {
		return domain.ReminderLinks{}, err
	}

	owed := statement.Remaining
	if statement.Account.Type == domain.AccountStaff {
		owed = statement.AmountOwed
	}
	if owed.IsNegative() {
		owed = owed.Neg()
	}

	text := message.ReminderText(statement.Account.Name, owed)
	return domain.ReminderLinks{
		AccountID: accountID,
		WhatsApp:  message.WhatsAppLink(statement.Account.PhoneNumber, text),
		SMS:       message.SMSLink(statement.Account.PhoneNumber, text),
		Text:      text,
	}, nil
}

// ReceiptShareLinks builds the same deep links for a single recorded
// transaction, so the operator can forward a receipt confirmation.
func (s *Service) ReceiptShareLinks(ctx context.Context, receiptID string) (domain.ReminderLinks, error) {
	receipt, err := s.repo.GetReceipt(ctx, receiptID)
	if err != nil {
		return domain.ReminderLinks{}, err
	}
	account, err := s.repo.GetAccount(ctx, receipt.AccountID)
	if err != nil {
		return domain.ReminderLinks{}, err
	}

	text := message.ReceiptText(account.Name, string(receipt.Type), receipt.Amount, receipt.BalanceAfter)
	return domain.ReminderLinks{
		AccountID: account.ID,
		WhatsApp:  message.WhatsAppLink(account.PhoneNumber, text),
		SMS:       message.SMSLink(account.PhoneNumber, text),
		Text:      text,
	}, nil
}

func summariesEqual(a, b domain.SummaryResponse) bool {
	eq := func(x, y decimal.Decimal) bool { return x.Equal(y) }
	return eq(a.Global.TotalWasooli, b.Global.TotalWasooli) &&
		eq(a.Global.TotalOdhar, b.Global.TotalOdhar) &&
		eq(a.Global.TotalSalaries, b.Global.TotalSalaries) &&
		eq(a.Global.TotalExpenses, b.Global.TotalExpenses) &&
		eq(a.Banks.TotalDeposits, b.Banks.TotalDeposits) &&
		eq(a.Banks.TotalWithdrawals, b.Banks.TotalWithdrawals)
}
