package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

func (s *Service) CreateAccount(ctx context.Context, req domain.AccountCreateRequest) (domain.Account, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Account{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Account{}, fmt.Errorf("name required: %w", store.ErrInvalid)
	}
	if req.InitialBalance.IsNegative() && req.Type != domain.AccountCustomer && req.Type != domain.AccountSupplier {
		return domain.Account{}, fmt.Errorf("negative opening balance: %w", store.ErrInvalid)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:             xid.New("acc"),
		Type:           req.Type,
		Name:           req.Name,
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		Salary:         req.Salary,
		CreditLimit:    req.CreditLimit,
		Status:         domain.AccountStatusActive,
		CreatedAt:      now,
	}

	if req.Type == domain.AccountStaff {
		joined := now
		if req.JoinedAt != "" {
			parsed, err := parseDate(req.JoinedAt, now)
			if err != nil {
				return domain.Account{}, err
			}
			joined = parsed
		}
		account.JoinedAt = joined
		// The staff balance is always derived, never stored.
		account.InitialBalance = decimal.Zero
		account.CurrentBalance = decimal.Zero
	}

	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return domain.Account{}, err
	}

	s.logAudit(ctx, "account_create", "account", created.ID, fmt.Sprintf("type=%s,name=%s", created.Type, created.Name))
	return *created, nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if account.Type == domain.AccountStaff {
		s.deriveStaffBalance(ctx, account)
	}
	return *account, nil
}

func (s *Service) ListAccounts(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx, accountType)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Type == domain.AccountStaff {
			s.deriveStaffBalance(ctx, &accounts[i])
		}
	}
	return accounts, nil
}

func (s *Service) UpdateAccount(ctx context.Context, id string, req domain.AccountUpdateRequest) (domain.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Account{}, fmt.Errorf("name required: %w", store.ErrInvalid)
		}
		account.Name = name
	}
	if req.PhoneNumber != nil {
		account.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Salary != nil {
		if account.Type != domain.AccountStaff {
			return domain.Account{}, fmt.Errorf("salary only applies to staff: %w", store.ErrInvalid)
		}
		account.Salary = *req.Salary
	}
	if req.CreditLimit != nil {
		if account.Type != domain.AccountCustomer {
			return domain.Account{}, fmt.Errorf("credit limit only applies to customers: %w", store.ErrInvalid)
		}
		account.CreditLimit = *req.CreditLimit
	}
	if req.Status != nil {
		if *req.Status != domain.AccountStatusActive && *req.Status != domain.AccountStatusClosed {
			return domain.Account{}, fmt.Errorf("unknown status %q: %w", *req.Status, store.ErrInvalid)
		}
		account.Status = *req.Status
	}

	updated, err := s.repo.UpdateAccount(ctx, *account)
	if err != nil {
		return domain.Account{}, err
	}

	s.logAudit(ctx, "account_update", "account", updated.ID, fmt.Sprintf("name=%s,status=%s", updated.Name, updated.Status))
	return *updated, nil
}

// DeleteAccount cascades: the account's full receipt chain, every mirrored
// cashflow entry and the account document go in one commit, and the summary
// counters give back the account's contribution.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	chain, err := s.repo.ListReceiptsByAccount(ctx, id)
	if err != nil {
		return err
	}

	ws := ledger.BuildAccountDelete(*account, chain)
	if err := s.repo.Apply(ctx, ws); err != nil {
		return err
	}

	s.invalidateSummary(ctx)
	s.logAudit(ctx, "account_delete", "account", id, fmt.Sprintf("receipts=%d", len(chain)))
	return nil
}

// Statement renders the account ledger: the chain with running balances
// plus the fold totals, and for staff the derived amount owed.
func (s *Service) Statement(ctx context.Context, id string) (domain.AccountStatement, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return domain.AccountStatement{}, err
	}
	chain, err := s.repo.ListReceiptsByAccount(ctx, id)
	if err != nil {
		return domain.AccountStatement{}, err
	}

	totalOdhar, totalPaid, remaining := ledger.StatementTotals(*account, chain)
	statement := domain.AccountStatement{
		Account:    *account,
		Receipts:   chain,
		TotalOdhar: totalOdhar,
		TotalPaid:  totalPaid,
		Remaining:  remaining,
	}
	if account.Type == domain.AccountStaff {
		statement.AmountOwed = ledger.StaffOwed(account.Salary, account.JoinedAt, time.Now().UTC(), chain)
		statement.Account.CurrentBalance = statement.AmountOwed
	}
	return statement, nil
}

func (s *Service) deriveStaffBalance(ctx context.Context, account *domain.Account) {
	chain, err := s.repo.ListReceiptsByAccount(ctx, account.ID)
	if err != nil {
		s.log.WithError(err).WithField("account_id", account.ID).Warn("staff balance derivation failed")
		return
	}
	account.CurrentBalance = ledger.StaffOwed(account.Salary, account.JoinedAt, time.Now().UTC(), chain)
}
