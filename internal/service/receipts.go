package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

// CreateReceipt appends one transaction to an account's ledger. The engine
// computes the whole write set (reflowed snapshots, balance, cashflow
// mirror, summary counters) and the store commits it atomically. The
// receipt is attributed to whichever shift covers its date.
func (s *Service) CreateReceipt(ctx context.Context, accountID string, req domain.ReceiptCreateRequest) (domain.Receipt, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Receipt{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Receipt{}, fmt.Errorf("amount must be positive: %w", store.ErrInvalid)
	}

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return domain.Receipt{}, err
	}
	if !ledger.ValidTransaction(account.Type, req.Type) {
		return domain.Receipt{}, fmt.Errorf("transaction %s not valid for %s account: %w", req.Type, account.Type, store.ErrInvalid)
	}

	now := time.Now().UTC()
	date, err := parseDate(req.Date, now)
	if err != nil {
		return domain.Receipt{}, err
	}

	shiftID, err := s.resolveShift(ctx, date)
	if err != nil {
		return domain.Receipt{}, err
	}

	chain, err := s.repo.ListReceiptsByAccount(ctx, accountID)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:        xid.New("rcp"),
		AccountID: accountID,
		Type:      req.Type,
		Amount:    req.Amount,
		Date:      date,
		ShiftID:   shiftID,
		Note:      req.Note,
		CreatedAt: now,
	}

	ws, err := ledger.BuildReceiptCreate(*account, chain, receipt, xid.New("cfl"), now)
	if err != nil {
		return domain.Receipt{}, err
	}
	if err := s.repo.Apply(ctx, ws); err != nil {
		return domain.Receipt{}, err
	}

	s.invalidateSummary(ctx)
	s.logAudit(ctx, "receipt_create", "receipt", receipt.ID, fmt.Sprintf("account=%s,type=%s,amount=%s", accountID, receipt.Type, receipt.Amount))

	created, err := s.repo.GetReceipt(ctx, receipt.ID)
	if err != nil {
		return domain.Receipt{}, err
	}
	return *created, nil
}

// UpdateReceipt edits a transaction in place. A changed date re-attributes
// the shift and can reorder the chain, so everything downstream reflows.
func (s *Service) UpdateReceipt(ctx context.Context, id string, req domain.ReceiptUpdateRequest) (domain.Receipt, error) {
	old, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}
	account, err := s.repo.GetAccount(ctx, old.AccountID)
	if err != nil {
		return domain.Receipt{}, err
	}

	updated := *old
	if req.Type != nil {
		if !ledger.ValidTransaction(account.Type, *req.Type) {
			return domain.Receipt{}, fmt.Errorf("transaction %s not valid for %s account: %w", *req.Type, account.Type, store.ErrInvalid)
		}
		updated.Type = *req.Type
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return domain.Receipt{}, fmt.Errorf("amount must be positive: %w", store.ErrInvalid)
		}
		updated.Amount = *req.Amount
	}
	if req.Note != nil {
		updated.Note = *req.Note
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, updated.Date)
		if err != nil {
			return domain.Receipt{}, err
		}
		updated.Date = date
		shiftID, err := s.resolveShift(ctx, date)
		if err != nil {
			return domain.Receipt{}, err
		}
		updated.ShiftID = shiftID
	}

	hadCashflow := false
	if old.CashflowID != "" {
		_, err := s.repo.GetCashflowEntry(ctx, old.CashflowID)
		switch {
		case err == nil:
			hadCashflow = true
		case errors.Is(err, store.ErrNotFound):
			s.log.WithField("cashflow_id", old.CashflowID).Warn("cashflow mirror entry missing, re-creating")
		default:
			return domain.Receipt{}, err
		}
	}

	chain, err := s.repo.ListReceiptsByAccount(ctx, old.AccountID)
	if err != nil {
		return domain.Receipt{}, err
	}

	now := time.Now().UTC()
	ws, err := ledger.BuildReceiptUpdate(*account, chain, *old, updated, hadCashflow, xid.New("cfl"), now)
	if err != nil {
		return domain.Receipt{}, err
	}
	if err := s.repo.Apply(ctx, ws); err != nil {
		return domain.Receipt{}, err
	}

	s.invalidateSummary(ctx)
	s.logAudit(ctx, "receipt_update", "receipt", id, fmt.Sprintf("account=%s,type=%s,amount=%s", old.AccountID, updated.Type, updated.Amount))

	saved, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}
	return *saved, nil
}

// DeleteReceipt reverses a transaction completely; aggregates end up as if
// it had never existed.
func (s *Service) DeleteReceipt(ctx context.Context, id string) error {
	target, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return err
	}
	account, err := s.repo.GetAccount(ctx, target.AccountID)
	if err != nil {
		return err
	}
	chain, err := s.repo.ListReceiptsByAccount(ctx, target.AccountID)
	if err != nil {
		return err
	}

	ws := ledger.BuildReceiptDelete(*account, chain, *target)
	if err := s.repo.Apply(ctx, ws); err != nil {
		return err
	}

	s.invalidateSummary(ctx)
	s.logAudit(ctx, "receipt_delete", "receipt", id, fmt.Sprintf("account=%s,type=%s,amount=%s", target.AccountID, target.Type, target.Amount))
	return nil
}

func (s *Service) ListReceipts(ctx context.Context, accountID string) ([]domain.Receipt, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListReceiptsByAccount(ctx, accountID)
}

// resolveShift attributes a transaction date to the shift whose window
// covers it, preferring the most recently started one.
func (s *Service) resolveShift(ctx context.Context, at time.Time) (string, error) {
	shifts, err := s.repo.ListShifts(ctx, 0)
	if err != nil {
		return "", err
	}
	shift, err := ledger.ResolveShift(shifts, at)
	if err != nil {
		return "", err
	}
	return shift.ID, nil
}
