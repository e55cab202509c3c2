package service

import (
	"context"
	"fmt"
	"time"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/xid"
)

// OpenShift starts a new operating window. The store rejects a second
// active shift.
func (s *Service) OpenShift(ctx context.Context) (domain.Shift, error) {
	actor, _ := ActorFromContext(ctx)
	shift := domain.Shift{
		ID:        xid.New("shf"),
		StartTime: time.Now().UTC(),
		Status:    domain.ShiftStatusOpen,
		OpenedBy:  actor.Username,
	}

	saved, err := s.repo.CreateShift(ctx, shift)
	if err != nil {
		return domain.Shift{}, err
	}

	s.logAudit(ctx, "shift_open", "shift", saved.ID, actor.Username)
	return *saved, nil
}

func (s *Service) CloseShift(ctx context.Context) (domain.Shift, error) {
	closed, err := s.repo.CloseActiveShift(ctx, time.Now().UTC())
	if err != nil {
		return domain.Shift{}, err
	}

	s.logAudit(ctx, "shift_close", "shift", closed.ID, fmt.Sprintf("start=%s", closed.StartTime.Format(time.RFC3339)))
	return *closed, nil
}

func (s *Service) GetActiveShift(ctx context.Context) (domain.Shift, error) {
	shift, err := s.repo.GetActiveShift(ctx)
	if err != nil {
		return domain.Shift{}, err
	}
	return *shift, nil
}

func (s *Service) ListShifts(ctx context.Context, limit int) ([]domain.Shift, error) {
	return s.repo.ListShifts(ctx, limit)
}
