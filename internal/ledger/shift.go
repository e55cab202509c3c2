package ledger

import (
	"sort"
	"time"

	"fuelbook/backend/internal/domain"
)

// ResolveShift finds the operating shift whose interval contains the
// transaction timestamp. Shifts are scanned newest-first; the currently
// active shift (no end time) accepts any timestamp at or after its start,
// a closed shift accepts start <= t < end. Every module resolves shifts
// through this one function. Returns ErrNoShiftFound when no interval
// contains the timestamp.
func ResolveShift(shifts []domain.Shift, at time.Time) (*domain.Shift, error) {
	ordered := make([]domain.Shift, len(shifts))
	copy(ordered, shifts)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartTime.After(ordered[j].StartTime)
	})

	for i := range ordered {
		s := ordered[i]
		if at.Before(s.StartTime) {
			continue
		}
		if s.EndTime == nil {
			return &s, nil
		}
		if at.Before(*s.EndTime) {
			return &s, nil
		}
	}
	return nil, ErrNoShiftFound
}
