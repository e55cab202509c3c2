package ledger

import "errors"

var (
	// ErrInsufficientStock trips when a stock adjustment would take the
	// tank or product below zero. The adjustment is rejected whole.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCapacityExceeded trips when a tank fill would exceed its capacity.
	ErrCapacityExceeded = errors.New("tank capacity exceeded")

	// ErrNoShiftFound means no operating shift contains the transaction
	// timestamp. The enclosing operation must abort with no write.
	ErrNoShiftFound = errors.New("no shift found for timestamp")

	// ErrCreditLimitExceeded rejects a credit sale that would push a
	// customer past their configured limit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
)
