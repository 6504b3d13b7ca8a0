package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrWalletNotFound    = errors.New("wallet not found")
	ErrJobNotFound       = errors.New("job not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrProposalNotFound  = errors.New("proposal not found")

	ErrProposalExists = errors.New("proposal already submitted for this job")

	ErrForbidden     = errors.New("forbidden")
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidJob marks a job definition rejected before it reaches storage,
	// e.g. duplicate milestone ordering or a budget that does not match the
	// milestone sum.
	ErrInvalidJob = errors.New("invalid job definition")

	// ErrInvalidState marks a milestone or job transition attempted from the
	// wrong status. Expected outcome under concurrent calls, not a system error.
	ErrInvalidState = errors.New("invalid state for requested transition")

	ErrInsufficientFunds = errors.New("insufficient available balance")

	// ErrInvariantViolation marks an internal consistency failure, e.g. a
	// balance that would go negative despite earlier guards. The unit of work
	// is rolled back and the error must be logged loudly, never swallowed.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// StateError reports the current vs required status of a failed transition.
type StateError struct {
	Entity   string
	Current  string
	Required string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s must be %s. Current status: %s", e.Entity, e.Required, e.Current)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// InsufficientFundsError carries the balances needed to render a precise message.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient available balance. Available: %s, Required: %s", e.Available, e.Required)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
