package domain

import "errors"

// Structural errors: fatal to the attempted operation, never auto-corrected.
var (
	ErrSlotOccupied      = errors.New("binary slot already occupied")
	ErrCycleDetected     = errors.New("placement would create a cycle")
	ErrTreeInconsistency = errors.New("tree data is inconsistent")
)

// Validation errors: surfaced directly to the caller.
var (
	ErrBelowMinimum        = errors.New("requested amount below payout minimum")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyReversed     = errors.New("order already reversed")
	ErrDuplicateOrder      = errors.New("order already recorded")
	ErrDistributorNotFound = errors.New("distributor not found")
	ErrPayoutNotFound      = errors.New("payout request not found")
	ErrPlanNotFound        = errors.New("plan version not found")
	ErrPeriodNotFound      = errors.New("period not found")
)

// Concurrency errors: caller retries with fresh state.
var (
	ErrInvalidTransition = errors.New("invalid payout status transition")
	ErrRunInProgress     = errors.New("calculation run already in progress for period")
	ErrPeriodNotClosed   = errors.New("period is not closed for calculation")
	ErrPeriodOverlap     = errors.New("period window overlaps an existing period")
)
