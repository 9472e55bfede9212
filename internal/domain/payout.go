package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutApproved   PayoutStatus = "APPROVED"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
	PayoutCancelled  PayoutStatus = "CANCELLED"
)

var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutPending:    {PayoutApproved, PayoutCancelled},
	PayoutApproved:   {PayoutProcessing, PayoutCancelled},
	PayoutProcessing: {PayoutCompleted, PayoutFailed},
}

// CanTransitionTo reports whether next is a legal successor state.
func (s PayoutStatus) CanTransitionTo(next PayoutStatus) bool {
	for _, allowed := range payoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the request can never change state again.
func (s PayoutStatus) Terminal() bool {
	return len(payoutTransitions[s]) == 0
}

// CountsAgainstBalance reports whether the request still reserves balance.
// Cancelled and failed requests release their amount by exclusion here.
func (s PayoutStatus) CountsAgainstBalance() bool {
	return s != PayoutCancelled && s != PayoutFailed
}

// PayoutRequest fees are computed once at creation and frozen; a later fee
// schedule change never alters an in-flight request.
type PayoutRequest struct {
	ID              string
	DistributorID   string
	RequestedAmount decimal.Decimal
	FeeAmount       decimal.Decimal
	NetAmount       decimal.Decimal
	Method          string
	Status          PayoutStatus
	IdempotencyKey  string
	TransactionRef  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PayoutRepository interface {
	// CreateWithBalanceCheck inserts the request only if the distributor's
	// available balance, recomputed inside the same transaction, covers it.
	CreateWithBalanceCheck(req *PayoutRequest) error
	GetPayout(id string) (*PayoutRequest, error)
	GetByIdempotencyKey(key string) (*PayoutRequest, error)
	// UpdateStatus performs a guarded transition: the row is updated only if
	// its current status equals from. ErrInvalidTransition otherwise.
	UpdateStatus(id string, from, to PayoutStatus, transactionRef *string) error
	ListByStatus(status PayoutStatus) ([]*PayoutRequest, error)
	// ListStaleProcessing returns PROCESSING requests untouched since cutoff,
	// for the reconciliation poller.
	ListStaleProcessing(cutoff time.Time) ([]*PayoutRequest, error)
	SumReservedByDistributor(distributorID string) (decimal.Decimal, error)
}
