package payoutdto

import "github.com/shopspring/decimal"

type CreatePayoutInput struct {
	DistributorID string
	Amount        decimal.Decimal
	Method        string
}

// ExecutorCallbackInput carries the executor's final word on a transfer.
type ExecutorCallbackInput struct {
	IdempotencyKey string
	Status         string
	TransactionRef string
}
