package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCaptured OrderStatus = "captured"
	OrderRefunded OrderStatus = "refunded"
)

// CapturedOrder is the engine's projection of an order-capture event. The
// checkout system owns the order; this row exists so volume entries stay
// replay-deterministic and reversals can find what to negate.
type CapturedOrder struct {
	ID           string
	PurchaserID  string
	Amount       decimal.Decimal
	IsFirstOrder bool
	Status       OrderStatus
	CapturedAt   time.Time
	CreatedAt    time.Time
}

// VolumeEntry is append-only. Reversals are new entries with negated amounts.
type VolumeEntry struct {
	ID            string
	DistributorID string
	// PeriodID is empty until the entry's window is closed into a period.
	PeriodID      string
	SourceOrderID string
	CV            decimal.Decimal
	PV            decimal.Decimal
	Reversal      bool
	CreatedAt     time.Time
}

type VolumeRepository interface {
	// CreateOrderWithEntries inserts the order projection and its entries
	// atomically. Fails with ErrDuplicateOrder if the order id exists.
	CreateOrderWithEntries(order *CapturedOrder, entries []*VolumeEntry) error
	GetOrder(orderID string) (*CapturedOrder, error)
	GetEntriesByOrder(orderID string) ([]*VolumeEntry, error)
	// AppendReversal appends negating entries and flips the order projection
	// to refunded in one transaction.
	AppendReversal(orderID string, entries []*VolumeEntry) error
	EntriesInWindow(from, to time.Time) ([]*VolumeEntry, error)
	OrdersInWindow(from, to time.Time) ([]*CapturedOrder, error)
	// StampPeriod tags entries captured in [from, to) with the period id.
	StampPeriod(periodID string, from, to time.Time) error
}
