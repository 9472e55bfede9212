package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CommissionType string

const (
	CommissionBinary         CommissionType = "binary"
	CommissionFastStart      CommissionType = "fast_start"
	CommissionFastStartBoost CommissionType = "fast_start_boost"
	CommissionRankBonus      CommissionType = "rank_bonus"
)

// UnilevelType returns the line-item type for a unilevel depth (1-based).
func UnilevelType(depth int) CommissionType {
	return CommissionType(fmt.Sprintf("unilevel_l%d", depth))
}

// CommissionLineItem is immutable. The tuple (DistributorID, PeriodID, Type,
// SourceDistributorID, SourceOrderID) is unique, which is what makes period
// reruns idempotent.
type CommissionLineItem struct {
	ID                  string
	DistributorID       string
	PeriodID            string
	Type                CommissionType
	Amount              decimal.Decimal
	SourceDistributorID string
	SourceOrderID       *string
	CreatedAt           time.Time
}

// BinaryCarryover is the unflushed lesser-of-the-match surplus carried from
// one period's binary run into the next. One row per (distributor, period,
// leg); written by the run that produced it.
type BinaryCarryover struct {
	DistributorID string
	PeriodID      string
	Leg           BinaryLeg
	Volume        decimal.Decimal
	CreatedAt     time.Time
}

type CommissionRepository interface {
	// AppendIfAbsent inserts the line item unless its uniqueness tuple already
	// exists. Returns whether a row was inserted.
	AppendIfAbsent(item *CommissionLineItem) (bool, error)
	ListByDistributor(distributorID string, page, limit int) ([]*CommissionLineItem, int64, error)
	ListByPeriod(periodID string) ([]*CommissionLineItem, error)
	SumByDistributor(distributorID string) (decimal.Decimal, error)
	// CountFastStartsInWindow counts fast-start items credited to a sponsor
	// with CreatedAt in (from, to], across all periods.
	CountFastStartsInWindow(sponsorID string, from, to time.Time) (int64, error)
	SaveCarryovers(carryovers []*BinaryCarryover) error
	GetCarryovers(periodID string) ([]*BinaryCarryover, error)
}

// RunStore is the write surface of a single calculation run. The postgres
// implementation binds every method to one transaction so a failed run
// commits nothing.
type RunStore interface {
	SaveSnapshots(snapshots []*EligibilitySnapshot) error
	AppendIfAbsent(item *CommissionLineItem) (bool, error)
	CountFastStartsInWindow(sponsorID string, from, to time.Time) (int64, error)
	SaveCarryovers(carryovers []*BinaryCarryover) error
	UpdateRanks(distributorID string, rank, highest Rank) error
	StampPeriod(periodID string, from, to time.Time) error
}

type RunStoreFactory interface {
	InTransaction(fn func(store RunStore) error) error
}
