package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EligibilitySnapshot is computed once per closed period. Recomputing it for
// the same inputs must produce identical values, so it is a pure function of
// the tree and the volume ledger as of the period.
type EligibilitySnapshot struct {
	DistributorID   string
	PeriodID        string
	IsActive        bool
	Rank            Rank
	PV              decimal.Decimal
	TV              decimal.Decimal
	LesserLegVolume decimal.Decimal
	CreatedAt       time.Time
}

type SnapshotRepository interface {
	SaveSnapshots(snapshots []*EligibilitySnapshot) error
	GetSnapshot(distributorID, periodID string) (*EligibilitySnapshot, error)
	GetSnapshotsByPeriod(periodID string) ([]*EligibilitySnapshot, error)
}
