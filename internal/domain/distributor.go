package domain

import "time"

type BinaryLeg string

const (
	LegLeft  BinaryLeg = "left"
	LegRight BinaryLeg = "right"
)

type DistributorStatus string

const (
	StatusActive    DistributorStatus = "active"
	StatusInactive  DistributorStatus = "inactive"
	StatusCancelled DistributorStatus = "cancelled"
)

// Rank is an index into the plan's ordered rank table. 0 means unranked.
type Rank int

type Distributor struct {
	ID             string
	SponsorID      *string
	BinaryParentID *string
	BinaryLeg      *BinaryLeg
	EnrolledAt     time.Time
	Rank           Rank
	HighestRank    Rank
	Status         DistributorStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *Distributor) IsRoot() bool {
	return d.SponsorID == nil
}

type TreeRepository interface {
	CreateDistributor(d *Distributor) error
	// CreatePlaced inserts the distributor and its binary placement in one
	// transaction. A rejected placement leaves no row behind.
	CreatePlaced(d *Distributor, parentID string, leg BinaryLeg) error
	GetDistributor(id string) (*Distributor, error)
	// PlaceBinary updates both pointers of the parent-child relation in one
	// transaction. Fails with ErrSlotOccupied or ErrCycleDetected.
	PlaceBinary(newID, parentID string, leg BinaryLeg) error
	GetBinaryChildren(id string) (left, right *Distributor, err error)
	// GetBinaryAncestors returns the chain from the direct binary parent up to
	// the root. Fails with ErrTreeInconsistency on a detected cycle.
	GetBinaryAncestors(id string) ([]*Distributor, error)
	// GetUnilevelAncestors walks the sponsor chain up to maxDepth levels.
	GetUnilevelAncestors(id string, maxDepth int) ([]*Distributor, error)
	GetUnilevelDescendantsAtDepth(id string, depth int) ([]*Distributor, error)
	// LoadAll returns every distributor for arena-style in-memory traversal.
	LoadAll() ([]*Distributor, error)
	UpdateRanks(id string, rank, highest Rank) error
}
