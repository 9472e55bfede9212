package enrollmentdto

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
)

type EnrollInput struct {
	// DistributorID is optional; a fresh id is generated when empty.
	DistributorID string
	SponsorID     string
	// Placement hint; when PlacementParentID is empty the new distributor is
	// placed on the sponsor's first free leg.
	PlacementParentID string
	PlacementLeg      domain.BinaryLeg
	EnrolledAt        time.Time
}

type PlaceBinaryInput struct {
	DistributorID string
	ParentID      string
	Leg           domain.BinaryLeg
}
