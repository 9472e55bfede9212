package usecase

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nexaline/comp-service/internal/domain"
	enrollmentdto "github.com/nexaline/comp-service/internal/usecase/dto/enrollment"
)

type TreeUsecase interface {
	Enroll(input *enrollmentdto.EnrollInput) (*domain.Distributor, error)
	PlaceBinary(input *enrollmentdto.PlaceBinaryInput) error
	GetDistributor(id string) (*domain.Distributor, error)
	GetBinaryChildren(id string) (left, right *domain.Distributor, err error)
	GetBinaryAncestors(id string) ([]*domain.Distributor, error)
	GetUnilevelDescendantsAtDepth(id string, depth int) ([]*domain.Distributor, error)
}

type DefaultTreeUsecase struct {
	treeRepo domain.TreeRepository
}

func NewDefaultTreeUsecase(repo domain.TreeRepository) *DefaultTreeUsecase {
	return &DefaultTreeUsecase{treeRepo: repo}
}

// Enroll creates the distributor under its sponsor and places it in the
// binary tree. An explicit placement hint that cannot be honored fails rather
// than being silently redirected.
func (uc *DefaultTreeUsecase) Enroll(input *enrollmentdto.EnrollInput) (*domain.Distributor, error) {
	id := input.DistributorID
	if id == "" {
		id = uuid.New().String()
	}
	enrolledAt := input.EnrolledAt
	if enrolledAt.IsZero() {
		enrolledAt = time.Now()
	}

	distributor := &domain.Distributor{
		ID:         id,
		EnrolledAt: enrolledAt,
		Status:     domain.StatusActive,
	}

	if input.SponsorID != "" {
		sponsor, err := uc.treeRepo.GetDistributor(input.SponsorID)
		if err != nil {
			return nil, err
		}
		distributor.SponsorID = &sponsor.ID
	}

	if distributor.SponsorID == nil {
		// root of the tree, no binary placement
		if err := uc.treeRepo.CreateDistributor(distributor); err != nil {
			return nil, err
		}
		return distributor, nil
	}

	parentID, leg, err := uc.resolvePlacement(input, *distributor.SponsorID)
	if err != nil {
		return nil, err
	}
	if err := uc.treeRepo.CreatePlaced(distributor, parentID, leg); err != nil {
		return nil, err
	}

	slog.Info("distributor enrolled",
		"distributor_id", id,
		"sponsor_id", *distributor.SponsorID,
		"binary_parent_id", parentID,
		"leg", leg)

	placed, err := uc.treeRepo.GetDistributor(id)
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (uc *DefaultTreeUsecase) resolvePlacement(input *enrollmentdto.EnrollInput, sponsorID string) (string, domain.BinaryLeg, error) {
	if input.PlacementParentID != "" {
		leg := input.PlacementLeg
		if leg == "" {
			leg = domain.LegLeft
		}
		return input.PlacementParentID, leg, nil
	}

	left, right, err := uc.treeRepo.GetBinaryChildren(sponsorID)
	if err != nil {
		return "", "", err
	}
	if left == nil {
		return sponsorID, domain.LegLeft, nil
	}
	if right == nil {
		return sponsorID, domain.LegRight, nil
	}
	return "", "", domain.ErrSlotOccupied
}

func (uc *DefaultTreeUsecase) PlaceBinary(input *enrollmentdto.PlaceBinaryInput) error {
	return uc.treeRepo.PlaceBinary(input.DistributorID, input.ParentID, input.Leg)
}

func (uc *DefaultTreeUsecase) GetDistributor(id string) (*domain.Distributor, error) {
	return uc.treeRepo.GetDistributor(id)
}

func (uc *DefaultTreeUsecase) GetBinaryChildren(id string) (*domain.Distributor, *domain.Distributor, error) {
	return uc.treeRepo.GetBinaryChildren(id)
}

func (uc *DefaultTreeUsecase) GetBinaryAncestors(id string) ([]*domain.Distributor, error) {
	return uc.treeRepo.GetBinaryAncestors(id)
}

func (uc *DefaultTreeUsecase) GetUnilevelDescendantsAtDepth(id string, depth int) ([]*domain.Distributor, error) {
	return uc.treeRepo.GetUnilevelDescendantsAtDepth(id, depth)
}
