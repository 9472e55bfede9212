package repository

import (
	"errors"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/mappers"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTreeRepository struct {
	DB *gorm.DB
}

func NewDefaultTreeRepository(db *gorm.DB) *DefaultTreeRepository {
	return &DefaultTreeRepository{DB: db}
}

func (r *DefaultTreeRepository) CreateDistributor(d *domain.Distributor) error {
	model := mappers.ToGORMDistributor(d)
	return r.DB.Create(model).Error
}

func (r *DefaultTreeRepository) GetDistributor(id string) (*domain.Distributor, error) {
	var model models.DistributorModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDistributorNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDistributor(&model), nil
}

// CreatePlaced inserts the distributor and claims its binary slot in one
// transaction: a rejected placement rolls the insert back, so no non-root
// row ever persists without a slot.
func (r *DefaultTreeRepository) CreatePlaced(d *domain.Distributor, parentID string, leg domain.BinaryLeg) error {
	if d.ID == parentID {
		return domain.ErrCycleDetected
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMDistributor(d)).Error; err != nil {
			return err
		}
		return placeBinary(tx, d.ID, parentID, leg)
	})
}

// PlaceBinary moves an existing unplaced distributor into a slot. Both sides
// of the relation live on the child row, so the update itself is atomic; the
// transaction exists to hold the parent row lock across the slot and cycle
// checks.
func (r *DefaultTreeRepository) PlaceBinary(newID, parentID string, leg domain.BinaryLeg) error {
	if newID == parentID {
		return domain.ErrCycleDetected
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return placeBinary(tx, newID, parentID, leg)
	})
}

func placeBinary(tx *gorm.DB, newID, parentID string, leg domain.BinaryLeg) error {
	var parent models.DistributorModel
	if err := lockForUpdate(tx).First(&parent, "id = ?", parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDistributorNotFound
		}
		return err
	}

	var child models.DistributorModel
	if err := lockForUpdate(tx).First(&child, "id = ?", newID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDistributorNotFound
		}
		return err
	}
	if child.BinaryParentID != nil {
		return domain.ErrSlotOccupied
	}

	var occupied int64
	if err := tx.Model(&models.DistributorModel{}).
		Where("binary_parent_id = ? AND binary_leg = ?", parentID, string(leg)).
		Count(&occupied).Error; err != nil {
		return err
	}
	if occupied > 0 {
		return domain.ErrSlotOccupied
	}

	// parentID must not sit inside newID's subtree
	if err := checkAncestorChain(tx, parentID, newID); err != nil {
		return err
	}

	legStr := string(leg)
	return tx.Model(&models.DistributorModel{}).
		Where("id = ?", newID).
		Updates(map[string]interface{}{
			"binary_parent_id": parentID,
			"binary_leg":       legStr,
			"updated_at":       time.Now(),
		}).Error
}

// checkAncestorChain walks from startID toward the root and fails with
// ErrCycleDetected if forbiddenID appears on the way, or ErrTreeInconsistency
// if the chain revisits a node.
func checkAncestorChain(tx *gorm.DB, startID, forbiddenID string) error {
	visited := map[string]bool{}
	currentID := startID
	for {
		if currentID == forbiddenID {
			return domain.ErrCycleDetected
		}
		if visited[currentID] {
			return domain.ErrTreeInconsistency
		}
		visited[currentID] = true

		var node models.DistributorModel
		if err := tx.Select("id", "binary_parent_id").First(&node, "id = ?", currentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTreeInconsistency
			}
			return err
		}
		if node.BinaryParentID == nil {
			return nil
		}
		currentID = *node.BinaryParentID
	}
}

func (r *DefaultTreeRepository) GetBinaryChildren(id string) (*domain.Distributor, *domain.Distributor, error) {
	var children []models.DistributorModel
	if err := r.DB.Where("binary_parent_id = ?", id).Find(&children).Error; err != nil {
		return nil, nil, err
	}
	var left, right *domain.Distributor
	for i := range children {
		child := mappers.ToDomainDistributor(&children[i])
		if child.BinaryLeg == nil {
			return nil, nil, domain.ErrTreeInconsistency
		}
		switch *child.BinaryLeg {
		case domain.LegLeft:
			left = child
		case domain.LegRight:
			right = child
		}
	}
	return left, right, nil
}

func (r *DefaultTreeRepository) GetBinaryAncestors(id string) ([]*domain.Distributor, error) {
	var ancestors []*domain.Distributor
	visited := map[string]bool{id: true}

	current, err := r.GetDistributor(id)
	if err != nil {
		return nil, err
	}
	for current.BinaryParentID != nil {
		parentID := *current.BinaryParentID
		if visited[parentID] {
			return nil, domain.ErrTreeInconsistency
		}
		visited[parentID] = true

		parent, err := r.GetDistributor(parentID)
		if err != nil {
			if errors.Is(err, domain.ErrDistributorNotFound) {
				return nil, domain.ErrTreeInconsistency
			}
			return nil, err
		}
		ancestors = append(ancestors, parent)
		current = parent
	}
	return ancestors, nil
}

func (r *DefaultTreeRepository) GetUnilevelAncestors(id string, maxDepth int) ([]*domain.Distributor, error) {
	var ancestors []*domain.Distributor
	visited := map[string]bool{id: true}

	current, err := r.GetDistributor(id)
	if err != nil {
		return nil, err
	}
	for depth := 0; depth < maxDepth && current.SponsorID != nil; depth++ {
		sponsorID := *current.SponsorID
		if visited[sponsorID] {
			return nil, domain.ErrTreeInconsistency
		}
		visited[sponsorID] = true

		sponsor, err := r.GetDistributor(sponsorID)
		if err != nil {
			if errors.Is(err, domain.ErrDistributorNotFound) {
				return nil, domain.ErrTreeInconsistency
			}
			return nil, err
		}
		ancestors = append(ancestors, sponsor)
		current = sponsor
	}
	return ancestors, nil
}

func (r *DefaultTreeRepository) GetUnilevelDescendantsAtDepth(id string, depth int) ([]*domain.Distributor, error) {
	frontier := []string{id}
	for level := 0; level < depth; level++ {
		if len(frontier) == 0 {
			return nil, nil
		}
		var next []models.DistributorModel
		if err := r.DB.Where("sponsor_id IN ?", frontier).Find(&next).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, model := range next {
			frontier = append(frontier, model.ID)
		}
		if level == depth-1 {
			result := make([]*domain.Distributor, len(next))
			for i := range next {
				result[i] = mappers.ToDomainDistributor(&next[i])
			}
			return result, nil
		}
	}
	return nil, nil
}

func (r *DefaultTreeRepository) LoadAll() ([]*domain.Distributor, error) {
	var models_ []models.DistributorModel
	if err := r.DB.Find(&models_).Error; err != nil {
		return nil, err
	}
	distributors := make([]*domain.Distributor, len(models_))
	for i := range models_ {
		distributors[i] = mappers.ToDomainDistributor(&models_[i])
	}
	return distributors, nil
}

func (r *DefaultTreeRepository) UpdateRanks(id string, rank, highest domain.Rank) error {
	return r.DB.Model(&models.DistributorModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rank":         int(rank),
			"highest_rank": int(highest),
			"updated_at":   time.Now(),
		}).Error
}
