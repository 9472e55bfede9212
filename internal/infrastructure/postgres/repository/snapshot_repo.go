package repository

import (
	"errors"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/mappers"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSnapshotRepository struct {
	DB *gorm.DB
}

func NewDefaultSnapshotRepository(db *gorm.DB) *DefaultSnapshotRepository {
	return &DefaultSnapshotRepository{DB: db}
}

// SaveSnapshots upserts on (distributor_id, period_id): recomputation of a
// closed period replaces snapshots with byte-identical values.
func (r *DefaultSnapshotRepository) SaveSnapshots(snapshots []*domain.EligibilitySnapshot) error {
	for _, snapshot := range snapshots {
		model := mappers.ToGORMSnapshot(snapshot)
		if err := r.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "distributor_id"},
				{Name: "period_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "rank", "pv", "tv", "lesser_leg_volume"}),
		}).Create(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultSnapshotRepository) GetSnapshot(distributorID, periodID string) (*domain.EligibilitySnapshot, error) {
	var model models.EligibilitySnapshotModel
	err := r.DB.First(&model, "distributor_id = ? AND period_id = ?", distributorID, periodID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainSnapshot(&model), nil
}

func (r *DefaultSnapshotRepository) GetSnapshotsByPeriod(periodID string) ([]*domain.EligibilitySnapshot, error) {
	var snapshotModels []models.EligibilitySnapshotModel
	if err := r.DB.Where("period_id = ?", periodID).Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]*domain.EligibilitySnapshot, len(snapshotModels))
	for i := range snapshotModels {
		snapshots[i] = mappers.ToDomainSnapshot(&snapshotModels[i])
	}
	return snapshots, nil
}
