package repository

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/mappers"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultCommissionRepository struct {
	DB *gorm.DB
}

func NewDefaultCommissionRepository(db *gorm.DB) *DefaultCommissionRepository {
	return &DefaultCommissionRepository{DB: db}
}

// AppendIfAbsent relies on the composite unique index over the line-item
// identity tuple: ON CONFLICT DO NOTHING makes period reruns idempotent.
func (r *DefaultCommissionRepository) AppendIfAbsent(item *domain.CommissionLineItem) (bool, error) {
	model := mappers.ToGORMLineItem(item)
	result := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "distributor_id"},
			{Name: "period_id"},
			{Name: "type"},
			{Name: "source_distributor_id"},
			{Name: "source_order_id"},
		},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultCommissionRepository) ListByDistributor(distributorID string, page, limit int) ([]*domain.CommissionLineItem, int64, error) {
	if page < 1 {
		page = 1
	}
	// same bound the HTTP layer accepts, so a requested page size is never
	// silently shrunk
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var total int64
	base := r.DB.Model(&models.CommissionLineItemModel{}).
		Where("distributor_id = ?", distributorID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var itemModels []models.CommissionLineItemModel
	if err := base.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&itemModels).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*domain.CommissionLineItem, len(itemModels))
	for i := range itemModels {
		items[i] = mappers.ToDomainLineItem(&itemModels[i])
	}
	return items, total, nil
}

func (r *DefaultCommissionRepository) ListByPeriod(periodID string) ([]*domain.CommissionLineItem, error) {
	var itemModels []models.CommissionLineItemModel
	if err := r.DB.Where("period_id = ?", periodID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.CommissionLineItem, len(itemModels))
	for i := range itemModels {
		items[i] = mappers.ToDomainLineItem(&itemModels[i])
	}
	return items, nil
}

func (r *DefaultCommissionRepository) SumByDistributor(distributorID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.DB.Model(&models.CommissionLineItemModel{}).
		Where("distributor_id = ?", distributorID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// CountFastStartsInWindow counts fast-start items in the half-open window
// (from, to], a rolling window ending at the event being evaluated.
func (r *DefaultCommissionRepository) CountFastStartsInWindow(sponsorID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&models.CommissionLineItemModel{}).
		Where("distributor_id = ? AND type = ? AND created_at > ? AND created_at <= ?",
			sponsorID, domain.CommissionFastStart, from, to).
		Count(&count).Error
	return count, err
}

func (r *DefaultCommissionRepository) SaveCarryovers(carryovers []*domain.BinaryCarryover) error {
	for _, carry := range carryovers {
		model := mappers.ToGORMCarryover(carry)
		if err := r.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "distributor_id"},
				{Name: "period_id"},
				{Name: "leg"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"volume"}),
		}).Create(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultCommissionRepository) GetCarryovers(periodID string) ([]*domain.BinaryCarryover, error) {
	var carryModels []models.BinaryCarryoverModel
	if err := r.DB.Where("period_id = ?", periodID).Find(&carryModels).Error; err != nil {
		return nil, err
	}
	carryovers := make([]*domain.BinaryCarryover, len(carryModels))
	for i := range carryModels {
		carryovers[i] = mappers.ToDomainCarryover(&carryModels[i])
	}
	return carryovers, nil
}
