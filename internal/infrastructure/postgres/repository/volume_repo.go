package repository

import (
	"errors"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/mappers"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultVolumeRepository struct {
	DB *gorm.DB
}

func NewDefaultVolumeRepository(db *gorm.DB) *DefaultVolumeRepository {
	return &DefaultVolumeRepository{DB: db}
}

func (r *DefaultVolumeRepository) CreateOrderWithEntries(order *domain.CapturedOrder, entries []*domain.VolumeEntry) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.CapturedOrderModel{}).
			Where("id = ?", order.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrDuplicateOrder
		}
		if err := tx.Create(mappers.ToGORMOrder(order)).Error; err != nil {
			return err
		}
		for _, entry := range entries {
			if err := tx.Create(mappers.ToGORMVolumeEntry(entry)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DefaultVolumeRepository) GetOrder(orderID string) (*domain.CapturedOrder, error) {
	var model models.CapturedOrderModel
	if err := r.DB.First(&model, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

func (r *DefaultVolumeRepository) GetEntriesByOrder(orderID string) ([]*domain.VolumeEntry, error) {
	var entryModels []models.VolumeEntryModel
	if err := r.DB.Where("source_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.VolumeEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainVolumeEntry(&entryModels[i])
	}
	return entries, nil
}

func (r *DefaultVolumeRepository) AppendReversal(orderID string, entries []*domain.VolumeEntry) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CapturedOrderModel{}).
			Where("id = ? AND status = ?", orderID, domain.OrderCaptured).
			Update("status", domain.OrderRefunded)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrAlreadyReversed
		}
		for _, entry := range entries {
			if err := tx.Create(mappers.ToGORMVolumeEntry(entry)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DefaultVolumeRepository) EntriesInWindow(from, to time.Time) ([]*domain.VolumeEntry, error) {
	var entryModels []models.VolumeEntryModel
	if err := r.DB.
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.VolumeEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainVolumeEntry(&entryModels[i])
	}
	return entries, nil
}

func (r *DefaultVolumeRepository) OrdersInWindow(from, to time.Time) ([]*domain.CapturedOrder, error) {
	var orderModels []models.CapturedOrderModel
	if err := r.DB.
		Where("captured_at >= ? AND captured_at < ?", from, to).
		Order("captured_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.CapturedOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, nil
}

func (r *DefaultVolumeRepository) StampPeriod(periodID string, from, to time.Time) error {
	return r.DB.Model(&models.VolumeEntryModel{}).
		Where("created_at >= ? AND created_at < ? AND period_id = ''", from, to).
		Update("period_id", periodID).Error
}
