package mappers

import (
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.CapturedOrderModel) *domain.CapturedOrder {
	return &domain.CapturedOrder{
		ID:           model.ID,
		PurchaserID:  model.PurchaserID,
		Amount:       model.Amount,
		IsFirstOrder: model.IsFirstOrder,
		Status:       model.Status,
		CapturedAt:   model.CapturedAt,
		CreatedAt:    model.CreatedAt,
	}
}

func ToGORMOrder(order *domain.CapturedOrder) *models.CapturedOrderModel {
	return &models.CapturedOrderModel{
		ID:           order.ID,
		PurchaserID:  order.PurchaserID,
		Amount:       order.Amount,
		IsFirstOrder: order.IsFirstOrder,
		Status:       order.Status,
		CapturedAt:   order.CapturedAt,
		CreatedAt:    order.CreatedAt,
	}
}

func ToDomainVolumeEntry(model *models.VolumeEntryModel) *domain.VolumeEntry {
	return &domain.VolumeEntry{
		ID:            model.ID,
		DistributorID: model.DistributorID,
		PeriodID:      model.PeriodID,
		SourceOrderID: model.SourceOrderID,
		CV:            model.CV,
		PV:            model.PV,
		Reversal:      model.Reversal,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMVolumeEntry(entry *domain.VolumeEntry) *models.VolumeEntryModel {
	return &models.VolumeEntryModel{
		ID:            entry.ID,
		DistributorID: entry.DistributorID,
		PeriodID:      entry.PeriodID,
		SourceOrderID: entry.SourceOrderID,
		CV:            entry.CV,
		PV:            entry.PV,
		Reversal:      entry.Reversal,
		CreatedAt:     entry.CreatedAt,
	}
}
