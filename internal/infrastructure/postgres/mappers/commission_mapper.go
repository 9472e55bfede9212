package mappers

import (
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
)

func ToDomainSnapshot(model *models.EligibilitySnapshotModel) *domain.EligibilitySnapshot {
	return &domain.EligibilitySnapshot{
		DistributorID:   model.DistributorID,
		PeriodID:        model.PeriodID,
		IsActive:        model.IsActive,
		Rank:            domain.Rank(model.Rank),
		PV:              model.PV,
		TV:              model.TV,
		LesserLegVolume: model.LesserLegVolume,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMSnapshot(s *domain.EligibilitySnapshot) *models.EligibilitySnapshotModel {
	return &models.EligibilitySnapshotModel{
		DistributorID:   s.DistributorID,
		PeriodID:        s.PeriodID,
		IsActive:        s.IsActive,
		Rank:            int(s.Rank),
		PV:              s.PV,
		TV:              s.TV,
		LesserLegVolume: s.LesserLegVolume,
		CreatedAt:       s.CreatedAt,
	}
}

func ToDomainLineItem(model *models.CommissionLineItemModel) *domain.CommissionLineItem {
	var sourceOrderID *string
	if model.SourceOrderID != "" {
		id := model.SourceOrderID
		sourceOrderID = &id
	}
	return &domain.CommissionLineItem{
		ID:                  model.ID,
		DistributorID:       model.DistributorID,
		PeriodID:            model.PeriodID,
		Type:                model.Type,
		Amount:              model.Amount,
		SourceDistributorID: model.SourceDistributorID,
		SourceOrderID:       sourceOrderID,
		CreatedAt:           model.CreatedAt,
	}
}

func ToGORMLineItem(item *domain.CommissionLineItem) *models.CommissionLineItemModel {
	sourceOrderID := ""
	if item.SourceOrderID != nil {
		sourceOrderID = *item.SourceOrderID
	}
	return &models.CommissionLineItemModel{
		ID:                  item.ID,
		DistributorID:       item.DistributorID,
		PeriodID:            item.PeriodID,
		Type:                item.Type,
		Amount:              item.Amount,
		SourceDistributorID: item.SourceDistributorID,
		SourceOrderID:       sourceOrderID,
		CreatedAt:           item.CreatedAt,
	}
}

func ToDomainCarryover(model *models.BinaryCarryoverModel) *domain.BinaryCarryover {
	return &domain.BinaryCarryover{
		DistributorID: model.DistributorID,
		PeriodID:      model.PeriodID,
		Leg:           domain.BinaryLeg(model.Leg),
		Volume:        model.Volume,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMCarryover(c *domain.BinaryCarryover) *models.BinaryCarryoverModel {
	return &models.BinaryCarryoverModel{
		DistributorID: c.DistributorID,
		PeriodID:      c.PeriodID,
		Leg:           string(c.Leg),
		Volume:        c.Volume,
		CreatedAt:     c.CreatedAt,
	}
}
