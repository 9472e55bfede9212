package mappers

import (
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
)

func ToDomainDistributor(model *models.DistributorModel) *domain.Distributor {
	var leg *domain.BinaryLeg
	if model.BinaryLeg != nil {
		l := domain.BinaryLeg(*model.BinaryLeg)
		leg = &l
	}
	return &domain.Distributor{
		ID:             model.ID,
		SponsorID:      model.SponsorID,
		BinaryParentID: model.BinaryParentID,
		BinaryLeg:      leg,
		EnrolledAt:     model.EnrolledAt,
		Rank:           domain.Rank(model.Rank),
		HighestRank:    domain.Rank(model.HighestRank),
		Status:         model.Status,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMDistributor(d *domain.Distributor) *models.DistributorModel {
	var leg *string
	if d.BinaryLeg != nil {
		l := string(*d.BinaryLeg)
		leg = &l
	}
	return &models.DistributorModel{
		ID:             d.ID,
		SponsorID:      d.SponsorID,
		BinaryParentID: d.BinaryParentID,
		BinaryLeg:      leg,
		EnrolledAt:     d.EnrolledAt,
		Rank:           int(d.Rank),
		HighestRank:    int(d.HighestRank),
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
