package mappers

import (
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
)

func ToDomainPayout(model *models.PayoutRequestModel) *domain.PayoutRequest {
	return &domain.PayoutRequest{
		ID:              model.ID,
		DistributorID:   model.DistributorID,
		RequestedAmount: model.RequestedAmount,
		FeeAmount:       model.FeeAmount,
		NetAmount:       model.NetAmount,
		Method:          model.Method,
		Status:          model.Status,
		IdempotencyKey:  model.IdempotencyKey,
		TransactionRef:  model.TransactionRef,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ToGORMPayout(req *domain.PayoutRequest) *models.PayoutRequestModel {
	return &models.PayoutRequestModel{
		ID:              req.ID,
		DistributorID:   req.DistributorID,
		RequestedAmount: req.RequestedAmount,
		FeeAmount:       req.FeeAmount,
		NetAmount:       req.NetAmount,
		Method:          req.Method,
		Status:          req.Status,
		IdempotencyKey:  req.IdempotencyKey,
		TransactionRef:  req.TransactionRef,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}
