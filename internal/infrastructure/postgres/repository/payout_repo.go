package repository

import (
	"errors"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/mappers"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultPayoutRepository struct {
	DB *gorm.DB
}

func NewDefaultPayoutRepository(db *gorm.DB) *DefaultPayoutRepository {
	return &DefaultPayoutRepository{DB: db}
}

// CreateWithBalanceCheck serializes payout creation per distributor by
// locking the distributor row, then recomputes the available balance inside
// the same transaction. Two concurrent requests can never both pass the check.
func (r *DefaultPayoutRepository) CreateWithBalanceCheck(req *domain.PayoutRequest) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var distributor models.DistributorModel
		if err := lockForUpdate(tx).First(&distributor, "id = ?", req.DistributorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrDistributorNotFound
			}
			return err
		}

		earned, err := sumLineItems(tx, req.DistributorID)
		if err != nil {
			return err
		}
		reserved, err := sumReserved(tx, req.DistributorID)
		if err != nil {
			return err
		}
		available := earned.Sub(reserved)
		if req.RequestedAmount.GreaterThan(available) {
			return domain.ErrInsufficientBalance
		}

		return tx.Create(mappers.ToGORMPayout(req)).Error
	})
}

func sumLineItems(tx *gorm.DB, distributorID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.Model(&models.CommissionLineItemModel{}).
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

func sumReserved(tx *gorm.DB, distributorID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := tx.Model(&models.PayoutRequestModel{}).
		Where("distributor_id = ? AND status NOT IN ?",
			distributorID, []domain.PayoutStatus{domain.PayoutCancelled, domain.PayoutFailed}).
		Select("SUM(requested_amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *DefaultPayoutRepository) GetPayout(id string) (*domain.PayoutRequest, error) {
	var model models.PayoutRequestModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPayout(&model), nil
}

func (r *DefaultPayoutRepository) GetByIdempotencyKey(key string) (*domain.PayoutRequest, error) {
	var model models.PayoutRequestModel
	if err := r.DB.First(&model, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPayout(&model), nil
}

// UpdateStatus is a guarded transition: the WHERE clause carries the expected
// current status, so a lost race surfaces as ErrInvalidTransition instead of
// silently overwriting a concurrent transition.
func (r *DefaultPayoutRepository) UpdateStatus(id string, from, to domain.PayoutStatus, transactionRef *string) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if transactionRef != nil {
		updates["transaction_ref"] = transactionRef
	}
	result := r.DB.Model(&models.PayoutRequestModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetPayout(id); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *DefaultPayoutRepository) ListByStatus(status domain.PayoutStatus) ([]*domain.PayoutRequest, error) {
	var payoutModels []models.PayoutRequestModel
	if err := r.DB.Where("status = ?", status).
		Order("created_at ASC").
		Find(&payoutModels).Error; err != nil {
		return nil, err
	}
	payouts := make([]*domain.PayoutRequest, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = mappers.ToDomainPayout(&payoutModels[i])
	}
	return payouts, nil
}

func (r *DefaultPayoutRepository) ListStaleProcessing(cutoff time.Time) ([]*domain.PayoutRequest, error) {
	var payoutModels []models.PayoutRequestModel
	if err := r.DB.Where("status = ? AND updated_at < ?", domain.PayoutProcessing, cutoff).
		Order("updated_at ASC").
		Find(&payoutModels).Error; err != nil {
		return nil, err
	}
	payouts := make([]*domain.PayoutRequest, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = mappers.ToDomainPayout(&payoutModels[i])
	}
	return payouts, nil
}

func (r *DefaultPayoutRepository) SumReservedByDistributor(distributorID string) (decimal.Decimal, error) {
	return sumReserved(r.DB, distributorID)
}
