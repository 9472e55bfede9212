package usecase

import (
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerUsecase interface {
	AvailableBalance(distributorID string) (decimal.Decimal, error)
	ListCommissions(distributorID string, page, limit int) ([]*domain.CommissionLineItem, int64, error)
	ListPeriodCommissions(periodID string) ([]*domain.CommissionLineItem, error)
}

type DefaultLedgerUsecase struct {
	commissionRepo domain.CommissionRepository
	payoutRepo     domain.PayoutRepository
}

func NewDefaultLedgerUsecase(
	commissionRepo domain.CommissionRepository,
	payoutRepo domain.PayoutRepository) *DefaultLedgerUsecase {

	return &DefaultLedgerUsecase{
		commissionRepo: commissionRepo,
		payoutRepo:     payoutRepo,
	}
}

// AvailableBalance is never stored: it is recomputed from the two ledgers on
// every read, so it cannot drift from the line items it is derived from.
func (uc *DefaultLedgerUsecase) AvailableBalance(distributorID string) (decimal.Decimal, error) {
	earned, err := uc.commissionRepo.SumByDistributor(distributorID)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := uc.payoutRepo.SumReservedByDistributor(distributorID)
	if err != nil {
		return decimal.Zero, err
	}
	return earned.Sub(reserved), nil
}

func (uc *DefaultLedgerUsecase) ListCommissions(distributorID string, page, limit int) ([]*domain.CommissionLineItem, int64, error) {
	return uc.commissionRepo.ListByDistributor(distributorID, page, limit)
}

func (uc *DefaultLedgerUsecase) ListPeriodCommissions(periodID string) ([]*domain.CommissionLineItem, error) {
	return uc.commissionRepo.ListByPeriod(periodID)
}
