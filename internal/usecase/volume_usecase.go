package usecase

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/metrics"
	volumedto "github.com/nexaline/comp-service/internal/usecase/dto/volume"
)

type VolumeUsecase interface {
	RecordOrder(input *volumedto.RecordOrderInput) ([]*domain.VolumeEntry, error)
	ReverseOrder(orderID string) ([]*domain.VolumeEntry, error)
	GetOrder(orderID string) (*domain.CapturedOrder, error)
}

type DefaultVolumeUsecase struct {
	volumeRepo domain.VolumeRepository
	planRepo   domain.PlanRepository
	metrics    *metrics.CompMetrics
}

func NewDefaultVolumeUsecase(
	volumeRepo domain.VolumeRepository,
	planRepo domain.PlanRepository,
	compMetrics *metrics.CompMetrics) *DefaultVolumeUsecase {

	return &DefaultVolumeUsecase{
		volumeRepo: volumeRepo,
		planRepo:   planRepo,
		metrics:    compMetrics,
	}
}

// RecordOrder projects an order-capture event into the volume ledger. CV is
// computed from the current plan's CV schedule; exactly one entry is written,
// for the purchaser. Sponsor credit is derived later by the calculator so
// the ledger stays a pure projection of orders.
func (uc *DefaultVolumeUsecase) RecordOrder(input *volumedto.RecordOrderInput) ([]*domain.VolumeEntry, error) {
	plan, err := uc.planRepo.LatestPlan()
	if err != nil {
		return nil, err
	}

	cv := input.Amount.Mul(plan.CVRate(input.IsFirstOrder))

	order := &domain.CapturedOrder{
		ID:           input.OrderID,
		PurchaserID:  input.PurchaserID,
		Amount:       input.Amount,
		IsFirstOrder: input.IsFirstOrder,
		Status:       domain.OrderCaptured,
		CapturedAt:   input.CapturedAt,
		CreatedAt:    time.Now(),
	}

	entries := []*domain.VolumeEntry{{
		ID:            uuid.New().String(),
		DistributorID: input.PurchaserID,
		SourceOrderID: input.OrderID,
		CV:            cv,
		PV:            cv,
		CreatedAt:     input.CapturedAt,
	}}

	if err := uc.volumeRepo.CreateOrderWithEntries(order, entries); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		cvFloat, _ := cv.Float64()
		uc.metrics.RecordVolumeEntry(cvFloat, false)
	}
	slog.Info("order recorded", "order_id", input.OrderID, "purchaser_id", input.PurchaserID, "cv", cv.String())

	return entries, nil
}

// ReverseOrder appends negating entries for every entry tied to the order.
// The original rows are never touched.
func (uc *DefaultVolumeUsecase) ReverseOrder(orderID string) ([]*domain.VolumeEntry, error) {
	order, err := uc.volumeRepo.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderRefunded {
		return nil, domain.ErrAlreadyReversed
	}

	existing, err := uc.volumeRepo.GetEntriesByOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reversals := make([]*domain.VolumeEntry, 0, len(existing))
	for _, entry := range existing {
		if entry.Reversal {
			continue
		}
		reversals = append(reversals, &domain.VolumeEntry{
			ID:            uuid.New().String(),
			DistributorID: entry.DistributorID,
			SourceOrderID: entry.SourceOrderID,
			CV:            entry.CV.Neg(),
			PV:            entry.PV.Neg(),
			Reversal:      true,
			CreatedAt:     now,
		})
	}

	if err := uc.volumeRepo.AppendReversal(orderID, reversals); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrderReversalsTotal.Inc()
		for _, entry := range reversals {
			cvFloat, _ := entry.CV.Float64()
			uc.metrics.RecordVolumeEntry(cvFloat, true)
		}
	}
	slog.Info("order reversed", "order_id", orderID, "entries", len(reversals))

	return reversals, nil
}

func (uc *DefaultVolumeUsecase) GetOrder(orderID string) (*domain.CapturedOrder, error) {
	return uc.volumeRepo.GetOrder(orderID)
}
