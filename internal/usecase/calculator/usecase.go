package calculator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nexaline/comp-service/internal/domain"
	publisher "github.com/nexaline/comp-service/internal/infrastructure/kafka"
	"github.com/nexaline/comp-service/internal/infrastructure/metrics"
	"github.com/nexaline/comp-service/internal/usecase"
)

type CalculatorUsecase interface {
	// ClosePeriod seals the window since the previous close and runs the
	// calculation for it.
	ClosePeriod(now time.Time) (*domain.Period, error)
	// RunPeriod (re)runs the calculation for a closed period. Idempotent.
	RunPeriod(periodID string) error
}

type DefaultCalculatorUsecase struct {
	TreeRepo       domain.TreeRepository
	VolumeRepo     domain.VolumeRepository
	PeriodRepo     domain.PeriodRepository
	PlanRepo       domain.PlanRepository
	CommissionRepo domain.CommissionRepository
	RunStores      domain.RunStoreFactory
	Evaluator      *usecase.EligibilityEvaluator
	Publisher      *publisher.DefaultKafkaPublisher
	Metrics        *metrics.CompMetrics

	CommissionTopic string
}

func NewDefaultCalculatorUsecase(
	treeRepo domain.TreeRepository,
	volumeRepo domain.VolumeRepository,
	periodRepo domain.PeriodRepository,
	planRepo domain.PlanRepository,
	commissionRepo domain.CommissionRepository,
	runStores domain.RunStoreFactory,
	kafkaPublisher *publisher.DefaultKafkaPublisher,
	compMetrics *metrics.CompMetrics,
	commissionTopic string) *DefaultCalculatorUsecase {

	return &DefaultCalculatorUsecase{
		TreeRepo:        treeRepo,
		VolumeRepo:      volumeRepo,
		PeriodRepo:      periodRepo,
		PlanRepo:        planRepo,
		CommissionRepo:  commissionRepo,
		RunStores:       runStores,
		Evaluator:       usecase.NewEligibilityEvaluator(),
		Publisher:       kafkaPublisher,
		Metrics:         compMetrics,
		CommissionTopic: commissionTopic,
	}
}

func (uc *DefaultCalculatorUsecase) ClosePeriod(now time.Time) (*domain.Period, error) {
	plan, err := uc.PlanRepo.LatestPlan()
	if err != nil {
		return nil, err
	}

	latest, err := uc.PeriodRepo.LatestPeriod()
	if err != nil {
		return nil, err
	}

	var startsAt time.Time
	if latest != nil {
		startsAt = latest.EndsAt
	} else {
		orders, err := uc.VolumeRepo.OrdersInWindow(time.Time{}, now)
		if err != nil {
			return nil, err
		}
		if len(orders) > 0 {
			startsAt = orders[0].CapturedAt
		} else {
			startsAt = now.Add(-7 * 24 * time.Hour)
		}
	}

	period := &domain.Period{
		ID:          fmt.Sprintf("p-%s", now.UTC().Format("20060102T150405Z")),
		StartsAt:    startsAt,
		EndsAt:      now,
		PlanVersion: plan.Version,
		RunStatus:   domain.RunPending,
		CreatedAt:   time.Now(),
	}
	if err := uc.PeriodRepo.CreatePeriod(period); err != nil {
		return nil, err
	}

	if err := uc.RunPeriod(period.ID); err != nil {
		return period, err
	}
	return period, nil
}

// RunPeriod is the single-flight batch run: the period row's run-status CAS
// keeps concurrent triggers out, and every write happens in one transaction
// so a failing sub-algorithm leaves no partial commits.
func (uc *DefaultCalculatorUsecase) RunPeriod(periodID string) error {
	period, err := uc.PeriodRepo.GetPeriod(periodID)
	if err != nil {
		return err
	}
	if err := uc.PeriodRepo.TryStartRun(periodID); err != nil {
		return err
	}

	started := time.Now()
	inserted, err := uc.executeRun(period)

	outcome := "completed"
	finalStatus := domain.RunCompleted
	if err != nil {
		outcome = "failed"
		finalStatus = domain.RunFailed
	}
	if finishErr := uc.PeriodRepo.FinishRun(periodID, finalStatus); finishErr != nil {
		slog.Error("failed to finish run", "period_id", periodID, "error", finishErr.Error())
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordRun(outcome, time.Since(started).Seconds())
	}
	if err != nil {
		slog.Error("calculation run failed", "period_id", periodID, "error", err.Error())
		return err
	}

	slog.Info("calculation run completed",
		"period_id", periodID,
		"line_items", len(inserted),
		"duration", time.Since(started).String())

	uc.publishLineItems(inserted)
	return nil
}

func (uc *DefaultCalculatorUsecase) executeRun(period *domain.Period) ([]*domain.CommissionLineItem, error) {
	plan, err := uc.PlanRepo.GetPlan(period.PlanVersion)
	if err != nil {
		return nil, err
	}

	distributors, err := uc.TreeRepo.LoadAll()
	if err != nil {
		return nil, err
	}
	arena, err := usecase.BuildArena(distributors)
	if err != nil {
		return nil, err
	}

	entries, err := uc.VolumeRepo.EntriesInWindow(period.StartsAt, period.EndsAt)
	if err != nil {
		return nil, err
	}
	orders, err := uc.VolumeRepo.OrdersInWindow(period.StartsAt, period.EndsAt)
	if err != nil {
		return nil, err
	}

	volumes := usecase.ComputePeriodVolumes(arena, entries)
	snapshots := uc.Evaluator.Evaluate(arena, volumes, plan, period.ID)
	snapshotByID := make(map[string]*domain.EligibilitySnapshot, len(snapshots))
	for _, snapshot := range snapshots {
		snapshotByID[snapshot.DistributorID] = snapshot
	}

	priorCarry, err := uc.loadPriorCarryovers(period)
	if err != nil {
		return nil, err
	}

	run := &periodRun{
		period:       period,
		plan:         plan,
		arena:        arena,
		volumes:      volumes,
		entries:      entries,
		orders:       orders,
		snapshots:    snapshots,
		snapshotByID: snapshotByID,
		priorCarry:   priorCarry,
	}

	var inserted []*domain.CommissionLineItem
	err = uc.RunStores.InTransaction(func(store domain.RunStore) error {
		if err := store.StampPeriod(period.ID, period.StartsAt, period.EndsAt); err != nil {
			return err
		}
		if err := store.SaveSnapshots(snapshots); err != nil {
			return err
		}

		items, err := uc.runUnilevel(store, run)
		if err != nil {
			return err
		}
		inserted = append(inserted, items...)

		items, err = uc.runFastStart(store, run)
		if err != nil {
			return err
		}
		inserted = append(inserted, items...)

		items, err = uc.runBinary(store, run)
		if err != nil {
			return err
		}
		inserted = append(inserted, items...)

		items, err = uc.runRankBonus(store, run)
		if err != nil {
			return err
		}
		inserted = append(inserted, items...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		for _, item := range inserted {
			amount, _ := item.Amount.Float64()
			uc.Metrics.RecordLineItem(string(item.Type), amount)
		}
	}
	return inserted, nil
}

// periodRun carries the immutable inputs of a single run between the
// sub-algorithms.
type periodRun struct {
	period       *domain.Period
	plan         *domain.Plan
	arena        *usecase.TreeArena
	volumes      *usecase.PeriodVolumes
	entries      []*domain.VolumeEntry
	orders       []*domain.CapturedOrder
	snapshots    []*domain.EligibilitySnapshot
	snapshotByID map[string]*domain.EligibilitySnapshot
	priorCarry   map[string]map[domain.BinaryLeg]*domain.BinaryCarryover
}

func (r *periodRun) isActive(distributorID string) bool {
	snapshot := r.snapshotByID[distributorID]
	return snapshot != nil && snapshot.IsActive
}

func (uc *DefaultCalculatorUsecase) loadPriorCarryovers(period *domain.Period) (map[string]map[domain.BinaryLeg]*domain.BinaryCarryover, error) {
	prior, err := uc.PeriodRepo.PriorPeriod(period)
	if err != nil {
		return nil, err
	}
	carry := make(map[string]map[domain.BinaryLeg]*domain.BinaryCarryover)
	if prior == nil {
		return carry, nil
	}
	rows, err := uc.CommissionRepo.GetCarryovers(prior.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		legs := carry[row.DistributorID]
		if legs == nil {
			legs = make(map[domain.BinaryLeg]*domain.BinaryCarryover, 2)
			carry[row.DistributorID] = legs
		}
		legs[row.Leg] = row
	}
	return carry, nil
}

func (uc *DefaultCalculatorUsecase) publishLineItems(items []*domain.CommissionLineItem) {
	if uc.Publisher == nil || len(items) == 0 {
		return
	}
	events := make([]publisher.CommissionEvent, 0, len(items))
	for _, item := range items {
		event := publisher.CommissionEvent{
			LineItemID:          item.ID,
			DistributorID:       item.DistributorID,
			PeriodID:            item.PeriodID,
			Type:                string(item.Type),
			Amount:              item.Amount.String(),
			SourceDistributorID: item.SourceDistributorID,
		}
		if item.SourceOrderID != nil {
			event.SourceOrderID = *item.SourceOrderID
		}
		events = append(events, event)
	}
	go func() {
		if err := uc.Publisher.BatchPublishCommissions(uc.CommissionTopic, events); err != nil {
			slog.Error("failed to publish commission events", "error", err.Error())
		}
	}()
}

func newLineItemID() string {
	return uuid.New().String()
}
