package calculator

import (
	"testing"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/repository"
	"github.com/nexaline/comp-service/internal/usecase"
	volumedto "github.com/nexaline/comp-service/internal/usecase/dto/volume"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type calcFixture struct {
	db             *gorm.DB
	treeRepo       *repository.DefaultTreeRepository
	volumeRepo     *repository.DefaultVolumeRepository
	periodRepo     *repository.DefaultPeriodRepository
	planRepo       *repository.DefaultPlanRepository
	commissionRepo *repository.DefaultCommissionRepository
	volumeUc       *usecase.DefaultVolumeUsecase
	calculator     *DefaultCalculatorUsecase
}

func setupCalcFixture(t *testing.T, plan *domain.Plan) *calcFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	f := &calcFixture{
		db:             db,
		treeRepo:       repository.NewDefaultTreeRepository(db),
		volumeRepo:     repository.NewDefaultVolumeRepository(db),
		periodRepo:     repository.NewDefaultPeriodRepository(db),
		planRepo:       repository.NewDefaultPlanRepository(db),
		commissionRepo: repository.NewDefaultCommissionRepository(db),
	}
	if err := f.planRepo.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	f.volumeUc = usecase.NewDefaultVolumeUsecase(f.volumeRepo, f.planRepo, nil)
	f.calculator = NewDefaultCalculatorUsecase(
		f.treeRepo,
		f.volumeRepo,
		f.periodRepo,
		f.planRepo,
		f.commissionRepo,
		repository.NewGormRunStoreFactory(db),
		nil,
		nil,
		"commission-events",
	)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// calcPlan passes order amounts through as CV so commission arithmetic is
// easy to follow in the scenarios.
func calcPlan() *domain.Plan {
	return &domain.Plan{
		Version:           "v1",
		CVFirstOrderRate:  dec("1"),
		CVRepeatOrderRate: dec("1"),
		ActivityThreshold: dec("50"),
		UnilevelRates:     []decimal.Decimal{dec("0.05"), dec("0.03")},
		Ranks: []domain.RankRequirement{
			{
				Name:       "bronze",
				MinPV:      dec("50"),
				BinaryRate: dec("0.10"),
				WeeklyCap:  dec("1000"),
				RankBonus:  dec("100"),
			},
			{
				Name:         "silver",
				MinPV:        dec("50"),
				MinTV:        dec("500"),
				MinLesserLeg: dec("300"),
				BinaryRate:   dec("0.10"),
				WeeklyCap:    dec("1000"),
				RankBonus:    dec("250"),
			},
		},
		FastStart: domain.FastStartRules{
			Bonus:                dec("25"),
			BoostBonus:           dec("100"),
			BoostCount:           3,
			BoostWindowDays:      7,
			EnrollmentWindowDays: 30,
		},
		PayoutMinimum: dec("50"),
		CreatedAt:     time.Now(),
	}
}

func (f *calcFixture) enroll(t *testing.T, id string, sponsorID *string, parentID string, leg domain.BinaryLeg, enrolledAt time.Time) {
	t.Helper()

	d := &domain.Distributor{
		ID:         id,
		SponsorID:  sponsorID,
		EnrolledAt: enrolledAt,
		Status:     domain.StatusActive,
	}
	if err := f.treeRepo.CreateDistributor(d); err != nil {
		t.Fatalf("CreateDistributor %s failed: %v", id, err)
	}
	if parentID != "" {
		if err := f.treeRepo.PlaceBinary(id, parentID, leg); err != nil {
			t.Fatalf("PlaceBinary %s failed: %v", id, err)
		}
	}
}

func (f *calcFixture) order(t *testing.T, orderID, purchaserID, amount string, first bool, capturedAt time.Time) {
	t.Helper()

	_, err := f.volumeUc.RecordOrder(&volumedto.RecordOrderInput{
		OrderID:      orderID,
		PurchaserID:  purchaserID,
		Amount:       dec(amount),
		IsFirstOrder: first,
		CapturedAt:   capturedAt,
	})
	if err != nil {
		t.Fatalf("RecordOrder %s failed: %v", orderID, err)
	}
}

func (f *calcFixture) createPeriod(t *testing.T, id string, start, end time.Time) {
	t.Helper()

	err := f.periodRepo.CreatePeriod(&domain.Period{
		ID:          id,
		StartsAt:    start,
		EndsAt:      end,
		PlanVersion: "v1",
		RunStatus:   domain.RunPending,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePeriod %s failed: %v", id, err)
	}
}

func (f *calcFixture) itemsByType(t *testing.T, periodID string) map[domain.CommissionType][]*domain.CommissionLineItem {
	t.Helper()

	items, err := f.commissionRepo.ListByPeriod(periodID)
	if err != nil {
		t.Fatalf("ListByPeriod failed: %v", err)
	}
	byType := make(map[domain.CommissionType][]*domain.CommissionLineItem)
	for _, item := range items {
		byType[item.Type] = append(byType[item.Type], item)
	}
	return byType
}

func strPtr(s string) *string { return &s }
