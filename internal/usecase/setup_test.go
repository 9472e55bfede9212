package usecase

import (
	"testing"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPlan() *domain.Plan {
	return &domain.Plan{
		Version:           "v1",
		CVFirstOrderRate:  dec("0.5"),
		CVRepeatOrderRate: dec("0.25"),
		ActivityThreshold: dec("50"),
		UnilevelRates:     []decimal.Decimal{dec("0.05"), dec("0.03")},
		Ranks: []domain.RankRequirement{
			{
				Name:       "bronze",
				MinPV:      dec("50"),
				MinTV:      dec("0"),
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
		PayoutFees:    map[string]decimal.Decimal{"bank": dec("0.025"), "crypto": dec("0.01")},
		CreatedAt:     time.Now(),
	}
}

func strPtr(s string) *string { return &s }

func legPtr(leg domain.BinaryLeg) *domain.BinaryLeg { return &leg }

func testDistributor(id string, sponsorID, parentID *string, leg *domain.BinaryLeg) *domain.Distributor {
	return &domain.Distributor{
		ID:             id,
		SponsorID:      sponsorID,
		BinaryParentID: parentID,
		BinaryLeg:      leg,
		EnrolledAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:         domain.StatusActive,
	}
}
