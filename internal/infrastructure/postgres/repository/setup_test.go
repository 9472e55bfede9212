package repository

import (
	"testing"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres"
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

func mustCreateDistributor(t *testing.T, repo *DefaultTreeRepository, id string, sponsorID *string) *domain.Distributor {
	t.Helper()

	d := &domain.Distributor{
		ID:         id,
		SponsorID:  sponsorID,
		EnrolledAt: time.Now(),
		Status:     domain.StatusActive,
	}
	if err := repo.CreateDistributor(d); err != nil {
		t.Fatalf("Failed to create distributor %s: %v", id, err)
	}
	return d
}
