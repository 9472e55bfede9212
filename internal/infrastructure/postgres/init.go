package postgres

import (
	"log"

	"github.com/nexaline/comp-service/internal/config"
	"github.com/nexaline/comp-service/internal/infrastructure/migrate"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.CompConfig) *gorm.DB {
	dsn := cfg.CompDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.CompDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.CompDB.MigrationsPath); err != nil {
			log.Fatalf("failed to migrate db: %v\n", err.Error())
		}
	} else if err := AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate db: %v\n", err.Error())
	}

	return db
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.DistributorModel{},
		&models.CapturedOrderModel{},
		&models.VolumeEntryModel{},
		&models.PeriodModel{},
		&models.EligibilitySnapshotModel{},
		&models.CommissionLineItemModel{},
		&models.BinaryCarryoverModel{},
		&models.PayoutRequestModel{},
		&models.PlanModel{},
	)
}
