package models

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

type EligibilitySnapshotModel struct {
	DistributorID   string          `gorm:"primaryKey;type:uuid"`
	PeriodID        string          `gorm:"primaryKey"`
	IsActive        bool
	Rank            int
	PV              decimal.Decimal `gorm:"type:decimal(20,8)"`
	TV              decimal.Decimal `gorm:"type:decimal(20,8)"`
	LesserLegVolume decimal.Decimal `gorm:"type:decimal(20,8)"`
	CreatedAt       time.Time
}

func (EligibilitySnapshotModel) TableName() string {
	return "eligibility_snapshots"
}

// SourceOrderID is stored as "" when absent so it always participates in the
// uniqueness index (a NULL would make rerun duplicates possible).
type CommissionLineItemModel struct {
	ID                  string                `gorm:"primaryKey;type:uuid"`
	DistributorID       string                `gorm:"type:uuid;index:idx_line_item_unique,unique;index:idx_commission_distributor"`
	PeriodID            string                `gorm:"index:idx_line_item_unique,unique"`
	Type                domain.CommissionType `gorm:"index:idx_line_item_unique,unique;index:idx_commission_type"`
	SourceDistributorID string                `gorm:"type:uuid;index:idx_line_item_unique,unique"`
	SourceOrderID       string                `gorm:"index:idx_line_item_unique,unique"`
	Amount              decimal.Decimal       `gorm:"type:decimal(20,8)"`
	CreatedAt           time.Time             `gorm:"index:idx_commission_created_at"`
}

func (CommissionLineItemModel) TableName() string {
	return "commission_line_items"
}

type BinaryCarryoverModel struct {
	DistributorID string          `gorm:"primaryKey;type:uuid"`
	PeriodID      string          `gorm:"primaryKey"`
	Leg           string          `gorm:"primaryKey"`
	Volume        decimal.Decimal `gorm:"type:decimal(20,8)"`
	CreatedAt     time.Time
}

func (BinaryCarryoverModel) TableName() string {
	return "binary_carryovers"
}
