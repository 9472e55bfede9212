package models

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

type CapturedOrderModel struct {
	ID           string          `gorm:"primaryKey;type:uuid"`
	PurchaserID  string          `gorm:"type:uuid;index:idx_order_purchaser"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,8)"`
	IsFirstOrder bool
	Status       domain.OrderStatus `gorm:"index:idx_order_status"`
	CapturedAt   time.Time          `gorm:"index:idx_order_captured_at"`
	CreatedAt    time.Time
}

func (CapturedOrderModel) TableName() string {
	return "captured_orders"
}

type VolumeEntryModel struct {
	ID            string          `gorm:"primaryKey;type:uuid"`
	DistributorID string          `gorm:"type:uuid;index:idx_volume_distributor"`
	PeriodID      string          `gorm:"index:idx_volume_period"`
	SourceOrderID string          `gorm:"type:uuid;index:idx_volume_order"`
	CV            decimal.Decimal `gorm:"type:decimal(20,8)"`
	PV            decimal.Decimal `gorm:"type:decimal(20,8)"`
	Reversal      bool
	CreatedAt     time.Time `gorm:"index:idx_volume_created_at"`
}

func (VolumeEntryModel) TableName() string {
	return "volume_entries"
}
