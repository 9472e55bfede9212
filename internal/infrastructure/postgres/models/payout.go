package models

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

type PayoutRequestModel struct {
	ID              string          `gorm:"primaryKey;type:uuid"`
	DistributorID   string          `gorm:"type:uuid;index:idx_payout_distributor"`
	RequestedAmount decimal.Decimal `gorm:"type:decimal(20,8)"`
	FeeAmount       decimal.Decimal `gorm:"type:decimal(20,8)"`
	NetAmount       decimal.Decimal `gorm:"type:decimal(20,8)"`
	Method          string
	Status          domain.PayoutStatus `gorm:"index:idx_payout_status"`
	IdempotencyKey  string              `gorm:"uniqueIndex:idx_payout_idem_key"`
	TransactionRef  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"index:idx_payout_updated_at"`
}

func (PayoutRequestModel) TableName() string {
	return "payout_requests"
}
