package models

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
)

type PeriodModel struct {
	ID          string    `gorm:"primaryKey"`
	StartsAt    time.Time `gorm:"index:idx_period_window;uniqueIndex:uniq_period_starts_at"`
	EndsAt      time.Time `gorm:"index:idx_period_window"`
	PlanVersion string
	RunStatus   domain.RunStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (PeriodModel) TableName() string {
	return "periods"
}
