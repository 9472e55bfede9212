package models

import "time"

// Document is the full plan serialized as JSON; versions are immutable once
// written.
type PlanModel struct {
	Version   string `gorm:"primaryKey"`
	Document  string `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (PlanModel) TableName() string {
	return "compensation_plans"
}
