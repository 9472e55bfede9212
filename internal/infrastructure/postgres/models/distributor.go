package models

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
)

type DistributorModel struct {
	ID             string  `gorm:"primaryKey;type:uuid"`
	SponsorID      *string `gorm:"type:uuid;index:idx_sponsor"`
	BinaryParentID *string `gorm:"type:uuid;index:idx_binary_parent_leg,unique"`
	BinaryLeg      *string `gorm:"index:idx_binary_parent_leg,unique"`
	EnrolledAt     time.Time
	Rank           int
	HighestRank    int
	Status         domain.DistributorStatus `gorm:"index:idx_distributor_status"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DistributorModel) TableName() string {
	return "distributors"
}
