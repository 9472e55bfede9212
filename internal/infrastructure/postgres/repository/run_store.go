package repository

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"gorm.io/gorm"
)

// GormRunStoreFactory binds every write of a calculation run to a single
// transaction. A failed sub-algorithm rolls back the whole period run.
type GormRunStoreFactory struct {
	DB *gorm.DB
}

func NewGormRunStoreFactory(db *gorm.DB) *GormRunStoreFactory {
	return &GormRunStoreFactory{DB: db}
}

func (f *GormRunStoreFactory) InTransaction(fn func(store domain.RunStore) error) error {
	return f.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRunStore{
			snapshots:   NewDefaultSnapshotRepository(tx),
			commissions: NewDefaultCommissionRepository(tx),
			tree:        NewDefaultTreeRepository(tx),
			volume:      NewDefaultVolumeRepository(tx),
		})
	})
}

type gormRunStore struct {
	snapshots   *DefaultSnapshotRepository
	commissions *DefaultCommissionRepository
	tree        *DefaultTreeRepository
	volume      *DefaultVolumeRepository
}

func (s *gormRunStore) SaveSnapshots(snapshots []*domain.EligibilitySnapshot) error {
	return s.snapshots.SaveSnapshots(snapshots)
}

func (s *gormRunStore) AppendIfAbsent(item *domain.CommissionLineItem) (bool, error) {
	return s.commissions.AppendIfAbsent(item)
}

func (s *gormRunStore) CountFastStartsInWindow(sponsorID string, from, to time.Time) (int64, error) {
	return s.commissions.CountFastStartsInWindow(sponsorID, from, to)
}

func (s *gormRunStore) SaveCarryovers(carryovers []*domain.BinaryCarryover) error {
	return s.commissions.SaveCarryovers(carryovers)
}

func (s *gormRunStore) UpdateRanks(distributorID string, rank, highest domain.Rank) error {
	return s.tree.UpdateRanks(distributorID, rank, highest)
}

func (s *gormRunStore) StampPeriod(periodID string, from, to time.Time) error {
	return s.volume.StampPeriod(periodID, from, to)
}
