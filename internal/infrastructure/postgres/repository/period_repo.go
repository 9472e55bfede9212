package repository

import (
	"errors"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPeriodRepository struct {
	DB *gorm.DB
}

func NewDefaultPeriodRepository(db *gorm.DB) *DefaultPeriodRepository {
	return &DefaultPeriodRepository{DB: db}
}

func toDomainPeriod(model *models.PeriodModel) *domain.Period {
	return &domain.Period{
		ID:          model.ID,
		StartsAt:    model.StartsAt,
		EndsAt:      model.EndsAt,
		PlanVersion: model.PlanVersion,
		RunStatus:   model.RunStatus,
		CreatedAt:   model.CreatedAt,
		CompletedAt: model.CompletedAt,
	}
}

// CreatePeriod rejects any window that intersects an existing one. Two
// closers racing from the same predecessor both pass the check with the
// same start, so the unique index on starts_at backs it up.
func (r *DefaultPeriodRepository) CreatePeriod(p *domain.Period) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		if err := tx.Model(&models.PeriodModel{}).
			Where("starts_at < ? AND ends_at > ?", p.EndsAt, p.StartsAt).
			Count(&overlapping).Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return domain.ErrPeriodOverlap
		}
		return tx.Create(&models.PeriodModel{
			ID:          p.ID,
			StartsAt:    p.StartsAt,
			EndsAt:      p.EndsAt,
			PlanVersion: p.PlanVersion,
			RunStatus:   p.RunStatus,
			CreatedAt:   p.CreatedAt,
		}).Error
	})
}

func (r *DefaultPeriodRepository) GetPeriod(id string) (*domain.Period, error) {
	var model models.PeriodModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	return toDomainPeriod(&model), nil
}

func (r *DefaultPeriodRepository) LatestPeriod() (*domain.Period, error) {
	var model models.PeriodModel
	err := r.DB.Order("ends_at DESC").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainPeriod(&model), nil
}

func (r *DefaultPeriodRepository) PriorPeriod(p *domain.Period) (*domain.Period, error) {
	var model models.PeriodModel
	err := r.DB.Where("ends_at <= ?", p.StartsAt).
		Order("ends_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainPeriod(&model), nil
}

// TryStartRun is a CAS on the run status row: only PENDING and FAILED periods
// may start a run, and exactly one caller wins.
func (r *DefaultPeriodRepository) TryStartRun(periodID string) error {
	result := r.DB.Model(&models.PeriodModel{}).
		Where("id = ? AND run_status IN ?", periodID, []domain.RunStatus{domain.RunPending, domain.RunFailed}).
		Update("run_status", domain.RunActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	period, err := r.GetPeriod(periodID)
	if err != nil {
		return err
	}
	switch period.RunStatus {
	case domain.RunActive:
		return domain.ErrRunInProgress
	default:
		return domain.ErrPeriodNotClosed
	}
}

func (r *DefaultPeriodRepository) FinishRun(periodID string, status domain.RunStatus) error {
	updates := map[string]interface{}{"run_status": status}
	if status == domain.RunCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.DB.Model(&models.PeriodModel{}).
		Where("id = ? AND run_status = ?", periodID, domain.RunActive).
		Updates(updates).Error
}
