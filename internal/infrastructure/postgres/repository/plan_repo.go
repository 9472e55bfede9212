package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPlanRepository struct {
	DB *gorm.DB
}

func NewDefaultPlanRepository(db *gorm.DB) *DefaultPlanRepository {
	return &DefaultPlanRepository{DB: db}
}

func (r *DefaultPlanRepository) SavePlan(plan *domain.Plan) error {
	document, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.DB.Create(&models.PlanModel{
		Version:   plan.Version,
		Document:  string(document),
		CreatedAt: time.Now(),
	}).Error
}

func (r *DefaultPlanRepository) GetPlan(version string) (*domain.Plan, error) {
	var model models.PlanModel
	if err := r.DB.First(&model, "version = ?", version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	var plan domain.Plan
	if err := json.Unmarshal([]byte(model.Document), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *DefaultPlanRepository) LatestPlan() (*domain.Plan, error) {
	var model models.PlanModel
	if err := r.DB.Order("created_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	var plan domain.Plan
	if err := json.Unmarshal([]byte(model.Document), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
