package repository

import (
	"errors"

	"github.com/pashumitra/internal/models"

	"gorm.io/gorm"
)

// PlanRepository 保险产品数据访问接口
type PlanRepository interface {
	GetByID(id uint) (*models.PolicyPlan, error)
	Create(plan *models.PolicyPlan) error
	Update(plan *models.PolicyPlan) error
	List(filter PlanListFilter) ([]models.PolicyPlan, int64, error)
}

// GormPlanRepository GORM 保险产品仓储实现
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建保险产品仓储
func NewPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// GetByID 按ID获取产品
func (r *GormPlanRepository) GetByID(id uint) (*models.PolicyPlan, error) {
	if id == 0 {
		return nil, nil
	}
	var plan models.PolicyPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// Create 创建产品
func (r *GormPlanRepository) Create(plan *models.PolicyPlan) error {
	return r.db.Create(plan).Error
}

// Update 更新产品
func (r *GormPlanRepository) Update(plan *models.PolicyPlan) error {
	return r.db.Save(plan).Error
}

// List 分页查询产品
func (r *GormPlanRepository) List(filter PlanListFilter) ([]models.PolicyPlan, int64, error) {
	query := r.db.Model(&models.PolicyPlan{})
	if filter.CattleType != "" {
		query = query.Where("cattle_type = ?", filter.CattleType)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var plans []models.PolicyPlan
	if err := query.Order("id desc").Find(&plans).Error; err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}
