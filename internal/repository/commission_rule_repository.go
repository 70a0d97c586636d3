package repository

import (
	"errors"

	"github.com/pashumitra/internal/models"

	"gorm.io/gorm"
)

// CommissionRuleRepository 分润规则数据访问接口
type CommissionRuleRepository interface {
	GetByLevel(level int) (*models.CommissionRule, error)
	ListActive() ([]models.CommissionRule, error)
	ListAll() ([]models.CommissionRule, error)
	Save(rule *models.CommissionRule) error
	WithTx(tx *gorm.DB) *GormCommissionRuleRepository
}

// GormCommissionRuleRepository GORM 分润规则仓储实现
type GormCommissionRuleRepository struct {
	db *gorm.DB
}

// NewCommissionRuleRepository 创建分润规则仓储
func NewCommissionRuleRepository(db *gorm.DB) *GormCommissionRuleRepository {
	return &GormCommissionRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRuleRepository) WithTx(tx *gorm.DB) *GormCommissionRuleRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRuleRepository{db: tx}
}

// GetByLevel 按层级获取规则
func (r *GormCommissionRuleRepository) GetByLevel(level int) (*models.CommissionRule, error) {
	if level <= 0 {
		return nil, nil
	}
	var rule models.CommissionRule
	if err := r.db.Where("level = ?", level).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActive 获取启用的规则, 按层级升序
func (r *GormCommissionRuleRepository) ListActive() ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	if err := r.db.Where("is_active = ?", true).Order("level asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ListAll 获取全部规则, 按层级升序
func (r *GormCommissionRuleRepository) ListAll() ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	if err := r.db.Order("level asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Save 保存规则
func (r *GormCommissionRuleRepository) Save(rule *models.CommissionRule) error {
	return r.db.Save(rule).Error
}
