package repository

import (
	"errors"

	"github.com/pashumitra/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金数据访问接口
type CommissionRepository interface {
	GetByID(id uint) (*models.Commission, error)
	GetByIDForUpdate(id uint) (*models.Commission, error)
	CreateBatch(commissions []models.Commission) error
	Update(commission *models.Commission) error
	ExistsByPolicy(policyID uint) (bool, error)
	ListByPolicy(policyID uint) ([]models.Commission, error)
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	SumByAgent(agentID uint, statuses []string) (decimal.Decimal, error)
	CountByAgent(agentID uint, statuses []string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCommissionRepository
}

// GormCommissionRepository GORM 佣金仓储实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取佣金记录
func (r *GormCommissionRepository) GetByID(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByIDForUpdate 按ID加锁获取佣金记录
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// CreateBatch 批量创建佣金记录
func (r *GormCommissionRepository) CreateBatch(commissions []models.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	return r.db.Create(&commissions).Error
}

// Update 更新佣金记录
func (r *GormCommissionRepository) Update(commission *models.Commission) error {
	return r.db.Save(commission).Error
}

// ExistsByPolicy 判断保单是否已分润
func (r *GormCommissionRepository) ExistsByPolicy(policyID uint) (bool, error) {
	if policyID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Commission{}).Where("policy_id = ?", policyID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByPolicy 获取保单的全部佣金记录
func (r *GormCommissionRepository) ListByPolicy(policyID uint) ([]models.Commission, error) {
	if policyID == 0 {
		return []models.Commission{}, nil
	}
	var commissions []models.Commission
	if err := r.db.Where("policy_id = ?", policyID).Order("level asc").Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}

// List 分页查询佣金记录
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.PolicyID != 0 {
		query = query.Where("policy_id = ?", filter.PolicyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var commissions []models.Commission
	if err := query.Order("id desc").Find(&commissions).Error; err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}

// SumByAgent 汇总代理人指定状态的佣金金额
func (r *GormCommissionRepository) SumByAgent(agentID uint, statuses []string) (decimal.Decimal, error) {
	if agentID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.Commission{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("agent_id = ? AND status IN ?", agentID, statuses).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByAgent 统计代理人指定状态的佣金笔数
func (r *GormCommissionRepository) CountByAgent(agentID uint, statuses []string) (int64, error) {
	if agentID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Commission{}).Where("agent_id = ?", agentID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
