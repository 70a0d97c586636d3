package repository

import (
	"errors"

	"github.com/pashumitra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PolicyRepository 保单数据访问接口
type PolicyRepository interface {
	GetByID(id uint) (*models.Policy, error)
	GetByIDForUpdate(id uint) (*models.Policy, error)
	GetByNumber(number string) (*models.Policy, error)
	Create(policy *models.Policy) error
	Update(policy *models.Policy) error
	List(filter PolicyListFilter) ([]models.Policy, int64, error)
	CountByAgent(agentID uint, statuses []string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPolicyRepository
}

// GormPolicyRepository GORM 保单仓储实现
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository 创建保单仓储
func NewPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPolicyRepository) WithTx(tx *gorm.DB) *GormPolicyRepository {
	if tx == nil {
		return r
	}
	return &GormPolicyRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormPolicyRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取保单
func (r *GormPolicyRepository) GetByID(id uint) (*models.Policy, error) {
	if id == 0 {
		return nil, nil
	}
	var policy models.Policy
	if err := r.db.Preload("Plan").First(&policy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

// GetByIDForUpdate 按ID加锁获取保单
func (r *GormPolicyRepository) GetByIDForUpdate(id uint) (*models.Policy, error) {
	if id == 0 {
		return nil, nil
	}
	var policy models.Policy
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&policy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

// GetByNumber 按保单号获取保单
func (r *GormPolicyRepository) GetByNumber(number string) (*models.Policy, error) {
	if number == "" {
		return nil, nil
	}
	var policy models.Policy
	if err := r.db.Where("policy_number = ?", number).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

// Create 创建保单
func (r *GormPolicyRepository) Create(policy *models.Policy) error {
	return r.db.Create(policy).Error
}

// Update 更新保单
func (r *GormPolicyRepository) Update(policy *models.Policy) error {
	return r.db.Save(policy).Error
}

// List 分页查询保单
func (r *GormPolicyRepository) List(filter PolicyListFilter) ([]models.Policy, int64, error) {
	query := r.db.Model(&models.Policy{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.PlanID != 0 {
		query = query.Where("plan_id = ?", filter.PlanID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("(policy_number LIKE ? OR customer_name LIKE ? OR customer_phone LIKE ? OR cattle_tag_id LIKE ?)", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var policies []models.Policy
	if err := query.Preload("Plan").Order("id desc").Find(&policies).Error; err != nil {
		return nil, 0, err
	}
	return policies, total, nil
}

// CountByAgent 统计代理人名下保单数量
func (r *GormPolicyRepository) CountByAgent(agentID uint, statuses []string) (int64, error) {
	if agentID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Policy{}).Where("agent_id = ?", agentID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
