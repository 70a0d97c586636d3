package repository

import (
	"errors"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClaimRepository 理赔数据访问接口
type ClaimRepository interface {
	GetByID(id uint) (*models.Claim, error)
	GetByIDForUpdate(id uint) (*models.Claim, error)
	Create(claim *models.Claim) error
	Update(claim *models.Claim) error
	List(filter ClaimListFilter) ([]models.Claim, int64, error)
	ExistsOpenByPolicy(policyID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormClaimRepository
}

// GormClaimRepository GORM 理赔仓储实现
type GormClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建理赔仓储
func NewClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRepository) WithTx(tx *gorm.DB) *GormClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// GetByID 按ID获取理赔
func (r *GormClaimRepository) GetByID(id uint) (*models.Claim, error) {
	if id == 0 {
		return nil, nil
	}
	var claim models.Claim
	if err := r.db.First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// GetByIDForUpdate 按ID加锁获取理赔
func (r *GormClaimRepository) GetByIDForUpdate(id uint) (*models.Claim, error) {
	if id == 0 {
		return nil, nil
	}
	var claim models.Claim
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// Create 创建理赔
func (r *GormClaimRepository) Create(claim *models.Claim) error {
	return r.db.Create(claim).Error
}

// Update 更新理赔
func (r *GormClaimRepository) Update(claim *models.Claim) error {
	return r.db.Save(claim).Error
}

// List 分页查询理赔
func (r *GormClaimRepository) List(filter ClaimListFilter) ([]models.Claim, int64, error) {
	query := r.db.Model(&models.Claim{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.PolicyID != 0 {
		query = query.Where("policy_id = ?", filter.PolicyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var claims []models.Claim
	if err := query.Order("id desc").Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// ExistsOpenByPolicy 判断保单是否存在处理中的理赔
func (r *GormClaimRepository) ExistsOpenByPolicy(policyID uint) (bool, error) {
	if policyID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.Claim{}).
		Where("policy_id = ? AND status = ?", policyID, constants.ClaimStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
