package repository

import (
	"errors"
	"strings"

	"github.com/pashumitra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgentRepository 代理人数据访问接口
type AgentRepository interface {
	GetByID(id uint) (*models.Agent, error)
	GetByIDForUpdate(id uint) (*models.Agent, error)
	GetByCode(code string) (*models.Agent, error)
	GetByPhone(phone string) (*models.Agent, error)
	GetByIDs(ids []uint) ([]models.Agent, error)
	Create(agent *models.Agent) error
	Update(agent *models.Agent) error
	Delete(agentID uint) error
	List(filter AgentListFilter) ([]models.Agent, int64, error)
	CountRoots() (int64, error)
	CountChildren(parentID uint) (int64, error)
	HasDescendants(agentID uint) (bool, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormAgentRepository
}

// GormAgentRepository GORM 代理人仓储实现
type GormAgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository 创建代理人仓储
func NewAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAgentRepository) WithTx(tx *gorm.DB) *GormAgentRepository {
	if tx == nil {
		return r
	}
	return &GormAgentRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormAgentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取代理人
func (r *GormAgentRepository) GetByID(id uint) (*models.Agent, error) {
	if id == 0 {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetByIDForUpdate 按ID加锁获取代理人
func (r *GormAgentRepository) GetByIDForUpdate(id uint) (*models.Agent, error) {
	if id == 0 {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetByCode 按编码获取代理人
func (r *GormAgentRepository) GetByCode(code string) (*models.Agent, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.Where("agent_code = ?", code).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetByPhone 按手机号获取代理人
func (r *GormAgentRepository) GetByPhone(phone string) (*models.Agent, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.Where("phone = ?", phone).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetByIDs 批量获取代理人
func (r *GormAgentRepository) GetByIDs(ids []uint) ([]models.Agent, error) {
	if len(ids) == 0 {
		return []models.Agent{}, nil
	}
	var agents []models.Agent
	if err := r.db.Where("id IN ?", ids).Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// Create 创建代理人
func (r *GormAgentRepository) Create(agent *models.Agent) error {
	return r.db.Create(agent).Error
}

// Update 更新代理人
func (r *GormAgentRepository) Update(agent *models.Agent) error {
	return r.db.Save(agent).Error
}

// Delete 软删除代理人
func (r *GormAgentRepository) Delete(agentID uint) error {
	if agentID == 0 {
		return nil
	}
	return r.db.Delete(&models.Agent{}, agentID).Error
}

// List 分页查询代理人
func (r *GormAgentRepository) List(filter AgentListFilter) ([]models.Agent, int64, error) {
	query := r.db.Model(&models.Agent{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.KYCStatus != "" {
		query = query.Where("kyc_status = ?", filter.KYCStatus)
	}
	if filter.ParentAgentID != 0 {
		query = query.Where("parent_agent_id = ?", filter.ParentAgentID)
	}
	if filter.Level != 0 {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("(agent_code LIKE ? OR name LIKE ? OR phone LIKE ?)", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var agents []models.Agent
	if err := query.Order("id desc").Find(&agents).Error; err != nil {
		return nil, 0, err
	}
	return agents, total, nil
}

// CountRoots 统计根代理人数量
// 含软删除行: 已删除代理人仍占用编码唯一索引, 编码序号不可复用。
func (r *GormAgentRepository) CountRoots() (int64, error) {
	var count int64
	if err := r.db.Unscoped().Model(&models.Agent{}).Where("parent_agent_id IS NULL").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountChildren 统计直接下级数量
// 含软删除行, 理由同 CountRoots。
func (r *GormAgentRepository) CountChildren(parentID uint) (int64, error) {
	if parentID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Unscoped().Model(&models.Agent{}).Where("parent_agent_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasDescendants 判断是否存在下级
func (r *GormAgentRepository) HasDescendants(agentID uint) (bool, error) {
	if agentID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Agent{}).Where("parent_agent_id = ?", agentID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
