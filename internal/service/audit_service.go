package service

import (
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
)

// AuditService 审计日志服务
// 记录失败只打日志, 绝不影响业务事务。
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// AuditRecordInput 审计记录输入
type AuditRecordInput struct {
	ActorType  string
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	Status     string
	Metadata   map[string]interface{}
	IPAddress  string
}

// NewAuditService 创建审计日志服务
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record 追加一条审计记录
func (s *AuditService) Record(input AuditRecordInput) {
	if s == nil || s.auditRepo == nil {
		return
	}
	status := input.Status
	if status == "" {
		status = constants.AuditStatusSuccess
	}
	entry := &models.AuditLogEntry{
		ActorType:  input.ActorType,
		ActorID:    input.ActorID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Status:     status,
		Metadata:   models.JSON(input.Metadata),
		IPAddress:  input.IPAddress,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.Errorw("audit_record_failed",
			"action", input.Action,
			"entity_type", input.EntityType,
			"entity_id", input.EntityID,
			"error", err,
		)
	}
}

// List 分页查询审计日志
func (s *AuditService) List(filter repository.AuditLogListFilter) ([]models.AuditLogEntry, int64, error) {
	return s.auditRepo.List(filter)
}
