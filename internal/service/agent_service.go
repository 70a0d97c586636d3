package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const agentCodeMaxRetry = 8

// AgentService 代理人服务
// 推荐树最多五层, 下级通过上级的代理人编码注册。
type AgentService struct {
	agentRepo repository.AgentRepository
	auditSvc  *AuditService
	notifySvc *NotificationService
}

// AgentRegisterInput 代理人注册输入
type AgentRegisterInput struct {
	Name         string
	Phone        string
	Email        string
	Password     string
	ReferralCode string // 上级代理人编码, 为空则注册为根代理人
	IPAddress    string
}

// AgentReviewInput 代理人审核输入
type AgentReviewInput struct {
	AgentID   uint
	AdminID   uint
	Reason    string
	IPAddress string
}

// AgentKYCInput 代理人 KYC 材料输入
type AgentKYCInput struct {
	AgentID          uint
	AadhaarNumber    string
	PANNumber        string
	AadhaarPhotoPath string
	PANPhotoPath     string
	IPAddress        string
}

// AgentBankDetailsInput 银行信息登记输入
type AgentBankDetailsInput struct {
	AgentID           uint
	BankAccountName   string
	BankAccountNumber string
	BankIFSC          string
}

// NewAgentService 创建代理人服务
func NewAgentService(
	agentRepo repository.AgentRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *AgentService {
	return &AgentService{
		agentRepo: agentRepo,
		auditSvc:  auditSvc,
		notifySvc: notifySvc,
	}
}

// GetByID 按ID获取代理人
func (s *AgentService) GetByID(agentID uint) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

// List 分页查询代理人
func (s *AgentService) List(filter repository.AgentListFilter) ([]models.Agent, int64, error) {
	return s.agentRepo.List(filter)
}

// ListDirectDownline 查询直接下级
func (s *AgentService) ListDirectDownline(agentID uint, page, pageSize int) ([]models.Agent, int64, error) {
	return s.agentRepo.List(repository.AgentListFilter{
		Page:          page,
		PageSize:      pageSize,
		ParentAgentID: agentID,
	})
}

// Register 注册代理人
// 推荐码为空注册为根代理人, 否则挂在对应上级之下; 深度超过五层拒绝。
func (s *AgentService) Register(input AgentRegisterInput) (*models.Agent, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" || input.Password == "" {
		return nil, ErrValidation
	}

	existing, err := s.agentRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAgentPhoneExists
	}

	var parent *models.Agent
	if code := strings.TrimSpace(input.ReferralCode); code != "" {
		parent, err = s.agentRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		// 上级不存在或非激活一律按未找到处理
		if parent == nil || parent.Status != constants.AgentStatusActive {
			return nil, ErrUplineNotFound
		}
		if parent.Level >= constants.MaxAgentLevel {
			return nil, ErrLevelLimitExceeded
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	agent, err := s.createWithCode(parent, func(code string) *models.Agent {
		a := &models.Agent{
			AgentCode:    code,
			Name:         name,
			Phone:        phone,
			Email:        strings.TrimSpace(input.Email),
			PasswordHash: string(hash),
			Status:       constants.AgentStatusPending,
			KYCStatus:    constants.KYCStatusNotSubmitted,
			Level:        1,
		}
		if parent != nil {
			parentID := parent.ID
			a.ParentAgentID = &parentID
			a.Level = parent.Level + 1
		}
		return a
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    agent.ID,
		Action:     constants.AuditActionAgentRegister,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Metadata: map[string]interface{}{
			"agent_code":    agent.AgentCode,
			"referral_code": strings.TrimSpace(input.ReferralCode),
			"level":         agent.Level,
		},
		IPAddress: input.IPAddress,
	})
	logger.Infow("agent_registered",
		"agent_id", agent.ID,
		"agent_code", agent.AgentCode,
		"level", agent.Level,
	)
	return agent, nil
}

// createWithCode 生成编码并创建, 唯一索引冲突时重新计数重试
func (s *AgentService) createWithCode(parent *models.Agent, build func(code string) *models.Agent) (*models.Agent, error) {
	for i := 0; i < agentCodeMaxRetry; i++ {
		code, err := s.nextAgentCode(parent)
		if err != nil {
			return nil, err
		}
		agent := build(code)
		if err := s.agentRepo.Create(agent); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return agent, nil
	}
	return nil, ErrAgentCodeExhausted
}

// nextAgentCode 计算下一个代理人编码
// 根代理人: AG001 / AG002 / ...; 下级: 上级编码加序号后缀(AG001-1)。
func (s *AgentService) nextAgentCode(parent *models.Agent) (string, error) {
	if parent == nil {
		count, err := s.agentRepo.CountRoots()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("AG%03d", count+1), nil
	}
	count, err := s.agentRepo.CountChildren(parent.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", parent.AgentCode, count+1), nil
}

// ResolveUpline 自下而上解析上线链, 最多五层
// parent_agent_id 是弱引用, 链上出现环视为数据损坏并报错。
func (s *AgentService) ResolveUpline(agentID uint) ([]models.Agent, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}

	visited := map[uint]struct{}{agent.ID: {}}
	chain := make([]models.Agent, 0, constants.MaxUplineLevels)
	current := agent
	for len(chain) < constants.MaxUplineLevels {
		if current.ParentAgentID == nil {
			break
		}
		parentID := *current.ParentAgentID
		if _, seen := visited[parentID]; seen {
			logger.Errorw("upline_cycle_detected",
				"agent_id", agentID,
				"cycle_at", parentID,
			)
			return nil, ErrUplineCycleDetected
		}
		parent, err := s.agentRepo.GetByID(parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// 弱引用悬空, 链到此为止
			break
		}
		visited[parentID] = struct{}{}
		chain = append(chain, *parent)
		current = parent
	}
	return chain, nil
}

// Approve 审核通过代理人
func (s *AgentService) Approve(input AgentReviewInput) (*models.Agent, error) {
	return s.review(input, constants.AuditActionAgentApprove, func(agent *models.Agent) error {
		if agent.Status != constants.AgentStatusPending {
			return ErrInvalidState
		}
		agent.Status = constants.AgentStatusActive
		agent.StatusReason = ""
		return nil
	})
}

// Reject 审核拒绝代理人
func (s *AgentService) Reject(input AgentReviewInput) (*models.Agent, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrValidation
	}
	return s.review(input, constants.AuditActionAgentReject, func(agent *models.Agent) error {
		if agent.Status != constants.AgentStatusPending {
			return ErrInvalidState
		}
		agent.Status = constants.AgentStatusRejected
		agent.StatusReason = strings.TrimSpace(input.Reason)
		return nil
	})
}

// Block 拉黑代理人
// 不级联: 下级层级与归属不变; 佣金仍照常分配, 只是在审批环节被冻结。
func (s *AgentService) Block(input AgentReviewInput) (*models.Agent, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrValidation
	}
	return s.review(input, constants.AuditActionAgentBlock, func(agent *models.Agent) error {
		if agent.Status != constants.AgentStatusActive && agent.Status != constants.AgentStatusInactive {
			return ErrInvalidState
		}
		agent.Status = constants.AgentStatusBlocked
		agent.StatusReason = strings.TrimSpace(input.Reason)
		agent.TokenVersion++
		return nil
	})
}

// Unblock 解除拉黑
func (s *AgentService) Unblock(input AgentReviewInput) (*models.Agent, error) {
	return s.review(input, constants.AuditActionAgentBlock, func(agent *models.Agent) error {
		if agent.Status != constants.AgentStatusBlocked {
			return ErrInvalidState
		}
		agent.Status = constants.AgentStatusActive
		agent.StatusReason = ""
		return nil
	})
}

// review 通用代理人状态变更流程
func (s *AgentService) review(input AgentReviewInput, action string, mutate func(agent *models.Agent) error) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	prevStatus := agent.Status
	if err := mutate(agent); err != nil {
		return nil, err
	}
	now := time.Now()
	adminID := input.AdminID
	agent.ReviewedBy = &adminID
	agent.ReviewedAt = &now
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	// 状态变更后作废登录态缓存
	if err := cache.DelAgentAuthState(context.Background(), agent.ID); err != nil {
		logger.Warnw("agent_auth_state_invalidate_failed", "agent_id", agent.ID, "error", err)
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     action,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Metadata: map[string]interface{}{
			"from_status": prevStatus,
			"to_status":   agent.Status,
			"reason":      agent.StatusReason,
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    agent.ID,
		Event:      action,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Body:       fmt.Sprintf("Your agent account %s is now %s", agent.AgentCode, agent.Status),
	})
	return agent, nil
}

// Delete 软删除代理人
// 有下级的代理人不可删除, 推荐树不允许出现断层。
func (s *AgentService) Delete(input AgentReviewInput) error {
	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return err
	}
	if agent == nil {
		return ErrAgentNotFound
	}
	hasDownline, err := s.agentRepo.HasDescendants(agent.ID)
	if err != nil {
		return err
	}
	if hasDownline {
		return ErrAgentHasDownline
	}
	if err := s.agentRepo.Delete(agent.ID); err != nil {
		return err
	}
	if err := cache.DelAgentAuthState(context.Background(), agent.ID); err != nil {
		logger.Warnw("agent_auth_state_invalidate_failed", "agent_id", agent.ID, "error", err)
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionAgentDelete,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Metadata: map[string]interface{}{
			"agent_code": agent.AgentCode,
			"reason":     strings.TrimSpace(input.Reason),
		},
		IPAddress: input.IPAddress,
	})
	return nil
}

// BulkApprove 批量审核通过
func (s *AgentService) BulkApprove(ctx context.Context, agentIDs []uint, adminID uint, ip string) BulkResult {
	return runBulk(ctx, agentIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Approve(AgentReviewInput{AgentID: id, AdminID: adminID, IPAddress: ip})
		return err
	})
}

// BulkReject 批量审核拒绝
func (s *AgentService) BulkReject(ctx context.Context, agentIDs []uint, adminID uint, reason, ip string) BulkResult {
	return runBulk(ctx, agentIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Reject(AgentReviewInput{AgentID: id, AdminID: adminID, Reason: reason, IPAddress: ip})
		return err
	})
}

// SubmitKYC 代理人提交 KYC 材料
func (s *AgentService) SubmitKYC(input AgentKYCInput) (*models.Agent, error) {
	if strings.TrimSpace(input.AadhaarNumber) == "" || strings.TrimSpace(input.PANNumber) == "" {
		return nil, ErrValidation
	}
	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	if agent.Status == constants.AgentStatusBlocked {
		return nil, ErrAgentBlocked
	}
	if agent.KYCStatus == constants.KYCStatusVerified || agent.KYCStatus == constants.KYCStatusPending {
		return nil, ErrInvalidState
	}
	agent.AadhaarNumber = strings.TrimSpace(input.AadhaarNumber)
	agent.PANNumber = strings.ToUpper(strings.TrimSpace(input.PANNumber))
	agent.AadhaarPhotoPath = strings.TrimSpace(input.AadhaarPhotoPath)
	agent.PANPhotoPath = strings.TrimSpace(input.PANPhotoPath)
	agent.KYCStatus = constants.KYCStatusPending
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    agent.ID,
		Action:     constants.AuditActionKYCSubmit,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		IPAddress:  input.IPAddress,
	})
	return agent, nil
}

// VerifyKYC 管理员通过 KYC
func (s *AgentService) VerifyKYC(input AgentReviewInput) (*models.Agent, error) {
	return s.reviewKYC(input, constants.AuditActionKYCVerify, func(agent *models.Agent) error {
		if agent.KYCStatus != constants.KYCStatusPending {
			return ErrInvalidState
		}
		agent.KYCStatus = constants.KYCStatusVerified
		return nil
	})
}

// RejectKYC 管理员拒绝 KYC
func (s *AgentService) RejectKYC(input AgentReviewInput) (*models.Agent, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, ErrValidation
	}
	return s.reviewKYC(input, constants.AuditActionKYCReject, func(agent *models.Agent) error {
		if agent.KYCStatus != constants.KYCStatusPending {
			return ErrInvalidState
		}
		agent.KYCStatus = constants.KYCStatusRejected
		return nil
	})
}

// reviewKYC 通用 KYC 状态变更流程
func (s *AgentService) reviewKYC(input AgentReviewInput, action string, mutate func(agent *models.Agent) error) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	prevStatus := agent.KYCStatus
	if err := mutate(agent); err != nil {
		return nil, err
	}
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     action,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Metadata: map[string]interface{}{
			"from_kyc_status": prevStatus,
			"to_kyc_status":   agent.KYCStatus,
			"reason":          strings.TrimSpace(input.Reason),
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    agent.ID,
		Event:      action,
		EntityType: constants.AuditEntityAgent,
		EntityID:   agent.ID,
		Body:       fmt.Sprintf("Your KYC status is now %s", agent.KYCStatus),
	})
	return agent, nil
}

// UpdateBankDetails 登记/更新银行信息
func (s *AgentService) UpdateBankDetails(input AgentBankDetailsInput) (*models.Agent, error) {
	name := strings.TrimSpace(input.BankAccountName)
	number := strings.TrimSpace(input.BankAccountNumber)
	ifsc := strings.ToUpper(strings.TrimSpace(input.BankIFSC))
	if name == "" || number == "" || ifsc == "" {
		return nil, ErrValidation
	}
	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	if agent.Status == constants.AgentStatusBlocked {
		return nil, ErrAgentBlocked
	}
	agent.BankAccountName = name
	agent.BankAccountNumber = number
	agent.BankIFSC = ifsc
	if err := s.agentRepo.Update(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
