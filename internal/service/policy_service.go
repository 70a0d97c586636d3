package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"gorm.io/gorm"
)

// PolicyService 保单服务
// 审批通过在同一事务内完成生效日期确定与佣金分配。
type PolicyService struct {
	policyRepo    repository.PolicyRepository
	planRepo      repository.PlanRepository
	agentRepo     repository.AgentRepository
	commissionSvc *CommissionService
	auditSvc      *AuditService
	notifySvc     *NotificationService
}

// PolicySubmitInput 保单提交输入
type PolicySubmitInput struct {
	AgentID uint
	PlanID  uint

	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerVillage string

	CattleTagID string
	CattleAge   int
	CattleBreed string

	PhotoFront string
	PhotoBack  string
	PhotoLeft  string
	PhotoRight string

	IPAddress string
}

// PolicyReviewInput 保单审核输入
type PolicyReviewInput struct {
	PolicyID  uint
	AdminID   uint
	Notes     string
	Reason    string
	IPAddress string
}

// NewPolicyService 创建保单服务
func NewPolicyService(
	policyRepo repository.PolicyRepository,
	planRepo repository.PlanRepository,
	agentRepo repository.AgentRepository,
	commissionSvc *CommissionService,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *PolicyService {
	return &PolicyService{
		policyRepo:    policyRepo,
		planRepo:      planRepo,
		agentRepo:     agentRepo,
		commissionSvc: commissionSvc,
		auditSvc:      auditSvc,
		notifySvc:     notifySvc,
	}
}

// GetByID 按ID获取保单
func (s *PolicyService) GetByID(policyID uint) (*models.Policy, error) {
	policy, err := s.policyRepo.GetByID(policyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, ErrPolicyNotFound
	}
	return policy, nil
}

// GetOwnedByAgent 获取代理人自己的保单
func (s *PolicyService) GetOwnedByAgent(policyID, agentID uint) (*models.Policy, error) {
	policy, err := s.GetByID(policyID)
	if err != nil {
		return nil, err
	}
	if policy.AgentID != agentID {
		return nil, ErrPolicyNotFound
	}
	return policy, nil
}

// List 分页查询保单
func (s *PolicyService) List(filter repository.PolicyListFilter) ([]models.Policy, int64, error) {
	return s.policyRepo.List(filter)
}

// Submit 代理人提交保单
// 保费/保额从方案快照, 四面识别照片缺一不可。
func (s *PolicyService) Submit(input PolicySubmitInput) (*models.Policy, error) {
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, ErrValidation
	}
	if input.PhotoFront == "" || input.PhotoBack == "" || input.PhotoLeft == "" || input.PhotoRight == "" {
		return nil, ErrValidation
	}

	agent, err := s.agentRepo.GetByID(input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	if agent.Status != constants.AgentStatusActive {
		return nil, ErrAgentNotActive
	}
	if agent.KYCStatus != constants.KYCStatusVerified {
		return nil, ErrKYCNotVerified
	}

	plan, err := s.planRepo.GetByID(input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	policy := &models.Policy{
		PolicyNumber:    generatePolicyNumber(),
		AgentID:         agent.ID,
		PlanID:          plan.ID,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		CustomerAddress: strings.TrimSpace(input.CustomerAddress),
		CustomerVillage: strings.TrimSpace(input.CustomerVillage),
		CattleType:      plan.CattleType,
		CattleTagID:     strings.TrimSpace(input.CattleTagID),
		CattleAge:       input.CattleAge,
		CattleBreed:     strings.TrimSpace(input.CattleBreed),
		PhotoFront:      input.PhotoFront,
		PhotoBack:       input.PhotoBack,
		PhotoLeft:       input.PhotoLeft,
		PhotoRight:      input.PhotoRight,
		Premium:         plan.Premium,
		CoverageAmount:  plan.CoverageAmount,
		Status:          constants.PolicyStatusPending,
	}
	if err := s.policyRepo.Create(policy); err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    agent.ID,
		Action:     constants.AuditActionPolicySubmit,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   policy.ID,
		Metadata: map[string]interface{}{
			"policy_number": policy.PolicyNumber,
			"plan_id":       plan.ID,
			"premium":       policy.Premium.String(),
		},
		IPAddress: input.IPAddress,
	})
	logger.Infow("policy_submitted",
		"policy_id", policy.ID,
		"policy_number", policy.PolicyNumber,
		"agent_id", agent.ID,
	)
	return policy, nil
}

// Approve 审批通过保单
// 同一事务内: 锁定保单 -> 确定保障期 -> 分配佣金。(policy_id, level)
// 唯一索引保证重复审批不会产生第二组佣金。
func (s *PolicyService) Approve(input PolicyReviewInput) (*models.Policy, error) {
	var approved *models.Policy
	err := s.policyRepo.Transaction(func(tx *gorm.DB) error {
		txPolicyRepo := s.policyRepo.WithTx(tx)
		policy, err := txPolicyRepo.GetByIDForUpdate(input.PolicyID)
		if err != nil {
			return err
		}
		if policy == nil {
			return ErrPolicyNotFound
		}
		if policy.Status != constants.PolicyStatusPending {
			return ErrInvalidState
		}

		plan, err := s.planRepo.GetByID(policy.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return ErrPlanNotFound
		}

		start, end, err := s.resolveCoverage(policy, plan)
		if err != nil {
			return err
		}
		now := time.Now()
		adminID := input.AdminID
		policy.Status = constants.PolicyStatusApproved
		policy.StartDate = &start
		policy.EndDate = &end
		policy.ReviewedBy = &adminID
		policy.ReviewedAt = &now
		policy.ReviewNotes = strings.TrimSpace(input.Notes)
		if err := txPolicyRepo.Update(policy); err != nil {
			return err
		}

		if err := s.commissionSvc.DistributeTx(tx, policy, plan); err != nil {
			return err
		}
		approved = policy
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionPolicyApprove,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   approved.ID,
		Metadata: map[string]interface{}{
			"policy_number": approved.PolicyNumber,
			"start_date":    approved.StartDate.Format("2006-01-02"),
			"end_date":      approved.EndDate.Format("2006-01-02"),
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    approved.AgentID,
		Event:      constants.AuditActionPolicyApprove,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   approved.ID,
		Body:       fmt.Sprintf("Policy %s approved", approved.PolicyNumber),
	})
	logger.Infow("policy_approved",
		"policy_id", approved.ID,
		"policy_number", approved.PolicyNumber,
		"admin_id", input.AdminID,
	)
	return approved, nil
}

// resolveCoverage 确定保障起止日期
// 续保衔接上一张保单: 上一张未到期则从到期次日开始, 否则从当天开始。
func (s *PolicyService) resolveCoverage(policy *models.Policy, plan *models.PolicyPlan) (time.Time, time.Time, error) {
	today := truncateToDay(time.Now())
	start := today
	if policy.PreviousPolicyID != nil {
		previous, err := s.policyRepo.GetByID(*policy.PreviousPolicyID)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if previous != nil && previous.EndDate != nil {
			prevEnd := truncateToDay(*previous.EndDate)
			if !prevEnd.Before(today) {
				start = prevEnd.AddDate(0, 0, 1)
			}
		}
	}
	months := plan.DurationMonths
	if months <= 0 {
		months = 12
	}
	end := start.AddDate(0, months, -1)
	return start, end, nil
}

// Reject 审批拒绝保单
func (s *PolicyService) Reject(input PolicyReviewInput) (*models.Policy, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrValidation
	}
	policy, err := s.policyRepo.GetByID(input.PolicyID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, ErrPolicyNotFound
	}
	if policy.Status != constants.PolicyStatusPending {
		return nil, ErrInvalidState
	}
	now := time.Now()
	adminID := input.AdminID
	policy.Status = constants.PolicyStatusRejected
	policy.RejectReason = reason
	policy.ReviewedBy = &adminID
	policy.ReviewedAt = &now
	if err := s.policyRepo.Update(policy); err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionPolicyReject,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   policy.ID,
		Metadata: map[string]interface{}{
			"policy_number": policy.PolicyNumber,
			"reason":        reason,
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    policy.AgentID,
		Event:      constants.AuditActionPolicyReject,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   policy.ID,
		Body:       fmt.Sprintf("Policy %s rejected: %s", policy.PolicyNumber, reason),
	})
	return policy, nil
}

// BulkApprove 批量审批通过
func (s *PolicyService) BulkApprove(ctx context.Context, policyIDs []uint, adminID uint, ip string) BulkResult {
	return runBulk(ctx, policyIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Approve(PolicyReviewInput{PolicyID: id, AdminID: adminID, IPAddress: ip})
		return err
	})
}

// BulkReject 批量审批拒绝
func (s *PolicyService) BulkReject(ctx context.Context, policyIDs []uint, adminID uint, reason, ip string) BulkResult {
	return runBulk(ctx, policyIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Reject(PolicyReviewInput{PolicyID: id, AdminID: adminID, Reason: reason, IPAddress: ip})
		return err
	})
}

// Renew 基于已生效保单发起续保
// 产生一张新的待审保单, 保费/保额按当前方案重新快照, 审批后与上一张
// 保障期无缝衔接。
func (s *PolicyService) Renew(policyID, agentID uint, ip string) (*models.Policy, error) {
	previous, err := s.policyRepo.GetByID(policyID)
	if err != nil {
		return nil, err
	}
	if previous == nil || previous.AgentID != agentID {
		return nil, ErrPolicyNotFound
	}
	if previous.Status != constants.PolicyStatusApproved {
		return nil, ErrPolicyNotRenewable
	}

	plan, err := s.planRepo.GetByID(previous.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	previousID := previous.ID
	renewal := &models.Policy{
		PolicyNumber:     generatePolicyNumber(),
		AgentID:          previous.AgentID,
		PlanID:           plan.ID,
		CustomerName:     previous.CustomerName,
		CustomerPhone:    previous.CustomerPhone,
		CustomerAddress:  previous.CustomerAddress,
		CustomerVillage:  previous.CustomerVillage,
		CattleType:       previous.CattleType,
		CattleTagID:      previous.CattleTagID,
		CattleAge:        previous.CattleAge,
		CattleBreed:      previous.CattleBreed,
		PhotoFront:       previous.PhotoFront,
		PhotoBack:        previous.PhotoBack,
		PhotoLeft:        previous.PhotoLeft,
		PhotoRight:       previous.PhotoRight,
		Premium:          plan.Premium,
		CoverageAmount:   plan.CoverageAmount,
		Status:           constants.PolicyStatusPending,
		PreviousPolicyID: &previousID,
	}
	if err := s.policyRepo.Create(renewal); err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    agentID,
		Action:     constants.AuditActionPolicySubmit,
		EntityType: constants.AuditEntityPolicy,
		EntityID:   renewal.ID,
		Metadata: map[string]interface{}{
			"policy_number":      renewal.PolicyNumber,
			"previous_policy_id": previousID,
			"renewal":            true,
		},
		IPAddress: ip,
	})
	return renewal, nil
}

func generatePolicyNumber() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("PM%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
