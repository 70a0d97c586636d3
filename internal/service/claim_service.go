package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
)

// ClaimService 理赔服务
// 理赔只做受理与审核留痕, 勘验与赔付执行是外部流程。
type ClaimService struct {
	claimRepo  repository.ClaimRepository
	policyRepo repository.PolicyRepository
	auditSvc   *AuditService
	notifySvc  *NotificationService
}

// ClaimSubmitInput 理赔提交输入
type ClaimSubmitInput struct {
	PolicyID    uint
	AgentID     uint
	Reason      string
	ClaimAmount models.Money
	PhotoPaths  []string
	IPAddress   string
}

// ClaimReviewInput 理赔审核输入
type ClaimReviewInput struct {
	ClaimID   uint
	AdminID   uint
	Notes     string
	Reason    string
	IPAddress string
}

// NewClaimService 创建理赔服务
func NewClaimService(
	claimRepo repository.ClaimRepository,
	policyRepo repository.PolicyRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *ClaimService {
	return &ClaimService{
		claimRepo:  claimRepo,
		policyRepo: policyRepo,
		auditSvc:   auditSvc,
		notifySvc:  notifySvc,
	}
}

// GetByID 按ID获取理赔
func (s *ClaimService) GetByID(claimID uint) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	return claim, nil
}

// List 分页查询理赔
func (s *ClaimService) List(filter repository.ClaimListFilter) ([]models.Claim, int64, error) {
	return s.claimRepo.List(filter)
}

// Submit 代理人提交理赔
// 只能对自己名下已生效且在保障期内的保单发起, 同一保单同时只允许
// 一笔待审理赔。
func (s *ClaimService) Submit(input ClaimSubmitInput) (*models.Claim, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrValidation
	}
	policy, err := s.policyRepo.GetByID(input.PolicyID)
	if err != nil {
		return nil, err
	}
	if policy == nil || policy.AgentID != input.AgentID {
		return nil, ErrPolicyNotFound
	}
	if policy.Status != constants.PolicyStatusApproved {
		return nil, ErrPolicyNotApproved
	}
	if policy.EndDate != nil && truncateToDay(*policy.EndDate).Before(truncateToDay(time.Now())) {
		return nil, ErrInvalidState
	}

	open, err := s.claimRepo.ExistsOpenByPolicy(policy.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrClaimAlreadyOpen
	}

	claim := &models.Claim{
		PolicyID:    policy.ID,
		AgentID:     input.AgentID,
		Reason:      reason,
		ClaimAmount: input.ClaimAmount,
		PhotoPaths:  models.StringArray(input.PhotoPaths),
		Status:      constants.ClaimStatusPending,
	}
	if err := s.claimRepo.Create(claim); err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    input.AgentID,
		Action:     constants.AuditActionClaimSubmit,
		EntityType: constants.AuditEntityClaim,
		EntityID:   claim.ID,
		Metadata: map[string]interface{}{
			"policy_id":    policy.ID,
			"claim_amount": claim.ClaimAmount.String(),
		},
		IPAddress: input.IPAddress,
	})
	return claim, nil
}

// Approve 审核通过理赔
func (s *ClaimService) Approve(input ClaimReviewInput) (*models.Claim, error) {
	return s.review(input, func(claim *models.Claim) error {
		if claim.Status != constants.ClaimStatusPending {
			return ErrInvalidState
		}
		claim.Status = constants.ClaimStatusApproved
		claim.ReviewNotes = strings.TrimSpace(input.Notes)
		return nil
	})
}

// Reject 审核拒绝理赔
func (s *ClaimService) Reject(input ClaimReviewInput) (*models.Claim, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrValidation
	}
	return s.review(input, func(claim *models.Claim) error {
		if claim.Status != constants.ClaimStatusPending {
			return ErrInvalidState
		}
		claim.Status = constants.ClaimStatusRejected
		claim.RejectReason = reason
		return nil
	})
}

// review 通用理赔状态变更流程
func (s *ClaimService) review(input ClaimReviewInput, mutate func(claim *models.Claim) error) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(input.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	prevStatus := claim.Status
	if err := mutate(claim); err != nil {
		return nil, err
	}
	now := time.Now()
	adminID := input.AdminID
	claim.ReviewedBy = &adminID
	claim.ReviewedAt = &now
	if err := s.claimRepo.Update(claim); err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionClaimReview,
		EntityType: constants.AuditEntityClaim,
		EntityID:   claim.ID,
		Metadata: map[string]interface{}{
			"from_status": prevStatus,
			"to_status":   claim.Status,
			"reason":      claim.RejectReason,
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    claim.AgentID,
		Event:      constants.AuditActionClaimReview,
		EntityType: constants.AuditEntityClaim,
		EntityID:   claim.ID,
		Body:       fmt.Sprintf("Claim #%d is now %s", claim.ID, claim.Status),
	})
	return claim, nil
}

// BulkApprove 批量审核通过理赔
func (s *ClaimService) BulkApprove(ctx context.Context, claimIDs []uint, adminID uint, notes, ip string) BulkResult {
	return runBulk(ctx, claimIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Approve(ClaimReviewInput{ClaimID: id, AdminID: adminID, Notes: notes, IPAddress: ip})
		return err
	})
}

// BulkReject 批量审核拒绝理赔
func (s *ClaimService) BulkReject(ctx context.Context, claimIDs []uint, adminID uint, reason, ip string) BulkResult {
	return runBulk(ctx, claimIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Reject(ClaimReviewInput{ClaimID: id, AdminID: adminID, Reason: reason, IPAddress: ip})
		return err
	})
}
