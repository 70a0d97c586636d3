package service

import (
	"context"
	"testing"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"gorm.io/gorm"
)

func setupClaimServiceTest(t *testing.T) (*ClaimService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	auditSvc := NewAuditService(repository.NewAuditLogRepository(db))
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewClaimService(
		repository.NewClaimRepository(db),
		repository.NewPolicyRepository(db),
		auditSvc,
		notifySvc,
	)
	return svc, db
}

func createApprovedPolicy(t *testing.T, db *gorm.DB, agentID, planID uint) *models.Policy {
	t.Helper()
	policy := createTestPolicy(t, db, agentID, planID, "1200")
	start := truncateToDay(time.Now())
	end := start.AddDate(0, 12, -1)
	err := db.Model(&models.Policy{}).Where("id = ?", policy.ID).Updates(map[string]interface{}{
		"status":     constants.PolicyStatusApproved,
		"start_date": start,
		"end_date":   end,
	}).Error
	if err != nil {
		t.Fatalf("approve policy failed: %v", err)
	}
	policy.Status = constants.PolicyStatusApproved
	policy.StartDate = &start
	policy.EndDate = &end
	return policy
}

func TestClaimSubmit(t *testing.T) {
	svc, db := setupClaimServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "120")
	policy := createApprovedPolicy(t, db, agent.ID, plan.ID)

	claim, err := svc.Submit(ClaimSubmitInput{
		PolicyID:    policy.ID,
		AgentID:     agent.ID,
		Reason:      "cattle died of disease",
		ClaimAmount: moneyFromString(t, "25000"),
		PhotoPaths:  []string{"/uploads/c/1.jpg", "/uploads/c/2.jpg"},
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}
	if claim.Status != constants.ClaimStatusPending {
		t.Fatalf("status want pending got %s", claim.Status)
	}
	if len(claim.PhotoPaths) != 2 {
		t.Fatalf("photo paths want 2 got %d", len(claim.PhotoPaths))
	}

	// 同一保单同时只允许一笔待审理赔
	if _, err := svc.Submit(ClaimSubmitInput{
		PolicyID:    policy.ID,
		AgentID:     agent.ID,
		Reason:      "second claim",
		ClaimAmount: moneyFromString(t, "100"),
	}); err != ErrClaimAlreadyOpen {
		t.Fatalf("open claim want ErrClaimAlreadyOpen got %v", err)
	}
}

func TestClaimSubmitValidation(t *testing.T) {
	svc, db := setupClaimServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	other := createTestAgent(t, db, "AG002", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "120")
	policy := createApprovedPolicy(t, db, agent.ID, plan.ID)

	// 原因必填
	if _, err := svc.Submit(ClaimSubmitInput{PolicyID: policy.ID, AgentID: agent.ID}); err != ErrValidation {
		t.Fatalf("missing reason want ErrValidation got %v", err)
	}

	// 他人保单不可见
	if _, err := svc.Submit(ClaimSubmitInput{
		PolicyID: policy.ID, AgentID: other.ID, Reason: "x",
	}); err != ErrPolicyNotFound {
		t.Fatalf("foreign policy want ErrPolicyNotFound got %v", err)
	}

	// 待审保单不可理赔
	pending := createTestPolicy(t, db, agent.ID, plan.ID, "1200")
	if _, err := svc.Submit(ClaimSubmitInput{
		PolicyID: pending.ID, AgentID: agent.ID, Reason: "x",
	}); err != ErrPolicyNotApproved {
		t.Fatalf("pending policy want ErrPolicyNotApproved got %v", err)
	}

	// 已过保障期不可理赔
	expired := createApprovedPolicy(t, db, agent.ID, plan.ID)
	past := time.Now().AddDate(0, -1, 0)
	if err := db.Model(&models.Policy{}).Where("id = ?", expired.ID).Update("end_date", past).Error; err != nil {
		t.Fatalf("expire policy failed: %v", err)
	}
	if _, err := svc.Submit(ClaimSubmitInput{
		PolicyID: expired.ID, AgentID: agent.ID, Reason: "x",
	}); err != ErrInvalidState {
		t.Fatalf("expired policy want ErrInvalidState got %v", err)
	}
}

func TestClaimReview(t *testing.T) {
	svc, db := setupClaimServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "120")
	policy := createApprovedPolicy(t, db, agent.ID, plan.ID)

	claim, err := svc.Submit(ClaimSubmitInput{
		PolicyID: policy.ID, AgentID: agent.ID, Reason: "accident", ClaimAmount: moneyFromString(t, "10000"),
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}

	// 拒绝必须填写原因
	if _, err := svc.Reject(ClaimReviewInput{ClaimID: claim.ID, AdminID: 1}); err != ErrValidation {
		t.Fatalf("reject without reason want ErrValidation got %v", err)
	}

	approved, err := svc.Approve(ClaimReviewInput{ClaimID: claim.ID, AdminID: 1, Notes: "verified"})
	if err != nil {
		t.Fatalf("approve claim failed: %v", err)
	}
	if approved.Status != constants.ClaimStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != 1 {
		t.Fatalf("reviewed_by want 1 got %v", approved.ReviewedBy)
	}

	// 离开 pending 后不可再审批
	if _, err := svc.Approve(ClaimReviewInput{ClaimID: claim.ID, AdminID: 1}); err != ErrInvalidState {
		t.Fatalf("re-approve want ErrInvalidState got %v", err)
	}
}

func TestClaimBulkRejectPartialFailure(t *testing.T) {
	svc, db := setupClaimServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "120")
	p1 := createApprovedPolicy(t, db, agent.ID, plan.ID)
	p2 := createApprovedPolicy(t, db, agent.ID, plan.ID)

	c1, err := svc.Submit(ClaimSubmitInput{PolicyID: p1.ID, AgentID: agent.ID, Reason: "a"})
	if err != nil {
		t.Fatalf("submit c1 failed: %v", err)
	}
	c2, err := svc.Submit(ClaimSubmitInput{PolicyID: p2.ID, AgentID: agent.ID, Reason: "b"})
	if err != nil {
		t.Fatalf("submit c2 failed: %v", err)
	}
	if _, err := svc.Approve(ClaimReviewInput{ClaimID: c2.ID, AdminID: 1}); err != nil {
		t.Fatalf("approve c2 failed: %v", err)
	}

	result := svc.BulkReject(context.Background(), []uint{c1.ID, c2.ID}, 1, "fraud check failed", "")
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("succeeded/failed want 1/1 got %d/%d", result.Succeeded, result.Failed)
	}
	if !result.Results[0].Success || result.Results[1].Success {
		t.Fatalf("success flags wrong: %+v", result.Results)
	}
}
