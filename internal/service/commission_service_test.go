package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	auditSvc := NewAuditService(repository.NewAuditLogRepository(db))
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewCommissionService(
		repository.NewCommissionRepository(db),
		repository.NewCommissionRuleRepository(db),
		repository.NewAgentRepository(db),
		auditSvc,
		notifySvc,
	)
	return svc, db
}

func moneyFromString(t *testing.T, s string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", s, err)
	}
	return models.NewMoneyFromDecimal(d)
}

func createTestRule(t *testing.T, db *gorm.DB, level int, pct string, active bool) {
	t.Helper()
	rule := models.CommissionRule{
		Level:      level,
		CommType:   constants.CommissionTypePercentage,
		Percentage: moneyFromString(t, pct),
		IsActive:   active,
	}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("create rule level %d failed: %v", level, err)
	}
	// gorm 对带 default:true 的零值 bool 会在插入时写入默认值, 需要显式回写 false
	if !active {
		if err := db.Model(&rule).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate rule level %d failed: %v", level, err)
		}
	}
}

func createTestPlan(t *testing.T, db *gorm.DB, sellerCommission string) *models.PolicyPlan {
	t.Helper()
	plan := &models.PolicyPlan{
		Name:             "Test Plan",
		CattleType:       "cow",
		Premium:          moneyFromString(t, "1200"),
		CoverageAmount:   moneyFromString(t, "30000"),
		DurationMonths:   12,
		SellerCommission: moneyFromString(t, sellerCommission),
		IsActive:         true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	return plan
}

func createTestPolicy(t *testing.T, db *gorm.DB, agentID, planID uint, premium string) *models.Policy {
	t.Helper()
	policy := &models.Policy{
		PolicyNumber:  fmt.Sprintf("PM%d", time.Now().UnixNano()),
		AgentID:       agentID,
		PlanID:        planID,
		CustomerName:  "Farmer",
		CustomerPhone: "9000000000",
		CattleType:    "cow",
		PhotoFront:    "/uploads/p/f.jpg",
		PhotoBack:     "/uploads/p/b.jpg",
		PhotoLeft:     "/uploads/p/l.jpg",
		PhotoRight:    "/uploads/p/r.jpg",
		Premium:       moneyFromString(t, premium),
		Status:        constants.PolicyStatusPending,
	}
	if err := db.Create(policy).Error; err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	return policy
}

func TestDistributeTxFullChain(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	a2 := createTestAgent(t, db, "AG001-1", &a1.ID, 2, constants.AgentStatusActive)
	a3 := createTestAgent(t, db, "AG001-1-1", &a2.ID, 3, constants.AgentStatusActive)

	createTestRule(t, db, 1, "5", true)
	createTestRule(t, db, 2, "2.5", true)
	createTestRule(t, db, 3, "1", true)

	plan := createTestPlan(t, db, "120")
	policy := createTestPolicy(t, db, a3.ID, plan.ID, "1200")

	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}

	commissions, err := svc.ListByPolicy(policy.ID)
	if err != nil {
		t.Fatalf("list by policy failed: %v", err)
	}
	// 出单人一条 + 两个实际存在的上线各一条
	if len(commissions) != 3 {
		t.Fatalf("commission count want 3 got %d", len(commissions))
	}

	byLevel := map[int]models.Commission{}
	for _, c := range commissions {
		byLevel[c.Level] = c
	}

	seller := byLevel[0]
	if seller.AgentID != a3.ID {
		t.Fatalf("seller commission agent want %d got %d", a3.ID, seller.AgentID)
	}
	if !seller.Amount.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("seller amount want 120 got %s", seller.Amount.String())
	}
	if seller.CommType != constants.CommissionTypeFixed {
		t.Fatalf("seller comm type want fixed got %s", seller.CommType)
	}

	l1 := byLevel[1]
	if l1.AgentID != a2.ID {
		t.Fatalf("level 1 agent want %d got %d", a2.ID, l1.AgentID)
	}
	// 1200 × 5% = 60
	if !l1.Amount.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("level 1 amount want 60 got %s", l1.Amount.String())
	}

	l2 := byLevel[2]
	if l2.AgentID != a1.ID {
		t.Fatalf("level 2 agent want %d got %d", a1.ID, l2.AgentID)
	}
	// 1200 × 2.5% = 30
	if !l2.Amount.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("level 2 amount want 30 got %s", l2.Amount.String())
	}

	for _, c := range commissions {
		if c.Status != constants.CommissionStatusPending {
			t.Fatalf("commission %d status want pending got %s", c.ID, c.Status)
		}
		if !c.Base.Decimal.Equal(decimal.NewFromInt(1200)) {
			t.Fatalf("commission %d base want 1200 got %s", c.ID, c.Base.String())
		}
	}
}

func TestDistributeTxIdempotent(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	createTestRule(t, db, 1, "5", true)
	plan := createTestPlan(t, db, "100")
	policy := createTestPolicy(t, db, agent.ID, plan.ID, "1000")

	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("first distribute failed: %v", err)
	}
	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("second distribute should be a no-op, got %v", err)
	}

	var count int64
	db.Model(&models.Commission{}).Where("policy_id = ?", policy.ID).Count(&count)
	if count != 1 {
		t.Fatalf("commission count want 1 got %d", count)
	}
}

func TestDistributeTxSkipsMissingRuleLevel(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	a2 := createTestAgent(t, db, "AG001-1", &a1.ID, 2, constants.AgentStatusActive)
	a3 := createTestAgent(t, db, "AG001-1-1", &a2.ID, 3, constants.AgentStatusActive)

	// 只有一级规则生效, 二级规则停用
	createTestRule(t, db, 1, "5", true)
	createTestRule(t, db, 2, "2.5", false)

	plan := createTestPlan(t, db, "100")
	policy := createTestPolicy(t, db, a3.ID, plan.ID, "1000")

	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}

	commissions, err := svc.ListByPolicy(policy.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// 出单人 + 一级, 没有二级的零额占位
	if len(commissions) != 2 {
		t.Fatalf("commission count want 2 got %d", len(commissions))
	}
	for _, c := range commissions {
		if c.Level == 2 {
			t.Fatalf("inactive rule level should be skipped")
		}
	}
}

func TestDistributeTxPercentageRounding(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	a2 := createTestAgent(t, db, "AG001-1", &a1.ID, 2, constants.AgentStatusActive)

	createTestRule(t, db, 1, "3.33", true)
	plan := createTestPlan(t, db, "0")
	policy := createTestPolicy(t, db, a2.ID, plan.ID, "999.99")

	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	commissions, err := svc.ListByPolicy(policy.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var l1 *models.Commission
	for i := range commissions {
		if commissions[i].Level == 1 {
			l1 = &commissions[i]
		}
	}
	if l1 == nil {
		t.Fatalf("level 1 commission missing")
	}
	// 999.99 × 3.33 / 100 = 33.299667 → 33.30
	want := decimal.RequireFromString("33.30")
	if !l1.Amount.Decimal.Equal(want) {
		t.Fatalf("rounded amount want 33.30 got %s", l1.Amount.String())
	}
}

func TestCommissionApprove(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "100")
	policy := createTestPolicy(t, db, agent.ID, plan.ID, "1000")
	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	commissions, _ := svc.ListByPolicy(policy.ID)
	if len(commissions) != 1 {
		t.Fatalf("want 1 commission got %d", len(commissions))
	}
	id := commissions[0].ID

	approved, err := svc.Approve(CommissionReviewInput{CommissionID: id, AdminID: 3})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.CommissionStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != 3 {
		t.Fatalf("approved_by want 3 got %v", approved.ApprovedBy)
	}

	// 重复审批幂等
	again, err := svc.Approve(CommissionReviewInput{CommissionID: id, AdminID: 3})
	if err != nil {
		t.Fatalf("re-approve should be idempotent, got %v", err)
	}
	if again.Status != constants.CommissionStatusApproved {
		t.Fatalf("status want approved got %s", again.Status)
	}
}

func TestCommissionApproveBlockedAgent(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "100")
	policy := createTestPolicy(t, db, agent.ID, plan.ID, "1000")
	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	commissions, _ := svc.ListByPolicy(policy.ID)

	if err := db.Model(&models.Agent{}).Where("id = ?", agent.ID).Update("status", constants.AgentStatusBlocked).Error; err != nil {
		t.Fatalf("block agent failed: %v", err)
	}

	if _, err := svc.Approve(CommissionReviewInput{CommissionID: commissions[0].ID, AdminID: 1}); err != ErrAgentBlocked {
		t.Fatalf("blocked beneficiary want ErrAgentBlocked got %v", err)
	}

	// 冻结而非取消: 解除拉黑后可以正常审批
	if err := db.Model(&models.Agent{}).Where("id = ?", agent.ID).Update("status", constants.AgentStatusActive).Error; err != nil {
		t.Fatalf("unblock agent failed: %v", err)
	}
	if _, err := svc.Approve(CommissionReviewInput{CommissionID: commissions[0].ID, AdminID: 1}); err != nil {
		t.Fatalf("approve after unblock failed: %v", err)
	}
}

func TestCommissionMarkPaid(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "100")
	policy := createTestPolicy(t, db, agent.ID, plan.ID, "1000")
	if err := svc.DistributeTx(db, policy, plan); err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	commissions, _ := svc.ListByPolicy(policy.ID)
	id := commissions[0].ID

	// pending 不可直接打款
	if _, err := svc.MarkPaid(CommissionReviewInput{CommissionID: id, AdminID: 1}); err != ErrInvalidState {
		t.Fatalf("mark paid on pending want ErrInvalidState got %v", err)
	}

	if _, err := svc.Approve(CommissionReviewInput{CommissionID: id, AdminID: 1}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	paid, err := svc.MarkPaid(CommissionReviewInput{CommissionID: id, AdminID: 1})
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.CommissionStatusPaid || paid.PaidAt == nil {
		t.Fatalf("paid state wrong: %s %v", paid.Status, paid.PaidAt)
	}

	// 终态幂等
	if _, err := svc.MarkPaid(CommissionReviewInput{CommissionID: id, AdminID: 1}); err != nil {
		t.Fatalf("mark paid on paid should be idempotent, got %v", err)
	}
}

func TestCommissionApproveBulkPartialFailure(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	plan := createTestPlan(t, db, "100")
	p1 := createTestPolicy(t, db, agent.ID, plan.ID, "1000")
	p2 := createTestPolicy(t, db, agent.ID, plan.ID, "1000")
	if err := svc.DistributeTx(db, p1, plan); err != nil {
		t.Fatalf("distribute p1 failed: %v", err)
	}
	if err := svc.DistributeTx(db, p2, plan); err != nil {
		t.Fatalf("distribute p2 failed: %v", err)
	}
	c1, _ := svc.ListByPolicy(p1.ID)
	c2, _ := svc.ListByPolicy(p2.ID)

	result := svc.ApproveBulk(context.Background(), []uint{c1[0].ID, 99999, c2[0].ID}, 1, "")
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("succeeded/failed want 2/1 got %d/%d", result.Succeeded, result.Failed)
	}
	if result.Results[1].Success || result.Results[1].Error == "" {
		t.Fatalf("missing commission should fail with error, got %+v", result.Results[1])
	}
}
