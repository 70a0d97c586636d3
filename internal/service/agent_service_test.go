package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Agent{},
		&models.PolicyPlan{},
		&models.Policy{},
		&models.CommissionRule{},
		&models.Commission{},
		&models.WithdrawalRequest{},
		&models.Claim{},
		&models.AuditLogEntry{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func setupAgentServiceTest(t *testing.T) (*AgentService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	auditSvc := NewAuditService(repository.NewAuditLogRepository(db))
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewAgentService(repository.NewAgentRepository(db), auditSvc, notifySvc), db
}

var testPhoneSeq uint64

func createTestAgent(t *testing.T, db *gorm.DB, code string, parentID *uint, level int, status string) *models.Agent {
	t.Helper()
	agent := &models.Agent{
		AgentCode:     code,
		ParentAgentID: parentID,
		Level:         level,
		Name:          "Agent " + code,
		Phone:         fmt.Sprintf("9%09d", atomic.AddUint64(&testPhoneSeq, 1)),
		PasswordHash:  "hash",
		Status:        status,
		KYCStatus:     constants.KYCStatusVerified,
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("create agent %s failed: %v", code, err)
	}
	return agent
}

func TestAgentRegisterRoot(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	agent, err := svc.Register(AgentRegisterInput{
		Name:     "Ramesh",
		Phone:    "9876500001",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if agent.AgentCode != "AG001" {
		t.Fatalf("agent code want AG001 got %s", agent.AgentCode)
	}
	if agent.Level != 1 {
		t.Fatalf("level want 1 got %d", agent.Level)
	}
	if agent.Status != constants.AgentStatusPending {
		t.Fatalf("status want pending got %s", agent.Status)
	}
	if agent.KYCStatus != constants.KYCStatusNotSubmitted {
		t.Fatalf("kyc status want not_submitted got %s", agent.KYCStatus)
	}

	second, err := svc.Register(AgentRegisterInput{
		Name:     "Suresh",
		Phone:    "9876500002",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register second root failed: %v", err)
	}
	if second.AgentCode != "AG002" {
		t.Fatalf("second root code want AG002 got %s", second.AgentCode)
	}

	var auditCount int64
	db.Model(&models.AuditLogEntry{}).Where("action = ?", constants.AuditActionAgentRegister).Count(&auditCount)
	if auditCount != 2 {
		t.Fatalf("audit entries want 2 got %d", auditCount)
	}
}

func TestAgentRegisterWithReferral(t *testing.T) {
	svc, _ := setupAgentServiceTest(t)

	root, err := svc.Register(AgentRegisterInput{Name: "Root", Phone: "9000000001", Password: "secret123"})
	if err != nil {
		t.Fatalf("register root failed: %v", err)
	}

	// 待审上级不可接收下级, 对外与编码不存在同样表现
	if _, err := svc.Register(AgentRegisterInput{
		Name: "Child", Phone: "9000000002", Password: "secret123", ReferralCode: root.AgentCode,
	}); err != ErrUplineNotFound {
		t.Fatalf("pending parent want ErrUplineNotFound got %v", err)
	}

	if _, err := svc.Approve(AgentReviewInput{AgentID: root.ID, AdminID: 1}); err != nil {
		t.Fatalf("approve root failed: %v", err)
	}

	child, err := svc.Register(AgentRegisterInput{
		Name: "Child", Phone: "9000000002", Password: "secret123", ReferralCode: root.AgentCode,
	})
	if err != nil {
		t.Fatalf("register child failed: %v", err)
	}
	if child.AgentCode != root.AgentCode+"-1" {
		t.Fatalf("child code want %s-1 got %s", root.AgentCode, child.AgentCode)
	}
	if child.Level != 2 {
		t.Fatalf("child level want 2 got %d", child.Level)
	}
	if child.ParentAgentID == nil || *child.ParentAgentID != root.ID {
		t.Fatalf("child parent want %d got %v", root.ID, child.ParentAgentID)
	}
}

func TestAgentRegisterDuplicatePhone(t *testing.T) {
	svc, _ := setupAgentServiceTest(t)

	if _, err := svc.Register(AgentRegisterInput{Name: "A", Phone: "9111100001", Password: "secret123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(AgentRegisterInput{Name: "B", Phone: "9111100001", Password: "secret123"}); err != ErrAgentPhoneExists {
		t.Fatalf("duplicate phone want ErrAgentPhoneExists got %v", err)
	}
}

func TestAgentRegisterLevelLimit(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	leaf := createTestAgent(t, db, "AG001", nil, constants.MaxAgentLevel, constants.AgentStatusActive)
	if _, err := svc.Register(AgentRegisterInput{
		Name: "TooDeep", Phone: "9222200001", Password: "secret123", ReferralCode: leaf.AgentCode,
	}); err != ErrLevelLimitExceeded {
		t.Fatalf("level limit want ErrLevelLimitExceeded got %v", err)
	}
}

func TestAgentRegisterUnknownReferral(t *testing.T) {
	svc, _ := setupAgentServiceTest(t)

	if _, err := svc.Register(AgentRegisterInput{
		Name: "Orphan", Phone: "9333300001", Password: "secret123", ReferralCode: "AG999",
	}); err != ErrUplineNotFound {
		t.Fatalf("unknown referral want ErrUplineNotFound got %v", err)
	}
}

func TestResolveUplineChain(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	a2 := createTestAgent(t, db, "AG001-1", &a1.ID, 2, constants.AgentStatusActive)
	a3 := createTestAgent(t, db, "AG001-1-1", &a2.ID, 3, constants.AgentStatusBlocked)
	a4 := createTestAgent(t, db, "AG001-1-1-1", &a3.ID, 4, constants.AgentStatusActive)

	chain, err := svc.ResolveUpline(a4.ID)
	if err != nil {
		t.Fatalf("resolve upline failed: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length want 3 got %d", len(chain))
	}
	// 自下而上: 直接上级在前
	if chain[0].ID != a3.ID || chain[1].ID != a2.ID || chain[2].ID != a1.ID {
		t.Fatalf("chain order wrong: %d %d %d", chain[0].ID, chain[1].ID, chain[2].ID)
	}
}

func TestResolveUplineCycle(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	a2 := createTestAgent(t, db, "AG001-1", &a1.ID, 2, constants.AgentStatusActive)
	// 人为制造环
	if err := db.Model(&models.Agent{}).Where("id = ?", a1.ID).Update("parent_agent_id", a2.ID).Error; err != nil {
		t.Fatalf("corrupt parent failed: %v", err)
	}

	if _, err := svc.ResolveUpline(a2.ID); err != ErrUplineCycleDetected {
		t.Fatalf("cycle want ErrUplineCycleDetected got %v", err)
	}
}

func TestResolveUplineDanglingParent(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	missing := uint(9999)
	a1 := createTestAgent(t, db, "AG001", &missing, 2, constants.AgentStatusActive)

	chain, err := svc.ResolveUpline(a1.ID)
	if err != nil {
		t.Fatalf("resolve upline failed: %v", err)
	}
	if len(chain) != 0 {
		t.Fatalf("dangling parent should cut chain, got %d", len(chain))
	}
}

func TestAgentReviewTransitions(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusPending)

	approved, err := svc.Approve(AgentReviewInput{AgentID: agent.ID, AdminID: 7})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.AgentStatusActive {
		t.Fatalf("status want active got %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != 7 {
		t.Fatalf("reviewed_by want 7 got %v", approved.ReviewedBy)
	}

	// 二次审批拒绝
	if _, err := svc.Approve(AgentReviewInput{AgentID: agent.ID, AdminID: 7}); err != ErrInvalidState {
		t.Fatalf("re-approve want ErrInvalidState got %v", err)
	}

	// 拒绝必须填写原因
	pending := createTestAgent(t, db, "AG002", nil, 1, constants.AgentStatusPending)
	if _, err := svc.Reject(AgentReviewInput{AgentID: pending.ID, AdminID: 7}); err != ErrValidation {
		t.Fatalf("reject without reason want ErrValidation got %v", err)
	}
	rejected, err := svc.Reject(AgentReviewInput{AgentID: pending.ID, AdminID: 7, Reason: "incomplete documents"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.AgentStatusRejected || rejected.StatusReason == "" {
		t.Fatalf("reject state wrong: %s %q", rejected.Status, rejected.StatusReason)
	}
}

func TestAgentBlockBumpsTokenVersion(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	before := agent.TokenVersion

	blocked, err := svc.Block(AgentReviewInput{AgentID: agent.ID, AdminID: 1, Reason: "fraud suspicion"})
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if blocked.Status != constants.AgentStatusBlocked {
		t.Fatalf("status want blocked got %s", blocked.Status)
	}
	if blocked.TokenVersion != before+1 {
		t.Fatalf("token version want %d got %d", before+1, blocked.TokenVersion)
	}

	unblocked, err := svc.Unblock(AgentReviewInput{AgentID: agent.ID, AdminID: 1})
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if unblocked.Status != constants.AgentStatusActive {
		t.Fatalf("status want active got %s", unblocked.Status)
	}
}

func TestAgentDeleteGuardsDownline(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	parent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	child := createTestAgent(t, db, "AG001-1", &parent.ID, 2, constants.AgentStatusActive)

	if err := svc.Delete(AgentReviewInput{AgentID: parent.ID, AdminID: 1}); err != ErrAgentHasDownline {
		t.Fatalf("delete parent want ErrAgentHasDownline got %v", err)
	}

	if err := svc.Delete(AgentReviewInput{AgentID: child.ID, AdminID: 1}); err != nil {
		t.Fatalf("delete leaf failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.Agent{}).Where("id = ?", child.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("leaf still visible after delete")
	}

	// 下级删除后, 上级可删除
	if err := svc.Delete(AgentReviewInput{AgentID: parent.ID, AdminID: 1}); err != nil {
		t.Fatalf("delete parent after leaf removed failed: %v", err)
	}

	if err := svc.Delete(AgentReviewInput{AgentID: 9999, AdminID: 1}); err != ErrAgentNotFound {
		t.Fatalf("delete unknown want ErrAgentNotFound got %v", err)
	}
}

func TestAgentCodeNotReusedAfterDelete(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	root := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)

	first, err := svc.Register(AgentRegisterInput{
		Name: "C1", Phone: "9100000001", Password: "secret123", ReferralCode: root.AgentCode,
	})
	if err != nil {
		t.Fatalf("register first child failed: %v", err)
	}
	second, err := svc.Register(AgentRegisterInput{
		Name: "C2", Phone: "9100000002", Password: "secret123", ReferralCode: root.AgentCode,
	})
	if err != nil {
		t.Fatalf("register second child failed: %v", err)
	}
	if first.AgentCode != "AG001-1" || second.AgentCode != "AG001-2" {
		t.Fatalf("child codes want AG001-1/AG001-2 got %s/%s", first.AgentCode, second.AgentCode)
	}

	if err := svc.Delete(AgentReviewInput{AgentID: second.ID, AdminID: 1}); err != nil {
		t.Fatalf("delete second child failed: %v", err)
	}

	// 已删除行仍占用编码唯一索引, 新注册不得复用其序号
	third, err := svc.Register(AgentRegisterInput{
		Name: "C3", Phone: "9100000003", Password: "secret123", ReferralCode: root.AgentCode,
	})
	if err != nil {
		t.Fatalf("register after delete failed: %v", err)
	}
	if third.AgentCode != "AG001-3" {
		t.Fatalf("child code after delete want AG001-3 got %s", third.AgentCode)
	}

	// 根代理人同理
	spareRoot, err := svc.Register(AgentRegisterInput{Name: "R2", Phone: "9100000004", Password: "secret123"})
	if err != nil {
		t.Fatalf("register second root failed: %v", err)
	}
	if spareRoot.AgentCode != "AG002" {
		t.Fatalf("second root code want AG002 got %s", spareRoot.AgentCode)
	}
	if err := svc.Delete(AgentReviewInput{AgentID: spareRoot.ID, AdminID: 1}); err != nil {
		t.Fatalf("delete second root failed: %v", err)
	}
	newRoot, err := svc.Register(AgentRegisterInput{Name: "R3", Phone: "9100000005", Password: "secret123"})
	if err != nil {
		t.Fatalf("register root after delete failed: %v", err)
	}
	if newRoot.AgentCode != "AG003" {
		t.Fatalf("root code after delete want AG003 got %s", newRoot.AgentCode)
	}
}

func TestAgentBulkApprovePartialFailure(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	a1 := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusPending)
	a2 := createTestAgent(t, db, "AG002", nil, 1, constants.AgentStatusActive) // 已激活, 审批会失败
	a3 := createTestAgent(t, db, "AG003", nil, 1, constants.AgentStatusPending)

	result := svc.BulkApprove(context.Background(), []uint{a1.ID, a2.ID, a3.ID, 9999}, 1, "")
	if result.Total != 4 {
		t.Fatalf("total want 4 got %d", result.Total)
	}
	if result.Succeeded != 2 || result.Failed != 2 {
		t.Fatalf("succeeded/failed want 2/2 got %d/%d", result.Succeeded, result.Failed)
	}
	// 结果按输入顺序返回
	wantIDs := []uint{a1.ID, a2.ID, a3.ID, 9999}
	for i, item := range result.Results {
		if item.ID != wantIDs[i] {
			t.Fatalf("item %d id want %d got %d", i, wantIDs[i], item.ID)
		}
	}
	if !result.Results[0].Success || result.Results[1].Success || !result.Results[2].Success || result.Results[3].Success {
		t.Fatalf("success flags wrong: %+v", result.Results)
	}
}

func TestAgentKYCFlow(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	if err := db.Model(&models.Agent{}).Where("id = ?", agent.ID).Update("kyc_status", constants.KYCStatusNotSubmitted).Error; err != nil {
		t.Fatalf("reset kyc failed: %v", err)
	}

	submitted, err := svc.SubmitKYC(AgentKYCInput{
		AgentID:          agent.ID,
		AadhaarNumber:    "123412341234",
		PANNumber:        "abcde1234f",
		AadhaarPhotoPath: "/uploads/kyc/aadhaar.jpg",
		PANPhotoPath:     "/uploads/kyc/pan.jpg",
	})
	if err != nil {
		t.Fatalf("submit kyc failed: %v", err)
	}
	if submitted.KYCStatus != constants.KYCStatusPending {
		t.Fatalf("kyc status want pending got %s", submitted.KYCStatus)
	}
	if submitted.PANNumber != "ABCDE1234F" {
		t.Fatalf("pan should be uppercased, got %s", submitted.PANNumber)
	}

	// 审核中不可重复提交
	if _, err := svc.SubmitKYC(AgentKYCInput{
		AgentID:       agent.ID,
		AadhaarNumber: "123412341234",
		PANNumber:     "ABCDE1234F",
	}); err != ErrInvalidState {
		t.Fatalf("resubmit want ErrInvalidState got %v", err)
	}

	verified, err := svc.VerifyKYC(AgentReviewInput{AgentID: agent.ID, AdminID: 1})
	if err != nil {
		t.Fatalf("verify kyc failed: %v", err)
	}
	if verified.KYCStatus != constants.KYCStatusVerified {
		t.Fatalf("kyc status want verified got %s", verified.KYCStatus)
	}
}

func TestUpdateBankDetails(t *testing.T) {
	svc, db := setupAgentServiceTest(t)

	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	updated, err := svc.UpdateBankDetails(AgentBankDetailsInput{
		AgentID:           agent.ID,
		BankAccountName:   "Ramesh Kumar",
		BankAccountNumber: "123456789012",
		BankIFSC:          "sbin0001234",
	})
	if err != nil {
		t.Fatalf("update bank details failed: %v", err)
	}
	if !updated.HasBankDetails() {
		t.Fatalf("bank details should be set")
	}
	if updated.BankIFSC != "SBIN0001234" {
		t.Fatalf("ifsc should be uppercased, got %s", updated.BankIFSC)
	}

	blocked := createTestAgent(t, db, "AG002", nil, 1, constants.AgentStatusBlocked)
	if _, err := svc.UpdateBankDetails(AgentBankDetailsInput{
		AgentID:           blocked.ID,
		BankAccountName:   "X",
		BankAccountNumber: "1",
		BankIFSC:          "Y",
	}); err != ErrAgentBlocked {
		t.Fatalf("blocked agent want ErrAgentBlocked got %v", err)
	}
}
