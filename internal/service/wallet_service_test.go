package service

import (
	"testing"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	auditSvc := NewAuditService(repository.NewAuditLogRepository(db))
	notifySvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewWalletService(
		repository.NewCommissionRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewAgentRepository(db),
		auditSvc,
		notifySvc,
		models.NewMoneyFromInt(100),
	)
	return svc, db
}

func seedCommission(t *testing.T, db *gorm.DB, policyID, agentID uint, level int, amount, status string) {
	t.Helper()
	commission := models.Commission{
		PolicyID: policyID,
		AgentID:  agentID,
		Level:    level,
		CommType: constants.CommissionTypeFixed,
		Base:     moneyFromString(t, amount),
		Amount:   moneyFromString(t, amount),
		Status:   status,
	}
	if err := db.Create(&commission).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
}

func seedWithdrawal(t *testing.T, db *gorm.DB, agentID uint, amount, status string) *models.WithdrawalRequest {
	t.Helper()
	request := &models.WithdrawalRequest{
		AgentID:           agentID,
		Amount:            moneyFromString(t, amount),
		Status:            status,
		BankAccountName:   "Agent",
		BankAccountNumber: "123456789012",
		BankIFSC:          "SBIN0001234",
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	return request
}

func withBankDetails(t *testing.T, db *gorm.DB, agentID uint) {
	t.Helper()
	err := db.Model(&models.Agent{}).Where("id = ?", agentID).Updates(map[string]interface{}{
		"bank_account_name":   "Agent",
		"bank_account_number": "123456789012",
		"bank_ifsc":           "SBIN0001234",
	}).Error
	if err != nil {
		t.Fatalf("set bank details failed: %v", err)
	}
}

func TestWalletBalanceDerivation(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)

	seedCommission(t, db, 1, agent.ID, 0, "120", constants.CommissionStatusApproved)
	seedCommission(t, db, 2, agent.ID, 0, "80", constants.CommissionStatusPaid)
	seedCommission(t, db, 3, agent.ID, 1, "50", constants.CommissionStatusPending)
	seedWithdrawal(t, db, agent.ID, "40", constants.WithdrawalStatusApproved)
	seedWithdrawal(t, db, agent.ID, "30", constants.WithdrawalStatusPending)
	seedWithdrawal(t, db, agent.ID, "25", constants.WithdrawalStatusRejected)

	balance, err := svc.Balance(agent.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	// earned = 120 + 80; pending 佣金不计入
	if !balance.TotalEarned.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("earned want 200 got %s", balance.TotalEarned.String())
	}
	if !balance.PendingCommission.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("pending commission want 50 got %s", balance.PendingCommission.String())
	}
	// withdrawn = 40; rejected 不计
	if !balance.Withdrawn.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("withdrawn want 40 got %s", balance.Withdrawn.String())
	}
	// reserved = 30
	if !balance.Reserved.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("reserved want 30 got %s", balance.Reserved.String())
	}
	// available = 200 - 40 - 30 = 130
	if !balance.Available.Decimal.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("available want 130 got %s", balance.Available.String())
	}
}

func TestWalletBalanceNegativeClamped(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)

	seedCommission(t, db, 1, agent.ID, 0, "50", constants.CommissionStatusApproved)
	seedWithdrawal(t, db, agent.ID, "80", constants.WithdrawalStatusPaid)

	balance, err := svc.Balance(agent.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Available.Decimal.Equal(decimal.Zero) {
		t.Fatalf("negative available should clamp to 0, got %s", balance.Available.String())
	}
}

func TestRequestWithdrawalBelowMinimum(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	withBankDetails(t, db, agent.ID)
	seedCommission(t, db, 1, agent.ID, 0, "500", constants.CommissionStatusApproved)

	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "99.99"),
	}); err != ErrBelowMinWithdrawal {
		t.Fatalf("below minimum want ErrBelowMinWithdrawal got %v", err)
	}
}

func TestRequestWithdrawalMissingBankDetails(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	seedCommission(t, db, 1, agent.ID, 0, "500", constants.CommissionStatusApproved)

	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "200"),
	}); err != ErrMissingBankDetails {
		t.Fatalf("missing bank details want ErrMissingBankDetails got %v", err)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	withBankDetails(t, db, agent.ID)
	seedCommission(t, db, 1, agent.ID, 0, "150", constants.CommissionStatusApproved)
	// 待审佣金不可提
	seedCommission(t, db, 2, agent.ID, 0, "1000", constants.CommissionStatusPending)

	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "200"),
	}); err != ErrInsufficientBalance {
		t.Fatalf("insufficient balance want ErrInsufficientBalance got %v", err)
	}
}

func TestRequestWithdrawalReservesBalance(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	withBankDetails(t, db, agent.ID)
	seedCommission(t, db, 1, agent.ID, 0, "300", constants.CommissionStatusApproved)

	request, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "200"),
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if request.Status != constants.WithdrawalStatusPending {
		t.Fatalf("status want pending got %s", request.Status)
	}
	// 银行信息为申请时快照
	if request.BankIFSC != "SBIN0001234" {
		t.Fatalf("bank snapshot missing, got %q", request.BankIFSC)
	}

	// 剩余可提 100, 再申请 150 被拒
	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "150"),
	}); err != ErrInsufficientBalance {
		t.Fatalf("reserved balance should be unavailable, got %v", err)
	}

	// 刚好 100 可以
	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "100"),
	}); err != nil {
		t.Fatalf("withdrawal of remaining balance failed: %v", err)
	}
}

func TestRequestWithdrawalInactiveAgent(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusBlocked)
	withBankDetails(t, db, agent.ID)
	seedCommission(t, db, 1, agent.ID, 0, "500", constants.CommissionStatusApproved)

	if _, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "200"),
	}); err != ErrAgentNotActive {
		t.Fatalf("blocked agent want ErrAgentNotActive got %v", err)
	}
}

func TestSettleWithdrawal(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	request := seedWithdrawal(t, db, agent.ID, "200", constants.WithdrawalStatusPending)

	// 拒绝必须填写原因
	if _, err := svc.Settle(WithdrawalSettleInput{
		RequestID: request.ID, AdminID: 1, Decision: WithdrawalDecisionReject,
	}); err != ErrValidation {
		t.Fatalf("reject without reason want ErrValidation got %v", err)
	}

	approved, err := svc.Settle(WithdrawalSettleInput{
		RequestID: request.ID, AdminID: 1, Decision: WithdrawalDecisionApprove,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}

	// approved 不能再 approve
	if _, err := svc.Settle(WithdrawalSettleInput{
		RequestID: request.ID, AdminID: 1, Decision: WithdrawalDecisionApprove,
	}); err != ErrInvalidState {
		t.Fatalf("re-approve want ErrInvalidState got %v", err)
	}

	paid, err := svc.Settle(WithdrawalSettleInput{
		RequestID: request.ID, AdminID: 1, Decision: WithdrawalDecisionPay,
	})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if paid.Status != constants.WithdrawalStatusPaid || paid.PaidAt == nil {
		t.Fatalf("paid state wrong: %s %v", paid.Status, paid.PaidAt)
	}
}

func TestSettleWithdrawalRejectReleasesReserve(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	agent := createTestAgent(t, db, "AG001", nil, 1, constants.AgentStatusActive)
	withBankDetails(t, db, agent.ID)
	seedCommission(t, db, 1, agent.ID, 0, "300", constants.CommissionStatusApproved)

	request, err := svc.RequestWithdrawal(WithdrawalRequestInput{
		AgentID: agent.ID,
		Amount:  moneyFromString(t, "250"),
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}

	if _, err := svc.Settle(WithdrawalSettleInput{
		RequestID: request.ID, AdminID: 1, Decision: WithdrawalDecisionReject, Reason: "bank account mismatch",
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	balance, err := svc.Balance(agent.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	// 拒绝后占用释放, 全额恢复可提
	if !balance.Available.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("available want 300 got %s", balance.Available.String())
	}
}
