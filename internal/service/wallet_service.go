package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 提现审批决定
const (
	WithdrawalDecisionApprove = "approve"
	WithdrawalDecisionReject  = "reject"
	WithdrawalDecisionPay     = "pay"
)

// WalletService 钱包服务
// 余额永远由佣金与提现流水推导, 不维护可变的余额字段。
type WalletService struct {
	commissionRepo repository.CommissionRepository
	withdrawalRepo repository.WithdrawalRepository
	agentRepo      repository.AgentRepository
	auditSvc       *AuditService
	notifySvc      *NotificationService
	minWithdrawal  models.Money
}

// WalletBalance 钱包余额视图
type WalletBalance struct {
	AgentID           uint         `json:"agent_id"`
	TotalEarned       models.Money `json:"total_earned"`       // approved + paid 佣金
	PendingCommission models.Money `json:"pending_commission"` // 待审佣金, 不可提
	Withdrawn         models.Money `json:"withdrawn"`          // approved + paid 提现
	Reserved          models.Money `json:"reserved"`           // pending 提现占用
	Available         models.Money `json:"available"`          // 可申请提现金额
}

// WithdrawalRequestInput 提现申请输入
type WithdrawalRequestInput struct {
	AgentID   uint
	Amount    models.Money
	IPAddress string
}

// WithdrawalSettleInput 提现审批输入
type WithdrawalSettleInput struct {
	RequestID uint
	AdminID   uint
	Decision  string
	Reason    string
	IPAddress string
}

// NewWalletService 创建钱包服务
func NewWalletService(
	commissionRepo repository.CommissionRepository,
	withdrawalRepo repository.WithdrawalRepository,
	agentRepo repository.AgentRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
	minWithdrawal models.Money,
) *WalletService {
	if minWithdrawal.Decimal.LessThanOrEqual(decimal.Zero) {
		minWithdrawal = models.NewMoneyFromInt(constants.MinWithdrawalAmount)
	}
	return &WalletService{
		commissionRepo: commissionRepo,
		withdrawalRepo: withdrawalRepo,
		agentRepo:      agentRepo,
		auditSvc:       auditSvc,
		notifySvc:      notifySvc,
		minWithdrawal:  minWithdrawal,
	}
}

// Balance 计算代理人钱包余额
func (s *WalletService) Balance(agentID uint) (*WalletBalance, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	return s.computeBalance(s.commissionRepo, s.withdrawalRepo, agentID)
}

// computeBalance 从佣金与提现流水推导余额
func (s *WalletService) computeBalance(
	commissionRepo repository.CommissionRepository,
	withdrawalRepo repository.WithdrawalRepository,
	agentID uint,
) (*WalletBalance, error) {
	earned, err := commissionRepo.SumByAgent(agentID, []string{
		constants.CommissionStatusApproved,
		constants.CommissionStatusPaid,
	})
	if err != nil {
		return nil, err
	}
	pending, err := commissionRepo.SumByAgent(agentID, []string{constants.CommissionStatusPending})
	if err != nil {
		return nil, err
	}
	withdrawn, err := withdrawalRepo.SumByAgent(agentID, []string{
		constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusPaid,
	})
	if err != nil {
		return nil, err
	}
	reserved, err := withdrawalRepo.SumByAgent(agentID, []string{constants.WithdrawalStatusPending})
	if err != nil {
		return nil, err
	}

	available := earned.Sub(withdrawn).Sub(reserved)
	if available.IsNegative() {
		// 账面不应出现负数, 出现说明流水异常
		logger.Errorw("wallet_negative_available",
			"agent_id", agentID,
			"available", available.String(),
		)
		available = decimal.Zero
	}
	return &WalletBalance{
		AgentID:           agentID,
		TotalEarned:       models.NewMoneyFromDecimal(earned),
		PendingCommission: models.NewMoneyFromDecimal(pending),
		Withdrawn:         models.NewMoneyFromDecimal(withdrawn),
		Reserved:          models.NewMoneyFromDecimal(reserved),
		Available:         models.NewMoneyFromDecimal(available),
	}, nil
}

// RequestWithdrawal 代理人发起提现
// 事务内锁定代理人行后做余额检查再落单, 并发申请不会双重占用余额。
func (s *WalletService) RequestWithdrawal(input WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	if input.Amount.Decimal.LessThan(s.minWithdrawal.Decimal) {
		return nil, ErrBelowMinWithdrawal
	}

	var request *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		agent, err := s.agentRepo.WithTx(tx).GetByIDForUpdate(input.AgentID)
		if err != nil {
			return err
		}
		if agent == nil {
			return ErrAgentNotFound
		}
		if agent.Status != constants.AgentStatusActive {
			return ErrAgentNotActive
		}
		if !agent.HasBankDetails() {
			return ErrMissingBankDetails
		}

		balance, err := s.computeBalance(s.commissionRepo.WithTx(tx), s.withdrawalRepo.WithTx(tx), agent.ID)
		if err != nil {
			return err
		}
		if input.Amount.Decimal.GreaterThan(balance.Available.Decimal) {
			return ErrInsufficientBalance
		}

		request = &models.WithdrawalRequest{
			AgentID:           agent.ID,
			Amount:            input.Amount,
			Status:            constants.WithdrawalStatusPending,
			BankAccountName:   agent.BankAccountName,
			BankAccountNumber: agent.BankAccountNumber,
			BankIFSC:          agent.BankIFSC,
		}
		return s.withdrawalRepo.WithTx(tx).Create(request)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAgent,
		ActorID:    input.AgentID,
		Action:     constants.AuditActionWithdrawRequest,
		EntityType: constants.AuditEntityWithdrawal,
		EntityID:   request.ID,
		Metadata: map[string]interface{}{
			"amount": request.Amount.String(),
		},
		IPAddress: input.IPAddress,
	})
	logger.Infow("withdrawal_requested",
		"request_id", request.ID,
		"agent_id", input.AgentID,
		"amount", request.Amount.String(),
	)
	return request, nil
}

// Settle 管理员处理提现申请
// approve: pending -> approved; reject: pending -> rejected(必填原因,
// 释放占用); pay: approved -> paid(打款完成终态)。
func (s *WalletService) Settle(input WithdrawalSettleInput) (*models.WithdrawalRequest, error) {
	var settled *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		txWithdrawalRepo := s.withdrawalRepo.WithTx(tx)
		request, err := txWithdrawalRepo.GetByIDForUpdate(input.RequestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}

		now := time.Now()
		adminID := input.AdminID
		switch input.Decision {
		case WithdrawalDecisionApprove:
			if request.Status != constants.WithdrawalStatusPending {
				return ErrInvalidState
			}
			request.Status = constants.WithdrawalStatusApproved
			request.ProcessedBy = &adminID
			request.ProcessedAt = &now
		case WithdrawalDecisionReject:
			if strings.TrimSpace(input.Reason) == "" {
				return ErrValidation
			}
			if request.Status != constants.WithdrawalStatusPending {
				return ErrInvalidState
			}
			request.Status = constants.WithdrawalStatusRejected
			request.RejectReason = strings.TrimSpace(input.Reason)
			request.ProcessedBy = &adminID
			request.ProcessedAt = &now
		case WithdrawalDecisionPay:
			if request.Status != constants.WithdrawalStatusApproved {
				return ErrInvalidState
			}
			request.Status = constants.WithdrawalStatusPaid
			request.PaidAt = &now
		default:
			return ErrValidation
		}

		if err := txWithdrawalRepo.Update(request); err != nil {
			return err
		}
		settled = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionWithdrawReview,
		EntityType: constants.AuditEntityWithdrawal,
		EntityID:   settled.ID,
		Metadata: map[string]interface{}{
			"decision":  input.Decision,
			"to_status": settled.Status,
			"amount":    settled.Amount.String(),
			"reason":    settled.RejectReason,
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    settled.AgentID,
		Event:      constants.AuditActionWithdrawReview,
		EntityType: constants.AuditEntityWithdrawal,
		EntityID:   settled.ID,
		Body:       fmt.Sprintf("Withdrawal of %s is now %s", settled.Amount.String(), settled.Status),
	})
	return settled, nil
}

// GetRequest 按ID获取提现申请
func (s *WalletService) GetRequest(requestID uint) (*models.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrWithdrawalNotFound
	}
	return request, nil
}

// ListRequests 分页查询提现申请
func (s *WalletService) ListRequests(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.List(filter)
}
