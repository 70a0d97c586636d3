package service

import (
	"context"
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 佣金服务
// 分配在保单审批事务内同步执行, 一张保单恰好分配一次。
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	ruleRepo       repository.CommissionRuleRepository
	agentRepo      repository.AgentRepository
	auditSvc       *AuditService
	notifySvc      *NotificationService
}

// CommissionReviewInput 佣金审核输入
type CommissionReviewInput struct {
	CommissionID uint
	AdminID      uint
	IPAddress    string
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	ruleRepo repository.CommissionRuleRepository,
	agentRepo repository.AgentRepository,
	auditSvc *AuditService,
	notifySvc *NotificationService,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		ruleRepo:       ruleRepo,
		agentRepo:      agentRepo,
		auditSvc:       auditSvc,
		notifySvc:      notifySvc,
	}
}

// List 分页查询佣金记录
func (s *CommissionService) List(filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	return s.commissionRepo.List(filter)
}

// ListByPolicy 查询保单的整组佣金记录
func (s *CommissionService) ListByPolicy(policyID uint) ([]models.Commission, error) {
	return s.commissionRepo.ListByPolicy(policyID)
}

// DistributeTx 在保单审批事务内分配佣金
// 整组记录一次写入: 一条出单人记录(level 0)加每个实际存在的上线一条
// (最多五条)。不为不存在的层级造零额占位。已分配过则直接返回。
func (s *CommissionService) DistributeTx(tx *gorm.DB, policy *models.Policy, plan *models.PolicyPlan) error {
	txCommissionRepo := s.commissionRepo.WithTx(tx)

	exists, err := txCommissionRepo.ExistsByPolicy(policy.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	upline, err := s.resolveUplineTx(tx, policy.AgentID)
	if err != nil {
		return err
	}
	rules, err := s.ruleRepo.WithTx(tx).ListActive()
	if err != nil {
		return err
	}
	ruleByLevel := make(map[int]models.CommissionRule, len(rules))
	for _, rule := range rules {
		ruleByLevel[rule.Level] = rule
	}

	commissions := []models.Commission{
		{
			PolicyID: policy.ID,
			AgentID:  policy.AgentID,
			Level:    constants.CommissionLevelSeller,
			CommType: constants.CommissionTypeFixed,
			Base:     policy.Premium,
			Amount:   models.NewMoneyFromDecimal(plan.SellerCommission.Decimal),
			Status:   constants.CommissionStatusPending,
		},
	}
	for i, ancestor := range upline {
		level := i + 1
		rule, ok := ruleByLevel[level]
		if !ok {
			continue
		}
		commissions = append(commissions, models.Commission{
			PolicyID: policy.ID,
			AgentID:  ancestor.ID,
			Level:    level,
			CommType: rule.CommType,
			Base:     policy.Premium,
			Rate:     rule.Percentage,
			Amount:   computeCommissionAmount(rule, policy.Premium),
			Status:   constants.CommissionStatusPending,
		})
	}

	if err := txCommissionRepo.CreateBatch(commissions); err != nil {
		return err
	}
	logger.Infow("commission_distributed",
		"policy_id", policy.ID,
		"records", len(commissions),
		"upline_depth", len(upline),
	)
	return nil
}

// resolveUplineTx 事务内解析上线链, 最多五层, 带环检测
func (s *CommissionService) resolveUplineTx(tx *gorm.DB, agentID uint) ([]models.Agent, error) {
	txAgentRepo := s.agentRepo.WithTx(tx)
	agent, err := txAgentRepo.GetByID(agentID)
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
			return nil, ErrUplineCycleDetected
		}
		parent, err := txAgentRepo.GetByID(parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		visited[parentID] = struct{}{}
		chain = append(chain, *parent)
		current = parent
	}
	return chain, nil
}

// computeCommissionAmount 计算单条佣金金额
// percentage: 保费 × 百分比 / 100, 保留 2 位小数四舍五入; fixed: 规则固定额。
func computeCommissionAmount(rule models.CommissionRule, premium models.Money) models.Money {
	if rule.CommType == constants.CommissionTypeFixed {
		return models.NewMoneyFromDecimal(rule.Amount.Decimal)
	}
	amount := premium.Decimal.
		Mul(rule.Percentage.Decimal).
		Div(decimal.NewFromInt(100)).
		Round(2)
	return models.NewMoneyFromDecimal(amount)
}

// Approve 审核通过佣金
// 对已通过的记录重复审批是幂等的成功, 不报错也不重复记账; 受益代理人
// 处于拉黑状态时佣金冻结不可审批。
func (s *CommissionService) Approve(input CommissionReviewInput) (*models.Commission, error) {
	var approved *models.Commission
	var already bool
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		txCommissionRepo := s.commissionRepo.WithTx(tx)
		commission, err := txCommissionRepo.GetByIDForUpdate(input.CommissionID)
		if err != nil {
			return err
		}
		if commission == nil {
			return ErrCommissionNotFound
		}
		if commission.Status == constants.CommissionStatusApproved || commission.Status == constants.CommissionStatusPaid {
			approved = commission
			already = true
			return nil
		}
		if commission.Status != constants.CommissionStatusPending {
			return ErrInvalidState
		}

		agent, err := s.agentRepo.WithTx(tx).GetByID(commission.AgentID)
		if err != nil {
			return err
		}
		if agent != nil && agent.Status == constants.AgentStatusBlocked {
			return ErrAgentBlocked
		}

		now := time.Now()
		adminID := input.AdminID
		commission.Status = constants.CommissionStatusApproved
		commission.ApprovedBy = &adminID
		commission.ApprovedAt = &now
		if err := txCommissionRepo.Update(commission); err != nil {
			return err
		}
		approved = commission
		return nil
	})
	if err != nil {
		return nil, err
	}
	if already {
		return approved, nil
	}

	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionCommissionReview,
		EntityType: constants.AuditEntityCommission,
		EntityID:   approved.ID,
		Metadata: map[string]interface{}{
			"policy_id": approved.PolicyID,
			"agent_id":  approved.AgentID,
			"level":     approved.Level,
			"amount":    approved.Amount.String(),
		},
		IPAddress: input.IPAddress,
	})
	s.notifySvc.Notify(NotifyInput{
		AgentID:    approved.AgentID,
		Event:      constants.AuditActionCommissionReview,
		EntityType: constants.AuditEntityCommission,
		EntityID:   approved.ID,
		Body:       "Commission of " + approved.Amount.String() + " approved",
	})
	return approved, nil
}

// ApproveBulk 批量审核佣金, 单项失败不影响其余项
func (s *CommissionService) ApproveBulk(ctx context.Context, commissionIDs []uint, adminID uint, ip string) BulkResult {
	return runBulk(ctx, commissionIDs, constants.BulkDefaultConcurrency, func(id uint) error {
		_, err := s.Approve(CommissionReviewInput{CommissionID: id, AdminID: adminID, IPAddress: ip})
		return err
	})
}

// MarkPaid 标记佣金为已打款(终态)
// 只是出账留痕, 余额口径中 approved 与 paid 同计为已赚取, 不会二次记账。
func (s *CommissionService) MarkPaid(input CommissionReviewInput) (*models.Commission, error) {
	commission, err := s.commissionRepo.GetByID(input.CommissionID)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, ErrCommissionNotFound
	}
	if commission.Status == constants.CommissionStatusPaid {
		return commission, nil
	}
	if commission.Status != constants.CommissionStatusApproved {
		return nil, ErrInvalidState
	}
	now := time.Now()
	commission.Status = constants.CommissionStatusPaid
	commission.PaidAt = &now
	if err := s.commissionRepo.Update(commission); err != nil {
		return nil, err
	}
	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    input.AdminID,
		Action:     constants.AuditActionCommissionReview,
		EntityType: constants.AuditEntityCommission,
		EntityID:   commission.ID,
		Metadata: map[string]interface{}{
			"to_status": constants.CommissionStatusPaid,
		},
		IPAddress: input.IPAddress,
	})
	return commission, nil
}
