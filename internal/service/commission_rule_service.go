package service

import (
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionRuleService 分润规则服务
// 规则修改只对之后的分配生效, 历史佣金记录保留创建时快照。
type CommissionRuleService struct {
	ruleRepo repository.CommissionRuleRepository
	auditSvc *AuditService
}

// CommissionRuleInput 单条规则输入
type CommissionRuleInput struct {
	Level      int
	CommType   string
	Percentage models.Money
	Amount     models.Money
	IsActive   bool
}

// NewCommissionRuleService 创建分润规则服务
func NewCommissionRuleService(ruleRepo repository.CommissionRuleRepository, auditSvc *AuditService) *CommissionRuleService {
	return &CommissionRuleService{ruleRepo: ruleRepo, auditSvc: auditSvc}
}

// ListAll 获取全部规则
func (s *CommissionRuleService) ListAll() ([]models.CommissionRule, error) {
	return s.ruleRepo.ListAll()
}

// UpdateRules 批量更新分润规则
// 逐层校验后逐条保存; 层级缺失的规则保持不变。
func (s *CommissionRuleService) UpdateRules(inputs []CommissionRuleInput, adminID uint, ip string) ([]models.CommissionRule, error) {
	if len(inputs) == 0 {
		return nil, ErrValidation
	}
	for _, input := range inputs {
		if err := validateRuleInput(input); err != nil {
			return nil, err
		}
	}

	updated := make([]models.CommissionRule, 0, len(inputs))
	for _, input := range inputs {
		rule, err := s.ruleRepo.GetByLevel(input.Level)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			rule = &models.CommissionRule{Level: input.Level}
		}
		rule.CommType = input.CommType
		rule.Percentage = input.Percentage
		rule.Amount = input.Amount
		rule.IsActive = input.IsActive
		rule.UpdatedBy = &adminID
		if err := s.ruleRepo.Save(rule); err != nil {
			return nil, err
		}
		updated = append(updated, *rule)

		s.auditSvc.Record(AuditRecordInput{
			ActorType:  constants.AuditActorAdmin,
			ActorID:    adminID,
			Action:     constants.AuditActionRuleUpdate,
			EntityType: constants.AuditEntityRule,
			EntityID:   rule.ID,
			Metadata: map[string]interface{}{
				"level":      rule.Level,
				"comm_type":  rule.CommType,
				"percentage": rule.Percentage.String(),
				"amount":     rule.Amount.String(),
				"is_active":  rule.IsActive,
			},
			IPAddress: ip,
		})
	}
	return updated, nil
}

func validateRuleInput(input CommissionRuleInput) error {
	if input.Level < 1 || input.Level > constants.MaxUplineLevels {
		return ErrRuleLevelInvalid
	}
	switch input.CommType {
	case constants.CommissionTypePercentage:
		if input.Percentage.Decimal.IsNegative() || input.Percentage.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrValidation
		}
	case constants.CommissionTypeFixed:
		if input.Amount.Decimal.IsNegative() {
			return ErrValidation
		}
	default:
		return ErrValidation
	}
	return nil
}
