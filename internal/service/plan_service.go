package service

import (
	"strings"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"

	"github.com/shopspring/decimal"
)

// PlanService 保险方案服务
// 方案修改不回溯: 已出保单保留创建时的快照。
type PlanService struct {
	planRepo repository.PlanRepository
	auditSvc *AuditService
}

// PlanInput 保险方案输入
type PlanInput struct {
	Name             string
	CattleType       string
	Premium          models.Money
	CoverageAmount   models.Money
	DurationMonths   int
	SellerCommission models.Money
	IsActive         bool
}

// NewPlanService 创建保险方案服务
func NewPlanService(planRepo repository.PlanRepository, auditSvc *AuditService) *PlanService {
	return &PlanService{planRepo: planRepo, auditSvc: auditSvc}
}

// GetByID 按ID获取方案
func (s *PlanService) GetByID(planID uint) (*models.PolicyPlan, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// List 分页查询方案
func (s *PlanService) List(filter repository.PlanListFilter) ([]models.PolicyPlan, int64, error) {
	return s.planRepo.List(filter)
}

// Create 创建方案
func (s *PlanService) Create(input PlanInput, adminID uint, ip string) (*models.PolicyPlan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}
	plan := &models.PolicyPlan{
		Name:             strings.TrimSpace(input.Name),
		CattleType:       strings.ToLower(strings.TrimSpace(input.CattleType)),
		Premium:          input.Premium,
		CoverageAmount:   input.CoverageAmount,
		DurationMonths:   input.DurationMonths,
		SellerCommission: input.SellerCommission,
		IsActive:         input.IsActive,
	}
	if plan.DurationMonths <= 0 {
		plan.DurationMonths = 12
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	s.recordAudit(plan, adminID, ip, "create")
	return plan, nil
}

// Update 更新方案
func (s *PlanService) Update(planID uint, input PlanInput, adminID uint, ip string) (*models.PolicyPlan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}
	plan, err := s.GetByID(planID)
	if err != nil {
		return nil, err
	}
	plan.Name = strings.TrimSpace(input.Name)
	plan.CattleType = strings.ToLower(strings.TrimSpace(input.CattleType))
	plan.Premium = input.Premium
	plan.CoverageAmount = input.CoverageAmount
	plan.SellerCommission = input.SellerCommission
	plan.IsActive = input.IsActive
	if input.DurationMonths > 0 {
		plan.DurationMonths = input.DurationMonths
	}
	if err := s.planRepo.Update(plan); err != nil {
		return nil, err
	}
	s.recordAudit(plan, adminID, ip, "update")
	return plan, nil
}

// UpdateSellerCommission 单独调整出单人固定佣金
func (s *PlanService) UpdateSellerCommission(planID uint, amount models.Money, adminID uint, ip string) (*models.PolicyPlan, error) {
	if amount.Decimal.IsNegative() {
		return nil, ErrValidation
	}
	plan, err := s.GetByID(planID)
	if err != nil {
		return nil, err
	}
	plan.SellerCommission = amount
	if err := s.planRepo.Update(plan); err != nil {
		return nil, err
	}
	s.recordAudit(plan, adminID, ip, "seller_commission")
	return plan, nil
}

func (s *PlanService) recordAudit(plan *models.PolicyPlan, adminID uint, ip, operation string) {
	s.auditSvc.Record(AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    adminID,
		Action:     constants.AuditActionPlanUpdate,
		EntityType: constants.AuditEntityPlan,
		EntityID:   plan.ID,
		Metadata: map[string]interface{}{
			"operation":         operation,
			"premium":           plan.Premium.String(),
			"seller_commission": plan.SellerCommission.String(),
			"is_active":         plan.IsActive,
		},
		IPAddress: ip,
	})
}

func validatePlanInput(input PlanInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.CattleType) == "" {
		return ErrValidation
	}
	if input.Premium.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrValidation
	}
	if input.CoverageAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrValidation
	}
	if input.SellerCommission.Decimal.IsNegative() {
		return ErrValidation
	}
	return nil
}
