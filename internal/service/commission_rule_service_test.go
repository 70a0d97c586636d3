package service

import (
	"testing"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
)

func TestUpdateCommissionRules(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewCommissionRuleService(
		repository.NewCommissionRuleRepository(db),
		NewAuditService(repository.NewAuditLogRepository(db)),
	)

	updated, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 1, CommType: constants.CommissionTypePercentage, Percentage: moneyFromString(t, "5"), IsActive: true},
		{Level: 2, CommType: constants.CommissionTypeFixed, Amount: moneyFromString(t, "20"), IsActive: true},
	}, 3, "")
	if err != nil {
		t.Fatalf("update rules failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated count want 2 got %d", len(updated))
	}
	if updated[0].UpdatedBy == nil || *updated[0].UpdatedBy != 3 {
		t.Fatalf("updated_by want 3 got %v", updated[0].UpdatedBy)
	}

	// 再次更新覆盖同层级规则而非新增
	if _, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 1, CommType: constants.CommissionTypePercentage, Percentage: moneyFromString(t, "7.5"), IsActive: false},
	}, 3, ""); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	var count int64
	db.Model(&models.CommissionRule{}).Where("level = ?", 1).Count(&count)
	if count != 1 {
		t.Fatalf("level 1 rule count want 1 got %d", count)
	}
	var rule models.CommissionRule
	if err := db.Where("level = ?", 1).First(&rule).Error; err != nil {
		t.Fatalf("load rule failed: %v", err)
	}
	if rule.IsActive {
		t.Fatalf("rule should be deactivated")
	}
	if rule.Percentage.String() != "7.5" {
		t.Fatalf("percentage want 7.5 got %s", rule.Percentage.String())
	}
}

func TestUpdateCommissionRulesValidation(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewCommissionRuleService(
		repository.NewCommissionRuleRepository(db),
		NewAuditService(repository.NewAuditLogRepository(db)),
	)

	// 层级越界
	if _, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 0, CommType: constants.CommissionTypePercentage, Percentage: moneyFromString(t, "5"), IsActive: true},
	}, 1, ""); err != ErrRuleLevelInvalid {
		t.Fatalf("level 0 want ErrRuleLevelInvalid got %v", err)
	}
	if _, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 6, CommType: constants.CommissionTypePercentage, Percentage: moneyFromString(t, "5"), IsActive: true},
	}, 1, ""); err != ErrRuleLevelInvalid {
		t.Fatalf("level 6 want ErrRuleLevelInvalid got %v", err)
	}

	// 百分比越界
	if _, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 1, CommType: constants.CommissionTypePercentage, Percentage: moneyFromString(t, "101"), IsActive: true},
	}, 1, ""); err != ErrValidation {
		t.Fatalf("percentage 101 want ErrValidation got %v", err)
	}

	// 未知计算方式
	if _, err := svc.UpdateRules([]CommissionRuleInput{
		{Level: 1, CommType: "bonus", IsActive: true},
	}, 1, ""); err != ErrValidation {
		t.Fatalf("unknown comm type want ErrValidation got %v", err)
	}

	// 空输入
	if _, err := svc.UpdateRules(nil, 1, ""); err != ErrValidation {
		t.Fatalf("empty input want ErrValidation got %v", err)
	}

	// 整批校验失败时不落库
	var count int64
	db.Model(&models.CommissionRule{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed batch should not persist rules, got %d", count)
	}
}
