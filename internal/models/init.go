package models

import (
	"github.com/pashumitra/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)

	// 已有管理员时，确保默认 admin 拥有超级角色
	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("role", AdminRoleSuper).Error; err != nil {
			logger.Warnw("ensure_default_admin_role_failed", "error", err)
		}
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         AdminRoleSuper,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}

// InitDefaultCommissionRules 初始化默认的上线佣金规则（1..5 级）
func InitDefaultCommissionRules() error {
	var count int64
	DB.Model(&CommissionRule{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaults := []CommissionRule{
		{Level: 1, CommType: "percentage", Percentage: NewMoneyFromInt(10), IsActive: true},
		{Level: 2, CommType: "percentage", Percentage: NewMoneyFromInt(5), IsActive: true},
		{Level: 3, CommType: "percentage", Percentage: NewMoneyFromInt(3), IsActive: true},
		{Level: 4, CommType: "percentage", Percentage: NewMoneyFromInt(2), IsActive: true},
		{Level: 5, CommType: "percentage", Percentage: NewMoneyFromInt(1), IsActive: true},
	}
	for i := range defaults {
		if err := DB.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	logger.Infow("default_commission_rules_created", "levels", len(defaults))
	return nil
}
