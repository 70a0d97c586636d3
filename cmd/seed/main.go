package main

import (
	"os"

	"github.com/pashumitra/internal/config"
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin(os.Getenv("PM_DEFAULT_ADMIN_USERNAME"), os.Getenv("PM_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}
	if err := models.InitDefaultCommissionRules(); err != nil {
		stdLog.Printf("Failed to init default commission rules: %v", err)
	}

	// 示例保险方案
	plans := []models.PolicyPlan{
		{
			Name:             "基础牛只保障 · 12 个月",
			CattleType:       "cow",
			Premium:          models.NewMoneyFromInt(1200),
			CoverageAmount:   models.NewMoneyFromInt(30000),
			DurationMonths:   12,
			SellerCommission: models.NewMoneyFromInt(120),
			IsActive:         true,
		},
		{
			Name:             "水牛保障 · 12 个月",
			CattleType:       "buffalo",
			Premium:          models.NewMoneyFromInt(1500),
			CoverageAmount:   models.NewMoneyFromInt(40000),
			DurationMonths:   12,
			SellerCommission: models.NewMoneyFromInt(150),
			IsActive:         true,
		},
		{
			Name:             "短期牛只保障 · 6 个月",
			CattleType:       "cow",
			Premium:          models.NewMoneyFromInt(700),
			CoverageAmount:   models.NewMoneyFromInt(18000),
			DurationMonths:   6,
			SellerCommission: models.NewMoneyFromInt(70),
			IsActive:         true,
		},
	}

	for _, plan := range plans {
		var existing models.PolicyPlan
		if err := models.DB.Where("name = ?", plan.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&plan).Error; err != nil {
				stdLog.Printf("Failed to create plan %s: %v", plan.Name, err)
			} else {
				stdLog.Printf("Created plan: %s", plan.Name)
			}
		} else {
			stdLog.Printf("Plan already exists: %s", plan.Name)
		}
	}

	var ruleCount int64
	models.DB.Model(&models.CommissionRule{}).Where("is_active = ?", true).Count(&ruleCount)
	stdLog.Printf("Seed finished: %d active commission rules (max upline depth %d)", ruleCount, constants.MaxUplineLevels)
}
