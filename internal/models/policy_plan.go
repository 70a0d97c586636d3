package models

import (
	"time"

	"gorm.io/gorm"
)

// PolicyPlan 保险方案表
// 保单创建时快照 premium/coverage/seller_commission，后续修改不回溯。
type PolicyPlan struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Name             string         `gorm:"type:varchar(120);not null" json:"name"`                  // 方案名称
	CattleType       string         `gorm:"type:varchar(40);not null;index" json:"cattle_type"`      // 牲畜类型（cow/buffalo/...）
	Premium          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"premium"`    // 保费
	CoverageAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coverage_amount"` // 保额
	DurationMonths   int            `gorm:"not null;default:12" json:"duration_months"`              // 保障期（月）
	SellerCommission Money          `gorm:"type:decimal(20,2);not null;default:0" json:"seller_commission"` // 出单人固定佣金
	IsActive         bool           `gorm:"not null;default:true;index" json:"is_active"`            // 是否可售
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (PolicyPlan) TableName() string {
	return "policy_plans"
}
