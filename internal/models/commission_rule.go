package models

import "time"

// CommissionRule 上线佣金规则表（每层一条，1..5）
// 修改仅对之后的分配生效，历史佣金记录是创建时快照。
type CommissionRule struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                   // 主键
	Level      int       `gorm:"uniqueIndex;not null" json:"level"`                      // 相对层级（1..5）
	CommType   string    `gorm:"type:varchar(20);not null;default:'percentage'" json:"comm_type"` // percentage / fixed
	Percentage Money     `gorm:"type:decimal(10,2);not null;default:0" json:"percentage"` // 百分比（commType=percentage）
	Amount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`     // 固定金额（commType=fixed）
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`            // 是否生效
	UpdatedBy  *uint     `json:"updated_by,omitempty"`                                    // 最后修改人
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (CommissionRule) TableName() string {
	return "commission_rules"
}
