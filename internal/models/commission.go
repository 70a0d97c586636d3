package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission 佣金记录表
// 同一保单的整组记录在一个事务内写入；(policy_id, level) 唯一索引保证
// 一张保单最多分配一次。离开 pending 后不可再变更金额。
type Commission struct {
	ID       uint   `gorm:"primarykey" json:"id"`                                                       // 主键
	PolicyID uint   `gorm:"not null;index;index:idx_commission_policy_level,unique" json:"policy_id"`   // 关联保单
	AgentID  uint   `gorm:"not null;index" json:"agent_id"`                                             // 受益代理人
	Level    int    `gorm:"not null;index:idx_commission_policy_level,unique" json:"level"`             // 0=出单人，1..5=上线
	CommType string `gorm:"type:varchar(20);not null" json:"comm_type"`                                 // 计算方式快照
	Base     Money  `gorm:"type:decimal(20,2);not null;default:0" json:"base"`                          // 计算基数（保费）
	Rate     Money  `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`                          // 百分比快照
	Amount   Money  `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                        // 佣金金额
	Status   string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`            // pending/approved/paid

	ApprovedBy *uint          `gorm:"index" json:"approved_by,omitempty"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	PaidAt     *time.Time     `json:"paid_at,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Policy *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
	Agent  *Agent  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}
