package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest 提现申请表
// 银行信息为申请时快照；pending 状态即占用可提现余额。
type WithdrawalRequest struct {
	ID      uint   `gorm:"primarykey" json:"id"`               // 主键
	AgentID uint   `gorm:"not null;index" json:"agent_id"`     // 申请代理人
	Amount  Money  `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status  string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // pending/approved/rejected/paid

	// 银行信息快照
	BankAccountName   string `gorm:"type:varchar(120);not null" json:"bank_account_name"`
	BankAccountNumber string `gorm:"type:varchar(40);not null" json:"bank_account_number"`
	BankIFSC          string `gorm:"type:varchar(20);not null" json:"bank_ifsc"`

	RejectReason string         `gorm:"type:varchar(255)" json:"reject_reason"`
	ProcessedBy  *uint          `gorm:"index" json:"processed_by,omitempty"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	PaidAt       *time.Time     `json:"paid_at,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Agent *Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
