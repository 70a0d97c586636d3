package models

import (
	"time"

	"gorm.io/gorm"
)

// Claim 理赔申请表
type Claim struct {
	ID          uint   `gorm:"primarykey" json:"id"`             // 主键
	PolicyID    uint   `gorm:"not null;index" json:"policy_id"`  // 关联保单
	AgentID     uint   `gorm:"not null;index" json:"agent_id"`   // 提交代理人
	Reason      string `gorm:"type:varchar(255);not null" json:"reason"`
	ClaimAmount Money  `gorm:"type:decimal(20,2);not null;default:0" json:"claim_amount"`
	// 佐证照片路径，JSON 数组
	PhotoPaths StringArray `gorm:"type:json" json:"photo_paths"`
	Status     string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	ReviewedBy   *uint          `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes  string         `gorm:"type:varchar(255)" json:"review_notes"`
	RejectReason string         `gorm:"type:varchar(255)" json:"reject_reason"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Policy *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
	Agent  *Agent  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

// TableName 指定表名
func (Claim) TableName() string {
	return "claims"
}
