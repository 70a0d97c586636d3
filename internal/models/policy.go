package models

import (
	"time"

	"gorm.io/gorm"
)

// Policy 保单表
// 客户与方案字段均为创建时快照，保证历史准确性；审批通过后金额字段不可变。
type Policy struct {
	ID           uint   `gorm:"primarykey" json:"id"`                                      // 主键
	PolicyNumber string `gorm:"type:varchar(40);uniqueIndex;not null" json:"policy_number"` // 保单号
	AgentID      uint   `gorm:"not null;index" json:"agent_id"`                            // 出单代理人
	PlanID       uint   `gorm:"not null;index" json:"plan_id"`                             // 关联方案

	// 客户快照
	CustomerName    string `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerPhone   string `gorm:"type:varchar(20);not null" json:"customer_phone"`
	CustomerAddress string `gorm:"type:varchar(255)" json:"customer_address"`
	CustomerVillage string `gorm:"type:varchar(120)" json:"customer_village"`

	// 牲畜信息
	CattleType  string `gorm:"type:varchar(40);not null" json:"cattle_type"`
	CattleTagID string `gorm:"type:varchar(40);index" json:"cattle_tag_id"` // 耳标号
	CattleAge   int    `gorm:"not null;default:0" json:"cattle_age"`
	CattleBreed string `gorm:"type:varchar(80)" json:"cattle_breed"`

	// 四面识别照片（仅存路径，文件存储为外部协作方）
	PhotoFront string `gorm:"type:varchar(255);not null" json:"photo_front"`
	PhotoBack  string `gorm:"type:varchar(255);not null" json:"photo_back"`
	PhotoLeft  string `gorm:"type:varchar(255);not null" json:"photo_left"`
	PhotoRight string `gorm:"type:varchar(255);not null" json:"photo_right"`

	Premium        Money  `gorm:"type:decimal(20,2);not null;default:0" json:"premium"`         // 保费快照
	CoverageAmount Money  `gorm:"type:decimal(20,2);not null;default:0" json:"coverage_amount"` // 保额快照
	Status         string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	StartDate        *time.Time `gorm:"index" json:"start_date,omitempty"` // 审批通过时确定
	EndDate          *time.Time `gorm:"index" json:"end_date,omitempty"`
	PreviousPolicyID *uint      `gorm:"index" json:"previous_policy_id,omitempty"` // 续保链

	ReviewedBy   *uint      `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `gorm:"type:varchar(255)" json:"review_notes"`
	RejectReason string     `gorm:"type:varchar(255)" json:"reject_reason"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Agent *Agent      `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Plan  *PolicyPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName 指定表名
func (Policy) TableName() string {
	return "policies"
}
