package models

import "time"

// Notification 通知记录表
// 核心只产出记录并入队，实际送达（短信/邮件）由外部协作方完成。
type Notification struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	AgentID      uint       `gorm:"not null;index" json:"agent_id"`
	Channel      string     `gorm:"type:varchar(20);not null;default:'sms'" json:"channel"`
	Event        string     `gorm:"type:varchar(60);not null;index" json:"event"` // 审批事件名
	EntityType   string     `gorm:"type:varchar(40);not null" json:"entity_type"`
	EntityID     uint       `gorm:"not null" json:"entity_id"`
	Body         string     `gorm:"type:varchar(500)" json:"body"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	FailReason   string     `gorm:"type:varchar(255)" json:"fail_reason"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
