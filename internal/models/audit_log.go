package models

import "time"

// AuditLogEntry 审计日志表
// 仅追加：任何状态变更的管理动作都落一条，不更新、不删除。
type AuditLogEntry struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorType  string    `gorm:"type:varchar(20);index;not null" json:"actor_type"` // admin/agent/system
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	Action     string    `gorm:"type:varchar(60);index;not null" json:"action"`
	EntityType string    `gorm:"type:varchar(40);index;not null" json:"entity_type"`
	EntityID   uint      `gorm:"index;not null" json:"entity_id"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:'success'" json:"status"`
	Metadata   JSON      `gorm:"type:json" json:"metadata"`
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}
