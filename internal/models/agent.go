package models

import (
	"time"

	"gorm.io/gorm"
)

// Agent 代理人表
// parent_agent_id 是弱引用：上级被拉黑不影响下级，删除受 HasDescendants 保护。
type Agent struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                            // 主键
	AgentCode     string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"agent_code"`         // 代理人编码（AG001 / AG001-2）
	ParentAgentID *uint      `gorm:"index" json:"parent_agent_id,omitempty"`                          // 上级代理人ID
	Level         int        `gorm:"not null;default:1;index" json:"level"`                           // 推荐树深度（根为1）
	Name          string     `gorm:"type:varchar(120);not null" json:"name"`                          // 姓名
	Phone         string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`              // 手机号
	Email         string     `gorm:"type:varchar(190);index" json:"email"`                            // 邮箱
	PasswordHash  string     `gorm:"not null" json:"-"`                                               // 密码哈希
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 账号状态
	KYCStatus     string     `gorm:"type:varchar(20);not null;default:'not_submitted';index" json:"kyc_status"` // KYC 状态
	StatusReason  string     `gorm:"type:varchar(255)" json:"status_reason"`                          // 审核/拉黑原因

	// KYC 材料（仅存储路径/号码，文件存储为外部协作方）
	AadhaarNumber    string `gorm:"type:varchar(20)" json:"aadhaar_number"`
	PANNumber        string `gorm:"type:varchar(20)" json:"pan_number"`
	AadhaarPhotoPath string `gorm:"type:varchar(255)" json:"aadhaar_photo_path"`
	PANPhotoPath     string `gorm:"type:varchar(255)" json:"pan_photo_path"`

	// 银行信息快照来源（提现时复制到 WithdrawalRequest）
	BankAccountName   string `gorm:"type:varchar(120)" json:"bank_account_name"`
	BankAccountNumber string `gorm:"type:varchar(40)" json:"bank_account_number"`
	BankIFSC          string `gorm:"type:varchar(20)" json:"bank_ifsc"`

	TokenVersion uint64         `gorm:"not null;default:0" json:"-"` // Token 版本（用于全量失效）
	ReviewedBy   *uint          `gorm:"index" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Parent *Agent `gorm:"foreignKey:ParentAgentID" json:"parent,omitempty"`
}

// TableName 指定表名
func (Agent) TableName() string {
	return "agents"
}

// HasBankDetails 判断是否已登记银行信息
func (a *Agent) HasBankDetails() bool {
	if a == nil {
		return false
	}
	return a.BankAccountName != "" && a.BankAccountNumber != "" && a.BankIFSC != ""
}
