package repository

import "time"

// AgentListFilter 查询代理人列表的过滤条件
type AgentListFilter struct {
	Page          int
	PageSize      int
	Status        string
	KYCStatus     string
	ParentAgentID uint
	Level         int
	Keyword       string // 匹配编码/姓名/手机号
}

// PolicyListFilter 查询保单列表的过滤条件
type PolicyListFilter struct {
	Page         int
	PageSize     int
	AgentID      uint
	PlanID       uint
	Status       string
	Keyword      string // 匹配保单号/客户姓名/手机号/耳标号
}

// CommissionListFilter 查询佣金记录的过滤条件
type CommissionListFilter struct {
	Page     int
	PageSize int
	AgentID  uint
	PolicyID uint
	Level    *int
	Status   string
}

// WithdrawalListFilter 查询提现申请的过滤条件
type WithdrawalListFilter struct {
	Page     int
	PageSize int
	AgentID  uint
	Status   string
}

// ClaimListFilter 查询理赔申请的过滤条件
type ClaimListFilter struct {
	Page     int
	PageSize int
	AgentID  uint
	PolicyID uint
	Status   string
}

// PlanListFilter 查询保险方案的过滤条件
type PlanListFilter struct {
	Page       int
	PageSize   int
	CattleType string
	OnlyActive bool
}

// AuditLogListFilter 查询审计日志的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	ActorType   string
	ActorID     uint
	Action      string
	EntityType  string
	EntityID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
