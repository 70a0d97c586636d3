package constants

// 代理人状态常量
const (
	AgentStatusPending  = "pending"
	AgentStatusActive   = "active"
	AgentStatusInactive = "inactive"
	AgentStatusRejected = "rejected"
	AgentStatusBlocked  = "blocked"
)

// 代理人 KYC 状态常量
const (
	KYCStatusNotSubmitted = "not_submitted"
	KYCStatusPending      = "pending"
	KYCStatusVerified     = "verified"
	KYCStatusRejected     = "rejected"
)

// 推荐层级常量
const (
	// MaxAgentLevel 推荐树最大深度
	MaxAgentLevel = 5
	// MaxUplineLevels 佣金分配最多上溯层数
	MaxUplineLevels = 5
)

// 保单状态常量
const (
	PolicyStatusPending  = "pending"
	PolicyStatusApproved = "approved"
	PolicyStatusRejected = "rejected"
)

// 佣金规则类型常量
const (
	CommissionTypePercentage = "percentage"
	CommissionTypeFixed      = "fixed"
)

// 佣金记录状态常量
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
)

// CommissionLevelSeller 出单人佣金层级
const CommissionLevelSeller = 0

// 提现状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// MinWithdrawalAmount 最低提现金额（₹）
const MinWithdrawalAmount = 100

// 理赔状态常量
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// 审计日志实体类型常量
const (
	AuditEntityAgent      = "agent"
	AuditEntityPolicy     = "policy"
	AuditEntityPlan       = "policy_plan"
	AuditEntityRule       = "commission_rule"
	AuditEntityCommission = "commission"
	AuditEntityWithdrawal = "withdrawal_request"
	AuditEntityClaim      = "claim"
)

// 审计动作常量
const (
	AuditActionAgentRegister    = "agent_register"
	AuditActionAgentApprove     = "agent_approve"
	AuditActionAgentReject      = "agent_reject"
	AuditActionAgentBlock       = "agent_block"
	AuditActionAgentDelete      = "agent_delete"
	AuditActionKYCSubmit        = "kyc_submit"
	AuditActionKYCVerify        = "kyc_verify"
	AuditActionKYCReject        = "kyc_reject"
	AuditActionPolicySubmit     = "policy_submit"
	AuditActionPolicyApprove    = "policy_approve"
	AuditActionPolicyReject     = "policy_reject"
	AuditActionCommissionCreate = "commission_create"
	AuditActionCommissionReview = "commission_review"
	AuditActionWithdrawRequest  = "withdrawal_request"
	AuditActionWithdrawReview   = "withdrawal_review"
	AuditActionClaimSubmit      = "claim_submit"
	AuditActionClaimReview      = "claim_review"
	AuditActionPlanUpdate       = "plan_update"
	AuditActionRuleUpdate       = "rule_update"
)

// 审计结果状态常量
const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// 审计操作者类型常量
const (
	AuditActorAdmin  = "admin"
	AuditActorAgent  = "agent"
	AuditActorSystem = "system"
)

// 通知状态常量
const (
	NotificationStatusPending    = "pending"
	NotificationStatusDispatched = "dispatched"
	NotificationStatusFailed     = "failed"
)

// 通知渠道常量
const (
	NotificationChannelSMS   = "sms"
	NotificationChannelEmail = "email"
)

// 异步任务与队列名称常量
const (
	TaskNotificationDispatch = "notification:dispatch"
	QueueDefault             = "default"
	QueueCritical            = "critical"
)

// BulkDefaultConcurrency 批量审批默认并发度
const BulkDefaultConcurrency = 4
