package service

import "errors"

// 业务错误集合, handler 层据此映射响应码
var (
	ErrAgentNotFound        = errors.New("agent not found")
	ErrAgentPhoneExists     = errors.New("agent phone already registered")
	ErrAgentNotActive       = errors.New("agent not active")
	ErrAgentBlocked         = errors.New("agent blocked")
	ErrAgentCodeExhausted   = errors.New("agent code generation exhausted")
	ErrAgentHasDownline     = errors.New("agent has downline members")
	ErrUplineNotFound       = errors.New("upline agent not found")
	ErrUplineCycleDetected  = errors.New("upline chain contains a cycle")
	ErrLevelLimitExceeded   = errors.New("referral depth limit exceeded")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidCaptcha       = errors.New("invalid captcha")
	ErrInvalidState         = errors.New("operation not allowed in current state")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanInactive         = errors.New("plan not active")
	ErrPolicyNotFound       = errors.New("policy not found")
	ErrPolicyNotApproved    = errors.New("policy not approved")
	ErrPolicyNotRenewable   = errors.New("policy not renewable")
	ErrRuleNotFound         = errors.New("commission rule not found")
	ErrRuleLevelInvalid     = errors.New("commission rule level out of range")
	ErrCommissionNotFound   = errors.New("commission not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal request not found")
	ErrClaimNotFound        = errors.New("claim not found")
	ErrClaimAlreadyOpen     = errors.New("policy already has a pending claim")
	ErrMissingBankDetails   = errors.New("bank details not registered")
	ErrBelowMinWithdrawal   = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance  = errors.New("insufficient withdrawable balance")
	ErrKYCNotVerified       = errors.New("kyc not verified")
	ErrValidation           = errors.New("invalid input")
)
