package router

import (
	"fmt"
	"strings"

	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/config"
	adminhandlers "github.com/pashumitra/internal/http/handlers/admin"
	agenthandlers "github.com/pashumitra/internal/http/handlers/agent"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	agentHandler := agenthandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pm"
	}
	redisClient := cache.Client()
	agentLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:agent_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 上传的牛只/证件照片
	r.Static("/uploads", "./uploads")

	apiV1 := r.Group("/api/v1")
	{
		// 代理端开放接口
		auth := apiV1.Group("/agent/auth")
		{
			auth.POST("/register", agentHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, agentLoginRule, KeyByIPAndJSONField("phone")), agentHandler.Login)
		}

		// 代理端接口（需鉴权）
		portal := apiV1.Group("/agent")
		portal.Use(AgentAuthMiddleware(c.AuthService, c.AgentRepo))
		{
			portal.GET("/me", agentHandler.Me)
			portal.PUT("/me/password", agentHandler.UpdatePassword)
			portal.POST("/me/kyc", agentHandler.SubmitKYC)
			portal.PUT("/me/bank-details", agentHandler.UpdateBankDetails)
			portal.GET("/downline", agentHandler.ListDownline)
			portal.GET("/notifications", agentHandler.ListNotifications)

			portal.GET("/plans", agentHandler.ListPlans)
			portal.POST("/policies", agentHandler.SubmitPolicy)
			portal.GET("/policies", agentHandler.ListPolicies)
			portal.GET("/policies/:id", agentHandler.GetPolicy)
			portal.POST("/policies/:id/renew", agentHandler.RenewPolicy)

			portal.POST("/claims", agentHandler.SubmitClaim)
			portal.GET("/claims", agentHandler.ListClaims)

			portal.GET("/wallet", agentHandler.GetWallet)
			portal.GET("/commissions", agentHandler.ListCommissions)
			portal.POST("/withdrawals", agentHandler.RequestWithdrawal)
			portal.GET("/withdrawals", agentHandler.ListWithdrawals)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		{
			admin.GET("/captcha", adminHandler.GetCaptcha)
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(
				AdminAuthMiddleware(c.AuthService, c.AdminRepo),
				AdminRBACMiddleware(c.AuthzService),
			)
			{
				authorized.GET("/me", adminHandler.Me)
				authorized.PUT("/me/password", adminHandler.UpdatePassword)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)

				// 代理人管理
				authorized.GET("/agents", adminHandler.ListAgents)
				authorized.GET("/agents/:id", adminHandler.GetAgent)
				authorized.GET("/agents/:id/upline", adminHandler.GetAgentUpline)
				authorized.GET("/agents/:id/wallet", adminHandler.GetAgentWallet)
				authorized.DELETE("/agents/:id", adminHandler.DeleteAgent)
				authorized.POST("/agents/:id/approve", adminHandler.ApproveAgent)
				authorized.POST("/agents/:id/reject", adminHandler.RejectAgent)
				authorized.POST("/agents/:id/block", adminHandler.BlockAgent)
				authorized.POST("/agents/:id/unblock", adminHandler.UnblockAgent)
				authorized.POST("/agents/:id/kyc/verify", adminHandler.VerifyAgentKYC)
				authorized.POST("/agents/:id/kyc/reject", adminHandler.RejectAgentKYC)
				authorized.POST("/agents/bulk-approve", adminHandler.BulkApproveAgents)
				authorized.POST("/agents/bulk-reject", adminHandler.BulkRejectAgents)

				// 保险方案管理
				authorized.GET("/plans", adminHandler.ListPlans)
				authorized.GET("/plans/:id", adminHandler.GetPlan)
				authorized.POST("/plans", adminHandler.CreatePlan)
				authorized.PUT("/plans/:id", adminHandler.UpdatePlan)
				authorized.PUT("/plans/:id/seller-commission", adminHandler.UpdatePlanSellerCommission)

				// 保单管理
				authorized.GET("/policies", adminHandler.ListPolicies)
				authorized.GET("/policies/:id", adminHandler.GetPolicy)
				authorized.POST("/policies/:id/approve", adminHandler.ApprovePolicy)
				authorized.POST("/policies/:id/reject", adminHandler.RejectPolicy)
				authorized.POST("/policies/bulk-approve", adminHandler.BulkApprovePolicies)
				authorized.POST("/policies/bulk-reject", adminHandler.BulkRejectPolicies)

				// 分润规则与佣金
				authorized.GET("/commission-rules", adminHandler.ListCommissionRules)
				authorized.PUT("/commission-rules", adminHandler.UpdateCommissionRules)
				authorized.GET("/commissions", adminHandler.ListCommissions)
				authorized.POST("/commissions/:id/approve", adminHandler.ApproveCommission)
				authorized.POST("/commissions/:id/mark-paid", adminHandler.MarkCommissionPaid)
				authorized.POST("/commissions/bulk-approve", adminHandler.BulkApproveCommissions)

				// 理赔管理
				authorized.GET("/claims", adminHandler.ListClaims)
				authorized.GET("/claims/:id", adminHandler.GetClaim)
				authorized.POST("/claims/:id/approve", adminHandler.ApproveClaim)
				authorized.POST("/claims/:id/reject", adminHandler.RejectClaim)
				authorized.POST("/claims/bulk-approve", adminHandler.BulkApproveClaims)
				authorized.POST("/claims/bulk-reject", adminHandler.BulkRejectClaims)

				// 提现管理
				authorized.GET("/withdrawals", adminHandler.ListWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
				authorized.POST("/withdrawals/:id/settle", adminHandler.SettleWithdrawal)

				// 审计日志
				authorized.GET("/audit-logs", adminHandler.ListAuditLogs)
			}
		}
	}

	return r
}
