package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/pashumitra/internal/authz"
	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/config"
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const adminRoleContextKey = "admin_role"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// AdminAuthMiddleware 管理端 JWT 鉴权中间件
func AdminAuthMiddleware(authSvc *service.AuthService, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, func(token string) (*service.AdminJWTClaims, error) {
			return authSvc.ParseAdminJWT(token)
		})
		if !ok {
			return
		}

		if cached, hit, cacheErr := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID); cacheErr == nil && hit && cached != nil {
			if claims.TokenVersion != cached.TokenVersion {
				abortUnauthorized(c, "token revoked")
				return
			}
			c.Set("admin_id", claims.AdminID)
			c.Set("username", cached.Username)
			c.Set(adminRoleContextKey, cached.Role)
			c.Next()
			return
		}

		adminUser, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || adminUser == nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		if claims.TokenVersion != adminUser.TokenVersion {
			abortUnauthorized(c, "token revoked")
			return
		}
		_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(adminUser))

		c.Set("admin_id", claims.AdminID)
		c.Set("username", adminUser.Username)
		c.Set(adminRoleContextKey, adminUser.Role)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "unauthorized")
			return
		}

		// super 角色直通
		if role, ok := c.Get(adminRoleContextKey); ok {
			if roleValue, typeOK := role.(string); typeOK && roleValue == models.AdminRoleSuper {
				c.Next()
				return
			}
		}

		adminIDRaw, exists := c.Get("admin_id")
		if !exists {
			abortUnauthorized(c, "unauthorized")
			return
		}
		adminID, _ := adminIDRaw.(uint)
		if adminID == 0 {
			abortUnauthorized(c, "unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AgentAuthMiddleware 代理端 JWT 鉴权中间件
// pending 状态放行（允许登录完成 KYC）, blocked 状态立即拒绝。
func AgentAuthMiddleware(authSvc *service.AuthService, agentRepo repository.AgentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, func(token string) (*service.AgentJWTClaims, error) {
			return authSvc.ParseAgentJWT(token)
		})
		if !ok {
			return
		}

		if cached, hit, cacheErr := cache.GetAgentAuthState(c.Request.Context(), claims.AgentID); cacheErr == nil && hit && cached != nil {
			if claims.TokenVersion != cached.TokenVersion {
				abortUnauthorized(c, "token revoked")
				return
			}
			if !isAllowedAgentStatus(cached.Status) {
				response.Forbidden(c, "account unavailable")
				c.Abort()
				return
			}
			c.Set("agent_id", claims.AgentID)
			c.Set("agent_code", cached.AgentCode)
			c.Next()
			return
		}

		currentAgent, err := agentRepo.GetByID(claims.AgentID)
		if err != nil || currentAgent == nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		if claims.TokenVersion != currentAgent.TokenVersion {
			abortUnauthorized(c, "token revoked")
			return
		}
		if !isAllowedAgentStatus(currentAgent.Status) {
			response.Forbidden(c, "account unavailable")
			c.Abort()
			return
		}
		_ = cache.SetAgentAuthState(c.Request.Context(), cache.BuildAgentAuthState(currentAgent))

		c.Set("agent_id", claims.AgentID)
		c.Set("agent_code", currentAgent.AgentCode)
		c.Next()
	}
}

func parseBearer[T any](c *gin.Context, parse func(token string) (*T, error)) (*T, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "authorization header missing")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		abortUnauthorized(c, "authorization header invalid")
		return nil, false
	}

	claims, err := parse(parts[1])
	if err != nil {
		abortUnauthorized(c, "invalid token")
		return nil, false
	}
	return claims, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

func isAllowedAgentStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.AgentStatusActive, constants.AgentStatusPending:
		return true
	default:
		return false
	}
}
