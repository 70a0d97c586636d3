package admin

import (
	"errors"
	"time"

	"github.com/pashumitra/internal/cache"
	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// GetCaptcha 获取登录图片验证码
func (h *Handler) GetCaptcha(c *gin.Context) {
	if h.CaptchaService == nil || !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generate failed", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	admin, token, expiresAt, err := h.AuthService.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.AuditService.Record(service.AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    admin.ID,
		Action:     "admin_login",
		EntityType: "admin",
		EntityID:   admin.ID,
		Status:     constants.AuditStatusSuccess,
		IPAddress:  c.ClientIP(),
	})
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
			"role":     admin.Role,
		},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdatePassword 修改当前管理员密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangeAdminPassword(id, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Me 获取当前管理员信息
func (h *Handler) Me(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	adminUser, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if adminUser == nil {
		response.NotFound(c, service.ErrAdminNotFound.Error())
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		requestLog(c).Warnw("admin_roles_fetch_failed", "admin_id", id, "error", err)
	}
	response.Success(c, gin.H{
		"id":       adminUser.ID,
		"username": adminUser.Username,
		"role":     adminUser.Role,
		"roles":    roles,
	})
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

// CreateAdmin 创建管理员账号
func (h *Handler) CreateAdmin(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ValidatePassword(req.Password); err != nil {
		respondServiceError(c, err)
		return
	}

	existing, err := h.AdminRepo.GetByUsername(req.Username)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "username already exists", nil)
		return
	}

	hashed, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		respondError(c, response.CodeInternal, "password hash failed", err)
		return
	}

	role := ""
	if len(req.Roles) > 0 {
		role = req.Roles[0]
	}
	adminUser := &models.Admin{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := h.AdminRepo.Create(adminUser); err != nil {
		respondError(c, response.CodeInternal, "admin create failed", err)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(adminUser.ID, req.Roles); err != nil {
			respondError(c, response.CodeInternal, "roles assign failed", err)
			return
		}
	}

	h.AuditService.Record(service.AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    operatorID,
		Action:     "admin_create",
		EntityType: "admin",
		EntityID:   adminUser.ID,
		Status:     constants.AuditStatusSuccess,
		Metadata:   map[string]interface{}{"username": adminUser.Username, "roles": req.Roles},
		IPAddress:  c.ClientIP(),
	})
	response.Success(c, gin.H{
		"id":       adminUser.ID,
		"username": adminUser.Username,
	})
}

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// SetAdminRoles 重设管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	target, err := h.AdminRepo.GetByID(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if target == nil {
		response.NotFound(c, service.ErrAdminNotFound.Error())
		return
	}

	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		respondError(c, response.CodeInternal, "roles assign failed", err)
		return
	}

	// 角色变更后作废旧会话缓存
	if err := cache.DelAdminAuthState(c.Request.Context(), targetID); err != nil {
		requestLog(c).Warnw("admin_auth_state_invalidate_failed", "admin_id", targetID, "error", err)
	}

	h.AuditService.Record(service.AuditRecordInput{
		ActorType:  constants.AuditActorAdmin,
		ActorID:    operatorID,
		Action:     "admin_set_roles",
		EntityType: "admin",
		EntityID:   targetID,
		Status:     constants.AuditStatusSuccess,
		Metadata:   map[string]interface{}{"roles": req.Roles},
		IPAddress:  c.ClientIP(),
	})
	response.Success(c, gin.H{"roles": req.Roles})
}
