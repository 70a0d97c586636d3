package agent

import (
	"time"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 代理人注册请求
type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referral_code"`
}

// Register 代理人注册
// 带推荐码则挂到对应上级名下, 否则注册为根代理人, 等待后台审核。
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	registered, err := h.AgentService.Register(service.AgentRegisterInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":         registered.ID,
		"agent_code": registered.AgentCode,
		"status":     registered.Status,
	})
}

// LoginRequest 代理人登录请求
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 代理人登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	loggedIn, token, expiresAt, err := h.AuthService.AgentLogin(req.Phone, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token": token,
		"agent": gin.H{
			"id":         loggedIn.ID,
			"agent_code": loggedIn.AgentCode,
			"name":       loggedIn.Name,
			"status":     loggedIn.Status,
			"kyc_status": loggedIn.KYCStatus,
		},
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdatePassword 修改当前代理人密码
func (h *Handler) UpdatePassword(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangeAgentPassword(id, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
