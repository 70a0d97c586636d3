package admin

import (
	"strconv"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAgents 获取代理人列表
func (h *Handler) ListAgents(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.AgentListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		KYCStatus: c.Query("kyc_status"),
		Keyword:   c.Query("keyword"),
	}
	if raw := c.Query("parent_agent_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ParentAgentID = uint(id)
		}
	}
	if raw := c.Query("level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			filter.Level = level
		}
	}

	agents, total, err := h.AgentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "agent fetch failed", err)
		return
	}
	response.SuccessWithPage(c, agents, response.NewPagination(page, pageSize, total))
}

// GetAgent 获取代理人详情
func (h *Handler) GetAgent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.AgentService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// GetAgentUpline 获取代理人上级链
func (h *Handler) GetAgentUpline(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	upline, err := h.AgentService.ResolveUpline(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, upline)
}

// ReviewRequest 审核请求（拒绝/拉黑需填写原因）
type ReviewRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// ApproveAgent 审核通过代理人
func (h *Handler) ApproveAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.AgentService.Approve(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// RejectAgent 审核拒绝代理人
func (h *Handler) RejectAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	agent, err := h.AgentService.Reject(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// BlockAgent 拉黑代理人
func (h *Handler) BlockAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	agent, err := h.AgentService.Block(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// UnblockAgent 解除拉黑
func (h *Handler) UnblockAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.AgentService.Unblock(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// DeleteAgent 删除代理人（有下级时拒绝）
func (h *Handler) DeleteAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.AgentService.Delete(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		IPAddress: c.ClientIP(),
	}); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// VerifyAgentKYC KYC 审核通过
func (h *Handler) VerifyAgentKYC(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.AgentService.VerifyKYC(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// RejectAgentKYC KYC 审核拒绝
func (h *Handler) RejectAgentKYC(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	agent, err := h.AgentService.RejectKYC(service.AgentReviewInput{
		AgentID:   id,
		AdminID:   adminID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// BulkIDsRequest 批量操作请求
type BulkIDsRequest struct {
	IDs    []uint `json:"ids" binding:"required"`
	Reason string `json:"reason"`
}

// BulkApproveAgents 批量审核通过代理人
func (h *Handler) BulkApproveAgents(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.AgentService.BulkApprove(c.Request.Context(), req.IDs, adminID, c.ClientIP())
	response.Success(c, result)
}

// BulkRejectAgents 批量审核拒绝代理人
func (h *Handler) BulkRejectAgents(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.AgentService.BulkReject(c.Request.Context(), req.IDs, adminID, req.Reason, c.ClientIP())
	response.Success(c, result)
}
