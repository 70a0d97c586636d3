package admin

import (
	"strconv"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPolicies 获取保单列表
func (h *Handler) ListPolicies(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.PolicyListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
	}
	if raw := c.Query("agent_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.AgentID = uint(id)
		}
	}
	if raw := c.Query("plan_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.PlanID = uint(id)
		}
	}

	policies, total, err := h.PolicyService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "policy fetch failed", err)
		return
	}
	response.SuccessWithPage(c, policies, response.NewPagination(page, pageSize, total))
}

// GetPolicy 获取保单详情（含佣金分配记录）
func (h *Handler) GetPolicy(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	policy, err := h.PolicyService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	commissions, err := h.CommissionService.ListByPolicy(id)
	if err != nil {
		respondError(c, response.CodeInternal, "commission fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"policy":      policy,
		"commissions": commissions,
	})
}

// ApprovePolicy 审核通过保单并分配佣金
func (h *Handler) ApprovePolicy(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	policy, err := h.PolicyService.Approve(service.PolicyReviewInput{
		PolicyID:  id,
		AdminID:   adminID,
		Notes:     req.Notes,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, policy)
}

// RejectPolicy 审核拒绝保单
func (h *Handler) RejectPolicy(c *gin.Context) {
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

	policy, err := h.PolicyService.Reject(service.PolicyReviewInput{
		PolicyID:  id,
		AdminID:   adminID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, policy)
}

// BulkApprovePolicies 批量审核通过保单
func (h *Handler) BulkApprovePolicies(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.PolicyService.BulkApprove(c.Request.Context(), req.IDs, adminID, c.ClientIP())
	response.Success(c, result)
}

// BulkRejectPolicies 批量审核拒绝保单
func (h *Handler) BulkRejectPolicies(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.PolicyService.BulkReject(c.Request.Context(), req.IDs, adminID, req.Reason, c.ClientIP())
	response.Success(c, result)
}
