package admin

import (
	"strconv"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// ListClaims 获取理赔申请列表
func (h *Handler) ListClaims(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.ClaimListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}
	if raw := c.Query("agent_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.AgentID = uint(id)
		}
	}
	if raw := c.Query("policy_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.PolicyID = uint(id)
		}
	}

	claims, total, err := h.ClaimService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "claim fetch failed", err)
		return
	}
	response.SuccessWithPage(c, claims, response.NewPagination(page, pageSize, total))
}

// GetClaim 获取理赔申请详情
func (h *Handler) GetClaim(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	claim, err := h.ClaimService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// ApproveClaim 审核通过理赔申请
func (h *Handler) ApproveClaim(c *gin.Context) {
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

	claim, err := h.ClaimService.Approve(service.ClaimReviewInput{
		ClaimID:   id,
		AdminID:   adminID,
		Notes:     req.Notes,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// RejectClaim 审核拒绝理赔申请
func (h *Handler) RejectClaim(c *gin.Context) {
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

	claim, err := h.ClaimService.Reject(service.ClaimReviewInput{
		ClaimID:   id,
		AdminID:   adminID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// BulkApproveClaims 批量审核通过理赔申请
func (h *Handler) BulkApproveClaims(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.ClaimService.BulkApprove(c.Request.Context(), req.IDs, adminID, "", c.ClientIP())
	response.Success(c, result)
}

// BulkRejectClaims 批量审核拒绝理赔申请
func (h *Handler) BulkRejectClaims(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.ClaimService.BulkReject(c.Request.Context(), req.IDs, adminID, req.Reason, c.ClientIP())
	response.Success(c, result)
}
