package agent

import (
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitClaimRequest 理赔申请请求
type SubmitClaimRequest struct {
	PolicyID    uint         `json:"policy_id" binding:"required"`
	Reason      string       `json:"reason" binding:"required"`
	ClaimAmount models.Money `json:"claim_amount"`
	PhotoPaths  []string     `json:"photo_paths"`
}

// SubmitClaim 提交理赔申请
func (h *Handler) SubmitClaim(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	claim, err := h.ClaimService.Submit(service.ClaimSubmitInput{
		PolicyID:    req.PolicyID,
		AgentID:     id,
		Reason:      req.Reason,
		ClaimAmount: req.ClaimAmount,
		PhotoPaths:  req.PhotoPaths,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// ListClaims 获取本人理赔申请列表
func (h *Handler) ListClaims(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	filter := repository.ClaimListFilter{
		Page:     page,
		PageSize: pageSize,
		AgentID:  id,
		Status:   c.Query("status"),
	}

	claims, total, err := h.ClaimService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "claim fetch failed", err)
		return
	}
	response.SuccessWithPage(c, claims, response.NewPagination(page, pageSize, total))
}
