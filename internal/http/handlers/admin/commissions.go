package admin

import (
	"strconv"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCommissionRules 获取分润规则
func (h *Handler) ListCommissionRules(c *gin.Context) {
	rules, err := h.CommissionRuleService.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "rule fetch failed", err)
		return
	}
	response.Success(c, rules)
}

// CommissionRuleRequest 分润规则条目
type CommissionRuleRequest struct {
	Level      int          `json:"level" binding:"required"`
	CommType   string       `json:"comm_type" binding:"required"`
	Percentage models.Money `json:"percentage"`
	Amount     models.Money `json:"amount"`
	IsActive   bool         `json:"is_active"`
}

// UpdateCommissionRulesRequest 批量更新分润规则请求
type UpdateCommissionRulesRequest struct {
	Rules []CommissionRuleRequest `json:"rules" binding:"required"`
}

// UpdateCommissionRules 批量更新分润规则
func (h *Handler) UpdateCommissionRules(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateCommissionRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	inputs := make([]service.CommissionRuleInput, 0, len(req.Rules))
	for _, rule := range req.Rules {
		inputs = append(inputs, service.CommissionRuleInput{
			Level:      rule.Level,
			CommType:   rule.CommType,
			Percentage: rule.Percentage,
			Amount:     rule.Amount,
			IsActive:   rule.IsActive,
		})
	}

	rules, err := h.CommissionRuleService.UpdateRules(inputs, adminID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rules)
}

// ListCommissions 获取佣金记录列表
func (h *Handler) ListCommissions(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.CommissionListFilter{
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
	if raw := c.Query("level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			filter.Level = &level
		}
	}

	commissions, total, err := h.CommissionService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "commission fetch failed", err)
		return
	}
	response.SuccessWithPage(c, commissions, response.NewPagination(page, pageSize, total))
}

// ApproveCommission 审核通过佣金记录
func (h *Handler) ApproveCommission(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	commission, err := h.CommissionService.Approve(service.CommissionReviewInput{
		CommissionID: id,
		AdminID:      adminID,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, commission)
}

// BulkApproveCommissions 批量审核通过佣金记录
func (h *Handler) BulkApproveCommissions(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result := h.CommissionService.ApproveBulk(c.Request.Context(), req.IDs, adminID, c.ClientIP())
	response.Success(c, result)
}

// MarkCommissionPaid 标记佣金为已打款
func (h *Handler) MarkCommissionPaid(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	commission, err := h.CommissionService.MarkPaid(service.CommissionReviewInput{
		CommissionID: id,
		AdminID:      adminID,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, commission)
}
