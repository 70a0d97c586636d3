package agent

import (
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitPolicyRequest 保单录入请求
type SubmitPolicyRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`

	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	CustomerAddress string `json:"customer_address"`
	CustomerVillage string `json:"customer_village"`

	CattleTagID string `json:"cattle_tag_id" binding:"required"`
	CattleAge   int    `json:"cattle_age"`
	CattleBreed string `json:"cattle_breed"`

	PhotoFront string `json:"photo_front" binding:"required"`
	PhotoBack  string `json:"photo_back" binding:"required"`
	PhotoLeft  string `json:"photo_left" binding:"required"`
	PhotoRight string `json:"photo_right" binding:"required"`
}

// SubmitPolicy 录入保单
func (h *Handler) SubmitPolicy(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req SubmitPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	policy, err := h.PolicyService.Submit(service.PolicySubmitInput{
		AgentID:         id,
		PlanID:          req.PlanID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerVillage: req.CustomerVillage,
		CattleTagID:     req.CattleTagID,
		CattleAge:       req.CattleAge,
		CattleBreed:     req.CattleBreed,
		PhotoFront:      req.PhotoFront,
		PhotoBack:       req.PhotoBack,
		PhotoLeft:       req.PhotoLeft,
		PhotoRight:      req.PhotoRight,
		IPAddress:       c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, policy)
}

// ListPolicies 获取本人保单列表
func (h *Handler) ListPolicies(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	filter := repository.PolicyListFilter{
		Page:     page,
		PageSize: pageSize,
		AgentID:  id,
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
	}

	policies, total, err := h.PolicyService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "policy fetch failed", err)
		return
	}
	response.SuccessWithPage(c, policies, response.NewPagination(page, pageSize, total))
}

// GetPolicy 获取本人保单详情
func (h *Handler) GetPolicy(c *gin.Context) {
	agentID, ok := getAgentID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	policy, err := h.PolicyService.GetOwnedByAgent(id, agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, policy)
}

// RenewPolicy 续保
// 以旧保单为基础生成一张新的待审保单, 承保期与旧单衔接。
func (h *Handler) RenewPolicy(c *gin.Context) {
	agentID, ok := getAgentID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	renewed, err := h.PolicyService.Renew(id, agentID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, renewed)
}

// ListPlans 获取可售保险方案
func (h *Handler) ListPlans(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.PlanListFilter{
		Page:       page,
		PageSize:   pageSize,
		CattleType: c.Query("cattle_type"),
		OnlyActive: true,
	}

	plans, total, err := h.PlanService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "plan fetch failed", err)
		return
	}
	response.SuccessWithPage(c, plans, response.NewPagination(page, pageSize, total))
}
