package admin

import (
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanRequest 保险方案请求
type PlanRequest struct {
	Name             string       `json:"name" binding:"required"`
	CattleType       string       `json:"cattle_type" binding:"required"`
	Premium          models.Money `json:"premium"`
	CoverageAmount   models.Money `json:"coverage_amount"`
	DurationMonths   int          `json:"duration_months" binding:"required"`
	SellerCommission models.Money `json:"seller_commission"`
	IsActive         bool         `json:"is_active"`
}

func (r PlanRequest) toServiceInput() service.PlanInput {
	return service.PlanInput{
		Name:             r.Name,
		CattleType:       r.CattleType,
		Premium:          r.Premium,
		CoverageAmount:   r.CoverageAmount,
		DurationMonths:   r.DurationMonths,
		SellerCommission: r.SellerCommission,
		IsActive:         r.IsActive,
	}
}

// ListPlans 获取保险方案列表
func (h *Handler) ListPlans(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.PlanListFilter{
		Page:       page,
		PageSize:   pageSize,
		CattleType: c.Query("cattle_type"),
		OnlyActive: c.Query("only_active") == "true",
	}

	plans, total, err := h.PlanService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "plan fetch failed", err)
		return
	}
	response.SuccessWithPage(c, plans, response.NewPagination(page, pageSize, total))
}

// GetPlan 获取保险方案详情
func (h *Handler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.PlanService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}

// CreatePlan 创建保险方案
func (h *Handler) CreatePlan(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	plan, err := h.PlanService.Create(req.toServiceInput(), adminID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}

// UpdatePlan 更新保险方案
func (h *Handler) UpdatePlan(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	plan, err := h.PlanService.Update(id, req.toServiceInput(), adminID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}

// SellerCommissionRequest 出单人佣金调整请求
type SellerCommissionRequest struct {
	SellerCommission models.Money `json:"seller_commission"`
}

// UpdatePlanSellerCommission 调整方案的出单人固定佣金
func (h *Handler) UpdatePlanSellerCommission(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SellerCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	plan, err := h.PlanService.UpdateSellerCommission(id, req.SellerCommission, adminID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}
