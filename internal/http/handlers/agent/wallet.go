package agent

import (
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// GetWallet 获取钱包余额
func (h *Handler) GetWallet(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	balance, err := h.WalletService.Balance(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, balance)
}

// ListCommissions 获取本人佣金记录
func (h *Handler) ListCommissions(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	filter := repository.CommissionListFilter{
		Page:     page,
		PageSize: pageSize,
		AgentID:  id,
		Status:   c.Query("status"),
	}

	commissions, total, err := h.CommissionService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "commission fetch failed", err)
		return
	}
	response.SuccessWithPage(c, commissions, response.NewPagination(page, pageSize, total))
}

// WithdrawRequest 提现申请请求
type WithdrawRequest struct {
	Amount models.Money `json:"amount" binding:"required"`
}

// RequestWithdrawal 发起提现申请
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	request, err := h.WalletService.RequestWithdrawal(service.WithdrawalRequestInput{
		AgentID:   id,
		Amount:    req.Amount,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// ListWithdrawals 获取本人提现申请列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	filter := repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		AgentID:  id,
		Status:   c.Query("status"),
	}

	requests, total, err := h.WalletService.ListRequests(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.NewPagination(page, pageSize, total))
}
