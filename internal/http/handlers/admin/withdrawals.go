package admin

import (
	"strconv"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// ListWithdrawals 获取提现申请列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}
	if raw := c.Query("agent_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.AgentID = uint(id)
		}
	}

	requests, total, err := h.WalletService.ListRequests(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.NewPagination(page, pageSize, total))
}

// GetWithdrawal 获取提现申请详情
func (h *Handler) GetWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.WalletService.GetRequest(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// SettleWithdrawalRequest 提现审批请求
type SettleWithdrawalRequest struct {
	Decision string `json:"decision" binding:"required"` // approve/reject/pay
	Reason   string `json:"reason"`
}

// SettleWithdrawal 审批提现申请
func (h *Handler) SettleWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SettleWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	request, err := h.WalletService.Settle(service.WithdrawalSettleInput{
		RequestID: id,
		AdminID:   adminID,
		Decision:  req.Decision,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, request)
}

// GetAgentWallet 查看指定代理人的钱包余额
func (h *Handler) GetAgentWallet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
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
