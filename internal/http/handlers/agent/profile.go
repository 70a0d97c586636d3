package agent

import (
	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
)

// Me 获取当前代理人信息
func (h *Handler) Me(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	me, err := h.AgentService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, me)
}

// SubmitKYCRequest KYC 材料提交请求
type SubmitKYCRequest struct {
	AadhaarNumber    string `json:"aadhaar_number" binding:"required"`
	PANNumber        string `json:"pan_number" binding:"required"`
	AadhaarPhotoPath string `json:"aadhaar_photo_path" binding:"required"`
	PANPhotoPath     string `json:"pan_photo_path" binding:"required"`
}

// SubmitKYC 提交 KYC 材料
func (h *Handler) SubmitKYC(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	updated, err := h.AgentService.SubmitKYC(service.AgentKYCInput{
		AgentID:          id,
		AadhaarNumber:    req.AadhaarNumber,
		PANNumber:        req.PANNumber,
		AadhaarPhotoPath: req.AadhaarPhotoPath,
		PANPhotoPath:     req.PANPhotoPath,
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, updated)
}

// BankDetailsRequest 银行信息登记请求
type BankDetailsRequest struct {
	BankAccountName   string `json:"bank_account_name" binding:"required"`
	BankAccountNumber string `json:"bank_account_number" binding:"required"`
	BankIFSC          string `json:"bank_ifsc" binding:"required"`
}

// UpdateBankDetails 登记打款银行信息
func (h *Handler) UpdateBankDetails(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	var req BankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	updated, err := h.AgentService.UpdateBankDetails(service.AgentBankDetailsInput{
		AgentID:           id,
		BankAccountName:   req.BankAccountName,
		BankAccountNumber: req.BankAccountNumber,
		BankIFSC:          req.BankIFSC,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, updated)
}

// ListDownline 获取直接下级列表
func (h *Handler) ListDownline(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	downline, total, err := h.AgentService.ListDirectDownline(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "downline fetch failed", err)
		return
	}
	response.SuccessWithPage(c, downline, response.NewPagination(page, pageSize, total))
}

// ListNotifications 获取通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	id, ok := getAgentID(c)
	if !ok {
		return
	}

	page, pageSize := queryPagination(c)
	notifications, total, err := h.NotificationService.ListByAgent(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "notification fetch failed", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}
