package shared

import (
	"errors"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 按业务错误类型映射响应码。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrBelowMinWithdrawal),
		errors.Is(err, service.ErrMissingBankDetails),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrRuleLevelInvalid),
		errors.Is(err, service.ErrLevelLimitExceeded),
		errors.Is(err, service.ErrInvalidCaptcha),
		errors.Is(err, service.ErrKYCNotVerified),
		errors.Is(err, service.ErrPlanInactive),
		errors.Is(err, service.ErrPolicyNotRenewable),
		errors.Is(err, service.ErrClaimAlreadyOpen):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrAgentBlocked),
		errors.Is(err, service.ErrAgentNotActive):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAgentNotFound),
		errors.Is(err, service.ErrUplineNotFound),
		errors.Is(err, service.ErrAdminNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrPolicyNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrCommissionNotFound),
		errors.Is(err, service.ErrWithdrawalNotFound),
		errors.Is(err, service.ErrClaimNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrPolicyNotApproved),
		errors.Is(err, service.ErrAgentPhoneExists),
		errors.Is(err, service.ErrAgentHasDownline):
		response.Error(c, response.CodeConflict, err.Error())
	default:
		RequestLog(c).Errorw("handler_internal_error", "error", err)
		response.Error(c, response.CodeInternal, "internal error")
	}
}
