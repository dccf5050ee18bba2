package public

import (
	"errors"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var purchaseCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPurchasePayloadInvalid, code: response.CodeBadRequest, key: "error.purchase_payload_invalid"},
	{target: service.ErrDuplicateOrder, code: response.CodeConflict, key: "error.duplicate_order"},
}

var trackingUpdateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrTrackingForbidden, code: response.CodeForbidden, key: "error.tracking_forbidden"},
	{target: service.ErrStoreGroupNotFound, code: response.CodeNotFound, key: "error.store_group_not_found"},
	{target: service.ErrTrackingStatusInvalid, code: response.CodeBadRequest, key: "error.tracking_status_invalid"},
	{target: service.ErrOrderAlreadyDelivered, code: response.CodeBadRequest, key: "error.order_already_delivered"},
}

var userAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, key: "error.email_exists"},
	{target: service.ErrEmailNotVerified, code: response.CodeBadRequest, key: "error.email_not_verified"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest, key: "error.password_too_weak"},
	{target: service.ErrVerifyCodeInvalid, code: response.CodeBadRequest, key: "error.verify_code_invalid"},
	{target: service.ErrVerifyCodeExpired, code: response.CodeBadRequest, key: "error.verify_code_expired"},
	{target: service.ErrVerifyCodeAttemptsExceeded, code: response.CodeBadRequest, key: "error.verify_code_attempts_exceeded"},
	{target: service.ErrVerifyCodeTooFrequent, code: response.CodeTooManyRequests, key: "error.verify_code_too_frequent"},
	{target: service.ErrInvalidVerifyPurpose, code: response.CodeBadRequest, key: "error.verify_purpose_invalid"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeInternal, key: "error.email_service_not_configured"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeInternal, key: "error.email_service_not_configured"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
}

func respondPurchaseCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, purchaseCreateErrorRules, response.CodeInternal, "error.purchase_create_failed")
}

func respondTrackingUpdateError(c *gin.Context, err error) {
	// 终态冲突在响应数据里回传既有送达信息，客户端据此对齐界面状态
	var delivered *service.AlreadyDeliveredError
	if errors.As(err, &delivered) {
		respondErrorWithData(c, response.CodeBadRequest, "error.order_already_delivered", delivered)
		return
	}
	respondWithMappedError(c, err, trackingUpdateErrorRules, response.CodeInternal, "error.tracking_update_failed")
}

func respondUserAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, userAuthErrorRules, response.CodeInternal, "error.auth_failed")
}
