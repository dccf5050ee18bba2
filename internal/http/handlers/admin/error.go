package admin

import (
	"errors"

	handlershared "github.com/mercato-api/internal/http/handlers/shared"
	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithData(c *gin.Context, code int, key string, data interface{}) {
	handlershared.RespondErrorWithData(c, code, key, data)
}

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

var adminLoginErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
}

var categorySaveErrorRules = []mappedHandlerError{
	{target: service.ErrSlugExists, code: response.CodeBadRequest, key: "error.slug_exists"},
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, key: "error.category_not_found"},
}

var adminTrackingErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrStoreGroupNotFound, code: response.CodeNotFound, key: "error.store_group_not_found"},
	{target: service.ErrTrackingStatusInvalid, code: response.CodeBadRequest, key: "error.tracking_status_invalid"},
	{target: service.ErrOrderAlreadyDelivered, code: response.CodeBadRequest, key: "error.order_already_delivered"},
}

func respondAdminLoginError(c *gin.Context, err error) {
	respondWithMappedError(c, err, adminLoginErrorRules, response.CodeInternal, "error.auth_failed")
}

func respondCategorySaveError(c *gin.Context, err error) {
	respondWithMappedError(c, err, categorySaveErrorRules, response.CodeInternal, "error.category_save_failed")
}

func respondAdminTrackingError(c *gin.Context, err error) {
	// 终态冲突在响应数据里回传既有送达信息
	var delivered *service.AlreadyDeliveredError
	if errors.As(err, &delivered) {
		respondErrorWithData(c, response.CodeBadRequest, "error.order_already_delivered", delivered)
		return
	}
	respondWithMappedError(c, err, adminTrackingErrorRules, response.CodeInternal, "error.tracking_update_failed")
}
