package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = "en-US"

var supportedLocales = map[string]bool{
	"en-US": true,
}

// ResolveLocale 从请求解析语言（query 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(lang); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T 翻译消息 key；未命中时退回 key 本身
func T(locale, key string) string {
	catalog, ok := messages[normalizeCatalogLocale(locale)]
	if !ok {
		catalog = messages[DefaultLocale]
	}
	if msg, ok := catalog[key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息 key
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if supportedLocales[raw] {
		return raw
	}
	if strings.HasPrefix(strings.ToLower(raw), "en") {
		return "en-US"
	}
	return ""
}

func normalizeCatalogLocale(locale string) string {
	if supportedLocales[locale] {
		return locale
	}
	return DefaultLocale
}

var messages = map[string]map[string]string{
	"en-US": {
		"error.bad_request":            "invalid request payload",
		"error.unauthorized":           "authentication required",
		"error.forbidden":              "permission denied",
		"error.not_found":              "resource not found",
		"error.internal":               "internal server error",
		"error.auth_header_missing":    "authorization header missing",
		"error.auth_header_invalid":    "authorization header invalid",
		"error.token_invalid":          "token invalid or expired",
		"error.token_revoked":          "token has been revoked",
		"error.jwt_secret_missing":     "jwt secret not configured",
		"error.login_too_many":         "too many login attempts, try again in %d seconds",
		"error.rate_limited":           "too many requests, try again in %d seconds",
		"error.rate_limit_unavailable": "rate limiter unavailable",

		"error.auth_failed":                   "authentication failed",
		"error.email_invalid":                 "email address invalid",
		"error.email_exists":                  "email already registered",
		"error.email_not_verified":            "email address not verified",
		"error.invalid_credentials":           "email or password incorrect",
		"error.user_disabled":                 "account is disabled",
		"error.password_too_weak":             "password does not meet policy",
		"error.verify_code_invalid":           "verification code invalid",
		"error.verify_code_expired":           "verification code expired",
		"error.verify_code_attempts_exceeded": "too many verification attempts",
		"error.verify_code_too_frequent":      "verification code requested too frequently",
		"error.verify_purpose_invalid":        "verification purpose not supported",
		"error.email_service_not_configured":  "email service not configured",
		"error.captcha_invalid":               "captcha verification failed",
		"error.captcha_generate_failed":       "failed to generate captcha",
		"error.user_not_found":                "user not found",
		"error.user_id_invalid":               "user id invalid",
		"error.user_id_type_invalid":          "user id type invalid",
		"error.user_fetch_failed":             "failed to load users",
		"error.user_update_failed":            "failed to update users",
		"error.user_status_invalid":           "user status invalid",
		"error.user_ids_required":             "user ids are required",

		"error.category_not_found":     "category not found",
		"error.category_id_invalid":    "category id invalid",
		"error.category_fetch_failed":  "failed to load categories",
		"error.category_save_failed":   "failed to save category",
		"error.category_delete_failed": "failed to delete category",
		"error.slug_exists":            "slug already in use",
		"error.product_not_found":      "product not found",
		"error.product_id_invalid":     "product id invalid",
		"error.product_fetch_failed":   "failed to load products",
		"error.product_save_failed":    "failed to save product",
		"error.store_required":         "a store profile is required for this action",

		"error.purchase_payload_invalid": "purchase payload invalid",
		"error.duplicate_order":          "an order with this id already exists",
		"error.purchase_create_failed":   "failed to record purchase",
		"error.purchase_fetch_failed":    "failed to load purchase history",
		"error.order_not_found":          "order not found",
		"error.order_id_invalid":         "order id invalid",
		"error.order_fetch_failed":       "failed to load order tracking",
		"error.store_group_not_found":    "store group not found",
		"error.tracking_forbidden":       "you do not have access to this order",
		"error.tracking_status_invalid":  "tracking status invalid",
		"error.tracking_update_failed":   "failed to update tracking",
		"error.order_already_delivered":  "order has already been delivered",

		"error.admin_id_invalid":      "admin id invalid",
		"error.admin_id_type_invalid": "admin id type invalid",
		"error.admin_not_found":       "admin not found",
		"error.admin_fetch_failed":    "failed to load admin",
		"error.role_fetch_failed":     "failed to load roles",
		"error.role_update_failed":    "failed to update roles",
		"error.policy_reload_failed":  "failed to reload authorization policy",
	},
}
