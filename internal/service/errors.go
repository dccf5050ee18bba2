package service

import "errors"

// 业务错误定义（处理层按错误映射表转换为响应码与 i18n 文案）
var (
	ErrNotFound = errors.New("记录不存在")

	// 购买与订单
	ErrPurchasePayloadInvalid = errors.New("购买数据无效")
	ErrDuplicateOrder         = errors.New("订单编号已存在")
	ErrOrderNotFound          = errors.New("订单不存在")
	ErrTrackingForbidden      = errors.New("无权操作该订单")
	ErrStoreGroupNotFound     = errors.New("店铺分组不存在")
	ErrTrackingStatusInvalid  = errors.New("配送状态无效")
	ErrOrderAlreadyDelivered  = errors.New("订单已送达")

	// 用户认证
	ErrInvalidEmail               = errors.New("邮箱格式不正确")
	ErrEmailExists                = errors.New("邮箱已注册")
	ErrEmailNotVerified           = errors.New("邮箱未验证")
	ErrInvalidCredentials         = errors.New("邮箱或密码错误")
	ErrUserDisabled               = errors.New("账号已被禁用")
	ErrInvalidPassword            = errors.New("密码错误")
	ErrPasswordTooWeak            = errors.New("密码强度不足")
	ErrInvalidVerifyPurpose       = errors.New("验证码用途不支持")
	ErrVerifyCodeInvalid          = errors.New("验证码错误")
	ErrVerifyCodeExpired          = errors.New("验证码已过期")
	ErrVerifyCodeTooFrequent      = errors.New("验证码发送过于频繁")
	ErrVerifyCodeAttemptsExceeded = errors.New("验证码尝试次数超限")

	// 邮件服务
	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")

	// 图形验证码
	ErrCaptchaInvalid = errors.New("图形验证码错误")

	// 商品与分类
	ErrProductNotFound  = errors.New("商品不存在")
	ErrCategoryNotFound = errors.New("分类不存在")
	ErrSlugExists       = errors.New("slug 已存在")

	// 商家
	ErrStoreRequired = errors.New("当前账号未绑定店铺")
)
