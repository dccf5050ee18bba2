package router

import (
	"fmt"
	"strings"

	"github.com/mercato-api/internal/cache"
	"github.com/mercato-api/internal/config"
	adminhandlers "github.com/mercato-api/internal/http/handlers/admin"
	publichandlers "github.com/mercato-api/internal/http/handlers/public"
	"github.com/mercato-api/internal/logger"
	"github.com/mercato-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mc"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 公开接口
		api.GET("/products", publicHandler.ListProducts)
		api.GET("/products/:id", publicHandler.GetProduct)
		api.GET("/categories", publicHandler.ListCategories)
		api.GET("/categories/:slug", publicHandler.GetCategory)

		// 用户认证接口
		auth := api.Group("/auth")
		{
			auth.POST("/send-verify-code", publicHandler.SendUserVerifyCode)
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
			auth.POST("/reset-password", publicHandler.ResetUserPassword)
		}

		// 用户接口（需鉴权）
		user := api.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetUserProfile)

			// 购买记录
			user.POST("/purchasehistory/create", publicHandler.CreatePurchase)
			user.GET("/purchasehistory/:userId", publicHandler.ListPurchaseHistory)

			// 配送跟踪
			user.GET("/ordertracking/:userId", publicHandler.ListOrderTracking)
			user.PATCH("/ordertracking/order/:id/tracking", publicHandler.UpdateOrderTracking)

			// 商家接口
			user.GET("/provider/sales", publicHandler.ListStoreSales)
			user.POST("/provider/products", publicHandler.CreateProduct)
			user.PUT("/provider/products/:id", publicHandler.UpdateProduct)
			user.DELETE("/provider/products/:id", publicHandler.DeleteProduct)
		}

		// 管理员接口
		admin := api.Group("/admin")
		{
			admin.GET("/captcha", adminHandler.Captcha)
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", adminHandler.GetProfile)

				// 用户管理
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.PATCH("/users/batch-status", adminHandler.BatchUpdateUserStatus)

				// 分类管理
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 购买与订单管理
				authorized.GET("/purchases", adminHandler.ListPurchases)
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id/tracking", adminHandler.UpdateOrderTracking)

				// 权限管理
				authorized.GET("/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.POST("/authz/reload", adminHandler.ReloadPolicy)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
