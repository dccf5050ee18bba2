package public

import (
	"time"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

type sendVerifyCodeRequest struct {
	Email   string `json:"email" binding:"required"`
	Purpose string `json:"purpose" binding:"required"`
}

type userRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Code        string `json:"code" binding:"required"`
	DisplayName string `json:"display_name"`
	StoreName   string `json:"store_name"`
}

type userLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type userProfileView struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	StoreName   string     `json:"store_name,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type userAuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      userProfileView `json:"user"`
}

func buildUserProfileView(user *models.User) userProfileView {
	return userProfileView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		StoreName:   user.StoreName,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// SendUserVerifyCode 发送邮箱验证码
func (h *Handler) SendUserVerifyCode(c *gin.Context) {
	var req sendVerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.SendVerifyCode(req.Email, req.Purpose); err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, nil)
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req userRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Code:        req.Code,
		DisplayName: req.DisplayName,
		StoreName:   req.StoreName,
	})
	if err != nil {
		respondUserAuthError(c, err)
		return
	}

	response.Success(c, userAuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      buildUserProfileView(user),
	})
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req userLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}

	response.Success(c, userAuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      buildUserProfileView(user),
	})
}

// ResetUserPassword 重置密码
func (h *Handler) ResetUserPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetUserProfile 获取当前登录用户档案
func (h *Handler) GetUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}

	response.Success(c, buildUserProfileView(user))
}
