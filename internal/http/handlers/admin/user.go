package admin

import (
	"context"
	"strings"

	"github.com/mercato-api/internal/cache"
	"github.com/mercato-api/internal/constants"
	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	filter := repository.UserListFilter{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       c.Query("keyword"),
		Status:        c.Query("status"),
		CreatedFrom:   parseTimeQuery(c, "created_from"),
		CreatedTo:     parseTimeQuery(c, "created_to"),
		LastLoginFrom: parseTimeQuery(c, "last_login_from"),
		LastLoginTo:   parseTimeQuery(c, "last_login_to"),
	}

	users, total, err := h.UserRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, users, pagination)
}

type batchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// BatchUpdateUserStatus 批量启用/禁用用户
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req batchUpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.UserStatusActive && status != constants.UserStatusBlocked {
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}
	if len(req.UserIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.user_ids_required", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, status); err != nil {
		respondError(c, response.CodeInternal, "error.user_update_failed", err)
		return
	}

	// 状态变更后失效认证缓存，让被禁用用户尽快掉线
	for _, id := range req.UserIDs {
		_ = cache.DelUserAuthState(context.Background(), id)
	}

	response.Success(c, gin.H{"updated": len(req.UserIDs), "status": status})
}
