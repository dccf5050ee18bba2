package public

import (
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrderTracking 获取用户配送跟踪列表（按店铺分组展平）
func (h *Handler) ListOrderTracking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	pathUserID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || pathUserID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", err)
		return
	}
	if uint(pathUserID) != uid {
		respondError(c, response.CodeForbidden, "error.tracking_forbidden", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	views, total, err := h.OrderService.ListTrackingViews(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, views, pagination)
}

// UpdateOrderTracking 更新店铺分组的配送状态
func (h *Handler) UpdateOrderTracking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderRecordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderRecordID == 0 {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", err)
		return
	}

	var req service.UpdateTrackingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	record, err := h.OrderService.UpdateTracking(uid, uint(orderRecordID), req)
	if err != nil {
		respondTrackingUpdateError(c, err)
		return
	}

	response.Success(c, record)
}
