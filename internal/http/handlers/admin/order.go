package admin

import (
	"errors"
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/repository"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 订单记录列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	filter := repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uint(userID),
		OrderID:     c.Query("order_id"),
		StoreName:   c.Query("store_name"),
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
	}

	records, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, records, pagination)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", err)
		return
	}

	record, err := h.OrderService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.Success(c, record)
}

// UpdateOrderTracking 管理端更新配送状态（跳过归属校验）
func (h *Handler) UpdateOrderTracking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", err)
		return
	}

	var req service.UpdateTrackingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	record, err := h.OrderService.UpdateTracking(0, uint(id), req)
	if err != nil {
		respondAdminTrackingError(c, err)
		return
	}

	response.Success(c, record)
}
