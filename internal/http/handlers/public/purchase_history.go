package public

import (
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePurchase 创建购买记录（结账快照）
func (h *Handler) CreatePurchase(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req service.RecordPurchaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	// 购买记录归属始终取自登录态，忽略请求体里的 user_id
	req.UserID = uid

	record, err := h.PurchaseService.RecordPurchase(req)
	if err != nil {
		respondPurchaseCreateError(c, err)
		return
	}

	response.Success(c, record)
}

// ListPurchaseHistory 获取用户购买记录列表
func (h *Handler) ListPurchaseHistory(c *gin.Context) {
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

	records, total, err := h.PurchaseService.ListByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.purchase_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, records, pagination)
}
