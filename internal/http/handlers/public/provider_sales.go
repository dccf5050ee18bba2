package public

import (
	"strconv"
	"strings"

	"github.com/mercato-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListStoreSales 商家查询本店铺的销售流水
func (h *Handler) ListStoreSales(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	storeName := getStoreName(c)
	if strings.TrimSpace(storeName) == "" {
		user, err := h.UserAuthService.GetUserByID(uid)
		if err != nil || user == nil {
			respondError(c, response.CodeUnauthorized, "error.unauthorized", err)
			return
		}
		storeName = user.StoreName
	}
	if strings.TrimSpace(storeName) == "" {
		respondError(c, response.CodeForbidden, "error.store_required", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	sales, total, err := h.OrderService.ListStoreSales(storeName, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, sales, pagination)
}
