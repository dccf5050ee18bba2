package admin

import (
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPurchases 购买记录列表
func (h *Handler) ListPurchases(c *gin.Context) {
	page, pageSize := parsePageQuery(c)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	filter := repository.PurchaseListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uint(userID),
		OrderID:     c.Query("order_id"),
		Email:       c.Query("email"),
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
	}

	records, total, err := h.PurchaseService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.purchase_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, records, pagination)
}
