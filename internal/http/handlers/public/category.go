package public

import (
	"errors"
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/repository"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCategories 分类列表（仅返回启用分类）
func (h *Handler) ListCategories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.CategoryListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		OnlyActive: true,
	}

	categories, total, err := h.CategoryService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, categories, pagination)
}

// GetCategory 根据 slug 获取分类详情
func (h *Handler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")
	category, err := h.CategoryService.GetBySlug(slug, true)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, response.CodeNotFound, "error.category_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}

	response.Success(c, category)
}
