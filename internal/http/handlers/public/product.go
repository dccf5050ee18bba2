package public

import (
	"errors"
	"strconv"

	"github.com/mercato-api/internal/http/response"
	"github.com/mercato-api/internal/repository"
	"github.com/mercato-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表（仅返回上架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   c.Query("category_id"),
		StoreName:    c.Query("store_name"),
		Search:       c.Query("search"),
		OnlyActive:   true,
		WithCategory: true,
	}

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", err)
		return
	}

	product, err := h.ProductService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.Success(c, product)
}

var productSaveErrorRules = []mappedHandlerError{
	{target: service.ErrStoreRequired, code: response.CodeForbidden, key: "error.store_required"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, key: "error.category_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrTrackingForbidden, code: response.CodeForbidden, key: "error.tracking_forbidden"},
}

func respondProductSaveError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productSaveErrorRules, response.CodeInternal, "error.product_save_failed")
}

func (h *Handler) currentUser(c *gin.Context) (uint, bool) {
	return getUserID(c)
}

// CreateProduct 商家创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil || user == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", err)
		return
	}

	var req service.SaveProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.Create(user, req)
	if err != nil {
		respondProductSaveError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 商家更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil || user == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", err)
		return
	}

	var req service.SaveProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.Update(user, uint(id), req)
	if err != nil {
		respondProductSaveError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 商家删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil || user == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", err)
		return
	}

	if err := h.ProductService.Delete(user, uint(id)); err != nil {
		respondProductSaveError(c, err)
		return
	}
	response.Success(c, nil)
}
