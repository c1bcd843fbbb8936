package public

import (
	"strconv"

	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 添加目录商品请求
type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// AddCustomCartItemRequest 添加定制商品请求
type AddCustomCartItemRequest struct {
	Payload  models.JSON `json:"payload" binding:"required"`
	Quantity int         `json:"quantity" binding:"required"`
}

// SetCartItemQuantityRequest 修改数量请求
type SetCartItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车（联表计价）。纯读路径：
// 无有效身份时直接返回空购物车，不签发游客身份。
func (h *Handler) GetCart(c *gin.Context) {
	owner, found, err := h.resolveOwnerReadOnly(c)
	if err != nil {
		respondError(c, response.CodeInternal, "guest identity resolve failed", err)
		return
	}
	if !found {
		response.Success(c, &service.CartView{Items: []service.CartLineView{}})
		return
	}
	view, err := h.CartService.ReadCart(owner)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart fetch failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem 添加目录商品行
func (h *Handler) AddCartItem(c *gin.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.AddCatalogItem(owner, service.AddCatalogItemInput{
		ProductID: req.ProductID,
		Variant:   req.Variant,
		Quantity:  req.Quantity,
	}); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, nil)
}

// AddCustomCartItem 添加定制商品行
func (h *Handler) AddCustomCartItem(c *gin.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}
	var req AddCustomCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.AddCustomItem(owner, service.AddCustomItemInput{
		Payload:  req.Payload,
		Quantity: req.Quantity,
	}); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, nil)
}

// SetCartItemQuantity 修改购物车行数量
func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}
	var req SetCartItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.SetQuantity(owner, uint(itemID), req.Quantity); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, nil)
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(owner, uint(itemID)); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, nil)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(owner); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, nil)
}
