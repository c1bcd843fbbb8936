package public

import (
	"errors"

	"github.com/sgtmake/storefront-api/internal/checkout"
	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// BuyNowRequest 立即购买请求，编码为快照令牌写入 cookie
type BuyNowRequest struct {
	Mode      string                 `json:"mode" binding:"required"`
	ProductID uint                   `json:"product_id"`
	Variant   string                 `json:"variant"`
	Payload   map[string]interface{} `json:"payload"`
	Quantity  int                    `json:"quantity" binding:"required"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

// BuyNow 编码结算快照并写入短时效 cookie。
// 快照本身不带过期字段，过期完全由 cookie max-age 承担。
func (h *Handler) BuyNow(c *gin.Context) {
	var req BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	selection := checkout.Selection{
		Mode:      req.Mode,
		ProductID: req.ProductID,
		Variant:   req.Variant,
		Payload:   req.Payload,
		Quantity:  req.Quantity,
	}
	token, err := checkout.Encode(selection)
	if err != nil {
		respondError(c, response.CodeBadRequest, "selection invalid", err)
		return
	}

	maxAge := h.Config.Checkout.SnapshotMaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 900
	}
	c.SetCookie(constants.SnapshotCookieName, token, maxAge, "/", "", false, true)
	response.Success(c, gin.H{"token": token})
}

// Checkout 创建待支付订单与网关支付意向。
// 存在快照 cookie 时优先按快照结算，否则按实时购物车结算；
// 损坏的快照令牌直接报错，不静默回退购物车。
// 快照一次性使用：只要本次结算动用了令牌，无论成败都立即作废。
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var selection *checkout.Selection
	if token, err := c.Cookie(constants.SnapshotCookieName); err == nil && token != "" {
		clearSnapshotCookie(c)
		decoded, err := checkout.Decode(token)
		if err != nil {
			if errors.Is(err, checkout.ErrTokenMalformed) {
				respondError(c, response.CodeBadRequest, "checkout token malformed", nil)
				return
			}
			respondError(c, response.CodeBadRequest, "checkout token invalid", err)
			return
		}
		selection = &decoded
	}

	intent, err := h.OrderService.BuildPendingOrder(c.Request.Context(), service.BuildOrderInput{
		UserID:    userID,
		AddressID: req.AddressID,
		ClientIP:  c.ClientIP(),
		Selection: selection,
	})
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, intent)
}

func clearSnapshotCookie(c *gin.Context) {
	c.SetCookie(constants.SnapshotCookieName, "", -1, "/", "", false, true)
}
