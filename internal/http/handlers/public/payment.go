package public

import (
	"errors"
	"io"

	handlershared "github.com/sgtmake/storefront-api/internal/http/handlers/shared"
	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/payment/razorpay"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentFailureRequest 支付失败上报请求
type PaymentFailureRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
}

// PaymentCallback 支付完成回调。验签失败一律返回笼统提示，
// 不泄露任何诊断细节（伪造回调按对抗行为处理）。
func (h *Handler) PaymentCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	data, err := razorpay.ParseCallback(body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", nil)
		return
	}

	result, err := h.PaymentService.VerifyCallback(data)
	if err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) {
			handlershared.RequestLog(c).Warnw("payment_callback_rejected",
				"gateway_order_id", data.OrderID,
			)
			respondError(c, response.CodeBadRequest, "payment verification failed, please contact support", nil)
			return
		}
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment verification failed, please contact support", err)
		return
	}
	response.Success(c, result)
}

// PaymentFailure 网关报告支付失败：补偿删除待支付订单
func (h *Handler) PaymentFailure(c *gin.Context) {
	var req PaymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.PaymentService.ReportFailure(req.GatewayOrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment failure handling failed", err)
		return
	}
	response.Success(c, nil)
}
