package public

import (
	"errors"

	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity out of range"},
	{target: service.ErrCartQuantityLimit, code: response.CodeBadRequest, msg: "maximum quantity reached"},
	{target: service.ErrCustomPayloadInvalid, code: response.CodeBadRequest, msg: "custom item payload invalid"},
	{target: service.ErrCartItemShapeInvalid, code: response.CodeBadRequest, msg: "cart item shape invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrCartNotFound, code: response.CodeNotFound, msg: "cart not found"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrAddressRequired, code: response.CodeBadRequest, msg: "address required"},
	{target: service.ErrAddressNotFound, code: response.CodeBadRequest, msg: "address not found"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity out of range"},
	{target: service.ErrCustomPayloadInvalid, code: response.CodeBadRequest, msg: "custom item payload invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrGatewayRequestFailed, code: response.CodeInternal, msg: "payment gateway unavailable"},
	{target: service.ErrGatewayResponseInvalid, code: response.CodeInternal, msg: "payment gateway unavailable"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrEmailInvalid, code: response.CodeBadRequest, msg: "email invalid"},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest, msg: "password too weak"},
	{target: service.ErrEmailTaken, code: response.CodeBadRequest, msg: "email already registered"},
	{target: service.ErrCredentialsInvalid, code: response.CodeUnauthorized, msg: "email or password incorrect"},
}
