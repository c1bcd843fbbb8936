package service

import "errors"

// 服务层统一错误定义，handler 按错误映射响应码
var (
	// 校验类
	ErrQuantityInvalid      = errors.New("quantity out of range")
	ErrAddressRequired      = errors.New("address required")
	ErrCustomPayloadInvalid = errors.New("custom item payload invalid")
	ErrEmailInvalid         = errors.New("email invalid")
	ErrPasswordTooWeak      = errors.New("password too weak")
	ErrCredentialsInvalid   = errors.New("credentials invalid")

	// 未找到类
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrAddressNotFound     = errors.New("address not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrUserNotFound        = errors.New("user not found")

	// 容量类
	ErrCartQuantityLimit = errors.New("cart item quantity limit reached")

	// 冲突类
	ErrCartItemShapeInvalid = errors.New("cart item must be exactly one of catalog or custom")
	ErrEmailTaken           = errors.New("email already registered")
	ErrGuestMergeConflict   = errors.New("guest identity already consumed")

	// 网关类
	ErrGatewayRequestFailed   = errors.New("payment gateway request failed")
	ErrGatewayResponseInvalid = errors.New("payment gateway response invalid")
	ErrSignatureMismatch      = errors.New("payment signature mismatch")

	// 结算类
	ErrCartEmpty = errors.New("cart is empty")
)
