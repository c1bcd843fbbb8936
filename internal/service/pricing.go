package service

import (
	"github.com/sgtmake/storefront-api/internal/models"

	"github.com/shopspring/decimal"
)

// quantityDecimal 数量转 decimal，0 按 1 归一化避免乘出零金额
func quantityDecimal(quantity int) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return decimal.NewFromInt(int64(quantity))
}

// customPayloadPrice 从定制快照中取成交价（offer_price，缺省回退 base_price）。
// 定制价随快照由客户端提交，目录侧没有可信来源可复算。
func customPayloadPrice(payload models.JSON) (models.Money, error) {
	for _, key := range []string{"offer_price", "base_price"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if v < 0 {
				return models.Money{}, ErrCustomPayloadInvalid
			}
			return models.NewMoneyFromDecimal(decimal.NewFromFloat(v)), nil
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil || d.IsNegative() {
				return models.Money{}, ErrCustomPayloadInvalid
			}
			return models.NewMoneyFromDecimal(d), nil
		}
	}
	return models.Money{}, ErrCustomPayloadInvalid
}

// customPayloadTitle 从定制快照中取展示名称
func customPayloadTitle(payload models.JSON) string {
	for _, key := range []string{"title", "name"} {
		if raw, ok := payload[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s
			}
		}
	}
	return "custom item"
}
