// Package checkout 提供"立即购买"场景的结算快照编解码。
// 快照只做结构变换，不做价格计算，不做过期校验；
// 过期由承载令牌的传输层（cookie max-age）负责。
package checkout

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sgtmake/storefront-api/internal/constants"
)

var (
	ErrTokenMalformed   = errors.New("checkout snapshot token malformed")
	ErrSelectionInvalid = errors.New("checkout selection invalid")
)

// Selection 结算快照内容。mode=direct 时填 ProductID/Variant，
// mode=custom 时填 Payload，两者互斥。
type Selection struct {
	Mode      string                 `json:"mode"`
	ProductID uint                   `json:"product_id,omitempty"`
	Variant   string                 `json:"variant,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Quantity  int                    `json:"quantity"`
}

// Validate 校验快照形状
func (s Selection) Validate() error {
	switch s.Mode {
	case constants.SnapshotModeDirect:
		if s.ProductID == 0 {
			return fmt.Errorf("%w: direct selection requires product_id", ErrSelectionInvalid)
		}
		if len(s.Payload) > 0 {
			return fmt.Errorf("%w: direct selection must not carry payload", ErrSelectionInvalid)
		}
	case constants.SnapshotModeCustom:
		if len(s.Payload) == 0 {
			return fmt.Errorf("%w: custom selection requires payload", ErrSelectionInvalid)
		}
		if s.ProductID != 0 {
			return fmt.Errorf("%w: custom selection must not carry product_id", ErrSelectionInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrSelectionInvalid, s.Mode)
	}
	if s.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrSelectionInvalid)
	}
	return nil
}

// Encode 把快照编码为不透明令牌。纯确定性变换，可逆，无服务端状态。
func Encode(selection Selection) (string, error) {
	if err := selection.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(selection)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode 解析令牌。令牌损坏返回 ErrTokenMalformed，
// 与"无令牌"（应回退到购物车结算）可区分。
func Decode(token string) (Selection, error) {
	var selection Selection
	if token == "" {
		return selection, ErrTokenMalformed
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return selection, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if err := json.Unmarshal(data, &selection); err != nil {
		return selection, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if err := selection.Validate(); err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return selection, nil
}
