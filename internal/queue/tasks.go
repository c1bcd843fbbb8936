package queue

import (
	"encoding/json"

	"github.com/sgtmake/storefront-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPaidEmail 支付成功邮件通知任务
	TaskOrderPaidEmail = constants.TaskOrderPaidEmail
	// TaskGuestIdentGC 过期游客身份清理任务
	TaskGuestIdentGC = constants.TaskGuestIdentGC
)

// OrderPaidEmailPayload 支付成功邮件任务载荷
type OrderPaidEmailPayload struct {
	OrderID uint `json:"order_id"`
	UserID  uint `json:"user_id"`
}

// GuestIdentGCPayload 游客身份清理任务载荷
type GuestIdentGCPayload struct{}

// NewOrderPaidEmailTask 创建支付成功邮件任务
func NewOrderPaidEmailTask(payload OrderPaidEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaidEmail, body), nil
}

// NewGuestIdentGCTask 创建游客身份清理任务
func NewGuestIdentGCTask() (*asynq.Task, error) {
	body, err := json.Marshal(GuestIdentGCPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGuestIdentGC, body), nil
}
