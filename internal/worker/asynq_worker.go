package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/provider"
	"github.com/sgtmake/storefront-api/internal/queue"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/hibiken/asynq"
)

// guestGCInterval 游客身份清理任务的自续期间隔
const guestGCInterval = time.Hour

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPaidEmail, c.handleOrderPaidEmail)
	mux.HandleFunc(queue.TaskGuestIdentGC, c.handleGuestIdentGC)
}

func (c *Consumer) handleOrderPaidEmail(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderPaidEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_paid_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_paid_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_paid_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_paid_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_paid_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_order_paid_email_skip_empty_receiver", "order_id", order.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_paid_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}
	input := service.OrderPaidEmailInput{
		Receipt:  order.Receipt,
		Amount:   order.TotalAmount,
		Currency: order.Currency,
	}
	if err := c.EmailService.SendOrderPaidEmail(strings.TrimSpace(user.Email), input); err != nil {
		logger.Warnw("worker_order_paid_email_send_failed",
			"order_id", order.ID,
			"receipt", order.Receipt,
			"error", err,
		)
		return err
	}
	return nil
}

// handleGuestIdentGC 清理过期游客身份并自行续期下一轮
func (c *Consumer) handleGuestIdentGC(_ context.Context, task *asynq.Task) error {
	purged, err := c.IdentityService.PurgeExpired()
	if err != nil {
		logger.Warnw("worker_guest_ident_gc_failed", "error", err)
		return err
	}
	if purged > 0 {
		logger.Infow("worker_guest_ident_gc_completed", "purged", purged)
	}
	if err := c.QueueClient.EnqueueGuestIdentGC(guestGCInterval); err != nil {
		logger.Warnw("worker_guest_ident_gc_reschedule_failed", "error", err)
	}
	return nil
}
