package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mercato-api/internal/logger"
	"github.com/mercato-api/internal/provider"
	"github.com/mercato-api/internal/queue"
	"github.com/mercato-api/internal/service"

	"github.com/hibiken/asynq"
)

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
	mux.HandleFunc(queue.TaskDeliveryStatusEmail, c.handleDeliveryStatusEmail)
}

func (c *Consumer) handleDeliveryStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_delivery_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.DeliveryStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_delivery_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" || payload.ToEmail == "" {
		logger.Debugw("worker_delivery_status_email_skip_invalid_payload",
			"order_id", payload.OrderID,
			"has_email", payload.ToEmail != "",
		)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_delivery_status_email_skip_email_service_nil", "order_id", payload.OrderID)
		return nil
	}

	input := service.DeliveryStatusEmailInput{
		OrderID:   payload.OrderID,
		PackingID: payload.PackingID,
		StoreName: payload.StoreName,
		Status:    payload.Status,
	}
	if err := c.EmailService.SendDeliveryStatusEmail(payload.ToEmail, input); err != nil {
		// 邮件服务未启用时任务直接丢弃，不触发重试
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_delivery_status_email_skip_disabled", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_delivery_status_email_send_failed",
			"order_id", payload.OrderID,
			"packing_id", payload.PackingID,
			"error", err,
		)
		return err
	}
	return nil
}
