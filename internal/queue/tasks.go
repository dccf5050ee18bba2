package queue

import (
	"encoding/json"

	"github.com/mercato-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDeliveryStatusEmail 配送状态邮件通知任务
	TaskDeliveryStatusEmail = constants.TaskDeliveryStatusEmail
)

// DeliveryStatusEmailPayload 配送状态邮件任务载荷
type DeliveryStatusEmailPayload struct {
	OrderID   string `json:"order_id"`
	PackingID string `json:"packing_id"`
	StoreName string `json:"store_name"`
	Status    string `json:"status"`
	ToEmail   string `json:"to_email"`
}

// NewDeliveryStatusEmailTask 创建配送状态邮件任务
func NewDeliveryStatusEmailTask(payload DeliveryStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryStatusEmail, body), nil
}
