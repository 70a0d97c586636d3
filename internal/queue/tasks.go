package queue

import (
	"encoding/json"

	"github.com/pashumitra/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 审批结果通知任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// NotificationDispatchPayload 通知任务载荷
type NotificationDispatchPayload struct {
	NotificationID uint `json:"notification_id"`
}

// NewNotificationDispatchTask 创建通知任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}
