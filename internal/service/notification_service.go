package service

import (
	"time"

	"github.com/pashumitra/internal/constants"
	"github.com/pashumitra/internal/logger"
	"github.com/pashumitra/internal/models"
	"github.com/pashumitra/internal/queue"
	"github.com/pashumitra/internal/repository"
)

// NotificationService 审批结果通知服务
// 只负责落通知记录并入队, 真正的短信/邮件送达由外部网关完成。
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	queueClient      *queue.Client
}

// NotifyInput 通知输入
type NotifyInput struct {
	AgentID    uint
	Event      string
	EntityType string
	EntityID   uint
	Body       string
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
	}
}

// Notify 创建通知记录并入队
// 通知失败不影响业务结果, 只打日志。
func (s *NotificationService) Notify(input NotifyInput) {
	if s == nil || s.notificationRepo == nil || input.AgentID == 0 {
		return
	}
	notification := &models.Notification{
		AgentID:    input.AgentID,
		Channel:    constants.NotificationChannelSMS,
		Event:      input.Event,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Body:       input.Body,
		Status:     constants.NotificationStatusPending,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Errorw("notification_create_failed",
			"agent_id", input.AgentID,
			"event", input.Event,
			"error", err,
		)
		return
	}
	if err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
		NotificationID: notification.ID,
	}); err != nil {
		logger.Errorw("notification_enqueue_failed",
			"notification_id", notification.ID,
			"error", err,
		)
	}
}

// Dispatch 执行通知送达（worker 调用）
// 当前没有接入真实短信网关, 标记为已送达并留痕。
func (s *NotificationService) Dispatch(notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		logger.Warnw("notification_dispatch_missing", "notification_id", notificationID)
		return nil
	}
	if notification.Status != constants.NotificationStatusPending {
		return nil
	}
	now := time.Now()
	notification.Status = constants.NotificationStatusDispatched
	notification.DispatchedAt = &now
	if err := s.notificationRepo.Update(notification); err != nil {
		return err
	}
	logger.Infow("notification_dispatched",
		"notification_id", notification.ID,
		"agent_id", notification.AgentID,
		"event", notification.Event,
	)
	return nil
}

// ListByAgent 分页查询代理人通知
func (s *NotificationService) ListByAgent(agentID uint, page, pageSize int) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListByAgent(agentID, page, pageSize)
}
