package services

import (
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"
	"smp/pkg/logger"
	"smp/pkg/queue"

	"gorm.io/gorm"
)

// NotificationService 站内通知：落库为准，Redis队列用于实时推送旁路
type NotificationService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

func NewNotificationService(db *gorm.DB, q *queue.RedisQueue) *NotificationService {
	return &NotificationService{db: db, queue: q}
}

// Create 创建通知，userID为nil时为租户广播
// 入库成功后尽力入队推送，队列故障只记日志不影响主流程
func (s *NotificationService) Create(tenantID uint, userID *uint, title, body, category string) (*models.Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.NewValidation("通知标题不能为空")
	}
	if userID != nil {
		var count int64
		s.db.Model(&models.User{}).Where("tenant_id = ? AND id = ?", tenantID, *userID).Count(&count)
		if count == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	notification := &models.Notification{
		TenantID: tenantID,
		UserID:   userID,
		Title:    title,
		Body:     body,
		Category: category,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, err
	}

	if s.queue != nil {
		msg := &queue.NotificationMessage{
			NotificationID: notification.ID,
			TenantID:       tenantID,
			Title:          title,
			Body:           body,
			Category:       category,
		}
		if userID != nil {
			msg.UserID = *userID
		}
		if err := s.queue.Publish(msg); err != nil {
			logger.GetLogger().Warnf("通知 %d 入队失败: %v", notification.ID, err)
		}
	}

	return notification, nil
}

// ListForUser 用户可见通知：定向给本人的加上租户广播
func (s *NotificationService) ListForUser(tenantID, userID uint, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := s.db.Model(&models.Notification{}).
		Where("tenant_id = ? AND (user_id = ? OR user_id IS NULL)", tenantID, userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead 标记已读，仅允许标记本人可见的通知
func (s *NotificationService) MarkRead(tenantID, userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.Where("tenant_id = ? AND (user_id = ? OR user_id IS NULL)", tenantID, userID).
		First(&notification, id).Error
	if err != nil {
		return nil, err
	}

	notification.IsRead = true
	err = s.db.Save(&notification).Error
	return &notification, err
}

// MarkAllRead 全部标记已读，返回受影响行数
func (s *NotificationService) MarkAllRead(tenantID, userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("tenant_id = ? AND (user_id = ? OR user_id IS NULL) AND is_read = ?", tenantID, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(tenantID, userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("tenant_id = ? AND (user_id = ? OR user_id IS NULL) AND is_read = ?", tenantID, userID, false).
		Count(&count).Error
	return count, err
}
