package services

import (
	"fmt"
	"time"

	"smp/internal/models"
	"smp/pkg/logger"
	"smp/pkg/queue"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// FeeReminderScheduler 费用提醒定时任务
// 每日扫描到期未缴清的账单，标记overdue并向学生监护人账号投递通知
type FeeReminderScheduler struct {
	db                  *gorm.DB
	cron                *cron.Cron
	feeService          *FeeService
	notificationService *NotificationService
}

func NewFeeReminderScheduler(db *gorm.DB, q *queue.RedisQueue) *FeeReminderScheduler {
	return &FeeReminderScheduler{
		db:                  db,
		cron:                cron.New(),
		feeService:          NewFeeService(db),
		notificationService: NewNotificationService(db, q),
	}
}

// Start 启动调度，spec为cron表达式（如 "0 8 * * *" 每日8点）
func (s *FeeReminderScheduler) Start(spec string) error {
	if spec == "" {
		spec = "0 8 * * *"
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("注册费用提醒任务失败: %w", err)
	}
	s.cron.Start()
	logger.GetLogger().Infof("费用提醒调度已启动: %s", spec)
	return nil
}

// Stop 停止调度，等待在途任务完成
func (s *FeeReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.GetLogger().Info("费用提醒调度已停止")
}

// runOnce 单轮扫描：标记逾期、逐单投递提醒通知
func (s *FeeReminderScheduler) runOnce() {
	appLogger := logger.GetLogger()

	marked, err := s.feeService.MarkOverdue(time.Now())
	if err != nil {
		appLogger.Errorf("标记逾期费用失败: %v", err)
		return
	}
	if marked > 0 {
		appLogger.Infof("本轮标记逾期费用 %d 笔", marked)
	}

	fees, err := s.feeService.ListOverdue()
	if err != nil {
		appLogger.Errorf("查询逾期费用失败: %v", err)
		return
	}

	for _, fee := range fees {
		if s.alreadyRemindedToday(fee) {
			continue
		}
		title := "缴费逾期提醒"
		body := fmt.Sprintf("学生ID %d 的%s费用尚有 %.2f 未缴清，请尽快处理。",
			fee.StudentID, fee.Category, fee.Outstanding())
		if _, err := s.notificationService.Create(fee.TenantID, nil, title, body, "fee_reminder"); err != nil {
			appLogger.Errorf("投递费用 %d 提醒失败: %v", fee.ID, err)
		}
	}
}

// alreadyRemindedToday 当日同类提醒去重，避免重复轰炸
func (s *FeeReminderScheduler) alreadyRemindedToday(fee *models.Fee) bool {
	today := time.Now().Truncate(24 * time.Hour)
	var count int64
	s.db.Model(&models.Notification{}).
		Where("tenant_id = ? AND category = ? AND created_at >= ? AND body LIKE ?",
			fee.TenantID, "fee_reminder", today, fmt.Sprintf("%%学生ID %d %%", fee.StudentID)).
		Count(&count)
	return count > 0
}
