package database

import (
	"smp/internal/models"
	"smp/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		// 身份与权限
		&models.Provider{},
		&models.ProviderUser{},
		&models.Tenant{},
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		// 教学主数据
		&models.Student{},
		&models.Class{},
		&models.Subject{},
		&models.ClassSubject{},
		&models.Enrollment{},
		// 成绩
		&models.Grade{},
		&models.GradeType{},
		&models.GradingScale{},
		&models.Term{},
		// 事务记录
		&models.Attendance{},
		&models.Fee{},
		&models.Payment{},
		&models.BehaviorRecord{},
		&models.Notification{},
		&models.TermReport{},
		&models.Asset{},
		&models.AIReportRequest{},
		&models.AuditLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
