package main

import (
	"fmt"

	"smp/internal/database"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认运营方
	if err := createDefaultProvider(db); err != nil {
		return fmt.Errorf("创建默认运营方失败: %v", err)
	}

	// 2. 创建默认运营方操作员
	if err := createDefaultProviderUser(db); err != nil {
		return fmt.Errorf("创建默认运营方操作员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultProvider 创建默认运营方
func createDefaultProvider(db *gorm.DB) error {
	var count int64
	db.Model(&models.Provider{}).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("运营方已存在，跳过创建")
		return nil
	}

	provider := &models.Provider{
		Name:     "SMP Platform",
		IsActive: true,
	}
	if err := db.Create(provider).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认运营方创建成功")
	return nil
}

// createDefaultProviderUser 创建默认运营方操作员（全量运营权限）
// 生产部署应在首次登录后立即修改默认密码，或改用/provider-auth/bootstrap引导
func createDefaultProviderUser(db *gorm.DB) error {
	var count int64
	db.Model(&models.ProviderUser{}).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("运营方操作员已存在，跳过创建")
		return nil
	}

	var provider models.Provider
	if err := db.Order("id ASC").First(&provider).Error; err != nil {
		return err
	}

	providerService := services.NewProviderService(db)
	user, err := providerService.CreateUser(provider.ID,
		"System", "Admin", "admin@smp.local", "Admin@123", models.AllProviderPermissions())
	if err != nil {
		return err
	}

	logger.GetLogger().Infof("默认运营方操作员创建成功: %s", user.Email)
	return nil
}
