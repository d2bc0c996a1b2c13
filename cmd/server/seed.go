package main

import (
	"fmt"

	"fieldops/internal/database"
	"fieldops/internal/models"
	"fieldops/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认租户
	if err := createDefaultTenant(db); err != nil {
		return fmt.Errorf("创建默认租户失败: %v", err)
	}

	// 2. 创建平台管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultTenant 创建默认租户
func createDefaultTenant(db *gorm.DB) error {
	var count int64
	db.Model(&models.Tenant{}).Where("code = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}

	tenant := &models.Tenant{
		Name:   "默认租户",
		Code:   "default",
		Status: models.TenantStatusActive,
	}

	if err := db.Create(tenant).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户创建成功")
	return nil
}

// createDefaultAdmin 创建平台管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var tenant models.Tenant
	if err := db.Where("code = ?", "default").First(&tenant).Error; err != nil {
		return err
	}

	var count int64
	db.Model(&models.User{}).Where("tenant_id = ? AND username = ?", tenant.ID, "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return nil
	}

	// 默认密码仅用于首次部署，上线后必须修改
	hashed, err := bcrypt.GenerateFromPassword([]byte("Admin@123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		TenantID:        tenant.ID,
		Username:        "admin",
		Password:        string(hashed),
		Name:            "平台管理员",
		IsPlatformAdmin: true,
		Status:          models.UserStatusActive,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认管理员创建成功（用户名: admin）")
	return nil
}
