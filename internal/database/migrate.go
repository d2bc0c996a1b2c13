package database

import (
	"fieldops/internal/models"
	"fieldops/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		// 业务实体
		&models.Account{},
		&models.Contact{},
		&models.Property{},
		&models.Equipment{},
		&models.SKU{},
		&models.StockLevel{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.WorkOrder{},
		&models.WorkOrderNote{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
