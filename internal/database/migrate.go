package database

import (
	"tmig/internal/models"
	"tmig/pkg/logger"
)

// Migrate 执行目标库表结构迁移（只迁移目标库，源库只读）
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Agency{},
		&models.User{},
		&models.AgencyUser{},
		&models.Location{},
		&models.Department{},
		&models.ContentItem{},
		&models.Assignment{},
		// 标题映射（管理员维护）
		&models.TitleMapping{},
		// 迁移运行记录与审计日志
		&models.MigrationRun{},
		&models.MigrationRunLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	return nil
}
