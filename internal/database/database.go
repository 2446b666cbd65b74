package database

import (
	"fmt"

	"tmig/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// DB 目标库连接（新内容平台，读写）
	DB *gorm.DB
	// SourceDB 源库连接（遗留培训系统，只读）
	SourceDB *gorm.DB
)

// Initialize 初始化源库和目标库连接
func Initialize(cfg *config.Config) error {
	var err error

	DB, err = connect(cfg.TargetDB)
	if err != nil {
		return fmt.Errorf("连接目标库失败: %v", err)
	}

	SourceDB, err = connect(cfg.SourceDB)
	if err != nil {
		return fmt.Errorf("连接源库失败: %v", err)
	}

	return nil
}

// connect 建立数据库连接
func connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 静默模式，避免干扰迁移日志
	})
	if err != nil {
		return nil, err
	}

	// 配置连接池（迁移为严格串行处理，不需要大连接池）
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// GetDB 获取目标库连接
func GetDB() *gorm.DB {
	return DB
}

// GetSourceDB 获取源库连接
func GetSourceDB() *gorm.DB {
	return SourceDB
}

// Close 关闭数据库连接
func Close() error {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				return err
			}
		}
	}
	if SourceDB != nil {
		if sqlDB, err := SourceDB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
