package services

import (
	"testing"
	"time"

	"tmig/internal/legacy"
	"tmig/internal/models"
	"tmig/pkg/config"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试环境：内存sqlite分别模拟源库和目标库

func newTestMigrationConfig() *config.MigrationConfig {
	return &config.MigrationConfig{
		Env:              config.EnvMigration,
		CutoverDate:      time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		AdminRoleIDs:     []int64{1},
		ClinicianRoleIDs: []int64{2},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存sqlite每个连接是独立数据库，必须锁定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func setupTargetDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	err := db.AutoMigrate(
		&models.Agency{}, &models.User{}, &models.AgencyUser{},
		&models.Location{}, &models.Department{},
		&models.ContentItem{}, &models.Assignment{}, &models.TitleMapping{},
		&models.MigrationRun{}, &models.MigrationRunLog{},
	)
	require.NoError(t, err)
	return db
}

func setupSourceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	err := db.AutoMigrate(
		&legacy.Portal{}, &legacy.Student{}, &legacy.PortalStudent{}, &legacy.SupervisorLink{},
		&legacy.Location{}, &legacy.Department{},
		&legacy.Course{}, &legacy.CourseAssignment{}, &legacy.QuizAttempt{},
		&legacy.SkillChecklist{}, &legacy.ChecklistAssignment{},
		&legacy.Policy{}, &legacy.PolicyAssignment{},
		&legacy.Document{}, &legacy.DocumentAssignment{},
	)
	require.NoError(t, err)
	return db
}

func testTimePtr(t time.Time) *time.Time {
	return &t
}

func testUintPtr(n uint) *uint {
	return &n
}
