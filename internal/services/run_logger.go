package services

import (
	"encoding/json"
	"fmt"

	"tmig/internal/models"
	"tmig/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunLogger 迁移审计日志，按运行ID追加写入目标库。
// 只用于事后审计，写入失败不中断迁移
type RunLogger struct {
	db *gorm.DB
}

// NewRunLogger 创建审计日志记录器
func NewRunLogger(db *gorm.DB) *RunLogger {
	return &RunLogger{db: db}
}

// Info 记录信息级日志
func (l *RunLogger) Info(runID, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.GetLogger().WithField("run_id", runID).Info(message)
	l.append(runID, models.RunLogLevelInfo, message, nil)
}

// Warn 记录警告级日志
func (l *RunLogger) Warn(runID, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.GetLogger().WithField("run_id", runID).Warn(message)
	l.append(runID, models.RunLogLevelWarn, message, nil)
}

// Error 记录错误级日志，错误详情以结构化JSON存储
func (l *RunLogger) Error(runID, message string, err error) {
	logger.GetLogger().WithField("run_id", runID).WithError(err).Error(message)

	var details datatypes.JSON
	if err != nil {
		if data, marshalErr := json.Marshal(map[string]string{"error": err.Error()}); marshalErr == nil {
			details = data
		}
	}
	l.append(runID, models.RunLogLevelError, message, details)
}

// append 追加一条审计日志
func (l *RunLogger) append(runID, level, message string, details datatypes.JSON) {
	entry := &models.MigrationRunLog{
		RunID:   runID,
		Level:   level,
		Message: message,
		Details: details,
	}
	if err := l.db.Create(entry).Error; err != nil {
		logger.GetLogger().WithError(err).Error("写入审计日志失败")
	}
}
