package models

import (
	"time"

	"gorm.io/datatypes"
)

// MigrationRun 迁移运行记录
type MigrationRun struct {
	BaseModel
	RunID   string `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	Trigger string `gorm:"size:20;not null" json:"trigger"` // on_demand/batch/scheduled

	PortalID *uint `gorm:"index" json:"portal_id"` // 单租户触发时的源门户ID，为空表示全量

	// 运行中标志：同一时刻最多一个按需运行。进程崩溃可能遗留该标志，
	// 需要操作员通过释放接口清理
	Running bool `gorm:"index" json:"running"`

	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	Status       string     `gorm:"size:20;not null" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	TriggeredBy  string     `gorm:"size:100" json:"triggered_by"`

	// 汇总统计
	TenantsImported  int `gorm:"default:0" json:"tenants_imported"`
	ShellsCreated    int `gorm:"default:0" json:"shells_created"`
	UnresolvedTitles int `gorm:"default:0" json:"unresolved_titles"`
}

// TableName 表名
func (MigrationRun) TableName() string {
	return "migration_runs"
}

// 运行触发方式常量
const (
	RunTriggerOnDemand  = "on_demand"
	RunTriggerBatch     = "batch"
	RunTriggerScheduled = "scheduled"
)

// 运行状态常量
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// MigrationRunLog 迁移审计日志，按运行ID追加写入，只用于审计不用于重放
type MigrationRunLog struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	RunID   string `gorm:"size:36;not null;index" json:"run_id"`
	Level   string `gorm:"size:10;not null" json:"level"`
	Message string `gorm:"type:text;not null" json:"message"`

	Details datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"` // 结构化错误信息

	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (MigrationRunLog) TableName() string {
	return "migration_run_logs"
}

// 日志级别常量
const (
	RunLogLevelInfo  = "info"
	RunLogLevelWarn  = "warn"
	RunLogLevelError = "error"
)
