package models

import (
	"time"
)

// Assignment 学习任务：用户 + 机构 + 内容的关联，携带进度与状态。
// 每次导入对 (机构, 用户, 内容类型) 整组删除后重建，不做部分更新
type Assignment struct {
	BaseModel
	AgencyID      uint        `gorm:"not null;index:idx_assignment_owner" json:"agency_id"`
	UserID        uint        `gorm:"not null;index:idx_assignment_owner" json:"user_id"`
	Type          ContentType `gorm:"size:30;not null;index:idx_assignment_owner" json:"type"`
	ContentItemID uint        `gorm:"not null;index" json:"content_item_id"`

	AssignedAt *time.Time `json:"assigned_at"`
	DueAt      *time.Time `json:"due_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	Frequency       string  `gorm:"size:20" json:"frequency"` // 复训频率，目前只有YEARLY有到期语义
	AttemptsUsed    int     `gorm:"default:0" json:"attempts_used"`
	AllowedAttempts int     `gorm:"default:0" json:"allowed_attempts"`
	Score           float64 `gorm:"default:0" json:"score"`
	PassingScore    float64 `gorm:"default:0" json:"passing_score"`

	Status string `gorm:"size:30;not null" json:"status"` // 由状态计算器从原始字段推导

	SourceRecordID uint `gorm:"index" json:"source_record_id"` // 源库任务记录ID（溯源）

	ContentItem ContentItem `gorm:"foreignKey:ContentItemID" json:"content_item,omitempty"`
}

// TableName 表名
func (Assignment) TableName() string {
	return "assignments"
}

// 复训频率常量
const (
	FrequencyYearly = "YEARLY"
)

// 考试状态常量
const (
	ExamStatusNotStarted = "NOT_STARTED"
	ExamStatusInProgress = "IN_PROGRESS"
	ExamStatusCompleted  = "COMPLETED"
	ExamStatusFailed     = "FAILED"
	ExamStatusExpired    = "EXPIRED"
)

// 模块状态常量
const (
	ModuleStatusPending        = "PENDING"
	ModuleStatusFinished       = "FINISHED"
	ModuleStatusDueDateExpired = "DUE_DATE_EXPIRED"
)

// 技能核查表状态常量
const (
	ChecklistStatusPending        = "PENDING"
	ChecklistStatusCompleted      = "COMPLETED"
	ChecklistStatusDueDateExpired = "DUE_DATE_EXPIRED"
)

// 制度/文档状态常量
const (
	AcknowledgementStatusPending   = "PENDING"
	AcknowledgementStatusCompleted = "COMPLETED"
)
