package services

import (
	"time"

	"tmig/internal/models"
)

// StatusInput 状态推导的原始字段。源库没有显式状态，
// 只能从时间戳和计数器推导
type StatusInput struct {
	StartedAt  *time.Time
	FinishedAt *time.Time
	ExpiresAt  *time.Time

	Frequency       string
	AttemptsUsed    int // 负数为遗留"未知"哨兵值
	AllowedAttempts int // 同上
	Score           float64
	PassingScore    float64
}

// StatusCalculator 纯状态计算器，无外部依赖。
// 各内容类型的判定顺序固定，多个条件同时成立时以先判定的为准
type StatusCalculator struct{}

// NewStatusCalculator 创建状态计算器
func NewStatusCalculator() *StatusCalculator {
	return &StatusCalculator{}
}

// 遗留哨兵值的钳制：已用次数未知按3次算，允许次数未知按1次算
const (
	clampedAttemptsUsed    = 3
	clampedAllowedAttempts = 1
)

// clamp 钳制负数计数器，必须在任何判定之前执行
func (c *StatusCalculator) clamp(in StatusInput) StatusInput {
	if in.AttemptsUsed < 0 {
		in.AttemptsUsed = clampedAttemptsUsed
	}
	if in.AllowedAttempts < 0 {
		in.AllowedAttempts = clampedAllowedAttempts
	}
	return in
}

// yearlyExpired 年度复训任务是否已过期
func (c *StatusCalculator) yearlyExpired(in StatusInput, now time.Time) bool {
	return in.Frequency == models.FrequencyYearly &&
		in.ExpiresAt != nil && in.ExpiresAt.Before(now)
}

// ExamStatus 考试状态：过期 > 通过 > 次数用尽未通过 > 进行中 > 未开始
func (c *StatusCalculator) ExamStatus(in StatusInput, now time.Time) string {
	in = c.clamp(in)

	if c.yearlyExpired(in, now) {
		return models.ExamStatusExpired
	}
	if in.FinishedAt != nil && in.Score >= in.PassingScore {
		return models.ExamStatusCompleted
	}
	if in.StartedAt != nil && in.Score < in.PassingScore && in.AttemptsUsed >= in.AllowedAttempts {
		return models.ExamStatusFailed
	}
	if in.StartedAt != nil && in.AttemptsUsed > 0 {
		return models.ExamStatusInProgress
	}
	return models.ExamStatusNotStarted
}

// ModuleStatus 模块状态：过期 > 完成 > 待办
func (c *StatusCalculator) ModuleStatus(in StatusInput, now time.Time) string {
	in = c.clamp(in)

	if c.yearlyExpired(in, now) {
		return models.ModuleStatusDueDateExpired
	}
	if in.FinishedAt != nil && in.Score >= in.PassingScore {
		return models.ModuleStatusFinished
	}
	return models.ModuleStatusPending
}

// ChecklistStatus 技能核查表状态：完成 > 过期 > 待办。
// 注意这里先判完成后判过期，与考试/模块顺序相反，是源系统既有行为，保持不变
func (c *StatusCalculator) ChecklistStatus(in StatusInput, now time.Time) string {
	in = c.clamp(in)

	if in.FinishedAt != nil {
		return models.ChecklistStatusCompleted
	}
	if c.yearlyExpired(in, now) {
		return models.ChecklistStatusDueDateExpired
	}
	return models.ChecklistStatusPending
}

// AcknowledgementStatus 制度/文档签收状态：有签收时间即完成
func (c *StatusCalculator) AcknowledgementStatus(acknowledgedAt *time.Time) string {
	if acknowledgedAt != nil {
		return models.AcknowledgementStatusCompleted
	}
	return models.AcknowledgementStatusPending
}
