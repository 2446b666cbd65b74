package services

import (
	"tmig/internal/models"
)

// contentKey 标题在某内容类型下的键
type contentKey struct {
	Type  models.ContentType
	Title string
}

// ResolutionKind 标题解析结果类型
type ResolutionKind int

const (
	// ResolutionUnresolved 未解析：软失败，跳过该任务并计入报告
	ResolutionUnresolved ResolutionKind = iota
	// ResolutionAgency 命中机构专属内容
	ResolutionAgency
	// ResolutionGlobal 命中全局内容
	ResolutionGlobal
	// ResolutionShell 命中占位记录
	ResolutionShell
	// ResolutionExcluded 命中排除列表：静默丢弃，不记日志不建占位
	ResolutionExcluded
)

// Resolution 标题解析结果。用显式类型代替可空查询，保证优先级可单测
type Resolution struct {
	Kind          ResolutionKind
	ContentItemID uint
}

// RunContext 单次运行的可变状态，显式传入每次解析调用，
// 解析器自身不持有跨运行的隐藏状态
type RunContext struct {
	RunID string

	shellLogged   map[contentKey]bool // 已记录过占位命中的标题（每标题每运行只记一次）
	unresolved    map[contentKey]bool // 未解析标题集合（去重）
	shellsCreated map[models.ContentType]int
}

// NewRunContext 创建运行上下文
func NewRunContext(runID string) *RunContext {
	return &RunContext{
		RunID:         runID,
		shellLogged:   make(map[contentKey]bool),
		unresolved:    make(map[contentKey]bool),
		shellsCreated: make(map[models.ContentType]int),
	}
}

// ShellsCreatedByType 按内容类型统计本次运行创建的占位记录数
func (rc *RunContext) ShellsCreatedByType() map[models.ContentType]int {
	result := make(map[models.ContentType]int, len(rc.shellsCreated))
	for ct, n := range rc.shellsCreated {
		result[ct] = n
	}
	return result
}

// UnresolvedByType 按内容类型统计未解析标题数
func (rc *RunContext) UnresolvedByType() map[models.ContentType]int {
	result := make(map[models.ContentType]int)
	for key := range rc.unresolved {
		result[key.Type]++
	}
	return result
}

// ShellsCreatedTotal 本次运行创建的占位记录总数
func (rc *RunContext) ShellsCreatedTotal() int {
	total := 0
	for _, n := range rc.shellsCreated {
		total += n
	}
	return total
}

// UnresolvedTotal 未解析标题总数
func (rc *RunContext) UnresolvedTotal() int {
	return len(rc.unresolved)
}
