package models

// ContentType 内容类型
type ContentType string

const (
	ContentTypeExam           ContentType = "exam"            // 考试（带测验的课程）
	ContentTypeModule         ContentType = "module"          // 课程模块（无测验）
	ContentTypeSkillChecklist ContentType = "skill_checklist" // 技能核查表
	ContentTypePolicy         ContentType = "policy"          // 制度文件
	ContentTypeDocument       ContentType = "document"        // 普通文档
)

// AllContentTypes 全部内容类型，按固定处理顺序
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentTypeExam,
		ContentTypeModule,
		ContentTypeSkillChecklist,
		ContentTypePolicy,
		ContentTypeDocument,
	}
}

// SupportsShell 该类型是否参与占位记录机制。
// 制度和文档只做两级解析，无法匹配即跳过，不建占位
func (t ContentType) SupportsShell() bool {
	return t != ContentTypePolicy && t != ContentTypeDocument
}

// 内容状态常量
const (
	ContentStatusActive   = "active"
	ContentStatusArchived = "archived"
)

// ContentItem 内容定义。标题是源侧的自然键，AgencyID为空表示全局内容
type ContentItem struct {
	BaseModel
	Type     ContentType `gorm:"size:30;not null;index:idx_content_lookup" json:"type"`
	Title    string      `gorm:"size:500;not null;index:idx_content_lookup" json:"title"`
	AgencyID *uint       `gorm:"index" json:"agency_id"` // 为空=全局内容，非空=机构专属

	IsShell bool   `gorm:"default:false;index" json:"is_shell"` // 占位记录，等待人工创作
	Status  string `gorm:"size:20;default:'active'" json:"status"`
}

// TableName 表名
func (ContentItem) TableName() string {
	return "content_items"
}

// ItemScope 该内容的作用域
func (c *ContentItem) ItemScope() Scope {
	if c.AgencyID == nil {
		return GlobalScope()
	}
	return AgencyScope(*c.AgencyID)
}

// Scope 内容作用域：全局或机构专属。
// 用带标记的值类型代替可空列判空，比较处语义明确
type Scope struct {
	agencyID uint
}

// GlobalScope 全局作用域
func GlobalScope() Scope {
	return Scope{}
}

// AgencyScope 机构作用域
func AgencyScope(agencyID uint) Scope {
	return Scope{agencyID: agencyID}
}

// IsGlobal 是否全局作用域
func (s Scope) IsGlobal() bool {
	return s.agencyID == 0
}

// Agency 返回机构ID，全局作用域时第二个返回值为false
func (s Scope) Agency() (uint, bool) {
	if s.agencyID == 0 {
		return 0, false
	}
	return s.agencyID, true
}
