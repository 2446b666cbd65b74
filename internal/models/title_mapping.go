package models

// TitleMapping 标题映射表，由管理员维护。
// 三种形态：绑定目标内容（ContentItemID非空）、排除（Exclude=true）、
// 待整理（两者都空，由映射生成任务填充）
type TitleMapping struct {
	BaseModel
	ContentType ContentType `gorm:"size:30;not null;uniqueIndex:idx_mapping_identity" json:"content_type"`
	SourceTitle string      `gorm:"size:500;not null;uniqueIndex:idx_mapping_identity" json:"source_title"`

	ContentItemID *uint `gorm:"index" json:"content_item_id"`  // 绑定的目标内容ID
	Exclude       bool  `gorm:"default:false" json:"exclude"` // 排除标记：该标题静默丢弃，不记未解析也不建占位

	ContentItem *ContentItem `gorm:"foreignKey:ContentItemID" json:"content_item,omitempty"`
}

// TableName 表名
func (TitleMapping) TableName() string {
	return "title_mappings"
}
