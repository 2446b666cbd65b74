package models

import (
	"time"
)

// Agency 机构模型（源库"门户"迁移后的租户）
type Agency struct {
	BaseModel
	Name           string `gorm:"size:200;not null" json:"name"`
	SourcePortalID uint   `gorm:"uniqueIndex;not null" json:"source_portal_id"` // 源门户ID，跨运行的唯一身份键

	ExpiresAt       *time.Time `json:"expires_at"`                      // 合同到期时间
	MaxSeats        int        `gorm:"default:0" json:"max_seats"`      // 席位上限
	BillingCode     string     `gorm:"size:50" json:"billing_code"`     // 账务代码
	SourceCreatedAt *time.Time `json:"source_created_at"`               // 源库创建时间

	// 上线标记：非空表示该租户已成功迁移并上线，后续运行直接跳过
	LiveAt *time.Time `gorm:"index" json:"live_at"`
}

// TableName 表名
func (Agency) TableName() string {
	return "agencies"
}

// IsLive 租户是否已上线
func (a *Agency) IsLive() bool {
	return a.LiveAt != nil
}
