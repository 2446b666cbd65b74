package models

import (
	"time"
)

// User 用户模型（源库"学员"迁移后的用户）
// 邮箱为全局唯一身份键：已存在则更新，不存在则创建
type User struct {
	BaseModel
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"` // 小写存储，大小写不敏感比较
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Role      string `gorm:"size:20;not null" json:"role"`
	Status    string `gorm:"size:20;default:'active'" json:"status"`
	Phone     string `gorm:"size:50" json:"phone"`

	SourceStudentID uint `gorm:"index" json:"source_student_id"` // 源库学员ID（溯源用，非身份键）
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// 用户角色常量
const (
	UserRoleAdmin     = "admin"
	UserRoleClinician = "clinician"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// AgencyUser 用户-机构关联表（成员关系）
type AgencyUser struct {
	ID       uint `gorm:"primarykey" json:"id"`
	AgencyID uint `gorm:"not null;uniqueIndex:idx_agency_user" json:"agency_id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_agency_user" json:"user_id"`

	EmployeeNumber string `gorm:"size:50" json:"employee_number"` // 工号
	Status         string `gorm:"size:20" json:"status"`

	// 组织归属（可选）
	LocationID   *uint `gorm:"index" json:"location_id"`
	DepartmentID *uint `gorm:"index" json:"department_id"`
	SupervisorID *uint `gorm:"index" json:"supervisor_id"` // 主管的目标库用户ID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Agency Agency `gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE" json:"agency,omitempty"`
}

// TableName 指定表名
func (AgencyUser) TableName() string {
	return "agency_users"
}
