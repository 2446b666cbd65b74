package models

// Location 机构下的工作地点
type Location struct {
	BaseModel
	AgencyID         uint   `gorm:"not null;index" json:"agency_id"`
	Name             string `gorm:"size:200;not null" json:"name"`
	SourceLocationID uint   `gorm:"index" json:"source_location_id"` // 源库地点ID

	Agency Agency `gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE" json:"agency,omitempty"`
}

// TableName 表名
func (Location) TableName() string {
	return "locations"
}

// Department 机构下的部门
type Department struct {
	BaseModel
	AgencyID           uint   `gorm:"not null;index" json:"agency_id"`
	Name               string `gorm:"size:200;not null" json:"name"`
	SourceDepartmentID uint   `gorm:"index" json:"source_department_id"` // 源库部门ID

	Agency Agency `gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE" json:"agency,omitempty"`
}

// TableName 表名
func (Department) TableName() string {
	return "departments"
}
