package legacy

import (
	"time"
)

// 源库（遗留培训系统）只读模型。表结构由对方系统决定，这里只声明迁移需要的列

// Portal 源库门户（租户）
type Portal struct {
	ID          uint       `gorm:"primarykey"`
	Name        string     `gorm:"column:name"`
	ExpiresOn   *time.Time `gorm:"column:expires_on"`
	MaxSeats    int        `gorm:"column:max_seats"`
	BillingCode string     `gorm:"column:billing_code"`
	CreatedOn   *time.Time `gorm:"column:created_on"`
	Deleted     int        `gorm:"column:deleted"` // 软删除标记
}

// TableName 表名
func (Portal) TableName() string {
	return "portals"
}

// Student 源库学员。姓名为单列全名，迁移时按第一个空白拆分
type Student struct {
	ID        uint       `gorm:"primarykey"`
	FullName  string     `gorm:"column:name"`
	Email     string     `gorm:"column:email"`
	RoleID    int64      `gorm:"column:role_id"`
	Status    string     `gorm:"column:status"`
	Phone     string     `gorm:"column:phone"`
	Deleted   int        `gorm:"column:deleted"`
	CreatedOn *time.Time `gorm:"column:created_on"`
}

// TableName 表名
func (Student) TableName() string {
	return "students"
}

// PortalStudent 门户-学员成员关系
type PortalStudent struct {
	ID             uint   `gorm:"primarykey"`
	PortalID       uint   `gorm:"column:portal_id"`
	StudentID      uint   `gorm:"column:student_id"`
	EmployeeNumber string `gorm:"column:employee_number"`
	Status         string `gorm:"column:status"`
	LocationID     *uint  `gorm:"column:location_id"`
	DepartmentID   *uint  `gorm:"column:department_id"`

	Student Student `gorm:"foreignKey:StudentID"`
}

// TableName 表名
func (PortalStudent) TableName() string {
	return "portal_students"
}

// SupervisorLink 学员-主管关系（主管也是学员）
type SupervisorLink struct {
	ID                  uint `gorm:"primarykey"`
	PortalID            uint `gorm:"column:portal_id"`
	StudentID           uint `gorm:"column:student_id"`
	SupervisorStudentID uint `gorm:"column:supervisor_student_id"`
}

// TableName 表名
func (SupervisorLink) TableName() string {
	return "student_supervisors"
}

// Location 源库地点
type Location struct {
	ID       uint   `gorm:"primarykey"`
	PortalID uint   `gorm:"column:portal_id"`
	Name     string `gorm:"column:name"`
}

// TableName 表名
func (Location) TableName() string {
	return "locations"
}

// Department 源库部门
type Department struct {
	ID       uint   `gorm:"primarykey"`
	PortalID uint   `gorm:"column:portal_id"`
	Name     string `gorm:"column:name"`
}

// TableName 表名
func (Department) TableName() string {
	return "departments"
}

// Course 源库课程。只有自由文本标题，没有指向新平台的外键；
// 挂了测验的课程按考试处理，否则按模块处理
type Course struct {
	ID     uint   `gorm:"primarykey"`
	Title  string `gorm:"column:title"`
	QuizID *uint  `gorm:"column:quiz_id"`
}

// TableName 表名
func (Course) TableName() string {
	return "courses"
}

// CourseAssignment 课程学习记录
type CourseAssignment struct {
	ID        uint `gorm:"primarykey"`
	PortalID  uint `gorm:"column:portal_id"`
	StudentID uint `gorm:"column:student_id"`
	CourseID  uint `gorm:"column:course_id"`

	AssignedOn *time.Time `gorm:"column:assigned_on"`
	DueOn      *time.Time `gorm:"column:due_on"`
	ExpiresOn  *time.Time `gorm:"column:expires_on"`
	StartedOn  *time.Time `gorm:"column:started_on"`
	FinishedOn *time.Time `gorm:"column:finished_on"`

	Frequency       string     `gorm:"column:frequency"`
	AttemptsUsed    int        `gorm:"column:attempts_used"`    // 负数为遗留"未知"哨兵值
	AllowedAttempts int        `gorm:"column:allowed_attempts"` // 同上
	PassingScore    float64    `gorm:"column:passing_score"`
	ScoreHistory    string     `gorm:"column:score_history"` // 逗号分隔的历史成绩字符串
	CreatedOn       *time.Time `gorm:"column:created_on"`

	Course Course `gorm:"foreignKey:CourseID"`

	// 水合结果：最近一次测验成绩，无测验记录时取成绩历史的末位值
	LatestScore float64 `gorm:"-"`
}

// TableName 表名
func (CourseAssignment) TableName() string {
	return "student_courses"
}

// IsExam 是否按考试处理（课程挂有测验）
func (a *CourseAssignment) IsExam() bool {
	return a.Course.QuizID != nil
}

// QuizAttempt 测验作答记录
type QuizAttempt struct {
	ID              uint       `gorm:"primarykey"`
	StudentCourseID uint       `gorm:"column:student_course_id"`
	Score           float64    `gorm:"column:score"`
	TakenOn         *time.Time `gorm:"column:taken_on"`
}

// TableName 表名
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// SkillChecklist 技能核查表定义
type SkillChecklist struct {
	ID    uint   `gorm:"primarykey"`
	Title string `gorm:"column:title"`
}

// TableName 表名
func (SkillChecklist) TableName() string {
	return "skill_checklists"
}

// ChecklistAssignment 技能核查表任务
type ChecklistAssignment struct {
	ID          uint `gorm:"primarykey"`
	PortalID    uint `gorm:"column:portal_id"`
	StudentID   uint `gorm:"column:student_id"`
	ChecklistID uint `gorm:"column:checklist_id"`

	AssignedOn *time.Time `gorm:"column:assigned_on"`
	DueOn      *time.Time `gorm:"column:due_on"`
	ExpiresOn  *time.Time `gorm:"column:expires_on"`
	FinishedOn *time.Time `gorm:"column:finished_on"`

	Frequency string     `gorm:"column:frequency"`
	CreatedOn *time.Time `gorm:"column:created_on"`

	Checklist SkillChecklist `gorm:"foreignKey:ChecklistID"`
}

// TableName 表名
func (ChecklistAssignment) TableName() string {
	return "student_skill_checklists"
}

// Policy 制度文件定义
type Policy struct {
	ID    uint   `gorm:"primarykey"`
	Title string `gorm:"column:title"`
}

// TableName 表名
func (Policy) TableName() string {
	return "policies"
}

// PolicyAssignment 制度签收记录。同一制度可能有多条，取ID最大的一条
type PolicyAssignment struct {
	ID        uint `gorm:"primarykey"`
	PortalID  uint `gorm:"column:portal_id"`
	StudentID uint `gorm:"column:student_id"`
	PolicyID  uint `gorm:"column:policy_id"`

	AssignedOn     *time.Time `gorm:"column:assigned_on"`
	AcknowledgedOn *time.Time `gorm:"column:acknowledged_on"`
	CreatedOn      *time.Time `gorm:"column:created_on"`

	Policy Policy `gorm:"foreignKey:PolicyID"`
}

// TableName 表名
func (PolicyAssignment) TableName() string {
	return "student_policies"
}

// Document 普通文档定义
type Document struct {
	ID    uint   `gorm:"primarykey"`
	Title string `gorm:"column:title"`
}

// TableName 表名
func (Document) TableName() string {
	return "documents"
}

// DocumentAssignment 文档阅读记录
type DocumentAssignment struct {
	ID        uint `gorm:"primarykey"`
	PortalID  uint `gorm:"column:portal_id"`
	StudentID uint `gorm:"column:student_id"`
	DocumentID uint `gorm:"column:document_id"`

	AssignedOn *time.Time `gorm:"column:assigned_on"`
	ReadOn     *time.Time `gorm:"column:read_on"`
	CreatedOn  *time.Time `gorm:"column:created_on"`

	Document Document `gorm:"foreignKey:DocumentID"`
}

// TableName 表名
func (DocumentAssignment) TableName() string {
	return "student_documents"
}
