package legacy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tmig/internal/models"
	"tmig/pkg/config"

	"gorm.io/gorm"
)

// Repository 源库只读查询。所有列表查询排除早于截止日期的记录
// 和当前已过期的门户，并按标题/名称确定性排序
type Repository struct {
	db          *gorm.DB
	cutover     time.Time
	testDomains []string
}

// NewRepository 创建源库查询仓库
func NewRepository(db *gorm.DB, cfg *config.MigrationConfig) *Repository {
	return &Repository{
		db:          db,
		cutover:     cfg.CutoverDate,
		testDomains: cfg.TestEmailDomains,
	}
}

// activePortalScope 门户有效性过滤：未软删除且未过期
func (r *Repository) activePortalScope(db *gorm.DB) *gorm.DB {
	return db.Where("portals.deleted = 0").
		Where("portals.expires_on IS NULL OR portals.expires_on > ?", time.Now())
}

// ActivePortals 有效门户列表。ids非空时仅返回这些门户并保持给定顺序
// （显式优先级列表，保证处理顺序确定）
func (r *Repository) ActivePortals(ids []uint) ([]Portal, error) {
	query := r.activePortalScope(r.db.Model(&Portal{}))
	if len(ids) > 0 {
		query = query.Where("portals.id IN ?", ids)
	}

	var portals []Portal
	if err := query.Order("portals.id").Find(&portals).Error; err != nil {
		return nil, fmt.Errorf("查询门户失败: %v", err)
	}

	if len(ids) == 0 {
		return portals, nil
	}

	// 按给定的优先级顺序重排
	byID := make(map[uint]Portal, len(portals))
	for _, p := range portals {
		byID[p.ID] = p
	}
	ordered := make([]Portal, 0, len(portals))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// MembersByPortal 门户下指定角色的成员，排除软删除学员和内部测试域名邮箱
func (r *Repository) MembersByPortal(portalID uint, roleIDs []int64) ([]PortalStudent, error) {
	query := r.db.Model(&PortalStudent{}).
		Joins("JOIN students ON students.id = portal_students.student_id").
		Where("portal_students.portal_id = ?", portalID).
		Where("students.deleted = 0").
		Where("students.role_id IN ?", roleIDs).
		Where("students.created_on >= ?", r.cutover)

	for _, domain := range r.testDomains {
		query = query.Where("LOWER(students.email) NOT LIKE ?", "%@"+strings.ToLower(domain))
	}

	var members []PortalStudent
	err := query.Order("students.name").Preload("Student").Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("查询门户成员失败: %v", err)
	}
	return members, nil
}

// LocationsByPortal 门户下的地点
func (r *Repository) LocationsByPortal(portalID uint) ([]Location, error) {
	var locations []Location
	err := r.db.Where("portal_id = ?", portalID).Order("name").Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("查询地点失败: %v", err)
	}
	return locations, nil
}

// DepartmentsByPortal 门户下的部门
func (r *Repository) DepartmentsByPortal(portalID uint) ([]Department, error) {
	var departments []Department
	err := r.db.Where("portal_id = ?", portalID).Order("name").Find(&departments).Error
	if err != nil {
		return nil, fmt.Errorf("查询部门失败: %v", err)
	}
	return departments, nil
}

// SupervisorLinks 门户下的学员-主管关系
func (r *Repository) SupervisorLinks(portalID uint) ([]SupervisorLink, error) {
	var links []SupervisorLink
	err := r.db.Where("portal_id = ?", portalID).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("查询主管关系失败: %v", err)
	}
	return links, nil
}

// CourseAssignments 学员的课程学习记录（考试与模块按有无测验区分）
func (r *Repository) CourseAssignments(portalID, studentID uint) ([]CourseAssignment, error) {
	var assignments []CourseAssignment
	err := r.db.Model(&CourseAssignment{}).
		Joins("JOIN courses ON courses.id = student_courses.course_id").
		Where("student_courses.portal_id = ? AND student_courses.student_id = ?", portalID, studentID).
		Where("student_courses.created_on >= ?", r.cutover).
		Order("courses.title").
		Preload("Course").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询课程记录失败: %v", err)
	}
	return assignments, nil
}

// HydrateCourseResults 批量补充课程记录的最近成绩：
// 优先取最近一次测验作答，无作答记录时解析成绩历史字符串的末位值
func (r *Repository) HydrateCourseResults(assignments []CourseAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(assignments))
	for i := range assignments {
		ids = append(ids, assignments[i].ID)
	}

	// 无作答时间的脏数据排最后，避免NULL在降序中排到最前抢走"最近一次"
	var attempts []QuizAttempt
	err := r.db.Where("student_course_id IN ?", ids).
		Order("student_course_id, taken_on DESC NULLS LAST, id DESC").
		Find(&attempts).Error
	if err != nil {
		return fmt.Errorf("查询测验作答失败: %v", err)
	}

	// 每条记录只保留最近一次作答
	latest := make(map[uint]float64, len(attempts))
	for _, a := range attempts {
		if _, ok := latest[a.StudentCourseID]; !ok {
			latest[a.StudentCourseID] = a.Score
		}
	}

	for i := range assignments {
		if score, ok := latest[assignments[i].ID]; ok {
			assignments[i].LatestScore = score
			continue
		}
		if score, ok := parseTrailingScore(assignments[i].ScoreHistory); ok {
			assignments[i].LatestScore = score
		}
	}
	return nil
}

// parseTrailingScore 解析遗留成绩历史字符串（逗号分隔）的末位值
func parseTrailingScore(history string) (float64, bool) {
	history = strings.TrimSpace(history)
	if history == "" {
		return 0, false
	}
	parts := strings.Split(history, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// ChecklistAssignments 学员的技能核查表任务
func (r *Repository) ChecklistAssignments(portalID, studentID uint) ([]ChecklistAssignment, error) {
	var assignments []ChecklistAssignment
	err := r.db.Model(&ChecklistAssignment{}).
		Joins("JOIN skill_checklists ON skill_checklists.id = student_skill_checklists.checklist_id").
		Where("student_skill_checklists.portal_id = ? AND student_skill_checklists.student_id = ?", portalID, studentID).
		Where("student_skill_checklists.created_on >= ?", r.cutover).
		Order("skill_checklists.title").
		Preload("Checklist").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能核查表任务失败: %v", err)
	}
	return assignments, nil
}

// PolicyAssignments 学员的制度签收记录，同一制度去重为ID最大的一条
func (r *Repository) PolicyAssignments(portalID, studentID uint) ([]PolicyAssignment, error) {
	var assignments []PolicyAssignment
	err := r.db.Model(&PolicyAssignment{}).
		Joins("JOIN policies ON policies.id = student_policies.policy_id").
		Where("student_policies.portal_id = ? AND student_policies.student_id = ?", portalID, studentID).
		Where("student_policies.created_on >= ?", r.cutover).
		Order("policies.title, student_policies.id DESC").
		Preload("Policy").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询制度签收记录失败: %v", err)
	}

	// 去重：每个制度只保留ID最大的记录（排序已保证先见即最大）
	seen := make(map[uint]bool, len(assignments))
	deduped := assignments[:0]
	for _, a := range assignments {
		if seen[a.PolicyID] {
			continue
		}
		seen[a.PolicyID] = true
		deduped = append(deduped, a)
	}
	return deduped, nil
}

// DocumentAssignments 学员的文档阅读记录
func (r *Repository) DocumentAssignments(portalID, studentID uint) ([]DocumentAssignment, error) {
	var assignments []DocumentAssignment
	err := r.db.Model(&DocumentAssignment{}).
		Joins("JOIN documents ON documents.id = student_documents.document_id").
		Where("student_documents.portal_id = ? AND student_documents.student_id = ?", portalID, studentID).
		Where("student_documents.created_on >= ?", r.cutover).
		Order("documents.title").
		Preload("Document").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("查询文档阅读记录失败: %v", err)
	}
	return assignments, nil
}

// DistinctTitles 一次性标题发现查询：按内容类型返回源库出现过的全部标题，
// 用于解析器的预热阶段
func (r *Repository) DistinctTitles(contentType models.ContentType) ([]string, error) {
	var query *gorm.DB
	var column string

	switch contentType {
	case models.ContentTypeExam:
		column = "courses.title"
		query = r.db.Model(&CourseAssignment{}).
			Joins("JOIN courses ON courses.id = student_courses.course_id").
			Joins("JOIN portals ON portals.id = student_courses.portal_id").
			Where("courses.quiz_id IS NOT NULL").
			Where("student_courses.created_on >= ?", r.cutover)
	case models.ContentTypeModule:
		column = "courses.title"
		query = r.db.Model(&CourseAssignment{}).
			Joins("JOIN courses ON courses.id = student_courses.course_id").
			Joins("JOIN portals ON portals.id = student_courses.portal_id").
			Where("courses.quiz_id IS NULL").
			Where("student_courses.created_on >= ?", r.cutover)
	case models.ContentTypeSkillChecklist:
		column = "skill_checklists.title"
		query = r.db.Model(&ChecklistAssignment{}).
			Joins("JOIN skill_checklists ON skill_checklists.id = student_skill_checklists.checklist_id").
			Joins("JOIN portals ON portals.id = student_skill_checklists.portal_id").
			Where("student_skill_checklists.created_on >= ?", r.cutover)
	case models.ContentTypePolicy:
		column = "policies.title"
		query = r.db.Model(&PolicyAssignment{}).
			Joins("JOIN policies ON policies.id = student_policies.policy_id").
			Joins("JOIN portals ON portals.id = student_policies.portal_id").
			Where("student_policies.created_on >= ?", r.cutover)
	case models.ContentTypeDocument:
		column = "documents.title"
		query = r.db.Model(&DocumentAssignment{}).
			Joins("JOIN documents ON documents.id = student_documents.document_id").
			Joins("JOIN portals ON portals.id = student_documents.portal_id").
			Where("student_documents.created_on >= ?", r.cutover)
	default:
		return nil, fmt.Errorf("未知内容类型: %s", contentType)
	}

	query = r.activePortalScope(query)

	var titles []string
	if err := query.Distinct().Order(column).Pluck(column, &titles).Error; err != nil {
		return nil, fmt.Errorf("查询标题失败: %v", err)
	}
	return titles, nil
}
