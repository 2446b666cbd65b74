package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"tmig/internal/legacy"
	"tmig/internal/models"
	"tmig/pkg/config"
	"tmig/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRunActive 已有按需运行在进行中
var ErrRunActive = errors.New("已有迁移任务在运行")

// MigrationService 迁移编排器：按租户驱动导入顺序，
// 保证每租户至多成功导入一次，并汇总运行报告。
// 整个流程严格串行，租户、用户、任务类型逐一处理
type MigrationService struct {
	target     *gorm.DB
	source     *legacy.Repository
	calculator *StatusCalculator
	runLogger  *RunLogger
	cfg        *config.MigrationConfig

	// 运行中标志的检查和创建之间必须互斥，否则并发触发会双写
	startMu sync.Mutex
}

// NewMigrationService 创建迁移编排器
func NewMigrationService(target *gorm.DB, source *legacy.Repository, cfg *config.MigrationConfig) *MigrationService {
	return &MigrationService{
		target:     target,
		source:     source,
		calculator: NewStatusCalculator(),
		runLogger:  NewRunLogger(target),
		cfg:        cfg,
	}
}

// RunLogger 返回审计日志记录器（供外部触发面使用）
func (s *MigrationService) RunLogger() *RunLogger {
	return s.runLogger
}

// ========== 运行生命周期 ==========

// StartOnDemand 接受一次按需单租户导入：持久化的运行中标志防止并发，
// 冲突时拒绝。返回创建的运行记录，实际执行由调用方异步发起
func (s *MigrationService) StartOnDemand(portalID uint, triggeredBy string) (*models.MigrationRun, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	var active int64
	err := s.target.Model(&models.MigrationRun{}).Where("running = ?", true).Count(&active).Error
	if err != nil {
		return nil, fmt.Errorf("查询运行状态失败: %v", err)
	}
	if active > 0 {
		return nil, ErrRunActive
	}

	run := &models.MigrationRun{
		RunID:       uuid.NewString(),
		Trigger:     models.RunTriggerOnDemand,
		PortalID:    &portalID,
		Running:     true,
		StartedAt:   time.Now(),
		Status:      models.RunStatusRunning,
		TriggeredBy: triggeredBy,
	}
	if err := s.target.Create(run).Error; err != nil {
		return nil, fmt.Errorf("创建运行记录失败: %v", err)
	}
	return run, nil
}

// ExecuteOnDemand 执行按需单租户导入。生产环境下成功后把租户标记为已上线；
// 无论结果如何都会清除运行中标志
func (s *MigrationService) ExecuteOnDemand(run *models.MigrationRun, portalID uint) error {
	rc := NewRunContext(run.RunID)
	err := s.runPipeline(rc, run, []uint{portalID}, s.cfg.Production)
	s.finalizeRun(run, rc, err)
	return err
}

// RunBatch 全量迁移：按显式优先级顺序访问全部有效租户。
// 由专用迁移环境的触发面或调度器调用
func (s *MigrationService) RunBatch(trigger, triggeredBy string) error {
	run := &models.MigrationRun{
		RunID:       uuid.NewString(),
		Trigger:     trigger,
		Running:     true,
		StartedAt:   time.Now(),
		Status:      models.RunStatusRunning,
		TriggeredBy: triggeredBy,
	}
	if err := s.target.Create(run).Error; err != nil {
		return fmt.Errorf("创建运行记录失败: %v", err)
	}

	rc := NewRunContext(run.RunID)
	err := s.runPipeline(rc, run, s.cfg.PriorityPortals, false)
	s.finalizeRun(run, rc, err)
	return err
}

// runPipeline 运行主流程。任一租户出错都会中止整个运行并向上传播
// （对单租户按需调用是期望行为，对全量批次为既有语义，保持不变）
func (s *MigrationService) runPipeline(rc *RunContext, run *models.MigrationRun, portalIDs []uint, markLive bool) error {
	resolver := NewContentResolver(s.target, s.source, s.runLogger)

	// 预热在整个批次只做一次，跨租户共享
	for _, contentType := range models.AllContentTypes() {
		if err := resolver.Prime(rc, contentType); err != nil {
			s.runLogger.Error(rc.RunID, fmt.Sprintf("预热 %s 失败", contentType), err)
			return err
		}
	}

	portals, err := s.source.ActivePortals(portalIDs)
	if err != nil {
		s.runLogger.Error(rc.RunID, "查询源库门户失败", err)
		return err
	}

	imported := 0
	for i := range portals {
		portal := &portals[i]

		// 已上线的租户跳过：每租户至多成功导入一次
		var existing models.Agency
		err := s.target.Where("source_portal_id = ?", portal.ID).First(&existing).Error
		if err == nil && existing.IsLive() {
			s.runLogger.Info(rc.RunID, "租户 %d (%s) 已上线，跳过", portal.ID, portal.Name)
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.runLogger.Error(rc.RunID, "查询目标库机构失败", err)
			return err
		}

		agency, err := s.importPortal(rc, resolver, portal)
		if err != nil {
			s.runLogger.Error(rc.RunID,
				fmt.Sprintf("租户 %d (%s) 导入失败，中止本次运行", portal.ID, portal.Name), err)
			return err
		}
		imported++

		if markLive {
			now := time.Now()
			if err := s.target.Model(agency).Update("live_at", &now).Error; err != nil {
				s.runLogger.Error(rc.RunID, "标记租户上线失败", err)
				return err
			}
			s.runLogger.Info(rc.RunID, "租户 %d (%s) 已标记上线", portal.ID, portal.Name)
		}
	}

	run.TenantsImported = imported
	return nil
}

// finalizeRun 收尾：汇总占位/未解析报告并关闭运行记录。
// 成功失败都会执行，保证运行中标志一定被清除
func (s *MigrationService) finalizeRun(run *models.MigrationRun, rc *RunContext, runErr error) {
	// 按内容类型汇总报告
	for _, contentType := range models.AllContentTypes() {
		shells := rc.ShellsCreatedByType()[contentType]
		unresolved := rc.UnresolvedByType()[contentType]
		if shells == 0 && unresolved == 0 {
			continue
		}
		s.runLogger.Info(rc.RunID, "汇总 %s: 新建占位 %d, 未解析 %d", contentType, shells, unresolved)
	}

	now := time.Now()
	run.Running = false
	run.FinishedAt = &now
	run.ShellsCreated = rc.ShellsCreatedTotal()
	run.UnresolvedTitles = rc.UnresolvedTotal()
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = models.RunStatusSuccess
	}

	if err := s.target.Save(run).Error; err != nil {
		s.runLogger.Error(rc.RunID, "关闭运行记录失败", err)
	}
}

// ========== 租户导入 ==========

// importPortal 导入单个租户：机构 → 地点 → 部门 → 管理员 → 临床人员，
// 每个临床人员级联导入五类学习任务，最后回填主管关系
func (s *MigrationService) importPortal(rc *RunContext, resolver *ContentResolver, portal *legacy.Portal) (*models.Agency, error) {
	s.runLogger.Info(rc.RunID, "开始导入租户 %d (%s)", portal.ID, portal.Name)

	agency, err := s.upsertAgency(portal)
	if err != nil {
		return nil, err
	}

	locationMap, err := s.importLocations(agency, portal.ID)
	if err != nil {
		return nil, err
	}
	departmentMap, err := s.importDepartments(agency, portal.ID)
	if err != nil {
		return nil, err
	}

	// 源学员ID → 目标用户ID，主管回填时使用
	userMap := make(map[uint]uint)

	admins, err := s.source.MembersByPortal(portal.ID, s.cfg.AdminRoleIDs)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		user, err := s.importMember(agency, &admins[i], models.UserRoleAdmin, locationMap, departmentMap)
		if err != nil {
			return nil, err
		}
		userMap[admins[i].StudentID] = user.ID
	}

	clinicians, err := s.source.MembersByPortal(portal.ID, s.cfg.ClinicianRoleIDs)
	if err != nil {
		return nil, err
	}
	for i := range clinicians {
		member := &clinicians[i]
		user, err := s.importMember(agency, member, models.UserRoleClinician, locationMap, departmentMap)
		if err != nil {
			return nil, err
		}
		userMap[member.StudentID] = user.ID

		if err := s.importMemberAssignments(rc, resolver, agency, user.ID, portal.ID, member.StudentID); err != nil {
			return nil, err
		}
	}

	if err := s.linkSupervisors(agency, portal.ID, userMap); err != nil {
		return nil, err
	}

	s.runLogger.Info(rc.RunID, "租户 %d (%s) 导入完成: 管理员 %d, 临床人员 %d",
		portal.ID, portal.Name, len(admins), len(clinicians))
	return agency, nil
}

// upsertAgency 按源门户ID建立或更新机构，源门户ID是跨运行的唯一身份键
func (s *MigrationService) upsertAgency(portal *legacy.Portal) (*models.Agency, error) {
	var agency models.Agency
	err := s.target.Where("source_portal_id = ?", portal.ID).First(&agency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		agency = models.Agency{SourcePortalID: portal.ID}
	} else if err != nil {
		return nil, fmt.Errorf("查询机构失败: %v", err)
	}

	agency.Name = portal.Name
	agency.ExpiresAt = portal.ExpiresOn
	agency.MaxSeats = portal.MaxSeats
	agency.BillingCode = portal.BillingCode
	agency.SourceCreatedAt = portal.CreatedOn

	if err := s.target.Save(&agency).Error; err != nil {
		return nil, fmt.Errorf("保存机构失败: %v", err)
	}
	return &agency, nil
}

// importLocations 导入地点，返回源地点ID → 目标地点ID映射
func (s *MigrationService) importLocations(agency *models.Agency, portalID uint) (map[uint]uint, error) {
	locations, err := s.source.LocationsByPortal(portalID)
	if err != nil {
		return nil, err
	}

	result := make(map[uint]uint, len(locations))
	for _, src := range locations {
		location := models.Location{AgencyID: agency.ID, SourceLocationID: src.ID}
		err := s.target.
			Where("agency_id = ? AND source_location_id = ?", agency.ID, src.ID).
			FirstOrCreate(&location).Error
		if err != nil {
			return nil, fmt.Errorf("导入地点失败: %v", err)
		}
		if location.Name != src.Name {
			location.Name = src.Name
			if err := s.target.Save(&location).Error; err != nil {
				return nil, fmt.Errorf("更新地点失败: %v", err)
			}
		}
		result[src.ID] = location.ID
	}
	return result, nil
}

// importDepartments 导入部门，返回源部门ID → 目标部门ID映射
func (s *MigrationService) importDepartments(agency *models.Agency, portalID uint) (map[uint]uint, error) {
	departments, err := s.source.DepartmentsByPortal(portalID)
	if err != nil {
		return nil, err
	}

	result := make(map[uint]uint, len(departments))
	for _, src := range departments {
		department := models.Department{AgencyID: agency.ID, SourceDepartmentID: src.ID}
		err := s.target.
			Where("agency_id = ? AND source_department_id = ?", agency.ID, src.ID).
			FirstOrCreate(&department).Error
		if err != nil {
			return nil, fmt.Errorf("导入部门失败: %v", err)
		}
		if department.Name != src.Name {
			department.Name = src.Name
			if err := s.target.Save(&department).Error; err != nil {
				return nil, fmt.Errorf("更新部门失败: %v", err)
			}
		}
		result[src.ID] = department.ID
	}
	return result, nil
}

// importMember 导入一名成员。邮箱是用户唯一的跨运行身份键：
// 已存在则更新，不存在则创建；成员关系按 (机构, 用户) 建立或更新
func (s *MigrationService) importMember(agency *models.Agency, member *legacy.PortalStudent, role string,
	locationMap, departmentMap map[uint]uint) (*models.User, error) {

	student := &member.Student
	email := strings.ToLower(strings.TrimSpace(student.Email))
	firstName, lastName := splitName(student.FullName)

	var user models.User
	err := s.target.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Email: email}
	} else if err != nil {
		return nil, fmt.Errorf("查询用户失败: %v", err)
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Role = role
	user.Status = models.UserStatusActive
	user.Phone = student.Phone
	user.SourceStudentID = student.ID

	if err := s.target.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("保存用户失败: %v", err)
	}

	membership := models.AgencyUser{AgencyID: agency.ID, UserID: user.ID}
	err = s.target.
		Where("agency_id = ? AND user_id = ?", agency.ID, user.ID).
		FirstOrCreate(&membership).Error
	if err != nil {
		return nil, fmt.Errorf("建立成员关系失败: %v", err)
	}

	membership.EmployeeNumber = member.EmployeeNumber
	membership.Status = member.Status
	membership.LocationID = mapOptional(member.LocationID, locationMap)
	membership.DepartmentID = mapOptional(member.DepartmentID, departmentMap)

	if err := s.target.Save(&membership).Error; err != nil {
		return nil, fmt.Errorf("更新成员关系失败: %v", err)
	}
	return &user, nil
}

// linkSupervisors 回填主管关系。主管本身也是成员，必须在全部成员导入后执行
func (s *MigrationService) linkSupervisors(agency *models.Agency, portalID uint, userMap map[uint]uint) error {
	links, err := s.source.SupervisorLinks(portalID)
	if err != nil {
		return err
	}

	for _, link := range links {
		userID, ok := userMap[link.StudentID]
		if !ok {
			continue
		}
		supervisorID, ok := userMap[link.SupervisorStudentID]
		if !ok {
			continue
		}
		err := s.target.Model(&models.AgencyUser{}).
			Where("agency_id = ? AND user_id = ?", agency.ID, userID).
			Update("supervisor_id", supervisorID).Error
		if err != nil {
			return fmt.Errorf("回填主管关系失败: %v", err)
		}
	}
	return nil
}

// ========== 学习任务导入 ==========

// importMemberAssignments 导入一名临床人员的全部学习任务
func (s *MigrationService) importMemberAssignments(rc *RunContext, resolver *ContentResolver,
	agency *models.Agency, userID, portalID, studentID uint) error {

	if err := s.importCourseAssignments(rc, resolver, agency, userID, portalID, studentID); err != nil {
		return err
	}
	if err := s.importChecklistAssignments(rc, resolver, agency, userID, portalID, studentID); err != nil {
		return err
	}
	if err := s.importPolicyAssignments(rc, resolver, agency, userID, portalID, studentID); err != nil {
		return err
	}
	return s.importDocumentAssignments(rc, resolver, agency, userID, portalID, studentID)
}

// importCourseAssignments 导入课程记录，按有无测验拆分为考试和模块
func (s *MigrationService) importCourseAssignments(rc *RunContext, resolver *ContentResolver,
	agency *models.Agency, userID, portalID, studentID uint) error {

	rows, err := s.source.CourseAssignments(portalID, studentID)
	if err != nil {
		return err
	}
	if err := s.source.HydrateCourseResults(rows); err != nil {
		return err
	}

	now := time.Now()
	var exams, modules []models.Assignment

	for i := range rows {
		row := &rows[i]
		contentType := models.ContentTypeModule
		if row.IsExam() {
			contentType = models.ContentTypeExam
		}

		resolution := resolver.Resolve(rc, agency.ID, contentType, row.Course.Title)
		if resolution.Kind == ResolutionUnresolved || resolution.Kind == ResolutionExcluded {
			continue
		}

		input := StatusInput{
			StartedAt:       row.StartedOn,
			FinishedAt:      row.FinishedOn,
			ExpiresAt:       row.ExpiresOn,
			Frequency:       row.Frequency,
			AttemptsUsed:    row.AttemptsUsed,
			AllowedAttempts: row.AllowedAttempts,
			Score:           row.LatestScore,
			PassingScore:    row.PassingScore,
		}

		assignment := models.Assignment{
			AgencyID:        agency.ID,
			UserID:          userID,
			Type:            contentType,
			ContentItemID:   resolution.ContentItemID,
			AssignedAt:      row.AssignedOn,
			DueAt:           row.DueOn,
			ExpiresAt:       row.ExpiresOn,
			StartedAt:       row.StartedOn,
			FinishedAt:      row.FinishedOn,
			Frequency:       row.Frequency,
			AttemptsUsed:    row.AttemptsUsed,
			AllowedAttempts: row.AllowedAttempts,
			Score:           row.LatestScore,
			PassingScore:    row.PassingScore,
			SourceRecordID:  row.ID,
		}

		if contentType == models.ContentTypeExam {
			assignment.Status = s.calculator.ExamStatus(input, now)
			exams = append(exams, assignment)
		} else {
			assignment.Status = s.calculator.ModuleStatus(input, now)
			modules = append(modules, assignment)
		}
	}

	if err := s.replaceAssignments(agency.ID, userID, models.ContentTypeExam, exams); err != nil {
		return err
	}
	return s.replaceAssignments(agency.ID, userID, models.ContentTypeModule, modules)
}

// importChecklistAssignments 导入技能核查表任务
func (s *MigrationService) importChecklistAssignments(rc *RunContext, resolver *ContentResolver,
	agency *models.Agency, userID, portalID, studentID uint) error {

	rows, err := s.source.ChecklistAssignments(portalID, studentID)
	if err != nil {
		return err
	}

	now := time.Now()
	var assignments []models.Assignment

	for i := range rows {
		row := &rows[i]
		resolution := resolver.Resolve(rc, agency.ID, models.ContentTypeSkillChecklist, row.Checklist.Title)
		if resolution.Kind == ResolutionUnresolved || resolution.Kind == ResolutionExcluded {
			continue
		}

		input := StatusInput{
			FinishedAt: row.FinishedOn,
			ExpiresAt:  row.ExpiresOn,
			Frequency:  row.Frequency,
		}
		assignments = append(assignments, models.Assignment{
			AgencyID:       agency.ID,
			UserID:         userID,
			Type:           models.ContentTypeSkillChecklist,
			ContentItemID:  resolution.ContentItemID,
			AssignedAt:     row.AssignedOn,
			DueAt:          row.DueOn,
			ExpiresAt:      row.ExpiresOn,
			FinishedAt:     row.FinishedOn,
			Frequency:      row.Frequency,
			Status:         s.calculator.ChecklistStatus(input, now),
			SourceRecordID: row.ID,
		})
	}

	return s.replaceAssignments(agency.ID, userID, models.ContentTypeSkillChecklist, assignments)
}

// importPolicyAssignments 导入制度签收记录（两级解析，无占位层）
func (s *MigrationService) importPolicyAssignments(rc *RunContext, resolver *ContentResolver,
	agency *models.Agency, userID, portalID, studentID uint) error {

	rows, err := s.source.PolicyAssignments(portalID, studentID)
	if err != nil {
		return err
	}

	var assignments []models.Assignment
	for i := range rows {
		row := &rows[i]
		resolution := resolver.ResolveSimple(rc, agency.ID, models.ContentTypePolicy, row.Policy.Title)
		if resolution.Kind == ResolutionUnresolved || resolution.Kind == ResolutionExcluded {
			continue
		}
		assignments = append(assignments, models.Assignment{
			AgencyID:       agency.ID,
			UserID:         userID,
			Type:           models.ContentTypePolicy,
			ContentItemID:  resolution.ContentItemID,
			AssignedAt:     row.AssignedOn,
			FinishedAt:     row.AcknowledgedOn,
			Status:         s.calculator.AcknowledgementStatus(row.AcknowledgedOn),
			SourceRecordID: row.ID,
		})
	}

	return s.replaceAssignments(agency.ID, userID, models.ContentTypePolicy, assignments)
}

// importDocumentAssignments 导入文档阅读记录（两级解析，无占位层）
func (s *MigrationService) importDocumentAssignments(rc *RunContext, resolver *ContentResolver,
	agency *models.Agency, userID, portalID, studentID uint) error {

	rows, err := s.source.DocumentAssignments(portalID, studentID)
	if err != nil {
		return err
	}

	var assignments []models.Assignment
	for i := range rows {
		row := &rows[i]
		resolution := resolver.ResolveSimple(rc, agency.ID, models.ContentTypeDocument, row.Document.Title)
		if resolution.Kind == ResolutionUnresolved || resolution.Kind == ResolutionExcluded {
			continue
		}
		assignments = append(assignments, models.Assignment{
			AgencyID:       agency.ID,
			UserID:         userID,
			Type:           models.ContentTypeDocument,
			ContentItemID:  resolution.ContentItemID,
			AssignedAt:     row.AssignedOn,
			FinishedAt:     row.ReadOn,
			Status:         s.calculator.AcknowledgementStatus(row.ReadOn),
			SourceRecordID: row.ID,
		})
	}

	return s.replaceAssignments(agency.ID, userID, models.ContentTypeDocument, assignments)
}

// replaceAssignments 删除后整组重建 (机构, 用户, 内容类型) 的任务记录。
// 删除和插入放在同一个事务里，避免中途崩溃留下已删未插的缺口
func (s *MigrationService) replaceAssignments(agencyID, userID uint, contentType models.ContentType,
	assignments []models.Assignment) error {

	err := s.target.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("agency_id = ? AND user_id = ? AND type = ?", agencyID, userID, contentType).
			Delete(&models.Assignment{}).Error
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			return nil
		}
		return tx.CreateInBatches(assignments, 100).Error
	})
	if err != nil {
		return fmt.Errorf("重建学习任务失败(%s): %v", contentType, err)
	}
	return nil
}

// ========== 运维接口 ==========

// ReleaseStuckRuns 清除遗留的运行中标志（进程崩溃后由操作员调用）
func (s *MigrationService) ReleaseStuckRuns() (int64, error) {
	now := time.Now()
	result := s.target.Model(&models.MigrationRun{}).
		Where("running = ?", true).
		Updates(map[string]interface{}{
			"running":       false,
			"status":        models.RunStatusFailed,
			"error_message": "运行中标志由操作员手动释放",
			"finished_at":   &now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("释放运行标志失败: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// GetRun 按运行ID查询运行记录
func (s *MigrationService) GetRun(runID string) (*models.MigrationRun, error) {
	var run models.MigrationRun
	if err := s.target.Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 分页查询运行记录，新的在前
func (s *MigrationService) ListRuns(params *pagination.PageParams) ([]models.MigrationRun, int64, error) {
	var total int64
	if err := s.target.Model(&models.MigrationRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.MigrationRun
	err := s.target.Scopes(params.Scope()).Order("started_at DESC").Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// ListRunLogs 分页查询某次运行的审计日志，按写入顺序
func (s *MigrationService) ListRunLogs(runID string, params *pagination.PageParams) ([]models.MigrationRunLog, int64, error) {
	var total int64
	err := s.target.Model(&models.MigrationRunLog{}).Where("run_id = ?", runID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var logs []models.MigrationRunLog
	err = s.target.Where("run_id = ?", runID).Scopes(params.Scope()).Order("id").Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// RunLogsAfter 返回某次运行中ID大于afterID的审计日志，实时跟踪按ID游标增量拉取
func (s *MigrationService) RunLogsAfter(runID string, afterID uint, limit int) ([]models.MigrationRunLog, error) {
	var logs []models.MigrationRunLog
	err := s.target.Where("run_id = ? AND id > ?", runID, afterID).
		Order("id").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ========== 工具函数 ==========

// mapOptional 按ID映射换算可选外键，源端缺失或映射不到都返回nil
func mapOptional(sourceID *uint, idMap map[uint]uint) *uint {
	if sourceID == nil {
		return nil
	}
	targetID, ok := idMap[*sourceID]
	if !ok {
		return nil
	}
	return &targetID
}

// splitName 按第一个空白把全名拆成名/姓
func splitName(fullName string) (string, string) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", ""
	}
	idx := strings.IndexFunc(fullName, unicode.IsSpace)
	if idx < 0 {
		return fullName, ""
	}
	return fullName[:idx], strings.TrimSpace(fullName[idx:])
}
