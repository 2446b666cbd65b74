package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"tmig/internal/legacy"
	"tmig/internal/models"
	"tmig/pkg/config"
	"tmig/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMigrationService(t *testing.T, cfg *config.MigrationConfig) (*MigrationService, *gorm.DB, *gorm.DB) {
	t.Helper()
	target := setupTargetDB(t)
	source := setupSourceDB(t)
	repo := legacy.NewRepository(source, cfg)
	return NewMigrationService(target, repo, cfg), target, source
}

// seedSunrisePortal 造一个完整的测试租户：
// 门户10 "Sunrise Home Care"，管理员 Dana Lee，临床人员 Alice Chen（兼做Dana的下属），
// 一门挂测验的课程 "CPR Basics"（目标库无此内容，应建占位），
// 一份已签收的制度（目标库有全局内容，应直接命中）
func seedSunrisePortal(t *testing.T, source *gorm.DB) {
	t.Helper()
	created := testTimePtr(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	acked := testTimePtr(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, source.Create(&legacy.Portal{ID: 10, Name: "Sunrise Home Care", MaxSeats: 50}).Error)

	require.NoError(t, source.Create(&legacy.Student{
		ID: 1, FullName: "Dana Lee", Email: "dana@sunrise.com", RoleID: 1, CreatedOn: created,
	}).Error)
	require.NoError(t, source.Create(&legacy.Student{
		ID: 2, FullName: "Alice Chen", Email: "Alice.Chen@Sunrise.com", RoleID: 2, Phone: "555-0100", CreatedOn: created,
	}).Error)

	require.NoError(t, source.Create(&legacy.Location{ID: 100, PortalID: 10, Name: "北区"}).Error)
	require.NoError(t, source.Create(&legacy.Department{ID: 200, PortalID: 10, Name: "护理部"}).Error)

	require.NoError(t, source.Create(&legacy.PortalStudent{
		ID: 1, PortalID: 10, StudentID: 1, EmployeeNumber: "E001",
	}).Error)
	require.NoError(t, source.Create(&legacy.PortalStudent{
		ID: 2, PortalID: 10, StudentID: 2, EmployeeNumber: "E002",
		LocationID: testUintPtr(100), DepartmentID: testUintPtr(200),
	}).Error)
	require.NoError(t, source.Create(&legacy.SupervisorLink{
		ID: 1, PortalID: 10, StudentID: 2, SupervisorStudentID: 1,
	}).Error)

	require.NoError(t, source.Create(&legacy.Course{ID: 1, Title: "CPR Basics", QuizID: testUintPtr(7)}).Error)
	require.NoError(t, source.Create(&legacy.CourseAssignment{
		ID: 1, PortalID: 10, StudentID: 2, CourseID: 1,
		AssignedOn: created, PassingScore: 80,
		AttemptsUsed: 0, AllowedAttempts: 3, CreatedOn: created,
	}).Error)

	require.NoError(t, source.Create(&legacy.Policy{ID: 1, Title: "手卫生制度"}).Error)
	require.NoError(t, source.Create(&legacy.PolicyAssignment{
		ID: 1, PortalID: 10, StudentID: 2, PolicyID: 1,
		AssignedOn: created, AcknowledgedOn: acked, CreatedOn: created,
	}).Error)
}

func TestExecuteOnDemandImportsTenant(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, source := newTestMigrationService(t, cfg)
	seedSunrisePortal(t, source)

	// 制度在目标库已有全局内容
	policy := models.ContentItem{Type: models.ContentTypePolicy, Title: "手卫生制度", Status: models.ContentStatusActive}
	require.NoError(t, target.Create(&policy).Error)

	run, err := service.StartOnDemand(10, "operator")
	require.NoError(t, err)
	require.NoError(t, service.ExecuteOnDemand(run, 10))

	// 机构按源门户ID建立
	var agency models.Agency
	require.NoError(t, target.Where("source_portal_id = ?", 10).First(&agency).Error)
	assert.Equal(t, "Sunrise Home Care", agency.Name)
	assert.Equal(t, 50, agency.MaxSeats)
	assert.Nil(t, agency.LiveAt) // 非生产环境不标记上线

	// 用户：邮箱小写，姓名按第一个空白拆分
	var clinician models.User
	require.NoError(t, target.Where("email = ?", "alice.chen@sunrise.com").First(&clinician).Error)
	assert.Equal(t, "Alice", clinician.FirstName)
	assert.Equal(t, "Chen", clinician.LastName)
	assert.Equal(t, models.UserRoleClinician, clinician.Role)

	var admin models.User
	require.NoError(t, target.Where("email = ?", "dana@sunrise.com").First(&admin).Error)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)

	// 成员关系：组织归属换算、主管回填
	var membership models.AgencyUser
	require.NoError(t, target.Where("agency_id = ? AND user_id = ?", agency.ID, clinician.ID).First(&membership).Error)
	assert.Equal(t, "E002", membership.EmployeeNumber)
	require.NotNil(t, membership.LocationID)
	require.NotNil(t, membership.DepartmentID)
	require.NotNil(t, membership.SupervisorID)
	assert.Equal(t, admin.ID, *membership.SupervisorID)

	var location models.Location
	require.NoError(t, target.First(&location, *membership.LocationID).Error)
	assert.Equal(t, "北区", location.Name)
	assert.Equal(t, uint(100), location.SourceLocationID)

	// 未匹配的考试标题建了唯一一条占位记录
	var shells []models.ContentItem
	require.NoError(t, target.Where("type = ? AND is_shell = ?", models.ContentTypeExam, true).Find(&shells).Error)
	require.Len(t, shells, 1)
	assert.Equal(t, "CPR Basics", shells[0].Title)
	assert.Equal(t, models.ContentStatusArchived, shells[0].Status)

	// 考试任务指向占位记录，状态未开始
	var exam models.Assignment
	require.NoError(t, target.
		Where("user_id = ? AND type = ?", clinician.ID, models.ContentTypeExam).
		First(&exam).Error)
	assert.Equal(t, shells[0].ID, exam.ContentItemID)
	assert.Equal(t, models.ExamStatusNotStarted, exam.Status)
	assert.Equal(t, agency.ID, exam.AgencyID)

	// 制度签收命中全局内容，状态完成
	var ack models.Assignment
	require.NoError(t, target.
		Where("user_id = ? AND type = ?", clinician.ID, models.ContentTypePolicy).
		First(&ack).Error)
	assert.Equal(t, policy.ID, ack.ContentItemID)
	assert.Equal(t, models.AcknowledgementStatusCompleted, ack.Status)

	// 运行记录收尾：标志清除、汇总统计
	reloaded, err := service.GetRun(run.RunID)
	require.NoError(t, err)
	assert.False(t, reloaded.Running)
	assert.Equal(t, models.RunStatusSuccess, reloaded.Status)
	assert.NotNil(t, reloaded.FinishedAt)
	assert.Equal(t, 1, reloaded.TenantsImported)
	assert.Equal(t, 1, reloaded.ShellsCreated)

	// 占位命中在日志里每标题只出现一次
	var count int64
	require.NoError(t, target.Model(&models.MigrationRunLog{}).
		Where("run_id = ? AND message LIKE ?", run.RunID, "%CPR Basics%命中占位%").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRerunReplacesWithoutDuplicates(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, source := newTestMigrationService(t, cfg)
	seedSunrisePortal(t, source)

	for i := 0; i < 2; i++ {
		run, err := service.StartOnDemand(10, "operator")
		require.NoError(t, err)
		require.NoError(t, service.ExecuteOnDemand(run, 10))
	}

	// 重复运行不产生重复数据：删除后整组重建
	var count int64
	require.NoError(t, target.Model(&models.Agency{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, target.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	require.NoError(t, target.Model(&models.ContentItem{}).
		Where("title = ?", "CPR Basics").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, target.Model(&models.Assignment{}).
		Where("type = ?", models.ContentTypeExam).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProductionRunMarksLiveAndSkipsNextTime(t *testing.T) {
	cfg := newTestMigrationConfig()
	cfg.Production = true
	service, target, source := newTestMigrationService(t, cfg)
	seedSunrisePortal(t, source)

	run, err := service.StartOnDemand(10, "operator")
	require.NoError(t, err)
	require.NoError(t, service.ExecuteOnDemand(run, 10))

	var agency models.Agency
	require.NoError(t, target.Where("source_portal_id = ?", 10).First(&agency).Error)
	require.NotNil(t, agency.LiveAt)

	// 已上线的租户再次触发时被跳过
	run2, err := service.StartOnDemand(10, "operator")
	require.NoError(t, err)
	require.NoError(t, service.ExecuteOnDemand(run2, 10))

	reloaded, err := service.GetRun(run2.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, reloaded.Status)
	assert.Equal(t, 0, reloaded.TenantsImported)

	var count int64
	require.NoError(t, target.Model(&models.MigrationRunLog{}).
		Where("run_id = ? AND message LIKE ?", run2.RunID, "%已上线，跳过%").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReplaceAssignmentsRollsBackOnFailure(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, _ := newTestMigrationService(t, cfg)

	existing := models.Assignment{
		AgencyID: 1, UserID: 2, Type: models.ContentTypeExam,
		ContentItemID: 9, Status: models.ExamStatusNotStarted,
	}
	require.NoError(t, target.Create(&existing).Error)

	// 同一批里两条记录主键冲突，整批插入失败
	bad := []models.Assignment{
		{
			BaseModel: models.BaseModel{ID: 77},
			AgencyID:  1, UserID: 2, Type: models.ContentTypeExam,
			ContentItemID: 9, Status: models.ExamStatusCompleted,
		},
		{
			BaseModel: models.BaseModel{ID: 77},
			AgencyID:  1, UserID: 2, Type: models.ContentTypeExam,
			ContentItemID: 9, Status: models.ExamStatusFailed,
		},
	}
	err := service.replaceAssignments(1, 2, models.ContentTypeExam, bad)
	require.Error(t, err)

	// 事务回滚：删除也被撤销，原有记录完好
	var kept models.Assignment
	require.NoError(t, target.First(&kept, existing.ID).Error)
	assert.Equal(t, models.ExamStatusNotStarted, kept.Status)

	var count int64
	require.NoError(t, target.Model(&models.Assignment{}).
		Where("agency_id = ? AND user_id = ? AND type = ?", 1, 2, models.ContentTypeExam).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStartOnDemandRejectsConcurrentRun(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, _ := newTestMigrationService(t, cfg)

	require.NoError(t, target.Create(&models.MigrationRun{
		RunID: "stuck-run", Trigger: models.RunTriggerOnDemand,
		Running: true, StartedAt: time.Now(), Status: models.RunStatusRunning,
	}).Error)

	_, err := service.StartOnDemand(10, "operator")
	assert.ErrorIs(t, err, ErrRunActive)
}

func TestStartOnDemandSerializesParallelTriggers(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, _, _ := newTestMigrationService(t, cfg)

	// 同时到达的触发请求只有一个能通过检查并创建运行记录
	const triggers = 5
	results := make(chan error, triggers)
	var wg sync.WaitGroup
	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.StartOnDemand(10, "operator")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	accepted, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrRunActive):
			rejected++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, triggers-1, rejected)
}

func TestReleaseStuckRuns(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, _ := newTestMigrationService(t, cfg)

	require.NoError(t, target.Create(&models.MigrationRun{
		RunID: "stuck-run", Trigger: models.RunTriggerOnDemand,
		Running: true, StartedAt: time.Now(), Status: models.RunStatusRunning,
	}).Error)

	released, err := service.ReleaseStuckRuns()
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	run, err := service.GetRun("stuck-run")
	require.NoError(t, err)
	assert.False(t, run.Running)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotNil(t, run.FinishedAt)

	// 解除后可以开始新运行
	_, err = service.StartOnDemand(10, "operator")
	assert.NotErrorIs(t, err, ErrRunActive)
}

func TestRunBatchFollowsPriorityOrder(t *testing.T) {
	cfg := newTestMigrationConfig()
	cfg.PriorityPortals = []uint{20, 10}
	service, target, source := newTestMigrationService(t, cfg)
	seedSunrisePortal(t, source)
	require.NoError(t, source.Create(&legacy.Portal{ID: 20, Name: "Meadow Hospice"}).Error)

	require.NoError(t, service.RunBatch(models.RunTriggerBatch, "scheduler"))

	var run models.MigrationRun
	require.NoError(t, target.Where("trigger = ?", models.RunTriggerBatch).First(&run).Error)
	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, 2, run.TenantsImported)
	assert.Nil(t, run.PortalID)

	// 全量迁移不标记上线
	var liveCount int64
	require.NoError(t, target.Model(&models.Agency{}).Where("live_at IS NOT NULL").Count(&liveCount).Error)
	assert.Equal(t, int64(0), liveCount)

	// 导入顺序遵循显式优先级：门户20先于门户10
	var logs []models.MigrationRunLog
	require.NoError(t, target.
		Where("run_id = ? AND message LIKE ?", run.RunID, "开始导入租户%").
		Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0].Message, "租户 20")
	assert.Contains(t, logs[1].Message, "租户 10")
}

func TestListRunsPaginated(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, target, _ := newTestMigrationService(t, cfg)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, target.Create(&models.MigrationRun{
			RunID: string(rune('a'+i)) + "-run", Trigger: models.RunTriggerOnDemand,
			StartedAt: base.Add(time.Duration(i) * time.Hour), Status: models.RunStatusSuccess,
		}).Error)
	}

	runs, total, err := service.ListRuns(&pagination.PageParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, runs, 2)
	// 新的在前
	assert.Equal(t, "c-run", runs[0].RunID)
	assert.Equal(t, "b-run", runs[1].RunID)

	runs, _, err = service.ListRuns(&pagination.PageParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a-run", runs[0].RunID)
}

func TestRunLogsAfterCursor(t *testing.T) {
	cfg := newTestMigrationConfig()
	service, _, _ := newTestMigrationService(t, cfg)

	for i := 0; i < 3; i++ {
		service.RunLogger().Info("run-1", "第 %d 条", i+1)
	}

	logs, err := service.RunLogsAfter("run-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// 游标之后只返回增量
	logs, err = service.RunLogsAfter("run-1", logs[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	last := logs[len(logs)-1]
	logs, err = service.RunLogsAfter("run-1", last.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	// 分页查询同样走审计日志表
	paged, total, err := service.ListRunLogs("run-1", &pagination.PageParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 2)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Alice Chen", "Alice", "Chen"},
		{"Mary Ann Smith", "Mary", "Ann Smith"},
		{"Cher", "Cher", ""},
		{"  Bob   Li  ", "Bob", "Li"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := splitName(tt.full)
		assert.Equal(t, tt.first, first, "full=%q", tt.full)
		assert.Equal(t, tt.last, last, "full=%q", tt.full)
	}
}

func TestMapOptional(t *testing.T) {
	idMap := map[uint]uint{100: 7}

	assert.Nil(t, mapOptional(nil, idMap))
	assert.Nil(t, mapOptional(testUintPtr(999), idMap))

	got := mapOptional(testUintPtr(100), idMap)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), *got)
}
