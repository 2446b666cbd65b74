package services

import (
	"testing"
	"time"

	"tmig/internal/legacy"
	"tmig/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedSourceExamTitle 在源库造一条会被标题发现查询扫到的考试记录
func seedSourceExamTitle(t *testing.T, source *gorm.DB, portalID, courseID uint, title string) {
	t.Helper()
	created := testTimePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	var portal legacy.Portal
	err := source.Where("id = ?", portalID).First(&portal).Error
	if err != nil {
		require.NoError(t, source.Create(&legacy.Portal{ID: portalID, Name: "测试门户"}).Error)
	}

	require.NoError(t, source.Create(&legacy.Course{ID: courseID, Title: title, QuizID: testUintPtr(100 + courseID)}).Error)
	require.NoError(t, source.Create(&legacy.CourseAssignment{
		PortalID: portalID, StudentID: 1, CourseID: courseID, CreatedOn: created,
	}).Error)
}

func newTestResolver(target, source *gorm.DB) *ContentResolver {
	repo := legacy.NewRepository(source, newTestMigrationConfig())
	return NewContentResolver(target, repo, NewRunLogger(target))
}

func TestResolvePrecedence(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)

	global := models.ContentItem{Type: models.ContentTypeExam, Title: "Wound Care", Status: models.ContentStatusActive}
	require.NoError(t, target.Create(&global).Error)
	scoped := models.ContentItem{
		Type: models.ContentTypeExam, Title: "Wound Care",
		AgencyID: testUintPtr(1), Status: models.ContentStatusActive,
	}
	require.NoError(t, target.Create(&scoped).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	// 机构专属优先于全局
	got := resolver.Resolve(rc, 1, models.ContentTypeExam, "Wound Care")
	assert.Equal(t, ResolutionAgency, got.Kind)
	assert.Equal(t, scoped.ID, got.ContentItemID)

	// 其他机构落到全局
	got = resolver.Resolve(rc, 2, models.ContentTypeExam, "Wound Care")
	assert.Equal(t, ResolutionGlobal, got.Kind)
	assert.Equal(t, global.ID, got.ContentItemID)
}

func TestPrimeCreatesShellOncePerTitle(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)
	seedSourceExamTitle(t, source, 10, 1, "CPR Basics")

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	var shells []models.ContentItem
	require.NoError(t, target.Where("type = ? AND is_shell = ?", models.ContentTypeExam, true).Find(&shells).Error)
	require.Len(t, shells, 1)
	assert.Equal(t, "CPR Basics", shells[0].Title)
	assert.Equal(t, models.ContentStatusArchived, shells[0].Status)
	assert.Nil(t, shells[0].AgencyID)
	assert.Equal(t, 1, rc.ShellsCreatedTotal())

	got := resolver.Resolve(rc, 1, models.ContentTypeExam, "CPR Basics")
	assert.Equal(t, ResolutionShell, got.Kind)
	assert.Equal(t, shells[0].ID, got.ContentItemID)

	// 第二次运行不再新建占位
	resolver2 := newTestResolver(target, source)
	rc2 := NewRunContext("run-2")
	require.NoError(t, resolver2.Prime(rc2, models.ContentTypeExam))

	var count int64
	require.NoError(t, target.Model(&models.ContentItem{}).
		Where("type = ? AND is_shell = ?", models.ContentTypeExam, true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 0, rc2.ShellsCreatedTotal())
}

func TestShellHitLoggedOncePerRun(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)
	seedSourceExamTitle(t, source, 10, 1, "CPR Basics")

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	for i := 0; i < 3; i++ {
		got := resolver.Resolve(rc, 1, models.ContentTypeExam, "CPR Basics")
		assert.Equal(t, ResolutionShell, got.Kind)
	}

	var count int64
	require.NoError(t, target.Model(&models.MigrationRunLog{}).
		Where("run_id = ? AND message LIKE ?", "run-1", "%CPR Basics%").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestExcludedTitleSilentlySkipped(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)
	seedSourceExamTitle(t, source, 10, 1, "Old Orientation")

	require.NoError(t, target.Create(&models.TitleMapping{
		ContentType: models.ContentTypeExam, SourceTitle: "Old Orientation", Exclude: true,
	}).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	// 排除的标题不建占位
	var count int64
	require.NoError(t, target.Model(&models.ContentItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 静默丢弃：不算未解析，也不记日志
	got := resolver.Resolve(rc, 1, models.ContentTypeExam, "Old Orientation")
	assert.Equal(t, ResolutionExcluded, got.Kind)
	assert.Equal(t, 0, rc.UnresolvedTotal())

	require.NoError(t, target.Model(&models.MigrationRunLog{}).Where("run_id = ?", "run-1").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUnresolvedWarnedOnce(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypePolicy))

	for i := 0; i < 2; i++ {
		got := resolver.ResolveSimple(rc, 1, models.ContentTypePolicy, "未知制度")
		assert.Equal(t, ResolutionUnresolved, got.Kind)
	}
	assert.Equal(t, 1, rc.UnresolvedTotal())

	var count int64
	require.NoError(t, target.Model(&models.MigrationRunLog{}).
		Where("run_id = ? AND level = ?", "run-1", models.RunLogLevelWarn).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPolicyPrimeCreatesNoShells(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)

	created := testTimePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, source.Create(&legacy.Portal{ID: 10, Name: "测试门户"}).Error)
	require.NoError(t, source.Create(&legacy.Policy{ID: 1, Title: "手卫生制度"}).Error)
	require.NoError(t, source.Create(&legacy.PolicyAssignment{
		PortalID: 10, StudentID: 1, PolicyID: 1, CreatedOn: created,
	}).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypePolicy))

	var count int64
	require.NoError(t, target.Model(&models.ContentItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMappingRedirectsAlternateTitle(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)

	global := models.ContentItem{
		Type: models.ContentTypeExam, Title: "Basic Life Support", Status: models.ContentStatusActive,
	}
	require.NoError(t, target.Create(&global).Error)

	require.NoError(t, target.Create(&models.TitleMapping{
		ContentType: models.ContentTypeExam, SourceTitle: "BLS Refresher", ContentItemID: &global.ID,
	}).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	got := resolver.Resolve(rc, 1, models.ContentTypeExam, "BLS Refresher")
	assert.Equal(t, ResolutionGlobal, got.Kind)
	assert.Equal(t, global.ID, got.ContentItemID)

	// 映射的标题已有归属，预热不为它建占位
	var count int64
	require.NoError(t, target.Model(&models.ContentItem{}).Where("is_shell = ?", true).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMappingClonesAgencySiblings(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)

	global := models.ContentItem{
		Type: models.ContentTypeExam, Title: "Basic Life Support", Status: models.ContentStatusActive,
	}
	require.NoError(t, target.Create(&global).Error)

	// 机构5有同标题的专属副本
	scoped := models.ContentItem{
		Type: models.ContentTypeExam, Title: "Basic Life Support",
		AgencyID: testUintPtr(5), Status: models.ContentStatusActive,
	}
	require.NoError(t, target.Create(&scoped).Error)

	require.NoError(t, target.Create(&models.TitleMapping{
		ContentType: models.ContentTypeExam, SourceTitle: "BLS Refresher", ContentItemID: &global.ID,
	}).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	// 机构5在备用标题下命中克隆出来的专属副本
	got := resolver.Resolve(rc, 5, models.ContentTypeExam, "BLS Refresher")
	assert.Equal(t, ResolutionAgency, got.Kind)
	assert.NotEqual(t, global.ID, got.ContentItemID)
	assert.NotEqual(t, scoped.ID, got.ContentItemID)

	var clone models.ContentItem
	require.NoError(t, target.First(&clone, got.ContentItemID).Error)
	assert.Equal(t, "BLS Refresher", clone.Title)
	require.NotNil(t, clone.AgencyID)
	assert.Equal(t, uint(5), *clone.AgencyID)

	// 其他机构仍落到映射目标
	got = resolver.Resolve(rc, 9, models.ContentTypeExam, "BLS Refresher")
	assert.Equal(t, ResolutionGlobal, got.Kind)
	assert.Equal(t, global.ID, got.ContentItemID)

	// 重复预热不再克隆
	resolver2 := newTestResolver(target, source)
	require.NoError(t, resolver2.Prime(NewRunContext("run-2"), models.ContentTypeExam))

	var count int64
	require.NoError(t, target.Model(&models.ContentItem{}).
		Where("title = ?", "BLS Refresher").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPendingMappingIgnored(t *testing.T) {
	target := setupTargetDB(t)
	source := setupSourceDB(t)
	seedSourceExamTitle(t, source, 10, 1, "Fall Prevention")

	// 待整理的映射（未绑定目标）不参与解析，标题照常建占位
	require.NoError(t, target.Create(&models.TitleMapping{
		ContentType: models.ContentTypeExam, SourceTitle: "Fall Prevention",
	}).Error)

	resolver := newTestResolver(target, source)
	rc := NewRunContext("run-1")
	require.NoError(t, resolver.Prime(rc, models.ContentTypeExam))

	got := resolver.Resolve(rc, 1, models.ContentTypeExam, "Fall Prevention")
	assert.Equal(t, ResolutionShell, got.Kind)
}
