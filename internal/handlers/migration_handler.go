package handlers

import (
	"errors"
	"strconv"

	"tmig/internal/models"
	"tmig/internal/services"
	"tmig/pkg/config"
	"tmig/pkg/logger"
	"tmig/pkg/pagination"
	"tmig/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MigrationHandler 迁移触发面。所有触发接口接受即返回成功，
// 实际执行异步进行，结果只能通过审计日志观察
type MigrationHandler struct {
	service        *services.MigrationService
	mappingService *services.MappingService
	cfg            *config.Config
}

func NewMigrationHandler(service *services.MigrationService, mappingService *services.MappingService,
	cfg *config.Config) *MigrationHandler {
	return &MigrationHandler{
		service:        service,
		mappingService: mappingService,
		cfg:            cfg,
	}
}

// TriggerTenant 触发单租户导入。环境受限；已有运行在进行时拒绝
func (h *MigrationHandler) TriggerTenant(c *gin.Context) {
	env := h.cfg.Migration.Env
	if env != config.EnvProduction && env != config.EnvMigration {
		response.Forbidden(c, "当前环境不允许触发迁移")
		return
	}

	portalID, err := strconv.ParseUint(c.Param("portal_id"), 10, 64)
	if err != nil || portalID == 0 {
		response.BadRequest(c, "无效的门户ID")
		return
	}

	username := c.GetString("username")
	run, err := h.service.StartOnDemand(uint(portalID), username)
	if err != nil {
		if errors.Is(err, services.ErrRunActive) {
			response.Conflict(c, "已有迁移任务在运行，请稍后再试")
			return
		}
		logger.GetLogger().WithError(err).Error("创建迁移任务失败")
		response.ServerError(c, "创建迁移任务失败")
		return
	}

	// 接受即返回，执行异步进行
	go func() {
		if err := h.service.ExecuteOnDemand(run, uint(portalID)); err != nil {
			logger.GetLogger().WithError(err).Errorf("租户 %d 迁移失败", portalID)
		}
	}()

	response.SuccessWithMessage(c, "迁移任务已接受", gin.H{
		"run_id": run.RunID,
	})
}

// TriggerBatch 触发全量迁移。只允许在专用迁移环境执行
func (h *MigrationHandler) TriggerBatch(c *gin.Context) {
	if h.cfg.Migration.Env != config.EnvMigration {
		response.Forbidden(c, "全量迁移只允许在专用迁移环境执行")
		return
	}

	username := c.GetString("username")
	go func() {
		if err := h.service.RunBatch(models.RunTriggerBatch, username); err != nil {
			logger.GetLogger().WithError(err).Error("全量迁移失败")
		}
	}()

	response.SuccessWithMessage(c, "全量迁移已接受", nil)
}

// GenerateMappings 生成待整理的标题映射
func (h *MigrationHandler) GenerateMappings(c *gin.Context) {
	result, err := h.mappingService.GenerateMappings()
	if err != nil {
		logger.GetLogger().WithError(err).Error("生成标题映射失败")
		response.ServerError(c, "生成标题映射失败")
		return
	}
	response.Success(c, result)
}

// ListRuns 分页查询运行记录
func (h *MigrationHandler) ListRuns(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	runs, total, err := h.service.ListRuns(params)
	if err != nil {
		response.ServerError(c, "查询运行记录失败")
		return
	}

	response.SuccessWithPage(c, runs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetRun 查询单次运行
func (h *MigrationHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Param("run_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "运行记录不存在")
			return
		}
		response.ServerError(c, "查询运行记录失败")
		return
	}
	response.Success(c, run)
}

// ListRunLogs 分页查询某次运行的审计日志
func (h *MigrationHandler) ListRunLogs(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	logs, total, err := h.service.ListRunLogs(c.Param("run_id"), params)
	if err != nil {
		response.ServerError(c, "查询审计日志失败")
		return
	}

	response.SuccessWithPage(c, logs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// ReleaseStuckRuns 释放遗留的运行中标志（进程崩溃后的操作员工具）
func (h *MigrationHandler) ReleaseStuckRuns(c *gin.Context) {
	released, err := h.service.ReleaseStuckRuns()
	if err != nil {
		logger.GetLogger().WithError(err).Error("释放运行标志失败")
		response.ServerError(c, "释放运行标志失败")
		return
	}
	response.SuccessWithMessage(c, "释放完成", gin.H{
		"released": released,
	})
}
