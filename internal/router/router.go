package router

import (
	"tmig/internal/database"
	"tmig/internal/handlers"
	"tmig/internal/legacy"
	"tmig/internal/middleware"
	"tmig/internal/services"
	"tmig/pkg/config"
	"tmig/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(migrationService *services.MigrationService) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router, migrationService)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, migrationService *services.MigrationService) {
	cfg := config.GetConfig()
	auth := middleware.NewAuthMiddleware()

	sourceRepo := legacy.NewRepository(database.GetSourceDB(), &cfg.Migration)
	mappingService := services.NewMappingService(database.GetDB(), sourceRepo)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 操作员认证（无需认证）
		authHandler := handlers.NewAuthHandler(cfg)
		api.POST("/auth/login", authHandler.Login)

		// 迁移触发与审计（仅管理员）
		migrationHandler := handlers.NewMigrationHandler(migrationService, mappingService, cfg)
		migrations := api.Group("/migrations", auth.RequireLogin(), auth.RequireAdmin())
		{
			migrations.POST("/tenants/:portal_id", migrationHandler.TriggerTenant) // 单租户导入
			migrations.POST("/batch", migrationHandler.TriggerBatch)               // 全量导入
			migrations.POST("/mappings/generate", migrationHandler.GenerateMappings)

			migrations.GET("/runs", migrationHandler.ListRuns)
			migrations.GET("/runs/:run_id", migrationHandler.GetRun)
			migrations.GET("/runs/:run_id/logs", migrationHandler.ListRunLogs)
			migrations.POST("/runs/release", migrationHandler.ReleaseStuckRuns) // 释放遗留运行标志
		}

		// 运行日志实时跟踪（token走查询参数）
		wsHandler := handlers.NewWebSocketHandler(migrationService)
		api.GET("/ws/migrations/runs/:run_id/logs", wsHandler.RunLogs)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// ping 连通性检查
func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
