package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tmig/internal/database"
	"tmig/internal/legacy"
	"tmig/internal/router"
	"tmig/internal/services"
	"tmig/pkg/config"
	"tmig/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting Training Content Migration Platform...")

	// 初始化数据库（源库只读，目标库读写）
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
	}()

	// 执行目标库表结构迁移
	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 迁移编排器
	sourceRepo := legacy.NewRepository(database.GetSourceDB(), &cfg.Migration)
	migrationService := services.NewMigrationService(database.GetDB(), sourceRepo, &cfg.Migration)

	// 启动全量迁移调度器（仅迁移环境生效）
	migrationScheduler := services.NewMigrationScheduler(migrationService, &cfg.Migration)
	if err := migrationScheduler.Start(); err != nil {
		appLogger.Errorf("Failed to start migration scheduler: %v", err)
		// 不影响主服务启动
	}
	defer migrationScheduler.Stop()

	// 设置路由
	r := router.SetupRouter(migrationService)

	// 启动服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// 启动服务
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	if err := server.Close(); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}
