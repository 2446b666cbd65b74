package services

import (
	"fmt"
	"sync"

	"tmig/internal/models"
	"tmig/pkg/config"
	"tmig/pkg/logger"

	"github.com/robfig/cron/v3"
)

// MigrationScheduler 全量迁移调度器。只在专用迁移环境且配置了
// cron表达式时调度，触发逻辑与HTTP全量触发面一致
type MigrationScheduler struct {
	cron    *cron.Cron
	service *MigrationService
	cfg     *config.MigrationConfig
	mu      sync.Mutex
	running bool
}

// NewMigrationScheduler 创建迁移调度器
func NewMigrationScheduler(service *MigrationService, cfg *config.MigrationConfig) *MigrationScheduler {
	return &MigrationScheduler{
		cron:    cron.New(),
		service: service,
		cfg:     cfg,
	}
}

// Start 启动调度器
func (s *MigrationScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	log := logger.GetLogger()

	if s.cfg.BatchCron == "" {
		log.Info("未配置全量迁移cron表达式，调度器不启动")
		return nil
	}
	if s.cfg.Env != config.EnvMigration {
		log.Infof("当前环境 %s 不允许全量迁移，调度器不启动", s.cfg.Env)
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.BatchCron, func() {
		log.Info("定时全量迁移开始")
		if err := s.service.RunBatch(models.RunTriggerScheduled, "scheduler"); err != nil {
			log.WithError(err).Error("定时全量迁移失败")
		}
	})
	if err != nil {
		return fmt.Errorf("注册定时任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true
	log.Infof("全量迁移调度器启动成功: %s", s.cfg.BatchCron)
	return nil
}

// Stop 停止调度器
func (s *MigrationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}
