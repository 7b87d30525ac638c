package cron

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/job"
	"context"
	"fmt"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

// Manager 积分对账与争议标记两个周期任务，表达式带秒字段
type Manager struct {
	engine             *cron.Cron
	cfg                config.ReputationCronCfg
	pointsReconcileJob *job.PointsReconcileJob
	contestedTrendJob  *job.ContestedTrendJob
}

func NewCronManager(
	cfg config.ReputationCronCfg,
	pointsReconcileJob *job.PointsReconcileJob,
	contestedTrendJob *job.ContestedTrendJob,
) *Manager {
	return &Manager{
		engine:             cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		cfg:                cfg,
		pointsReconcileJob: pointsReconcileJob,
		contestedTrendJob:  contestedTrendJob,
	}
}

// RegisterJobs 表达式为空的任务视为关闭
func (s *Manager) RegisterJobs() error {
	jobs := []struct {
		name string
		spec string
		job  cron.Job
	}{
		{"points_reconcile", s.cfg.Reconcile, s.pointsReconcileJob},
		{"contested_trend", s.cfg.Contested, s.contestedTrendJob},
	}
	for _, j := range jobs {
		if j.spec == "" {
			log.Warn("cron job disabled", "job", j.name)
			continue
		}
		if _, err := s.engine.AddJob(j.spec, j.job); err != nil {
			return fmt.Errorf("register %s: %w", j.name, err)
		}
	}
	return nil
}

// Run 启动已注册的任务，ctx 结束后等待执行中的任务退出
func (s *Manager) Run(ctx context.Context) error {
	log.Info("Cron 定时任务引擎启动", "entries", len(s.engine.Entries()))
	s.engine.Start()

	<-ctx.Done()
	<-s.engine.Stop().Done()
	log.Info("Cron 定时任务引擎停止")
	return nil
}
