package job

import (
	"Trendspotter/internal/pkg/consts"
	"Trendspotter/internal/pkg/logger"
	"Trendspotter/internal/service"
	"context"
	log "log/slog"
)

// ContestedTrendJob 标记票数已满但始终无法形成共识的趋势，交由人工复核
type ContestedTrendJob struct {
	trendSvc service.TrendService
}

func NewContestedTrendJob(trendSvc service.TrendService) *ContestedTrendJob {
	return &ContestedTrendJob{trendSvc: trendSvc}
}

func (s *ContestedTrendJob) Run() {
	ctx, traceID := logger.JobContext("contested")
	runLocked(ctx, consts.TrendContestedLock, traceID, func(ctx context.Context) {
		n, err := s.trendSvc.MarkContested(ctx)
		if err != nil {
			log.ErrorContext(ctx, "mark contested trends error", "err", err)
			return
		}
		if n > 0 {
			log.WarnContext(ctx, "contested trends waiting for review", "count", n)
		}
	})
}
