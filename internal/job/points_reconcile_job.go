package job

import (
	"Trendspotter/internal/pkg/consts"
	"Trendspotter/internal/pkg/logger"
	"Trendspotter/internal/pkg/redis"
	"Trendspotter/internal/pkg/util"
	"Trendspotter/internal/service"
	"context"
	"errors"
	log "log/slog"
)

// PointsReconcileJob 按流水重算近期积分有变化的用户，修正缓存与排行榜漂移
type PointsReconcileJob struct {
	pointsSvc service.PointsService
}

func NewPointsReconcileJob(pointsSvc service.PointsService) *PointsReconcileJob {
	return &PointsReconcileJob{pointsSvc: pointsSvc}
}

func (s *PointsReconcileJob) Run() {
	ctx, traceID := logger.JobContext("points")
	runLocked(ctx, consts.PointsReconcileLock, traceID, s.reconcile)
}

// reconcile 上次中断遗留的处理集合优先消费，否则把脏集合整体换入处理集合
func (s *PointsReconcileJob) reconcile(ctx context.Context) {
	processingKey := consts.PointsDirtyKey + ":processing"

	members, err := redis.SetMembers(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get points processing set error", "err", err)
		return
	}
	if len(members) == 0 {
		moved, err := redis.RenameIfExists(ctx, consts.PointsDirtyKey, processingKey)
		if err != nil {
			log.ErrorContext(ctx, "swap points dirty set error", "err", err)
			return
		}
		if !moved {
			return
		}
		if members, err = redis.SetMembers(ctx, processingKey); err != nil {
			log.ErrorContext(ctx, "get points processing set error", "err", err)
			return
		}
	}

	userIDs, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "convert points set to int slice error", "err", err)
		_ = redis.DeleteKey(ctx, processingKey)
		return
	}

	fixed, failed := 0, 0
	for _, uid := range userIDs {
		if _, err = s.pointsSvc.ReconcileUser(ctx, uid); err != nil {
			if !errors.Is(err, service.ErrUserNotFound) {
				failed++
				log.ErrorContext(ctx, "reconcile user points error", "uid", uid, "err", err)
			}
			continue
		}
		fixed++
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete points processing set error", "err", err)
	}
	log.InfoContext(ctx, "reconcile points finished", "user_count", len(userIDs), "reconciled", fixed, "failed", failed)
}
