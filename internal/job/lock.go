package job

import (
	"Trendspotter/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"
)

const jobLockTTL = 5 * time.Minute

// runLocked 多实例部署时同一任务只在一个实例上执行
func runLocked(ctx context.Context, key, owner string, fn func(ctx context.Context)) {
	locked, err := redis.TryLock(ctx, key, owner, jobLockTTL, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire job lock error", "key", key, "err", err)
		return
	}
	if !locked {
		return
	}
	defer func() {
		if _, err := redis.UnLock(ctx, key, owner); err != nil {
			log.WarnContext(ctx, "release job lock error", "key", key, "err", err)
		}
	}()
	fn(ctx)
}
