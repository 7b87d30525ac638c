package logger

import (
	"context"
	log "log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/event"
)

// NewMongoMonitor 站内信读写量小，只记录慢命令和失败命令，命令体在 debug 级别输出
func NewMongoMonitor() *event.CommandMonitor {
	var inflight sync.Map

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if !log.Default().Enabled(ctx, log.LevelDebug) {
				return
			}
			cmd := evt.Command.String()
			if len(cmd) > 1000 {
				cmd = cmd[:1000] + "...[truncated]"
			}
			inflight.Store(evt.RequestID, cmd)
			log.DebugContext(ctx, "MongoDB Started",
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
				log.String("cmd_detail", cmd),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			cmd, _ := inflight.LoadAndDelete(evt.RequestID)
			if evt.Duration <= SlowThreshold {
				return
			}
			log.WarnContext(ctx, "MongoDB Slow",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
				log.Any("cmd_detail", cmd),
			)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			inflight.Delete(evt.RequestID)
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
				log.Any("err", evt.Failure),
			)
		},
	}
}
