package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

const (
	TraceIDKey = "trace_id"
	UserIDKey  = "user_id"
)

// ContextHandler 从 ctx 中补充 trace_id 与当前用户
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if uid, ok := ctx.Value(UserIDKey).(uint64); ok && uid != 0 {
			r.AddAttrs(log.Uint64("uid", uid))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// JobContext 定时任务没有请求链路，按任务名生成 trace_id
func JobContext(job string) (context.Context, string) {
	traceID := "job-" + job + "-" + uuid.NewString()
	return context.WithValue(context.Background(), TraceIDKey, traceID), traceID
}
