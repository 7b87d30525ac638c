package logger

import (
	"context"
	log "log/slog"
)

// fanoutHandler 同一条记录写入多个下游
type fanoutHandler struct {
	handlers []log.Handler
}

func (s *fanoutHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *fanoutHandler) Handle(ctx context.Context, r log.Record) error {
	var first error
	for _, h := range s.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *fanoutHandler) WithAttrs(attrs []log.Attr) log.Handler {
	next := make([]log.Handler, len(s.handlers))
	for i, h := range s.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (s *fanoutHandler) WithGroup(name string) log.Handler {
	next := make([]log.Handler, len(s.handlers))
	for i, h := range s.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// shipFilterHandler 只把带 trace_id 的记录和告警以上的记录推送到 Logstash，
// 启动阶段的无链路 Info 日志留在标准输出
type shipFilterHandler struct {
	next log.Handler
}

func (s *shipFilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *shipFilterHandler) Handle(ctx context.Context, r log.Record) error {
	if r.Level >= log.LevelWarn || hasTrace(r) {
		return s.next.Handle(ctx, r)
	}
	return nil
}

func hasTrace(r log.Record) bool {
	found := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			found = true
			return false
		}
		return true
	})
	return found
}

func (s *shipFilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &shipFilterHandler{next: s.next.WithAttrs(attrs)}
}

func (s *shipFilterHandler) WithGroup(name string) log.Handler {
	return &shipFilterHandler{next: s.next.WithGroup(name)}
}
