package logger

import (
	"Trendspotter/internal/api/config"
	"errors"
	"io"
	log "log/slog"
	"net"
	"os"
	"strings"
	"time"
)

var errLogstashDisabled = errors.New("logstash address is empty")

var (
	LogWriter io.Writer = os.Stdout
	// SlowThreshold SQL、Redis、Mongo 慢操作告警阈值
	SlowThreshold = 200 * time.Millisecond
)

// InitLogger 标准输出始终开启，Logstash 可达时同时推送
func InitLogger(cfg *config.Config) {
	level := ParseLevel(cfg.Log.Level)
	if cfg.Log.SlowThreshold > 0 {
		SlowThreshold = time.Duration(cfg.Log.SlowThreshold) * time.Millisecond
	}

	stdout := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: level})
	var final log.Handler = stdout

	conn, err := dialLogstash(cfg.Logstash)
	if err == nil {
		remote := log.NewJSONHandler(conn, &log.HandlerOptions{Level: level}).
			WithAttrs([]log.Attr{
				log.String("target_index", cfg.Logstash.Index),
				log.String("log_token", cfg.Logstash.Token),
			})
		final = &fanoutHandler{handlers: []log.Handler{stdout, &shipFilterHandler{next: remote}}}
		LogWriter = conn
	} else {
		LogWriter = os.Stdout
	}

	log.SetDefault(log.New(&ContextHandler{final}))
	if err != nil {
		log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
	}
}

func dialLogstash(cfg config.LogstashConfig) (net.Conn, error) {
	if cfg.Address == "" {
		return nil, errLogstashDisabled
	}
	return net.DialTimeout("tcp", cfg.Address, 3*time.Second)
}

// ParseLevel 未识别的级别按 info 处理
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
