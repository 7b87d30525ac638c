package api

import "Trendspotter/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	TrendHandler      *handler.TrendHandler
	ValidationHandler *handler.ValidationHandler
	ReputationHandler *handler.ReputationHandler
	SysBoxHandler     *handler.SysBoxHandler
}
