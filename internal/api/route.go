package api

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/api/middleware"
	"Trendspotter/internal/pkg/consts"
	"Trendspotter/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, cfg *config.Config) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	logger.SetupGin(r, cfg.Logstash)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		trendGroup := apiGroup.Group("/trends")
		{
			authGroup := trendGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.TrendHandler.SubmitTrend)
				authGroup.GET("/self", group.TrendHandler.GetTrendSelf)
			}

			authOptGroup := trendGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/:trend_id", group.TrendHandler.GetTrend)
			}
		}

		validationGroup := apiGroup.Group("/validation")
		{
			validationGroup.Use(middleware.AuthMiddleware())
			{
				validationGroup.GET("/next", group.ValidationHandler.GetNext)
				validationGroup.POST("/votes", group.ValidationHandler.SubmitVote)
				validationGroup.POST("/session", group.ValidationHandler.StartSession)
			}
		}

		reputationGroup := apiGroup.Group("/reputation")
		{
			reputationGroup.GET("/leaderboard", group.ReputationHandler.GetLeaderboard)
			reputationGroup.GET("/levels", group.ReputationHandler.GetLevels)

			authGroup := reputationGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/me", group.ReputationHandler.GetMe)
				authGroup.GET("/transactions", group.ReputationHandler.GetTransactions)
				authGroup.POST("/streak", group.ReputationHandler.UpdateStreak)
				authGroup.GET("/achievements", group.ReputationHandler.GetAchievements)
				authGroup.POST("/referrals", group.ReputationHandler.RecordReferral)
			}
		}

		sysBoxGroup := apiGroup.Group("/sysbox")
		{
			sysBoxGroup.Use(middleware.AuthMiddleware())
			{
				sysBoxGroup.GET("/list", group.SysBoxHandler.GetNotificationList)
				sysBoxGroup.GET("/unread", group.SysBoxHandler.GetUnreadCount)
				sysBoxGroup.POST("/read", group.SysBoxHandler.MarkRead)
				sysBoxGroup.POST("/read/all", group.SysBoxHandler.MarkAllRead)
			}
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware())
		{
			auditGroup := adminGroup.Group("")
			auditGroup.Use(middleware.CheckRoles(consts.RoleAudit, consts.RoleAdmin))
			{
				auditGroup.GET("/trends/contested", group.TrendHandler.GetContestedTrends)
			}

			rootGroup := adminGroup.Group("")
			rootGroup.Use(middleware.CheckRoles(consts.RoleAdmin))
			{
				rootGroup.POST("/reputation/:user_id/reconcile", group.ReputationHandler.Reconcile)
			}
		}
	}

	return r
}
