package wire

import (
	"Trendspotter/internal/api"
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/api/handler"
	"Trendspotter/internal/job"
	"Trendspotter/internal/pkg/cron"
	"Trendspotter/internal/pkg/kafka"
	"Trendspotter/internal/pkg/mongo"
	"Trendspotter/internal/repository"
	"Trendspotter/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoConn *mongoDB.Database, rdb *redisv9.Client, cfg *config.Config) (*ApplicationContainer, error) {
	repCfg := cfg.Reputation

	// Repos
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepo(db)
	trendRepo := repository.NewTrendRepo(db)
	validationRepo := repository.NewValidationRepo(db)
	pointsRepo := repository.NewPointsRepo(db)
	achievementRepo := repository.NewAchievementRepo(db)
	sysBoxRepo := mongo.NewSysBoxRepo(mongoConn)

	// Reputation collaborators
	deps := service.ReputationDeps{
		Leaderboard: service.NewRedisLeaderboard(rdb),
		Cache:       service.NewRedisSummaryCache(rdb, time.Duration(repCfg.SummaryTTL)*time.Second),
		Dirty:       service.NewRedisDirtyMarker(rdb),
		Notifier:    service.NewSysBoxNotifier(sysBoxRepo),
	}
	skipGuard := service.NewRedisSkipGuard(rdb, time.Duration(repCfg.SkipTTL)*time.Second)

	// Services
	pointsService := service.NewPointsService(userRepo, pointsRepo, achievementRepo, txManager, repCfg, deps)
	achievementService := service.NewAchievementService(userRepo, achievementRepo, pointsService, txManager, repCfg, deps)
	pointsService.SetAchievementChecker(achievementService)
	queueService := service.NewValidationQueueService(trendRepo, validationRepo, userRepo, repCfg.Queue, deps)
	consensusService := service.NewConsensusService(trendRepo, validationRepo, userRepo, pointsService,
		achievementService, skipGuard, txManager, repCfg, deps)
	trendService := service.NewTrendService(trendRepo, userRepo, pointsService, achievementService, txManager, repCfg, deps)
	referralService := service.NewReferralService(userRepo, pointsService, achievementService, txManager)
	sysBoxService := service.NewSysBoxService(sysBoxRepo)

	handlers := &api.HandlersGroup{
		TrendHandler:      handler.NewTrendHandler(trendService),
		ValidationHandler: handler.NewValidationHandler(queueService, consensusService),
		ReputationHandler: handler.NewReputationHandler(pointsService, achievementService, referralService),
		SysBoxHandler:     handler.NewSysBoxHandler(sysBoxService),
	}

	router := api.SetupRouter(handlers, cfg)

	// Jobs
	cronMgr := cron.NewCronManager(
		repCfg.Cron,
		job.NewPointsReconcileJob(pointsService),
		job.NewContestedTrendJob(trendService),
	)

	app := &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}

	if cfg.KafkaTrendConsumer.Enable {
		kafkaMgr, err := kafka.NewConsumerManager(cfg, trendService)
		if err != nil {
			return nil, err
		}
		app.KafkaManager = kafkaMgr
	}

	return app, nil
}
