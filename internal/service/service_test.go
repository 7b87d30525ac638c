package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/database"
	"Trendspotter/internal/repository"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg *Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) ofType(typ int8) []*Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	res := make([]*Notification, 0)
	for _, m := range n.sent {
		if m.Type == typ {
			res = append(res, m)
		}
	}
	return res
}

// testEnv 基于内存 SQLite 的完整服务装配
type testEnv struct {
	db       *gorm.DB
	cfg      config.ReputationConfig
	clock    *fakeClock
	notifier *recordingNotifier
	guard    SkipGuard

	users        repository.UserRepo
	trends       repository.TrendRepo
	validations  repository.ValidationRepo
	points       repository.PointsRepo
	achievements repository.AchievementRepo

	pointsSvc      PointsService
	achievementSvc AchievementService
	queueSvc       ValidationQueueService
	consensusSvc   ConsensusService
	trendSvc       TrendService
	referralSvc    ReferralService
}

type envOption func(*testEnv)

// withoutAchievements 关闭成就检查，便于精确断言积分
func withoutAchievements() envOption {
	return func(e *testEnv) {
		e.pointsSvc.SetAchievementChecker(nil)
		e.consensusSvc = NewConsensusService(e.trends, e.validations, e.users, e.pointsSvc, nil, e.guard,
			repository.NewTxManager(e.db), e.cfg, e.deps())
		e.trendSvc = NewTrendService(e.trends, e.users, e.pointsSvc, nil, repository.NewTxManager(e.db), e.cfg, e.deps())
		e.referralSvc = NewReferralService(e.users, e.pointsSvc, nil, repository.NewTxManager(e.db))
	}
}

func (e *testEnv) deps() ReputationDeps {
	return ReputationDeps{Notifier: e.notifier, Now: e.clock.Now}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := &testEnv{
		db:           db,
		cfg:          config.DefaultReputation(),
		clock:        &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		notifier:     &recordingNotifier{},
		guard:        NewMemorySkipGuard(),
		users:        repository.NewUserRepo(db),
		trends:       repository.NewTrendRepo(db),
		validations:  repository.NewValidationRepo(db),
		points:       repository.NewPointsRepo(db),
		achievements: repository.NewAchievementRepo(db),
	}
	tx := repository.NewTxManager(db)
	deps := e.deps()

	e.pointsSvc = NewPointsService(e.users, e.points, e.achievements, tx, e.cfg, deps)
	e.achievementSvc = NewAchievementService(e.users, e.achievements, e.pointsSvc, tx, e.cfg, deps)
	e.pointsSvc.SetAchievementChecker(e.achievementSvc)
	e.queueSvc = NewValidationQueueService(e.trends, e.validations, e.users, e.cfg.Queue, deps)
	e.consensusSvc = NewConsensusService(e.trends, e.validations, e.users, e.pointsSvc, e.achievementSvc, e.guard, tx, e.cfg, deps)
	e.trendSvc = NewTrendService(e.trends, e.users, e.pointsSvc, e.achievementSvc, tx, e.cfg, deps)
	e.referralSvc = NewReferralService(e.users, e.pointsSvc, e.achievementSvc, tx)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

var trendSeq int

// seedTrend 直接落库一条待验证趋势，不经过积分流程
func (e *testEnv) seedTrend(t *testing.T, spotter uint64, capturedAt time.Time) *model.CapturedTrend {
	t.Helper()
	trendSeq++
	trend := &model.CapturedTrend{
		SpotterID:  spotter,
		Status:     model.TrendStatusPending,
		Category:   "fashion",
		URL:        fmt.Sprintf("https://example.com/t/%d", trendSeq),
		Hashtags:   []string{},
		CapturedAt: capturedAt,
	}
	if err := e.db.Create(trend).Error; err != nil {
		t.Fatalf("seed trend: %v", err)
	}
	return trend
}

func (e *testEnv) user(t *testing.T, id uint64) *model.User {
	t.Helper()
	u, err := e.users.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	if u == nil {
		return &model.User{ID: id}
	}
	return u
}

func (e *testEnv) ledgerCount(t *testing.T, userID uint64, txType string) int64 {
	t.Helper()
	var n int64
	err := e.db.Model(&model.PointsTransaction{}).
		Where("user_id = ? AND transaction_type = ?", userID, txType).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	return n
}

func (e *testEnv) trend(t *testing.T, id uint64) *model.CapturedTrend {
	t.Helper()
	tr, err := e.trends.GetTrend(context.Background(), id)
	if err != nil || tr == nil {
		t.Fatalf("get trend %d: %v", id, err)
	}
	return tr
}

var zeroMeta = model.PointsMeta{}

func txOf(e *testEnv) repository.TxManager {
	return repository.NewTxManager(e.db)
}
