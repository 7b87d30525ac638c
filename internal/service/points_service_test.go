package service

import (
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/repository"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestAwardPointsAccumulates(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	prev := 0
	for i := 0; i < 5; i++ {
		res, err := e.pointsSvc.AwardPoints(ctx, 7, reputation.ActionValidationVote, model.PointsMeta{TrendID: uint64(i + 1)}, AwardOptions{})
		if err != nil {
			t.Fatalf("award %d: %v", i, err)
		}
		if res.Points != 5 || res.OldTotal != prev || res.NewTotal != prev+5 {
			t.Fatalf("award %d: unexpected result %+v", i, res)
		}
		prev = res.NewTotal
	}

	if got := e.user(t, 7).Points; got != 25 {
		t.Errorf("points = %d, want 25", got)
	}
	sum, err := e.points.SumPointsByUser(ctx, 7)
	if err != nil || sum != 25 {
		t.Errorf("ledger sum = %d, err=%v", sum, err)
	}
}

func TestAwardPointsUnknownAction(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.pointsSvc.AwardPoints(context.Background(), 1, "bogus", model.PointsMeta{}, AwardOptions{})
	if !errors.Is(err, ErrActionUnknown) {
		t.Fatalf("expected ErrActionUnknown, got %v", err)
	}
	if e.ledgerCount(t, 1, "bogus") != 0 {
		t.Error("unknown action must not write the ledger")
	}
}

func TestAwardPointsRefKeyIsIdempotent(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()
	opts := AwardOptions{RefKey: "flag_trend:99"}

	if _, err := e.pointsSvc.AwardPoints(ctx, 3, reputation.ActionFlagTrend, model.PointsMeta{TrendID: 99}, opts); err != nil {
		t.Fatalf("first award: %v", err)
	}
	_, err := e.pointsSvc.AwardPoints(ctx, 3, reputation.ActionFlagTrend, model.PointsMeta{TrendID: 99}, opts)
	if !errors.Is(err, ErrActionDuplicate) {
		t.Fatalf("expected ErrActionDuplicate, got %v", err)
	}
	if got := e.user(t, 3).Points; got != 50 {
		t.Errorf("points = %d, want 50", got)
	}
}

func TestAwardPointsLevelUp(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	if err := e.db.Create(&model.User{ID: 9, Points: 990}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	res, err := e.pointsSvc.AwardPoints(ctx, 9, reputation.ActionValidationAccuracy, model.PointsMeta{}, AwardOptions{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.LevelUp == nil || res.LevelUp.Name != "silver" {
		t.Fatalf("expected level up to silver, got %+v", res.LevelUp)
	}
	if len(e.notifier.ofType(NotifyLevelUp)) != 1 {
		t.Error("level up should notify the user")
	}

	res, err = e.pointsSvc.AwardPoints(ctx, 9, reputation.ActionValidationVote, model.PointsMeta{}, AwardOptions{})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.LevelUp != nil {
		t.Error("staying within a band is not a level up")
	}
}

func TestAwardPointsOverride(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	res, err := e.pointsSvc.AwardPoints(context.Background(), 4, reputation.ActionAchievementUnlocked,
		model.PointsMeta{AchievementID: "x"}, AwardOptions{Points: 75})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.Points != 75 || e.user(t, 4).Points != 75 {
		t.Errorf("override not applied: %+v", res)
	}
}

func TestLevelQueries(t *testing.T) {
	e := newTestEnv(t)
	if got := e.pointsSvc.GetUserLevel(4999).Name; got != "silver" {
		t.Errorf("level(4999) = %s", got)
	}
	if p := e.pointsSvc.GetPointsToNextLevel(4999); p.PointsNeeded != 1 {
		t.Errorf("progress(4999) = %+v", p)
	}
	levels := e.pointsSvc.GetLevels()
	if len(levels) != 5 || levels[4].Max != -1 {
		t.Errorf("unexpected level dto list: %+v", levels[len(levels)-1])
	}
}

func TestUpdateUserStreak(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	streak, err := e.pointsSvc.UpdateUserStreak(ctx, 11)
	if err != nil || streak != 1 {
		t.Fatalf("first day streak = %d, err=%v", streak, err)
	}
	if e.ledgerCount(t, 11, string(reputation.ActionDailyStreak)) != 0 {
		t.Fatal("first day must not award streak points")
	}

	// 同一天重复调用不变
	e.clock.Advance(3 * time.Hour)
	streak, err = e.pointsSvc.UpdateUserStreak(ctx, 11)
	if err != nil || streak != 1 {
		t.Fatalf("same day streak = %d, err=%v", streak, err)
	}

	for day := 2; day <= 7; day++ {
		e.clock.Advance(24 * time.Hour)
		streak, err = e.pointsSvc.UpdateUserStreak(ctx, 11)
		if err != nil || streak != day {
			t.Fatalf("day %d streak = %d, err=%v", day, streak, err)
		}
	}
	if n := e.ledgerCount(t, 11, string(reputation.ActionDailyStreak)); n != 1 {
		t.Fatalf("expected one streak award after 7 days, got %d", n)
	}
	if got := e.user(t, 11).Points; got != 25 {
		t.Errorf("points after 7 day streak = %d, want 25", got)
	}

	// 同一天再次调用不会重复发放
	streak, _ = e.pointsSvc.UpdateUserStreak(ctx, 11)
	if streak != 7 || e.ledgerCount(t, 11, string(reputation.ActionDailyStreak)) != 1 {
		t.Fatal("streak award must be granted once per day")
	}

	// 中断后重新计数
	e.clock.Advance(48 * time.Hour)
	streak, err = e.pointsSvc.UpdateUserStreak(ctx, 11)
	if err != nil || streak != 1 {
		t.Fatalf("streak after gap = %d, err=%v", streak, err)
	}
}

func TestUpdateUserStreakUsesConfiguredTimezone(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	e.cfg.Timezone = "Asia/Shanghai"
	e.pointsSvc = NewPointsService(e.users, e.points, e.achievements, repository.NewTxManager(e.db), e.cfg, e.deps())
	ctx := context.Background()

	// UTC 15:00 为上海 3 月 2 日 23:00
	e.clock.now = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	if _, err := e.pointsSvc.UpdateUserStreak(ctx, 12); err != nil {
		t.Fatalf("update streak: %v", err)
	}
	u := e.user(t, 12)
	if u.LastActivityDate == nil || *u.LastActivityDate != "2026-03-02" {
		t.Fatalf("last activity = %v", u.LastActivityDate)
	}

	// UTC 16:30 为上海 3 月 3 日 00:30
	e.clock.now = time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)
	streak, _ := e.pointsSvc.UpdateUserStreak(ctx, 12)
	if streak != 2 {
		t.Fatalf("crossing local midnight should extend the streak, got %d", streak)
	}
}

func TestGetReputation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	empty, err := e.pointsSvc.GetReputation(ctx, 404)
	if err != nil {
		t.Fatalf("reputation for unknown user: %v", err)
	}
	if empty.Points != 0 || empty.Level.Name != "bronze" || empty.Progress.PointsNeeded != 1000 {
		t.Errorf("unexpected empty summary: %+v", empty)
	}

	if _, err = e.trendSvc.SubmitTrend(ctx, 5, submitReq("https://example.com/r")); err != nil {
		t.Fatalf("submit trend: %v", err)
	}
	rep, err := e.pointsSvc.GetReputation(ctx, 5)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.Points != 100 || rep.TrendsSpotted != 1 || rep.StreakDays != 1 {
		t.Errorf("unexpected summary: %+v", rep)
	}
	if len(rep.Achievements) != 1 || rep.Achievements[0].ID != "first_spot" || !rep.Achievements[0].Unlocked {
		t.Errorf("unexpected achievements: %+v", rep.Achievements)
	}
}

func TestGetLeaderboardFallsBackToDB(t *testing.T) {
	e := newTestEnv(t)
	for id, points := range map[uint64]int{1: 100, 2: 5000, 3: 700} {
		if err := e.db.Create(&model.User{ID: id, Points: points}).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	list, err := e.pointsSvc.GetLeaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].UserID != 2 || list[0].Rank != 1 || list[0].Level.Name != "gold" {
		t.Errorf("unexpected first entry: %+v", list[0])
	}
	if list[1].UserID != 3 || list[1].Rank != 2 {
		t.Errorf("unexpected second entry: %+v", list[1])
	}
}

func TestGetTransactions(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, err := e.pointsSvc.AwardPoints(ctx, 8, reputation.ActionValidationVote, model.PointsMeta{TrendID: uint64(i)}, AwardOptions{})
		if err != nil {
			t.Fatalf("award: %v", err)
		}
	}
	page, err := e.pointsSvc.GetTransactions(ctx, 8, 1, 2)
	if err != nil || len(page) != 2 {
		t.Fatalf("page 1 = %d, err=%v", len(page), err)
	}
	if page[0].Metadata.TrendID == 0 || page[0].TransactionType != "validation_vote" {
		t.Errorf("unexpected entry: %+v", page[0])
	}
	if _, err = e.pointsSvc.GetTransactions(ctx, 8, 0, 2); !errors.Is(err, ErrParamInvalid) {
		t.Errorf("expected ErrParamInvalid, got %v", err)
	}
}

func TestReconcileUser(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	if _, err := e.pointsSvc.AwardPoints(ctx, 6, reputation.ActionFlagTrend, model.PointsMeta{}, AwardOptions{}); err != nil {
		t.Fatalf("award: %v", err)
	}
	if err := e.db.Model(&model.User{}).Where("id = ?", 6).Update("points", 9999).Error; err != nil {
		t.Fatalf("corrupt points: %v", err)
	}
	sum, err := e.pointsSvc.ReconcileUser(ctx, 6)
	if err != nil || sum != 50 {
		t.Fatalf("reconcile = %d, err=%v", sum, err)
	}
	if got := e.user(t, 6).Points; got != 50 {
		t.Errorf("points after reconcile = %d", got)
	}
	if _, err = e.pointsSvc.ReconcileUser(ctx, 777); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// awardDuringSum 在读出流水总数后、返回前插入一次真实加分
type awardDuringSum struct {
	repository.PointsRepo
	award func()
	once  sync.Once
}

func (r *awardDuringSum) SumPointsByUser(ctx context.Context, userID uint64) (int, error) {
	sum, err := r.PointsRepo.SumPointsByUser(ctx, userID)
	r.once.Do(r.award)
	return sum, err
}

func TestReconcileUserKeepsConcurrentAward(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	if _, err := e.pointsSvc.AwardPoints(ctx, 6, reputation.ActionFlagTrend, zeroMeta, AwardOptions{}); err != nil {
		t.Fatalf("award: %v", err)
	}
	if err := e.db.Model(&model.User{}).Where("id = ?", 6).Update("points", 9999).Error; err != nil {
		t.Fatalf("corrupt points: %v", err)
	}

	points := &awardDuringSum{PointsRepo: e.points}
	points.award = func() {
		if _, err := e.pointsSvc.AwardPoints(ctx, 6, reputation.ActionFlagTrend, zeroMeta, AwardOptions{}); err != nil {
			t.Errorf("award during reconcile: %v", err)
		}
	}
	svc := NewPointsService(e.users, points, e.achievements, txOf(e), e.cfg, e.deps())

	sum, err := svc.ReconcileUser(ctx, 6)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if sum != 100 {
		t.Errorf("reconcile = %d, want 100", sum)
	}
	if got := e.user(t, 6).Points; got != 100 {
		t.Errorf("points after reconcile = %d, concurrent award lost", got)
	}
}

func TestAwardRollbackSkipsSideEffects(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	board := NewRedisLeaderboard(rdb)
	deps := e.deps()
	deps.Leaderboard = board
	svc := NewPointsService(e.users, e.points, e.achievements, txOf(e), e.cfg, deps)

	boom := errors.New("boom")
	err := txOf(e).Transaction(ctx, func(ctx context.Context) error {
		if _, err := svc.AwardPoints(ctx, 3, reputation.ActionFlagTrend, zeroMeta, AwardOptions{}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	top, err := board.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("leaderboard updated by rolled back award: %+v", top)
	}

	if _, err = svc.AwardPoints(ctx, 3, reputation.ActionFlagTrend, zeroMeta, AwardOptions{}); err != nil {
		t.Fatalf("award: %v", err)
	}
	top, _ = board.Top(ctx, 10)
	if len(top) != 1 || top[0].UserID != 3 || top[0].Points != 50 {
		t.Errorf("leaderboard after commit = %+v", top)
	}
}
