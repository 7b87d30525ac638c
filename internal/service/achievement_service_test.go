package service

import (
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"context"
	"testing"
)

func TestFirstSpotUnlocksOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.trendSvc.SubmitTrend(ctx, 5, submitReq("https://example.com/1")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// 50 提交 + 50 first_spot
	if got := e.user(t, 5).Points; got != 100 {
		t.Fatalf("points = %d, want 100", got)
	}
	if n := e.ledgerCount(t, 5, string(reputation.ActionAchievementUnlocked)); n != 1 {
		t.Fatalf("achievement entries = %d, want 1", n)
	}

	if _, err := e.trendSvc.SubmitTrend(ctx, 5, submitReq("https://example.com/2")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := e.user(t, 5).Points; got != 150 {
		t.Errorf("points after second submit = %d, want 150", got)
	}

	again, err := e.achievementSvc.CheckAchievements(ctx, 5, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("nothing new should unlock, got %+v", again)
	}
	if n := e.ledgerCount(t, 5, string(reputation.ActionAchievementUnlocked)); n != 1 {
		t.Errorf("achievement entries after recheck = %d", n)
	}
}

func TestAchievementRewardDoesNotRecurse(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	if err := e.db.Create(&model.User{ID: 3, TrendsSpotted: 10, ValidationsCount: 1}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	unlocked, err := e.achievementSvc.CheckAchievements(ctx, 3, reputation.ActionFlagTrend)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	ids := map[string]bool{}
	for _, a := range unlocked {
		ids[a.ID] = true
	}
	if len(unlocked) != 2 || !ids["first_spot"] || !ids["trend_hunter"] {
		t.Fatalf("unexpected unlocks: %+v", unlocked)
	}
	// first_validation 与 flag_trend 无关，不应在此次检查中解锁
	if ids["first_validation"] {
		t.Error("irrelevant achievement unlocked")
	}
	if got := e.user(t, 3).Points; got != 100 {
		t.Errorf("points = %d, want 100", got)
	}
}

func TestAccuracyAchievementNeedsFloor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	err := e.db.Create(&model.User{ID: 4, DecidedValidations: 9, CorrectValidations: 9, AccuracyScore: 1}).Error
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	unlocked, err := e.achievementSvc.CheckAchievements(ctx, 4, reputation.ActionValidationAccuracy)
	if err != nil || len(unlocked) != 0 {
		t.Fatalf("accuracy below the floor unlocked %+v, err=%v", unlocked, err)
	}

	if err = e.db.Model(&model.User{}).Where("id = ?", 4).Updates(map[string]interface{}{
		"decided_validations": 10, "correct_validations": 10,
	}).Error; err != nil {
		t.Fatalf("update user: %v", err)
	}
	unlocked, err = e.achievementSvc.CheckAchievements(ctx, 4, reputation.ActionValidationAccuracy)
	if err != nil || len(unlocked) != 2 {
		t.Fatalf("expected sharp_eye and oracle, got %+v err=%v", unlocked, err)
	}
}

func TestGetAchievements(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	if _, err := e.trendSvc.SubmitTrend(ctx, 5, submitReq("https://example.com/x")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	list, err := e.achievementSvc.GetAchievements(ctx, 5)
	if err != nil {
		t.Fatalf("get achievements: %v", err)
	}
	if len(list) != len(reputation.DefaultCatalog()) {
		t.Fatalf("catalog size = %d", len(list))
	}
	for _, a := range list {
		if a.ID == "first_spot" {
			if !a.Unlocked || a.UnlockedAt == "" {
				t.Errorf("first_spot should be unlocked: %+v", a)
			}
		} else if a.Unlocked {
			t.Errorf("%s should be locked", a.ID)
		}
	}
}
