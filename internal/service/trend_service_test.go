package service

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"context"
	"errors"
	"testing"
)

func submitReq(url string) *dto.TrendSubmitDTO {
	return &dto.TrendSubmitDTO{
		URL:         url,
		Category:    "beauty",
		Title:       "glass skin",
		Description: "everyone is doing it #glassskin #kbeauty #glassskin",
	}
}

func TestSubmitTrend(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	got, err := e.trendSvc.SubmitTrend(ctx, 5, submitReq("  https://example.com/a  "))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ID == 0 || got.SpotterID != 5 || got.Status != model.TrendStatusPending || got.URL != "https://example.com/a" {
		t.Errorf("unexpected dto: %+v", got)
	}
	if len(got.Hashtags) != 2 || got.Hashtags[0] != "glassskin" || got.Hashtags[1] != "kbeauty" {
		t.Errorf("hashtags = %v", got.Hashtags)
	}
	if got.CapturedAt != "2026-03-02T09:00:00Z" {
		t.Errorf("captured_at = %s", got.CapturedAt)
	}

	u := e.user(t, 5)
	if u.Points != 50 || u.TrendsSpotted != 1 || u.StreakDays != 1 {
		t.Errorf("spotter after submit: %+v", u)
	}

	if _, err = e.trendSvc.SubmitTrend(ctx, 6, submitReq("https://example.com/a")); !errors.Is(err, ErrTrendDuplicate) {
		t.Errorf("expected ErrTrendDuplicate, got %v", err)
	}
	if _, err = e.trendSvc.SubmitTrend(ctx, 6, &dto.TrendSubmitDTO{URL: " ", Category: "x"}); !errors.Is(err, ErrParamInvalid) {
		t.Errorf("expected ErrParamInvalid, got %v", err)
	}

	list, err := e.trendSvc.ListUserTrends(ctx, 5, 1, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list user trends = %d, err=%v", len(list), err)
	}
	one, err := e.trendSvc.GetTrend(ctx, got.ID)
	if err != nil || one.ID != got.ID {
		t.Fatalf("get trend: %+v err=%v", one, err)
	}
	if _, err = e.trendSvc.GetTrend(ctx, 9999); !errors.Is(err, ErrTrendNotFound) {
		t.Errorf("expected ErrTrendNotFound, got %v", err)
	}
}

func TestSubmitTrendKeepsExplicitHashtags(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	req := submitReq("https://example.com/b")
	req.Hashtags = []string{"custom"}
	got, err := e.trendSvc.SubmitTrend(context.Background(), 5, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(got.Hashtags) != 1 || got.Hashtags[0] != "custom" {
		t.Errorf("hashtags = %v", got.Hashtags)
	}
}

func TestOnTrendCapturedIsIdempotent(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()
	trend := e.seedTrend(t, 8, e.clock.Now())

	for i := 0; i < 3; i++ {
		if err := e.trendSvc.OnTrendCaptured(ctx, trend); err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
	}
	u := e.user(t, 8)
	if u.Points != 50 || u.TrendsSpotted != 1 {
		t.Errorf("replayed capture must be accounted once: %+v", u)
	}
	if n := e.ledgerCount(t, 8, string(reputation.ActionFlagTrend)); n != 1 {
		t.Errorf("flag_trend entries = %d", n)
	}

	if err := e.trendSvc.OnTrendCaptured(ctx, &model.CapturedTrend{}); !errors.Is(err, ErrParamInvalid) {
		t.Errorf("expected ErrParamInvalid, got %v", err)
	}
}

func TestSubmittedTrendIsNotDoubleCountedByConsumer(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	got, err := e.trendSvc.SubmitTrend(ctx, 5, submitReq("https://example.com/c"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err = e.trendSvc.OnTrendCaptured(ctx, e.trend(t, got.ID)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if pts := e.user(t, 5).Points; pts != 50 {
		t.Errorf("points = %d, want 50", pts)
	}
}

func TestContestedTrends(t *testing.T) {
	e := newTestEnv(t, withoutAchievements())
	ctx := context.Background()

	split := e.seedTrend(t, 1, e.clock.Now())
	leaning := e.seedTrend(t, 1, e.clock.Now())
	e.seedTrend(t, 1, e.clock.Now())
	for id, positive := range map[uint64]int{split.ID: 5, leaning.ID: 8} {
		err := e.db.Model(&model.CapturedTrend{}).Where("id = ?", id).
			Updates(map[string]any{"validation_count": 10, "positive_votes": positive}).Error
		if err != nil {
			t.Fatalf("seed tally: %v", err)
		}
	}

	n, err := e.trendSvc.MarkContested(ctx)
	if err != nil || n != 1 {
		t.Fatalf("mark contested = %d, err=%v", n, err)
	}
	if n, _ = e.trendSvc.MarkContested(ctx); n != 0 {
		t.Errorf("second run should not restamp, got %d", n)
	}

	list, err := e.trendSvc.ListContested(ctx, 1, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("contested list = %d, err=%v", len(list), err)
	}
	if list[0].ID != split.ID || list[0].Status != model.TrendStatusPending || list[0].ContestedAt == "" {
		t.Errorf("unexpected contested trend: %+v", list[0])
	}
	if _, err = e.trendSvc.ListContested(ctx, 0, 10); !errors.Is(err, ErrParamInvalid) {
		t.Errorf("expected ErrParamInvalid, got %v", err)
	}
}
