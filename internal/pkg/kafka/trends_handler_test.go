package kafka

import (
	"Trendspotter/internal/model"
	"Trendspotter/internal/service"
	"context"
	"errors"
	"testing"
	"time"
)

type stubTrendService struct {
	service.TrendService
	captured []*model.CapturedTrend
	err      error
}

func (s *stubTrendService) OnTrendCaptured(_ context.Context, trend *model.CapturedTrend) error {
	if s.err != nil {
		return s.err
	}
	s.captured = append(s.captured, trend)
	return nil
}

const insertMsg = `{
	"database": "trendspotter",
	"table": "captured_trends",
	"type": "INSERT",
	"data": [
		{"id": "7", "spotter_id": "3", "status": "pending", "category": "music",
		 "url": "https://example.com/t/7", "captured_at": "2026-03-02 09:00:00.123"},
		{"id": null, "spotter_id": "3"}
	]
}`

func TestTrendsHandlerInsert(t *testing.T) {
	svc := &stubTrendService{}
	h := NewTrendsHandler(svc)

	if err := h.handle(context.Background(), []byte(insertMsg)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(svc.captured) != 1 {
		t.Fatalf("captured = %d, want 1", len(svc.captured))
	}
	got := svc.captured[0]
	if got.ID != 7 || got.SpotterID != 3 || got.URL != "https://example.com/t/7" || got.Category != "music" {
		t.Errorf("unexpected trend: %+v", got)
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if !got.CapturedAt.Equal(want) {
		t.Errorf("captured_at = %v, want %v", got.CapturedAt, want)
	}
}

func TestTrendsHandlerIgnoresOtherMessages(t *testing.T) {
	svc := &stubTrendService{}
	h := NewTrendsHandler(svc)
	ctx := context.Background()

	cases := map[string]string{
		"update":       `{"table":"captured_trends","type":"UPDATE","data":[{"id":"1","spotter_id":"2"}]}`,
		"other table":  `{"table":"users","type":"INSERT","data":[{"id":"1"}]}`,
		"empty data":   `{"table":"captured_trends","type":"INSERT","data":[]}`,
		"invalid json": `{"table":`,
	}
	for name, msg := range cases {
		if err := h.handle(ctx, []byte(msg)); err != nil {
			t.Errorf("%s: handle returned %v", name, err)
		}
	}
	if len(svc.captured) != 0 {
		t.Fatalf("nothing should be accounted, got %d", len(svc.captured))
	}
}

func TestTrendsHandlerReturnsServiceError(t *testing.T) {
	boom := errors.New("db down")
	h := NewTrendsHandler(&stubTrendService{err: boom})
	err := h.handle(context.Background(), []byte(insertMsg))
	if !errors.Is(err, boom) {
		t.Fatalf("expected service error to surface for retry, got %v", err)
	}
}

func TestColumnValues(t *testing.T) {
	row := CanalRow{"id": " 42 ", "n": float64(9), "s": "x", "bad": "garbage", "null": nil}
	if row.Uint64("id") != 42 || row.Uint64("n") != 9 || row.Uint64("null") != 0 {
		t.Error("Uint64 mismatch")
	}
	if row.String("null") != "" || row.String("s") != "x" {
		t.Error("String mismatch")
	}
	if !row.Time("bad").IsZero() || !row.Time("missing").IsZero() {
		t.Error("invalid time should be zero")
	}
}
