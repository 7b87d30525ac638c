package service

import (
	"Trendspotter/internal/api/dto"
	"context"
	"time"
)

// Leaderboard 积分排行榜存储
type Leaderboard interface {
	Update(ctx context.Context, userID uint64, points int) error
	Top(ctx context.Context, limit int64) ([]LeaderboardEntry, error)
}

// LeaderboardEntry 排行榜原始条目
type LeaderboardEntry struct {
	UserID uint64
	Points int
}

// SummaryCache 声望概览缓存，Get 未命中返回 nil
type SummaryCache interface {
	Get(ctx context.Context, userID uint64) (*dto.ReputationDTO, error)
	Set(ctx context.Context, userID uint64, summary *dto.ReputationDTO) error
	Invalidate(ctx context.Context, userID uint64) error
}

// DirtyMarker 记录积分发生变化、需要对账的用户
type DirtyMarker interface {
	MarkDirty(ctx context.Context, userID uint64) error
}

// SkipGuard 按用户记录验证会话内的连续跳过次数
type SkipGuard interface {
	Count(ctx context.Context, userID uint64) (int, error)
	// Reserve 原子地占用一次跳过，已达 limit 时不占用并返回 false
	Reserve(ctx context.Context, userID uint64, limit int) (bool, error)
	// Release 归还一次未生效的占用
	Release(ctx context.Context, userID uint64) error
	Reset(ctx context.Context, userID uint64) error
}

// Notification 站内通知
type Notification struct {
	UserID   uint64
	Type     int8
	TargetID uint64
	Content  string
	Payload  map[string]any
	// DedupKey 相同键的通知只投递一次，消息重放时不会重复提醒
	DedupKey string
}

const (
	NotifyTrendValidated      int8 = 1
	NotifyTrendRejected       int8 = 2
	NotifyAchievementUnlocked int8 = 3
	NotifyLevelUp             int8 = 4
)

// Notifier 站内通知投递
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// ReputationDeps 声望引擎的可选外部依赖，字段为 nil 时对应能力关闭
type ReputationDeps struct {
	Leaderboard Leaderboard
	Cache       SummaryCache
	Dirty       DirtyMarker
	Notifier    Notifier
	Now         func() time.Time
}

func (d ReputationDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
