package dto

// LevelDTO 等级区间，Max 为 -1 表示无上限
type LevelDTO struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// ProgressDTO 升级进度
type ProgressDTO struct {
	PointsNeeded int     `json:"points_needed"`
	Percentage   float64 `json:"percentage"`
}

// ReputationDTO 用户声望概览
type ReputationDTO struct {
	UserID           uint64            `json:"user_id"`
	Points           int               `json:"points"`
	Level            *LevelDTO         `json:"level"`
	Progress         *ProgressDTO      `json:"progress"`
	StreakDays       int               `json:"streak_days"`
	LastActivityDate string            `json:"last_activity_date,omitempty"`
	TrendsSpotted    int               `json:"trends_spotted"`
	ValidatedTrends  int               `json:"validated_trends"`
	ValidationsCount int               `json:"validations_count"`
	AccuracyScore    float64           `json:"accuracy_score"`
	ReferralsCount   int               `json:"referrals_count"`
	Achievements     []*AchievementDTO `json:"achievements"`
}

// AchievementDTO 成就
type AchievementDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Requirement string `json:"requirement"`
	Threshold   int    `json:"threshold"`
	Unlocked    bool   `json:"unlocked"`
	UnlockedAt  string `json:"unlocked_at,omitempty"`
}

// LeaderboardEntryDTO 排行榜条目
type LeaderboardEntryDTO struct {
	Rank   int       `json:"rank"`
	UserID uint64    `json:"user_id"`
	Points int       `json:"points"`
	Level  *LevelDTO `json:"level"`
}

// PointsTransactionDTO 积分流水
type PointsTransactionDTO struct {
	ID              uint64        `json:"id"`
	TransactionType string        `json:"transaction_type"`
	Points          int           `json:"points"`
	Metadata        PointsMetaDTO `json:"metadata"`
	CreatedAt       string        `json:"created_at"`
}

// PointsMetaDTO 积分流水附加信息
type PointsMetaDTO struct {
	TrendID        uint64 `json:"trend_id,omitempty"`
	Streak         int    `json:"streak,omitempty"`
	AchievementID  string `json:"achievement_id,omitempty"`
	ReferredUserID uint64 `json:"referred_user_id,omitempty"`
}

// StreakDTO 连续活跃天数
type StreakDTO struct {
	StreakDays int `json:"streak_days"`
}

// ReferralReq 邀请记录
type ReferralReq struct {
	ReferredUserID uint64 `json:"referred_user_id" binding:"required"`
}

// ReconcileDTO 积分对账结果
type ReconcileDTO struct {
	UserID uint64 `json:"user_id"`
	Points int    `json:"points"`
}
