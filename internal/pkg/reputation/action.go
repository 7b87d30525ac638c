package reputation

// ActionType 积分行为类型，闭集
type ActionType string

const (
	ActionFlagTrend           ActionType = "flag_trend"
	ActionTrendValidated      ActionType = "trend_validated"
	ActionEarlySpotter        ActionType = "early_spotter"
	ActionValidationVote      ActionType = "validation_vote"
	ActionValidationAccuracy  ActionType = "validation_accuracy"
	ActionDailyStreak         ActionType = "daily_streak"
	ActionAchievementUnlocked ActionType = "achievement_unlocked"
	ActionReferralBonus       ActionType = "referral_bonus"
	ActionChallengeCompleted  ActionType = "challenge_completed"
)

// AllActions 按声明顺序返回全部行为类型
func AllActions() []ActionType {
	return []ActionType{
		ActionFlagTrend,
		ActionTrendValidated,
		ActionEarlySpotter,
		ActionValidationVote,
		ActionValidationAccuracy,
		ActionDailyStreak,
		ActionAchievementUnlocked,
		ActionReferralBonus,
		ActionChallengeCompleted,
	}
}

// PointTable 行为 -> 积分
type PointTable map[ActionType]int

// DefaultPointTable 默认积分表
func DefaultPointTable() PointTable {
	return PointTable{
		ActionFlagTrend:           50,
		ActionTrendValidated:      100,
		ActionEarlySpotter:        200,
		ActionValidationVote:      5,
		ActionValidationAccuracy:  10,
		ActionDailyStreak:         25,
		ActionAchievementUnlocked: 50,
		ActionReferralBonus:       100,
		ActionChallengeCompleted:  75,
	}
}

// WithOverrides 用配置覆盖默认分值，未知的行为类型与非正分值会被忽略
func (t PointTable) WithOverrides(overrides map[string]int) PointTable {
	out := make(PointTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		action := ActionType(k)
		if _, ok := t[action]; !ok || v <= 0 {
			continue
		}
		out[action] = v
	}
	return out
}

// Points 查询行为对应的分值
func (t PointTable) Points(action ActionType) (int, bool) {
	p, ok := t[action]
	return p, ok
}
