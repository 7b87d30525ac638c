package reputation

// RequirementType 成就条件对应的统计口径
type RequirementType string

const (
	RequireTrendsSpotted RequirementType = "trends_spotted"
	RequireValidations   RequirementType = "validations_count"
	RequireAccuracy      RequirementType = "accuracy"
	RequireReferrals     RequirementType = "referrals_count"
	RequireStreak        RequirementType = "streak"
)

// Achievement 成就目录条目
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Points      int             `json:"points"`
	Requirement RequirementType `json:"requirement"`
	Threshold   int             `json:"threshold"`
}

// Stats 参与成就判定的用户聚合数据
type Stats struct {
	TrendsSpotted    int
	ValidationsCount int
	DecidedCount     int
	AccuracyScore    float64
	ReferralsCount   int
	StreakDays       int
}

// Catalog 静态成就目录
type Catalog []Achievement

// DefaultCatalog 默认成就
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "first_spot", Name: "初次发现", Description: "提交第一个趋势", Points: 50, Requirement: RequireTrendsSpotted, Threshold: 1},
		{ID: "trend_hunter", Name: "趋势猎手", Description: "累计提交 10 个趋势", Points: 50, Requirement: RequireTrendsSpotted, Threshold: 10},
		{ID: "trend_master", Name: "趋势大师", Description: "累计提交 50 个趋势", Points: 50, Requirement: RequireTrendsSpotted, Threshold: 50},
		{ID: "first_validation", Name: "初次验证", Description: "完成第一次验证投票", Points: 50, Requirement: RequireValidations, Threshold: 1},
		{ID: "validator", Name: "验证者", Description: "累计验证 50 次", Points: 50, Requirement: RequireValidations, Threshold: 50},
		{ID: "validation_expert", Name: "验证专家", Description: "累计验证 200 次", Points: 50, Requirement: RequireValidations, Threshold: 200},
		{ID: "sharp_eye", Name: "火眼金睛", Description: "验证准确率达到 80%", Points: 50, Requirement: RequireAccuracy, Threshold: 80},
		{ID: "oracle", Name: "先知", Description: "验证准确率达到 95%", Points: 50, Requirement: RequireAccuracy, Threshold: 95},
		{ID: "week_warrior", Name: "一周坚持", Description: "连续活跃 7 天", Points: 50, Requirement: RequireStreak, Threshold: 7},
		{ID: "month_master", Name: "月度达人", Description: "连续活跃 30 天", Points: 50, Requirement: RequireStreak, Threshold: 30},
		{ID: "recruiter", Name: "招募者", Description: "成功邀请 1 位好友", Points: 50, Requirement: RequireReferrals, Threshold: 1},
		{ID: "ambassador", Name: "大使", Description: "成功邀请 10 位好友", Points: 50, Requirement: RequireReferrals, Threshold: 10},
	}
}

// ByID 根据 ID 查找目录条目
func (c Catalog) ByID(id string) (Achievement, bool) {
	for _, a := range c {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// relevance 行为 -> 可能因此变化的统计口径
var relevance = map[ActionType][]RequirementType{
	ActionFlagTrend:          {RequireTrendsSpotted},
	ActionValidationVote:     {RequireValidations, RequireAccuracy},
	ActionValidationAccuracy: {RequireAccuracy},
	ActionDailyStreak:        {RequireStreak},
	ActionReferralBonus:      {RequireReferrals},
}

// RelevantTo 判断成就是否可能受某个行为影响，空行为表示全量检查
func (a Achievement) RelevantTo(action ActionType) bool {
	if action == "" {
		return true
	}
	for _, r := range relevance[action] {
		if r == a.Requirement {
			return true
		}
	}
	return false
}

// Qualifies 判断统计数据是否满足条件。accuracyFloor 为准确率类成就要求的最少已定论投票数
func (a Achievement) Qualifies(s Stats, accuracyFloor int) bool {
	switch a.Requirement {
	case RequireTrendsSpotted:
		return s.TrendsSpotted >= a.Threshold
	case RequireValidations:
		return s.ValidationsCount >= a.Threshold
	case RequireAccuracy:
		if s.DecidedCount < accuracyFloor {
			return false
		}
		return s.AccuracyScore*100 >= float64(a.Threshold)
	case RequireReferrals:
		return s.ReferralsCount >= a.Threshold
	case RequireStreak:
		return s.StreakDays >= a.Threshold
	default:
		return false
	}
}
