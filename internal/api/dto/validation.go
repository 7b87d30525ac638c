package dto

// VoteReq 验证投票
type VoteReq struct {
	TrendID uint64 `json:"trend_id" binding:"required"`
	Vote    string `json:"vote" binding:"required,oneof=yes no skip"`
}

// VoteResultDTO 投票结果
type VoteResultDTO struct {
	Accepted         bool      `json:"accepted"`
	PointsAwarded    int       `json:"points_awarded"`
	ConsensusReached bool      `json:"consensus_reached"`
	Status           string    `json:"status"`
	LevelUp          *LevelDTO `json:"level_up,omitempty"`
}

// NextValidationDTO 下一个待验证条目，Trend 为空表示已全部处理
type NextValidationDTO struct {
	Trend       *TrendDTO `json:"trend"`
	AllCaughtUp bool      `json:"all_caught_up"`
}
