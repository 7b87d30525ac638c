package model

import (
	"time"
)

const (
	VoteYes  = "yes"
	VoteNo   = "no"
	VoteSkip = "skip"
)

type TrendValidation struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	TrendID   uint64    `gorm:"not null;uniqueIndex:idx_trend_user,priority:1" json:"trendId"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_trend_user,priority:2;index:idx_user_id" json:"userId"`
	Vote      string    `gorm:"type:varchar(8);not null" json:"vote"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TrendValidation) TableName() string {
	return "trend_validations"
}

// IsValidVote 投票值是否合法
func IsValidVote(vote string) bool {
	return vote == VoteYes || vote == VoteNo || vote == VoteSkip
}
