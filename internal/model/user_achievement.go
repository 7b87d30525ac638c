package model

import (
	"time"
)

type UserAchievement struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        uint64    `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"userId"`
	AchievementID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievementId"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
