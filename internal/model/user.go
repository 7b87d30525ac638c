package model

import (
	"time"
)

// User 用户声望聚合，由积分引擎与共识模块维护
type User struct {
	ID                 uint64    `gorm:"primaryKey" json:"id"`
	Points             int       `gorm:"not null;default:0;index:idx_points" json:"points"`
	TrendsSpotted      int       `gorm:"not null;default:0" json:"trendsSpotted"`
	ValidatedTrends    int       `gorm:"not null;default:0" json:"validatedTrends"`
	ValidationsCount   int       `gorm:"not null;default:0" json:"validationsCount"`
	DecidedValidations int       `gorm:"not null;default:0" json:"decidedValidations"` // 已形成共识的趋势上的有效投票数
	CorrectValidations int       `gorm:"not null;default:0" json:"correctValidations"`
	AccuracyScore      float64   `gorm:"not null;default:0" json:"accuracyScore"`
	StreakDays         int       `gorm:"not null;default:0" json:"streakDays"`
	LastActivityDate   *string   `gorm:"type:varchar(10)" json:"lastActivityDate"` // 2006-01-02
	ReferralsCount     int       `gorm:"not null;default:0" json:"referralsCount"`
	Version            uint64    `gorm:"not null;default:0" json:"-"` // 乐观锁版本号，任何聚合字段变更都 +1
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
