package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// PointsTransaction 积分流水，只追加不修改
type PointsTransaction struct {
	ID              uint64     `gorm:"primaryKey" json:"id"`
	UserID          uint64     `gorm:"not null;index:idx_user_created,priority:1" json:"userId"`
	TransactionType string     `gorm:"type:varchar(32);not null" json:"transactionType"`
	Points          int        `gorm:"not null" json:"points"`
	Metadata        PointsMeta `gorm:"type:json" json:"metadata"`
	RefKey          *string    `gorm:"type:varchar(128);uniqueIndex:idx_ref_key" json:"-"` // 幂等键，NULL 表示不去重
	CreatedAt       time.Time  `gorm:"index:idx_user_created,priority:2" json:"createdAt"`
}

func (PointsTransaction) TableName() string {
	return "points_transactions"
}

// PointsMeta 流水附加信息
type PointsMeta struct {
	TrendID        uint64 `json:"trend_id,omitempty"`
	Streak         int    `json:"streak,omitempty"`
	AchievementID  string `json:"achievement_id,omitempty"`
	ReferredUserID uint64 `json:"referred_user_id,omitempty"`
}

func (m PointsMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *PointsMeta) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = PointsMeta{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
}
