package model

import (
	"time"
)

const (
	TrendStatusPending   = "pending_validation"
	TrendStatusValidated = "validated"
	TrendStatusRejected  = "rejected"
)

type CapturedTrend struct {
	ID              uint64     `gorm:"primaryKey" json:"id"`
	SpotterID       uint64     `gorm:"not null;index:idx_spotter_id" json:"spotterId"`
	Status          string     `gorm:"type:varchar(32);not null;default:'pending_validation';index:idx_queue,priority:1" json:"status"`
	ValidationCount int        `gorm:"not null;default:0;index:idx_queue,priority:2" json:"validationCount"`
	PositiveVotes   int        `gorm:"not null;default:0" json:"positiveVotes"`
	SkipCount       int        `gorm:"not null;default:0" json:"skipCount"`
	Category        string     `gorm:"type:varchar(64);not null" json:"category"`
	URL             string     `gorm:"type:varchar(1024);not null" json:"url"`
	Title           string     `gorm:"type:varchar(255)" json:"title"`
	Description     string     `gorm:"type:varchar(2000)" json:"description"`
	Hashtags        []string   `gorm:"type:json;serializer:json" json:"hashtags"`
	CapturedAt      time.Time  `gorm:"not null;index:idx_queue,priority:3" json:"capturedAt"`
	ContestedAt     *time.Time `json:"contestedAt"` // 票数达标但未形成共识时由定时任务标记
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (CapturedTrend) TableName() string {
	return "captured_trends"
}

// NegativeVotes 反对票没有单独计数，由总票数推导
func (t *CapturedTrend) NegativeVotes() int {
	return t.ValidationCount - t.PositiveVotes - t.SkipCount
}

// ApprovalRate positive_votes / validation_count
func (t *CapturedTrend) ApprovalRate() float64 {
	if t.ValidationCount == 0 {
		return 0
	}
	return float64(t.PositiveVotes) / float64(t.ValidationCount)
}
