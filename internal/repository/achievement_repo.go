package repository

import (
	"Trendspotter/internal/model"
	"context"

	"gorm.io/gorm"
)

type AchievementRepo interface {
	GetUnlocked(ctx context.Context, userID uint64) ([]*model.UserAchievement, error)
	CreateUnlock(ctx context.Context, ua *model.UserAchievement) error
}

type achievementRepoImpl struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) AchievementRepo {
	return &achievementRepoImpl{db: db}
}

func (s *achievementRepoImpl) GetUnlocked(ctx context.Context, userID uint64) ([]*model.UserAchievement, error) {
	list := make([]*model.UserAchievement, 0)
	result := conn(ctx, s.db).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}
	return list, nil
}

// CreateUnlock 解锁记录只创建一次，重复由唯一索引拦截
func (s *achievementRepoImpl) CreateUnlock(ctx context.Context, ua *model.UserAchievement) error {
	return conn(ctx, s.db).Create(ua).Error
}
