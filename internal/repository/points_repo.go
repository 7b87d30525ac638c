package repository

import (
	"Trendspotter/internal/model"
	"context"

	"gorm.io/gorm"
)

type PointsRepo interface {
	CreateTransaction(ctx context.Context, tx *model.PointsTransaction) error
	ExistsByRefKey(ctx context.Context, refKey string) (bool, error)
	SumPointsByUser(ctx context.Context, userID uint64) (int, error)
	GetTransactionsByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.PointsTransaction, error)
}

type pointsRepoImpl struct {
	db *gorm.DB
}

func NewPointsRepo(db *gorm.DB) PointsRepo {
	return &pointsRepoImpl{db: db}
}

func (s *pointsRepoImpl) CreateTransaction(ctx context.Context, tx *model.PointsTransaction) error {
	return conn(ctx, s.db).Create(tx).Error
}

func (s *pointsRepoImpl) ExistsByRefKey(ctx context.Context, refKey string) (bool, error) {
	var count int64
	err := conn(ctx, s.db).Model(&model.PointsTransaction{}).
		Where("ref_key = ?", refKey).
		Count(&count).Error
	return count > 0, err
}

// SumPointsByUser 回放流水得到积分总数
func (s *pointsRepoImpl) SumPointsByUser(ctx context.Context, userID uint64) (int, error) {
	var sum int64
	err := conn(ctx, s.db).Model(&model.PointsTransaction{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return int(sum), err
}

func (s *pointsRepoImpl) GetTransactionsByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.PointsTransaction, error) {
	list := make([]*model.PointsTransaction, 0, limit)
	result := conn(ctx, s.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}
	return list, nil
}
