package repository

import (
	"Trendspotter/internal/model"
	"context"

	"gorm.io/gorm"
)

type ValidationRepo interface {
	CreateValidation(ctx context.Context, v *model.TrendValidation) error
	GetVotedTrendIDs(ctx context.Context, userID uint64) ([]uint64, error)
	GetVoterIDs(ctx context.Context, trendID uint64, vote string) ([]uint64, error)
}

type validationRepoImpl struct {
	db *gorm.DB
}

func NewValidationRepo(db *gorm.DB) ValidationRepo {
	return &validationRepoImpl{db: db}
}

func (s *validationRepoImpl) CreateValidation(ctx context.Context, v *model.TrendValidation) error {
	return conn(ctx, s.db).Create(v).Error
}

// GetVotedTrendIDs 用户投过票（含跳过）的全部趋势
func (s *validationRepoImpl) GetVotedTrendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(ctx, s.db).Model(&model.TrendValidation{}).
		Where("user_id = ?", userID).
		Pluck("trend_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *validationRepoImpl) GetVoterIDs(ctx context.Context, trendID uint64, vote string) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := conn(ctx, s.db).Model(&model.TrendValidation{}).
		Where("trend_id = ? AND vote = ?", trendID, vote).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
