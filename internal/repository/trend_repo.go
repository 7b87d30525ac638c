package repository

import (
	"Trendspotter/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CandidateQuery 验证队列候选查询条件
type CandidateQuery struct {
	ExcludeIDs     []uint64
	ExcludeSpotter uint64
	MaxVotes       int
	Limit          int
}

type TrendRepo interface {
	CreateTrend(ctx context.Context, trend *model.CapturedTrend) error
	GetTrend(ctx context.Context, id uint64) (*model.CapturedTrend, error)
	GetPendingTrendByURL(ctx context.Context, url string) (*model.CapturedTrend, error)
	GetTrendsBySpotter(ctx context.Context, spotterID uint64, limit, offset int) ([]*model.CapturedTrend, error)
	ListValidationCandidates(ctx context.Context, q CandidateQuery) ([]*model.CapturedTrend, error)

	IncrTally(ctx context.Context, id uint64, vote string) (bool, error)
	TransitionStatus(ctx context.Context, id uint64, status string) (bool, error)

	MarkContested(ctx context.Context, minVotes int, approveRate, rejectRate float64, at time.Time) (int64, error)
	GetContestedTrends(ctx context.Context, limit, offset int) ([]*model.CapturedTrend, error)
}

type trendRepoImpl struct {
	db *gorm.DB
}

func NewTrendRepo(db *gorm.DB) TrendRepo {
	return &trendRepoImpl{db: db}
}

func (s *trendRepoImpl) CreateTrend(ctx context.Context, trend *model.CapturedTrend) error {
	return conn(ctx, s.db).Create(trend).Error
}

func (s *trendRepoImpl) GetTrend(ctx context.Context, id uint64) (*model.CapturedTrend, error) {
	var trend model.CapturedTrend
	err := conn(ctx, s.db).Where("id = ?", id).First(&trend).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trend, nil
}

func (s *trendRepoImpl) GetPendingTrendByURL(ctx context.Context, url string) (*model.CapturedTrend, error) {
	var trend model.CapturedTrend
	err := conn(ctx, s.db).
		Where("url = ? AND status = ?", url, model.TrendStatusPending).
		First(&trend).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trend, nil
}

func (s *trendRepoImpl) GetTrendsBySpotter(ctx context.Context, spotterID uint64, limit, offset int) ([]*model.CapturedTrend, error) {
	trends := make([]*model.CapturedTrend, 0, limit)
	result := conn(ctx, s.db).
		Where("spotter_id = ?", spotterID).
		Order("captured_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&trends)
	if result.Error != nil {
		return nil, result.Error
	}
	return trends, nil
}

// ListValidationCandidates 待验证、未毕业、未投过票的趋势，按提交时间升序
func (s *trendRepoImpl) ListValidationCandidates(ctx context.Context, q CandidateQuery) ([]*model.CapturedTrend, error) {
	trends := make([]*model.CapturedTrend, 0, q.Limit)
	db := conn(ctx, s.db).
		Where("status = ?", model.TrendStatusPending).
		Where("validation_count < ?", q.MaxVotes)
	// NOT IN 空集合会被渲染为 NOT IN (NULL)，必须跳过
	if len(q.ExcludeIDs) > 0 {
		db = db.Where("id NOT IN ?", q.ExcludeIDs)
	}
	if q.ExcludeSpotter != 0 {
		db = db.Where("spotter_id <> ?", q.ExcludeSpotter)
	}
	result := db.
		Order("captured_at ASC").
		Order("id ASC").
		Limit(q.Limit).
		Find(&trends)
	if result.Error != nil {
		return nil, result.Error
	}
	return trends, nil
}

// IncrTally 在待验证状态下原子累加票数，返回是否命中
func (s *trendRepoImpl) IncrTally(ctx context.Context, id uint64, vote string) (bool, error) {
	updates := map[string]interface{}{
		"validation_count": gorm.Expr("validation_count + 1"),
	}
	switch vote {
	case model.VoteYes:
		updates["positive_votes"] = gorm.Expr("positive_votes + 1")
	case model.VoteSkip:
		updates["skip_count"] = gorm.Expr("skip_count + 1")
	}
	result := conn(ctx, s.db).Model(&model.CapturedTrend{}).
		Where("id = ? AND status = ?", id, model.TrendStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TransitionStatus 条件更新：只允许从 pending_validation 迁出
func (s *trendRepoImpl) TransitionStatus(ctx context.Context, id uint64, status string) (bool, error) {
	result := conn(ctx, s.db).Model(&model.CapturedTrend{}).
		Where("id = ? AND status = ?", id, model.TrendStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkContested 标记票数已达标但赞成率处于中间区间的趋势
func (s *trendRepoImpl) MarkContested(ctx context.Context, minVotes int, approveRate, rejectRate float64, at time.Time) (int64, error) {
	result := conn(ctx, s.db).Model(&model.CapturedTrend{}).
		Where("status = ?", model.TrendStatusPending).
		Where("validation_count >= ?", minVotes).
		Where("contested_at IS NULL").
		Where("positive_votes > validation_count * ?", rejectRate).
		Where("positive_votes < validation_count * ?", approveRate).
		Update("contested_at", at)
	return result.RowsAffected, result.Error
}

func (s *trendRepoImpl) GetContestedTrends(ctx context.Context, limit, offset int) ([]*model.CapturedTrend, error) {
	trends := make([]*model.CapturedTrend, 0, limit)
	result := conn(ctx, s.db).
		Where("status = ? AND contested_at IS NOT NULL", model.TrendStatusPending).
		Order("contested_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&trends)
	if result.Error != nil {
		return nil, result.Error
	}
	return trends, nil
}
