package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/model"
	"Trendspotter/internal/repository"
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"
)

type ValidationQueueService interface {
	GetNextValidationItem(ctx context.Context, userID uint64) (*model.CapturedTrend, error)
}

type validationQueueServiceImpl struct {
	trendRepo      repository.TrendRepo
	validationRepo repository.ValidationRepo
	userRepo       repository.UserRepo
	cfg            config.QueueConfig
	deps           ReputationDeps
}

func NewValidationQueueService(
	trendRepo repository.TrendRepo,
	validationRepo repository.ValidationRepo,
	userRepo repository.UserRepo,
	cfg config.QueueConfig,
	deps ReputationDeps,
) ValidationQueueService {
	return &validationQueueServiceImpl{
		trendRepo:      trendRepo,
		validationRepo: validationRepo,
		userRepo:       userRepo,
		cfg:            cfg,
		deps:           deps,
	}
}

// GetNextValidationItem 选出用户下一个待验证的趋势，队列为空时返回 nil
func (s *validationQueueServiceImpl) GetNextValidationItem(ctx context.Context, userID uint64) (*model.CapturedTrend, error) {
	voted, err := s.validationRepo.GetVotedTrendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get voted trends: %w", err)
	}

	candidates, err := s.trendRepo.ListValidationCandidates(ctx, repository.CandidateQuery{
		ExcludeIDs:     voted,
		ExcludeSpotter: userID,
		MaxVotes:       s.cfg.GraduationVotes,
		Limit:          s.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list validation candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	spotted, err := s.spotterActivity(ctx, candidates)
	if err != nil {
		return nil, err
	}

	now := s.deps.now()
	rotation := s.rotationIndex(userID, now)
	best, bestScore := 0, -1.0
	for i, t := range candidates {
		score := s.score(t, i, now, rotation, spotted)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return candidates[best], nil
}

// spotterActivity 批量读取候选趋势提交者的 trends_spotted
func (s *validationQueueServiceImpl) spotterActivity(ctx context.Context, candidates []*model.CapturedTrend) (map[uint64]int, error) {
	ids := make([]uint64, 0, len(candidates))
	seen := make(map[uint64]struct{}, len(candidates))
	for _, t := range candidates {
		if _, ok := seen[t.SpotterID]; ok {
			continue
		}
		seen[t.SpotterID] = struct{}{}
		ids = append(ids, t.SpotterID)
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get spotters: %w", err)
	}
	res := make(map[uint64]int, len(users))
	for _, u := range users {
		res[u.ID] = u.TrendsSpotted
	}
	return res, nil
}

// score 年龄按小数小时计分
func (s *validationQueueServiceImpl) score(t *model.CapturedTrend, idx int, now time.Time, rotation int, spotted map[uint64]int) float64 {
	ageHours := max(now.Sub(t.CapturedAt).Hours(), 0)
	score := min(ageHours*float64(s.cfg.AgeWeightPerHour), float64(s.cfg.AgeCap))

	// 未知提交者按新人处理
	if n, ok := spotted[t.SpotterID]; !ok || n < s.cfg.NewSpotterThreshold {
		score += float64(s.cfg.NewSpotterBonus)
	} else {
		score += float64(s.cfg.SpotterBonus)
	}

	if idx == rotation {
		score += float64(s.cfg.RotationBonus)
	}

	if remaining := s.cfg.GraduationVotes - t.ValidationCount; remaining > 0 {
		score += float64(remaining * s.cfg.UnderValidatedUnit)
	}
	return score
}

// rotationIndex 按日期与用户分散不同用户看到的队首
func (s *validationQueueServiceImpl) rotationIndex(userID uint64, now time.Time) int {
	if s.cfg.RotationModulo <= 0 {
		return -1
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatUint(userID, 10)))
	return int((uint64(now.Day()) + uint64(h.Sum32())) % uint64(s.cfg.RotationModulo))
}
