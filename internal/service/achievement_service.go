package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"
)

var errAlreadyUnlocked = errors.New("achievement already unlocked")

type AchievementService interface {
	CheckAchievements(ctx context.Context, userID uint64, action reputation.ActionType) ([]reputation.Achievement, error)
	GetAchievements(ctx context.Context, userID uint64) ([]*dto.AchievementDTO, error)
}

type achievementServiceImpl struct {
	userRepo        repository.UserRepo
	achievementRepo repository.AchievementRepo
	pointsService   PointsService
	tx              repository.TxManager
	cfg             config.ReputationConfig
	catalog         reputation.Catalog
	deps            ReputationDeps
}

func NewAchievementService(
	userRepo repository.UserRepo,
	achievementRepo repository.AchievementRepo,
	pointsService PointsService,
	tx repository.TxManager,
	cfg config.ReputationConfig,
	deps ReputationDeps,
) AchievementService {
	return &achievementServiceImpl{
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		pointsService:   pointsService,
		tx:              tx,
		cfg:             cfg,
		catalog:         reputation.DefaultCatalog(),
		deps:            deps,
	}
}

// CheckAchievements 检查并解锁满足条件的成就，action 为空时检查全部目录
func (s *achievementServiceImpl) CheckAchievements(ctx context.Context, userID uint64, action reputation.ActionType) ([]reputation.Achievement, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	unlocked, err := s.achievementRepo.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get unlocked achievements: %w", err)
	}
	have := make(map[string]struct{}, len(unlocked))
	for _, ua := range unlocked {
		have[ua.AchievementID] = struct{}{}
	}

	stats := statsOf(user)
	res := make([]reputation.Achievement, 0)
	for _, a := range s.catalog {
		if _, ok := have[a.ID]; ok {
			continue
		}
		if !a.RelevantTo(action) || !a.Qualifies(stats, s.cfg.Consensus.AccuracyFloor) {
			continue
		}

		err = s.unlock(ctx, userID, a)
		if errors.Is(err, errAlreadyUnlocked) {
			continue
		}
		if err != nil {
			return res, err
		}
		res = append(res, a)
		log.InfoContext(ctx, "achievement unlocked", "uid", userID, "achievement", a.ID)
		s.notifyUnlock(ctx, userID, a)
	}
	return res, nil
}

// unlock 写入解锁记录并发放奖励，二者同一事务
func (s *achievementServiceImpl) unlock(ctx context.Context, userID uint64, a reputation.Achievement) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		err := s.achievementRepo.CreateUnlock(ctx, &model.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			UnlockedAt:    s.deps.now(),
		})
		if err != nil {
			if repository.IsDuplicateError(err) {
				return errAlreadyUnlocked
			}
			return fmt.Errorf("create unlock: %w", err)
		}
		_, err = s.pointsService.AwardPoints(ctx, userID, reputation.ActionAchievementUnlocked,
			model.PointsMeta{AchievementID: a.ID},
			AwardOptions{
				CheckAchievements: false,
				Points:            a.Points,
				RefKey:            "achievement:" + strconv.FormatUint(userID, 10) + ":" + a.ID,
			})
		if errors.Is(err, ErrActionDuplicate) {
			return errAlreadyUnlocked
		}
		return err
	})
}

func (s *achievementServiceImpl) notifyUnlock(ctx context.Context, userID uint64, a reputation.Achievement) {
	if s.deps.Notifier == nil {
		return
	}
	err := s.deps.Notifier.Notify(ctx, &Notification{
		UserID:   userID,
		Type:     NotifyAchievementUnlocked,
		Content:  "解锁成就「" + a.Name + "」",
		Payload:  map[string]any{"achievement_id": a.ID, "points": a.Points},
		DedupKey: "achievement:" + strconv.FormatUint(userID, 10) + ":" + a.ID,
	})
	if err != nil {
		log.WarnContext(ctx, "notify achievement unlock failed", "uid", userID, "achievement", a.ID, "err", err)
	}
}

// GetAchievements 成就目录，附带当前用户的解锁状态
func (s *achievementServiceImpl) GetAchievements(ctx context.Context, userID uint64) ([]*dto.AchievementDTO, error) {
	unlocked, err := s.achievementRepo.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := make(map[string]time.Time, len(unlocked))
	for _, ua := range unlocked {
		at[ua.AchievementID] = ua.UnlockedAt
	}

	res := make([]*dto.AchievementDTO, 0, len(s.catalog))
	for _, a := range s.catalog {
		d := toAchievementDTO(a)
		if t, ok := at[a.ID]; ok {
			d.Unlocked = true
			d.UnlockedAt = t.UTC().Format(time.RFC3339)
		}
		res = append(res, d)
	}
	return res, nil
}

func statsOf(u *model.User) reputation.Stats {
	return reputation.Stats{
		TrendsSpotted:    u.TrendsSpotted,
		ValidationsCount: u.ValidationsCount,
		DecidedCount:     u.DecidedValidations,
		AccuracyScore:    u.AccuracyScore,
		ReferralsCount:   u.ReferralsCount,
		StreakDays:       u.StreakDays,
	}
}
