package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

const dateLayout = "2006-01-02"

// AwardOptions 发放积分的附加选项
type AwardOptions struct {
	// CheckAchievements 发放后是否触发成就检查，成就自身的奖励必须为 false
	CheckAchievements bool
	// Points 大于 0 时覆盖积分表中的分值
	Points int
	// RefKey 幂等键，相同键的流水只会写入一次
	RefKey string
}

// AwardResult 单次发放的结果
type AwardResult struct {
	Points   int
	OldTotal int
	NewTotal int
	LevelUp  *reputation.Level
	Unlocked []reputation.Achievement
}

// AchievementChecker 发放积分后触发的成就检查
type AchievementChecker interface {
	CheckAchievements(ctx context.Context, userID uint64, action reputation.ActionType) ([]reputation.Achievement, error)
}

type PointsService interface {
	AwardPoints(ctx context.Context, userID uint64, action reputation.ActionType, meta model.PointsMeta, opts AwardOptions) (*AwardResult, error)
	GetUserLevel(points int) reputation.Level
	GetPointsToNextLevel(points int) reputation.Progress
	GetLevels() []*dto.LevelDTO
	UpdateUserStreak(ctx context.Context, userID uint64) (int, error)
	GetReputation(ctx context.Context, userID uint64) (*dto.ReputationDTO, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*dto.LeaderboardEntryDTO, error)
	GetTransactions(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.PointsTransactionDTO, error)
	ReconcileUser(ctx context.Context, userID uint64) (int, error)
	SetAchievementChecker(checker AchievementChecker)
}

type pointsServiceImpl struct {
	userRepo        repository.UserRepo
	pointsRepo      repository.PointsRepo
	achievementRepo repository.AchievementRepo
	tx              repository.TxManager
	cfg             config.ReputationConfig
	table           reputation.PointTable
	levels          reputation.LevelTable
	catalog         reputation.Catalog
	deps            ReputationDeps
	checker         AchievementChecker
}

func NewPointsService(
	userRepo repository.UserRepo,
	pointsRepo repository.PointsRepo,
	achievementRepo repository.AchievementRepo,
	tx repository.TxManager,
	cfg config.ReputationConfig,
	deps ReputationDeps,
) PointsService {
	return &pointsServiceImpl{
		userRepo:        userRepo,
		pointsRepo:      pointsRepo,
		achievementRepo: achievementRepo,
		tx:              tx,
		cfg:             cfg,
		table:           reputation.DefaultPointTable().WithOverrides(cfg.Points),
		levels:          reputation.DefaultLevelTable(),
		catalog:         reputation.DefaultCatalog(),
		deps:            deps,
	}
}

// SetAchievementChecker 成就服务依赖积分服务发放奖励，因此在构造完成后注入
func (s *pointsServiceImpl) SetAchievementChecker(checker AchievementChecker) {
	s.checker = checker
}

// AwardPoints 追加流水、累加积分并计算等级变化
func (s *pointsServiceImpl) AwardPoints(ctx context.Context, userID uint64, action reputation.ActionType, meta model.PointsMeta, opts AwardOptions) (*AwardResult, error) {
	points, ok := s.table.Points(action)
	if !ok {
		return nil, ErrActionUnknown
	}
	if opts.Points > 0 {
		points = opts.Points
	}

	var res *AwardResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.awardInTx(ctx, userID, action, points, meta, opts.RefKey)
		if err != nil {
			return err
		}
		award := res
		repository.AfterCommit(ctx, func(ctx context.Context) {
			s.afterAward(ctx, userID, award)
			if opts.CheckAchievements && s.checker != nil {
				unlocked, err := s.checker.CheckAchievements(ctx, userID, action)
				if err != nil {
					log.WarnContext(ctx, "check achievements after award failed", "uid", userID, "action", action, "err", err)
				}
				award.Unlocked = unlocked
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// awardInTx 必须在事务中调用
func (s *pointsServiceImpl) awardInTx(ctx context.Context, userID uint64, action reputation.ActionType, points int, meta model.PointsMeta, refKey string) (*AwardResult, error) {
	ledger := &model.PointsTransaction{
		UserID:          userID,
		TransactionType: string(action),
		Points:          points,
		Metadata:        meta,
	}
	if refKey != "" {
		ledger.RefKey = &refKey
	}
	if err := s.pointsRepo.CreateTransaction(ctx, ledger); err != nil {
		if repository.IsDuplicateError(err) {
			return nil, ErrActionDuplicate
		}
		return nil, fmt.Errorf("create points transaction: %w", err)
	}

	if _, err := s.userRepo.GetOrCreateUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	for i := 0; i < s.casRetries(); i++ {
		user, err := s.userRepo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user for update: %w", err)
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		newTotal := user.Points + points
		swapped, err := s.userRepo.CompareAndSwapPoints(ctx, userID, user.Version, newTotal)
		if err != nil {
			return nil, fmt.Errorf("swap points: %w", err)
		}
		if !swapped {
			continue
		}

		res := &AwardResult{Points: points, OldTotal: user.Points, NewTotal: newTotal}
		oldLevel := s.levels.LevelFor(user.Points)
		newLevel := s.levels.LevelFor(newTotal)
		if oldLevel.Name != newLevel.Name {
			res.LevelUp = &newLevel
		}
		return res, nil
	}
	return nil, ErrConcurrentUpdate
}

// afterAward 刷新排行榜、失效缓存并标记待对账，均为尽力而为，只能在提交后调用
func (s *pointsServiceImpl) afterAward(ctx context.Context, userID uint64, res *AwardResult) {
	if res == nil {
		return
	}
	if s.deps.Leaderboard != nil {
		if err := s.deps.Leaderboard.Update(ctx, userID, res.NewTotal); err != nil {
			log.WarnContext(ctx, "update leaderboard failed", "uid", userID, "err", err)
		}
	}
	s.invalidate(ctx, userID)
	if s.deps.Dirty != nil {
		if err := s.deps.Dirty.MarkDirty(ctx, userID); err != nil {
			log.WarnContext(ctx, "mark points dirty failed", "uid", userID, "err", err)
		}
	}
	if res.LevelUp != nil && s.deps.Notifier != nil {
		err := s.deps.Notifier.Notify(ctx, &Notification{
			UserID:   userID,
			Type:     NotifyLevelUp,
			Content:  "恭喜升级到 " + res.LevelUp.Name,
			Payload:  map[string]any{"level": res.LevelUp.Name, "points": res.NewTotal},
			DedupKey: "level_up:" + strconv.FormatUint(userID, 10) + ":" + res.LevelUp.Name,
		})
		if err != nil {
			log.WarnContext(ctx, "notify level up failed", "uid", userID, "err", err)
		}
	}
}

func (s *pointsServiceImpl) invalidate(ctx context.Context, userID uint64) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Invalidate(ctx, userID); err != nil {
		log.WarnContext(ctx, "invalidate reputation cache failed", "uid", userID, "err", err)
	}
}

func (s *pointsServiceImpl) GetUserLevel(points int) reputation.Level {
	return s.levels.LevelFor(points)
}

func (s *pointsServiceImpl) GetPointsToNextLevel(points int) reputation.Progress {
	return s.levels.Progress(points)
}

func (s *pointsServiceImpl) GetLevels() []*dto.LevelDTO {
	res := make([]*dto.LevelDTO, 0, len(s.levels))
	for _, l := range s.levels {
		res = append(res, ToLevelDTO(l))
	}
	return res
}

// UpdateUserStreak 记录当日活跃。失败只记录日志并返回 0，不影响主流程
func (s *pointsServiceImpl) UpdateUserStreak(ctx context.Context, userID uint64) (int, error) {
	streak, changed, err := s.updateStreak(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "update user streak failed", "uid", userID, "err", err)
		return 0, nil
	}
	if changed && s.checker != nil {
		if _, err := s.checker.CheckAchievements(ctx, userID, reputation.ActionDailyStreak); err != nil {
			log.WarnContext(ctx, "check streak achievements failed", "uid", userID, "err", err)
		}
	}
	return streak, nil
}

func (s *pointsServiceImpl) updateStreak(ctx context.Context, userID uint64) (int, bool, error) {
	now := s.deps.now().In(s.cfg.Location())
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	var (
		streak  int
		changed bool
		award   *AwardResult
	)
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetOrCreateUser(ctx, userID); err != nil {
			return err
		}
		for i := 0; i < s.casRetries(); i++ {
			user, err := s.userRepo.GetUserForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			if user == nil {
				return ErrUserNotFound
			}
			last := ""
			if user.LastActivityDate != nil {
				last = *user.LastActivityDate
			}
			if last == today {
				streak = user.StreakDays
				return nil
			}
			next := 1
			if last == yesterday {
				next = user.StreakDays + 1
			}
			swapped, err := s.userRepo.CompareAndSwapStreak(ctx, userID, user.Version, next, today)
			if err != nil {
				return err
			}
			if !swapped {
				continue
			}
			streak, changed = next, true

			if next%7 == 0 {
				points, _ := s.table.Points(reputation.ActionDailyStreak)
				refKey := "daily_streak:" + strconv.FormatUint(userID, 10) + ":" + today
				award, err = s.awardInTx(ctx, userID, reputation.ActionDailyStreak, points, model.PointsMeta{Streak: next}, refKey)
				if err != nil {
					return err
				}
				res := award
				repository.AfterCommit(ctx, func(ctx context.Context) {
					s.afterAward(ctx, userID, res)
				})
				return nil
			}
			repository.AfterCommit(ctx, func(ctx context.Context) {
				s.invalidate(ctx, userID)
			})
			return nil
		}
		return ErrConcurrentUpdate
	})
	if err != nil {
		return 0, false, err
	}
	return streak, changed, nil
}

// GetReputation 用户声望概览，优先读缓存
func (s *pointsServiceImpl) GetReputation(ctx context.Context, userID uint64) (*dto.ReputationDTO, error) {
	if s.deps.Cache != nil {
		cached, err := s.deps.Cache.Get(ctx, userID)
		if err != nil {
			log.WarnContext(ctx, "get reputation cache failed", "uid", userID, "err", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{ID: userID}
	}
	unlocked, err := s.achievementRepo.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := s.levels.Progress(user.Points)
	res := &dto.ReputationDTO{
		UserID:           user.ID,
		Points:           user.Points,
		Level:            ToLevelDTO(s.levels.LevelFor(user.Points)),
		Progress:         &dto.ProgressDTO{PointsNeeded: progress.PointsNeeded, Percentage: progress.Percentage},
		StreakDays:       user.StreakDays,
		TrendsSpotted:    user.TrendsSpotted,
		ValidatedTrends:  user.ValidatedTrends,
		ValidationsCount: user.ValidationsCount,
		AccuracyScore:    user.AccuracyScore,
		ReferralsCount:   user.ReferralsCount,
		Achievements:     make([]*dto.AchievementDTO, 0, len(unlocked)),
	}
	if user.LastActivityDate != nil {
		res.LastActivityDate = *user.LastActivityDate
	}
	for _, ua := range unlocked {
		a, ok := s.catalog.ByID(ua.AchievementID)
		if !ok {
			continue
		}
		d := toAchievementDTO(a)
		d.Unlocked = true
		d.UnlockedAt = ua.UnlockedAt.UTC().Format(time.RFC3339)
		res.Achievements = append(res.Achievements, d)
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, userID, res); err != nil {
			log.WarnContext(ctx, "set reputation cache failed", "uid", userID, "err", err)
		}
	}
	return res, nil
}

// GetLeaderboard 排行榜优先读 Redis，不可用或为空时回源数据库
func (s *pointsServiceImpl) GetLeaderboard(ctx context.Context, limit int) ([]*dto.LeaderboardEntryDTO, error) {
	maxN := int(s.cfg.LeaderboardN)
	if maxN <= 0 {
		maxN = 100
	}
	if limit <= 0 || limit > maxN {
		limit = maxN
	}

	entries := make([]LeaderboardEntry, 0, limit)
	if s.deps.Leaderboard != nil {
		top, err := s.deps.Leaderboard.Top(ctx, int64(limit))
		if err != nil {
			log.WarnContext(ctx, "read leaderboard failed, fallback to db", "err", err)
		} else {
			entries = top
		}
	}
	if len(entries) == 0 {
		users, err := s.userRepo.GetTopUsers(ctx, limit)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			entries = append(entries, LeaderboardEntry{UserID: u.ID, Points: u.Points})
		}
	}

	res := make([]*dto.LeaderboardEntryDTO, 0, len(entries))
	for i, e := range entries {
		res = append(res, &dto.LeaderboardEntryDTO{
			Rank:   i + 1,
			UserID: e.UserID,
			Points: e.Points,
			Level:  ToLevelDTO(s.levels.LevelFor(e.Points)),
		})
	}
	return res, nil
}

func (s *pointsServiceImpl) GetTransactions(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.PointsTransactionDTO, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, ErrParamInvalid
	}
	list, err := s.pointsRepo.GetTransactionsByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.PointsTransactionDTO, 0, len(list))
	for _, t := range list {
		d := &dto.PointsTransactionDTO{
			ID:              t.ID,
			TransactionType: t.TransactionType,
			Points:          t.Points,
		}
		_ = copier.Copy(&d.Metadata, &t.Metadata)
		d.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
		res = append(res, d)
	}
	return res, nil
}

// ReconcileUser 以流水为准重算用户积分。写回走版本号 CAS，
// 读取与写回之间有新流水提交时重读重算
func (s *pointsServiceImpl) ReconcileUser(ctx context.Context, userID uint64) (int, error) {
	for i := 0; i < s.casRetries(); i++ {
		user, err := s.userRepo.GetUser(ctx, userID)
		if err != nil {
			return 0, err
		}
		if user == nil {
			return 0, ErrUserNotFound
		}
		sum, err := s.pointsRepo.SumPointsByUser(ctx, userID)
		if err != nil {
			return 0, err
		}
		if sum != user.Points {
			swapped, err := s.userRepo.CompareAndSwapPoints(ctx, userID, user.Version, sum)
			if err != nil {
				return 0, err
			}
			if !swapped {
				continue
			}
			log.WarnContext(ctx, "points drift fixed", "uid", userID, "stored", user.Points, "ledger", sum)
			s.invalidate(ctx, userID)
		}
		if s.deps.Leaderboard != nil {
			if err = s.deps.Leaderboard.Update(ctx, userID, sum); err != nil {
				log.WarnContext(ctx, "sync leaderboard failed", "uid", userID, "err", err)
			}
		}
		return sum, nil
	}
	return 0, ErrConcurrentUpdate
}

func (s *pointsServiceImpl) casRetries() int {
	if s.cfg.CASRetries <= 0 {
		return 5
	}
	return s.cfg.CASRetries
}

// ToLevelDTO 无上限的等级 Max 输出为 -1
func ToLevelDTO(l reputation.Level) *dto.LevelDTO {
	upper := l.Max
	if l.IsTerminal() {
		upper = -1
	}
	return &dto.LevelDTO{Name: l.Name, Min: l.Min, Max: upper}
}

func toAchievementDTO(a reputation.Achievement) *dto.AchievementDTO {
	return &dto.AchievementDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Points:      a.Points,
		Requirement: string(a.Requirement),
		Threshold:   a.Threshold,
	}
}

