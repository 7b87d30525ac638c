package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
)

// VoteResult 单次投票的处理结果
type VoteResult struct {
	Accepted         bool
	PointsAwarded    int
	ConsensusReached bool
	Status           string
	LevelUp          *reputation.Level
}

type ConsensusService interface {
	SubmitVote(ctx context.Context, trendID, userID uint64, vote string) (*VoteResult, error)
	ResetSession(ctx context.Context, userID uint64) error
}

type consensusServiceImpl struct {
	trendRepo      repository.TrendRepo
	validationRepo repository.ValidationRepo
	userRepo       repository.UserRepo
	pointsService  PointsService
	checker        AchievementChecker
	guard          SkipGuard
	tx             repository.TxManager
	cfg            config.ReputationConfig
	deps           ReputationDeps
}

func NewConsensusService(
	trendRepo repository.TrendRepo,
	validationRepo repository.ValidationRepo,
	userRepo repository.UserRepo,
	pointsService PointsService,
	checker AchievementChecker,
	guard SkipGuard,
	tx repository.TxManager,
	cfg config.ReputationConfig,
	deps ReputationDeps,
) ConsensusService {
	return &consensusServiceImpl{
		trendRepo:      trendRepo,
		validationRepo: validationRepo,
		userRepo:       userRepo,
		pointsService:  pointsService,
		checker:        checker,
		guard:          guard,
		tx:             tx,
		cfg:            cfg,
		deps:           deps,
	}
}

// SubmitVote 记录投票、更新计票，票数达标时判定趋势结果并结算积分。
// 跳过票先占用一次额度，投票失败时归还
func (s *consensusServiceImpl) SubmitVote(ctx context.Context, trendID, userID uint64, vote string) (*VoteResult, error) {
	if !model.IsValidVote(vote) {
		return nil, ErrVoteInvalid
	}
	reserved := false
	if vote == model.VoteSkip && s.guard != nil {
		ok, err := s.guard.Reserve(ctx, userID, s.cfg.MaxSkips)
		if err != nil {
			log.WarnContext(ctx, "reserve skip failed", "uid", userID, "err", err)
		} else if !ok {
			return nil, ErrTooManySkips
		}
		reserved = ok
	}

	res, err := s.submitVote(ctx, trendID, userID, vote)
	if err != nil && reserved {
		if rerr := s.guard.Release(ctx, userID); rerr != nil {
			log.WarnContext(ctx, "release skip failed", "uid", userID, "err", rerr)
		}
	}
	return res, err
}

func (s *consensusServiceImpl) submitVote(ctx context.Context, trendID, userID uint64, vote string) (*VoteResult, error) {
	trend, err := s.trendRepo.GetTrend(ctx, trendID)
	if err != nil {
		return nil, fmt.Errorf("get trend: %w", err)
	}
	if trend == nil {
		return nil, ErrTrendNotFound
	}
	if trend.SpotterID == userID {
		return nil, ErrVoteOwnTrend
	}
	if trend.Status != model.TrendStatusPending {
		return nil, ErrTrendClosed
	}

	res := &VoteResult{}
	var decidedVoters []uint64
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		err := s.validationRepo.CreateValidation(ctx, &model.TrendValidation{
			TrendID: trendID,
			UserID:  userID,
			Vote:    vote,
		})
		if err != nil {
			if repository.IsDuplicateError(err) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("create validation: %w", err)
		}

		ok, err := s.trendRepo.IncrTally(ctx, trendID, vote)
		if err != nil {
			return fmt.Errorf("incr tally: %w", err)
		}
		if !ok {
			return ErrTrendClosed
		}
		trend, err = s.trendRepo.GetTrend(ctx, trendID)
		if err != nil {
			return fmt.Errorf("reload trend: %w", err)
		}
		if trend == nil {
			return ErrTrendNotFound
		}

		if vote != model.VoteSkip {
			if err = s.award(ctx, res, userID, reputation.ActionValidationVote, trendID, "validation_vote"); err != nil {
				return err
			}
			if err = s.userRepo.IncrCounters(ctx, userID, map[string]int{"validations_count": 1}); err != nil {
				return fmt.Errorf("incr validations count: %w", err)
			}
		}

		outcome := s.decide(trend)
		if outcome == "" {
			return nil
		}
		transitioned, err := s.trendRepo.TransitionStatus(ctx, trendID, outcome)
		if err != nil {
			return fmt.Errorf("transition trend: %w", err)
		}
		if !transitioned {
			return nil
		}
		trend.Status = outcome
		res.ConsensusReached = true

		if outcome == model.TrendStatusValidated {
			_, err = s.pointsService.AwardPoints(ctx, trend.SpotterID, reputation.ActionTrendValidated,
				model.PointsMeta{TrendID: trendID},
				AwardOptions{RefKey: "trend_validated:" + strconv.FormatUint(trendID, 10)})
			if err != nil {
				return fmt.Errorf("award spotter: %w", err)
			}
			if err = s.userRepo.IncrCounters(ctx, trend.SpotterID, map[string]int{"validated_trends": 1}); err != nil {
				return fmt.Errorf("incr validated trends: %w", err)
			}
		}

		decidedVoters, err = s.settleAccuracy(ctx, trendID, outcome)
		if err != nil {
			return err
		}
		if vote == winningVote(outcome) {
			return s.award(ctx, res, userID, reputation.ActionValidationAccuracy, trendID, "validation_accuracy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Accepted = true
	res.Status = trend.Status
	s.afterVote(ctx, trend, userID, vote, res, decidedVoters)
	return res, nil
}

// decide 票数达标后根据赞成率给出结果，区间内返回空串表示继续等待
func (s *consensusServiceImpl) decide(t *model.CapturedTrend) string {
	if t.ValidationCount < s.cfg.Consensus.MinVotes {
		return ""
	}
	rate := t.ApprovalRate()
	switch {
	case rate >= s.cfg.Consensus.ApproveRate:
		return model.TrendStatusValidated
	case rate <= s.cfg.Consensus.RejectRate:
		return model.TrendStatusRejected
	default:
		return ""
	}
}

func winningVote(outcome string) string {
	if outcome == model.TrendStatusValidated {
		return model.VoteYes
	}
	return model.VoteNo
}

// settleAccuracy 为该趋势的全部有效投票者累计已定论与判断正确次数
func (s *consensusServiceImpl) settleAccuracy(ctx context.Context, trendID uint64, outcome string) ([]uint64, error) {
	yes, err := s.validationRepo.GetVoterIDs(ctx, trendID, model.VoteYes)
	if err != nil {
		return nil, fmt.Errorf("get yes voters: %w", err)
	}
	no, err := s.validationRepo.GetVoterIDs(ctx, trendID, model.VoteNo)
	if err != nil {
		return nil, fmt.Errorf("get no voters: %w", err)
	}
	correct, wrong := yes, no
	if outcome == model.TrendStatusRejected {
		correct, wrong = no, yes
	}
	if err = s.userRepo.RecordDecidedVotes(ctx, correct, true); err != nil {
		return nil, fmt.Errorf("record correct votes: %w", err)
	}
	if err = s.userRepo.RecordDecidedVotes(ctx, wrong, false); err != nil {
		return nil, fmt.Errorf("record wrong votes: %w", err)
	}
	return append(correct, wrong...), nil
}

func (s *consensusServiceImpl) award(ctx context.Context, res *VoteResult, userID uint64, action reputation.ActionType, trendID uint64, prefix string) error {
	refKey := prefix + ":" + strconv.FormatUint(trendID, 10) + ":" + strconv.FormatUint(userID, 10)
	r, err := s.pointsService.AwardPoints(ctx, userID, action, model.PointsMeta{TrendID: trendID}, AwardOptions{RefKey: refKey})
	if err != nil {
		return fmt.Errorf("award %s: %w", action, err)
	}
	res.PointsAwarded += r.Points
	if r.LevelUp != nil {
		res.LevelUp = r.LevelUp
	}
	return nil
}

// afterVote 提交后的附带动作，失败只记录日志
func (s *consensusServiceImpl) afterVote(ctx context.Context, trend *model.CapturedTrend, userID uint64, vote string, res *VoteResult, decidedVoters []uint64) {
	if s.guard != nil && vote != model.VoteSkip {
		if err := s.guard.Reset(ctx, userID); err != nil {
			log.WarnContext(ctx, "reset skip guard failed", "uid", userID, "err", err)
		}
	}

	if s.checker != nil {
		if vote != model.VoteSkip {
			if _, err := s.checker.CheckAchievements(ctx, userID, reputation.ActionValidationVote); err != nil {
				log.WarnContext(ctx, "check voter achievements failed", "uid", userID, "err", err)
			}
		}
		for _, uid := range decidedVoters {
			if uid == userID {
				continue
			}
			if _, err := s.checker.CheckAchievements(ctx, uid, reputation.ActionValidationAccuracy); err != nil {
				log.WarnContext(ctx, "check accuracy achievements failed", "uid", uid, "err", err)
			}
		}
	}

	if res.ConsensusReached {
		log.InfoContext(ctx, "trend consensus reached", "trend_id", trend.ID, "status", trend.Status,
			"votes", trend.ValidationCount, "positive", trend.PositiveVotes)
		s.notifyOutcome(ctx, trend)
	}
}

func (s *consensusServiceImpl) notifyOutcome(ctx context.Context, trend *model.CapturedTrend) {
	if s.deps.Notifier == nil {
		return
	}
	n := &Notification{
		UserID:   trend.SpotterID,
		TargetID: trend.ID,
		Payload: map[string]any{
			"url":              trend.URL,
			"validation_count": trend.ValidationCount,
			"positive_votes":   trend.PositiveVotes,
		},
		DedupKey: "trend_outcome:" + strconv.FormatUint(trend.ID, 10),
	}
	if trend.Status == model.TrendStatusValidated {
		n.Type = NotifyTrendValidated
		n.Content = "你提交的趋势已通过社区验证"
	} else {
		n.Type = NotifyTrendRejected
		n.Content = "你提交的趋势未通过社区验证"
	}
	if err := s.deps.Notifier.Notify(ctx, n); err != nil {
		log.WarnContext(ctx, "notify trend outcome failed", "trend_id", trend.ID, "err", err)
	}
}

// ResetSession 开始新的验证会话，清空连续跳过计数
func (s *consensusServiceImpl) ResetSession(ctx context.Context, userID uint64) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Reset(ctx, userID)
}
