package service

import (
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
)

type ReferralService interface {
	RecordReferral(ctx context.Context, referrerID, referredID uint64) (*AwardResult, error)
}

type referralServiceImpl struct {
	userRepo      repository.UserRepo
	pointsService PointsService
	checker       AchievementChecker
	tx            repository.TxManager
}

func NewReferralService(
	userRepo repository.UserRepo,
	pointsService PointsService,
	checker AchievementChecker,
	tx repository.TxManager,
) ReferralService {
	return &referralServiceImpl{
		userRepo:      userRepo,
		pointsService: pointsService,
		checker:       checker,
		tx:            tx,
	}
}

// RecordReferral 被邀请用户只能计入一次
func (s *referralServiceImpl) RecordReferral(ctx context.Context, referrerID, referredID uint64) (*AwardResult, error) {
	if referredID == 0 {
		return nil, ErrParamInvalid
	}
	if referrerID == referredID {
		return nil, ErrReferralSelf
	}

	var res *AwardResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.pointsService.AwardPoints(ctx, referrerID, reputation.ActionReferralBonus,
			model.PointsMeta{ReferredUserID: referredID},
			AwardOptions{RefKey: "referral:" + strconv.FormatUint(referredID, 10)})
		if err != nil {
			return err
		}
		if err = s.userRepo.IncrCounters(ctx, referrerID, map[string]int{"referrals_count": 1}); err != nil {
			return fmt.Errorf("incr referrals count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.checker != nil {
		unlocked, err := s.checker.CheckAchievements(ctx, referrerID, reputation.ActionReferralBonus)
		if err != nil {
			log.WarnContext(ctx, "check referral achievements failed", "uid", referrerID, "err", err)
		}
		res.Unlocked = unlocked
	}
	return res, nil
}
