package service

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/model"
	"Trendspotter/internal/pkg/reputation"
	"Trendspotter/internal/pkg/util"
	"Trendspotter/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

type TrendService interface {
	SubmitTrend(ctx context.Context, userID uint64, req *dto.TrendSubmitDTO) (*dto.TrendDTO, error)
	OnTrendCaptured(ctx context.Context, trend *model.CapturedTrend) error
	GetTrend(ctx context.Context, trendID uint64) (*dto.TrendDTO, error)
	ListUserTrends(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.TrendDTO, error)
	ListContested(ctx context.Context, page, pageSize int) ([]*dto.TrendDTO, error)
	MarkContested(ctx context.Context) (int64, error)
}

type trendServiceImpl struct {
	trendRepo     repository.TrendRepo
	userRepo      repository.UserRepo
	pointsService PointsService
	checker       AchievementChecker
	tx            repository.TxManager
	cfg           config.ReputationConfig
	deps          ReputationDeps
}

func NewTrendService(
	trendRepo repository.TrendRepo,
	userRepo repository.UserRepo,
	pointsService PointsService,
	checker AchievementChecker,
	tx repository.TxManager,
	cfg config.ReputationConfig,
	deps ReputationDeps,
) TrendService {
	return &trendServiceImpl{
		trendRepo:     trendRepo,
		userRepo:      userRepo,
		pointsService: pointsService,
		checker:       checker,
		tx:            tx,
		cfg:           cfg,
		deps:          deps,
	}
}

// SubmitTrend 提交新趋势进入验证队列，并给提交者记分
func (s *trendServiceImpl) SubmitTrend(ctx context.Context, userID uint64, req *dto.TrendSubmitDTO) (*dto.TrendDTO, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Category = strings.TrimSpace(req.Category)
	if req.URL == "" || req.Category == "" {
		return nil, ErrParamInvalid
	}

	exist, err := s.trendRepo.GetPendingTrendByURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrTrendDuplicate
	}

	hashtags := req.Hashtags
	if len(hashtags) == 0 {
		hashtags = util.ExtractTags(req.Description)
	}
	if hashtags == nil {
		hashtags = []string{}
	}

	trend := &model.CapturedTrend{
		SpotterID:   userID,
		Status:      model.TrendStatusPending,
		Category:    req.Category,
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Hashtags:    hashtags,
		CapturedAt:  s.deps.now(),
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.trendRepo.CreateTrend(ctx, trend); err != nil {
			return fmt.Errorf("create trend: %w", err)
		}
		return s.account(ctx, trend)
	})
	if err != nil {
		return nil, err
	}

	s.afterSpot(ctx, userID)
	return ToTrendDTO(trend), nil
}

// OnTrendCaptured 处理其他客户端直接写库的趋势，已记分的趋势会被跳过
func (s *trendServiceImpl) OnTrendCaptured(ctx context.Context, trend *model.CapturedTrend) error {
	if trend == nil || trend.ID == 0 || trend.SpotterID == 0 {
		return ErrParamInvalid
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.account(ctx, trend)
	})
	if errors.Is(err, ErrActionDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}
	s.afterSpot(ctx, trend.SpotterID)
	return nil
}

// account flag_trend 流水以趋势 ID 为幂等键，保证每个趋势只记分一次
func (s *trendServiceImpl) account(ctx context.Context, trend *model.CapturedTrend) error {
	_, err := s.pointsService.AwardPoints(ctx, trend.SpotterID, reputation.ActionFlagTrend,
		model.PointsMeta{TrendID: trend.ID},
		AwardOptions{RefKey: "flag_trend:" + strconv.FormatUint(trend.ID, 10)})
	if err != nil {
		return err
	}
	if err = s.userRepo.IncrCounters(ctx, trend.SpotterID, map[string]int{"trends_spotted": 1}); err != nil {
		return fmt.Errorf("incr trends spotted: %w", err)
	}
	return nil
}

func (s *trendServiceImpl) afterSpot(ctx context.Context, userID uint64) {
	if _, err := s.pointsService.UpdateUserStreak(ctx, userID); err != nil {
		log.WarnContext(ctx, "update streak after spot failed", "uid", userID, "err", err)
	}
	if s.checker != nil {
		if _, err := s.checker.CheckAchievements(ctx, userID, reputation.ActionFlagTrend); err != nil {
			log.WarnContext(ctx, "check spotter achievements failed", "uid", userID, "err", err)
		}
	}
}

func (s *trendServiceImpl) GetTrend(ctx context.Context, trendID uint64) (*dto.TrendDTO, error) {
	trend, err := s.trendRepo.GetTrend(ctx, trendID)
	if err != nil {
		return nil, err
	}
	if trend == nil {
		return nil, ErrTrendNotFound
	}
	return ToTrendDTO(trend), nil
}

func (s *trendServiceImpl) ListUserTrends(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.TrendDTO, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, ErrParamInvalid
	}
	trends, err := s.trendRepo.GetTrendsBySpotter(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return toTrendDTOs(trends), nil
}

// ListContested 票数已达标但仍无共识的趋势，供人工复核
func (s *trendServiceImpl) ListContested(ctx context.Context, page, pageSize int) ([]*dto.TrendDTO, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, ErrParamInvalid
	}
	trends, err := s.trendRepo.GetContestedTrends(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return toTrendDTOs(trends), nil
}

// MarkContested 为新出现的争议趋势打上时间戳，不改变状态
func (s *trendServiceImpl) MarkContested(ctx context.Context) (int64, error) {
	c := s.cfg.Consensus
	return s.trendRepo.MarkContested(ctx, c.MinVotes, c.ApproveRate, c.RejectRate, s.deps.now())
}

// ToTrendDTO 趋势模型转返回对象
func ToTrendDTO(t *model.CapturedTrend) *dto.TrendDTO {
	d := &dto.TrendDTO{}
	_ = copier.Copy(d, t)
	if d.Hashtags == nil {
		d.Hashtags = []string{}
	}
	d.CapturedAt = t.CapturedAt.UTC().Format(time.RFC3339)
	if t.ContestedAt != nil {
		d.ContestedAt = t.ContestedAt.UTC().Format(time.RFC3339)
	}
	return d
}

func toTrendDTOs(trends []*model.CapturedTrend) []*dto.TrendDTO {
	res := make([]*dto.TrendDTO, 0, len(trends))
	for _, t := range trends {
		res = append(res, ToTrendDTO(t))
	}
	return res
}
