package handler

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/pkg/response"
	"Trendspotter/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReputationHandler struct {
	pointsSvc      service.PointsService
	achievementSvc service.AchievementService
	referralSvc    service.ReferralService
}

func NewReputationHandler(
	pointsSvc service.PointsService,
	achievementSvc service.AchievementService,
	referralSvc service.ReferralService,
) *ReputationHandler {
	return &ReputationHandler{
		pointsSvc:      pointsSvc,
		achievementSvc: achievementSvc,
		referralSvc:    referralSvc,
	}
}

func (s *ReputationHandler) GetMe(c *gin.Context) {
	userID := c.GetUint64("user_id")

	res, err := s.pointsSvc.GetReputation(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ReputationHandler) GetTransactions(c *gin.Context) {
	userID := c.GetUint64("user_id")
	page, pageSize, ok := pageQuery(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	list, err := s.pointsSvc.GetTransactions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ReputationHandler) UpdateStreak(c *gin.Context) {
	userID := c.GetUint64("user_id")

	streak, err := s.pointsSvc.UpdateUserStreak(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.StreakDTO{StreakDays: streak})
}

func (s *ReputationHandler) GetLeaderboard(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	list, err := s.pointsSvc.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ReputationHandler) GetLevels(c *gin.Context) {
	response.Success(c, s.pointsSvc.GetLevels())
}

func (s *ReputationHandler) GetAchievements(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.achievementSvc.GetAchievements(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ReputationHandler) RecordReferral(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.ReferralReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.referralSvc.RecordReferral(c.Request.Context(), userID, req.ReferredUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"points": res.Points, "total": res.NewTotal})
}

// Reconcile 管理后台：以流水为准重算用户积分
func (s *ReputationHandler) Reconcile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	points, err := s.pointsSvc.ReconcileUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ReconcileDTO{UserID: userID, Points: points})
}
