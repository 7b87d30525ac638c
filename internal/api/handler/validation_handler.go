package handler

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/pkg/response"
	"Trendspotter/internal/service"

	"github.com/gin-gonic/gin"
)

type ValidationHandler struct {
	queueSvc     service.ValidationQueueService
	consensusSvc service.ConsensusService
}

func NewValidationHandler(queueSvc service.ValidationQueueService, consensusSvc service.ConsensusService) *ValidationHandler {
	return &ValidationHandler{
		queueSvc:     queueSvc,
		consensusSvc: consensusSvc,
	}
}

// GetNext 下一个待验证趋势，队列为空时 all_caught_up 为 true
func (s *ValidationHandler) GetNext(c *gin.Context) {
	userID := c.GetUint64("user_id")

	trend, err := s.queueSvc.GetNextValidationItem(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if trend == nil {
		response.Success(c, &dto.NextValidationDTO{AllCaughtUp: true})
		return
	}
	response.Success(c, &dto.NextValidationDTO{Trend: service.ToTrendDTO(trend)})
}

func (s *ValidationHandler) SubmitVote(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.VoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.consensusSvc.SubmitVote(c.Request.Context(), req.TrendID, userID, req.Vote)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := &dto.VoteResultDTO{
		Accepted:         res.Accepted,
		PointsAwarded:    res.PointsAwarded,
		ConsensusReached: res.ConsensusReached,
		Status:           res.Status,
	}
	if res.LevelUp != nil {
		out.LevelUp = service.ToLevelDTO(*res.LevelUp)
	}
	response.Success(c, out)
}

// StartSession 开始新的验证会话
func (s *ValidationHandler) StartSession(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if err := s.consensusSvc.ResetSession(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
