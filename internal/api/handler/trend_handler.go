package handler

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/pkg/response"
	"Trendspotter/internal/pkg/util"
	"Trendspotter/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TrendHandler struct {
	trendSvc service.TrendService
}

func NewTrendHandler(trendSvc service.TrendService) *TrendHandler {
	return &TrendHandler{
		trendSvc: trendSvc,
	}
}

func (s *TrendHandler) SubmitTrend(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.TrendSubmitDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	trend, err := s.trendSvc.SubmitTrend(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trend)
}

func (s *TrendHandler) GetTrend(c *gin.Context) {
	trendID, err := strconv.ParseUint(c.Param("trend_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	trend, err := s.trendSvc.GetTrend(c.Request.Context(), trendID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trend)
}

func (s *TrendHandler) GetTrendSelf(c *gin.Context) {
	userID := c.GetUint64("user_id")
	page, pageSize, ok := pageQuery(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	trends, err := s.trendSvc.ListUserTrends(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trends)
}

// GetContestedTrends 审核后台：票数达标仍无共识的趋势
func (s *TrendHandler) GetContestedTrends(c *gin.Context) {
	page, pageSize, ok := pageQuery(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	trends, err := s.trendSvc.ListContested(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trends)
}
