package kafka

import (
	"Trendspotter/internal/model"
	"Trendspotter/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const capturedTrendsTable = "captured_trends"

// TrendsHandler 消费 captured_trends 的 binlog，为绕过 HTTP 入口写入的趋势补记积分
type TrendsHandler struct {
	trendSvc service.TrendService
}

func NewTrendsHandler(trendSvc service.TrendService) *TrendsHandler {
	return &TrendsHandler{trendSvc: trendSvc}
}

func (s *TrendsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("captured trends consumer setup")
	return nil
}

func (s *TrendsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("captured trends consumer cleanup")
	return nil
}

func (s *TrendsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-captured-trends consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-captured-trends process batch error", "err", err)
		return err
	}
	return nil
}

func (s *TrendsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return s.handle(ctx, msg.Value)
}

// handle 格式错误的消息直接丢弃，只有业务处理失败才返回错误触发重试
func (s *TrendsHandler) handle(ctx context.Context, value []byte) error {
	canalMsg, err := ToCanalMessage(value, capturedTrendsTable)
	if err != nil {
		if !errors.Is(err, ErrTableMismatch) && !errors.Is(err, ErrEmptyData) {
			log.WarnContext(ctx, "drop invalid canal message", "err", err)
		}
		return nil
	}
	if canalMsg.Type != canalInsert {
		return nil
	}

	for _, row := range canalMsg.Data {
		trend := rowToTrend(row)
		if trend.ID == 0 || trend.SpotterID == 0 {
			log.WarnContext(ctx, "drop captured trend row without id", "row", row)
			continue
		}
		if err = s.trendSvc.OnTrendCaptured(ctx, trend); err != nil {
			return errors.Wrapf(err, "account captured trend %d", trend.ID)
		}
		log.InfoContext(ctx, "captured trend accounted", "trendID", trend.ID, "spotterID", trend.SpotterID)
	}
	return nil
}

func rowToTrend(row CanalRow) *model.CapturedTrend {
	return &model.CapturedTrend{
		ID:          row.Uint64("id"),
		SpotterID:   row.Uint64("spotter_id"),
		Status:      row.String("status"),
		Category:    row.String("category"),
		URL:         row.String("url"),
		Title:       row.String("title"),
		Description: row.String("description"),
		CapturedAt:  row.Time("captured_at"),
	}
}
