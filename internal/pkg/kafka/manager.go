package kafka

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/service"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"golang.org/x/sync/errgroup"
)

const consumeRetryDelay = 2 * time.Second

// ConsumerManager captured_trends binlog 消费组
type ConsumerManager struct {
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

func NewConsumerManager(cfg *config.Config, trendSvc service.TrendService) (*ConsumerManager, error) {
	saramaCfg, err := newSaramaConfig(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("sarama config: %w", err)
	}
	group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaTrendConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("new consumer group: %w", err)
	}
	return &ConsumerManager{
		topic:   cfg.KafkaTrendConsumer.Topic,
		group:   group,
		handler: NewTrendsHandler(trendSvc),
	}, nil
}

// Start 阻塞消费直到 ctx 结束，退出前关闭消费组
func (m *ConsumerManager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for err := range m.group.Errors() {
			log.Error("captured trends consumer error", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			if err := m.group.Close(); err != nil {
				log.Error("Failed to close captured trends consumer", "err", err)
			}
		}()
		log.Info("Captured trends consumer started", "topic", m.topic)
		for {
			err := m.group.Consume(ctx, []string{m.topic}, m.handler)
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			if ctx.Err() != nil {
				log.Info("Kafka Manager shutting down...")
				return nil
			}
			if err != nil {
				log.Error("Error from consumer, retrying", "err", err, "delay", consumeRetryDelay)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(consumeRetryDelay):
				}
			}
		}
	})

	return g.Wait()
}
