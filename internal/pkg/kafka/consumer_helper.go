package kafka

import (
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize      = 32
	batchTimeout   = 1 * time.Second
	batchWorkers   = 8
	maxAttempts    = 6
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 凑满一批或超时后处理，分区关闭时处理剩余消息
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		processBatch(session.Context(), batch, logic)
		session.MarkMessage(batch[len(batch)-1], "")
		session.Commit()
		batch = make([]*sarama.ConsumerMessage, 0, batchSize)
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，失败的消息指数退避重试，超过次数后记录并跳过。
// 趋势记分以 RefKey 幂等，重复消费不会重复加分
func processBatch(ctx context.Context, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var g errgroup.Group
	g.SetLimit(batchWorkers)

	for _, msg := range messages {
		msg := msg
		g.Go(func() error {
			if err := retry(ctx, func() error { return logic(ctx, msg) }); err != nil {
				log.ErrorContext(ctx, "drop message after retries",
					"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func retry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		log.WarnContext(ctx, "process message error, retrying", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, retryMaxDelay)
	}
	return err
}
