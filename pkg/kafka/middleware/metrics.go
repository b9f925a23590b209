package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"guesthouse/pkg/kafka"
)

// Metrics holds producer counters
type Metrics struct {
	published            atomic.Int64
	failed               atomic.Int64
	publishDurationTotal atomic.Int64 // Nanoseconds
}

type MetricsSnapshot struct {
	Published          int64 `json:"published"`
	Failed             int64 `json:"failed"`
	AvgPublishDuration int64 `json:"avgPublishDurationMs"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	var avg int64
	if published > 0 {
		avg = time.Duration(m.publishDurationTotal.Load() / published).Milliseconds()
	}
	return MetricsSnapshot{
		Published:          published,
		Failed:             m.failed.Load(),
		AvgPublishDuration: avg,
	}
}

// MetricsProducerMiddleware tracks producer metrics
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.publishDurationTotal.Add(int64(time.Since(start)))
		return nil
	}
}
