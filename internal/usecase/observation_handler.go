package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SmartShop/internal/domain/models"
	domrepo "SmartShop/internal/domain/repository"
	pkgkafka "SmartShop/pkg/kafka"
)

// ObservationHandler consumes price observations from Kafka and writes them
// to price history.
type ObservationHandler struct {
	topic   string
	history domrepo.PriceHistory
	metrics domrepo.Metrics
}

func NewObservationHandler(topic string, history domrepo.PriceHistory, metrics domrepo.Metrics) *ObservationHandler {
	return &ObservationHandler{topic: topic, history: history, metrics: metrics}
}

func (h *ObservationHandler) Topic() string { return h.topic }

func (h *ObservationHandler) Handle(ctx context.Context, b []byte) error {
	var o models.PriceObservation
	if err := json.Unmarshal(b, &o); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode observation: %w", err)
	}
	if o.URL == "" || o.Price <= 0 {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("invalid observation %q: url=%q price=%v", o.EventID, o.URL, o.Price)
	}
	if o.ObservedAt.IsZero() {
		o.ObservedAt = time.Now().UTC()
	}
	h.metrics.RecordLatency("observation_e2e", time.Since(o.ObservedAt))

	start := time.Now()
	err := h.history.Store(ctx, &o)
	h.metrics.RecordLatency("ch_insert", time.Since(start))
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation(BackendClickHouse)
	return nil
}

var _ pkgkafka.MessageHandler = (*ObservationHandler)(nil)
