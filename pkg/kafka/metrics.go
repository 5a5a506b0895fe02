package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	published = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_kafka_published_total",
		Help: "Messages published to Kafka by topic and result",
	}, []string{"topic", "result"})

	publishSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartshop_kafka_publish_seconds",
		Help:    "Kafka publish latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	consumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_kafka_consumed_total",
		Help: "Messages handled by the consumer by topic and result",
	}, []string{"topic", "result"})

	handleSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartshop_kafka_handle_seconds",
		Help:    "Handling time per consumed message, retries included",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	deadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartshop_kafka_dead_lettered_total",
		Help: "Messages moved to the dead-letter topic",
	}, []string{"topic"})

	laneDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smartshop_kafka_consumer_lane_depth",
		Help: "Messages waiting in a worker lane after the last hand-off",
	}, []string{"topic"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
