package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/segmentio/kafka-go"
)

// ProducerConfig configures a Producer. Zero fields take the tagged defaults.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int           `default:"-1"`
	Compression  string        `default:"gzip"`
	MaxAttempts  int           `default:"3"`
	BatchSize    int           `default:"100"`
	BatchBytes   int           `default:"1048576"`
	Linger       time.Duration `default:"1s"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	Async        bool
}

var codecs = map[string]kafka.Compression{
	"none":   0,
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes observation and log payloads. Messages are balanced by
// key, so every observation of one product URL lands on the same partition.
type Producer struct {
	w messageWriter
}

// NewProducer builds a producer for cfg.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka producer: brokers are required")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("kafka producer defaults: %w", err)
	}
	codec, ok := codecs[cfg.Compression]
	if !ok {
		return nil, fmt.Errorf("kafka producer: unknown compression %q", cfg.Compression)
	}

	return &Producer{w: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  codec,
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.Linger,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		Async:        cfg.Async,
	}}, nil
}

// Publish writes value to topic under key. Byte slices and strings are sent
// as is, anything else as JSON.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	payload, err := encode(value)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.w.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: payload, Time: start})
	publishSeconds.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	published.WithLabelValues(topic, outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

// PublishMessage publishes payload without a key. It satisfies the log
// collector's publisher.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// Close flushes pending batches and closes the writer.
func (p *Producer) Close() error {
	return p.w.Close()
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode kafka payload: %w", err)
	}
	return b, nil
}
