package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
	pkgkafka "SmartShop/pkg/kafka"
)

// chClient is the part of pkg/clickhouse.Client the history needs.
type chClient interface {
	DB() *sql.DB
	InitSchema(ctx context.Context, stmts []string) error
	InsertBatch(ctx context.Context, query string, rows [][]any) error
	Health(ctx context.Context) error
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ClickHousePriceHistory implements PriceHistory for ClickHouse.
type ClickHousePriceHistory struct {
	ch    chClient
	table string
}

// NewClickHousePriceHistory creates ClickHouse price history storage.
func NewClickHousePriceHistory(ch chClient, table string) (*ClickHousePriceHistory, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return &ClickHousePriceHistory{ch: ch, table: table}, nil
}

var _ repository.PriceHistory = (*ClickHousePriceHistory)(nil)

func (s *ClickHousePriceHistory) schema() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event_id String,
	url String,
	title String,
	price Float64,
	raw String,
	observed_at DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree
ORDER BY (url, observed_at, event_id)`, s.table)}
}

func (s *ClickHousePriceHistory) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (event_id, url, title, price, raw, observed_at) VALUES (?, ?, ?, ?, ?, ?)", s.table)
}

func (s *ClickHousePriceHistory) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, s.schema())
}

func (s *ClickHousePriceHistory) Store(ctx context.Context, o *models.PriceObservation) error {
	return s.StoreBatch(ctx, []*models.PriceObservation{o})
}

func (s *ClickHousePriceHistory) StoreBatch(ctx context.Context, obs []*models.PriceObservation) error {
	rows := make([][]any, 0, len(obs))
	for _, o := range obs {
		if o == nil || o.URL == "" || o.Price <= 0 {
			continue
		}
		rows = append(rows, observationRow(o))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.ch.InsertBatch(ctx, s.insertQuery(), rows); err != nil {
		return fmt.Errorf("store price observations: %w", err)
	}
	return nil
}

func observationRow(o *models.PriceObservation) []any {
	return []any{o.EventID, o.URL, o.Title, o.Price, o.Raw, o.ObservedAt.UTC()}
}

func (s *ClickHousePriceHistory) Recent(ctx context.Context, url string, limit int) ([]*models.PriceObservation, error) {
	q := fmt.Sprintf("SELECT event_id, url, title, price, raw, observed_at FROM %s FINAL WHERE url = ? ORDER BY observed_at DESC LIMIT ?", s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q, url, limit)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var out []*models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.EventID, &o.URL, &o.Title, &o.Price, &o.Raw, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan price history: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	ascending(out)
	return out, nil
}

func ascending(obs []*models.PriceObservation) {
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].ObservedAt.Before(obs[j].ObservedAt) })
}

func (s *ClickHousePriceHistory) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHousePriceHistory) Close() error {
	return nil // client owned by the app
}

// KafkaObservationPublisher implements ObservationPublisher for Kafka.
type KafkaObservationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaObservationPublisher creates Kafka publisher. Messages are keyed by
// URL so one product's observations stay ordered within a partition.
func NewKafkaObservationPublisher(producer *pkgkafka.Producer, topic string) *KafkaObservationPublisher {
	return &KafkaObservationPublisher{producer: producer, topic: topic}
}

var _ repository.ObservationPublisher = (*KafkaObservationPublisher)(nil)

func (p *KafkaObservationPublisher) Publish(ctx context.Context, o *models.PriceObservation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.URL), o)
}

func (p *KafkaObservationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
