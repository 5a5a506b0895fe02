package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu    sync.Mutex
	calls int
	topic string
	logs  []AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.topic = topic
	p.logs = append(p.logs, payload.([]AggregatedLogEntry)...)
	return nil
}

func TestWriterLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Info("scrape done", String("url", "https://example.com"), Int("reviews", 7), Float64("price", 19.99), Bool("cached", false))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scrape done", line["message"])
	assert.Equal(t, "https://example.com", line["url"])
	assert.Equal(t, float64(7), line["reviews"])
	assert.Equal(t, 19.99, line["price"])
	assert.Equal(t, false, line["cached"])
}

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden too")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info").With(String("component", "fetcher"))

	l.Info("hello")
	assert.Contains(t, buf.String(), `"component":"fetcher"`)
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", Error(errors.New("timeout")))
	}
	assert.Equal(t, 1, l.collector.Pending())

	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Equal(t, 1, pub.calls)
	assert.Equal(t, "logs", pub.topic)
	require.Len(t, pub.logs, 1)
	assert.Equal(t, 3, pub.logs[0].Count)
	assert.Equal(t, "timeout", pub.logs[0].Fields["error"])
}

func TestCollectorFlushesOnThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")
	assert.Equal(t, 0, c.Pending())

	c.Close()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Len(t, pub.logs, 2)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}
