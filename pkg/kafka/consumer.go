package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	applogger "SmartShop/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// ConsumerConfig configures a Consumer. Zero fields take the tagged defaults.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string        `default:"smartshop-history"`
	Workers    int           `default:"1"`
	BufferSize int           `default:"10"`
	RetryMax   int           `default:"3"`
	BackoffMin time.Duration `default:"50ms"`
	BackoffMax time.Duration `default:"2s"`
	DLQTopic   string
	MinBytes   int `default:"1"`
	MaxBytes   int `default:"10000000"`
}

type delivery struct {
	reader *kafka.Reader
	msg    kafka.Message
}

// Consumer reads the registered topics in a consumer group and feeds a fixed
// set of worker lanes. A partition always maps to the same lane, so its
// messages are handled and committed in offset order.
type Consumer struct {
	cfg      ConsumerConfig
	log      *applogger.Logger
	hook     ConsumerHook
	handlers map[string]MessageHandler
	dlq      messageWriter

	readers  []*kafka.Reader
	lanes    []chan delivery
	cancel   context.CancelFunc
	readWG   sync.WaitGroup
	workWG   sync.WaitGroup
	stopOnce sync.Once
}

// NewConsumer builds a consumer for cfg. A nil logger discards output.
func NewConsumer(cfg ConsumerConfig, l *applogger.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka consumer: brokers are required")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("kafka consumer defaults: %w", err)
	}
	if l == nil {
		l = applogger.Nop()
	}

	c := &Consumer{
		cfg:      cfg,
		log:      l,
		hook:     NoopHook{},
		handlers: make(map[string]MessageHandler),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.Hash{}}
	}
	return c, nil
}

// SetHook installs h around every handler call. Nil keeps the current hook.
func (c *Consumer) SetHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// RegisterHandler registers handler for its topic. The first registration
// for a topic wins.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("kafka consumer: handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start opens one reader per registered topic and starts the workers.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.lanes = make([]chan delivery, c.cfg.Workers)
	for i := range c.lanes {
		c.lanes[i] = make(chan delivery, c.cfg.BufferSize)
		c.workWG.Add(1)
		go c.work(ctx, c.lanes[i])
	}

	for topic := range c.handlers {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.readers = append(c.readers, r)
		c.readWG.Add(1)
		go c.read(ctx, r)
		c.log.Info("kafka consumer: reading topic",
			applogger.String("topic", topic),
			applogger.String("group", c.cfg.GroupID))
	}
	c.log.Info("kafka consumer: started", applogger.Int("workers", c.cfg.Workers))
	return nil
}

// Stop stops fetching, drains the lanes and closes the readers. It returns
// ctx's error if the workers do not finish in time.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
			// readers must be gone before the lanes close
			if stopErr = waitGroup(ctx, &c.readWG); stopErr == nil {
				for _, lane := range c.lanes {
					close(lane)
				}
				stopErr = waitGroup(ctx, &c.workWG)
			}
		}
		for _, r := range c.readers {
			if err := r.Close(); err != nil {
				c.log.Warn("kafka consumer: close reader", applogger.String("topic", r.Config().Topic), applogger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Warn("kafka consumer: close dlq writer", applogger.Error(err))
			}
		}
		if stopErr == nil {
			c.log.Info("kafka consumer: stopped")
		}
	})
	return stopErr
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("kafka consumer stop: %w", ctx.Err())
	}
}

func (c *Consumer) read(ctx context.Context, r *kafka.Reader) {
	defer c.readWG.Done()
	topic := r.Config().Topic

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka consumer: fetch", applogger.String("topic", topic), applogger.Error(err))
			select {
			case <-time.After(c.cfg.BackoffMax):
				continue
			case <-ctx.Done():
				return
			}
		}

		lane := c.lanes[laneFor(msg.Partition, len(c.lanes))]
		select {
		case lane <- delivery{reader: r, msg: msg}:
			laneDepth.WithLabelValues(topic).Set(float64(len(lane)))
		case <-ctx.Done():
			return
		}
	}
}

func laneFor(partition, lanes int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % lanes
}

func (c *Consumer) work(ctx context.Context, lane <-chan delivery) {
	defer c.workWG.Done()
	for d := range lane {
		if c.process(ctx, d.msg) {
			c.commit(d.reader, d.msg)
		}
	}
}

// process runs the handler for msg and reports whether its offset may be
// committed: after success, or once the message sits in the dead-letter topic.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) (commit bool) {
	h, ok := c.handlers[msg.Topic]
	if !ok {
		return true
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("kafka consumer: handler panic", applogger.String("topic", msg.Topic), applogger.Any("panic", r))
			consumed.WithLabelValues(msg.Topic, "panic").Inc()
			commit = c.deadLetter(msg, fmt.Errorf("handler panic: %v", r))
		}
		handleSeconds.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
	}()

	attempts, err := c.handle(ctx, h, msg)
	if err == nil {
		consumed.WithLabelValues(msg.Topic, "ok").Inc()
		return true
	}
	if ctx.Err() != nil {
		// left uncommitted for the next group member
		return false
	}

	c.hook.OnError(context.Background(), msg.Topic, msg, msg.Value, err)
	c.log.Error("kafka consumer: handle message",
		applogger.String("topic", msg.Topic),
		applogger.Int("partition", msg.Partition),
		applogger.Int64("offset", msg.Offset),
		applogger.Int("attempts", attempts),
		applogger.Error(err))
	consumed.WithLabelValues(msg.Topic, "error").Inc()
	return c.deadLetter(msg, err)
}

func (c *Consumer) handle(ctx context.Context, h MessageHandler, msg kafka.Message) (int, error) {
	for attempt := 1; ; attempt++ {
		hctx, hmsg, data, err := c.hook.BeforeHandle(context.Background(), msg.Topic, msg, msg.Value)
		if err != nil {
			return attempt, err
		}
		err = h.Handle(hctx, data)
		c.hook.AfterHandle(hctx, msg.Topic, hmsg, data, err)
		if err == nil || attempt > c.cfg.RetryMax {
			return attempt, err
		}

		c.hook.OnError(hctx, msg.Topic, hmsg, data, err)
		select {
		case <-time.After(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-ctx.Done():
			return attempt, err
		}
	}
}

func (c *Consumer) deadLetter(msg kafka.Message, cause error) bool {
	if c.dlq == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(msg.Topic)},
			{Key: "source_partition", Value: []byte(strconv.Itoa(msg.Partition))},
			{Key: "source_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("kafka consumer: write dlq", applogger.String("topic", c.cfg.DLQTopic), applogger.Error(err))
		return false
	}
	deadLettered.WithLabelValues(msg.Topic).Inc()
	return true
}

func (c *Consumer) commit(r *kafka.Reader, msg kafka.Message) {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, msg)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt))
	}
	c.log.Warn("kafka consumer: commit offset",
		applogger.String("topic", msg.Topic),
		applogger.Int64("offset", msg.Offset),
		applogger.Error(err))
}

// backoff doubles from lo per attempt, capped at hi, minus up to half as jitter.
func backoff(lo, hi time.Duration, attempt int) time.Duration {
	if lo <= 0 {
		lo = 50 * time.Millisecond
	}
	if hi < lo {
		hi = lo
	}
	d := hi
	if attempt < 32 && lo<<uint(attempt-1) < hi {
		d = lo << uint(attempt-1)
	}
	return d - time.Duration(rand.Int63n(int64(d)/2+1))
}
