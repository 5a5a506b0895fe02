package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	applogger "SmartShop/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is a list-backed work queue with delayed retries kept in a
// sorted set and a dead-letter list for messages that exhaust them.
type RedisQueue struct {
	log       *applogger.Logger
	config    Config
	client    *redis.Client
	jobs      map[string]Job
	keyPrefix string

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets the prefix of the queue, retry and dead-letter keys.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		if prefix != "" {
			r.keyPrefix = prefix
		}
	}
}

// WithJobs registers jobs at construction time.
func WithJobs(jobs ...Job) RedisQueueOption {
	return func(r *RedisQueue) {
		for _, j := range jobs {
			r.jobs[j.Type()] = j
		}
	}
}

// NewRedisQueue creates a queue that both enqueues and consumes.
func NewRedisQueue(client *redis.Client, l *applogger.Logger, cfg Config, opts ...RedisQueueOption) *RedisQueue {
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	if cfg.RetryPoll <= 0 {
		cfg.RetryPoll = 5 * time.Second
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = time.Second
	}

	r := &RedisQueue{
		log:       l.With(applogger.String("component", "queue")),
		config:    cfg,
		client:    client,
		jobs:      make(map[string]Job),
		keyPrefix: "smartshop:queue",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start pings Redis and launches the workers and the retry mover.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("queue already running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.running = true
	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.retryMover()

	r.log.Info("redis queue started",
		applogger.Int("workers", r.config.Workers),
		applogger.Int("jobs", len(r.jobs)),
		applogger.String("prefix", r.keyPrefix))
	return nil
}

// Stop cancels in-flight work and waits for the workers to exit.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.log.Warn("timeout waiting for queue workers", applogger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		r.log.Info("redis queue stopped")
		return nil
	}
}

// Enqueue pushes a message for a registered job type.
func (r *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.RLock()
	running := r.running
	_, known := r.jobs[msgType]
	r.mu.RUnlock()

	if !running {
		return fmt.Errorf("queue not running")
	}
	if !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(Message{
		ID:         uuid.NewString(),
		Type:       msgType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := r.client.LPush(ctx, r.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Len returns the number of messages waiting to run.
func (r *RedisQueue) Len(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.queueKey()).Result()
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	r.log.Debug("queue worker started", applogger.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.log.Debug("queue worker stopped", applogger.Int("worker_id", id))
			return
		default:
			r.popAndProcess()
		}
	}
}

func (r *RedisQueue) popAndProcess() {
	res, err := r.client.BRPop(r.ctx, r.config.PopTimeout, r.queueKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		r.log.Error("brpop error", applogger.Error(err))
		select {
		case <-r.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}
	if len(res) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		r.log.Error("unmarshal message", applogger.Error(err))
		return
	}
	r.process(msg)
}

func (r *RedisQueue) process(msg Message) {
	r.mu.RLock()
	job, ok := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		r.log.Error("no job found", applogger.String("type", msg.Type), applogger.String("id", msg.ID))
		r.deadLetter(msg)
		return
	}

	start := time.Now()
	err := job.Handle(r.ctx, msg.Payload)
	if err == nil {
		r.log.Debug("message processed",
			applogger.String("id", msg.ID),
			applogger.String("job", job.Name()),
			applogger.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return
	}
	if errors.Is(err, context.Canceled) {
		r.log.Warn("message cancelled", applogger.String("id", msg.ID), applogger.String("job", job.Name()))
		return
	}

	r.log.Error("message processing error",
		applogger.String("id", msg.ID),
		applogger.String("job", job.Name()),
		applogger.Int("attempt", msg.Attempts+1),
		applogger.Error(err))

	if msg.Attempts >= r.config.RetryLimit {
		r.log.Error("max retries reached", applogger.String("id", msg.ID), applogger.String("job", job.Name()))
		r.deadLetter(msg)
		return
	}
	msg.Attempts++
	r.scheduleRetry(msg, time.Now().Add(r.config.RetryDelay))
}

func (r *RedisQueue) scheduleRetry(msg Message, at time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Error("marshal retry", applogger.Error(err))
		return
	}
	if err := r.client.ZAdd(context.Background(), r.retryKey(), redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: data,
	}).Err(); err != nil {
		r.log.Error("zadd retry", applogger.Error(err))
	}
}

func (r *RedisQueue) deadLetter(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Error("marshal dlq", applogger.Error(err))
		return
	}
	if err := r.client.LPush(context.Background(), r.deadLetterKey(), data).Err(); err != nil {
		r.log.Error("lpush dlq", applogger.Error(err))
	}
}

func (r *RedisQueue) retryMover() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.config.RetryPoll)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.moveDueRetries()
		}
	}
}

// moveDueRetries pushes every retry whose time has come back onto the queue.
func (r *RedisQueue) moveDueRetries() {
	due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.log.Error("fetch retry messages", applogger.Error(err))
		}
		return
	}

	for _, data := range due {
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, r.retryKey(), data)
		pipe.LPush(r.ctx, r.queueKey(), data)
		if _, err := pipe.Exec(r.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.log.Error("move retry to queue", applogger.Error(err))
		}
	}
}

func (r *RedisQueue) queueKey() string      { return r.keyPrefix + ":messages" }
func (r *RedisQueue) retryKey() string      { return r.keyPrefix + ":retry" }
func (r *RedisQueue) deadLetterKey() string { return r.keyPrefix + ":dlq" }
