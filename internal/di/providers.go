package di

import (
	"context"
	"fmt"
	"time"

	"SmartShop/internal/domain/repository"
	"SmartShop/internal/domain/service"
	"SmartShop/internal/handler/api"
	"SmartShop/internal/jobs"
	mid "SmartShop/internal/middleware"
	internalrepo "SmartShop/internal/repository"
	"SmartShop/internal/service/cache"
	"SmartShop/internal/service/ratelimit"
	"SmartShop/internal/services/classifier"
	"SmartShop/internal/services/extractor"
	"SmartShop/internal/services/fetcher"
	"SmartShop/internal/services/llm"
	"SmartShop/internal/services/scraper"
	"SmartShop/internal/services/summarizer"
	"SmartShop/internal/usecase"
	pkgcache "SmartShop/pkg/cache"
	pkgch "SmartShop/pkg/clickhouse"
	"SmartShop/pkg/config"
	xhttp "SmartShop/pkg/http"
	pkgkafka "SmartShop/pkg/kafka"
	applogger "SmartShop/pkg/logger"
	"SmartShop/pkg/metrics"
	"SmartShop/pkg/queue"
	"SmartShop/pkg/server"

	"github.com/labstack/echo/v4"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when nothing publishes.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.UsesKafka() {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		Compression:  cfg.Kafka.Compression,
		MaxAttempts:  cfg.Kafka.Producer.MaxAttempts,
		BatchSize:    cfg.Kafka.Producer.BatchSize,
		BatchBytes:   cfg.Kafka.Producer.BatchBytes,
		Linger:       cfg.Kafka.Producer.Linger,
		WriteTimeout: cfg.Kafka.Producer.WriteTimeout,
		ReadTimeout:  cfg.Kafka.Producer.ReadTimeout,
		Async:        cfg.Kafka.Producer.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the app logger and attaches the Kafka error collector
// when enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideRedisCache connects to Redis when the cache backend needs it.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.UsesRedis() {
		return nil, nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideKVService picks the key-value backend behind the cache and limiter stores.
func ProvideKVService(cfg *config.Config, rc *pkgcache.RedisCache) pkgcache.Service {
	switch cfg.Cache.Backend {
	case "redis":
		return rc
	case "layered":
		return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(1000))
	default:
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MaxEntries))
	}
}

// ProvideReviewCache creates the scrape result cache.
func ProvideReviewCache(kv pkgcache.Service, cfg *config.Config) *cache.ReviewCache {
	return cache.NewReviewCache(internalrepo.NewKVScrapeStore(kv, cfg.Cache.TTL), cfg.Cache.TTL)
}

// ProvideLimiter creates the per-client sliding-window limiter.
func ProvideLimiter(kv pkgcache.Service, cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(internalrepo.NewKVRateLimitStore(kv, cfg.RateLimit.Window), cfg.RateLimit.Max, cfg.RateLimit.Window)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when no host is set.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.UsesClickHouse() {
		return nil, nil
	}
	c := cfg.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.Database,
		User:             c.User,
		Password:         c.Password,
		UseHTTP:          c.UseHTTP,
		AsyncInsert:      c.AsyncInsert,
		WaitForAsync:     c.WaitForAsync,
		DialTimeout:      c.DialTimeout,
		ReadTimeout:      c.ReadTimeout,
		MaxExecutionTime: c.MaxExecutionTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePriceHistory creates the ClickHouse price history and ensures its
// table exists. It is nil without ClickHouse.
func ProvidePriceHistory(ch *pkgch.Client, cfg *config.Config) (repository.PriceHistory, error) {
	if ch == nil {
		return nil, nil
	}
	history, err := internalrepo.NewClickHousePriceHistory(ch, cfg.ClickHouse.Database+"."+cfg.History.Table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := history.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return history, nil
}

// ProvideObservationPublisher creates the Kafka publisher when a producer exists.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ObservationPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaObservationPublisher(producer, cfg.History.Topic)
}

// ProvidePriceRecorder creates the price observation recorder.
func ProvidePriceRecorder(
	pub repository.ObservationPublisher,
	history repository.PriceHistory,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.PriceRecorder {
	return usecase.NewPriceRecorder(pub, history, metrics, cfg.History.Backend)
}

// ProvideScraper assembles fetcher and extractor.
func ProvideScraper(cfg *config.Config, metrics repository.Metrics, l *applogger.Logger) service.Scraper {
	return scraper.New(
		fetcher.NewHTTPFetcher(cfg, l),
		extractor.New(extractor.WithMinPrimary(cfg.Scrape.MinPrimary)),
		metrics,
		l,
	)
}

// ProvideClassifier loads the rule set, falling back to built-in defaults.
func ProvideClassifier(cfg *config.Config) (*classifier.Classifier, error) {
	rules := classifier.DefaultRules()
	if cfg.Classifier.RulesFile != "" {
		r, err := classifier.LoadRules(cfg.Classifier.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = r
	}
	return classifier.New(rules, cfg.Classifier.FlagThreshold)
}

// ProvideLLMClient creates the chat completions client.
func ProvideLLMClient(cfg *config.Config, metrics repository.Metrics) *llm.Client {
	return llm.NewClient(cfg, llm.WithMetrics(metrics))
}

// ProvideSummarizer creates the summarizer; translation is enabled only with
// an API key.
func ProvideSummarizer(cfg *config.Config, client *llm.Client, metrics repository.Metrics, l *applogger.Logger) *summarizer.Summarizer {
	opts := []summarizer.Option{
		summarizer.WithTopSentences(cfg.Summarizer.TopSentences),
		summarizer.WithMetrics(metrics),
	}
	if client.Configured() {
		opts = append(opts, summarizer.WithTranslator(client))
	}
	return summarizer.New(l, opts...)
}

func ProvideProductLookup(
	s service.Scraper,
	c *cache.ReviewCache,
	recorder *usecase.PriceRecorder,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ProductLookup {
	return usecase.NewProductLookup(s, c, recorder, metrics, l, cfg.Scrape.FetchCap)
}

func ProvideReviewAnalyzer(
	lookup *usecase.ProductLookup,
	cls *classifier.Classifier,
	metrics repository.Metrics,
	l *applogger.Logger,
) *usecase.ReviewAnalyzer {
	return usecase.NewReviewAnalyzer(lookup, cls, metrics, l)
}

func ProvidePriceForecaster(history repository.PriceHistory, metrics repository.Metrics, cfg *config.Config) *usecase.PriceForecaster {
	return usecase.NewPriceForecaster(history, cfg.History.MaxPoints, metrics)
}

func ProvideChatSession(lookup *usecase.ProductLookup, client *llm.Client, l *applogger.Logger) *usecase.ChatSession {
	return usecase.NewChatSession(lookup, client, client.Model(), client.MaxTokens(), l)
}

func ProvidePriceRefreshJob(lookup *usecase.ProductLookup, metrics repository.Metrics, l *applogger.Logger) *usecase.PriceRefreshJob {
	return usecase.NewPriceRefreshJob(lookup, metrics, l)
}

// ProvideRefreshQueue creates the Redis work queue for background price
// refreshes, or nil when refreshes are disabled.
func ProvideRefreshQueue(cfg *config.Config, rc *pkgcache.RedisCache, job *usecase.PriceRefreshJob, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Refresh.Enabled || rc == nil {
		return nil
	}
	return queue.NewRedisQueue(rc.Client(), l, queue.Config{
		Workers:    cfg.Refresh.Workers,
		RetryLimit: cfg.Refresh.RetryLimit,
		RetryDelay: cfg.Refresh.RetryDelay,
	}, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"), queue.WithJobs(job))
}

// ProvidePriceRefresher is nil without a queue.
func ProvidePriceRefresher(q *queue.RedisQueue) *usecase.PriceRefresher {
	if q == nil {
		return nil
	}
	return usecase.NewPriceRefresher(q, q.Len)
}

// ProvideHandlers creates every HTTP handler. Scraping and chat routes sit
// behind the rate limiter when it is enabled.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	metrics repository.Metrics,
	limiter *ratelimit.Limiter,
	analyzer *usecase.ReviewAnalyzer,
	sum *summarizer.Summarizer,
	forecaster *usecase.PriceForecaster,
	chat *usecase.ChatSession,
	refresher *usecase.PriceRefresher,
	rc *pkgcache.RedisCache,
	history repository.PriceHistory,
) []xhttp.Handler {
	var limit []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		limit = append(limit, mid.RateLimit(limiter, metrics, l))
	}

	checks := map[string]api.HealthCheck{}
	if rc != nil {
		checks["redis"] = rc.Health
	}
	if history != nil {
		checks["clickhouse"] = history.Health
	}

	handlers := []xhttp.Handler{
		api.NewReviewsHandler(l, analyzer, sum, forecaster, limit...),
		api.NewChatHandler(l, chat, limit...),
		api.NewHealthHandler(l, checks),
	}
	if refresher != nil {
		handlers = append(handlers, api.NewRefreshHandler(l, refresher, limit...))
	}
	return handlers
}

// ProvidePruneJob schedules cache and limiter pruning.
func ProvidePruneJob(
	cfg *config.Config,
	c *cache.ReviewCache,
	limiter *ratelimit.Limiter,
	metrics repository.Metrics,
	l *applogger.Logger,
) (*jobs.PruneJob, error) {
	return jobs.NewPruneJob(cfg.Cache.PruneSchedule, map[string]jobs.Pruner{
		"review_cache": c,
		"rate_limit":   limiter,
	}, metrics, l)
}

// ProvideKafkaConsumer creates a Kafka consumer when history consumption is on.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.History.Consume {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    kc.GroupID,
		Workers:    kc.Workers,
		BufferSize: kc.BufferSize,
		RetryMax:   kc.RetryMax,
		BackoffMin: kc.BackoffMin,
		BackoffMax: kc.BackoffMax,
		DLQTopic:   kc.DLQTopic,
		MinBytes:   kc.MinBytes,
		MaxBytes:   kc.MaxBytes,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideObservationHandler stores consumed observations into ClickHouse.
func ProvideObservationHandler(history repository.PriceHistory, metrics repository.Metrics, cfg *config.Config) *usecase.ObservationHandler {
	return usecase.NewObservationHandler(cfg.History.Topic, history, metrics)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handlers []xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh *usecase.ObservationHandler,
	job *jobs.PruneJob,
	q *queue.RedisQueue,
	kv pkgcache.Service,
	rc *pkgcache.RedisCache,
	ch *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	var handler pkgkafka.MessageHandler
	if consumer != nil {
		consumer.SetHook(pkgkafka.LogRetries(l))
		handler = kh
	}

	var worker server.Worker
	if q != nil {
		worker = q
	}

	closers := []server.Closer{{Name: "logger", Close: func() error { l.RemoveCollector(); return nil }}}
	if mc, ok := kv.(*pkgcache.MemoryCache); ok {
		closers = append(closers, server.Closer{Name: "memory cache", Close: mc.Close})
	}
	if lc, ok := kv.(*pkgcache.LayeredCache); ok {
		closers = append(closers, server.Closer{Name: "layered cache", Close: lc.Close})
	} else if rc != nil {
		closers = append(closers, server.Closer{Name: "redis", Close: rc.Close})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	if producer != nil {
		// shared by the observation publisher and the log collector
		closers = append(closers, server.Closer{Name: "kafka producer", Close: producer.Close})
	}

	return server.New(cfg, l, handlers, consumer, handler, job, worker, closers...)
}
