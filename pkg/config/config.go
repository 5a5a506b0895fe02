package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"smartshop.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Scrape struct {
		ProxyURL   string        `yaml:"proxy_url" default:"https://api.scrape.do/"`
		ProxyToken string        `yaml:"proxy_token"`
		RenderWait int           `yaml:"render_wait_ms" default:"3000"`
		UserAgent  string        `yaml:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		FetchCap   int           `yaml:"fetch_cap" default:"200"`
		PageSize   int           `yaml:"page_size" default:"20"`
		MinPrimary int           `yaml:"min_primary" default:"5"`
	} `yaml:"scrape"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"memory"` // memory, redis, layered
		TTL           time.Duration `yaml:"ttl" default:"300s"`
		MaxEntries    int           `yaml:"max_entries"`
		PruneSchedule string        `yaml:"prune_schedule" default:"@every 5m"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Max     int           `yaml:"max" default:"30"`
		Window  time.Duration `yaml:"window" default:"3600s"`
	} `yaml:"rate_limit"`
	Refresh struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers" default:"2"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
	} `yaml:"refresh"`
	Redis struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"smartshop"`
	} `yaml:"redis"`
	Classifier struct {
		RulesFile     string `yaml:"rules_file"`
		FlagThreshold int    `yaml:"flag_threshold" default:"1"`
	} `yaml:"classifier"`
	Summarizer struct {
		TopSentences int `yaml:"top_sentences" default:"3"`
	} `yaml:"summarizer"`
	LLM struct {
		BaseURL            string        `yaml:"base_url" default:"https://api.groq.com/openai/v1"`
		APIKey             string        `yaml:"api_key"`
		Model              string        `yaml:"model" default:"llama-3.3-70b-versatile"`
		MaxTokens          int           `yaml:"max_tokens" default:"2048"`
		TranslateMaxTokens int           `yaml:"translate_max_tokens" default:"500"`
		Timeout            time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"llm"`
	History struct {
		Backend   string `yaml:"backend" default:"none"` // none, kafka, clickhouse
		Topic     string `yaml:"topic" default:"smartshop.price_observations"`
		Table     string `yaml:"table" default:"price_observations"`
		MaxPoints int    `yaml:"max_points" default:"90"`
		Consume   bool   `yaml:"consume"`
	} `yaml:"history"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"smartshop-history"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"100"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"smartshop"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file. An empty path yields defaults only.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SCRAPEDO_API_TOKEN"); v != "" {
		c.Scrape.ProxyToken = v
	}
	if v := getenv("GROQ_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.max and rate_limit.window must be positive")
	}
	if c.Scrape.FetchCap <= 0 {
		return fmt.Errorf("scrape.fetch_cap must be positive")
	}
	if c.Classifier.FlagThreshold < 1 {
		return fmt.Errorf("classifier.flag_threshold must be at least 1")
	}
	switch c.History.Backend {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("history.backend 'kafka' requires kafka.brokers")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("history.backend 'clickhouse' requires clickhouse.host")
		}
	default:
		return fmt.Errorf("history.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.History.Backend)
	}
	if c.History.Consume && (len(c.Kafka.Brokers) == 0 || c.ClickHouse.Host == "") {
		return fmt.Errorf("history.consume requires kafka.brokers and clickhouse.host")
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.collector requires kafka.brokers")
	}
	if c.Refresh.Enabled && !c.UsesRedis() {
		return fmt.Errorf("refresh.enabled requires cache.backend 'redis' or 'layered'")
	}
	return nil
}

// UsesRedis reports whether the cache backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == "redis" || c.Cache.Backend == "layered"
}

// UsesKafka reports whether any component publishes to or consumes from Kafka.
func (c *Config) UsesKafka() bool {
	return c.History.Backend == "kafka" || c.History.Consume || c.Logging.Collector.Enabled
}

// UsesClickHouse reports whether price history is read from or written to ClickHouse.
func (c *Config) UsesClickHouse() bool {
	return c.ClickHouse.Host != ""
}
