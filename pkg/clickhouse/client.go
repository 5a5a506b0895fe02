package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/creasty/defaults"
)

// Config configures a Client. Zero fields take the tagged defaults.
type Config struct {
	Host             string
	Port             int    `default:"9000"`
	Database         string `default:"default"`
	User             string `default:"default"`
	Password         string
	UseHTTP          bool
	AsyncInsert      bool
	WaitForAsync     bool
	MaxOpenConns     int           `default:"10"`
	MaxIdleConns     int           `default:"5"`
	ConnMaxLifetime  time.Duration `default:"5m"`
	DialTimeout      time.Duration `default:"5s"`
	ReadTimeout      time.Duration `default:"10s"`
	MaxExecutionTime time.Duration
}

// options maps cfg onto the driver. Pool limits are left to *sql.DB, since
// OpenDB refuses them.
func (cfg Config) options() *ch.Options {
	proto := ch.Native
	if cfg.UseHTTP {
		proto = ch.HTTP
	}

	settings := ch.Settings{}
	if cfg.MaxExecutionTime > 0 {
		settings["max_execution_time"] = int(cfg.MaxExecutionTime.Seconds())
	}
	if cfg.AsyncInsert {
		settings["async_insert"] = 1
		wait := 0
		if cfg.WaitForAsync {
			wait = 1
		}
		settings["wait_for_async_insert"] = wait
	}

	return &ch.Options{
		Protocol: proto,
		Addr:     []string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))},
		Auth: ch.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
		Settings:    settings,
	}
}

// Client is the price history's ClickHouse pool.
type Client struct {
	db *sql.DB
}

// NewClient opens a pool for cfg and pings it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("clickhouse: host is required")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("clickhouse defaults: %w", err)
	}

	db := ch.OpenDB(cfg.options())
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping %s: %w", cfg.Host, err)
	}
	return &Client{db: db}, nil
}

// DB returns the pool for queries.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// InsertBatch sends rows through one prepared statement inside a transaction,
// which the driver flushes to the server as a single block.
func (c *Client) InsertBatch(ctx context.Context, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append batch row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
