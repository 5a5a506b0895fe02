// Command scrape fetches one product page and prints the extracted reviews,
// product metadata and fetch diagnostics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SmartShop/internal/domain/service"
	"SmartShop/internal/services/extractor"
	"SmartShop/internal/services/fetcher"
	"SmartShop/internal/services/scraper"
	"SmartShop/pkg/config"
	applogger "SmartShop/pkg/logger"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type options struct {
	Config   string `short:"c" long:"config" env:"SMARTSHOP_CONFIG" description:"config file path (defaults only when empty)"`
	Browser  bool   `short:"b" long:"browser" description:"render the page in headless Chrome"`
	Chrome   string `long:"chrome" env:"CHROME_PATH" description:"Chrome/Chromium binary for --browser"`
	Limit    int    `short:"n" long:"limit" default:"200" description:"maximum reviews to extract"`
	Timeout  string `long:"timeout" default:"90s" description:"headless browser timeout"`
	JSON     bool   `long:"json" description:"print the result as JSON"`
	LogLevel string `long:"log-level" default:"warn" description:"log level for stderr"`
	Args     struct {
		URL string `positional-arg-name:"URL" required:"true"`
	} `positional-args:"true"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(opts.Config)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	l := applogger.NewWriter(os.Stderr, opts.LogLevel)

	var f service.Fetcher = fetcher.NewHTTPFetcher(cfg, l)
	if opts.Browser {
		timeout, err := time.ParseDuration(opts.Timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --timeout: %v\n", err)
			os.Exit(2)
		}
		bopts := []fetcher.BrowserOption{fetcher.WithBrowserTimeout(timeout)}
		if opts.Chrome != "" {
			bopts = append(bopts, fetcher.WithExecPath(opts.Chrome))
		}
		f = fetcher.NewBrowserFetcher(cfg.Scrape.UserAgent, l, bopts...)
	}
	s := scraper.New(f, extractor.New(extractor.WithMinPrimary(cfg.Scrape.MinPrimary)), nil, l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := s.Scrape(ctx, opts.Args.URL, opts.Limit)

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		return
	}

	for _, line := range res.Logs {
		fmt.Fprintln(os.Stderr, line)
	}
	fmt.Printf("Title:       %s\n", res.ProductTitle)
	fmt.Printf("Price:       %s\n", res.ProductPrice)
	fmt.Printf("Image:       %s\n", res.ProductImage)
	fmt.Printf("Description: %s\n", res.ProductDescription)
	fmt.Printf("Reviews:     %d (via %s)\n\n", len(res.Reviews), res.FetchMethod)
	for i, r := range res.Reviews {
		fmt.Printf("%3d. %s\n\n", i+1, r)
	}
	if len(res.Reviews) == 0 {
		os.Exit(1)
	}
}
