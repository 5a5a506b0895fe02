package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
	domsvc "SmartShop/internal/domain/service"
	"SmartShop/pkg/config"
	xhttp "SmartShop/pkg/http"
)

// Client talks to an OpenAI-compatible chat completions API (Groq by default).
type Client struct {
	baseURL            string
	apiKey             string
	model              string
	maxTokens          int
	translateMaxTokens int
	client             *xhttp.Client
	streamClient       *xhttp.Client
	metrics            repository.Metrics
}

type Option func(*Client)

// WithMetrics records request latency per operation.
func WithMetrics(m repository.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewClient builds a client with timeout, model and credentials from config.
// Streams are bounded by the timeout only until response headers arrive; the
// body is read for as long as ctx allows.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	c := &Client{
		baseURL:            strings.TrimRight(cfg.LLM.BaseURL, "/"),
		apiKey:             cfg.LLM.APIKey,
		model:              cfg.LLM.Model,
		maxTokens:          cfg.LLM.MaxTokens,
		translateMaxTokens: cfg.LLM.TranslateMaxTokens,
		client:             xhttp.NewClient(xhttp.WithTimeout(timeout)),
		streamClient:       xhttp.NewClient(xhttp.WithTimeout(0), xhttp.WithTransport(tr)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ domsvc.Translator   = (*Client)(nil)
	_ domsvc.ChatStreamer = (*Client)(nil)
)

func (c *Client) Model() string  { return c.model }
func (c *Client) MaxTokens() int { return c.maxTokens }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordUpstream(op, time.Since(start), err)
	}
}

// PostJSON posts the given payload to path under baseURL and decodes JSON into dest.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("llm api key: %w", errs.ErrNotConfigured)
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + path,
		Headers: c.headers(),
		Body:    payload,
	}, dest)
	if err != nil {
		return upstreamError(fmt.Errorf("post %s: %w", path, err))
	}
	return nil
}

// PostJSONWithRetry posts JSON with up to attempts tries, retrying only
// transport errors and 5xx/429 responses.
func (c *Client) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return c.PostJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = c.PostJSON(ctx, path, payload, dest)
		if err == nil || !retryable(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, errs.ErrNotConfigured) {
		return false
	}
	var ue *errs.UpstreamError
	if errors.As(err, &ue) && ue.Status > 0 {
		return ue.Status >= 500 || ue.Status == http.StatusTooManyRequests
	}
	return true
}

func upstreamError(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &errs.UpstreamError{Status: se.Code, Err: err}
	}
	return &errs.UpstreamError{Err: err}
}

type completionResponse struct {
	Choices []struct {
		Message models.ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete runs a non-streaming completion and returns the first choice.
func (c *Client) Complete(ctx context.Context, req *models.ChatCompletionRequest) (string, error) {
	start := time.Now()
	body := *req
	body.Stream = false
	if body.Model == "" {
		body.Model = c.model
	}

	var resp completionResponse
	err := c.PostJSONWithRetry(ctx, "/chat/completions", &body, &resp, 2)
	c.observe("complete", start, err)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &errs.UpstreamError{Err: errors.New("empty choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Translate asks the model for a plain translation of text.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return c.Complete(ctx, &models.ChatCompletionRequest{
		Model: c.model,
		Messages: []models.ChatMessage{
			{
				Role: models.RoleSystem,
				Content: fmt.Sprintf("You are a professional translator. Translate the following product review summary to %s. "+
					"Preserve the meaning and tone. Only return the translation, nothing else.", targetLanguage),
			},
			{Role: models.RoleUser, Content: text},
		},
		Temperature: 0.3,
		MaxTokens:   c.translateMaxTokens,
	})
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream opens a streaming completion. Deltas are delivered on an unbuffered
// channel so the reader paces the upstream; the error channel carries at most
// one error and is filled before deltas is closed.
func (c *Client) Stream(ctx context.Context, req *models.ChatCompletionRequest) (<-chan string, <-chan error) {
	deltas := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(deltas)
		start := time.Now()
		err := c.stream(ctx, req, deltas)
		c.observe("stream", start, err)
		if err != nil {
			errCh <- err
		}
	}()

	return deltas, errCh
}

func (c *Client) stream(ctx context.Context, req *models.ChatCompletionRequest, out chan<- string) error {
	if !c.Configured() {
		return fmt.Errorf("llm api key: %w", errs.ErrNotConfigured)
	}
	body := *req
	body.Stream = true
	if body.Model == "" {
		body.Model = c.model
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.maxTokens
	}

	headers := c.headers()
	headers["Accept"] = "text/event-stream"
	resp, err := c.streamClient.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/chat/completions",
		Headers: headers,
		Body:    &body,
	})
	if err != nil {
		return &errs.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &errs.UpstreamError{Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(msg)))}
	}

	return readEvents(ctx, resp.Body, out)
}

// readEvents parses "data:" lines of an SSE body and forwards content deltas.
func readEvents(ctx context.Context, r io.Reader, out chan<- string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue // keep-alives and provider extensions
		}
		for _, ch := range chunk.Choices {
			if ch.Delta.Content == "" {
				continue
			}
			select {
			case out <- ch.Delta.Content:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &errs.UpstreamError{Err: fmt.Errorf("read stream: %w", err)}
	}
	return nil
}
