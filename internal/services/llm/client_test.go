package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.LLM.APIKey = "test-key"
	return NewClient(cfg, WithBaseURL(srv.URL))
}

func collect(deltas <-chan string, errCh <-chan error) ([]string, error) {
	var out []string
	for d := range deltas {
		out = append(out, d)
	}
	select {
	case err := <-errCh:
		return out, err
	default:
		return out, nil
	}
}

func TestTranslateSendsPrompt(t *testing.T) {
	var got models.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Hola mundo \n"}}]}`))
	})

	out, err := c.Translate(context.Background(), "Hello world", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", out)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "to Spanish")
	assert.Equal(t, "Hello world", got.Messages[1].Content)
}

func TestTranslateWithoutKeyIsNotConfigured(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	c := NewClient(cfg)

	_, err = c.Translate(context.Background(), "x", "French")
	assert.ErrorIs(t, err, errs.ErrNotConfigured)
}

func TestStreamForwardsDeltas(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.True(t, req.Stream)
		assert.Equal(t, 2048, req.MaxTokens)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, s := range []string{"Hel", "lo", "!"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", s)
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	deltas, errCh := c.Stream(context.Background(), &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	out, err := collect(deltas, errCh)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", "!"}, out)
}

func TestStreamReportsUpstreamStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	deltas, errCh := c.Stream(context.Background(), &models.ChatCompletionRequest{})
	out, err := collect(deltas, errCh)
	assert.Empty(t, out)

	var ue *errs.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.ErrorIs(t, err, errs.ErrUpstream)
}

func TestStreamStopsOnCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x%d\"}}]}\n\n", i)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	deltas, errCh := c.Stream(ctx, &models.ChatCompletionRequest{})

	first := <-deltas
	assert.Equal(t, "x0", first)
	cancel()

	_, err := collect(deltas, errCh)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamOutlivesRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, s := range []string{"slow", " but", " complete"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", s)
			flusher.Flush()
			time.Sleep(150 * time.Millisecond)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Timeout = 200 * time.Millisecond
	c := NewClient(cfg, WithBaseURL(srv.URL))

	deltas, errCh := c.Stream(context.Background(), &models.ChatCompletionRequest{})
	out, err := collect(deltas, errCh)
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", " but", " complete"}, out)
}

func TestStreamTimesOutWaitingForHeaders(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Timeout = 100 * time.Millisecond
	c := NewClient(cfg, WithBaseURL(srv.URL))

	deltas, errCh := c.Stream(context.Background(), &models.ChatCompletionRequest{})
	out, err := collect(deltas, errCh)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, errs.ErrUpstream)
}
