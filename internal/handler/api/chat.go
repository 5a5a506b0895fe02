package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/service/metrics"
	"SmartShop/internal/usecase"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ChatHandler streams grounded chat completions over SSE and WebSocket.
type ChatHandler struct {
	logger   *applogger.Logger
	session  *usecase.ChatSession
	limit    []echo.MiddlewareFunc
	upgrader websocket.Upgrader
}

func NewChatHandler(logger *applogger.Logger, session *usecase.ChatSession, limit ...echo.MiddlewareFunc) *ChatHandler {
	metrics.Register()
	return &ChatHandler{
		logger:  logger,
		session: session,
		limit:   limit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/chat", h.Chat, h.limit...)
	g.GET("/chat/ws", h.ChatWS, h.limit...)
}

type sseDelta struct {
	Content string `json:"content"`
}

type sseChoice struct {
	Delta sseDelta `json:"delta"`
}

type sseFrame struct {
	Choices []sseChoice `json:"choices"`
}

type wsFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// streamErr reads the stream error after deltas has closed.
func streamErr(errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Chat answers with text/event-stream. Failures before the first delta are
// reported as a JSON error; later ones end the stream early.
func (h *ChatHandler) Chat(c echo.Context) error {
	const endpoint = "chat"
	defer observe(endpoint, time.Now())

	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return badRequest(c, endpoint, verr)
	}

	ctx := c.Request().Context()
	deltas, errCh, err := h.session.Start(ctx, req)
	if err != nil {
		return fail(c, h.logger, endpoint, err)
	}

	first, ok := <-deltas
	if !ok {
		if err := streamErr(errCh); err != nil {
			return fail(c, h.logger, endpoint, err)
		}
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	write := func(content string) error {
		b, err := json.Marshal(sseFrame{Choices: []sseChoice{{Delta: sseDelta{Content: content}}}})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	if ok {
		if err := write(first); err != nil {
			return h.abandon(deltas, err)
		}
		for d := range deltas {
			if err := write(d); err != nil {
				return h.abandon(deltas, err)
			}
		}
		if err := streamErr(errCh); err != nil && !errors.Is(err, context.Canceled) {
			metrics.EndpointErrors.WithLabelValues(endpoint, "ERR_STREAM").Inc()
			h.logger.Warn("chat stream ended early", applogger.Error(err))
		}
	}

	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	w.Flush()
	return nil
}

// abandon drains the stream after the client went away. The upstream
// request stops once the request context is cancelled.
func (h *ChatHandler) abandon(deltas <-chan string, err error) error {
	h.logger.Debug("chat client gone", applogger.Error(err))
	for range deltas {
	}
	return nil
}

// ChatWS reads one chat request frame, then sends delta frames and a final
// done frame. Closing the socket cancels the upstream completion.
func (h *ChatHandler) ChatWS(c echo.Context) error {
	const endpoint = "chat_ws"
	defer observe(endpoint, time.Now())

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "ERR_UPGRADE").Inc()
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	var req models.ChatRequest
	if err := conn.ReadJSON(&req); err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint, "ERR_BAD_REQUEST").Inc()
		_ = conn.WriteJSON(wsFrame{Type: "error", Error: "invalid chat request: " + err.Error()})
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go func() {
		// any read error, including a close frame, ends the session
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	deltas, errCh, err := h.session.Start(ctx, &req)
	if err != nil {
		appErr := toAppError(err)
		metrics.EndpointErrors.WithLabelValues(endpoint, appErr.Code).Inc()
		_ = conn.WriteJSON(wsFrame{Type: "error", Error: appErr.Message})
		return nil
	}

	for d := range deltas {
		if err := conn.WriteJSON(wsFrame{Type: "delta", Content: d}); err != nil {
			cancel()
			return h.abandon(deltas, err)
		}
	}
	if err := streamErr(errCh); err != nil {
		if !errors.Is(err, context.Canceled) {
			appErr := toAppError(err)
			metrics.EndpointErrors.WithLabelValues(endpoint, appErr.Code).Inc()
			h.logger.Warn("chat stream failed", applogger.Error(err))
			_ = conn.WriteJSON(wsFrame{Type: "error", Error: appErr.Message})
		}
		return nil
	}

	_ = conn.WriteJSON(wsFrame{Type: "done"})
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}
