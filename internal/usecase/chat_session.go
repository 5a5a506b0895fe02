package usecase

import (
	"context"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/service"
	"SmartShop/internal/services/chat"
	applogger "SmartShop/pkg/logger"
)

// ChatSession grounds a conversation in an optional product page and opens
// a streaming completion for it.
type ChatSession struct {
	products  *ProductLookup
	streamer  service.ChatStreamer
	model     string
	maxTokens int
	log       *applogger.Logger
}

func NewChatSession(
	products *ProductLookup,
	streamer service.ChatStreamer,
	model string,
	maxTokens int,
	log *applogger.Logger,
) *ChatSession {
	return &ChatSession{
		products:  products,
		streamer:  streamer,
		model:     model,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Start returns the delta stream. Cancelling ctx stops the upstream request.
func (s *ChatSession) Start(ctx context.Context, req *models.ChatRequest) (<-chan string, <-chan error, error) {
	if len(req.Messages) == 0 {
		return nil, nil, errs.Validation("messages", "Messages array is required")
	}

	var product *models.ScrapeResult
	if req.ProductURL != "" && s.products != nil {
		product = s.products.Lookup(ctx, req.ProductURL)
	}

	plan := chat.Build(req.Messages, req.TargetLang, product)
	s.log.Debug("chat plan built",
		applogger.Int("messages", len(plan.Messages)),
		applogger.Bool("grounded", plan.Grounded))

	deltas, errCh := s.streamer.Stream(ctx, chat.Request(plan, s.model, s.maxTokens))
	return deltas, errCh, nil
}
