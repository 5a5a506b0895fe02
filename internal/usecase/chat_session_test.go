package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/internal/services/chat"
	applogger "SmartShop/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSessionGroundsInProduct(t *testing.T) {
	f := newLookup(t, scrapedPage, nil)
	st := &fakeStreamer{deltas: []string{"It ", "is fine."}}
	s := NewChatSession(f.lookup, st, "test-model", 1024, applogger.Nop())

	deltas, _, err := s.Start(context.Background(), &models.ChatRequest{
		Messages:   []models.ChatMessage{{Role: models.RoleUser, Content: "Is it loud?"}},
		ProductURL: productURL,
	})
	require.NoError(t, err)

	var out []string
	for d := range deltas {
		out = append(out, d)
	}
	assert.Equal(t, "It is fine.", strings.Join(out, ""))

	require.NotNil(t, st.got)
	assert.Equal(t, "test-model", st.got.Model)
	assert.Equal(t, 1024, st.got.MaxTokens)
	assert.True(t, st.got.Stream)
	assert.Equal(t, chat.GroundedTemperature, st.got.Temperature)
	assert.True(t, chat.HasProductContext(st.got.Messages))
	assert.Equal(t, 1, f.scraper.calls)
}

func TestChatSessionWithoutProduct(t *testing.T) {
	st := &fakeStreamer{}
	s := NewChatSession(nil, st, "m", 10, applogger.Nop())

	_, _, err := s.Start(context.Background(), &models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, chat.DefaultTemperature, st.got.Temperature)
	assert.False(t, chat.HasProductContext(st.got.Messages))
}

func TestChatSessionRequiresMessages(t *testing.T) {
	s := NewChatSession(nil, &fakeStreamer{}, "m", 10, applogger.Nop())
	_, _, err := s.Start(context.Background(), &models.ChatRequest{})
	var ve *errs.ValidationError
	assert.True(t, errors.As(err, &ve))
}
