package chat

import (
	"fmt"
	"strings"

	"SmartShop/internal/domain/models"
	"SmartShop/pkg/util"
)

const (
	// ProductMarker tags a message that carries scraped product data.
	ProductMarker = "VERIFIED PRODUCT DATA"
	rule          = "━━━"

	GroundedTemperature = 0.1
	DefaultTemperature  = 0.7

	contextReviews   = 10
	contextReviewLen = 300
)

const assistantPrompt = `You are a helpful shopping assistant AI for SmartShop. You help users:
- Analyze products from URLs (Amazon, eBay, etc.)
- Compare prices and features
- Summarize product reviews
- Provide buying recommendations
- Answer questions about products

Be conversational, helpful, and provide detailed product insights. Respond in %s.`

// HasProductContext reports whether any message embeds product data.
func HasProductContext(msgs []models.ChatMessage) bool {
	for _, m := range msgs {
		if strings.Contains(m.Content, ProductMarker) || strings.Contains(m.Content, rule) {
			return true
		}
	}
	return false
}

// Build assembles the outbound conversation. A scraped product is injected as
// a leading system message unless the caller already grounded the
// conversation. Grounded conversations are forwarded as they are; all others
// get the assistant prompt in place of any caller system messages.
func Build(msgs []models.ChatMessage, targetLang string, product *models.ScrapeResult) models.ChatPlan {
	out := make([]models.ChatMessage, 0, len(msgs)+1)
	if product != nil && !HasProductContext(msgs) {
		out = append(out, models.ChatMessage{Role: models.RoleSystem, Content: ProductContext(product, targetLang)})
	}
	for _, m := range msgs {
		out = append(out, models.ChatMessage{Role: m.Role, Content: m.Content})
	}

	if HasProductContext(out) {
		return models.ChatPlan{Messages: out, Grounded: true, Temperature: GroundedTemperature}
	}

	plan := models.ChatPlan{Temperature: DefaultTemperature}
	plan.Messages = append(plan.Messages, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(assistantPrompt, responseLanguage(targetLang)),
	})
	for _, m := range out {
		if m.Role != models.RoleSystem {
			plan.Messages = append(plan.Messages, m)
		}
	}
	return plan
}

func responseLanguage(targetLang string) string {
	if targetLang == "" {
		return "English"
	}
	return util.LanguageName(targetLang)
}

// ProductContext renders a scrape as a grounding block for the model.
func ProductContext(p *models.ScrapeResult, targetLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", rule, ProductMarker, rule)
	field := func(name, v string) {
		if v == "" {
			v = "not available"
		}
		fmt.Fprintf(&b, "%s: %s\n", name, v)
	}
	field("Title", p.ProductTitle)
	field("Price", p.ProductPrice)
	field("Description", util.TruncateRunes(p.ProductDescription, 1000))
	field("Image", p.ProductImage)

	fmt.Fprintf(&b, "Reviews (%d):\n", len(p.Reviews))
	for i, r := range p.Reviews {
		if i == contextReviews {
			fmt.Fprintf(&b, "... %d more\n", len(p.Reviews)-contextReviews)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, util.TruncateRunes(r, contextReviewLen))
	}
	b.WriteString(rule + rule + rule + "\n")
	fmt.Fprintf(&b, "Answer questions about this product using only the data above. "+
		"If something is not listed, say so instead of guessing. Respond in %s.", responseLanguage(targetLang))
	return b.String()
}

// Request turns a plan into a streaming provider request.
func Request(plan models.ChatPlan, model string, maxTokens int) *models.ChatCompletionRequest {
	return &models.ChatCompletionRequest{
		Model:       model,
		Messages:    plan.Messages,
		Temperature: plan.Temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	}
}
