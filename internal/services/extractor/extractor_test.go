package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amazonPage(bodies ...string) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Acme Blender</title></head><body><div id="cm-cr-dp-review-list">`)
	for _, body := range bodies {
		fmt.Fprintf(&b, `<div data-hook="review"><span data-hook="review-title">Title</span>`+
			`<span data-hook="review-body"><span>%s</span></span></div>`, body)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func review(n int) string {
	return fmt.Sprintf("Review number %d: the blender handles frozen fruit without any trouble at all.", n)
}

func TestExtractPrimarySelectors(t *testing.T) {
	page := amazonPage(
		review(1), review(2), review(3),
		"too short",
		review(4), review(2),
		"  Spread   over\n several    lines, the motor &amp; the jar both feel sturdy.  ",
		review(5),
	)

	out := New().Extract(page, 20)
	require.Len(t, out.Reviews, 6)
	assert.Equal(t, review(1), out.Reviews[0])
	assert.Equal(t, "Spread over several lines, the motor & the jar both feel sturdy.", out.Reviews[4])

	logs := strings.Join(out.Logs, "\n")
	assert.Contains(t, logs, `🔎 Found review containers with [data-hook="review"]: 8`)
	assert.Contains(t, logs, "✅ Extracted 6 reviews from primary selectors")
	assert.NotContains(t, logs, "🔄 Falling back")
	assert.Equal(t, "Acme Blender", out.Title)
}

func TestExtractStopsAtLimit(t *testing.T) {
	out := New().Extract(amazonPage(review(1), review(2), review(3), review(4)), 2)
	assert.Equal(t, []string{review(1), review(2)}, out.Reviews)
}

func TestExtractFallsBackToTextBlocks(t *testing.T) {
	page := `<html><body>
<p>I bought this kettle for the office and it boils water quickly without much noise at all.</p>
<p>SHIPPING INFORMATION AND RETURNS POLICY FOR ALL ORDERS PLACED IN THE STORE.</p>
<p>Read more about this kettle on https://example.com where the full manual is hosted online.</p>
<p>Short line here.</p>
<div>The handle stays cool and the lid opens with one hand, which is great for me.</div>
</body></html>`

	out := New().Extract(page, 20)
	assert.Equal(t, []string{
		"I bought this kettle for the office and it boils water quickly without much noise at all.",
		"The handle stays cool and the lid opens with one hand, which is great for me.",
	}, out.Reviews)

	logs := strings.Join(out.Logs, "\n")
	assert.Contains(t, logs, "🔄 Falling back to regex extraction (found < 5 reviews)")
	assert.Contains(t, logs, "📝 Regex Review 1: I bought this kettle")
	assert.Contains(t, logs, "✅ Regex extraction found 2 additional reviews")
}

func TestExtractFallbackSkipsPrimaryDuplicates(t *testing.T) {
	page := amazonPage(review(1)) + "<p>" + review(1) + "</p>"
	out := New().Extract(page, 20)
	assert.Equal(t, []string{review(1)}, out.Reviews)
}

func TestExtractMetadataPrefersMetaTags(t *testing.T) {
	page := `<html><head>
<title>Amazon.com: Acme Blender</title>
<meta property="og:title" content="Acme Blender 3000">
<meta name="description" content="A powerful   blender.">
<meta property="og:image" content="https://img.example/blender.jpg">
</head><body>
<span id="productTitle">  Acme Blender (page title)  </span>
<span class="a-price"><span class="a-offscreen">$89.99</span></span>
</body></html>`

	out := New().Extract(page, 20)
	assert.Equal(t, "Acme Blender 3000", out.Title)
	assert.Equal(t, "A powerful blender.", out.Description)
	assert.Equal(t, "https://img.example/blender.jpg", out.Image)
	assert.Equal(t, "$89.99", out.Price)
	assert.Contains(t, out.Logs, "🏷️ Product price from .a-price .a-offscreen: $89.99")
}

func TestExtractMetadataFallsBackToJSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
 {"@type":"BreadcrumbList"},
 {"@type":["Product"],"name":"Trail Shoe","image":[{"url":"https://img.example/shoe.png"}],
  "offers":[{"@type":"Offer","price":129.5,"priceCurrency":"USD"}]}]}</script>
</head><body></body></html>`

	out := New().Extract(page, 20)
	assert.Equal(t, "Trail Shoe", out.Title)
	assert.Equal(t, "https://img.example/shoe.png", out.Image)
	assert.Equal(t, "USD 129.5", out.Price)
}

func TestExtractCustomStrategyChain(t *testing.T) {
	e := New(WithFieldStrategies(FieldTitle, []FieldStrategy{
		{Name: "h1", Extract: func(p *Page) string { return p.Doc.Find("h1").Text() }},
	}))
	out := e.Extract(`<html><head><title>ignored</title></head><body><h1>Headline</h1></body></html>`, 5)
	assert.Equal(t, "Headline", out.Title)
}

func TestExtractEmptyHTML(t *testing.T) {
	out := New().Extract("   ", 20)
	assert.Empty(t, out.Reviews)
	assert.Equal(t, []string{"❌ Empty HTML, nothing to extract"}, out.Logs)
}

func TestExtractFallbackBoundsBlockLength(t *testing.T) {
	sentence := "the motor and the jar feel solid and it was quiet for me, "
	long := "I " + strings.Repeat(sentence, 20) + "done."
	tooLong := "I " + strings.Repeat(sentence, 30) + "done."
	require.Greater(t, len(long), 1000)
	require.Greater(t, len(tooLong), 1500)

	page := "<html><body><p>" + long + "</p><p>" + tooLong + "</p></body></html>"
	out := New().Extract(page, 20)
	assert.Equal(t, []string{strings.TrimSpace(long)}, out.Reviews)
}
