package extractor

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"SmartShop/pkg/util"

	"github.com/PuerkitoBio/goquery"
)

const (
	minReviewLen   = 30
	maxReviewLen   = 1500
	minFallbackLen = 50
	logPreviewLen  = 150
)

// Extraction is the structured content of one product page.
type Extraction struct {
	Reviews     []string
	Title       string
	Description string
	Image       string
	Price       string
	Logs        []string
}

// Extractor turns product page HTML into reviews and product metadata.
type Extractor struct {
	containerSelector string
	bodySelectors     []string
	looseSelectors    []string
	minPrimary        int
	fields            map[Field][]FieldStrategy
}

type Option func(*Extractor)

// WithMinPrimary sets how many DOM-selected reviews suppress the text-block fallback.
func WithMinPrimary(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minPrimary = n
		}
	}
}

// WithFieldStrategies replaces the strategy chain of one metadata field.
func WithFieldStrategies(f Field, chain []FieldStrategy) Option {
	return func(e *Extractor) {
		e.fields[f] = chain
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		containerSelector: `[data-hook="review"]`,
		bodySelectors: []string{
			`[data-hook="review-body"] span`,
			`[data-hook="review-body"]`,
			`.review-text-content`,
			`.review-text`,
		},
		looseSelectors: []string{
			`[itemprop="reviewBody"]`,
			`.review-text-content`,
			`.review-text`,
			`.review-body`,
		},
		minPrimary: 5,
		fields:     DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// textBlock matches long runs of tag-free text that end a sentence. RE2 caps
// repeat counts at 1000, so the upper length bound is left to acceptFallback.
var textBlock = regexp.MustCompile(`>\s*([a-zA-Z][^<>]{60,}?[.!?])\s*<`)

var functionWord = regexp.MustCompile(`(?i)\b(the|and|is|it|this|was|with|for|but|not|my|to|of|very)\b`)

// Extract pulls at most limit reviews and the product metadata out of raw HTML.
// It never fails; unparseable input yields an empty extraction with diagnostics.
func (e *Extractor) Extract(raw string, limit int) Extraction {
	var out Extraction
	logf := func(format string, a ...interface{}) {
		out.Logs = append(out.Logs, fmt.Sprintf(format, a...))
	}

	if strings.TrimSpace(raw) == "" {
		logf("❌ Empty HTML, nothing to extract")
		return out
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		logf("❌ HTML parse failed: %v", err)
		return out
	}

	seen := make(map[string]struct{})
	add := func(txt string) bool {
		if _, ok := seen[txt]; ok {
			return false
		}
		seen[txt] = struct{}{}
		out.Reviews = append(out.Reviews, txt)
		return true
	}

	containers := doc.Find(e.containerSelector)
	logf("🔎 Found review containers with %s: %d", e.containerSelector, containers.Length())

	containers.EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if len(out.Reviews) >= limit {
			return false
		}
		for _, sel := range e.bodySelectors {
			body := c.Find(sel).First()
			if body.Length() == 0 {
				continue
			}
			txt := util.CollapseSpaces(body.Text())
			if acceptPrimary(txt) && add(txt) {
				logf("📝 Review %d: %s...", len(out.Reviews), util.TruncateRunes(txt, logPreviewLen))
			}
			break
		}
		return true
	})

	if containers.Length() == 0 {
		for _, sel := range e.looseSelectors {
			doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if len(out.Reviews) >= limit {
					return false
				}
				txt := util.CollapseSpaces(s.Text())
				if acceptPrimary(txt) && add(txt) {
					logf("📝 Review %d: %s...", len(out.Reviews), util.TruncateRunes(txt, logPreviewLen))
				}
				return true
			})
		}
	}
	logf("✅ Extracted %d reviews from primary selectors", len(out.Reviews))

	if len(out.Reviews) < e.minPrimary && len(out.Reviews) < limit {
		logf("🔄 Falling back to regex extraction (found < %d reviews)", e.minPrimary)
		n := 0
		for _, m := range textBlock.FindAllStringSubmatch(raw, -1) {
			if len(out.Reviews) >= limit {
				break
			}
			txt := util.CollapseSpaces(html.UnescapeString(m[1]))
			if !acceptFallback(txt) || !add(txt) {
				continue
			}
			n++
			logf("📝 Regex Review %d: %s...", n, util.TruncateRunes(txt, logPreviewLen))
		}
		logf("✅ Regex extraction found %d additional reviews", n)
	}

	e.extractMetadata(doc, raw, &out)
	return out
}

func acceptPrimary(txt string) bool {
	n := util.RuneLen(txt)
	return n > minReviewLen && n <= maxReviewLen
}

func acceptFallback(txt string) bool {
	n := util.RuneLen(txt)
	if n <= minFallbackLen || n > maxReviewLen {
		return false
	}
	if strings.Contains(txt, "href=") || strings.Contains(txt, "http") {
		return false
	}
	return upperRatio(txt) < 0.4 && functionWord.MatchString(txt)
}

func upperRatio(s string) float64 {
	var upper, total int
	for _, r := range s {
		total++
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}
