package classifier

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"SmartShop/internal/domain/models"
	"SmartShop/pkg/util"
)

const (
	FlagShort     = "very short review"
	FlagExclaim   = "excessive exclamation"
	FlagPromo     = "promotional language"
	FlagAllCaps   = "all caps or unnatural casing"
	FlagGush      = "overly positive without detail"
	FlagGeneric   = "generic praise"
	FlagFewWords  = "too few words"
	FlagDuplicate = "duplicate or repeated review"
)

const (
	NoReviewsSummary = "No reviews found on the provided URL and no reviews were supplied."
	NoReviewsDetail  = "Ensure the product page has visible reviews. If reviews are loaded dynamically by JavaScript, " +
		"consider providing the reviews array directly from the client or deploying a lightweight scraper that can execute JavaScript."
)

var wordPattern = regexp.MustCompile(`\w+`)

// Classifier scores reviews with keyword sentiment and marks a review fake
// once it collects threshold suspicion flags. It holds no mutable state.
type Classifier struct {
	rules     Rules
	threshold int
	positive  []string
	negative  []string
	promo     *regexp.Regexp
	allCaps   *regexp.Regexp
	generic   *regexp.Regexp
}

// New compiles rules. A threshold below 1 means 1.
func New(rules Rules, threshold int) (*Classifier, error) {
	if threshold < 1 {
		threshold = 1
	}
	c := &Classifier{
		rules:     rules,
		threshold: threshold,
		positive:  lower(rules.PositiveWords),
		negative:  lower(rules.NegativeWords),
	}

	var err error
	if c.promo, err = compile("promo_pattern", rules.PromoPattern); err != nil {
		return nil, err
	}
	if c.allCaps, err = compile("all_caps_pattern", rules.AllCapsPattern); err != nil {
		return nil, err
	}
	if c.generic, err = compile("generic_praise_pattern", rules.GenericPattern); err != nil {
		return nil, err
	}
	return c, nil
}

func compile(name, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return re, nil
}

func lower(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// Sentiment returns the keyword sentiment of one review in [0, 100] along
// with the positive and negative hit counts.
func (c *Classifier) Sentiment(review string) (score, pos, neg int) {
	l := strings.ToLower(review)
	for _, w := range c.positive {
		if strings.Contains(l, w) {
			pos++
		}
	}
	for _, w := range c.negative {
		if strings.Contains(l, w) {
			neg++
		}
	}
	score = int(util.Clamp(float64(50+(pos-neg)*c.rules.SentimentWeight), 0, 100))
	return score, pos, neg
}

// Classify analyzes a batch. The duplicate check spans the batch, so the
// result depends on review order but nothing else.
func (c *Classifier) Classify(reviews []string) models.ReviewAnalysis {
	total := len(reviews)
	if total == 0 {
		return models.ReviewAnalysis{
			OverallSentiment: models.SentimentNeutral,
			SentimentScore:   50,
			Summary:          NoReviewsSummary,
			DetailedAnalysis: NoReviewsDetail,
		}
	}

	seen := make(map[string]struct{}, total)
	verdicts := make([]models.ReviewVerdict, 0, total)
	lines := make([]string, 0, total)
	fake, sentimentSum := 0, 0

	for i, raw := range reviews {
		r := strings.TrimSpace(raw)
		score, pos, neg := c.Sentiment(r)
		sentimentSum += score

		flags := c.flags(r, pos, neg)
		key := util.TruncateRunes(util.CollapseSpaces(r), c.rules.DuplicateKeyRunes)
		if _, dup := seen[key]; dup {
			flags = append(flags, FlagDuplicate)
		}
		seen[key] = struct{}{}

		v := models.ReviewVerdict{
			Index:     i + 1,
			Fake:      len(flags) >= c.threshold,
			Flags:     flags,
			Sentiment: score,
			Preview:   util.TruncateRunes(r, c.rules.PreviewLen),
		}
		if v.Fake {
			fake++
		}
		verdicts = append(verdicts, v)
		lines = append(lines, verdictLine(v))
	}

	genuine := total - fake
	pct := int(math.Round(float64(fake) / float64(total) * 100))
	avg := int(math.Round(float64(sentimentSum) / float64(total)))
	overall := models.SentimentNeutral
	switch {
	case avg >= c.rules.PositiveAt:
		overall = models.SentimentPositive
	case avg <= c.rules.NegativeAt:
		overall = models.SentimentNegative
	}

	return models.ReviewAnalysis{
		TotalReviews:     total,
		RealReviews:      genuine,
		FakeReviews:      fake,
		FakePercentage:   pct,
		OverallSentiment: overall,
		SentimentScore:   avg,
		Summary: fmt.Sprintf("Found %d likely genuine reviews and %d likely fake reviews (%d%%). Average sentiment: %s (%d/100).",
			genuine, fake, pct, overall, avg),
		DetailedAnalysis: strings.Join(lines, "\n"),
		Verdicts:         verdicts,
	}
}

func (c *Classifier) flags(r string, pos, neg int) []string {
	flags := []string{}
	n := util.RuneLen(r)
	if n < c.rules.MinLength {
		flags = append(flags, FlagShort)
	}
	if c.rules.MaxExclamations > 0 && strings.Count(r, "!") >= c.rules.MaxExclamations {
		flags = append(flags, FlagExclaim)
	}
	if c.promo != nil && c.promo.MatchString(r) {
		flags = append(flags, FlagPromo)
	}
	if c.allCaps != nil && n < c.rules.AllCapsMaxLength && c.allCaps.MatchString(r) {
		flags = append(flags, FlagAllCaps)
	}
	if pos >= c.rules.GushMinPositive && neg == 0 && n < c.rules.GushMaxLength {
		flags = append(flags, FlagGush)
	}
	if c.generic != nil && n < c.rules.GenericMaxLength && c.generic.MatchString(r) {
		flags = append(flags, FlagGeneric)
	}
	if len(wordPattern.FindAllString(r, -1)) < c.rules.MinWords {
		flags = append(flags, FlagFewWords)
	}
	return flags
}

func verdictLine(v models.ReviewVerdict) string {
	if v.Fake {
		return fmt.Sprintf("Review %d: FAKE (%s). Preview: \"%s\"", v.Index, strings.Join(v.Flags, ", "), v.Preview)
	}
	return fmt.Sprintf("Review %d: GENUINE. Preview: \"%s\"", v.Index, v.Preview)
}
