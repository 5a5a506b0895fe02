package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SmartShop/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailed = "I have used this blender every morning for two months and it still crushes ice without any problem."

func newClassifier(t *testing.T, threshold int) *Classifier {
	t.Helper()
	c, err := New(DefaultRules(), threshold)
	require.NoError(t, err)
	return c
}

func TestClassifyGenuineReview(t *testing.T) {
	a := newClassifier(t, 1).Classify([]string{detailed})

	require.Len(t, a.Verdicts, 1)
	assert.False(t, a.Verdicts[0].Fake)
	assert.Empty(t, a.Verdicts[0].Flags)
	assert.Equal(t, 35, a.Verdicts[0].Sentiment)
	assert.Equal(t, 1, a.RealReviews)
	assert.Equal(t, models.SentimentNegative, a.OverallSentiment)
	assert.True(t, strings.HasPrefix(a.DetailedAnalysis, "Review 1: GENUINE. Preview: \"I have used"))
}

func TestShortReviewIsAlwaysFake(t *testing.T) {
	c := newClassifier(t, 1)
	for _, r := range []string{"", "Terrible.", "It broke after one day", "Good value, works fine"} {
		a := c.Classify([]string{r})
		assert.True(t, a.Verdicts[0].Fake, r)
		assert.Contains(t, a.Verdicts[0].Flags, FlagShort, r)
	}
}

func TestSecondIdenticalReviewIsDuplicate(t *testing.T) {
	a := newClassifier(t, 1).Classify([]string{detailed, "  " + detailed, detailed})

	assert.NotContains(t, a.Verdicts[0].Flags, FlagDuplicate)
	assert.Contains(t, a.Verdicts[1].Flags, FlagDuplicate)
	assert.Contains(t, a.Verdicts[2].Flags, FlagDuplicate)
	assert.Equal(t, 1, a.RealReviews)
	assert.Equal(t, 2, a.FakeReviews)
}

func TestFlagsAreCollected(t *testing.T) {
	a := newClassifier(t, 1).Classify([]string{
		"BEST PRODUCT EVER!!! BUY NOW!!!",
		"Great, excellent, perfect and I love it.",
	})

	assert.Equal(t, []string{FlagExclaim, FlagPromo, FlagAllCaps, FlagFewWords}, a.Verdicts[0].Flags)
	assert.Equal(t, []string{FlagGush, FlagFewWords}, a.Verdicts[1].Flags)
	assert.Equal(t, 100, a.Verdicts[1].Sentiment)
	assert.Contains(t, a.DetailedAnalysis, "Review 2: FAKE (overly positive without detail, too few words). Preview:")
}

func TestThresholdControlsVerdict(t *testing.T) {
	review := "This works fine for me, no complaints."

	strict := newClassifier(t, 1).Classify([]string{review})
	assert.Equal(t, []string{FlagFewWords}, strict.Verdicts[0].Flags)
	assert.True(t, strict.Verdicts[0].Fake)

	lenient := newClassifier(t, 2).Classify([]string{review})
	assert.False(t, lenient.Verdicts[0].Fake)
	assert.Equal(t, []string{FlagFewWords}, lenient.Verdicts[0].Flags)
}

func TestCountsInvariant(t *testing.T) {
	c := newClassifier(t, 1)
	batches := [][]string{
		{detailed},
		{"Bad", detailed, detailed, "FIVE STARS FIVE STARS", "Honestly a decent pan that heats evenly, though the handle gets warm after a while."},
		{"a", "b", "c"},
	}
	for _, b := range batches {
		a := c.Classify(b)
		assert.Equal(t, a.TotalReviews, a.RealReviews+a.FakeReviews)
		assert.Equal(t, len(b), a.TotalReviews)
		want := int(float64(a.FakeReviews)/float64(a.TotalReviews)*100 + 0.5)
		assert.Equal(t, want, a.FakePercentage)
		assert.Len(t, strings.Split(a.DetailedAnalysis, "\n"), len(b))
	}
}

func TestClassifyEmptyBatch(t *testing.T) {
	a := newClassifier(t, 1).Classify(nil)

	assert.Zero(t, a.TotalReviews)
	assert.Zero(t, a.FakePercentage)
	assert.Equal(t, 50, a.SentimentScore)
	assert.Equal(t, models.SentimentNeutral, a.OverallSentiment)
	assert.Equal(t, NoReviewsSummary, a.Summary)
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newClassifier(t, 1)
	in := []string{detailed, "Great!", detailed, "Would not buy again, the zipper broke and support ignored my emails for weeks."}
	assert.Equal(t, c.Classify(in), c.Classify(in))
}

func TestSummaryLine(t *testing.T) {
	a := newClassifier(t, 1).Classify([]string{
		"Excellent sound and the battery works for a whole day of listening on the train.",
		"Great!",
	})
	assert.Equal(t, "Found 1 likely genuine reviews and 1 likely fake reviews (50%). Average sentiment: positive (73/100).", a.Summary)
}

func TestLoadRulesOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sentiment_weight: 20\nnegative_words: [meh]\n"), 0o600))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 20, r.SentimentWeight)
	assert.Equal(t, []string{"meh"}, r.NegativeWords)
	assert.Equal(t, DefaultRules().PositiveWords, r.PositiveWords)
	assert.Equal(t, 25, r.MinLength)
}

func TestNewRejectsBadPattern(t *testing.T) {
	r := DefaultRules()
	r.PromoPattern = "(unclosed"
	_, err := New(r, 1)
	assert.Error(t, err)
}
