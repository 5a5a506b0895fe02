package summarizer

import (
	"context"
	"errors"
	"testing"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	calls  int
	target string
	out    string
	err    error
}

func (f *fakeTranslator) Translate(_ context.Context, _ string, target string) (string, error) {
	f.calls++
	f.target = target
	return f.out, f.err
}

func termCounts(ps []models.Phrase) map[string]int {
	m := make(map[string]int, len(ps))
	for _, p := range ps {
		m[p.Term] = p.Count
	}
	return m
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "es", DetectLanguage("El producto es muy bueno para el precio"))
	assert.Equal(t, "fr", DetectLanguage("Ce n'est pas mal pour le prix"))
	assert.Equal(t, "de", DetectLanguage("Das Produkt ist gut"))
	assert.Equal(t, "en", DetectLanguage("Works well and looks nice"))
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"Great battery life.", "Battery life is great!", "Really?Yes ok"},
		SplitSentences("  Great battery life. Battery life is great!\n\n Really?Yes ok"))
	assert.Empty(t, SplitSentences("   "))
}

func TestMineProsConsFindsRepeatedPhrases(t *testing.T) {
	pros, cons := MineProsCons([]string{"Great battery life.", "Battery life is great and screen is great."})

	got := termCounts(pros)
	assert.GreaterOrEqual(t, got["great"], 2)
	assert.GreaterOrEqual(t, got["battery life"], 2)
	assert.NotContains(t, got, "battery")
	assert.Empty(t, cons)
	assert.Equal(t, "great", pros[0].Term)
}

func TestMineProsConsNegativeReview(t *testing.T) {
	pros, cons := MineProsCons([]string{"The strap broke and I had to return it."})

	assert.Equal(t, []string{"broke had return", "strap broke had"}, terms(cons))
	assert.Equal(t, terms(cons), terms(pros))
	assert.Equal(t, []string{"The strap broke and I had to return it."}, cons[0].Examples)
}

func terms(ps []models.Phrase) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Term
	}
	return out
}

func TestExtractiveSummaryKeepsOriginalOrder(t *testing.T) {
	reviews := []string{"Alpha one. Beta two three.", "Gamma four. Delta five six seven."}
	all := []string{"Alpha one.", "Beta two three.", "Gamma four.", "Delta five six seven."}

	got := SplitSentences(ExtractiveSummary(reviews, 3))
	require.Len(t, got, 3)
	last := -1
	for _, s := range got {
		idx := indexOf(all, s)
		require.GreaterOrEqual(t, idx, 0, s)
		assert.Greater(t, idx, last)
		last = idx
	}

	assert.Equal(t, "Alpha one. Beta two three.", ExtractiveSummary(reviews[:1], 3))
	assert.Equal(t, "", ExtractiveSummary([]string{"  "}, 3))
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

func TestSummarizeTranslatesToOtherLanguage(t *testing.T) {
	tr := &fakeTranslator{out: "Gran batería."}
	s := New(nil, WithTranslator(tr))

	res, err := s.Summarize(context.Background(), []string{"Great battery life."}, "es")
	require.NoError(t, err)
	assert.Equal(t, "en", res.LanguageDetected)
	assert.Equal(t, "Great battery life.", res.Summary)
	require.NotNil(t, res.TranslatedSummary)
	assert.Equal(t, "Gran batería.", *res.TranslatedSummary)
	assert.Equal(t, "Spanish", tr.target)
	assert.Equal(t, 1, res.InputCount)
}

func TestSummarizeSkipsTranslationForSameLanguage(t *testing.T) {
	tr := &fakeTranslator{out: "x"}
	res, err := New(nil, WithTranslator(tr)).Summarize(context.Background(), []string{"Great battery life."}, "en")
	require.NoError(t, err)
	assert.Nil(t, res.TranslatedSummary)
	assert.Zero(t, tr.calls)
}

func TestSummarizeTranslationFailureDegrades(t *testing.T) {
	for _, err := range []error{errors.New("boom"), errs.ErrNotConfigured} {
		tr := &fakeTranslator{err: err}
		res, sErr := New(nil, WithTranslator(tr)).Summarize(context.Background(), []string{"Great battery life."}, "fr")
		require.NoError(t, sErr)
		assert.Nil(t, res.TranslatedSummary)
		assert.Equal(t, "French", tr.target)
	}
}

func TestSummarizeRequiresReviews(t *testing.T) {
	_, err := New(nil).Summarize(context.Background(), nil, "")
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reviews", ve.Field)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	in := []string{
		"Great battery life. The screen is bright!",
		"Battery life is great and screen is great.",
		"Too expensive for what it is. The case feels poor.",
	}
	s := New(nil)
	a, err := s.Summarize(context.Background(), in, "")
	require.NoError(t, err)
	b, err := s.Summarize(context.Background(), in, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
