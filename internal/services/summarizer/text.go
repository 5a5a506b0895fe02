package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var languageHints = []struct {
	code    string
	pattern *regexp.Regexp
}{
	{"es", regexp.MustCompile(`\b(el|la|los|las|que|para|por|con)\b`)},
	{"fr", regexp.MustCompile(`\b(le|la|les|que|pour|avec|pas)\b`)},
	{"de", regexp.MustCompile(`\b(der|die|das|und|nicht|mit|ist)\b`)},
}

// DetectLanguage guesses es, fr or de from common function words; anything
// else is en.
func DetectLanguage(sample string) string {
	s := strings.ToLower(sample)
	for _, h := range languageHints {
		if h.pattern.MatchString(s) {
			return h.code
		}
	}
	return "en"
}

// SplitSentences cuts text after '.', '!' or '?' when whitespace follows.
func SplitSentences(text string) []string {
	var out []string
	rs := []rune(text)
	start := 0
	for i := 1; i < len(rs); i++ {
		if !unicode.IsSpace(rs[i]) || !isTerminal(rs[i-1]) {
			continue
		}
		if s := strings.TrimSpace(string(rs[start:i])); s != "" {
			out = append(out, s)
		}
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		start = i
	}
	if start < len(rs) {
		if s := strings.TrimSpace(string(rs[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// tokenize lowercases s and keeps letters a-z, digits and Latin-1/Latin
// Extended-A letters. ascii restricts the alphabet to a-z and digits.
func tokenize(s string, ascii bool) []string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case !ascii && r >= 0x00C0 && r <= 0x017F:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// ExtractiveSummary picks the k sentences with the highest length-normalized
// TF-IDF score and joins them in their original order.
func ExtractiveSummary(reviews []string, k int) string {
	var sentences []string
	for _, r := range reviews {
		sentences = append(sentences, SplitSentences(r)...)
	}
	if len(sentences) == 0 || k <= 0 {
		return ""
	}

	tokens := make([][]string, len(sentences))
	tf := make(map[string]int)
	df := make(map[string]int)
	for i, s := range sentences {
		tokens[i] = tokenize(s, false)
		seen := make(map[string]bool, len(tokens[i]))
		for _, w := range tokens[i] {
			tf[w]++
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	n := float64(len(sentences))
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, words := range tokens {
		var sum float64
		for _, w := range words {
			sum += float64(tf[w]) * math.Log(1+n/float64(1+df[w]))
		}
		scores[i] = scored{idx: i, score: sum / math.Max(1, float64(len(words)))}
	}

	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })
	if k > len(scores) {
		k = len(scores)
	}
	top := scores[:k]
	sort.Slice(top, func(a, b int) bool { return top[a].idx < top[b].idx })

	picked := make([]string, k)
	for i, s := range top {
		picked[i] = sentences[s.idx]
	}
	return strings.Join(picked, " ")
}
