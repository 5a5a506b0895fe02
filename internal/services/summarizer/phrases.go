package summarizer

import (
	"sort"
	"strings"

	"SmartShop/internal/domain/models"
)

const (
	maxCandidates = 15
	maxPerSide    = 8
	backfill      = 5
	maxExamples   = 3
	maxGram       = 3
)

var stopwords = map[string]bool{
	"the": true, "and": true, "a": true, "an": true, "of": true, "to": true,
	"for": true, "with": true, "is": true, "it": true, "this": true, "that": true,
	"on": true, "in": true, "was": true, "are": true, "be": true, "as": true,
	"its": true, "i": true, "my": true, "we": true, "you": true,
}

var (
	positiveSeeds = []string{"good", "great", "excellent", "love", "recommend", "works", "happy", "easy", "comfortable", "perfect", "amazing", "best"}
	negativeSeeds = []string{"bad", "terrible", "awful", "worst", "disappoint", "poor", "broken", "hate", "problem", "return", "expensive", "disappointed"}
)

type candidate struct {
	term     string
	count    int
	pos      int
	neg      int
	examples []string
}

func containsAny(s string, seeds []string) bool {
	for _, seed := range seeds {
		if strings.Contains(s, seed) {
			return true
		}
	}
	return false
}

// MineProsCons counts 1-3 word phrases per sentence and tags each with how
// often its review mentions a positive or negative seed word.
func MineProsCons(reviews []string) (pros, cons []models.Phrase) {
	byTerm := make(map[string]*candidate)
	var order []*candidate

	for _, review := range reviews {
		lowered := strings.ToLower(review)
		isPos := containsAny(lowered, positiveSeeds)
		isNeg := containsAny(lowered, negativeSeeds)

		for _, sent := range SplitSentences(review) {
			var toks []string
			for _, w := range tokenize(sent, true) {
				if !stopwords[w] {
					toks = append(toks, w)
				}
			}
			for i := range toks {
				for l := 1; l <= maxGram && i+l <= len(toks); l++ {
					words := toks[i : i+l]
					if hasShortWord(words) {
						continue
					}
					term := strings.Join(words, " ")
					c, ok := byTerm[term]
					if !ok {
						c = &candidate{term: term}
						byTerm[term] = c
						order = append(order, c)
					}
					c.count++
					if isPos {
						c.pos++
					}
					if isNeg {
						c.neg++
					}
					if len(c.examples) < maxExamples {
						c.examples = append(c.examples, sent)
					}
				}
			}
		}
	}

	chosen := collapse(order)

	pros = []models.Phrase{}
	cons = []models.Phrase{}
	for _, c := range chosen {
		switch {
		case c.pos >= c.neg && c.pos > 0 && len(pros) < maxPerSide:
			pros = append(pros, c.phrase())
		case c.neg > c.pos && len(cons) < maxPerSide:
			cons = append(cons, c.phrase())
		}
	}
	if len(pros) == 0 {
		for i := 0; i < len(chosen) && i < backfill; i++ {
			pros = append(pros, chosen[i].phrase())
		}
	}
	return pros, cons
}

func hasShortWord(words []string) bool {
	for _, w := range words {
		if len(w) <= 1 {
			return true
		}
	}
	return false
}

// collapse ranks candidates by count then phrase length, first-seen order
// breaking ties, and drops a phrase when a longer phrase containing it is at
// least as frequent.
func collapse(order []*candidate) []*candidate {
	items := append([]*candidate(nil), order...)
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].count != items[b].count {
			return items[a].count > items[b].count
		}
		return len(items[a].term) > len(items[b].term)
	})

	var chosen []*candidate
	for _, it := range items {
		if subsumed(it, items) {
			continue
		}
		chosen = append(chosen, it)
		if len(chosen) >= maxCandidates {
			break
		}
	}
	return chosen
}

// subsumed expects items sorted by count descending.
func subsumed(it *candidate, items []*candidate) bool {
	for _, other := range items {
		if other.count < it.count {
			break
		}
		if len(other.term) > len(it.term) && strings.Contains(other.term, it.term) {
			return true
		}
	}
	return false
}

func (c *candidate) phrase() models.Phrase {
	return models.Phrase{
		Term:     c.term,
		Count:    c.count,
		Examples: append([]string(nil), c.examples...),
	}
}
