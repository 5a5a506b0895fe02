package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the tunable part of the classifier: lexicons, patterns and limits.
type Rules struct {
	PositiveWords   []string `yaml:"positive_words"`
	NegativeWords   []string `yaml:"negative_words"`
	SentimentWeight int      `yaml:"sentiment_weight"`

	MinLength         int    `yaml:"min_length"`
	MaxExclamations   int    `yaml:"max_exclamations"`
	PromoPattern      string `yaml:"promo_pattern"`
	AllCapsPattern    string `yaml:"all_caps_pattern"`
	AllCapsMaxLength  int    `yaml:"all_caps_max_length"`
	GushMinPositive   int    `yaml:"gush_min_positive"`
	GushMaxLength     int    `yaml:"gush_max_length"`
	GenericPattern    string `yaml:"generic_praise_pattern"`
	GenericMaxLength  int    `yaml:"generic_praise_max_length"`
	MinWords          int    `yaml:"min_words"`
	DuplicateKeyRunes int    `yaml:"duplicate_key_runes"`

	PositiveAt int `yaml:"positive_at"`
	NegativeAt int `yaml:"negative_at"`
	PreviewLen int `yaml:"preview_len"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		PositiveWords: []string{
			"good", "great", "excellent", "amazing", "perfect", "love", "loved",
			"best", "fantastic", "recommend", "works", "happy", "satisfied",
		},
		NegativeWords: []string{
			"bad", "terrible", "awful", "worst", "disappoint", "poor", "broken",
			"hate", "problem", "doesn't work", "not work", "return",
		},
		SentimentWeight: 15,

		MinLength:         25,
		MaxExclamations:   3,
		PromoPattern:      `(?i)\b(best product ever|buy now|five stars|5 stars|best product|highly recommend)\b`,
		AllCapsPattern:    `^[A-Z\s\W]{10,}$`,
		AllCapsMaxLength:  200,
		GushMinPositive:   3,
		GushMaxLength:     60,
		GenericPattern:    `(?i)^\W*(great|good|nice|excellent|awesome|perfect|amazing|love it|loved it|best|five stars)\W*$`,
		GenericMaxLength:  50,
		MinWords:          10,
		DuplicateKeyRunes: 120,

		PositiveAt: 60,
		NegativeAt: 40,
		PreviewLen: 100,
	}
}

// LoadRules overlays a YAML file on DefaultRules. Keys missing from the file
// keep their defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read rules: %w", err)
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("parse rules: %w", err)
	}
	return r, nil
}
