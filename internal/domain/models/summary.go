package models

// Phrase is a mined pro or con candidate.
type Phrase struct {
	Term     string   `json:"term"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

type SummaryResult struct {
	LanguageDetected  string   `json:"languageDetected"`
	Summary           string   `json:"summary"`
	TranslatedSummary *string  `json:"translatedSummary"`
	Pros              []Phrase `json:"pros"`
	Cons              []Phrase `json:"cons"`
	InputCount        int      `json:"inputCount"`
}
