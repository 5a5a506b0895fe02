package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName turns a BCP 47 code such as "es" or "pt-BR" into its English
// name. Input that does not parse as a tag is returned unchanged, so callers
// may pass a language name directly.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
