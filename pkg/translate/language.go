package translate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// AutoLanguage lets the backend work out the source language
const AutoLanguage = "auto"

// ParseLanguage validates a language code. The base language must have
// an ISO 639-1 (two letter) code; region and script subtags are allowed.
func ParseLanguage(code string) (language.Tag, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return language.Und, fmt.Errorf("language code is empty")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, conf := tag.Base()
	if conf == language.No || len(base.String()) != 2 {
		return language.Und, fmt.Errorf("language %q has no ISO 639-1 code", code)
	}
	return tag, nil
}

// LanguageName returns the English name of a language code, or the code
// itself when it cannot be parsed
func LanguageName(code string) string {
	tag, err := ParseLanguage(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
