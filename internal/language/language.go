package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is used whenever a caller passes an empty language code.
const Default = "en-US"

// Word forms and legacy three-letter codes that users type instead of tags.
var aliases = map[string]string{
	"english":    "en-US",
	"eng":        "en",
	"spanish":    "es",
	"spa":        "es",
	"french":     "fr",
	"fra":        "fr",
	"fre":        "fr",
	"german":     "de",
	"deu":        "de",
	"ger":        "de",
	"italian":    "it",
	"ita":        "it",
	"portuguese": "pt",
	"por":        "pt",
	"japanese":   "ja",
	"jpn":        "ja",
	"korean":     "ko",
	"kor":        "ko",
	"chinese":    "zh",
	"zho":        "zh",
	"chi":        "zh",
	"dutch":      "nl",
	"nld":        "nl",
	"dut":        "nl",
	"hindi":      "hi",
	"hin":        "hi",
	"arabic":     "ar",
	"ara":        "ar",
}

// Canonicalize converts user input into the BCP 47 form the Google speech
// APIs expect ("en_us" becomes "en-US"). Empty input yields Default.
func Canonicalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Default, nil
	}
	if alias, ok := aliases[strings.ToLower(trimmed)]; ok {
		trimmed = alias
	}
	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// DisplayName returns an English name for a language code, e.g.
// "American English" for en-US. Unparseable input is echoed uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	canonical, err := Canonicalize(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	tag := language.Make(canonical)
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return canonical
}

// Base returns the primary language subtag ("en" for "en-GB").
func Base(code string) string {
	canonical, err := Canonicalize(code)
	if err != nil {
		return ""
	}
	base, _ := language.Make(canonical).Base()
	return base.String()
}
