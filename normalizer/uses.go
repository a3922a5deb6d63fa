package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cleanupStep is one rewrite in the use-phrase pipeline.
type cleanupStep struct {
	pattern     *regexp.Regexp
	replacement string
}

// usePipeline runs top to bottom; each step sees the previous step's output.
// Reordering the steps changes the extracted phrases.
var usePipeline = []cleanupStep{
	{regexp.MustCompile(`(?i)purposes?:?`), ""},
	{regexp.MustCompile(`(?i)indications?( and usage)?:?`), ""},
	{regexp.MustCompile(`(?i)uses?:?`), ""},
	{regexp.MustCompile(`(?i)for the temporary relief of`), ""},
	{regexp.MustCompile(`(?i)helps prevent`), ""},
	{regexp.MustCompile(`(?i)relieves`), ""},
	{regexp.MustCompile(`(?i)treatment of`), ""},
	{regexp.MustCompile(`(?i)indicated for`), ""},
	{regexp.MustCompile(`(?i)temporarily`), ""},
	{regexp.MustCompile(`(?i)\bthe\b`), ""},
	{regexp.MustCompile(`(?i)\bfor\b`), ""},
	{regexp.MustCompile(`[\r\n]+`), " "},
	// Whitespace here is the full Unicode set (\v, separators, BOM), not RE2's ASCII \s
	{regexp.MustCompile(`[^a-zA-Z\s\x{0B}\p{Z}\x{FEFF},-]`), ""},
}

var (
	candidateSplitter = regexp.MustCompile(`(?i),|\band\b`)
	wordRun           = regexp.MustCompile(`\w\S*`)
)

// maxUseWords bounds the badge to a short phrase.
const maxUseWords = 3

// ExtractUse turns a purpose/indications paragraph into one short title-cased phrase.
// Only the first qualifying candidate is kept; DefaultUse is returned when none qualifies.
func ExtractUse(text string) string {
	cleaned := text
	for _, step := range usePipeline {
		cleaned = step.pattern.ReplaceAllString(cleaned, step.replacement)
	}
	cleaned = strings.TrimFunc(cleaned, isSpace)

	for _, candidate := range candidateSplitter.Split(cleaned, -1) {
		candidate = strings.TrimFunc(candidate, isSpace)
		if utf8.RuneCountInString(candidate) <= 3 {
			continue
		}

		words := strings.FieldsFunc(candidate, isSpace)
		if len(words) > maxUseWords {
			words = words[:maxUseWords]
		}
		return titleCase(strings.Join(words, " "))
	}

	return DefaultUse
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// titleCase upper-cases the first letter of every word run and lower-cases the rest.
func titleCase(phrase string) string {
	return wordRun.ReplaceAllStringFunc(phrase, func(word string) string {
		return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	})
}
