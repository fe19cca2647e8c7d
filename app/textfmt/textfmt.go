// Package textfmt holds the pure text transforms shared by moderation, the
// store and the presentation layer.
package textfmt

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	exclamationRun = regexp.MustCompile(`!{2,}`)
	questionRun    = regexp.MustCompile(`\?{2,}`)
	periodRun      = regexp.MustCompile(`\.{2,}`)
	sentenceBreak  = regexp.MustCompile(`[.!?]+`)
)

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskPhone keeps the first three and last two digits and replaces the rest
// with '*', so the output is as long as the digit count ("5551234567" ->
// "555*****67"). Numbers with five digits or fewer are masked entirely.
func MaskPhone(phone string) string {
	digits := DigitsOnly(phone)
	if len(digits) <= 5 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:3] + strings.Repeat("*", len(digits)-5) + digits[len(digits)-2:]
}

// Normalize applies NFC and collapses whitespace runs into single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// UpperFirst uppercases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// TitleCase capitalises every word and lowercases the rest.
func TitleCase(s string) string {
	// cases.Caser keeps state, so one per call.
	return cases.Title(language.English).String(s)
}

// CollapsePunctuation reduces runs of '!', '?' and '.' to a single mark.
func CollapsePunctuation(s string) string {
	s = exclamationRun.ReplaceAllString(s, "!")
	s = questionRun.ReplaceAllString(s, "?")
	return periodRun.ReplaceAllString(s, ".")
}

// SplitSentences splits on '.', '!' and '?' boundaries and drops empty parts.
func SplitSentences(s string) []string {
	parts := sentenceBreak.Split(s, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// LimitSentences keeps the first max sentences, rejoined with ". " and a
// trailing period. Text within the limit is returned unchanged.
func LimitSentences(s string, max int) string {
	sentences := SplitSentences(s)
	if max <= 0 || len(sentences) <= max {
		return s
	}
	return strings.Join(sentences[:max], ". ") + "."
}

// EnsureTerminal makes s end with exactly one terminal punctuation mark,
// appending a period when none is present.
func EnsureTerminal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	body := strings.TrimRight(s, ".!? \t\n")
	if body == s {
		return s + "."
	}
	tail := s[len(body):]
	return body + string(tail[strings.IndexAny(tail, ".!?")])
}

// ContainsAny reports the first keyword found in text. Both sides are
// compared lowercased.
func ContainsAny(text string, keywords []string) (string, bool) {
	text = strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(keyword)) {
			return keyword, true
		}
	}
	return "", false
}

// TimeAgo renders t relative to now ("3 hours ago").
func TimeAgo(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
