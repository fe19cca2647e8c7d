package textfmt

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type wordRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// WordReplacer substitutes whole words case-insensitively. A match that starts
// with an uppercase letter keeps an uppercase first letter in the replacement.
type WordReplacer struct {
	rules []wordRule
}

// NewWordReplacer compiles the substitution map. Longer words are applied
// first so that multi-word phrases win over their parts.
func NewWordReplacer(substitutions map[string]string) *WordReplacer {
	words := make([]string, 0, len(substitutions))
	for word := range substitutions {
		if strings.TrimSpace(word) != "" {
			words = append(words, word)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	rules := make([]wordRule, 0, len(words))
	for _, word := range words {
		rules = append(rules, wordRule{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(word)) + `\b`),
			replacement: substitutions[word],
		})
	}
	return &WordReplacer{rules: rules}
}

func (r *WordReplacer) Replace(s string) string {
	for _, rule := range r.rules {
		s = rule.pattern.ReplaceAllStringFunc(s, func(match string) string {
			first, _ := utf8.DecodeRuneInString(match)
			if unicode.IsUpper(first) {
				return UpperFirst(rule.replacement)
			}
			return rule.replacement
		})
	}
	return s
}
