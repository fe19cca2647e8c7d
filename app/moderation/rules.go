package moderation

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lysyi3m/newsdesk/app/news"
	"gopkg.in/yaml.v3"
)

// Rules is the configuration shared by the classifier and the editor.
// Keyword matching is case-insensitive substring matching.
type Rules struct {
	SpamKeywords          []string `yaml:"spam_keywords"`
	InappropriateKeywords []string `yaml:"inappropriate_keywords"`
	LocalKeywords         []string `yaml:"local_keywords"`
	VagueKeywords         []string `yaml:"vague_keywords"`

	MinDescriptionLength int `yaml:"min_description_length"`
	LocalityThreshold    int `yaml:"locality_threshold"`
	MinCityLength        int `yaml:"min_city_length"` // trimmed city must be longer than this
	MinTitleLength       int `yaml:"min_title_length"`
	VaguenessThreshold   int `yaml:"vagueness_threshold"`

	Substitutions       map[string]string     `yaml:"substitutions"`
	LocalityTemplate    string                `yaml:"locality_template"` // {city} and {topic} placeholders
	MaxSummarySentences int                   `yaml:"max_summary_sentences"`
	TitleCaseTitles     bool                  `yaml:"title_case_titles"`
	TitlePrefixes       map[news.Topic]string `yaml:"title_prefixes"`
	MaxTitleLength      int                   `yaml:"max_title_length"` // 0 disables truncation
	EditorialNotes      []string              `yaml:"editorial_notes"`
}

var (
	DefaultSpamKeywords = []string{
		"buy now",
		"click here",
		"free money",
		"urgent",
		"winner",
		"spam",
		"fake",
		"scam",
	}
	DefaultInappropriateKeywords = []string{
		"hate",
		"violence",
		"discriminate",
		"illegal",
	}
	DefaultLocalKeywords = []string{
		"city",
		"local",
		"community",
		"neighborhood",
		"residents",
		"area",
		"district",
	}
	DefaultVagueKeywords = []string{
		"something happened",
		"some stuff",
		"somewhere",
		"someone said",
		"not sure",
		"i heard",
		"rumor",
		"no idea",
	}
	DefaultSubstitutions = map[string]string{
		"accident": "incident",
		"cops":     "police",
		"kids":     "children",
	}
	DefaultEditorialNotes = []string{
		"This story has been reviewed and edited for clarity.",
		"Local authorities have been notified of this development.",
		"This is a developing story and updates will follow.",
		"Community members are encouraged to stay informed.",
		"This report has been verified by our editorial team.",
	}
)

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() Rules {
	substitutions := make(map[string]string, len(DefaultSubstitutions))
	for k, v := range DefaultSubstitutions {
		substitutions[k] = v
	}

	return Rules{
		SpamKeywords:          append([]string(nil), DefaultSpamKeywords...),
		InappropriateKeywords: append([]string(nil), DefaultInappropriateKeywords...),
		LocalKeywords:         append([]string(nil), DefaultLocalKeywords...),
		VagueKeywords:         append([]string(nil), DefaultVagueKeywords...),
		MinDescriptionLength:  50,
		LocalityThreshold:     100,
		MinCityLength:         2,
		MinTitleLength:        10,
		VaguenessThreshold:    120,
		Substitutions:         substitutions,
		LocalityTemplate:      "This {topic} took place in {city}.",
		MaxSummarySentences:   3,
		TitlePrefixes:         map[news.Topic]string{},
		EditorialNotes:        append([]string(nil), DefaultEditorialNotes...),
	}
}

// LoadRules reads a YAML rules file on top of the defaults. Keys missing from
// the file keep their default values.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules %s: %w", path, err)
	}

	slog.Debug("Moderation rules loaded",
		"path", path,
		"spam_keywords", len(rules.SpamKeywords),
		"inappropriate_keywords", len(rules.InappropriateKeywords),
		"substitutions", len(rules.Substitutions))

	return rules, nil
}

func (r Rules) Validate() error {
	nonNegativeFields := []struct {
		name  string
		value int
	}{
		{"min description length", r.MinDescriptionLength},
		{"locality threshold", r.LocalityThreshold},
		{"min city length", r.MinCityLength},
		{"min title length", r.MinTitleLength},
		{"vagueness threshold", r.VaguenessThreshold},
		{"max title length", r.MaxTitleLength},
	}

	for _, field := range nonNegativeFields {
		if field.value < 0 {
			return fmt.Errorf("%s must be non-negative", field.name)
		}
	}

	if r.MaxSummarySentences < 1 {
		return fmt.Errorf("max summary sentences must be at least 1")
	}

	if r.MaxTitleLength > 0 && r.MaxTitleLength < 4 {
		return fmt.Errorf("max title length must be 0 or at least 4")
	}

	for topic := range r.TitlePrefixes {
		if !topic.Valid() {
			return fmt.Errorf("invalid title prefix topic: %s", topic)
		}
	}

	for word := range r.Substitutions {
		if strings.TrimSpace(word) == "" {
			return fmt.Errorf("substitution word must not be empty")
		}
	}

	return nil
}
