package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/newsdesk/app/news"
)

func TestLoadRules(t *testing.T) {
	tempDir := t.TempDir()

	content := `
spam_keywords:
  - "lottery"
  - "giveaway"
min_title_length: 12
substitutions:
  crash: collision
title_prefixes:
  Accident: "Breaking:"
`

	path := filepath.Join(tempDir, "rules.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(rules.SpamKeywords) != 2 || rules.SpamKeywords[0] != "lottery" {
		t.Errorf("Expected spam keywords to be replaced, got %v", rules.SpamKeywords)
	}
	if rules.MinTitleLength != 12 {
		t.Errorf("Expected min title length 12, got %d", rules.MinTitleLength)
	}
	if rules.MinDescriptionLength != 50 {
		t.Errorf("Expected default min description length 50, got %d", rules.MinDescriptionLength)
	}
	if len(rules.InappropriateKeywords) != len(DefaultInappropriateKeywords) {
		t.Errorf("Expected default inappropriate keywords, got %v", rules.InappropriateKeywords)
	}
	if rules.Substitutions["crash"] != "collision" {
		t.Errorf("Expected crash substitution, got %v", rules.Substitutions)
	}
	if rules.Substitutions["accident"] != "incident" {
		t.Errorf("Expected default substitutions to be kept, got %v", rules.Substitutions)
	}
	if rules.TitlePrefixes[news.TopicAccident] != "Breaking:" {
		t.Errorf("Expected accident prefix, got %v", rules.TitlePrefixes)
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := map[string]string{
		"negative threshold": "locality_threshold: -1\n",
		"unknown topic":      "title_prefixes:\n  Weather: \"Forecast:\"\n",
		"zero sentences":     "max_summary_sentences: 0\n",
		"malformed":          "spam_keywords: [unterminated\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			if _, err := LoadRules(path); err == nil {
				t.Error("Expected error for invalid rules")
			}
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDefaultRules_ReturnsCopies(t *testing.T) {
	rules := DefaultRules()
	rules.SpamKeywords[0] = "changed"
	rules.Substitutions["accident"] = "changed"

	fresh := DefaultRules()
	if fresh.SpamKeywords[0] == "changed" || fresh.Substitutions["accident"] == "changed" {
		t.Error("DefaultRules should not share state between calls")
	}
	if err := fresh.Validate(); err != nil {
		t.Errorf("Expected default rules to be valid, got: %v", err)
	}
}
