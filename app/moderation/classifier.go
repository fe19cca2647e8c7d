package moderation

import (
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/textfmt"
)

const (
	RuleSpam          = "spam"
	RuleInappropriate = "inappropriate"
	RuleTooShort      = "too_short"
	RuleNotLocal      = "not_local"
	RuleTitleTooShort = "title_too_short"
	RuleTooVague      = "too_vague"
)

// Reasons maps every rule to the message shown to the submitter.
var Reasons = map[string]string{
	RuleSpam:          "Content appears to be spam or promotional material. Please submit genuine local news.",
	RuleInappropriate: "Content contains inappropriate material that violates our community guidelines.",
	RuleTooShort:      "News description is too brief. Please provide more details about the event.",
	RuleNotLocal:      "Content does not appear to be local news. Please provide more details about the local impact or significance.",
	RuleTitleTooShort: "Title is too short. Please use a descriptive headline of at least 10 characters.",
	RuleTooVague:      "Submission is too vague. Please describe what happened, where and when.",
}

type Verdict struct {
	Passed  bool
	Rule    string
	Reason  string
	Keyword string // keyword that triggered a keyword rule
}

type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify evaluates the rules in a fixed order; the first rule that fires
// decides the verdict.
func (c *Classifier) Classify(submission news.Submission) Verdict {
	fullText := strings.ToLower(submission.Title + " " + submission.Description)
	descriptionLength := utf8.RuneCountInString(submission.Description)

	if keyword, ok := textfmt.ContainsAny(fullText, c.rules.SpamKeywords); ok {
		return reject(RuleSpam, keyword)
	}

	if keyword, ok := textfmt.ContainsAny(fullText, c.rules.InappropriateKeywords); ok {
		return reject(RuleInappropriate, keyword)
	}

	if descriptionLength < c.rules.MinDescriptionLength {
		return reject(RuleTooShort, "")
	}

	if !c.hasLocalContext(fullText, submission.City) && descriptionLength < c.rules.LocalityThreshold {
		return reject(RuleNotLocal, "")
	}

	if utf8.RuneCountInString(strings.TrimSpace(submission.Title)) < c.rules.MinTitleLength {
		return reject(RuleTitleTooShort, "")
	}

	if keyword, ok := textfmt.ContainsAny(fullText, c.rules.VagueKeywords); ok && descriptionLength < c.rules.VaguenessThreshold {
		return reject(RuleTooVague, keyword)
	}

	return Verdict{Passed: true}
}

func (c *Classifier) hasLocalContext(fullText, city string) bool {
	if _, ok := textfmt.ContainsAny(fullText, c.rules.LocalKeywords); ok {
		return true
	}
	return utf8.RuneCountInString(strings.TrimSpace(city)) > c.rules.MinCityLength
}

func reject(rule, keyword string) Verdict {
	return Verdict{
		Rule:    rule,
		Reason:  Reasons[rule],
		Keyword: keyword,
	}
}
