package moderation

import (
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/textfmt"
)

type Edited struct {
	Title   string
	Summary string
}

// Editor rewrites approved submissions into feed style. Without an editorial
// note source its output depends only on the input and the rules.
type Editor struct {
	rules    Rules
	replacer *textfmt.WordReplacer

	mu    sync.Mutex // guards notes
	notes *rand.Rand
}

type EditorOption func(*Editor)

// WithEditorialNotes appends one of the configured editorial notes to every
// summary, picked with src.
func WithEditorialNotes(src rand.Source) EditorOption {
	return func(e *Editor) {
		e.notes = rand.New(src)
	}
}

func NewEditor(rules Rules, opts ...EditorOption) *Editor {
	e := &Editor{
		rules:    rules,
		replacer: textfmt.NewWordReplacer(rules.Substitutions),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Edit(submission news.Submission) Edited {
	return Edited{
		Title:   e.editTitle(submission),
		Summary: e.editSummary(submission),
	}
}

func (e *Editor) editTitle(submission news.Submission) string {
	title := e.replacer.Replace(textfmt.Normalize(submission.Title))
	if e.rules.TitleCaseTitles {
		title = textfmt.TitleCase(title)
	}
	title = textfmt.CollapsePunctuation(textfmt.UpperFirst(title))

	if prefix := e.rules.TitlePrefixes[submission.Topic]; prefix != "" && !strings.HasPrefix(title, prefix) {
		title = prefix + " " + title
	}

	if max := e.rules.MaxTitleLength; max > 0 && utf8.RuneCountInString(title) > max {
		title = strings.TrimSpace(string([]rune(title)[:max-3])) + "..."
	}

	return title
}

func (e *Editor) editSummary(submission news.Submission) string {
	summary := e.replacer.Replace(textfmt.Normalize(submission.Description))
	summary = textfmt.UpperFirst(summary)

	city := strings.TrimSpace(submission.City)
	if city != "" && !strings.Contains(strings.ToLower(summary), strings.ToLower(city)) {
		summary = textfmt.EnsureTerminal(summary) + " " + e.localitySentence(city, submission.Topic)
	}

	summary = textfmt.LimitSentences(summary, e.rules.MaxSummarySentences)
	summary = textfmt.EnsureTerminal(summary)

	if note := e.pickNote(); note != "" {
		summary += " " + note
	}

	return summary
}

func (e *Editor) localitySentence(city string, topic news.Topic) string {
	if e.rules.LocalityTemplate == "" {
		return ""
	}

	topicName := strings.ToLower(string(topic))
	if topicName == "" || topic == news.TopicOther {
		topicName = "story"
	}

	sentence := strings.NewReplacer(
		"{city}", textfmt.UpperFirst(city),
		"{topic}", topicName,
	).Replace(e.rules.LocalityTemplate)

	return textfmt.EnsureTerminal(e.replacer.Replace(sentence))
}

func (e *Editor) pickNote() string {
	if e.notes == nil || len(e.rules.EditorialNotes) == 0 {
		return ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.EditorialNotes[e.notes.IntN(len(e.rules.EditorialNotes))]
}
