package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/newsdesk/app/news"
)

const (
	DefaultLatency = 2 * time.Second
	DefaultTimeout = 10 * time.Second
)

// Pipeline runs the classifier and, on a pass, the editor behind a simulated
// processing latency. It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	classifier *Classifier
	editor     *Editor
	latency    time.Duration
	timeout    time.Duration
}

func NewPipeline(classifier *Classifier, editor *Editor, latency, timeout time.Duration) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		editor:     editor,
		latency:    latency,
		timeout:    timeout,
	}
}

// ValidateAndEdit returns an approved or rejected outcome. A content rejection
// is not an error; an error always wraps news.ErrPipelineFailure.
func (p *Pipeline) ValidateAndEdit(ctx context.Context, submission news.Submission) (news.Outcome, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.wait(ctx); err != nil {
		return news.Outcome{}, fmt.Errorf("%w: %w", news.ErrPipelineFailure, err)
	}

	verdict := p.classifier.Classify(submission)
	if !verdict.Passed {
		slog.Debug("Submission rejected", "rule", verdict.Rule, "keyword", verdict.Keyword)
		return news.Rejected(verdict.Rule, verdict.Reason), nil
	}

	edited := p.editor.Edit(submission)
	return news.Approved(edited.Title, edited.Summary), nil
}

func (p *Pipeline) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
