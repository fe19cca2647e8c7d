package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/newsdesk/app/news"
)

// SubmitStoryTask publishes one imported submission. Content rejections are
// final; pipeline and storage failures are returned for retry.
type SubmitStoryTask struct {
	Task
	Submission news.Submission
	publisher  Publisher
}

func NewSubmitStoryTask(sourceName string, submission news.Submission, publisher Publisher) *SubmitStoryTask {
	return &SubmitStoryTask{
		Task:       NewTask(TaskTypeSubmitStory, sourceName),
		Submission: submission,
		publisher:  publisher,
	}
}

func (t *SubmitStoryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	story, err := t.publisher.Publish(ctx, t.Submission)

	var rejection *news.RejectionError
	if errors.As(err, &rejection) {
		slog.Info("Imported story rejected",
			"source", t.SourceName,
			"title", t.Submission.Title,
			"rule", rejection.Rule,
			"reason", rejection.Reason)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to publish story: %w", err)
	}

	slog.Info("Task completed",
		"type", "SubmitStory",
		"source", t.SourceName,
		"story_id", story.ID,
		"duration", t.GetDuration())

	return nil
}
