package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/newsdesk/app/news"
)

func newTestPipeline(latency, timeout time.Duration) *Pipeline {
	rules := DefaultRules()
	return NewPipeline(NewClassifier(rules), NewEditor(rules), latency, timeout)
}

func TestPipeline_Approves(t *testing.T) {
	pipeline := newTestPipeline(0, time.Second)
	submission := validSubmission()

	outcome, err := pipeline.ValidateAndEdit(context.Background(), submission)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !outcome.Approved {
		t.Fatalf("Expected approval, got rejection: %s", outcome.Reason)
	}

	edited := NewEditor(DefaultRules()).Edit(submission)
	if outcome.EditedTitle != edited.Title || outcome.EditedSummary != edited.Summary {
		t.Errorf("Expected pipeline output to match editor output, got %+v", outcome)
	}
}

func TestPipeline_Rejects(t *testing.T) {
	pipeline := newTestPipeline(0, time.Second)

	submission := validSubmission()
	submission.Description = "buy now this is fake"

	outcome, err := pipeline.ValidateAndEdit(context.Background(), submission)
	if err != nil {
		t.Fatalf("Expected no error for a rejection, got: %v", err)
	}
	if outcome.Approved {
		t.Fatal("Expected rejection")
	}
	if outcome.Rule != RuleSpam || outcome.Reason != Reasons[RuleSpam] {
		t.Errorf("Expected spam rejection, got %+v", outcome)
	}
	if outcome.EditedTitle != "" || outcome.EditedSummary != "" {
		t.Error("Rejected outcome should not carry edited content")
	}
}

func TestPipeline_Latency(t *testing.T) {
	pipeline := newTestPipeline(50*time.Millisecond, time.Second)

	start := time.Now()
	if _, err := pipeline.ValidateAndEdit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected at least 50ms of processing, got %v", elapsed)
	}
}

func TestPipeline_TimeoutIsPipelineFailure(t *testing.T) {
	pipeline := newTestPipeline(time.Second, 20*time.Millisecond)

	_, err := pipeline.ValidateAndEdit(context.Background(), validSubmission())
	if !errors.Is(err, news.ErrPipelineFailure) {
		t.Fatalf("Expected pipeline failure, got: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded cause, got: %v", err)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	pipeline := newTestPipeline(0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pipeline.ValidateAndEdit(ctx, validSubmission()); !errors.Is(err, news.ErrPipelineFailure) {
		t.Errorf("Expected pipeline failure for cancelled context, got: %v", err)
	}
}

func TestPipeline_Concurrent(t *testing.T) {
	pipeline := newTestPipeline(5*time.Millisecond, time.Second)

	var wg sync.WaitGroup
	results := make([]news.Outcome, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			submission := validSubmission()
			if i%2 == 1 {
				submission.Description = "click here for free money in the local area right now please"
			}
			outcome, err := pipeline.ValidateAndEdit(context.Background(), submission)
			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			results[i] = outcome
		}(i)
	}
	wg.Wait()

	for i, outcome := range results {
		if wantApproved := i%2 == 0; outcome.Approved != wantApproved {
			t.Errorf("Result %d: expected approved=%v, got %+v", i, wantApproved, outcome)
		}
	}
}
