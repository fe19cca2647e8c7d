package tasks

import (
	"context"

	"github.com/lysyi3m/newsdesk/app/news"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to run imports in the background.
//
//	scheduler := NewScheduler(configCache, parser, filterer, kv, newsStore)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.ImportSource("gazette")
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	ImportSource(name string) error
}

// Publisher publishes a submission without touching user-facing state.
// Implemented by store.Store.
type Publisher interface {
	Publish(ctx context.Context, submission news.Submission) (news.Story, error)
}
