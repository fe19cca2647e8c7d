package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/newsdesk/app/database"
	"github.com/lysyi3m/newsdesk/app/feed"
)

// ImportSourceTask reads a source file and queues a SubmitStoryTask for every
// new item. Items are remembered by content hash once queued or found invalid,
// so each item is submitted at most once. Runs for the same source are
// serialized through SourceLocks.
type ImportSourceTask struct {
	Task
	Config    *feed.Config
	parser    *feed.Parser
	filterer  *feed.Filterer
	kv        database.KV
	publisher Publisher
	enqueuer  TaskSchedulerInterface
	locks     *SourceLocks
}

func NewImportSourceTask(config *feed.Config, parser *feed.Parser, filterer *feed.Filterer, kv database.KV, publisher Publisher, enqueuer TaskSchedulerInterface, locks *SourceLocks) *ImportSourceTask {
	return &ImportSourceTask{
		Task:      NewTask(TaskTypeImportSource, config.Name),
		Config:    config,
		parser:    parser,
		filterer:  filterer,
		kv:        kv,
		publisher: publisher,
		enqueuer:  enqueuer,
		locks:     locks,
	}
}

func (t *ImportSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The seen-hash list is read, extended and written back as one step
	unlock := t.locks.Lock(t.Config.Name)
	defer unlock()

	_, items, err := t.parser.RunFile(t.Config.Path)
	if err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	key := database.ImportKey(t.Config.Name)
	seen, err := database.LoadList[string](ctx, t.kv, key)
	if err != nil {
		return fmt.Errorf("failed to load imported hashes: %w", err)
	}

	seenSet := make(map[string]bool, len(seen))
	for _, hash := range seen {
		seenSet[hash] = true
	}

	duplicateCount := 0
	filteredCount := 0
	invalidCount := 0
	queuedCount := 0

	for _, item := range t.filterer.Run(items, t.Config) {
		if queuedCount >= t.Config.Settings.MaxItems {
			break
		}
		if seenSet[item.ContentHash] {
			duplicateCount++
			continue
		}
		if item.IsFiltered {
			filteredCount++
			slog.Debug("Imported item filtered", "source", t.SourceName, "title", item.Title, "reason", item.FilterReason)
			continue
		}

		submission := t.Config.Submission(item)
		if err := submission.Validate(); err != nil {
			invalidCount++
			slog.Debug("Imported item is not a valid submission", "source", t.SourceName, "title", item.Title, "error", err)
			seenSet[item.ContentHash] = true
			seen = append(seen, item.ContentHash)
			continue
		}

		if err := t.enqueuer.EnqueueTask(NewSubmitStoryTask(t.SourceName, submission, t.publisher)); err != nil {
			slog.Warn("Failed to enqueue SubmitStoryTask", "source", t.SourceName, "error", err)
			break
		}

		queuedCount++
		seenSet[item.ContentHash] = true
		seen = append(seen, item.ContentHash)
	}

	if queuedCount > 0 || invalidCount > 0 {
		if err := database.SaveList(context.WithoutCancel(ctx), t.kv, key, seen); err != nil {
			return fmt.Errorf("failed to save imported hashes: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", "ImportSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(items),
		"duplicates", duplicateCount,
		"filtered", filteredCount,
		"invalid", invalidCount,
		"queued", queuedCount)

	return nil
}
