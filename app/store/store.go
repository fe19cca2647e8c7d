package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lysyi3m/newsdesk/app/database"
	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/textfmt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Store owns the published story list and the bookmark set.
//
// Stories are kept newest first and never carry a bookmark flag internally;
// IsBookmarked is derived from the bookmark set on every read. Every mutation
// holds mu from reading the live state until its persisted write returns, and
// memory only advances after the write succeeds.
type Store struct {
	kv        database.KV
	validator Validator
	now       func() time.Time
	newID     func() (string, error)

	mu          sync.Mutex
	stories     []news.Story
	bookmarks   []string
	inflight    int
	failure     *Failure
	subscribers map[int]chan State
	nextSub     int

	loads singleflight.Group
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func New(kv database.KV, validator Validator, opts ...Option) *Store {
	s := &Store{
		kv:          kv,
		validator:   validator,
		now:         time.Now,
		newID:       newStoryID,
		stories:     []news.Story{},
		bookmarks:   []string{},
		subscribers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newStoryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// LoadNews replaces the in-memory state with the persisted one. Concurrent
// calls share a single read, which one caller going away does not cancel.
// On failure the previous state is kept.
func (s *Store) LoadNews(ctx context.Context) error {
	_, err, _ := s.loads.Do("load", func() (any, error) {
		return nil, s.load(context.WithoutCancel(ctx))
	})
	return err
}

func (s *Store) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		stories   []news.Story
		bookmarks []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stories, err = database.LoadList[news.Story](gctx, s.kv, database.StoriesKey)
		return err
	})
	g.Go(func() error {
		var err error
		bookmarks, err = database.LoadList[string](gctx, s.kv, database.BookmarksKey)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("Failed to load news", "error", err)
		s.failure = &Failure{Kind: FailureStorage, Message: LoadFailedMessage}
		s.publishLocked()
		return err
	}

	for i := range stories {
		stories[i].IsBookmarked = false
	}

	s.stories = stories
	s.bookmarks = bookmarks
	if s.failure != nil && s.failure.Kind == FailureStorage {
		s.failure = nil
	}

	slog.Debug("News loaded", "stories", len(stories), "bookmarks", len(bookmarks))
	s.publishLocked()
	return nil
}

// SubmitNews runs the submission through the validator and publishes it on
// approval. Rejections return *news.RejectionError, pipeline failures wrap
// news.ErrPipelineFailure and persistence failures return
// *database.StorageError. Only an approval that was persisted changes the list.
func (s *Store) SubmitNews(ctx context.Context, submission news.Submission) (news.Story, error) {
	s.mu.Lock()
	s.failure = nil
	s.inflight++
	s.publishLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.publishLocked()
		s.mu.Unlock()
	}()

	story, failure, err := s.submit(ctx, submission)
	if failure != nil {
		s.setFailure(failure)
	}
	return story, err
}

// Publish is SubmitNews for background sources. It returns the same errors
// but leaves the loading flag and the error field alone.
func (s *Store) Publish(ctx context.Context, submission news.Submission) (news.Story, error) {
	story, _, err := s.submit(ctx, submission)
	return story, err
}

func (s *Store) submit(ctx context.Context, submission news.Submission) (news.Story, *Failure, error) {
	outcome, err := s.validator.ValidateAndEdit(ctx, submission)
	if err != nil {
		if !errors.Is(err, news.ErrPipelineFailure) {
			err = fmt.Errorf("%w: %w", news.ErrPipelineFailure, err)
		}
		slog.Warn("Validation pipeline failed", "error", err)
		return news.Story{}, &Failure{Kind: FailurePipeline, Message: SubmitFailedMessage}, err
	}

	if !outcome.Approved {
		reason := outcome.Reason
		if reason == "" {
			reason = RejectedFallback
		}
		return news.Story{}, &Failure{Kind: FailureRejected, Message: reason, Rule: outcome.Rule},
			&news.RejectionError{Rule: outcome.Rule, Reason: reason}
	}

	id, err := s.newID()
	if err != nil {
		return news.Story{}, &Failure{Kind: FailurePipeline, Message: SubmitFailedMessage},
			fmt.Errorf("%w: failed to generate story id: %w", news.ErrPipelineFailure, err)
	}

	story := news.Story{
		ID:                  id,
		OriginalTitle:       submission.Title,
		OriginalDescription: submission.Description,
		EditedTitle:         outcome.EditedTitle,
		EditedSummary:       outcome.EditedSummary,
		City:                strings.TrimSpace(submission.City),
		Topic:               submission.Topic,
		PublisherName:       strings.TrimSpace(submission.PublisherName),
		MaskedPhone:         textfmt.MaskPhone(submission.PublisherPhone),
		ImageURI:            submission.ImageURI,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stamped under the lock so list order and timestamp order agree
	story.Timestamp = s.now().UnixMilli()

	next := make([]news.Story, 0, len(s.stories)+1)
	next = append(next, story)
	next = append(next, s.stories...)

	// The commit runs to completion even if the caller goes away.
	if err := database.SaveList(context.WithoutCancel(ctx), s.kv, database.StoriesKey, next); err != nil {
		slog.Error("Failed to persist story", "story_id", story.ID, "error", err)
		return news.Story{}, &Failure{Kind: FailureStorage, Message: SaveFailedMessage}, err
	}

	s.stories = next
	slog.Info("Story published", "story_id", story.ID, "city", story.City, "topic", story.Topic)
	s.publishLocked()

	return story, nil, nil
}

// ToggleBookmark flips id in the bookmark set and reports the new membership.
// Only the bookmark set is persisted. Unknown ids are toggled like any other.
func (s *Store) ToggleBookmark(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.bookmarks)+1)
	bookmarked := true
	for _, existing := range s.bookmarks {
		if existing == id {
			bookmarked = false
			continue
		}
		next = append(next, existing)
	}
	if bookmarked {
		next = append(next, id)
	}

	if err := database.SaveList(context.WithoutCancel(ctx), s.kv, database.BookmarksKey, next); err != nil {
		slog.Error("Failed to persist bookmarks", "story_id", id, "error", err)
		s.failure = &Failure{Kind: FailureStorage, Message: BookmarkFailedMessage}
		s.publishLocked()
		return !bookmarked, err
	}

	s.bookmarks = next
	slog.Debug("Bookmark toggled", "story_id", id, "bookmarked", bookmarked)
	s.publishLocked()

	return bookmarked, nil
}

func (s *Store) ClearError() {
	s.setFailure(nil)
}

func (s *Store) setFailure(failure *Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failure = failure
	s.publishLocked()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	var failure *Failure
	if s.failure != nil {
		copied := *s.failure
		failure = &copied
	}

	return State{
		Stories:       s.projectLocked(s.stories),
		Loading:       s.inflight > 0,
		Error:         failure,
		BookmarkCount: len(s.bookmarks),
	}
}

// projectLocked copies stories and sets IsBookmarked from the bookmark set.
func (s *Store) projectLocked(stories []news.Story) []news.Story {
	projected := make([]news.Story, len(stories))
	for i, story := range stories {
		story.IsBookmarked = slices.Contains(s.bookmarks, story.ID)
		projected[i] = story
	}
	return projected
}

// Stories returns the feed newest first, narrowed by filter.
func (s *Store) Stories(filter Filter) []news.Story {
	s.mu.Lock()
	projected := s.projectLocked(s.stories)
	s.mu.Unlock()

	city := strings.TrimSpace(filter.City)
	result := make([]news.Story, 0, len(projected))
	for _, story := range projected {
		if city != "" && !strings.EqualFold(story.City, city) {
			continue
		}
		if filter.Topic != "" && story.Topic != filter.Topic {
			continue
		}
		if filter.BookmarkedOnly && !story.IsBookmarked {
			continue
		}
		result = append(result, story)
	}

	slices.SortStableFunc(result, func(a, b news.Story) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})

	return result
}

// Story returns a single story with its bookmark projection.
func (s *Store) Story(id string) (news.Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, story := range s.stories {
		if story.ID == id {
			story.IsBookmarked = slices.Contains(s.bookmarks, id)
			return story, true
		}
	}
	return news.Story{}, false
}

func (s *Store) Bookmarked() []news.Story {
	return s.Stories(Filter{BookmarkedOnly: true})
}

// Cities lists the distinct cities of published stories, sorted. Cities
// differing only in case are listed once, with their earliest spelling.
func (s *Store) Cities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	cities := []string{}
	for _, story := range slices.Backward(s.stories) {
		key := strings.ToLower(story.City)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		cities = append(cities, story.City)
	}

	slices.SortFunc(cities, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return cities
}

func (s *Store) BookmarkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.bookmarks)
}
