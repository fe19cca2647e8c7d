package api

import (
	"context"
	"time"

	"github.com/lysyi3m/newsdesk/app/feed"
	"github.com/lysyi3m/newsdesk/app/news"
	"github.com/lysyi3m/newsdesk/app/store"
	"github.com/lysyi3m/newsdesk/app/tasks"
)

// NewsStore is the part of store.Store the HTTP layer drives.
type NewsStore interface {
	LoadNews(ctx context.Context) error
	SubmitNews(ctx context.Context, submission news.Submission) (news.Story, error)
	ToggleBookmark(ctx context.Context, id string) (bool, error)
	ClearError()
	State() store.State
	Stories(filter store.Filter) []news.Story
	Story(id string) (news.Story, bool)
	Cities() []string
	BookmarkCount() int
	Subscribe() (<-chan store.State, func())
}

var _ NewsStore = (*store.Store)(nil)

type GeneratorInterface interface {
	Run(stories []news.Story) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	store       NewsStore
	generator   GeneratorInterface
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	now         func() time.Time
}

// StoryResponse is a story as shown to readers. The original title and
// description stay in storage only.
type StoryResponse struct {
	ID            string     `json:"id"`
	EditedTitle   string     `json:"edited_title"`
	EditedSummary string     `json:"edited_summary"`
	City          string     `json:"city"`
	Topic         news.Topic `json:"topic"`
	PublisherName string     `json:"publisher_name"`
	MaskedPhone   string     `json:"masked_phone"`
	ImageURI      string     `json:"image_uri,omitempty"`
	Timestamp     int64      `json:"timestamp"`
	IsBookmarked  bool       `json:"is_bookmarked"`
	TimeAgo       string     `json:"time_ago"`
}

type StateResponse struct {
	Stories       []StoryResponse `json:"stories"`
	Loading       bool            `json:"loading"`
	Error         *store.Failure  `json:"error"`
	BookmarkCount int             `json:"bookmark_count"`
}
