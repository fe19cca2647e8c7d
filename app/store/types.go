package store

import (
	"context"

	"github.com/lysyi3m/newsdesk/app/news"
)

const (
	LoadFailedMessage     = "Failed to load news"
	SubmitFailedMessage   = "Failed to submit news. Please try again."
	SaveFailedMessage     = "Failed to save news. Please try again."
	BookmarkFailedMessage = "Failed to update bookmark"
	RejectedFallback      = "Content rejected by validation"
)

type FailureKind string

const (
	FailureRejected FailureKind = "rejected"
	FailurePipeline FailureKind = "pipeline"
	FailureStorage  FailureKind = "storage"
)

// Failure is the store's error field. Rejections carry the classifier's
// reason; every other kind carries a generic message.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Rule    string      `json:"rule,omitempty"`
}

// State is a read-only snapshot handed to consumers.
type State struct {
	Stories       []news.Story `json:"stories"`
	Loading       bool         `json:"loading"`
	Error         *Failure     `json:"error"`
	BookmarkCount int          `json:"bookmark_count"`
}

type Filter struct {
	City           string
	Topic          news.Topic
	BookmarkedOnly bool
}

// Validator moderates and edits a submission. Implemented by moderation.Pipeline.
type Validator interface {
	ValidateAndEdit(ctx context.Context, submission news.Submission) (news.Outcome, error)
}
