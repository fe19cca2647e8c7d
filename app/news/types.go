package news

import (
	"fmt"
	"strings"
)

type Topic string

const (
	TopicAccident       Topic = "Accident"
	TopicFestival       Topic = "Festival"
	TopicCommunityEvent Topic = "Community Event"
	TopicLocalBusiness  Topic = "Local Business"
	TopicInfrastructure Topic = "Infrastructure"
	TopicEducation      Topic = "Education"
	TopicHealth         Topic = "Health"
	TopicEnvironment    Topic = "Environment"
	TopicSports         Topic = "Sports"
	TopicPolitics       Topic = "Politics"
	TopicOther          Topic = "Other"
)

// Topics is the closed topic set shared by submissions, moderation rules,
// import sources and feed filters.
var Topics = []Topic{
	TopicAccident,
	TopicFestival,
	TopicCommunityEvent,
	TopicLocalBusiness,
	TopicInfrastructure,
	TopicEducation,
	TopicHealth,
	TopicEnvironment,
	TopicSports,
	TopicPolitics,
	TopicOther,
}

func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

func (t Topic) String() string {
	return string(t)
}

// ParseTopic resolves a topic name case-insensitively.
func ParseTopic(name string) (Topic, error) {
	name = strings.TrimSpace(name)
	for _, known := range Topics {
		if strings.EqualFold(string(known), name) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown topic '%s'", name)
}

// Submission is user-entered news content that has not been moderated yet.
type Submission struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	City           string `json:"city"`
	Topic          Topic  `json:"topic"`
	PublisherName  string `json:"publisher_name"`
	PublisherPhone string `json:"publisher_phone"`
	ImageURI       string `json:"image_uri,omitempty"`
}

// Story is a moderated, edited and persisted news item.
// IsBookmarked is a projection of the bookmark set and is recomputed on every read.
type Story struct {
	ID                  string `json:"id"`
	OriginalTitle       string `json:"original_title"`
	OriginalDescription string `json:"original_description"`
	EditedTitle         string `json:"edited_title"`
	EditedSummary       string `json:"edited_summary"`
	City                string `json:"city"`
	Topic               Topic  `json:"topic"`
	PublisherName       string `json:"publisher_name"`
	MaskedPhone         string `json:"masked_phone"`
	ImageURI            string `json:"image_uri,omitempty"`
	Timestamp           int64  `json:"timestamp"` // unix milliseconds
	IsBookmarked        bool   `json:"is_bookmarked"`
}

// Outcome is the single result of running a submission through moderation.
// Exactly one of the approved or rejected shapes is populated.
type Outcome struct {
	Approved      bool
	EditedTitle   string
	EditedSummary string
	Rule          string
	Reason        string
}

func Approved(editedTitle, editedSummary string) Outcome {
	return Outcome{
		Approved:      true,
		EditedTitle:   editedTitle,
		EditedSummary: editedSummary,
	}
}

func Rejected(rule, reason string) Outcome {
	return Outcome{
		Rule:   rule,
		Reason: reason,
	}
}
