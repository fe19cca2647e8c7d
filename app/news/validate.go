package news

import (
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/newsdesk/app/textfmt"
)

const (
	MaxTitleLength       = 100
	MinDescriptionLength = 50
	PhoneDigits          = 10
)

// Validate applies the submission form rules. It is meant for the presentation
// layer; moderation never sees a submission that fails it.
func (s Submission) Validate() error {
	fields := make(map[string]string)

	title := strings.TrimSpace(s.Title)
	switch {
	case title == "":
		fields["title"] = "Title is required"
	case utf8.RuneCountInString(title) > MaxTitleLength:
		fields["title"] = "Title must be at most 100 characters"
	}

	switch {
	case strings.TrimSpace(s.Description) == "":
		fields["description"] = "Description is required"
	case utf8.RuneCountInString(s.Description) < MinDescriptionLength:
		fields["description"] = "Description must be at least 50 characters"
	}

	if strings.TrimSpace(s.City) == "" {
		fields["city"] = "City is required"
	}

	switch {
	case s.Topic == "":
		fields["topic"] = "Topic is required"
	case !s.Topic.Valid():
		fields["topic"] = "Topic is not supported"
	}

	if strings.TrimSpace(s.PublisherName) == "" {
		fields["publisher_name"] = "Publisher name is required"
	}

	switch {
	case strings.TrimSpace(s.PublisherPhone) == "":
		fields["publisher_phone"] = "Phone number is required"
	case len(textfmt.DigitsOnly(s.PublisherPhone)) != PhoneDigits:
		fields["publisher_phone"] = "Please enter a valid 10-digit phone number"
	}

	if len(fields) > 0 {
		return &InputError{Fields: fields}
	}
	return nil
}
