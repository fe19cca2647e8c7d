package news

import (
	"errors"
	"strings"
	"testing"
)

func validSubmission() Submission {
	return Submission{
		Title:          "Big Fire Downtown",
		Description:    "A fire broke out near Main Street this morning affecting several local businesses.",
		City:           "Springfield",
		Topic:          TopicAccident,
		PublisherName:  "Alex",
		PublisherPhone: "(555) 123-4567",
	}
}

func TestSubmissionValidate(t *testing.T) {
	if err := validSubmission().Validate(); err != nil {
		t.Fatalf("Expected valid submission, got: %v", err)
	}

	tests := map[string]struct {
		mutate func(*Submission)
		field  string
	}{
		"empty title":       {func(s *Submission) { s.Title = "   " }, "title"},
		"long title":        {func(s *Submission) { s.Title = strings.Repeat("a", MaxTitleLength+1) }, "title"},
		"empty description": {func(s *Submission) { s.Description = "" }, "description"},
		"short description": {func(s *Submission) { s.Description = strings.Repeat("a", MinDescriptionLength-1) }, "description"},
		"empty city":        {func(s *Submission) { s.City = " " }, "city"},
		"missing topic":     {func(s *Submission) { s.Topic = "" }, "topic"},
		"unknown topic":     {func(s *Submission) { s.Topic = "Weather" }, "topic"},
		"empty publisher":   {func(s *Submission) { s.PublisherName = "" }, "publisher_name"},
		"empty phone":       {func(s *Submission) { s.PublisherPhone = "" }, "publisher_phone"},
		"short phone":       {func(s *Submission) { s.PublisherPhone = "555-1234" }, "publisher_phone"},
		"long phone":        {func(s *Submission) { s.PublisherPhone = "+1 555 123 4567" }, "publisher_phone"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			submission := validSubmission()
			tt.mutate(&submission)

			err := submission.Validate()

			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Expected InputError, got: %v", err)
			}
			if _, ok := inputErr.Fields[tt.field]; !ok {
				t.Errorf("Expected error for field '%s', got %v", tt.field, inputErr.Fields)
			}
			if len(inputErr.Fields) != 1 {
				t.Errorf("Expected a single field error, got %v", inputErr.Fields)
			}
		})
	}
}

func TestSubmissionValidate_Boundaries(t *testing.T) {
	submission := validSubmission()
	submission.Title = strings.Repeat("é", MaxTitleLength)
	submission.Description = strings.Repeat("é", MinDescriptionLength)

	if err := submission.Validate(); err != nil {
		t.Errorf("Expected limits to be counted in characters, got: %v", err)
	}
}

func TestInputErrorMessage(t *testing.T) {
	err := &InputError{Fields: map[string]string{
		"title": "Title is required",
		"city":  "City is required",
	}}

	want := "invalid submission: city: City is required; title: Title is required"
	if err.Error() != want {
		t.Errorf("Expected '%s', got '%s'", want, err.Error())
	}
}

func TestParseTopic(t *testing.T) {
	topic, err := ParseTopic("  community EVENT ")
	if err != nil {
		t.Fatal(err)
	}
	if topic != TopicCommunityEvent {
		t.Errorf("Expected '%s', got '%s'", TopicCommunityEvent, topic)
	}

	if _, err := ParseTopic("weather"); err == nil {
		t.Error("Expected error for unknown topic")
	}

	if len(Topics) != 11 {
		t.Errorf("Expected 11 topics, got %d", len(Topics))
	}
}

func TestOutcomeConstructors(t *testing.T) {
	approved := Approved("Title", "Summary.")
	if !approved.Approved || approved.Rule != "" || approved.Reason != "" {
		t.Errorf("Expected approved outcome without rejection fields, got %+v", approved)
	}

	rejected := Rejected("spam", "Content appears to be spam")
	if rejected.Approved || rejected.EditedTitle != "" || rejected.EditedSummary != "" {
		t.Errorf("Expected rejected outcome without edited fields, got %+v", rejected)
	}
}
