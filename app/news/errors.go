package news

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrPipelineFailure marks a moderation run that could not complete.
// It is retryable and never carries a content decision.
var ErrPipelineFailure = errors.New("validation pipeline failure")

// RejectionError is returned when moderation declines a submission.
type RejectionError struct {
	Rule   string
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

// InputError lists malformed or missing submission fields keyed by field name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}
