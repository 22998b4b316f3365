package types

import (
	"fmt"
	"strings"
)

// Status is the workflow state of a case. The set of statuses is closed;
// use ParseStatus to turn free text into a Status.
type Status string

// Case statuses in canonical spelling.
const (
	StatusNew        Status = "New"
	StatusInProgress Status = "InProgress"
	StatusOnHold     Status = "OnHold"
	StatusDone       Status = "Done"
	StatusCancelled  Status = "Cancelled"
)

// validStatuses lists the vocabulary in display order.
var validStatuses = []Status{
	StatusNew,
	StatusInProgress,
	StatusOnHold,
	StatusDone,
	StatusCancelled,
}

// ValidStatuses returns the status vocabulary in canonical order.
func ValidStatuses() []Status {
	out := make([]Status, len(validStatuses))
	copy(out, validStatuses)
	return out
}

// ParseStatus trims s and matches it case-insensitively against the status
// vocabulary, returning the canonical Status. Empty or whitespace-only input
// returns ErrStatusRequired; anything outside the vocabulary returns
// ErrInvalidStatus. Any status may follow any other, so there is no
// transition check beyond membership.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrStatusRequired
	}
	for _, v := range validStatuses {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w (got %q)", ErrInvalidStatus, s)
}

// String returns the canonical spelling.
func (s Status) String() string { return string(s) }

// UnmarshalText parses text with ParseStatus so a decoded Status is always
// canonical.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// StatusNames joins the vocabulary for error messages and help text.
func StatusNames() string {
	names := make([]string, len(validStatuses))
	for i, v := range validStatuses {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
