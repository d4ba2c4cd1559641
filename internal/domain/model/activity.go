package model

import (
	"strings"
	"time"
)

// ActivityType classifies a logged touch on a deal.
type ActivityType string

// Known activity types. Unknown raw values map to ActivityOther rather
// than quarantining the row; the type is informational, not structural.
const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
	ActivityOther   ActivityType = "other"
)

// ParseActivityType normalizes a raw activity type value.
func ParseActivityType(raw string) ActivityType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "call":
		return ActivityCall
	case "email":
		return ActivityEmail
	case "meeting":
		return ActivityMeeting
	case "note":
		return ActivityNote
	default:
		return ActivityOther
	}
}

// Activity is a canonical touch event referencing a Deal.
type Activity struct {
	ID         string
	DealID     string // must reference a canonical Deal
	TS         time.Time
	Type       ActivityType
	Qualifying bool // counts as first meaningful contact
}
