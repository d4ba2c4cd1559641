// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a deal.
type Status string

// Deal lifecycle states.
const (
	StatusOpen Status = "open"
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

// Terminal reports whether the status closes a deal.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// ParseStatus normalizes a raw status value from an export. CRM exports
// disagree on terminal labels ("Won", "closed won", "CLOSED LOST"), so
// matching is case-insensitive and accepts the "closed " prefix.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "":
		return StatusOpen, raw != ""
	case "won", "closed won":
		return StatusWon, true
	case "lost", "closed lost":
		return StatusLost, true
	default:
		return StatusOpen, false
	}
}

// Deal is a canonical pipeline opportunity after field mapping and
// validation. All analyzer modules read deals and never mutate them.
type Deal struct {
	ID         string     // unique across the dataset
	Name       string     // optional display name
	Stage      string     // member of the configured stage list
	Amount     float64    // non-negative
	CreatedAt  time.Time  //
	UpdatedAt  time.Time  // >= CreatedAt
	ClosedAt   *time.Time // set iff Status is terminal
	Owner      string     // rep identifier
	Status     Status     //
	LeadSource string     // optional, used as a normalization bucket
	Email      string     // optional contact email, hygiene checks only
	Phone      string     // optional contact phone, hygiene checks only
}

// Won reports whether the deal converted.
func (d Deal) Won() bool { return d.Status == StatusWon }

// Closed reports whether the deal reached a terminal status.
func (d Deal) Closed() bool { return d.Status.Terminal() }
