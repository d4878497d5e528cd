package models

import (
	"math"
	"time"
)

// Event is the normalized calendar event returned to callers. Raw remote-API
// shapes never leave the calendar service.
type Event struct {
	ID            string    `json:"id"`            // Assigned by the remote calendar
	Summary       string    `json:"summary"`       // e.g. "PTO: Jane Doe"
	Description   string    `json:"description"`   // Employee name
	Start         time.Time `json:"start"`         // Absolute instant, start < end always
	End           time.Time `json:"end"`           // Absolute instant
	CreatorEmail  string    `json:"creatorEmail"`  // Account that created the event
	Attendees     []string  `json:"attendees"`     // Attendee emails only
	Status        string    `json:"status"`        // e.g. "confirmed"
	TimeZone      string    `json:"timeZone"`      // IANA name from the event start
	DurationHours float64   `json:"durationHours"` // Derived, rounded to 2 decimals
	IsFullDay     bool      `json:"isFullDay"`     // Derived, duration >= business day
}

// Derive fills the computed fields from the stored start/end.
func (e *Event) Derive(businessDayHours int) {
	e.DurationHours = RoundHours(e.End.Sub(e.Start))
	e.IsFullDay = e.DurationHours >= float64(businessDayHours)
}

// RoundHours converts a duration to hours rounded to 2 decimals.
func RoundHours(d time.Duration) float64 {
	return math.Round(100*d.Hours()) / 100
}
