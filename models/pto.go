package models

// Employee identifies the person the PTO is booked for. It is a value carried
// on each request; employees are not stored by this service.
type Employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"` // IANA name, e.g. "America/Toronto"
}

// PTORequest is the inbound booking request. A nil EventID means create; a
// non-nil one means the identified event is being rewritten.
type PTORequest struct {
	Employee      Employee `json:"employee"`
	EventID       *string  `json:"eventId"`
	DaysRequested float64  `json:"daysRequested"` // Whole number when >= 1, fraction when < 1
	EntitledDays  float64  `json:"entitledDays"`  // Annual allowance in days
	StartDate     string   `json:"startDate"`     // Civil date "YYYY-MM-DD"
	StartTime     string   `json:"startTime"`     // Required only when DaysRequested < 1
	EndTime       string   `json:"endTime"`       // Required only when DaysRequested < 1
}

// IsUpdate reports whether the request rewrites an existing event.
func (r PTORequest) IsUpdate() bool {
	return r.EventID != nil && *r.EventID != ""
}
