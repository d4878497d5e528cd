package calendar

import (
	"time"

	"ptocal/models"
)

// Wire shapes of the Google Calendar v3 API. Only the fields this service
// reads or writes are declared.

type calendarListResponse struct {
	Items []calendarResource `json:"items"`
}

type calendarResource struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventListResponse struct {
	Items         []eventResource `json:"items"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

type eventResource struct {
	ID          string          `json:"id,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	Start       eventTime       `json:"start"`
	End         eventTime       `json:"end"`
	Creator     *eventCreator   `json:"creator,omitempty"`
	Attendees   []eventAttendee `json:"attendees,omitempty"`
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventCreator struct {
	Email string `json:"email,omitempty"`
}

type eventAttendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// normalizeEvent maps a raw event resource to the normalized Event shape.
func normalizeEvent(raw eventResource, businessDayHours int) (models.Event, error) {
	start, err := parseEventTime(raw.Start)
	if err != nil {
		return models.Event{}, err
	}
	end, err := parseEventTime(raw.End)
	if err != nil {
		return models.Event{}, err
	}
	event := models.Event{
		ID:          raw.ID,
		Summary:     raw.Summary,
		Description: raw.Description,
		Status:      raw.Status,
		Start:       start,
		End:         end,
		TimeZone:    raw.Start.TimeZone,
	}
	if raw.Creator != nil {
		event.CreatorEmail = raw.Creator.Email
	}
	for _, attendee := range raw.Attendees {
		event.Attendees = append(event.Attendees, attendee.Email)
	}
	event.Derive(businessDayHours)
	return event, nil
}

// parseEventTime reads a wire timestamp. All-day events carry only a civil
// date, which is read as midnight UTC of that date.
func parseEventTime(raw eventTime) (time.Time, error) {
	if raw.DateTime != "" {
		t, err := time.Parse(time.RFC3339, raw.DateTime)
		if err != nil {
			return time.Time{}, &RemoteError{Status: 200, Body: "unparsable event time: " + raw.DateTime}
		}
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		return time.Time{}, &RemoteError{Status: 200, Body: "unparsable event date: " + raw.Date}
	}
	return t, nil
}
