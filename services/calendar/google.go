package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"ptocal/models"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Page size requested from the events listing endpoint. 2500 is the API
// maximum; together with pageToken paging it guarantees no overlap-relevant
// event is silently dropped.
const listPageSize = 2500

// GoogleSyncClient implements SyncClient against the Google Calendar v3 REST
// API. The resolved default calendar is cached for the process lifetime.
type GoogleSyncClient struct {
	BaseURL          string
	CalendarName     string
	BusinessDayHours int
	Session          *SessionManager
	HTTPClient       *http.Client
	Logger           *zap.Logger

	defaultCalendar atomic.Value // models.Calendar
}

// NewGoogleSyncClient builds the production sync client.
func NewGoogleSyncClient(calendarName string, businessDayHours int, session *SessionManager, logger *zap.Logger) *GoogleSyncClient {
	return &GoogleSyncClient{
		BaseURL:          defaultBaseURL,
		CalendarName:     calendarName,
		BusinessDayHours: businessDayHours,
		Session:          session,
		HTTPClient:       http.DefaultClient,
		Logger:           logger,
	}
}

// doFetch performs one authenticated call. On a 401 it refreshes the session
// once and retries the call once; a second authorization failure is fatal.
// Any status other than expectedStatus maps to the error taxonomy.
func (c *GoogleSyncClient) doFetch(ctx context.Context, method, rawURL string, payload []byte, expectedStatus int) ([]byte, error) {
	makeRequest := func() (*http.Response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, &RemoteError{Status: 0, Body: err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+c.Session.AccessToken())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.HTTPClient.Do(req)
	}

	c.Logger.Sugar().Debugf("fetching [%s]: %s", method, rawURL)
	resp, err := makeRequest()
	if err != nil {
		return nil, &RemoteError{Status: 0, Body: err.Error()}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.Session.LoginWithRefreshToken(ctx); err != nil {
			return nil, err
		}
		resp, err = makeRequest()
		if err != nil {
			return nil, &RemoteError{Status: 0, Body: err.Error()}
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Body: err.Error()}
	}
	switch {
	case resp.StatusCode == expectedStatus:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Message: "authorization still failing after refresh"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &PermissionError{Message: "insufficient scope for " + method + " " + rawURL}
	default:
		c.Logger.Sugar().Warnf("unexpected HTTP status: expected %d, received %d", expectedStatus, resp.StatusCode)
		return nil, &RemoteError{Status: resp.StatusCode, Body: string(body)}
	}
}

// FindDefaultCalendar resolves the PTO calendar by its display name among the
// caller's calendar list. An ambiguous name is an error, not resolved
// arbitrarily.
func (c *GoogleSyncClient) FindDefaultCalendar(ctx context.Context) (models.Calendar, error) {
	body, err := c.doFetch(ctx, http.MethodGet, c.BaseURL+"/users/me/calendarList", nil, http.StatusOK)
	if err != nil {
		return models.Calendar{}, err
	}
	var list calendarListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return models.Calendar{}, &RemoteError{Status: http.StatusOK, Body: "decoding calendar list: " + err.Error()}
	}

	var matches []calendarResource
	for _, item := range list.Items {
		if item.Summary == c.CalendarName {
			matches = append(matches, item)
		}
	}
	if len(matches) != 1 {
		return models.Calendar{}, &NotFoundError{Message: fmt.Sprintf("could not find calendar named [%s]: %d matches", c.CalendarName, len(matches))}
	}

	cal := models.Calendar{ID: matches[0].ID, Summary: matches[0].Summary, TimeZone: matches[0].TimeZone}
	c.defaultCalendar.Store(cal)
	c.Logger.Sugar().Infof("calendar: %s", cal.ID)
	return cal, nil
}

// resolveCalendar returns the cached default calendar, resolving it on first
// use.
func (c *GoogleSyncClient) resolveCalendar(ctx context.Context) (models.Calendar, error) {
	if cal, ok := c.defaultCalendar.Load().(models.Calendar); ok && cal.ID != "" {
		return cal, nil
	}
	return c.FindDefaultCalendar(ctx)
}

// ListEvents returns the matching events sorted ascending by start instant,
// paging through the remote service as needed.
func (c *GoogleSyncClient) ListEvents(ctx context.Context, query ListQuery) ([]models.Event, error) {
	cal, err := c.resolveCalendar(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if query.Query != "" {
		params.Set("q", query.Query)
	}
	if query.TimeMin != nil {
		params.Set("timeMin", query.TimeMin.Format(time.RFC3339))
	}
	if query.TimeMax != nil {
		params.Set("timeMax", query.TimeMax.Format(time.RFC3339))
	}
	params.Set("maxResults", strconv.Itoa(listPageSize))

	var events []models.Event
	for {
		body, err := c.doFetch(ctx, http.MethodGet, c.BaseURL+"/calendars/"+url.PathEscape(cal.ID)+"/events?"+params.Encode(), nil, http.StatusOK)
		if err != nil {
			return nil, err
		}
		var page eventListResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &RemoteError{Status: http.StatusOK, Body: "decoding event list: " + err.Error()}
		}
		for _, raw := range page.Items {
			event, err := normalizeEvent(raw, c.BusinessDayHours)
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}
		if page.NextPageToken == "" {
			break
		}
		params.Set("pageToken", page.NextPageToken)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	c.Logger.Sugar().Debugf("%d events found", len(events))
	return events, nil
}

// getRawEvent fetches the full wire resource for an event id.
func (c *GoogleSyncClient) getRawEvent(ctx context.Context, id string) (eventResource, error) {
	if id == "" {
		return eventResource{}, &NotFoundError{Message: "finding event by ID without an ID is not allowed"}
	}
	cal, err := c.resolveCalendar(ctx)
	if err != nil {
		return eventResource{}, err
	}
	body, err := c.doFetch(ctx, http.MethodGet, c.BaseURL+"/calendars/"+url.PathEscape(cal.ID)+"/events/"+url.PathEscape(id), nil, http.StatusOK)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && (remote.Status == http.StatusNotFound || remote.Status == http.StatusGone) {
			return eventResource{}, &NotFoundError{Message: fmt.Sprintf("event with ID [%s] was not found", id)}
		}
		return eventResource{}, err
	}
	var raw eventResource
	if err := json.Unmarshal(body, &raw); err != nil {
		return eventResource{}, &RemoteError{Status: http.StatusOK, Body: "decoding event: " + err.Error()}
	}
	return raw, nil
}

func (c *GoogleSyncClient) GetEvent(ctx context.Context, id string) (models.Event, error) {
	raw, err := c.getRawEvent(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	return normalizeEvent(raw, c.BusinessDayHours)
}

// CreateEvent books the PTO event. The attendee is recorded as accepted and
// mutations are sent with sendUpdates=none so no invitations go out.
func (c *GoogleSyncClient) CreateEvent(ctx context.Context, input CreateEventInput) (models.Event, error) {
	cal, err := c.resolveCalendar(ctx)
	if err != nil {
		return models.Event{}, err
	}
	payload, err := json.Marshal(eventResource{
		Summary:     "PTO: " + input.EmployeeName,
		Description: input.EmployeeName,
		Start:       eventTime{DateTime: input.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: input.End.Format(time.RFC3339)},
		Attendees:   []eventAttendee{{Email: input.EmployeeEmail, ResponseStatus: "accepted"}},
	})
	if err != nil {
		return models.Event{}, &RemoteError{Status: 0, Body: "encoding event: " + err.Error()}
	}
	body, err := c.doFetch(ctx, http.MethodPost, c.BaseURL+"/calendars/"+url.PathEscape(cal.ID)+"/events?sendUpdates=none", payload, http.StatusOK)
	if err != nil {
		return models.Event{}, err
	}
	var raw eventResource
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Event{}, &RemoteError{Status: http.StatusOK, Body: "decoding created event: " + err.Error()}
	}
	return normalizeEvent(raw, c.BusinessDayHours)
}

// UpdateEvent rewrites only the start and end of an existing event. The
// remote API has no partial update, so the full fetched resource is pushed
// back.
func (c *GoogleSyncClient) UpdateEvent(ctx context.Context, id string, start, end time.Time) (models.Event, error) {
	if id == "" {
		return models.Event{}, &NotFoundError{Message: "updating event by ID without an ID is not allowed"}
	}
	raw, err := c.getRawEvent(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	cal, err := c.resolveCalendar(ctx)
	if err != nil {
		return models.Event{}, err
	}
	raw.Start = eventTime{DateTime: start.Format(time.RFC3339), TimeZone: raw.Start.TimeZone}
	raw.End = eventTime{DateTime: end.Format(time.RFC3339), TimeZone: raw.End.TimeZone}
	payload, err := json.Marshal(raw)
	if err != nil {
		return models.Event{}, &RemoteError{Status: 0, Body: "encoding event: " + err.Error()}
	}
	body, err := c.doFetch(ctx, http.MethodPut, c.BaseURL+"/calendars/"+url.PathEscape(cal.ID)+"/events/"+url.PathEscape(id)+"?sendUpdates=none", payload, http.StatusOK)
	if err != nil {
		return models.Event{}, err
	}
	var updated eventResource
	if err := json.Unmarshal(body, &updated); err != nil {
		return models.Event{}, &RemoteError{Status: http.StatusOK, Body: "decoding updated event: " + err.Error()}
	}
	return normalizeEvent(updated, c.BusinessDayHours)
}

// DeleteEvent removes an event, confirming it exists first.
func (c *GoogleSyncClient) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return &NotFoundError{Message: "deleting event by ID without an ID is not allowed"}
	}
	if _, err := c.getRawEvent(ctx, id); err != nil {
		return err
	}
	cal, err := c.resolveCalendar(ctx)
	if err != nil {
		return err
	}
	if _, err := c.doFetch(ctx, http.MethodDelete, c.BaseURL+"/calendars/"+url.PathEscape(cal.ID)+"/events/"+url.PathEscape(id), nil, http.StatusNoContent); err != nil {
		return err
	}
	c.Logger.Sugar().Infof("event with ID %s deleted", id)
	return nil
}
