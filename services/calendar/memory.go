package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ptocal/models"

	"github.com/google/uuid"
)

// MemorySyncClient is the simulation-mode SyncClient. It satisfies the exact
// same contract as the Google-backed client over an in-memory event store so
// the policy engine can be exercised without network access.
type MemorySyncClient struct {
	CalendarName     string
	BusinessDayHours int

	mu     sync.Mutex
	events map[string]models.Event
}

// NewMemorySyncClient builds an empty simulation calendar.
func NewMemorySyncClient(calendarName string, businessDayHours int) *MemorySyncClient {
	return &MemorySyncClient{
		CalendarName:     calendarName,
		BusinessDayHours: businessDayHours,
		events:           make(map[string]models.Event),
	}
}

func (c *MemorySyncClient) FindDefaultCalendar(ctx context.Context) (models.Calendar, error) {
	return models.Calendar{ID: "simulation", Summary: c.CalendarName, TimeZone: "UTC"}, nil
}

func (c *MemorySyncClient) ListEvents(ctx context.Context, query ListQuery) ([]models.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []models.Event
	for _, event := range c.events {
		if !matchesQuery(event, query.Query) {
			continue
		}
		if query.TimeMin != nil && !event.End.After(*query.TimeMin) {
			continue
		}
		if query.TimeMax != nil && !event.Start.Before(*query.TimeMax) {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// matchesQuery mirrors the remote free-text search over the fields this
// service writes: summary, description and attendee emails.
func matchesQuery(event models.Event, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(event.Summary), q) ||
		strings.Contains(strings.ToLower(event.Description), q) {
		return true
	}
	for _, attendee := range event.Attendees {
		if strings.Contains(strings.ToLower(attendee), q) {
			return true
		}
	}
	return false
}

func (c *MemorySyncClient) GetEvent(ctx context.Context, id string) (models.Event, error) {
	if id == "" {
		return models.Event{}, &NotFoundError{Message: "finding event by ID without an ID is not allowed"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	event, ok := c.events[id]
	if !ok {
		return models.Event{}, &NotFoundError{Message: fmt.Sprintf("event with ID [%s] was not found", id)}
	}
	return event, nil
}

func (c *MemorySyncClient) CreateEvent(ctx context.Context, input CreateEventInput) (models.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	event := models.Event{
		ID:          uuid.New().String(),
		Summary:     "PTO: " + input.EmployeeName,
		Description: input.EmployeeName,
		Start:       input.Start,
		End:         input.End,
		Attendees:   []string{input.EmployeeEmail},
		Status:      "confirmed",
		TimeZone:    "UTC",
	}
	event.Derive(c.BusinessDayHours)
	c.events[event.ID] = event
	return event, nil
}

func (c *MemorySyncClient) UpdateEvent(ctx context.Context, id string, start, end time.Time) (models.Event, error) {
	if id == "" {
		return models.Event{}, &NotFoundError{Message: "updating event by ID without an ID is not allowed"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	event, ok := c.events[id]
	if !ok {
		return models.Event{}, &NotFoundError{Message: fmt.Sprintf("event with ID [%s] was not found", id)}
	}
	event.Start = start
	event.End = end
	event.Derive(c.BusinessDayHours)
	c.events[id] = event
	return event, nil
}

func (c *MemorySyncClient) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return &NotFoundError{Message: "deleting event by ID without an ID is not allowed"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[id]; !ok {
		return &NotFoundError{Message: fmt.Sprintf("event with ID [%s] was not found", id)}
	}
	delete(c.events, id)
	return nil
}
