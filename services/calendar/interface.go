package calendar

import (
	"context"
	"time"

	"ptocal/models"
)

// ListQuery narrows an event listing. A nil time bound means "no bound" on
// that side.
type ListQuery struct {
	Query   string
	TimeMin *time.Time
	TimeMax *time.Time
}

// CreateEventInput is the payload for a new PTO event.
type CreateEventInput struct {
	Start         time.Time
	End           time.Time
	EmployeeName  string
	EmployeeEmail string
}

// SyncClient defines typed CRUD over the remote calendar's event API. The
// production implementation talks to Google Calendar; the simulation
// implementation satisfies the same contract over an in-memory store.
type SyncClient interface {
	// FindDefaultCalendar resolves the PTO calendar by display name. Zero or
	// more than one match is an error.
	FindDefaultCalendar(ctx context.Context) (models.Calendar, error)
	// ListEvents returns events sorted ascending by start instant. Paging
	// through the remote service is the client's responsibility.
	ListEvents(ctx context.Context, query ListQuery) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	CreateEvent(ctx context.Context, input CreateEventInput) (models.Event, error)
	UpdateEvent(ctx context.Context, id string, start, end time.Time) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
