package pto

import (
	"context"
	"sync"
	"time"

	"ptocal/models"
	"ptocal/services/calendar"

	"go.uber.org/zap"
)

// BusinessHours is the immutable business-day block: its length in hours
// (not 24) and the wall-clock bounds used to synthesize full-day events.
type BusinessHours struct {
	Day   int
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// PTOService turns a raw PTO request into validated calendar mutations.
type PTOService interface {
	// RequestPTO returns one event per calendar day touched by a
	// day-granularity request, exactly one for an hour-granularity request.
	RequestPTO(ctx context.Context, req models.PTORequest) ([]models.Event, error)
}

// DefaultPTOService implements PTOService against any SyncClient.
type DefaultPTOService struct {
	Client calendar.SyncClient
	Hours  BusinessHours
	Logger *zap.Logger

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time

	// Requests for the same employee are serialized around the
	// validate-then-commit section, closing the check-then-act window two
	// concurrent requests would otherwise race through.
	locks sync.Map // employee key -> *sync.Mutex
}

func (s *DefaultPTOService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPTOService) lockFor(employee models.Employee) *sync.Mutex {
	key := employee.ID
	if key == "" {
		key = employee.Email
	}
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
