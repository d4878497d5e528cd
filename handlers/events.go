package handlers

import (
	"net/http"
	"sync"
	"time"

	"ptocal/services/calendar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventHandler exposes the sync client's CRUD surface, mirroring the
// administrative endpoints of the original service.
type EventHandler struct {
	Client calendar.SyncClient
	Logger *zap.Logger
}

func NewEventHandler(client calendar.SyncClient, logger *zap.Logger) *EventHandler {
	return &EventHandler{Client: client, Logger: logger}
}

// FindCalendarHandler resolves the default PTO calendar.
func (h *EventHandler) FindCalendarHandler(c *gin.Context) {
	cal, err := h.Client.FindDefaultCalendar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

// FindEventsHandler lists events, optionally filtered by a free-text query.
func (h *EventHandler) FindEventsHandler(c *gin.Context) {
	events, err := h.Client.ListEvents(c.Request.Context(), calendar.ListQuery{
		Query: c.Query("query"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"size": len(events), "items": events})
}

// GetEventHandler fetches one event by id.
func (h *EventHandler) GetEventHandler(c *gin.Context) {
	event, err := h.Client.GetEvent(c.Request.Context(), c.Query("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEventHandler creates a raw calendar event without policy checks.
func (h *EventHandler) CreateEventHandler(c *gin.Context) {
	var input struct {
		Start         time.Time `json:"start"`
		End           time.Time `json:"end"`
		EmployeeName  string    `json:"employeeName"`
		EmployeeEmail string    `json:"employeeEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	event, err := h.Client.CreateEvent(c.Request.Context(), calendar.CreateEventInput{
		Start:         input.Start,
		End:           input.End,
		EmployeeName:  input.EmployeeName,
		EmployeeEmail: input.EmployeeEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// UpdateEventHandler rewrites an event's start/end.
func (h *EventHandler) UpdateEventHandler(c *gin.Context) {
	var input struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	event, err := h.Client.UpdateEvent(c.Request.Context(), c.Query("id"), input.Start, input.End)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEventHandler removes one event by id.
func (h *EventHandler) DeleteEventHandler(c *gin.Context) {
	if err := h.Client.DeleteEvent(c.Request.Context(), c.Query("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": time.Now().UTC().Format(time.RFC3339)})
}

// ClearCalendarHandler deletes every event on the calendar, observing every
// outcome before responding.
func (h *EventHandler) ClearCalendarHandler(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.Client.ListEvents(ctx, calendar.ListQuery{})
	if err != nil {
		respondError(c, err)
		return
	}

	errs := make([]error, len(events))
	var wg sync.WaitGroup
	for i, event := range events {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = h.Client.DeleteEvent(ctx, id)
		}(i, event.ID)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		h.Logger.Sugar().Warnf("clear calendar: %d of %d deletes failed", failed, len(events))
	}
	c.JSON(http.StatusOK, gin.H{"cleared": len(events) - failed, "failed": failed})
}
