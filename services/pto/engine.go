package pto

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"ptocal/models"
	"ptocal/services/calendar"
	"ptocal/utils"
)

// RequestPTO runs the booking pipeline: validate request shape, gather the
// employee's year of events, branch on create vs update, validate entitlement
// and non-overlap, then commit through the sync client. Every step is
// sequential and short-circuits on the first error.
func (s *DefaultPTOService) RequestPTO(ctx context.Context, req models.PTORequest) ([]models.Event, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	mu := s.lockFor(req.Employee)
	mu.Lock()
	defer mu.Unlock()

	events, hoursTaken, err := s.employeeYear(ctx, req)
	if err != nil {
		return nil, err
	}

	switch {
	case req.IsUpdate():
		return s.updatePTO(ctx, req, events, hoursTaken)
	case req.DaysRequested >= 1:
		return s.createDays(ctx, req, events, hoursTaken)
	default:
		return s.createHours(ctx, req, events, hoursTaken)
	}
}

// validateRequest enforces the request-shape invariants once, at the
// boundary.
func validateRequest(req models.PTORequest) error {
	if req.Employee.TimeZone == "" {
		return NewValidationError("missing required field [employee.timeZone]")
	}
	if req.StartDate == "" {
		return NewValidationError("missing required field [startDate]")
	}
	days := req.DaysRequested
	if days <= 0 {
		return NewValidationError(fmt.Sprintf("days requested %v must be greater than 0", days))
	}
	if days >= 1 {
		if days != math.Floor(days) {
			return NewValidationError(fmt.Sprintf("days requested %v can not have fractions when requesting one or more days", days))
		}
		return nil
	}
	if req.StartTime == "" {
		return NewValidationError("missing required time [startTime] for a partial-day request")
	}
	if req.EndTime == "" {
		return NewValidationError("missing required time [endTime] for a partial-day request")
	}
	return nil
}

// employeeYear fetches the employee's events for the current calendar year,
// time-boxed to [Jan 1, Jan 1 of next year) in the employee's timezone, and
// sums the hours already consumed.
func (s *DefaultPTOService) employeeYear(ctx context.Context, req models.PTORequest) ([]models.Event, float64, error) {
	year := s.now().Year()
	timeMin, err := utils.ResolveDateTime(fmt.Sprintf("%d-01-01", year), "00:00", req.Employee.TimeZone)
	if err != nil {
		return nil, 0, err
	}
	timeMax, err := utils.ResolveDateTime(fmt.Sprintf("%d-01-01", year+1), "00:00", req.Employee.TimeZone)
	if err != nil {
		return nil, 0, err
	}

	events, err := s.Client.ListEvents(ctx, calendar.ListQuery{
		Query:   req.Employee.Email,
		TimeMin: &timeMin,
		TimeMax: &timeMax,
	})
	if err != nil {
		return nil, 0, err
	}

	var hoursTaken float64
	for _, event := range events {
		hoursTaken += event.End.Sub(event.Start).Hours()
	}
	return events, hoursTaken, nil
}

// requestedWindow resolves the interval for a single-day request: explicit
// times when both are given, the configured business-day block otherwise.
func (s *DefaultPTOService) requestedWindow(req models.PTORequest) (time.Time, time.Time, error) {
	startTime, endTime := req.StartTime, req.EndTime
	if startTime == "" || endTime == "" {
		startTime, endTime = s.Hours.Start, s.Hours.End
	}
	start, err := utils.ResolveDateTime(req.StartDate, startTime, req.Employee.TimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := utils.ResolveDateTime(req.StartDate, endTime, req.Employee.TimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// updatePTO rewrites an existing event's interval. The replaced event's
// duration is credited against the entitlement and removed from the overlap
// comparison set.
func (s *DefaultPTOService) updatePTO(ctx context.Context, req models.PTORequest, events []models.Event, hoursTaken float64) ([]models.Event, error) {
	oldEvent, err := s.Client.GetEvent(ctx, *req.EventID)
	if err != nil {
		return nil, err
	}

	start, end, err := s.requestedWindow(req)
	if err != nil {
		return nil, err
	}
	hoursRequested := end.Sub(start).Hours()
	if hoursRequested > float64(s.Hours.Day) {
		return nil, NewValidationError(fmt.Sprintf("requesting more than %d hours is not allowed, you should request a full day", s.Hours.Day))
	}

	credit := oldEvent.End.Sub(oldEvent.Start).Hours()
	if err := s.validateEntitlement(hoursTaken, credit, hoursRequested, req.EntitledDays); err != nil {
		return nil, err
	}

	// The overlap may be with the event being replaced, so drop it from the
	// comparison set first.
	remaining := events[:0:0]
	for _, event := range events {
		if event.ID != oldEvent.ID {
			remaining = append(remaining, event)
		}
	}
	if err := s.validateOverlap(remaining, start, end); err != nil {
		return nil, err
	}

	updated, err := s.Client.UpdateEvent(ctx, oldEvent.ID, start, end)
	if err != nil {
		return nil, err
	}
	s.Logger.Sugar().Infof("PTO event %s updated for %s", updated.ID, req.Employee.Email)
	return []models.Event{updated}, nil
}

// createDays books one full business day per requested day. Every synthesized
// interval is checked for overlap before any event is created; the creates
// themselves fan out concurrently and every outcome is observed.
func (s *DefaultPTOService) createDays(ctx context.Context, req models.PTORequest, events []models.Event, hoursTaken float64) ([]models.Event, error) {
	date, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("start date [%s] is not a valid date", req.StartDate))
	}
	days := int(req.DaysRequested)

	// Re-resolve the wall-clock block per day so the local times stay
	// constant across a DST transition.
	type window struct {
		date       string
		start, end time.Time
	}
	windows := make([]window, 0, days)
	for i := 0; i < days; i++ {
		civil := date.AddDate(0, 0, i).Format("2006-01-02")
		start, err := utils.ResolveDateTime(civil, s.Hours.Start, req.Employee.TimeZone)
		if err != nil {
			return nil, err
		}
		end, err := utils.ResolveDateTime(civil, s.Hours.End, req.Employee.TimeZone)
		if err != nil {
			return nil, err
		}
		if err := s.validateOverlap(events, start, end); err != nil {
			return nil, err
		}
		windows = append(windows, window{date: civil, start: start, end: end})
	}

	perDay := windows[0].end.Sub(windows[0].start).Hours()
	if err := s.validateEntitlement(hoursTaken, 0, perDay*float64(days), req.EntitledDays); err != nil {
		return nil, err
	}

	// All-settled fan-out: a failed day never aborts the others, and created
	// events stay in place on partial failure.
	results := make([]DayResult, days)
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i int, w window) {
			defer wg.Done()
			event, err := s.Client.CreateEvent(ctx, calendar.CreateEventInput{
				Start:         w.start,
				End:           w.end,
				EmployeeName:  req.Employee.Name,
				EmployeeEmail: req.Employee.Email,
			})
			if err != nil {
				results[i] = DayResult{Date: w.date, Err: err}
				return
			}
			results[i] = DayResult{Date: w.date, Event: &event}
		}(i, w)
	}
	wg.Wait()

	created := make([]models.Event, 0, days)
	failed := false
	for _, result := range results {
		if result.Err != nil {
			failed = true
			continue
		}
		created = append(created, *result.Event)
	}
	if failed {
		return created, &BatchError{Results: results}
	}
	s.Logger.Sugar().Infof("%d PTO events created for %s", len(created), req.Employee.Email)
	return created, nil
}

// createHours books a single partial-day event from the explicit times.
func (s *DefaultPTOService) createHours(ctx context.Context, req models.PTORequest, events []models.Event, hoursTaken float64) ([]models.Event, error) {
	start, end, err := s.requestedWindow(req)
	if err != nil {
		return nil, err
	}
	hoursRequested := end.Sub(start).Hours()
	if hoursRequested > float64(s.Hours.Day) {
		return nil, NewValidationError(fmt.Sprintf("requesting more than %d hours is not allowed, you should request a full day", s.Hours.Day))
	}
	if err := s.validateEntitlement(hoursTaken, 0, hoursRequested, req.EntitledDays); err != nil {
		return nil, err
	}
	if err := s.validateOverlap(events, start, end); err != nil {
		return nil, err
	}

	event, err := s.Client.CreateEvent(ctx, calendar.CreateEventInput{
		Start:         start,
		End:           end,
		EmployeeName:  req.Employee.Name,
		EmployeeEmail: req.Employee.Email,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Sugar().Infof("PTO event %s created for %s", event.ID, req.Employee.Email)
	return []models.Event{event}, nil
}

// validateEntitlement checks the annual allowance, crediting the duration of
// a replaced event.
func (s *DefaultPTOService) validateEntitlement(hoursTaken, credit, hoursRequested, entitledDays float64) error {
	totalHours := hoursTaken - credit + hoursRequested
	hoursEntitled := entitledDays * float64(s.Hours.Day)
	if totalHours > hoursEntitled {
		return NewEntitlementError(fmt.Sprintf(
			"request has been denied: this request exceeds the amount of hours you are entitled to request per year; you have already taken %.1f hours (%.1f days)",
			hoursTaken, hoursTaken/float64(s.Hours.Day)))
	}
	return nil
}

// validateOverlap delegates to the interval conflict check. Zero or negative
// candidate intervals surface the detector's own error unchanged.
func (s *DefaultPTOService) validateOverlap(events []models.Event, start, end time.Time) error {
	intervals := make([]utils.Interval, 0, len(events))
	for _, event := range events {
		intervals = append(intervals, utils.Interval{Start: event.Start, End: event.End})
	}
	overlaps, err := utils.HasOverlap(intervals, utils.Interval{Start: start, End: end})
	if err != nil {
		return err
	}
	if overlaps {
		return NewOverlapError(fmt.Sprintf(
			"event requested [%s - %s] overlaps an existing request; you had already requested that time off",
			start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return nil
}
