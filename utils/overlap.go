package utils

import "time"

// Interval is a half-open [Start, End) time span.
type Interval struct {
	Start time.Time
	End   time.Time
}

// InvalidIntervalError reports a candidate interval of zero or negative
// length. Such intervals are never compared against anything.
type InvalidIntervalError struct {
	Message string
}

func (e *InvalidIntervalError) Error() string {
	return e.Message
}

// HasOverlap reports whether the candidate interval conflicts with any of the
// existing intervals. Touching boundaries are not conflicts; back-to-back
// bookings are legal.
func HasOverlap(events []Interval, candidate Interval) (bool, error) {
	if candidate.Start.After(candidate.End) {
		return false, &InvalidIntervalError{Message: "event start time can't be later than event end time"}
	}
	if candidate.Start.Equal(candidate.End) {
		return false, &InvalidIntervalError{Message: "event start time can't be the same as the event end time"}
	}
	for _, event := range events {
		// Candidate start falls inside the existing event.
		startOverlaps := !candidate.Start.Before(event.Start) && candidate.Start.Before(event.End)
		// Candidate end falls inside the existing event.
		endOverlaps := candidate.End.After(event.Start) && !candidate.End.After(event.End)
		// Candidate completely encompasses the existing event.
		encompasses := !candidate.Start.After(event.Start) && !candidate.End.Before(event.End)
		if startOverlaps || endOverlaps || encompasses {
			return true, nil
		}
	}
	return false, nil
}
