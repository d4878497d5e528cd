package pto

import (
	"fmt"

	"ptocal/models"
)

// Error is a typed policy failure: a stable code plus a human-readable
// message echoing the offending field or value.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &Error{Code: "validationError", Message: msg}
}

func NewEntitlementError(msg string) error {
	return &Error{Code: "entitlementExceeded", Message: msg}
}

func NewOverlapError(msg string) error {
	return &Error{Code: "overlapError", Message: msg}
}

// DayResult is the outcome of one day's create in a day-mode batch.
type DayResult struct {
	Date  string        `json:"date"`
	Event *models.Event `json:"event,omitempty"`
	Err   error         `json:"-"`
}

// BatchError aggregates a partially failed day-mode batch: which days were
// created and which failed. Successfully created events stay in place; there
// is no automatic rollback.
type BatchError struct {
	Results []DayResult
}

func (e *BatchError) Error() string {
	failed := 0
	for _, r := range e.Results {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("batchError: %d of %d day events failed", failed, len(e.Results))
}
