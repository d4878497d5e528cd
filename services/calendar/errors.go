package calendar

import "fmt"

// NotFoundError reports a calendar or event that could not be resolved.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("notFoundError: %s", e.Message)
}

// AuthError reports a failed refresh exchange, or an authorization failure
// that persisted after the single built-in retry.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authError: %s", e.Message)
}

// PermissionError reports insufficient scope for the attempted operation.
// It is never retried.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permissionError: %s", e.Message)
}

// RemoteError carries any other unexpected remote status with its body.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remoteError: unexpected HTTP status %d: %s", e.Status, e.Body)
}
