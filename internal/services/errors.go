package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for missing records
var (
	ErrGrievanceNotFound   = errors.New("grievance not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrInternshipNotFound  = errors.New("internship not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDomainNotFound      = errors.New("domain not found")

	// ErrUnauthenticated marks a request whose caller has no resolvable
	// governance record.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrAccountBlocked marks a caller whose account was blocked by an
	// admin; checked before any role test.
	ErrAccountBlocked = errors.New("account is blocked")
)

// PermissionError describes a denied operation
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ConflictError describes a request rejected by a uniqueness or state
// constraint, e.g. a second application to the same posting.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s: %s", e.Resource, e.Reason)
}

func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}

// IsConflictError reports whether err is a conflict
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFoundError reports whether err is one of the missing-record sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrGrievanceNotFound) ||
		errors.Is(err, ErrOpportunityNotFound) ||
		errors.Is(err, ErrInternshipNotFound) ||
		errors.Is(err, ErrApplicationNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDomainNotFound)
}
