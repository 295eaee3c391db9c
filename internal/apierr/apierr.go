// Package apierr defines the coded errors returned across the API boundary.
// Every rejection carries a stable machine code and an HTTP status; handlers
// serialize them verbatim so clients can switch on the code.
package apierr

import "net/http"

// Error is a coded API rejection.
type Error struct {
	Code    string
	Status  int
	Details map[string]any
}

func (e *Error) Error() string { return e.Code }

// With returns a copy of the error carrying an extra response field, e.g.
// the capacity that was exceeded or the distance that was too far.
func (e *Error) With(key string, value any) *Error {
	dup := &Error{Code: e.Code, Status: e.Status, Details: make(map[string]any, len(e.Details)+1)}
	for k, v := range e.Details {
		dup.Details[k] = v
	}
	dup.Details[key] = value
	return dup
}

// New builds a coded error.
func New(code string, status int) *Error {
	return &Error{Code: code, Status: status}
}

// Validation errors.
var (
	ErrInvalidJSON        = New("INVALID_JSON", http.StatusBadRequest)
	ErrMissingID          = New("MISSING_ID", http.StatusBadRequest)
	ErrMissingDriverID    = New("MISSING_DRIVER_ID", http.StatusBadRequest)
	ErrMissingRiderID     = New("MISSING_RIDER_ID", http.StatusBadRequest)
	ErrMissingRequestID   = New("MISSING_REQUEST_ID", http.StatusBadRequest)
	ErrInvalidLatLng      = New("INVALID_LAT_LNG", http.StatusBadRequest)
	ErrInvalidPhone       = New("INVALID_PHONE", http.StatusBadRequest)
	ErrInvalidRiderPhone  = New("INVALID_RIDER_PHONE", http.StatusBadRequest)
	ErrInvalidDriverPhone = New("INVALID_DRIVER_PHONE", http.StatusBadRequest)
	ErrInvalidName        = New("INVALID_NAME", http.StatusBadRequest)
	ErrInvalidCode        = New("INVALID_CODE", http.StatusBadRequest)
)

// Invariant-violation errors.
var (
	ErrRiderPhoneReserved = New("RIDER_PHONE_RESERVED", http.StatusConflict)
	ErrRiderPhoneInUse    = New("RIDER_PHONE_IN_USE", http.StatusConflict)
	ErrNoDrivers          = New("NO_DRIVERS", http.StatusNotFound)
	ErrDriverNotFound     = New("DRIVER_NOT_FOUND", http.StatusNotFound)
	ErrDriverNoLocation   = New("DRIVER_NO_LOCATION", http.StatusConflict)
	ErrDriverAtCapacity   = New("DRIVER_AT_CAPACITY", http.StatusConflict)
	ErrTooFar             = New("TOO_FAR", http.StatusConflict)
	ErrRequestNotFound    = New("REQUEST_NOT_FOUND", http.StatusNotFound)
	ErrRequestNotPending  = New("REQUEST_NOT_PENDING", http.StatusConflict)
	ErrNotTargetDriver    = New("NOT_TARGET_DRIVER", http.StatusForbidden)
	ErrNotAssignedDriver  = New("NOT_ASSIGNED_DRIVER", http.StatusForbidden)
)

// Authentication errors.
var (
	ErrRoomCodeRequired    = New("ROOM_CODE_REQUIRED", http.StatusUnauthorized)
	ErrPhoneInUse          = New("PHONE_IN_USE", http.StatusConflict)
	ErrCodeInUse           = New("CODE_IN_USE", http.StatusConflict)
	ErrDriverNotRegistered = New("DRIVER_NOT_REGISTERED", http.StatusNotFound)
	ErrInvalidSession      = New("INVALID_SESSION", http.StatusUnauthorized)
	ErrSessionExpired      = New("SESSION_EXPIRED", http.StatusUnauthorized)
)
