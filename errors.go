package scout

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds mapped from HTTP status codes. A failed call returns an
// *APIError; match against these sentinels with errors.Is.
var (
	// ErrClient corresponds to a 400 response.
	ErrClient = errors.New("scout: bad request")
	// ErrACLDisabled corresponds to a 401 response, returned when ACL
	// related calls are made while ACLs are disabled on the server.
	ErrACLDisabled = errors.New("scout: acl support disabled")
	// ErrForbidden corresponds to a 403 response, returned when ACLs are
	// enabled and the token does not validate.
	ErrForbidden = errors.New("scout: forbidden")
	// ErrNotFound corresponds to a 404 response for calls that opt in to
	// strict not-found handling.
	ErrNotFound = errors.New("scout: not found")
	// ErrServer corresponds to a 500 response.
	ErrServer = errors.New("scout: internal server error")
)

// ErrKeyNotFound is returned by KV.Fetch when the key does not exist.
var ErrKeyNotFound = errors.New("scout: key not found")

// ErrLockHeld is returned by Lock.Acquire when another session already
// holds the key. Retry policy is the caller's concern.
var ErrLockHeld = errors.New("scout: lock not acquired")

// ErrACLFormat is returned when an ACL payload is missing required
// PolicyLink or ServiceIdentity fields.
var ErrACLFormat = errors.New("scout: malformed acl payload")

// APIError describes a non-2xx response from the server.
type APIError struct {
	// Status is the HTTP status code returned by the server.
	Status int
	// Body contains the raw response body bytes for diagnostics.
	Body []byte
}

func (e *APIError) Error() string {
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		return fmt.Sprintf("scout: status %d: %s", e.Status, body)
	}
	return fmt.Sprintf("scout: status %d", e.Status)
}

// Is maps the status code onto the sentinel error kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrClient:
		return e.Status == http.StatusBadRequest
	case ErrACLDisabled:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status == http.StatusInternalServerError
	}
	return false
}

// RequestError wraps a transport-level failure (connection refused, DNS,
// timeout, socket error). Callers never see the transport's own error
// hierarchy; everything below HTTP surfaces as one of these. Always
// retryable by the caller; the library never retries on its own.
type RequestError struct {
	// URI is the request target that failed.
	URI string
	// Err is the underlying transport error.
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("scout: request %s: %v", e.URI, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// LockError reports a failed lock acquisition.
type LockError struct {
	// Key is the KV key the lock attempt targeted.
	Key string
}

func (e *LockError) Error() string {
	return fmt.Sprintf("scout: lock not acquired for %q", e.Key)
}

// Is reports ErrLockHeld so callers can match without the key.
func (e *LockError) Is(target error) bool { return target == ErrLockHeld }

// IsRequestError reports whether err is a transport-level failure.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// StatusFromError returns the HTTP status carried by err, or 0 when err is
// not an *APIError.
func StatusFromError(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
