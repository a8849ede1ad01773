package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnsupportedProxyScheme is returned for proxy URLs other than socks5, http and https.
	ErrUnsupportedProxyScheme = errors.New("unsupported proxy scheme: expected socks5, socks5h, http or https")

	// ErrInvalidBaseURL is returned when the API base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid API base URL")
)

// UpstreamError is a non-2xx response from the GitHub API.
type UpstreamError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the "message" field of the error payload, or the status
	// text when the payload has none.
	Message string

	Method string
	Path   string
}

// NewUpstreamError builds an UpstreamError without request details.
func NewUpstreamError(status int, message string) *UpstreamError {
	return &UpstreamError{Status: status, Message: message}
}

// newUpstreamErrorFromBody extracts the message from a GitHub error payload.
func newUpstreamErrorFromBody(status int, body []byte, method, path string) *UpstreamError {
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &UpstreamError{Status: status, Message: msg, Method: method, Path: path}
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("github: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("github: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// HTTPStatus returns the status code.
func (e *UpstreamError) HTTPStatus() int {
	return e.Status
}

// StatusOf returns the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status, true
	}
	return 0, false
}

// IsNotFound reports a 404.
func IsNotFound(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusNotFound
}

// IsUnauthorized reports a 401.
func IsUnauthorized(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusUnauthorized
}

// IsAccessBlocked reports a 403 or 451 whose message says access is blocked.
// GitHub answers this way for accounts and repositories disabled for terms
// of service violations.
func IsAccessBlocked(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.Status != http.StatusForbidden && ue.Status != http.StatusUnavailableForLegalReasons {
		return false
	}
	return strings.Contains(strings.ToLower(ue.Message), "access blocked")
}

// IsValidationFailed reports a 422 "Validation Failed". The search API
// returns it when the searched user hides their activity.
func IsValidationFailed(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Status == http.StatusUnprocessableEntity && strings.EqualFold(ue.Message, "Validation Failed")
}

// IsEmptyRepository reports the 409 GitHub returns when listing commits of a
// repository without any.
func IsEmptyRepository(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusConflict
}

// IsGone reports whether err means the resource is no longer reachable:
// not found, or blocked.
func IsGone(err error) bool {
	return IsNotFound(err) || IsAccessBlocked(err)
}
