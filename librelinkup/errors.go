package librelinkup

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid librelinkup configuration")
	// ErrUnknownProfile indicates a client profile name that is not registered
	ErrUnknownProfile = errors.New("unknown client profile")
	// ErrEmptyResponse indicates the login endpoint answered with no payload
	ErrEmptyResponse = errors.New("empty response from LibreLinkUp")
	// ErrPrivacyPolicyAcceptanceRequired indicates the account never completed its first login
	ErrPrivacyPolicyAcceptanceRequired = errors.New("privacy policy acceptance required: log in once with the official LibreLinkUp app and accept the terms")
	// ErrAuthenticationRejected indicates the server refused the credentials
	ErrAuthenticationRejected = errors.New("authentication rejected")
	// ErrUnknown indicates a login status this client does not understand
	ErrUnknown = errors.New("unknown LibreLinkUp error")
)

// fallbackRejectMessage is used when a status 2 reply carries no error object.
const fallbackRejectMessage = "invalid username or password"

// RejectedError carries the server supplied reason for a refused login
type RejectedError struct {
	Message string
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAuthenticationRejected, e.Message)
}

// Unwrap returns ErrAuthenticationRejected
func (e *RejectedError) Unwrap() error {
	return ErrAuthenticationRejected
}

// StatusError is returned for login statuses without a known meaning
type StatusError struct {
	Status int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUnknown, e.Status)
}

// Unwrap returns ErrUnknown
func (e *StatusError) Unwrap() error {
	return ErrUnknown
}

// RedirectError tells the caller the account is served from another region.
type RedirectError struct {
	Region string
}

// Error implements the error interface
func (e *RedirectError) Error() string {
	return fmt.Sprintf("account belongs to region %q, retry with that region", e.Region)
}

// TransportError wraps a network level failure
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a payload did not match the expected shape
type DecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying decode error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx answer from a data endpoint
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("librelinkup API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("librelinkup API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an expired or invalid token
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
