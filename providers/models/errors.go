package models

import "fmt"

// The generation client reports every final failure as exactly one of the
// types below so the caller can pick an actionable message. The retry loop
// consumes earlier failures; only the last attempt's class is surfaced.

// BackendUnavailableError means a connection to the backend could not be
// established at all.
type BackendUnavailableError struct {
	BaseURL string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend at %s is unreachable: %v", e.BaseURL, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// TimeoutError means the request deadline elapsed before a response arrived.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvalidCredentialError means the backend rejected the request as
// unauthorized, forbidden or malformed, which in practice means a bad or
// missing API key.
type InvalidCredentialError struct {
	StatusCode int
	Detail     string
}

func (e *InvalidCredentialError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend rejected the credential (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend rejected the credential (status %d)", e.StatusCode)
}

// RemoteError wraps any remaining remote failure, including protocol errors
// (a response without a usable readme field).
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote generation failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("remote generation failed: %s", e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }
