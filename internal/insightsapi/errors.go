package insightsapi

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks account-level auth failures. These are fatal to the
// whole collection run, unlike per-dimension fetch failures.
var ErrUnauthorized = errors.New("ads platform authorization denied")

// APIError is the decoded JSON error envelope returned by the platform.
type APIError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ads platform error (code %d, http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Transient reports whether the error is worth retrying. Server-side
// failures are transient; client errors are permanent.
func (e *APIError) Transient() bool {
	return e.HTTPStatus >= 500
}

// oauthErrorCode is the platform's error code for invalid or expired tokens.
const oauthErrorCode = 190

// IsAuthError reports whether the envelope describes an authorization
// failure rather than a bad request.
func (e *APIError) IsAuthError() bool {
	return e.HTTPStatus == 401 || e.HTTPStatus == 403 ||
		e.Code == oauthErrorCode || e.Type == "OAuthException"
}
