package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the link shortener application.

// ErrLinkNotFound is returned when no active link exists for a given hash or id.
var ErrLinkNotFound = errors.New("link not found")

// ErrLinkExpired is returned when a link exists but its expiry date has passed.
// Kept distinct from ErrLinkNotFound so callers can answer 410 instead of 404.
var ErrLinkExpired = errors.New("link expired")

// ErrNotAllowed is returned when a caller tries to mutate or list links it
// does not own. Anonymous links have no owner and always trigger it.
var ErrNotAllowed = errors.New("action not allowed")

// ErrHashGenerationFailed is returned when we can't generate a unique hash.
var ErrHashGenerationFailed = errors.New("failed to generate unique hash")

// ErrInvalidHash is returned when the hash format is invalid.
var ErrInvalidHash = errors.New("invalid hash format")

// ErrEmailAlreadyUsed is returned when registering with a taken email address.
var ErrEmailAlreadyUsed = errors.New("email already in use")

// ErrInvalidCredentials is returned on login with an unknown email or a wrong
// password. Deliberately a single error so the API can't be used to probe
// which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a bearer token is missing, malformed,
// expired, or signed with the wrong key.
var ErrInvalidToken = errors.New("invalid authentication token")

// ErrUserNotFound is returned when a user id or email doesn't resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrClickFlushFailed is returned when flushing pending clicks for a link fails.
type ErrClickFlushFailed struct {
	LinkID string
	Reason string
}

func (e ErrClickFlushFailed) Error() string {
	return fmt.Sprintf("failed to flush clicks for link %s: %s", e.LinkID, e.Reason)
}

// ErrConfigLoad is returned when configuration loading fails.
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}
