package ddns

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownToken is returned when an update names a token that was never
// issued. Distinct from rate limiting so clients can tell "never had access"
// from "try again later".
var ErrUnknownToken = errors.New("unknown token")

// ErrRateLimited is the sentinel matched by errors.Is against
// *RateLimitedError values.
var ErrRateLimited = errors.New("rate limited")

// ErrDuplicateHostname is returned when issuing a token for a hostname that
// already has one.
var ErrDuplicateHostname = errors.New("hostname already has a token")

// ErrHostnameNotFound is returned by operator commands naming a hostname
// with no issued token.
var ErrHostnameNotFound = errors.New("no token issued for hostname")

// RateLimitedError carries how long the caller must wait before the token
// leaves its cool-down window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Is makes errors.Is(err, ErrRateLimited) match.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
