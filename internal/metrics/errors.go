package metrics

import "errors"

var (
	// ErrUnavailable indicates the platform could not be reached.
	ErrUnavailable = errors.New("metrics platform unreachable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("metrics request timed out")

	// ErrLoginFailed indicates the login endpoint answered without a
	// usable token.
	ErrLoginFailed = errors.New("platform login did not return a token")

	// ErrNoValue indicates the platform answered but the payload carried
	// no value for the requested formula.
	ErrNoValue = errors.New("platform response carried no value")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("platform retry attempts exhausted")
)
