package application

import "errors"

// ErrDataUnavailable wraps any fetch or parse failure inside a market data
// call. No partial results are returned; the caller must re-trigger.
var ErrDataUnavailable = errors.New("market data unavailable")

// ErrRequestTimeout marks a request aborted by its deadline, as opposed to a
// plain network failure.
var ErrRequestTimeout = errors.New("request timed out")

// ErrMissingCredentials means the targeted exchange has no API keys
// configured for the user.
var ErrMissingCredentials = errors.New("no API keys configured")

// ErrAuthRequired means no authenticated user is associated with the call.
var ErrAuthRequired = errors.New("user not authenticated")

// ErrUnsupportedExchange means the order named an exchange this service does
// not route to.
var ErrUnsupportedExchange = errors.New("exchange not supported")
