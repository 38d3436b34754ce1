package alphavantage

import (
	"errors"
	"fmt"
)

// ErrInvalidTicker reports a ticker that does not match the
// "price:SYMBOL:BASE" / "fx:CCY:BASE" grammar. It signals a caller or
// configuration mistake, never a transient condition.
var ErrInvalidTicker = errors.New("invalid ticker")

// ErrMissingAPIKey reports that ALPHAVANTAGE_API_KEY is not set. No request
// is sent without a key.
var ErrMissingAPIKey = errors.New("ALPHAVANTAGE_API_KEY is not set")

// ErrMalformedResponse reports a payload lacking an expected field.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is a transport-level failure: the API answered with a
// non-success HTTP status and no retriable marker.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("alphavantage: invalid response (%d): %s", e.Code, e.Body)
}

// APIError is an application-level failure reported by the API itself in an
// "Error Message" field, regardless of HTTP status.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "alphavantage: " + e.Message
}
