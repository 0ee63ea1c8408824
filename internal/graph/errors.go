package graph

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrValueKeyNotFound = errors.New("value key not found")
	ErrMisaligned       = errors.New("series length does not match dates")
	ErrNoSeries         = errors.New("no series to draw")
	ErrNoDates          = errors.New("no dates")
	ErrUnknownFilter    = errors.New("unknown filter")
	ErrUnknownFormat    = errors.New("unknown format")
)

// DateParseError reports a date string that is not MM/DD/YYYY.
type DateParseError struct {
	Index int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("date %d %q: expected MM/DD/YYYY: %v", e.Index, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// NetworkError reports a failed fetch: transport failure, non-200 status or
// a body that is not a stats payload.
type NetworkError struct {
	URL     string
	Status  int
	Preview string
	Err     error
}

func (e *NetworkError) Error() string {
	msg := "fetch " + e.URL
	if e.Status != 0 {
		msg += fmt.Sprintf(" returned %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Preview != "" {
		msg += "; body: " + e.Preview
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

// preview keeps at most 120 bytes of body, cut on a rune boundary.
func preview(body []byte) string {
	const limit = 120
	if len(body) <= limit {
		return string(body)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}
