package thingspeak

import (
	"errors"
	"fmt"
	"net/url"
)

// Fetch failure kinds. Match with errors.Is.
var (
	ErrNetwork  = errors.New("network error")
	ErrProtocol = errors.New("protocol error")
	ErrParse    = errors.New("parse error")
)

// FetchError reports a failed feed fetch.
type FetchError struct {
	Kind     error
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v: %v", redact(e.Endpoint), e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the failure kind.
func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}

// KindName returns a short label for the failure kind, used in API responses.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "unknown"
	}
}

// redact hides the read key so endpoints can be logged.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
