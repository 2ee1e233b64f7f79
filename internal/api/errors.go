package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized marks a 401 response. The session layer reacts to it by
// terminating; the retry layer treats it as permanent.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is any non-2xx response that is not a 401. Message carries the
// backend's error payload verbatim when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Code)
}

// IsNotFound reports whether err is a 404. Optional resources (feedback,
// empty lists) read as not-found and callers treat that as an empty result.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsClientError reports a 4xx whose message should be surfaced verbatim.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}
