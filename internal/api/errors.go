package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// RequestError is a non-2xx response from the backend. Message is the
// server-provided detail text when present, so screens can show it verbatim.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// ErrSessionExpired is returned when a 401 could not be recovered by a
// token refresh. The local session has already been cleared.
var ErrSessionExpired = errors.New("session expired, please log in again")

// errorMessage pulls the human-readable detail out of an error body.
// FastAPI puts it under "detail"; tolerate "message" and plain text too.
func errorMessage(body []byte) string {
	if d := gjson.GetBytes(body, "detail"); d.Exists() {
		return d.String()
	}
	if m := gjson.GetBytes(body, "message"); m.Exists() {
		return m.String()
	}
	return "Request failed"
}

// newRequestError builds a RequestError from a response body.
func newRequestError(status int, body []byte) *RequestError {
	return &RequestError{Status: status, Message: errorMessage(body)}
}
