package httpUtils

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrMalformedResponse = errors.New("malformed response body")

type HttpError struct {
	StatusCode int
	Status     string
}

func (e *HttpError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected HTTP status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HttpError) StatusText() string {
	return http.StatusText(e.StatusCode)
}
