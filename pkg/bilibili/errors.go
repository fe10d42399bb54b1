package bilibili

import (
	"errors"
	"fmt"
)

var (
	ErrNoUIDs           = errors.New("bilibili: no uids")
	ErrMalformedPayload = errors.New("bilibili: malformed payload")
)

// APIError is a response whose envelope code is not 0.
type APIError struct {
	Code    int
	Msg     string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bilibili: api error %d: %s", e.Code, e.Msg)
}

// HTTPError is a non-200 HTTP response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("bilibili: http status %d: %s", e.StatusCode, e.Body)
}
