package oaichat

import (
	"errors"
	"fmt"
)

// ErrEmptyChoice is returned when the upstream answers without any message content.
var ErrEmptyChoice = errors.New("oaichat: response has no content")

// HTTPError is a non-2xx upstream answer.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}
