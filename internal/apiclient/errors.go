package apiclient

import "fmt"

// RequestFailedError is returned when the server answers with a non-2xx status.
type RequestFailedError struct {
	Method     string
	Endpoint   string
	StatusCode int
	StatusText string
	// Body is the response body read as text.
	Body string
}

func (e *RequestFailedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.Endpoint, e.StatusCode, e.StatusText)
	}
	return fmt.Sprintf("%s %s failed: %d %s: %s", e.Method, e.Endpoint, e.StatusCode, e.StatusText, e.Body)
}

// APIError is returned when a 2xx envelope reports success=false.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}
