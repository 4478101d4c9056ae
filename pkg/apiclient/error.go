package apiclient

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("API")

var (
	CodeUnauthorized    = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Unauthorized")
	CodeRequestFailed   = ErrRegistry.Register("REQUEST_FAILED", errx.TypeExternal, http.StatusBadGateway, "API request failed")
	CodeTransportFailed = ErrRegistry.Register("TRANSPORT_FAILED", errx.TypeExternal, http.StatusServiceUnavailable, "API unreachable")
	CodeInvalidResponse = ErrRegistry.Register("INVALID_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Invalid API response")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

// ErrRequestFailed carries the response status and the raw body text
func ErrRequestFailed(status int, body string) *errx.Error {
	err := ErrRegistry.New(CodeRequestFailed).
		WithDetail("status", status).
		WithDetail("body", body)
	err.HTTPStatus = status
	return err
}

func ErrTransportFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeTransportFailed, cause)
}

func ErrInvalidResponse(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeInvalidResponse, cause)
}

// IsUnauthorized reports whether err came from a 401 response
func IsUnauthorized(err error) bool {
	return errx.IsCode(err, CodeUnauthorized)
}

// StatusCode returns the HTTP status of a failed request, or 0
func StatusCode(err error) int {
	e, ok := errx.As(err)
	if !ok {
		return 0
	}
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRequestFailed:
		if s, ok := e.Details["status"].(int); ok {
			return s
		}
	}
	return 0
}

// Body returns the raw response body of a failed request
func Body(err error) string {
	e, ok := errx.As(err)
	if !ok || e.Code != CodeRequestFailed {
		return ""
	}
	s, _ := e.Details["body"].(string)
	return s
}

// Message extracts a human readable message from a failed request. JSON
// error bodies produced by the backend carry it under "message".
func Message(err error) string {
	if err == nil {
		return ""
	}
	if body := Body(err); body != "" {
		if msg := messageFromBody(body); msg != "" {
			return msg
		}
		return body
	}
	return err.Error()
}
