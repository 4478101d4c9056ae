package errx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Type classifies an error independently of the domain that raised it
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
	TypeInternal      Type = "INTERNAL"
)

// defaultStatus is used by Wrap, which has no registered code to take a status from
var defaultStatus = map[Type]int{
	TypeValidation:    http.StatusBadRequest,
	TypeNotFound:      http.StatusNotFound,
	TypeConflict:      http.StatusConflict,
	TypeAuthorization: http.StatusForbidden,
	TypeBusiness:      http.StatusUnprocessableEntity,
	TypeExternal:      http.StatusBadGateway,
	TypeInternal:      http.StatusInternalServerError,
}

// Error is the error value shared by every layer of the application
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail attaches a key/value to the error and returns it for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithCause sets the underlying error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithMessage replaces the registered message
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// ToHTTPResponse renders the error body returned to API clients
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"error":   e.Message,
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// ============================================================================
// Registry
// ============================================================================

// Code is a registered error definition
type Code struct {
	Name       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry namespaces error codes for one domain, e.g. "CANDIDATE_NOT_FOUND"
type Registry struct {
	prefix string
	mu     sync.RWMutex
	codes  map[string]Code
}

func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[string]Code),
	}
}

// Register defines a code and returns its fully qualified name
func (r *Registry) Register(name string, typ Type, status int, message string) string {
	full := r.prefix + "_" + name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[full] = Code{Name: full, Type: typ, HTTPStatus: status, Message: message}
	return full
}

// New builds an error for a registered code
func (r *Registry) New(code string) *Error {
	r.mu.RLock()
	def, ok := r.codes[code]
	r.mu.RUnlock()

	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	return &Error{
		Code:       def.Name,
		Type:       def.Type,
		Message:    def.Message,
		HTTPStatus: def.HTTPStatus,
	}
}

// NewWithCause builds an error for a registered code wrapping cause
func (r *Registry) NewWithCause(code string, cause error) *Error {
	return r.New(code).WithCause(cause)
}

// ============================================================================
// Helpers
// ============================================================================

// New creates an ad-hoc error that is not part of any registry
func New(message string, typ Type) *Error {
	return &Error{
		Code:       string(typ),
		Type:       typ,
		Message:    message,
		HTTPStatus: defaultStatus[typ],
	}
}

// Wrap annotates err. An *Error keeps its code and type.
func Wrap(err error, message string, typ Type) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Type:       e.Type,
			Message:    message + ": " + e.Message,
			HTTPStatus: e.HTTPStatus,
			Details:    e.Details,
			Cause:      err,
		}
	}

	return &Error{
		Code:       string(typ),
		Type:       typ,
		Message:    message,
		HTTPStatus: defaultStatus[typ],
		Cause:      err,
	}
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code
func IsCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// IsType reports whether err is classified as typ
func IsType(err error, typ Type) bool {
	e, ok := As(err)
	return ok && e.Type == typ
}
