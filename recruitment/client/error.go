package client

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("CLIENT")

// Error codes
var (
	CodeClientNotFound          = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Client not found")
	CodeClientAlreadyExists     = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Client already exists")
	CodeAlreadyRegistered       = ErrRegistry.Register("ALREADY_REGISTERED", errx.TypeBusiness, http.StatusConflict, "Client is already registered")
	CodeNotInvited              = ErrRegistry.Register("NOT_INVITED", errx.TypeBusiness, http.StatusConflict, "Client has not been invited")
	CodeInvalidInvitationToken  = ErrRegistry.Register("INVALID_INVITATION_TOKEN", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired invitation token")
	CodeMissingContactEmail     = ErrRegistry.Register("MISSING_CONTACT_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Client has no contact email to invite")
	CodeInvalidEmail            = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email format")
	CodeInvalidRequest          = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeValidationFailed        = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeInvalidInvitationStatus = ErrRegistry.Register("INVALID_INVITATION_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid invitation status")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
)

// Helper functions
func ErrClientNotFound() *errx.Error {
	return ErrRegistry.New(CodeClientNotFound)
}

func ErrClientAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeClientAlreadyExists)
}

func ErrAlreadyRegistered() *errx.Error {
	return ErrRegistry.New(CodeAlreadyRegistered)
}

func ErrNotInvited() *errx.Error {
	return ErrRegistry.New(CodeNotInvited)
}

func ErrInvalidInvitationToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidInvitationToken)
}

func ErrMissingContactEmail() *errx.Error {
	return ErrRegistry.New(CodeMissingContactEmail)
}

func ErrInvalidEmail() *errx.Error {
	return ErrRegistry.New(CodeInvalidEmail)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrInvalidInvitationStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidInvitationStatus)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}
